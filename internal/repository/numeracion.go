package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// NextNumeroFactura returns the next invoice number for tabla on fecha:
// "F" + YYMMDD + "-" + a four-digit daily sequence (F250301-0007).
//
// On postgres a transaction-scoped advisory lock keyed on table+prefix
// serializes concurrent generators until the caller commits; the unique index
// on numero_factura backs it up on every dialect.
func NextNumeroFactura(ctx context.Context, tx *gorm.DB, tabla string, fecha time.Time) (string, error) {
	prefijo := "F" + fecha.Format("060102") + "-"
	q := tx.WithContext(ctx)

	if q.Dialector.Name() == "postgres" {
		if err := q.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", tabla+":"+prefijo).Error; err != nil {
			return "", err
		}
	}

	var numeros []string
	err := q.Table(tabla).
		Where("numero_factura LIKE ?", prefijo+"%").
		// Past 9999 the suffix grows a digit; length first keeps the order numeric.
		Order("LENGTH(numero_factura) DESC, numero_factura DESC").
		Limit(1).
		Pluck("numero_factura", &numeros).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if len(numeros) > 0 {
		if n, err := strconv.Atoi(strings.TrimPrefix(numeros[0], prefijo)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefijo, seq), nil
}
