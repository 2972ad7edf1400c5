package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction. gorm rolls back when fn
// returns an error or panics and always releases the connection.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// ComprobanteQueue receives receipt jobs once a sale commits.
type ComprobanteQueue interface {
	EnqueueComprobante(ctx context.Context, payload interface{}) error
}

var (
	cien       = decimal.NewFromInt(100)
	tolerancia = decimal.NewFromFloat(0.01)
)

func parseID(campo, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, invalido("%s inválido", campo)
	}
	return id, nil
}

func parseOptID(campo string, s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := parseID(campo, *s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// aplicarDescuento returns monto minus pct percent, rounded to cents.
func aplicarDescuento(monto, pct decimal.Decimal) decimal.Decimal {
	return monto.Sub(monto.Mul(pct).Div(cien)).Round(2)
}

// coincide reports whether a and b differ by at most one cent.
func coincide(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerancia)
}

func fmtFecha(t time.Time) string { return t.Format(time.RFC3339) }

func idStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
