package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MetodoCuentaCorriente is the display name of the on-account payment method.
const MetodoCuentaCorriente = "Cuenta Corriente"

// EsCuentaCorriente reports whether a free-text payment method settles on the
// customer's credit account.
func EsCuentaCorriente(tipoPago string) bool {
	return strings.Contains(strings.ToLower(tipoPago), "cuenta")
}

// Pago records money received (or refunded, when EsReintegro) for a sale-like
// operation. It is independent from the ledger; MovimientoID links the ledger
// movement it caused, if any. A Pago is annulled at most once and never deleted.
type Pago struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Monto              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TipoPago           string          `gorm:"type:varchar(50);not null"`
	ReferenciaID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_pagos_referencia"`
	TipoReferencia     TipoReferencia  `gorm:"type:varchar(30);not null;index:idx_pagos_referencia"`
	ClienteID          *uuid.UUID      `gorm:"type:uuid;index"`
	UsuarioID          uuid.UUID       `gorm:"type:uuid;not null"`
	PuntoVentaID       uuid.UUID       `gorm:"type:uuid;not null"`
	MovimientoID       *uuid.UUID      `gorm:"type:uuid"`
	EsReintegro        bool            `gorm:"not null;default:false"`
	Anulado            bool            `gorm:"not null;default:false"`
	FechaAnulacion     *time.Time
	MotivoAnulacion    *string
	UsuarioAnulacionID *uuid.UUID `gorm:"type:uuid"`
	Notas              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p *Pago) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
