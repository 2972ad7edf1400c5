package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CuentaCorriente is a customer's running-balance credit account.
// Saldo > 0 means the customer owes the shop. LimiteCredito <= 0 means unlimited.
// Saldo is only ever changed together with a MovimientoCuentaCorriente row, and
// every write bumps Version so concurrent writers cannot overwrite each other.
type CuentaCorriente struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	Saldo                 decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LimiteCredito         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo                bool            `gorm:"not null;default:true"`
	FechaUltimoMovimiento *time.Time
	Version               int `gorm:"not null;default:0"`
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

func (CuentaCorriente) TableName() string { return "cuentas_corrientes" }

func (c *CuentaCorriente) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }

// TipoMovimiento is the direction of a ledger movement.
type TipoMovimiento string

const (
	MovimientoCargo TipoMovimiento = "cargo" // increases the customer's debt
	MovimientoPago  TipoMovimiento = "pago"  // decreases the customer's debt
)

func (t TipoMovimiento) Valid() bool { return t == MovimientoCargo || t == MovimientoPago }

// Opuesto returns the direction that undoes t.
func (t TipoMovimiento) Opuesto() TipoMovimiento {
	if t == MovimientoCargo {
		return MovimientoPago
	}
	return MovimientoCargo
}

// Aplicar returns saldo moved by monto in the direction of t.
func (t TipoMovimiento) Aplicar(saldo, monto decimal.Decimal) decimal.Decimal {
	if t == MovimientoCargo {
		return saldo.Add(monto)
	}
	return saldo.Sub(monto)
}

// MovimientoCuentaCorriente is an immutable ledger entry.
// Monto is always positive; Tipo carries the direction. SaldoAnterior and
// SaldoNuevo are snapshots taken when the row was written and never change.
// Reversals are new rows pointing at the original through MovimientoOrigenID.
type MovimientoCuentaCorriente struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CuentaCorrienteID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo               TipoMovimiento  `gorm:"type:varchar(10);not null"`
	Monto              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoAnterior      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoNuevo         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReferenciaID       *uuid.UUID      `gorm:"type:uuid;index"`
	TipoReferencia     TipoReferencia  `gorm:"type:varchar(30);not null"`
	UsuarioID          uuid.UUID       `gorm:"type:uuid;not null"`
	Notas              string
	MovimientoOrigenID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CreatedAt          time.Time
}

func (MovimientoCuentaCorriente) TableName() string { return "movimientos_cuenta_corriente" }

func (m *MovimientoCuentaCorriente) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }

// Delta is the signed effect of the movement on the balance.
func (m *MovimientoCuentaCorriente) Delta() decimal.Decimal {
	if m.Tipo == MovimientoCargo {
		return m.Monto
	}
	return m.Monto.Neg()
}
