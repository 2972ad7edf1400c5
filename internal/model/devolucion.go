package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados de un item devuelto.
const (
	EstadoDevolucionNormal     = "normal"
	EstadoDevolucionDefectuoso = "defectuoso"
)

// Devolucion is a return against a non-annulled Venta.
// Diferencia = valor de reemplazos - valor devuelto: negative means the shop owes
// the customer, positive means the customer owes more. MovimientoID and PagoID
// record how it was settled; both stay nil when Diferencia is zero.
type Devolucion struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteID       *uuid.UUID      `gorm:"type:uuid;index"`
	PuntoVentaID    uuid.UUID       `gorm:"type:uuid;not null"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null"`
	Motivo          string          `gorm:"not null"`
	ValorDevuelto   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ValorReemplazo  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Diferencia      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MovimientoID    *uuid.UUID      `gorm:"type:uuid"`
	PagoID          *uuid.UUID      `gorm:"type:uuid"`
	Anulada         bool            `gorm:"not null;default:false"`
	FechaAnulacion  *time.Time
	MotivoAnulacion *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []DevolucionItem `gorm:"foreignKey:DevolucionID"`
}

func (Devolucion) TableName() string { return "devoluciones" }

func (d *Devolucion) BeforeCreate(*gorm.DB) error { ensureID(&d.ID); return nil }

// DevolucionItem is one returned sale line.
type DevolucionItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DevolucionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DetalleVentaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	Estado         string          `gorm:"type:varchar(20);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (d *DevolucionItem) BeforeCreate(*gorm.DB) error { ensureID(&d.ID); return nil }

// Perdida records stock written off instead of restocked (defective returns).
type Perdida struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductoID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PuntoVentaID uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad     int             `gorm:"not null"`
	Costo        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Motivo       string
	DevolucionID *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID    uuid.UUID  `gorm:"type:uuid;not null"`
	Anulada      bool       `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

func (p *Perdida) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
