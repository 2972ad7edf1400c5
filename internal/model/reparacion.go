package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados de reparación.
const (
	ReparacionPendiente = "pendiente"
	ReparacionEnProceso = "en_proceso"
	ReparacionTerminada = "terminada"
	ReparacionEntregada = "entregada"
	ReparacionCancelada = "cancelada"
)

// Reparacion is a repair order for a customer's device.
type Reparacion struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID         *uuid.UUID      `gorm:"type:uuid;index"`
	PuntoVentaID      uuid.UUID       `gorm:"type:uuid;not null"`
	UsuarioID         uuid.UUID       `gorm:"type:uuid;not null"`
	Equipo            string          `gorm:"not null"` // marca / modelo / imei as written on the ticket
	Descripcion       string          `gorm:"not null"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado            string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	FechaCancelacion  *time.Time
	MotivoCancelacion *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Pagos []PagoReparacion `gorm:"foreignKey:ReparacionID"`
}

func (Reparacion) TableName() string { return "reparaciones" }

func (r *Reparacion) BeforeCreate(*gorm.DB) error { ensureID(&r.ID); return nil }

// PagoReparacion is a payment applied to a repair. When paid on account,
// MovimientoID points at the cargo posted for it.
type PagoReparacion struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReparacionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PagoID       uuid.UUID       `gorm:"type:uuid;not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TipoPago     string          `gorm:"type:varchar(50);not null"`
	MovimientoID *uuid.UUID      `gorm:"type:uuid"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	Anulado      bool            `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

func (PagoReparacion) TableName() string { return "pagos_reparacion" }

func (p *PagoReparacion) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
