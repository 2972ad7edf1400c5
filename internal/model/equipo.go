package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Equipo is a single serialized device (phone) in stock.
// EsCanje marks units that entered inventory as a trade-in (plan canje).
type Equipo struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Marca          string    `gorm:"not null"`
	Modelo         string    `gorm:"not null"`
	IMEI           string    `gorm:"column:imei;uniqueIndex;not null"`
	Capacidad      *string
	Color          *string
	Bateria        *int
	Estado         string          `gorm:"type:varchar(20);not null;default:'nuevo'"` // nuevo | usado
	Precio         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Costo          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PuntoVentaID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Vendido        bool            `gorm:"not null;default:false"`
	FechaVenta     *time.Time
	EsCanje        bool       `gorm:"not null;default:false"`
	VentaCanjeID   *uuid.UUID `gorm:"type:uuid;index"`
	ClienteCanjeID *uuid.UUID `gorm:"type:uuid"`
	Observaciones  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e *Equipo) BeforeCreate(*gorm.DB) error { ensureID(&e.ID); return nil }

// VentaEquipo is the sale of one device, optionally with a trade-in.
// MontoAPagar = Total - ValorCanje is what the payments must cover.
type VentaEquipo struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	NumeroFactura       string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	ClienteID           *uuid.UUID      `gorm:"type:uuid;index"`
	PuntoVentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID           uuid.UUID       `gorm:"type:uuid;not null"`
	EquipoID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Precio              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PorcentajeInteres   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	PorcentajeDescuento decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Total               decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ValorCanje          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoAPagar         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EquipoCanjeID       *uuid.UUID      `gorm:"type:uuid"`
	Notas               string
	Anulada             bool `gorm:"not null;default:false"`
	FechaAnulacion      *time.Time
	MotivoAnulacion     *string
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Equipo  *Equipo  `gorm:"foreignKey:EquipoID"`
	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

func (VentaEquipo) TableName() string { return "ventas_equipos" }

func (v *VentaEquipo) BeforeCreate(*gorm.DB) error { ensureID(&v.ID); return nil }
