package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Venta is a product sale header. Total = Subtotal minus the general discount;
// PorcentajeInteres is informational and never part of Total.
type Venta struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	NumeroFactura       string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	ClienteID           *uuid.UUID      `gorm:"type:uuid;index"`
	PuntoVentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID           uuid.UUID       `gorm:"type:uuid;not null"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PorcentajeInteres   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	PorcentajeDescuento decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Total               decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notas               string
	Anulada             bool `gorm:"not null;default:false"`
	FechaAnulacion      *time.Time
	MotivoAnulacion     *string
	TieneDevoluciones   bool `gorm:"not null;default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Items   []DetalleVenta `gorm:"foreignKey:VentaID"`
	Cliente *Cliente       `gorm:"foreignKey:ClienteID"`
}

func (v *Venta) BeforeCreate(*gorm.DB) error { ensureID(&v.ID); return nil }

// DetalleVenta is one sale line. Replacement lines added by a return carry
// EsReemplazo and the DevolucionID that created them.
type DetalleVenta struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID          uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad            int             `gorm:"not null"`
	PrecioUnitario      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PorcentajeDescuento decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CantidadDevuelta    int             `gorm:"not null;default:0"`
	Devuelto            bool            `gorm:"not null;default:false"`
	EsReemplazo         bool            `gorm:"not null;default:false"`
	DevolucionID        *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt           time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }

func (d *DetalleVenta) BeforeCreate(*gorm.DB) error { ensureID(&d.ID); return nil }

// PrecioEfectivo is the per-unit amount actually charged on the line.
func (d *DetalleVenta) PrecioEfectivo() decimal.Decimal {
	if d.Cantidad == 0 {
		return decimal.Zero
	}
	return d.Subtotal.Div(decimal.NewFromInt(int64(d.Cantidad)))
}

// Pendiente is the quantity that can still be returned.
func (d *DetalleVenta) Pendiente() int { return d.Cantidad - d.CantidadDevuelta }
