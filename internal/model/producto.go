package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is a catalog item (accessories, chargers, cases, repuestos).
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Codigo      string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	Categoria   string          `gorm:"not null;default:'general'"`
	Precio      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Costo       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Producto) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }

// Inventario is the stock counter of one product at one punto de venta.
type Inventario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductoID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventario_producto_pv"`
	PuntoVentaID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventario_producto_pv"`
	Stock        int       `gorm:"not null;default:0"`
	StockMinimo  int       `gorm:"not null;default:0"`
	UpdatedAt    time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Inventario) TableName() string { return "inventario" }

func (i *Inventario) BeforeCreate(*gorm.DB) error { ensureID(&i.ID); return nil }
