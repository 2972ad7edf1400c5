package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClienteGeneral is the walk-in customer sentinel, created on first read of the catalog.
const ClienteGeneral = "Cliente General"

// Cliente is a shop customer. Customers with sales are never hard-deleted.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"index;not null"`
	Telefono  *string
	DNI       *string `gorm:"column:dni;index"`
	Email     *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cliente) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }

// PuntoVenta is a physical store. Stock, payments and sales are always scoped to one.
type PuntoVenta struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PuntoVenta) TableName() string { return "puntos_venta" }

func (p *PuntoVenta) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
