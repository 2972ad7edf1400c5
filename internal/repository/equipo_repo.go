package repository

import (
	"context"
	"time"

	"cellfie/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EquipoRepository covers serialized devices and the equipment sales that move them.
type EquipoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, e *model.Equipo) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Equipo, error)
	ExisteIMEI(ctx context.Context, tx *gorm.DB, imei string) (bool, error)
	MarcarVendido(ctx context.Context, tx *gorm.DB, e *model.Equipo, vendido bool, fecha time.Time) error
	// Delete removes the row for good. Only used for trade-in units of an annulled sale.
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	CreateVenta(ctx context.Context, tx *gorm.DB, v *model.VentaEquipo) error
	FindVentaByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.VentaEquipo, error)
	NextNumeroFactura(ctx context.Context, tx *gorm.DB, fecha time.Time) (string, error)
	AnularVenta(ctx context.Context, tx *gorm.DB, v *model.VentaEquipo, motivo string, fecha time.Time) error
	DB() *gorm.DB
}

type equipoRepo struct{ db *gorm.DB }

func NewEquipoRepository(db *gorm.DB) EquipoRepository { return &equipoRepo{db: db} }

func (r *equipoRepo) DB() *gorm.DB { return r.db }

func (r *equipoRepo) Create(ctx context.Context, tx *gorm.DB, e *model.Equipo) error {
	return use(ctx, r.db, tx).Create(e).Error
}

func (r *equipoRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Equipo, error) {
	var e model.Equipo
	if err := forUpdate(use(ctx, r.db, tx), lock).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *equipoRepo) ExisteIMEI(ctx context.Context, tx *gorm.DB, imei string) (bool, error) {
	var n int64
	err := use(ctx, r.db, tx).Model(&model.Equipo{}).Where("imei = ?", imei).Count(&n).Error
	return n > 0, err
}

func (r *equipoRepo) MarcarVendido(ctx context.Context, tx *gorm.DB, e *model.Equipo, vendido bool, fecha time.Time) error {
	var fechaVenta *time.Time
	if vendido {
		fechaVenta = &fecha
	}
	e.Vendido = vendido
	e.FechaVenta = fechaVenta
	return use(ctx, r.db, tx).Model(&model.Equipo{}).Where("id = ?", e.ID).Updates(map[string]any{
		"vendido":     vendido,
		"fecha_venta": fechaVenta,
		"updated_at":  fecha,
	}).Error
}

func (r *equipoRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return use(ctx, r.db, tx).Where("id = ?", id).Delete(&model.Equipo{}).Error
}

func (r *equipoRepo) CreateVenta(ctx context.Context, tx *gorm.DB, v *model.VentaEquipo) error {
	return use(ctx, r.db, tx).Omit("Equipo", "Cliente").Create(v).Error
}

func (r *equipoRepo) FindVentaByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.VentaEquipo, error) {
	var v model.VentaEquipo
	if err := forUpdate(use(ctx, r.db, tx), lock).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	e, err := r.FindByID(ctx, tx, v.EquipoID, false)
	if err != nil {
		return nil, err
	}
	v.Equipo = e
	return &v, nil
}

func (r *equipoRepo) NextNumeroFactura(ctx context.Context, tx *gorm.DB, fecha time.Time) (string, error) {
	return NextNumeroFactura(ctx, tx, "ventas_equipos", fecha)
}

func (r *equipoRepo) AnularVenta(ctx context.Context, tx *gorm.DB, v *model.VentaEquipo, motivo string, fecha time.Time) error {
	v.Anulada = true
	v.FechaAnulacion = &fecha
	v.MotivoAnulacion = &motivo
	return use(ctx, r.db, tx).Model(&model.VentaEquipo{}).Where("id = ?", v.ID).Updates(map[string]any{
		"anulada":          true,
		"fecha_anulacion":  fecha,
		"motivo_anulacion": motivo,
		"updated_at":       fecha,
	}).Error
}
