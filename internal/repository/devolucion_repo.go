package repository

import (
	"context"
	"time"

	"cellfie/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DevolucionRepository interface {
	// Create inserts the header and its items.
	Create(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Devolucion, error)
	Anular(ctx context.Context, tx *gorm.DB, d *model.Devolucion, motivo string, fecha time.Time) error
	// SetLiquidacion records how the diferencia was settled.
	SetLiquidacion(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error
	CountActivasByVenta(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) (int64, error)
	// ListActivasByVenta locks the sale's non-annulled returns, oldest first.
	ListActivasByVenta(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) ([]model.Devolucion, error)

	CreatePerdida(ctx context.Context, tx *gorm.DB, p *model.Perdida) error
	AnularPerdidas(ctx context.Context, tx *gorm.DB, devolucionID uuid.UUID) error
	DB() *gorm.DB
}

type devolucionRepo struct{ db *gorm.DB }

func NewDevolucionRepository(db *gorm.DB) DevolucionRepository { return &devolucionRepo{db: db} }

func (r *devolucionRepo) DB() *gorm.DB { return r.db }

func (r *devolucionRepo) Create(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error {
	return use(ctx, r.db, tx).Create(d).Error
}

func (r *devolucionRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Devolucion, error) {
	var d model.Devolucion
	if err := forUpdate(use(ctx, r.db, tx), lock).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	err := use(ctx, r.db, tx).Where("devolucion_id = ?", id).Find(&d.Items).Error
	return &d, err
}

func (r *devolucionRepo) Anular(ctx context.Context, tx *gorm.DB, d *model.Devolucion, motivo string, fecha time.Time) error {
	d.Anulada = true
	d.FechaAnulacion = &fecha
	d.MotivoAnulacion = &motivo
	return use(ctx, r.db, tx).Model(&model.Devolucion{}).Where("id = ?", d.ID).Updates(map[string]any{
		"anulada":          true,
		"fecha_anulacion":  fecha,
		"motivo_anulacion": motivo,
		"updated_at":       fecha,
	}).Error
}

func (r *devolucionRepo) SetLiquidacion(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error {
	return use(ctx, r.db, tx).Model(&model.Devolucion{}).Where("id = ?", d.ID).Updates(map[string]any{
		"movimiento_id": d.MovimientoID,
		"pago_id":       d.PagoID,
	}).Error
}

func (r *devolucionRepo) CountActivasByVenta(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) (int64, error) {
	var n int64
	err := use(ctx, r.db, tx).Model(&model.Devolucion{}).
		Where("venta_id = ? AND anulada = ?", ventaID, false).
		Count(&n).Error
	return n, err
}

func (r *devolucionRepo) ListActivasByVenta(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) ([]model.Devolucion, error) {
	var devs []model.Devolucion
	err := forUpdate(use(ctx, r.db, tx), true).
		Where("venta_id = ? AND anulada = ?", ventaID, false).
		Order("created_at ASC").
		Find(&devs).Error
	return devs, err
}

func (r *devolucionRepo) CreatePerdida(ctx context.Context, tx *gorm.DB, p *model.Perdida) error {
	return use(ctx, r.db, tx).Create(p).Error
}

func (r *devolucionRepo) AnularPerdidas(ctx context.Context, tx *gorm.DB, devolucionID uuid.UUID) error {
	return use(ctx, r.db, tx).Model(&model.Perdida{}).
		Where("devolucion_id = ?", devolucionID).
		Update("anulada", true).Error
}
