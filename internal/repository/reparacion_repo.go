package repository

import (
	"context"
	"time"

	"cellfie/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReparacionRepository interface {
	Create(ctx context.Context, r *model.Reparacion) error
	// FindByID loads the repair with its payments, oldest first.
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Reparacion, error)
	CreatePago(ctx context.Context, tx *gorm.DB, p *model.PagoReparacion) error
	AnularPago(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// AnularPagoPorPago flags the repair payment row backed by the given pagos row.
	AnularPagoPorPago(ctx context.Context, tx *gorm.DB, pagoID uuid.UUID) error
	Cancelar(ctx context.Context, tx *gorm.DB, rep *model.Reparacion, motivo string, fecha time.Time) error
	DB() *gorm.DB
}

type reparacionRepo struct{ db *gorm.DB }

func NewReparacionRepository(db *gorm.DB) ReparacionRepository { return &reparacionRepo{db: db} }

func (r *reparacionRepo) DB() *gorm.DB { return r.db }

func (r *reparacionRepo) Create(ctx context.Context, rep *model.Reparacion) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *reparacionRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Reparacion, error) {
	var rep model.Reparacion
	if err := forUpdate(use(ctx, r.db, tx), lock).First(&rep, "id = ?", id).Error; err != nil {
		return nil, err
	}
	err := use(ctx, r.db, tx).Where("reparacion_id = ?", id).Order("created_at ASC").Find(&rep.Pagos).Error
	return &rep, err
}

func (r *reparacionRepo) CreatePago(ctx context.Context, tx *gorm.DB, p *model.PagoReparacion) error {
	return use(ctx, r.db, tx).Create(p).Error
}

func (r *reparacionRepo) AnularPago(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return use(ctx, r.db, tx).Model(&model.PagoReparacion{}).Where("id = ?", id).Update("anulado", true).Error
}

func (r *reparacionRepo) AnularPagoPorPago(ctx context.Context, tx *gorm.DB, pagoID uuid.UUID) error {
	return use(ctx, r.db, tx).Model(&model.PagoReparacion{}).Where("pago_id = ?", pagoID).Update("anulado", true).Error
}

func (r *reparacionRepo) Cancelar(ctx context.Context, tx *gorm.DB, rep *model.Reparacion, motivo string, fecha time.Time) error {
	rep.Estado = model.ReparacionCancelada
	rep.FechaCancelacion = &fecha
	rep.MotivoCancelacion = &motivo
	return use(ctx, r.db, tx).Model(&model.Reparacion{}).Where("id = ?", rep.ID).Updates(map[string]any{
		"estado":             model.ReparacionCancelada,
		"fecha_cancelacion":  fecha,
		"motivo_cancelacion": motivo,
		"updated_at":         fecha,
	}).Error
}
