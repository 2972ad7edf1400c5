package repository

import (
	"context"
	"time"

	"cellfie/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PagoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Pago) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Pago, error)
	// ListByReferencia returns every Pago tied to one sale-like entity, oldest first.
	ListByReferencia(ctx context.Context, tx *gorm.DB, referenciaID uuid.UUID, tipo model.TipoReferencia) ([]model.Pago, error)
	// MarcarAnulado flips anulado only if it is still false; reports whether it did.
	MarcarAnulado(ctx context.Context, tx *gorm.DB, p *model.Pago, usuarioID uuid.UUID, motivo string, fecha time.Time) (bool, error)
	DB() *gorm.DB
}

type pagoRepo struct{ db *gorm.DB }

func NewPagoRepository(db *gorm.DB) PagoRepository { return &pagoRepo{db: db} }

func (r *pagoRepo) DB() *gorm.DB { return r.db }

func (r *pagoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pago) error {
	return use(ctx, r.db, tx).Create(p).Error
}

func (r *pagoRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Pago, error) {
	var p model.Pago
	if err := forUpdate(use(ctx, r.db, tx), lock).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pagoRepo) ListByReferencia(ctx context.Context, tx *gorm.DB, referenciaID uuid.UUID, tipo model.TipoReferencia) ([]model.Pago, error) {
	var pagos []model.Pago
	err := use(ctx, r.db, tx).
		Where("referencia_id = ? AND tipo_referencia = ?", referenciaID, tipo).
		Order("created_at ASC").
		Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) MarcarAnulado(ctx context.Context, tx *gorm.DB, p *model.Pago, usuarioID uuid.UUID, motivo string, fecha time.Time) (bool, error) {
	res := use(ctx, r.db, tx).Model(&model.Pago{}).
		Where("id = ? AND anulado = ?", p.ID, false).
		Updates(map[string]any{
			"anulado":              true,
			"fecha_anulacion":      fecha,
			"motivo_anulacion":     motivo,
			"usuario_anulacion_id": usuarioID,
			"updated_at":           fecha,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	p.Anulado = true
	p.FechaAnulacion = &fecha
	p.MotivoAnulacion = &motivo
	p.UsuarioAnulacionID = &usuarioID
	return true, nil
}
