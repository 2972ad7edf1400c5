package repository

import (
	"context"

	"cellfie/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PuntoVentaRepository interface {
	Create(ctx context.Context, p *model.PuntoVenta) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PuntoVenta, error)
	List(ctx context.Context) ([]model.PuntoVenta, error)
}

type puntoVentaRepo struct{ db *gorm.DB }

func NewPuntoVentaRepository(db *gorm.DB) PuntoVentaRepository { return &puntoVentaRepo{db: db} }

func (r *puntoVentaRepo) Create(ctx context.Context, p *model.PuntoVenta) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *puntoVentaRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PuntoVenta, error) {
	var p model.PuntoVenta
	if err := use(ctx, r.db, tx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *puntoVentaRepo) List(ctx context.Context) ([]model.PuntoVenta, error) {
	var list []model.PuntoVenta
	err := r.db.WithContext(ctx).Where("activo = ?", true).Order("nombre ASC").Find(&list).Error
	return list, err
}
