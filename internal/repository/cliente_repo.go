package repository

import (
	"context"
	"errors"

	"cellfie/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cliente, error)
	List(ctx context.Context, nombre string) ([]model.Cliente, error)
	// EnsureGeneral returns the "Cliente General" row, creating it when absent.
	EnsureGeneral(ctx context.Context) (*model.Cliente, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	if err := use(ctx, r.db, tx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) List(ctx context.Context, nombre string) ([]model.Cliente, error) {
	var list []model.Cliente
	q := r.db.WithContext(ctx).Where("activo = ?", true)
	if nombre != "" {
		q = q.Where("LOWER(nombre) LIKE LOWER(?)", "%"+nombre+"%")
	}
	err := q.Order("nombre ASC").Find(&list).Error
	return list, err
}

func (r *clienteRepo) EnsureGeneral(ctx context.Context) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("nombre = ?", model.ClienteGeneral).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c = model.Cliente{Nombre: model.ClienteGeneral, Activo: true}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
