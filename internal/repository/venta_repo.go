package repository

import (
	"context"
	"time"

	"cellfie/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Venta, error)
	NextNumeroFactura(ctx context.Context, tx *gorm.DB, fecha time.Time) (string, error)
	Anular(ctx context.Context, tx *gorm.DB, v *model.Venta, motivo string, fecha time.Time) error
	SetTieneDevoluciones(ctx context.Context, tx *gorm.DB, id uuid.UUID, valor bool) error

	FindDetalle(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.DetalleVenta, error)
	CreateDetalle(ctx context.Context, tx *gorm.DB, d *model.DetalleVenta) error
	// ActualizarDevuelto moves cantidad_devuelta by delta and recomputes the devuelto flag.
	ActualizarDevuelto(ctx context.Context, tx *gorm.DB, d *model.DetalleVenta, delta int) error
	DeleteReemplazos(ctx context.Context, tx *gorm.DB, devolucionID uuid.UUID) ([]model.DetalleVenta, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return use(ctx, r.db, tx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.Venta, error) {
	var v model.Venta
	err := forUpdate(use(ctx, r.db, tx), lock).First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	// Items are loaded separately so the row lock never spans a join.
	err = use(ctx, r.db, tx).Preload("Producto").
		Where("venta_id = ?", id).
		Order("created_at ASC").
		Find(&v.Items).Error
	return &v, err
}

func (r *ventaRepo) NextNumeroFactura(ctx context.Context, tx *gorm.DB, fecha time.Time) (string, error) {
	return NextNumeroFactura(ctx, tx, "ventas", fecha)
}

func (r *ventaRepo) Anular(ctx context.Context, tx *gorm.DB, v *model.Venta, motivo string, fecha time.Time) error {
	v.Anulada = true
	v.FechaAnulacion = &fecha
	v.MotivoAnulacion = &motivo
	return use(ctx, r.db, tx).Model(&model.Venta{}).Where("id = ?", v.ID).Updates(map[string]any{
		"anulada":          true,
		"fecha_anulacion":  fecha,
		"motivo_anulacion": motivo,
		"updated_at":       fecha,
	}).Error
}

func (r *ventaRepo) SetTieneDevoluciones(ctx context.Context, tx *gorm.DB, id uuid.UUID, valor bool) error {
	return use(ctx, r.db, tx).Model(&model.Venta{}).Where("id = ?", id).Update("tiene_devoluciones", valor).Error
}

func (r *ventaRepo) FindDetalle(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.DetalleVenta, error) {
	var d model.DetalleVenta
	if err := forUpdate(use(ctx, r.db, tx), lock).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *ventaRepo) CreateDetalle(ctx context.Context, tx *gorm.DB, d *model.DetalleVenta) error {
	return use(ctx, r.db, tx).Create(d).Error
}

func (r *ventaRepo) ActualizarDevuelto(ctx context.Context, tx *gorm.DB, d *model.DetalleVenta, delta int) error {
	d.CantidadDevuelta += delta
	d.Devuelto = d.CantidadDevuelta >= d.Cantidad
	return use(ctx, r.db, tx).Model(&model.DetalleVenta{}).Where("id = ?", d.ID).Updates(map[string]any{
		"cantidad_devuelta": d.CantidadDevuelta,
		"devuelto":          d.Devuelto,
	}).Error
}

func (r *ventaRepo) DeleteReemplazos(ctx context.Context, tx *gorm.DB, devolucionID uuid.UUID) ([]model.DetalleVenta, error) {
	var lineas []model.DetalleVenta
	q := use(ctx, r.db, tx)
	if err := q.Where("devolucion_id = ? AND es_reemplazo = ?", devolucionID, true).Find(&lineas).Error; err != nil {
		return nil, err
	}
	if len(lineas) == 0 {
		return nil, nil
	}
	err := q.Where("devolucion_id = ? AND es_reemplazo = ?", devolucionID, true).Delete(&model.DetalleVenta{}).Error
	return lineas, err
}
