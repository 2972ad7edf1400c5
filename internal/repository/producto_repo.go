package repository

import (
	"context"
	"errors"

	"cellfie/internal/dto"
	"cellfie/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products and their
// per-store stock counters. Services depend on this interface, not on the
// concrete GORM implementation.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)

	// FindInventario loads the stock row of a product at a punto de venta.
	// A missing row is returned as a zero-stock value that is not yet persisted.
	FindInventario(ctx context.Context, tx *gorm.DB, productoID, puntoVentaID uuid.UUID, lock bool) (*model.Inventario, error)
	// AjustarStockTx applies delta to an inventario row (creating it if needed)
	// and returns the stock before and after.
	AjustarStockTx(ctx context.Context, tx *gorm.DB, productoID, puntoVentaID uuid.UUID, delta int) (antes, despues int, err error)
	// FijarStockTx overwrites the stock counter and returns the previous value.
	FijarStockTx(ctx context.Context, tx *gorm.DB, inv *model.Inventario, stock int) (antes int, err error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	if err := use(ctx, r.db, tx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	switch filter.Activo {
	case "false":
		q = q.Where("activo = ?", false)
	case "all":
	default:
		q = q.Where("activo = ?", true)
	}
	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre) LIKE LOWER(?)", "%"+filter.Nombre+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginate(filter.Page, filter.Limit, 50, 200)
	err := q.Order("nombre ASC").Limit(limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) FindInventario(ctx context.Context, tx *gorm.DB, productoID, puntoVentaID uuid.UUID, lock bool) (*model.Inventario, error) {
	var inv model.Inventario
	err := forUpdate(use(ctx, r.db, tx), lock).
		Where("producto_id = ? AND punto_venta_id = ?", productoID, puntoVentaID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Inventario{ProductoID: productoID, PuntoVentaID: puntoVentaID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *productoRepo) AjustarStockTx(ctx context.Context, tx *gorm.DB, productoID, puntoVentaID uuid.UUID, delta int) (int, int, error) {
	inv, err := r.FindInventario(ctx, tx, productoID, puntoVentaID, true)
	if err != nil {
		return 0, 0, err
	}
	antes := inv.Stock
	if inv.ID == uuid.Nil {
		inv.Stock = delta
		if err := use(ctx, r.db, tx).Create(inv).Error; err != nil {
			return 0, 0, err
		}
		return antes, inv.Stock, nil
	}
	err = use(ctx, r.db, tx).Model(&model.Inventario{}).
		Where("id = ?", inv.ID).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
	if err != nil {
		return 0, 0, err
	}
	return antes, antes + delta, nil
}

func (r *productoRepo) FijarStockTx(ctx context.Context, tx *gorm.DB, inv *model.Inventario, stock int) (int, error) {
	antes := inv.Stock
	inv.Stock = stock
	if inv.ID == uuid.Nil {
		return antes, use(ctx, r.db, tx).Create(inv).Error
	}
	return antes, use(ctx, r.db, tx).Model(&model.Inventario{}).
		Where("id = ?", inv.ID).
		Updates(map[string]any{"stock": stock, "stock_minimo": inv.StockMinimo}).Error
}
