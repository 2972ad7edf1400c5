package repository

import (
	"context"
	"errors"
	"time"

	"cellfie/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CuentaCorrienteRepository is the persistence side of the ledger. Every write
// takes the caller's tx: the ledger has no transaction of its own.
type CuentaCorrienteRepository interface {
	// FindActivaByCliente returns gorm.ErrRecordNotFound when the customer has no active account.
	FindActivaByCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, lock bool) (*model.CuentaCorriente, error)
	// FindByCliente returns the most recent account of the customer, active or not.
	FindByCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) (*model.CuentaCorriente, error)
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.CuentaCorriente, error)
	Create(ctx context.Context, tx *gorm.DB, c *model.CuentaCorriente) error
	// GuardarSaldo writes saldo guarded by the version the caller read.
	// Returns ErrVersionConflict when another writer got there first.
	GuardarSaldo(ctx context.Context, tx *gorm.DB, c *model.CuentaCorriente, saldo decimal.Decimal, fecha time.Time) error
	ActualizarLimite(ctx context.Context, tx *gorm.DB, c *model.CuentaCorriente, limite decimal.Decimal) error
	ActualizarEstado(ctx context.Context, tx *gorm.DB, c *model.CuentaCorriente, activo bool) error

	CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCuentaCorriente) error
	FindMovimientoByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.MovimientoCuentaCorriente, error)
	ExisteReversion(ctx context.Context, tx *gorm.DB, origenID uuid.UUID) (bool, error)
	// ListMovimientos returns a page of movements, newest first.
	ListMovimientos(ctx context.Context, cuentaID uuid.UUID, page, limit int) ([]model.MovimientoCuentaCorriente, int64, error)

	DB() *gorm.DB
}

type cuentaCorrienteRepo struct{ db *gorm.DB }

func NewCuentaCorrienteRepository(db *gorm.DB) CuentaCorrienteRepository {
	return &cuentaCorrienteRepo{db: db}
}

func (r *cuentaCorrienteRepo) DB() *gorm.DB { return r.db }

func (r *cuentaCorrienteRepo) FindActivaByCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, lock bool) (*model.CuentaCorriente, error) {
	var c model.CuentaCorriente
	err := forUpdate(use(ctx, r.db, tx), lock).
		Where("cliente_id = ? AND activo = ?", clienteID, true).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cuentaCorrienteRepo) FindByCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) (*model.CuentaCorriente, error) {
	var c model.CuentaCorriente
	err := use(ctx, r.db, tx).
		Preload("Cliente").
		Where("cliente_id = ?", clienteID).
		Order("activo DESC, created_at DESC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cuentaCorrienteRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.CuentaCorriente, error) {
	var c model.CuentaCorriente
	if err := forUpdate(use(ctx, r.db, tx), lock).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cuentaCorrienteRepo) Create(ctx context.Context, tx *gorm.DB, c *model.CuentaCorriente) error {
	return use(ctx, r.db, tx).Create(c).Error
}

func (r *cuentaCorrienteRepo) GuardarSaldo(ctx context.Context, tx *gorm.DB, c *model.CuentaCorriente, saldo decimal.Decimal, fecha time.Time) error {
	res := use(ctx, r.db, tx).Model(&model.CuentaCorriente{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]any{
			"saldo":                   saldo,
			"fecha_ultimo_movimiento": fecha,
			"version":                 gorm.Expr("version + 1"),
			"updated_at":              fecha,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	c.Saldo = saldo
	c.FechaUltimoMovimiento = &fecha
	c.Version++
	return nil
}

func (r *cuentaCorrienteRepo) ActualizarLimite(ctx context.Context, tx *gorm.DB, c *model.CuentaCorriente, limite decimal.Decimal) error {
	return r.bump(ctx, tx, c, map[string]any{"limite_credito": limite}, func() { c.LimiteCredito = limite })
}

func (r *cuentaCorrienteRepo) ActualizarEstado(ctx context.Context, tx *gorm.DB, c *model.CuentaCorriente, activo bool) error {
	return r.bump(ctx, tx, c, map[string]any{"activo": activo}, func() { c.Activo = activo })
}

func (r *cuentaCorrienteRepo) bump(ctx context.Context, tx *gorm.DB, c *model.CuentaCorriente, cols map[string]any, apply func()) error {
	cols["version"] = gorm.Expr("version + 1")
	cols["updated_at"] = time.Now()
	res := use(ctx, r.db, tx).Model(&model.CuentaCorriente{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	apply()
	c.Version++
	return nil
}

func (r *cuentaCorrienteRepo) CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCuentaCorriente) error {
	return use(ctx, r.db, tx).Create(m).Error
}

func (r *cuentaCorrienteRepo) FindMovimientoByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.MovimientoCuentaCorriente, error) {
	var m model.MovimientoCuentaCorriente
	if err := use(ctx, r.db, tx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *cuentaCorrienteRepo) ExisteReversion(ctx context.Context, tx *gorm.DB, origenID uuid.UUID) (bool, error) {
	var m model.MovimientoCuentaCorriente
	err := use(ctx, r.db, tx).Select("id").Where("movimiento_origen_id = ?", origenID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *cuentaCorrienteRepo) ListMovimientos(ctx context.Context, cuentaID uuid.UUID, page, limit int) ([]model.MovimientoCuentaCorriente, int64, error) {
	_, limit, offset := paginate(page, limit, 50, 200)

	q := r.db.WithContext(ctx).Model(&model.MovimientoCuentaCorriente{}).
		Where("cuenta_corriente_id = ?", cuentaID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movs []model.MovimientoCuentaCorriente
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movs).Error
	return movs, total, err
}
