package service

import (
	"context"
	"fmt"
	"testing"

	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ── Test database ─────────────────────────────────────────────────────────────

// newTestDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps every query of a transaction on the same handle.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	ctx     context.Context
	db      *gorm.DB
	repos   *repository.Repos
	ledger  LedgerService
	poster  PagoPoster
	usuario uuid.UUID
	pv      *model.PuntoVenta
	cliente *model.Cliente
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, DefaultLedgerPolicy())
}

func newFixtureWithPolicy(t *testing.T, policy LedgerPolicy) *fixture {
	t.Helper()
	db := newTestDB(t)
	repos := repository.NewRepos(db)
	ledger := NewLedgerService(repos.Cuentas, policy)
	poster := NewPagoPoster(repos.Pagos, repos.PuntosVenta, repos.Clientes, repos.Cuentas, ledger)

	f := &fixture{
		ctx:     context.Background(),
		db:      db,
		repos:   repos,
		ledger:  ledger,
		poster:  poster,
		usuario: uuid.New(),
	}

	f.pv = &model.PuntoVenta{Nombre: "Local Centro"}
	require.NoError(t, db.Create(f.pv).Error)
	f.cliente = &model.Cliente{Nombre: "Lucía Fernández"}
	require.NoError(t, db.Create(f.cliente).Error)
	return f
}

func (f *fixture) ventas() VentaService {
	return NewVentaService(f.repos, f.ledger, f.poster, nil)
}

func (f *fixture) ventasEquipo() VentaEquipoService {
	return NewVentaEquipoService(f.repos, f.ledger, f.poster, nil)
}

func (f *fixture) pagos(policy LedgerPolicy) PagoService {
	return NewPagoService(f.repos, f.ledger, f.poster, policy)
}

func (f *fixture) cuentas() CuentaCorrienteService {
	return NewCuentaCorrienteService(f.repos, f.ledger, f.poster)
}

func (f *fixture) devoluciones() DevolucionService {
	return NewDevolucionService(f.repos, f.ledger, f.poster)
}

func (f *fixture) reparaciones() ReparacionService {
	return NewReparacionService(f.repos, f.ledger, f.poster)
}

// producto creates an active product with stock units at the fixture's punto de venta.
func (f *fixture) producto(t *testing.T, nombre, precio string, stock int) *model.Producto {
	t.Helper()
	p := &model.Producto{
		Codigo:    "P-" + uuid.NewString()[:8],
		Nombre:    nombre,
		Categoria: "accesorios",
		Precio:    dec(precio),
		Costo:     dec(precio).Div(decimal.NewFromInt(2)).Round(2),
	}
	require.NoError(t, f.db.Create(p).Error)
	require.NoError(t, f.db.Create(&model.Inventario{
		ProductoID:   p.ID,
		PuntoVentaID: f.pv.ID,
		Stock:        stock,
	}).Error)
	return p
}

func (f *fixture) equipo(t *testing.T, imei, precio string) *model.Equipo {
	t.Helper()
	e := &model.Equipo{
		Marca:        "Samsung",
		Modelo:       "Galaxy A54",
		IMEI:         imei,
		Estado:       "nuevo",
		Precio:       dec(precio),
		Costo:        dec(precio).Div(decimal.NewFromInt(2)).Round(2),
		PuntoVentaID: f.pv.ID,
	}
	require.NoError(t, f.db.Create(e).Error)
	return e
}

// abrirCuenta opens an account for the fixture's cliente through the ledger.
func (f *fixture) abrirCuenta(t *testing.T, limite, saldoInicial string) *model.CuentaCorriente {
	t.Helper()
	var cuenta *model.CuentaCorriente
	err := runTx(f.ctx, f.db, func(tx *gorm.DB) error {
		var err error
		cuenta, err = f.ledger.AbrirCuenta(f.ctx, tx, f.cliente.ID, dec(limite), dec(saldoInicial), f.usuario)
		return err
	})
	require.NoError(t, err)
	return cuenta
}

func (f *fixture) cuenta(t *testing.T) *model.CuentaCorriente {
	t.Helper()
	c, err := f.repos.Cuentas.FindActivaByCliente(f.ctx, nil, f.cliente.ID, false)
	require.NoError(t, err)
	return c
}

func (f *fixture) stock(t *testing.T, productoID uuid.UUID) int {
	t.Helper()
	inv, err := f.repos.Productos.FindInventario(f.ctx, nil, productoID, f.pv.ID, false)
	require.NoError(t, err)
	return inv.Stock
}

func (f *fixture) movimientos(t *testing.T, cuentaID uuid.UUID) []model.MovimientoCuentaCorriente {
	t.Helper()
	var movs []model.MovimientoCuentaCorriente
	require.NoError(t, f.db.Where("cuenta_corriente_id = ?", cuentaID).Find(&movs).Error)
	return movs
}

func (f *fixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

// assertLedger checks that every movement of the account carries a consistent
// before/after snapshot and that the deltas add up to the stored saldo.
func (f *fixture) assertLedger(t *testing.T, cuentaID uuid.UUID) {
	t.Helper()
	cuenta, err := f.repos.Cuentas.FindByID(f.ctx, nil, cuentaID, false)
	require.NoError(t, err)

	suma := decimal.Zero
	for _, m := range f.movimientos(t, cuentaID) {
		assertDec(t, m.SaldoAnterior.Add(m.Delta()).StringFixed(2), m.SaldoNuevo)
		assert.True(t, m.Monto.IsPositive(), "monto must be positive")
		suma = suma.Add(m.Delta())
	}
	assertDec(t, suma.StringFixed(2), cuenta.Saldo)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.StringFixed(2))
}

func strPtr(s string) *string { return &s }
