package service

import (
	"regexp"
	"testing"

	"cellfie/internal/dto"
	"cellfie/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ventaReq(f *fixture, clienteID *uuid.UUID, items []dto.ItemVentaRequest, pagos ...dto.PagoLegRequest) dto.RegistrarVentaRequest {
	req := dto.RegistrarVentaRequest{
		PuntoVentaID: f.pv.ID.String(),
		Productos:    items,
		Pagos:        pagos,
	}
	if clienteID != nil {
		req.ClienteID = strPtr(clienteID.String())
	}
	return req
}

func item(p *model.Producto, cantidad int) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{ProductoID: p.ID.String(), Cantidad: cantidad}
}

func leg(tipo, monto string) dto.PagoLegRequest {
	return dto.PagoLegRequest{TipoPago: tipo, Monto: dec(monto)}
}

func (f *fixture) pagosDe(t *testing.T, refID uuid.UUID) []model.Pago {
	t.Helper()
	var pagos []model.Pago
	require.NoError(t, f.db.Where("referencia_id = ?", refID).Order("created_at ASC").Find(&pagos).Error)
	return pagos
}

var numeroFactura = regexp.MustCompile(`^F\d{6}-\d{4}$`)

// ── RegistrarVenta ────────────────────────────────────────────────────────────

func TestRegistrarVenta_Efectivo(t *testing.T) {
	f := newFixture(t)
	funda := f.producto(t, "Funda iPhone 15", "2500", 10)
	cargador := f.producto(t, "Cargador 20W", "8000", 3)

	resp, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, nil,
		[]dto.ItemVentaRequest{item(funda, 2), item(cargador, 1)},
		leg("Efectivo", "13000"),
	))
	require.NoError(t, err)
	assert.Regexp(t, numeroFactura, resp.NumeroFactura)
	assertDec(t, "13000", resp.Total)

	assert.Equal(t, 8, f.stock(t, funda.ID))
	assert.Equal(t, 2, f.stock(t, cargador.ID))

	ventaID := uuid.MustParse(resp.ID)
	pagos := f.pagosDe(t, ventaID)
	require.Len(t, pagos, 1)
	assert.Nil(t, pagos[0].MovimientoID)
	assert.Equal(t, model.RefVenta, pagos[0].TipoReferencia)

	var movs []model.MovimientoStock
	require.NoError(t, f.db.Where("referencia_id = ?", ventaID).Find(&movs).Error)
	assert.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, StockVenta, m.Tipo)
		assert.Negative(t, m.Cantidad)
	}
}

func TestRegistrarVenta_NumeracionCorrelativa(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Vidrio templado", "1000", 5)
	svc := f.ventas()

	a, err := svc.RegistrarVenta(f.ctx, f.usuario, ventaReq(f, nil, []dto.ItemVentaRequest{item(p, 1)}, leg("Efectivo", "1000")))
	require.NoError(t, err)
	b, err := svc.RegistrarVenta(f.ctx, f.usuario, ventaReq(f, nil, []dto.ItemVentaRequest{item(p, 1)}, leg("Efectivo", "1000")))
	require.NoError(t, err)

	assert.Equal(t, a.NumeroFactura[:8], b.NumeroFactura[:8])
	assert.Equal(t, "0001", a.NumeroFactura[8:])
	assert.Equal(t, "0002", b.NumeroFactura[8:])
}

func TestRegistrarVenta_Descuentos(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Auriculares BT", "10000", 5)

	req := ventaReq(f, nil, []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2, PorcentajeDescuento: dec("10")}}, leg("Débito", "16200"))
	req.PorcentajeDescuento = dec("10")
	req.PorcentajeInteres = dec("15")

	resp, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, req)
	require.NoError(t, err)
	// 20000 - 10% = 18000 on the line, minus 10% general; interest is informational.
	assertDec(t, "16200", resp.Total)

	v, err := f.ventas().ObtenerVenta(f.ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assertDec(t, "18000", v.Subtotal)
	assertDec(t, "15", v.PorcentajeInteres)
}

func TestRegistrarVenta_PagosNoCoinciden(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Cable USB-C", "3000", 4)

	_, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, nil,
		[]dto.ItemVentaRequest{item(p, 2)},
		leg("Efectivo", "5000"),
	))
	assert.ErrorIs(t, err, ErrPagosNoCoinciden)

	assert.Equal(t, 4, f.stock(t, p.ID))
	assert.Zero(t, f.count(t, &model.Venta{}))
	assert.Zero(t, f.count(t, &model.Pago{}))
}

func TestRegistrarVenta_ToleranciaDeUnCentavo(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Soporte auto", "3333.33", 4)

	_, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, nil,
		[]dto.ItemVentaRequest{item(p, 1)},
		leg("Efectivo", "1111.11"), leg("Transferencia", "2222.21"),
	))
	require.NoError(t, err)
}

func TestRegistrarVenta_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Power bank", "15000", 3)

	// Repeated lines of the same product are checked on their sum.
	_, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, nil,
		[]dto.ItemVentaRequest{item(p, 2), item(p, 2)},
		leg("Efectivo", "60000"),
	))
	assert.ErrorIs(t, err, ErrStockInsuficiente)
	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.Zero(t, f.count(t, &model.MovimientoStock{}))
}

func TestRegistrarVenta_CuentaCorrienteSinCliente(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Funda", "1000", 3)

	_, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, nil,
		[]dto.ItemVentaRequest{item(p, 1)},
		leg(model.MetodoCuentaCorriente, "1000"),
	))
	assert.ErrorIs(t, err, ErrDatoInvalido)
}

func TestRegistrarVenta_CuentaCorrienteAbreCuenta(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Smartwatch", "45000", 2)

	resp, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, &f.cliente.ID,
		[]dto.ItemVentaRequest{item(p, 1)},
		leg("cuenta corriente", "45000"),
	))
	require.NoError(t, err)

	cuenta := f.cuenta(t)
	assertDec(t, "45000", cuenta.Saldo)
	assertDec(t, "0", cuenta.LimiteCredito)

	pagos := f.pagosDe(t, uuid.MustParse(resp.ID))
	require.Len(t, pagos, 1)
	require.NotNil(t, pagos[0].MovimientoID)

	movs := f.movimientos(t, cuenta.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, *pagos[0].MovimientoID, movs[0].ID)
	assert.Equal(t, model.RefVenta, movs[0].TipoReferencia)
	f.assertLedger(t, cuenta.ID)
}

func TestRegistrarVenta_PagoMixto(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Parlante", "1500", 5)
	f.abrirCuenta(t, "0", "0")

	resp, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, &f.cliente.ID,
		[]dto.ItemVentaRequest{item(p, 1)},
		leg("Efectivo", "1000"), leg(model.MetodoCuentaCorriente, "500"),
	))
	require.NoError(t, err)

	cuenta := f.cuenta(t)
	assertDec(t, "500", cuenta.Saldo)

	pagos := f.pagosDe(t, uuid.MustParse(resp.ID))
	require.Len(t, pagos, 2)
	vinculados := 0
	for _, pg := range pagos {
		if pg.MovimientoID != nil {
			vinculados++
			assertDec(t, "500", pg.Monto)
		}
	}
	assert.Equal(t, 1, vinculados)
	assert.Len(t, f.movimientos(t, cuenta.ID), 1)
}

func TestRegistrarVenta_LimiteDeCreditoRevierteTodo(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Tablet", "200", 5)
	f.abrirCuenta(t, "1000", "900")

	_, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, &f.cliente.ID,
		[]dto.ItemVentaRequest{item(p, 1)},
		leg(model.MetodoCuentaCorriente, "200"),
	))
	assert.ErrorIs(t, err, ErrLimiteCredito)

	assertDec(t, "900", f.cuenta(t).Saldo)
	assert.Equal(t, 5, f.stock(t, p.ID))
	assert.Zero(t, f.count(t, &model.Venta{}))
	assert.Zero(t, f.count(t, &model.Pago{}))
	assert.Zero(t, f.count(t, &model.MovimientoStock{}))
}

func TestRegistrarVenta_ProductoInactivo(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Modelo discontinuado", "100", 5)
	require.NoError(t, f.db.Model(p).Update("activo", false).Error)

	_, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, nil, []dto.ItemVentaRequest{item(p, 1)}, leg("Efectivo", "100")))
	assert.ErrorIs(t, err, ErrDatoInvalido)
}

// ── AnularVenta ───────────────────────────────────────────────────────────────

func TestAnularVenta_RestauraStockYCuenta(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Cargador inalámbrico", "6000", 5)
	f.abrirCuenta(t, "0", "0")
	svc := f.ventas()

	resp, err := svc.RegistrarVenta(f.ctx, f.usuario, ventaReq(f, &f.cliente.ID,
		[]dto.ItemVentaRequest{item(p, 2)},
		leg("Efectivo", "4000"), leg(model.MetodoCuentaCorriente, "8000"),
	))
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, p.ID))
	assertDec(t, "8000", f.cuenta(t).Saldo)

	ventaID := uuid.MustParse(resp.ID)
	require.NoError(t, svc.AnularVenta(f.ctx, f.usuario, ventaID, "error de carga"))

	assert.Equal(t, 5, f.stock(t, p.ID))
	cuenta := f.cuenta(t)
	assertDec(t, "0", cuenta.Saldo)

	for _, pg := range f.pagosDe(t, ventaID) {
		assert.True(t, pg.Anulado)
		require.NotNil(t, pg.MotivoAnulacion)
		assert.Equal(t, "error de carga", *pg.MotivoAnulacion)
	}

	movs := f.movimientos(t, cuenta.ID)
	require.Len(t, movs, 2)
	tipos := []model.TipoReferencia{movs[0].TipoReferencia, movs[1].TipoReferencia}
	assert.ElementsMatch(t, []model.TipoReferencia{model.RefVenta, model.RefAnulacionVenta}, tipos)
	f.assertLedger(t, cuenta.ID)

	v, err := svc.ObtenerVenta(f.ctx, ventaID)
	require.NoError(t, err)
	assert.True(t, v.Anulada)

	err = svc.AnularVenta(f.ctx, f.usuario, ventaID, "otra vez")
	assert.ErrorIs(t, err, ErrYaAnulado)
	assert.Equal(t, 5, f.stock(t, p.ID))
	assert.Len(t, f.movimientos(t, cuenta.ID), 2)
}

func TestAnularVenta_ReversionSobreSaldoActual(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Funda", "1000", 5)
	f.abrirCuenta(t, "0", "0")
	svc := f.ventas()

	resp, err := svc.RegistrarVenta(f.ctx, f.usuario, ventaReq(f, &f.cliente.ID,
		[]dto.ItemVentaRequest{item(p, 1)}, leg(model.MetodoCuentaCorriente, "1000")))
	require.NoError(t, err)
	_, err = svc.RegistrarVenta(f.ctx, f.usuario, ventaReq(f, &f.cliente.ID,
		[]dto.ItemVentaRequest{item(p, 2)}, leg(model.MetodoCuentaCorriente, "2000")))
	require.NoError(t, err)
	assertDec(t, "3000", f.cuenta(t).Saldo)

	require.NoError(t, svc.AnularVenta(f.ctx, f.usuario, uuid.MustParse(resp.ID), "cliente desistió"))

	cuenta := f.cuenta(t)
	assertDec(t, "2000", cuenta.Saldo)
	var rev model.MovimientoCuentaCorriente
	require.NoError(t, f.db.Where("movimiento_origen_id IS NOT NULL").First(&rev).Error)
	assertDec(t, "3000", rev.SaldoAnterior)
	assertDec(t, "2000", rev.SaldoNuevo)
	f.assertLedger(t, cuenta.ID)
}

func TestAnularVenta_NoEncontrada(t *testing.T) {
	f := newFixture(t)
	err := f.ventas().AnularVenta(f.ctx, f.usuario, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestRegistrarVenta_ConservaStockEnCiclo(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Memoria 64GB", "4500", 6)
	svc := f.ventas()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		resp, err := svc.RegistrarVenta(f.ctx, f.usuario, ventaReq(f, nil, []dto.ItemVentaRequest{item(p, 2)}, leg("Efectivo", "9000")))
		require.NoError(t, err)
		ids = append(ids, uuid.MustParse(resp.ID))
	}
	assert.Equal(t, 0, f.stock(t, p.ID))

	for _, id := range ids {
		require.NoError(t, svc.AnularVenta(f.ctx, f.usuario, id, "inventario"))
	}
	assert.Equal(t, 6, f.stock(t, p.ID))

	var suma int64
	require.NoError(t, f.db.Model(&model.MovimientoStock{}).Select("COALESCE(SUM(cantidad), 0)").Scan(&suma).Error)
	assert.Zero(t, suma)
}
