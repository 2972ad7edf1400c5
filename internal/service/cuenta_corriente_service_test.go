package service

import (
	"testing"

	"cellfie/internal/dto"
	"cellfie/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCuenta_Abrir(t *testing.T) {
	f := newFixture(t)
	svc := f.cuentas()

	resp, err := svc.Abrir(f.ctx, f.usuario, dto.AbrirCuentaRequest{
		ClienteID:     f.cliente.ID.String(),
		LimiteCredito: dec("50000"),
		SaldoInicial:  dec("12000"),
	})
	require.NoError(t, err)
	assertDec(t, "12000", resp.Saldo)
	assert.True(t, resp.Activo)

	_, err = svc.Abrir(f.ctx, f.usuario, dto.AbrirCuentaRequest{ClienteID: f.cliente.ID.String()})
	assert.ErrorIs(t, err, ErrCuentaExistente)

	_, err = svc.Abrir(f.ctx, f.usuario, dto.AbrirCuentaRequest{ClienteID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrClienteNoEncontrado)

	got, err := svc.ObtenerPorCliente(f.ctx, f.cliente.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)
	assert.Equal(t, f.cliente.Nombre, got.ClienteNombre)
	require.Len(t, got.Movimientos, 1)
	assert.Equal(t, string(model.RefAjuste), got.Movimientos[0].TipoReferencia)
}

func TestCuenta_ObtenerSinCuenta(t *testing.T) {
	f := newFixture(t)
	_, err := f.cuentas().ObtenerPorCliente(f.ctx, f.cliente.ID)
	assert.ErrorIs(t, err, ErrCuentaNoEncontrada)
}

func TestCuenta_Abono(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "5000")
	svc := f.cuentas()

	t.Run("supera la deuda", func(t *testing.T) {
		_, err := svc.RegistrarAbono(f.ctx, f.usuario, dto.AbonoCuentaRequest{ClienteID: f.cliente.ID.String(), Monto: dec("5000.01")})
		assert.ErrorIs(t, err, ErrSaldoInsuficiente)
	})

	t.Run("no se paga con cuenta corriente", func(t *testing.T) {
		_, err := svc.RegistrarAbono(f.ctx, f.usuario, dto.AbonoCuentaRequest{
			ClienteID: f.cliente.ID.String(),
			Monto:     dec("10"),
			TipoPago:  strPtr(model.MetodoCuentaCorriente),
		})
		assert.ErrorIs(t, err, ErrDatoInvalido)
	})

	t.Run("sin punto de venta solo mueve el ledger", func(t *testing.T) {
		mov, err := svc.RegistrarAbono(f.ctx, f.usuario, dto.AbonoCuentaRequest{ClienteID: f.cliente.ID.String(), Monto: dec("1000")})
		require.NoError(t, err)
		assert.Equal(t, string(model.MovimientoPago), mov.Tipo)
		assertDec(t, "4000", mov.SaldoNuevo)
		assert.Zero(t, f.count(t, &model.Pago{}))
	})

	t.Run("con punto de venta registra el pago vinculado", func(t *testing.T) {
		mov, err := svc.RegistrarAbono(f.ctx, f.usuario, dto.AbonoCuentaRequest{
			ClienteID:    f.cliente.ID.String(),
			Monto:        dec("4000"),
			TipoPago:     strPtr("Transferencia"),
			PuntoVentaID: strPtr(f.pv.ID.String()),
		})
		require.NoError(t, err)
		assertDec(t, "0", mov.SaldoNuevo)

		pagos := f.pagosDe(t, cuenta.ID)
		require.Len(t, pagos, 1)
		require.NotNil(t, pagos[0].MovimientoID)
		assert.Equal(t, mov.ID, pagos[0].MovimientoID.String())
		assert.Equal(t, model.RefCuentaCorriente, pagos[0].TipoReferencia)
	})

	assertDec(t, "0", f.cuenta(t).Saldo)
	f.assertLedger(t, cuenta.ID)
}

func TestCuenta_AbonoAnuladoRestauraLaDeuda(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "800")

	_, err := f.cuentas().RegistrarAbono(f.ctx, f.usuario, dto.AbonoCuentaRequest{
		ClienteID:    f.cliente.ID.String(),
		Monto:        dec("800"),
		PuntoVentaID: strPtr(f.pv.ID.String()),
	})
	require.NoError(t, err)
	pagos := f.pagosDe(t, cuenta.ID)
	require.Len(t, pagos, 1)

	require.NoError(t, f.pagos(DefaultLedgerPolicy()).Anular(f.ctx, f.usuario, pagos[0].ID, "cheque rechazado"))
	assertDec(t, "800", f.cuenta(t).Saldo)
	f.assertLedger(t, cuenta.ID)
}

func TestCuenta_CargoManual(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "1000", "0")
	svc := f.cuentas()

	mov, err := svc.RegistrarCargo(f.ctx, f.usuario, dto.CargoCuentaRequest{ClienteID: f.cliente.ID.String(), Monto: dec("600"), Notas: "saldo migrado"})
	require.NoError(t, err)
	assert.Equal(t, string(model.RefAjuste), mov.TipoReferencia)

	_, err = svc.RegistrarCargo(f.ctx, f.usuario, dto.CargoCuentaRequest{ClienteID: f.cliente.ID.String(), Monto: dec("500"), Notas: "ajuste"})
	assert.ErrorIs(t, err, ErrLimiteCredito)

	_, err = svc.CambiarEstado(f.ctx, cuenta.ID, false)
	require.NoError(t, err)
	_, err = svc.RegistrarCargo(f.ctx, f.usuario, dto.CargoCuentaRequest{ClienteID: f.cliente.ID.String(), Monto: dec("10"), Notas: "ajuste"})
	assert.ErrorIs(t, err, ErrCuentaInactiva)

	_, err = svc.RegistrarAbono(f.ctx, f.usuario, dto.AbonoCuentaRequest{ClienteID: f.cliente.ID.String(), Monto: dec("10")})
	assert.ErrorIs(t, err, ErrCuentaInactiva)
}

func TestCuenta_LimiteYEstado(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "0")
	svc := f.cuentas()

	resp, err := svc.ActualizarLimite(f.ctx, cuenta.ID, dec("2500"))
	require.NoError(t, err)
	assertDec(t, "2500", resp.LimiteCredito)

	_, err = svc.ActualizarLimite(f.ctx, cuenta.ID, dec("-1"))
	assert.ErrorIs(t, err, ErrDatoInvalido)

	resp, err = svc.CambiarEstado(f.ctx, cuenta.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.Activo)

	// A sale on account opens a fresh active account; reactivating the old one
	// would leave the customer with two.
	p := f.producto(t, "Funda", "100", 5)
	_, err = f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, &f.cliente.ID,
		[]dto.ItemVentaRequest{item(p, 1)}, leg(model.MetodoCuentaCorriente, "100")))
	require.NoError(t, err)

	_, err = svc.CambiarEstado(f.ctx, cuenta.ID, true)
	assert.ErrorIs(t, err, ErrCuentaExistente)
}

func TestCuenta_ListarMovimientos(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "100")
	for i := 0; i < 4; i++ {
		_, err := f.post(t, cuenta.ID, model.MovimientoCargo, "10", false)
		require.NoError(t, err)
	}

	page, err := f.cuentas().ListarMovimientos(f.ctx, cuenta.ID, dto.MovimientoFilter{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Len(t, page.Data, 3)

	page, err = f.cuentas().ListarMovimientos(f.ctx, cuenta.ID, dto.MovimientoFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	_, err = f.cuentas().ListarMovimientos(f.ctx, uuid.New(), dto.MovimientoFilter{Page: 1, Limit: 3})
	assert.ErrorIs(t, err, ErrCuentaNoEncontrada)
}
