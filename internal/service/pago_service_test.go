package service

import (
	"testing"

	"cellfie/internal/dto"
	"cellfie/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ventaContado registers a cash sale so direct payments have something to reference.
func (f *fixture) ventaContado(t *testing.T) uuid.UUID {
	t.Helper()
	p := f.producto(t, "Funda", "1000", 10)
	resp, err := f.ventas().RegistrarVenta(f.ctx, f.usuario, ventaReq(f, &f.cliente.ID,
		[]dto.ItemVentaRequest{item(p, 1)}, leg("Efectivo", "1000")))
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func (f *fixture) pagoReq(ref uuid.UUID, tipoPago, monto string) dto.RegistrarPagoRequest {
	return dto.RegistrarPagoRequest{
		Monto:          dec(monto),
		TipoPago:       tipoPago,
		ReferenciaID:   ref.String(),
		TipoReferencia: string(model.RefVenta),
		ClienteID:      strPtr(f.cliente.ID.String()),
		PuntoVentaID:   f.pv.ID.String(),
	}
}

// ── PagoPoster ────────────────────────────────────────────────────────────────

func TestPoster_CuentaCorrienteSinCuentaActiva(t *testing.T) {
	f := newFixture(t)

	err := runTx(f.ctx, f.db, func(tx *gorm.DB) error {
		_, err := f.poster.Registrar(f.ctx, tx, PagoInput{
			Monto:          dec("100"),
			TipoPago:       model.MetodoCuentaCorriente,
			ReferenciaID:   uuid.New(),
			TipoReferencia: model.RefVenta,
			ClienteID:      &f.cliente.ID,
			UsuarioID:      f.usuario,
			PuntoVentaID:   f.pv.ID,
		})
		return err
	})
	assert.ErrorIs(t, err, ErrSinCuentaActiva)
	assert.Zero(t, f.count(t, &model.Pago{}))
}

func TestPoster_PostaUnSoloCargo(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "0")

	var pago *model.Pago
	require.NoError(t, runTx(f.ctx, f.db, func(tx *gorm.DB) error {
		var err error
		pago, err = f.poster.Registrar(f.ctx, tx, PagoInput{
			Monto:          dec("750"),
			TipoPago:       "Cuenta corriente",
			ReferenciaID:   uuid.New(),
			TipoReferencia: model.RefReparacion,
			ClienteID:      &f.cliente.ID,
			UsuarioID:      f.usuario,
			PuntoVentaID:   f.pv.ID,
		})
		return err
	}))

	movs := f.movimientos(t, cuenta.ID)
	require.Len(t, movs, 1)
	require.NotNil(t, pago.MovimientoID)
	assert.Equal(t, movs[0].ID, *pago.MovimientoID)
	assert.Equal(t, model.MovimientoCargo, movs[0].Tipo)
	assertDec(t, "750", f.cuenta(t).Saldo)
}

func TestPoster_MovimientoPrevioSeVinculaSinDuplicar(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "0")
	previo, err := f.post(t, cuenta.ID, model.MovimientoCargo, "300", false)
	require.NoError(t, err)

	require.NoError(t, runTx(f.ctx, f.db, func(tx *gorm.DB) error {
		_, err := f.poster.Registrar(f.ctx, tx, PagoInput{
			Monto:          dec("300"),
			TipoPago:       model.MetodoCuentaCorriente,
			ReferenciaID:   uuid.New(),
			TipoReferencia: model.RefVenta,
			ClienteID:      &f.cliente.ID,
			UsuarioID:      f.usuario,
			PuntoVentaID:   f.pv.ID,
			MovimientoID:   &previo.ID,
		})
		return err
	}))

	assert.Len(t, f.movimientos(t, cuenta.ID), 1)
	assertDec(t, "300", f.cuenta(t).Saldo)
}

func TestPoster_SinClienteNoTocaElLedger(t *testing.T) {
	f := newFixture(t)

	var pago *model.Pago
	require.NoError(t, runTx(f.ctx, f.db, func(tx *gorm.DB) error {
		var err error
		pago, err = f.poster.Registrar(f.ctx, tx, PagoInput{
			Monto:          dec("120"),
			TipoPago:       model.MetodoCuentaCorriente,
			ReferenciaID:   uuid.New(),
			TipoReferencia: model.RefVenta,
			UsuarioID:      f.usuario,
			PuntoVentaID:   f.pv.ID,
		})
		return err
	}))
	assert.Nil(t, pago.MovimientoID)
	assert.Zero(t, f.count(t, &model.MovimientoCuentaCorriente{}))
}

func TestPoster_Validaciones(t *testing.T) {
	f := newFixture(t)
	base := PagoInput{
		Monto:          dec("10"),
		TipoPago:       "Efectivo",
		ReferenciaID:   uuid.New(),
		TipoReferencia: model.RefVenta,
		UsuarioID:      f.usuario,
		PuntoVentaID:   f.pv.ID,
	}
	otroCliente := uuid.New()

	cases := []struct {
		name   string
		mutate func(*PagoInput)
		want   error
	}{
		{"monto cero", func(in *PagoInput) { in.Monto = dec("0") }, ErrDatoInvalido},
		{"monto menor a un centavo", func(in *PagoInput) { in.Monto = dec("0.004") }, ErrDatoInvalido},
		{"sin tipo de pago", func(in *PagoInput) { in.TipoPago = "" }, ErrDatoInvalido},
		{"referencia desconocida", func(in *PagoInput) { in.TipoReferencia = "factura" }, ErrDatoInvalido},
		{"punto de venta inexistente", func(in *PagoInput) { in.PuntoVentaID = uuid.New() }, ErrPuntoVentaNoEncontrado},
		{"cliente inexistente", func(in *PagoInput) { in.ClienteID = &otroCliente }, ErrClienteNoEncontrado},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			err := runTx(f.ctx, f.db, func(tx *gorm.DB) error {
				_, err := f.poster.Registrar(f.ctx, tx, in)
				return err
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// ── PagoService ───────────────────────────────────────────────────────────────

func TestPagoService_RegistrarYAnular(t *testing.T) {
	f := newFixture(t)
	ventaID := f.ventaContado(t)
	svc := f.pagos(DefaultLedgerPolicy())

	pago, err := svc.Registrar(f.ctx, f.usuario, f.pagoReq(ventaID, "Transferencia", "250"))
	require.NoError(t, err)
	assert.Nil(t, pago.MovimientoID)
	assert.False(t, pago.Anulado)

	pagoID := uuid.MustParse(pago.ID)
	require.NoError(t, svc.Anular(f.ctx, f.usuario, pagoID, "duplicado"))

	err = svc.Anular(f.ctx, f.usuario, pagoID, "duplicado")
	assert.ErrorIs(t, err, ErrYaAnulado)

	lista, err := svc.ListarPorReferencia(f.ctx, dto.PagoFilter{ReferenciaID: ventaID.String(), TipoReferencia: string(model.RefVenta)})
	require.NoError(t, err)
	require.Len(t, lista, 2)
	anulados := 0
	for _, p := range lista {
		if p.Anulado {
			anulados++
		}
	}
	assert.Equal(t, 1, anulados)
}

func TestPagoService_AnularCuentaCorrienteRevierteUnaVez(t *testing.T) {
	f := newFixture(t)
	ventaID := f.ventaContado(t)
	cuenta := f.abrirCuenta(t, "0", "0")
	svc := f.pagos(DefaultLedgerPolicy())

	pago, err := svc.Registrar(f.ctx, f.usuario, f.pagoReq(ventaID, model.MetodoCuentaCorriente, "400"))
	require.NoError(t, err)
	require.NotNil(t, pago.MovimientoID)
	assertDec(t, "400", f.cuenta(t).Saldo)

	pagoID := uuid.MustParse(pago.ID)
	require.NoError(t, svc.Anular(f.ctx, f.usuario, pagoID, "mal imputado"))
	assertDec(t, "0", f.cuenta(t).Saldo)

	assert.ErrorIs(t, svc.Anular(f.ctx, f.usuario, pagoID, "mal imputado"), ErrYaAnulado)
	movs := f.movimientos(t, cuenta.ID)
	assert.Len(t, movs, 2)
	for _, m := range movs {
		if m.MovimientoOrigenID != nil {
			assert.Equal(t, model.RefAnulacionPago, m.TipoReferencia)
		}
	}
	f.assertLedger(t, cuenta.ID)
}

func TestPagoService_CuentaCorrienteRequiereCuenta(t *testing.T) {
	f := newFixture(t)
	ventaID := f.ventaContado(t)

	_, err := f.pagos(DefaultLedgerPolicy()).Registrar(f.ctx, f.usuario, f.pagoReq(ventaID, model.MetodoCuentaCorriente, "400"))
	assert.ErrorIs(t, err, ErrSinCuentaActiva)
	assert.Zero(t, f.count(t, &model.CuentaCorriente{}))
}

func TestPagoService_CuentaCorrienteCreaCuentaSiLaPoliticaLoPermite(t *testing.T) {
	f := newFixture(t)
	ventaID := f.ventaContado(t)

	_, err := f.pagos(LedgerPolicy{PagoDirectoCreaCuenta: true}).Registrar(f.ctx, f.usuario, f.pagoReq(ventaID, model.MetodoCuentaCorriente, "400"))
	require.NoError(t, err)
	assertDec(t, "400", f.cuenta(t).Saldo)
}

func TestPagoService_ReferenciaInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.pagos(DefaultLedgerPolicy()).Registrar(f.ctx, f.usuario, f.pagoReq(uuid.New(), "Efectivo", "10"))
	assert.ErrorIs(t, err, ErrReferenciaNoEncontrada)

	req := f.pagoReq(uuid.New(), "Efectivo", "10")
	req.TipoReferencia = "anulacion_venta"
	_, err = f.pagos(DefaultLedgerPolicy()).Registrar(f.ctx, f.usuario, req)
	assert.ErrorIs(t, err, ErrDatoInvalido)
}
