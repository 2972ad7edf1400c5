package service

import (
	"testing"

	"cellfie/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (f *fixture) post(t *testing.T, cuentaID uuid.UUID, tipo model.TipoMovimiento, monto string, validarLimite bool) (*model.MovimientoCuentaCorriente, error) {
	t.Helper()
	var mov *model.MovimientoCuentaCorriente
	ref := uuid.New()
	err := runTx(f.ctx, f.db, func(tx *gorm.DB) error {
		var err error
		mov, err = f.ledger.Post(f.ctx, tx, MovimientoInput{
			CuentaID:       cuentaID,
			Tipo:           tipo,
			Monto:          dec(monto),
			ReferenciaID:   &ref,
			TipoReferencia: model.RefAjuste,
			UsuarioID:      f.usuario,
			ValidarLimite:  validarLimite,
		})
		return err
	})
	return mov, err
}

func (f *fixture) revertir(mov *model.MovimientoCuentaCorriente) (*model.MovimientoCuentaCorriente, error) {
	var rev *model.MovimientoCuentaCorriente
	err := runTx(f.ctx, f.db, func(tx *gorm.DB) error {
		var err error
		rev, err = f.ledger.Revertir(f.ctx, tx, mov, f.usuario, "error de carga", model.RefAjuste)
		return err
	})
	return rev, err
}

func TestLedger_PostKeepsSnapshots(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "0")

	cargo, err := f.post(t, cuenta.ID, model.MovimientoCargo, "1500", false)
	require.NoError(t, err)
	assertDec(t, "0", cargo.SaldoAnterior)
	assertDec(t, "1500", cargo.SaldoNuevo)

	pago, err := f.post(t, cuenta.ID, model.MovimientoPago, "400.50", false)
	require.NoError(t, err)
	assertDec(t, "1500", pago.SaldoAnterior)
	assertDec(t, "1099.50", pago.SaldoNuevo)

	assertDec(t, "1099.50", f.cuenta(t).Saldo)
	f.assertLedger(t, cuenta.ID)
}

func TestLedger_PagoMayorALaDeudaDejaSaldoAFavor(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "0")

	_, err := f.post(t, cuenta.ID, model.MovimientoPago, "300", false)
	require.NoError(t, err)
	assertDec(t, "-300", f.cuenta(t).Saldo)
	f.assertLedger(t, cuenta.ID)
}

func TestLedger_RechazaMontoNoPositivo(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "0")

	_, err := f.post(t, cuenta.ID, model.MovimientoCargo, "0", false)
	assert.ErrorIs(t, err, ErrDatoInvalido)
	_, err = f.post(t, cuenta.ID, model.MovimientoCargo, "-10", false)
	assert.ErrorIs(t, err, ErrDatoInvalido)
	// Rounds to zero.
	_, err = f.post(t, cuenta.ID, model.MovimientoCargo, "0.004", false)
	assert.ErrorIs(t, err, ErrDatoInvalido)
	assert.Empty(t, f.movimientos(t, cuenta.ID))
}

func TestLedger_CuentaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.post(t, uuid.New(), model.MovimientoCargo, "10", false)
	assert.ErrorIs(t, err, ErrCuentaNoEncontrada)
}

func TestLedger_LimiteDeCredito(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "1000", "900")

	_, err := f.post(t, cuenta.ID, model.MovimientoCargo, "200", true)
	assert.ErrorIs(t, err, ErrLimiteCredito)
	assertDec(t, "900", f.cuenta(t).Saldo)

	// Reaching the limit exactly is allowed.
	_, err = f.post(t, cuenta.ID, model.MovimientoCargo, "100", true)
	require.NoError(t, err)
	assertDec(t, "1000", f.cuenta(t).Saldo)

	// Payments never check the limit.
	_, err = f.post(t, cuenta.ID, model.MovimientoPago, "50", true)
	require.NoError(t, err)
	f.assertLedger(t, cuenta.ID)
}

func TestLedger_LimiteCeroEsIlimitado(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "0")

	_, err := f.post(t, cuenta.ID, model.MovimientoCargo, "999999", true)
	require.NoError(t, err)
}

func TestLedger_Revertir(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "0")

	cargo, err := f.post(t, cuenta.ID, model.MovimientoCargo, "800", false)
	require.NoError(t, err)
	_, err = f.post(t, cuenta.ID, model.MovimientoPago, "300", false)
	require.NoError(t, err)

	rev, err := f.revertir(cargo)
	require.NoError(t, err)
	assert.Equal(t, model.MovimientoPago, rev.Tipo)
	assertDec(t, "800", rev.Monto)
	require.NotNil(t, rev.MovimientoOrigenID)
	assert.Equal(t, cargo.ID, *rev.MovimientoOrigenID)
	// Anchored on the current saldo, not on the original snapshot.
	assertDec(t, "500", rev.SaldoAnterior)
	assertDec(t, "-300", rev.SaldoNuevo)

	_, err = f.revertir(cargo)
	assert.ErrorIs(t, err, ErrYaRevertido)

	_, err = f.revertir(rev)
	assert.ErrorIs(t, err, ErrDatoInvalido)

	assert.Len(t, f.movimientos(t, cuenta.ID), 3)
	f.assertLedger(t, cuenta.ID)
}

func TestLedger_AbrirCuenta(t *testing.T) {
	t.Run("saldo inicial como cargo de ajuste", func(t *testing.T) {
		f := newFixture(t)
		cuenta := f.abrirCuenta(t, "5000", "1200")
		assertDec(t, "1200", cuenta.Saldo)
		movs := f.movimientos(t, cuenta.ID)
		require.Len(t, movs, 1)
		assert.Equal(t, model.MovimientoCargo, movs[0].Tipo)
		assert.Equal(t, model.RefAjuste, movs[0].TipoReferencia)
	})

	t.Run("cuenta duplicada", func(t *testing.T) {
		f := newFixture(t)
		f.abrirCuenta(t, "0", "0")
		err := runTx(f.ctx, f.db, func(tx *gorm.DB) error {
			_, err := f.ledger.AbrirCuenta(f.ctx, tx, f.cliente.ID, dec("0"), dec("0"), f.usuario)
			return err
		})
		assert.ErrorIs(t, err, ErrCuentaExistente)
	})

	t.Run("saldo inicial sobre el limite", func(t *testing.T) {
		f := newFixture(t)
		err := runTx(f.ctx, f.db, func(tx *gorm.DB) error {
			_, err := f.ledger.AbrirCuenta(f.ctx, tx, f.cliente.ID, dec("100"), dec("150"), f.usuario)
			return err
		})
		assert.ErrorIs(t, err, ErrLimiteCredito)
		assert.Zero(t, f.count(t, &model.CuentaCorriente{}))
	})

	t.Run("saldo inicial sobre el limite sin control en apertura", func(t *testing.T) {
		f := newFixtureWithPolicy(t, LedgerPolicy{LimiteEnApertura: false})
		cuenta := f.abrirCuenta(t, "100", "150")
		assertDec(t, "150", cuenta.Saldo)
	})
}

func TestLedger_AsegurarCuentaEsIdempotente(t *testing.T) {
	f := newFixture(t)

	var a, b *model.CuentaCorriente
	require.NoError(t, runTx(f.ctx, f.db, func(tx *gorm.DB) error {
		var err error
		if a, err = f.ledger.AsegurarCuenta(f.ctx, tx, f.cliente.ID); err != nil {
			return err
		}
		b, err = f.ledger.AsegurarCuenta(f.ctx, tx, f.cliente.ID)
		return err
	}))
	assert.Equal(t, a.ID, b.ID)
	assertDec(t, "0", a.Saldo)
	assert.True(t, a.Activo)
	assert.EqualValues(t, 1, f.count(t, &model.CuentaCorriente{}))
}

func TestLedger_CuentaInactivaSoloSiSeRequiereActiva(t *testing.T) {
	f := newFixture(t)
	cuenta := f.abrirCuenta(t, "0", "0")
	require.NoError(t, f.db.Model(&model.CuentaCorriente{}).Where("id = ?", cuenta.ID).Update("activo", false).Error)

	ref := uuid.New()
	err := runTx(f.ctx, f.db, func(tx *gorm.DB) error {
		_, err := f.ledger.Post(f.ctx, tx, MovimientoInput{
			CuentaID:       cuenta.ID,
			Tipo:           model.MovimientoPago,
			Monto:          dec("10"),
			ReferenciaID:   &ref,
			TipoReferencia: model.RefCuentaCorriente,
			UsuarioID:      f.usuario,
			RequerirActiva: true,
		})
		return err
	})
	assert.ErrorIs(t, err, ErrCuentaInactiva)

	// Reversals of older movements still land on a deactivated account.
	_, err = f.post(t, cuenta.ID, model.MovimientoCargo, "10", false)
	assert.NoError(t, err)
}
