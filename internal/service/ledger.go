package service

import (
	"context"
	"errors"
	"time"

	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerPolicy holds the switches for the two places where the ledger rules
// are a business decision rather than an invariant.
type LedgerPolicy struct {
	// LimiteEnApertura enforces limite_credito on the starting balance of a new account.
	LimiteEnApertura bool
	// PagoDirectoCreaCuenta lets POST /api/pagos open the account on demand like the sale flows do.
	PagoDirectoCreaCuenta bool
}

// DefaultLedgerPolicy enforces the limit everywhere and keeps direct payments opt-in.
func DefaultLedgerPolicy() LedgerPolicy {
	return LedgerPolicy{LimiteEnApertura: true}
}

// MovimientoInput describes one posting.
type MovimientoInput struct {
	CuentaID       uuid.UUID
	Tipo           model.TipoMovimiento
	Monto          decimal.Decimal
	ReferenciaID   *uuid.UUID
	TipoReferencia model.TipoReferencia
	UsuarioID      uuid.UUID
	Notas          string
	// RequerirActiva rejects postings to a deactivated account (direct payments only).
	RequerirActiva bool
	// ValidarLimite checks limite_credito before a cargo.
	ValidarLimite      bool
	MovimientoOrigenID *uuid.UUID
}

// LedgerService owns the saldo of every cuenta corriente and its movement log.
// It never opens a transaction: every call runs on the caller's tx so the
// saldo update and the movement row commit or roll back with the flow.
type LedgerService interface {
	Post(ctx context.Context, tx *gorm.DB, in MovimientoInput) (*model.MovimientoCuentaCorriente, error)
	// Revertir posts the opposite of original, anchored on the current saldo.
	Revertir(ctx context.Context, tx *gorm.DB, original *model.MovimientoCuentaCorriente, usuarioID uuid.UUID, nota string, tipoRef model.TipoReferencia) (*model.MovimientoCuentaCorriente, error)
	// AsegurarCuenta returns the active account of the customer, opening one with saldo 0 if needed.
	AsegurarCuenta(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) (*model.CuentaCorriente, error)
	VerificarLimite(cuenta *model.CuentaCorriente, monto decimal.Decimal) error
	AbrirCuenta(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, limite, saldoInicial decimal.Decimal, usuarioID uuid.UUID) (*model.CuentaCorriente, error)
}

type ledgerService struct {
	repo   repository.CuentaCorrienteRepository
	policy LedgerPolicy
	now    func() time.Time
}

func NewLedgerService(repo repository.CuentaCorrienteRepository, policy LedgerPolicy) LedgerService {
	return &ledgerService{repo: repo, policy: policy, now: time.Now}
}

func (s *ledgerService) Post(ctx context.Context, tx *gorm.DB, in MovimientoInput) (*model.MovimientoCuentaCorriente, error) {
	in.Monto = in.Monto.Round(2)
	if !in.Monto.IsPositive() {
		return nil, invalido("El monto del movimiento debe ser mayor a cero")
	}
	if !in.Tipo.Valid() {
		return nil, invalido("Tipo de movimiento inválido: %s", in.Tipo)
	}
	if !in.TipoReferencia.Valid() {
		return nil, invalido("Tipo de referencia inválido: %s", in.TipoReferencia)
	}

	cuenta, err := s.repo.FindByID(ctx, tx, in.CuentaID, true)
	if err != nil {
		return nil, notFound(err, ErrCuentaNoEncontrada)
	}
	if in.RequerirActiva && !cuenta.Activo {
		return nil, ErrCuentaInactiva
	}
	if in.ValidarLimite && in.Tipo == model.MovimientoCargo {
		if err := s.VerificarLimite(cuenta, in.Monto); err != nil {
			return nil, err
		}
	}

	monto := in.Monto
	anterior := cuenta.Saldo
	nuevo := in.Tipo.Aplicar(anterior, monto)
	ahora := s.now()

	if err := s.repo.GuardarSaldo(ctx, tx, cuenta, nuevo, ahora); err != nil {
		return nil, concurrencia(err)
	}

	mov := &model.MovimientoCuentaCorriente{
		CuentaCorrienteID:  cuenta.ID,
		Tipo:               in.Tipo,
		Monto:              monto,
		SaldoAnterior:      anterior,
		SaldoNuevo:         nuevo,
		ReferenciaID:       in.ReferenciaID,
		TipoReferencia:     in.TipoReferencia,
		UsuarioID:          in.UsuarioID,
		Notas:              in.Notas,
		MovimientoOrigenID: in.MovimientoOrigenID,
		CreatedAt:          ahora,
	}
	if err := s.repo.CreateMovimiento(ctx, tx, mov); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && in.MovimientoOrigenID != nil {
			return nil, ErrYaRevertido
		}
		return nil, err
	}
	return mov, nil
}

func (s *ledgerService) Revertir(ctx context.Context, tx *gorm.DB, original *model.MovimientoCuentaCorriente, usuarioID uuid.UUID, nota string, tipoRef model.TipoReferencia) (*model.MovimientoCuentaCorriente, error) {
	if original.MovimientoOrigenID != nil {
		return nil, invalido("Un movimiento de reversión no puede revertirse")
	}
	existe, err := s.repo.ExisteReversion(ctx, tx, original.ID)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, ErrYaRevertido
	}
	origen := original.ID
	return s.Post(ctx, tx, MovimientoInput{
		CuentaID:           original.CuentaCorrienteID,
		Tipo:               original.Tipo.Opuesto(),
		Monto:              original.Monto,
		ReferenciaID:       original.ReferenciaID,
		TipoReferencia:     tipoRef,
		UsuarioID:          usuarioID,
		Notas:              nota,
		MovimientoOrigenID: &origen,
	})
}

func (s *ledgerService) AsegurarCuenta(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) (*model.CuentaCorriente, error) {
	cuenta, err := s.repo.FindActivaByCliente(ctx, tx, clienteID, true)
	if err == nil {
		return cuenta, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cuenta = &model.CuentaCorriente{
		ClienteID:     clienteID,
		Saldo:         decimal.Zero,
		LimiteCredito: decimal.Zero,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, tx, cuenta); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrModificacionConcurrente.Wrap(err)
		}
		return nil, err
	}
	return cuenta, nil
}

func (s *ledgerService) VerificarLimite(cuenta *model.CuentaCorriente, monto decimal.Decimal) error {
	if !cuenta.LimiteCredito.IsPositive() {
		return nil
	}
	if cuenta.Saldo.Add(monto).GreaterThan(cuenta.LimiteCredito) {
		disponible := cuenta.LimiteCredito.Sub(cuenta.Saldo)
		return ErrLimiteCredito.Msgf("La operación excede el límite de crédito (disponible %s)", disponible.StringFixed(2))
	}
	return nil
}

func (s *ledgerService) AbrirCuenta(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, limite, saldoInicial decimal.Decimal, usuarioID uuid.UUID) (*model.CuentaCorriente, error) {
	if limite.IsNegative() || saldoInicial.IsNegative() {
		return nil, invalido("El límite y el saldo inicial no pueden ser negativos")
	}
	_, err := s.repo.FindActivaByCliente(ctx, tx, clienteID, true)
	if err == nil {
		return nil, ErrCuentaExistente
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cuenta := &model.CuentaCorriente{
		ClienteID:     clienteID,
		Saldo:         decimal.Zero,
		LimiteCredito: limite.Round(2),
		Activo:        true,
	}
	if err := s.repo.Create(ctx, tx, cuenta); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCuentaExistente
		}
		return nil, err
	}
	if !saldoInicial.IsPositive() {
		return cuenta, nil
	}

	cuentaID := cuenta.ID
	if _, err := s.Post(ctx, tx, MovimientoInput{
		CuentaID:       cuenta.ID,
		Tipo:           model.MovimientoCargo,
		Monto:          saldoInicial,
		ReferenciaID:   &cuentaID,
		TipoReferencia: model.RefAjuste,
		UsuarioID:      usuarioID,
		Notas:          "Saldo inicial",
		ValidarLimite:  s.policy.LimiteEnApertura,
	}); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, tx, cuenta.ID, false)
}
