package service

import (
	"context"
	"errors"
	"fmt"

	"cellfie/internal/dto"
	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const ultimosMovimientos = 20

type CuentaCorrienteService interface {
	// ObtenerPorCliente returns the account with its last 20 movements.
	ObtenerPorCliente(ctx context.Context, clienteID uuid.UUID) (*dto.CuentaCorrienteResponse, error)
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCuentaRequest) (*dto.CuentaCorrienteResponse, error)
	ActualizarLimite(ctx context.Context, id uuid.UUID, limite decimal.Decimal) (*dto.CuentaCorrienteResponse, error)
	CambiarEstado(ctx context.Context, id uuid.UUID, activo bool) (*dto.CuentaCorrienteResponse, error)
	// RegistrarAbono posts a direct pago (abono) against the customer's debt.
	RegistrarAbono(ctx context.Context, usuarioID uuid.UUID, req dto.AbonoCuentaRequest) (*dto.MovimientoResponse, error)
	// RegistrarCargo posts a manual charge tagged as ajuste.
	RegistrarCargo(ctx context.Context, usuarioID uuid.UUID, req dto.CargoCuentaRequest) (*dto.MovimientoResponse, error)
	ListarMovimientos(ctx context.Context, cuentaID uuid.UUID, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
}

type cuentaCorrienteService struct {
	repos  *repository.Repos
	ledger LedgerService
	poster PagoPoster
}

func NewCuentaCorrienteService(repos *repository.Repos, ledger LedgerService, poster PagoPoster) CuentaCorrienteService {
	return &cuentaCorrienteService{repos: repos, ledger: ledger, poster: poster}
}

func (s *cuentaCorrienteService) ObtenerPorCliente(ctx context.Context, clienteID uuid.UUID) (*dto.CuentaCorrienteResponse, error) {
	cuenta, err := s.repos.Cuentas.FindByCliente(ctx, nil, clienteID)
	if err != nil {
		return nil, notFound(err, ErrCuentaNoEncontrada)
	}
	movs, _, err := s.repos.Cuentas.ListMovimientos(ctx, cuenta.ID, 1, ultimosMovimientos)
	if err != nil {
		return nil, err
	}
	resp := cuentaToResponse(cuenta)
	resp.Movimientos = movimientosToResponse(movs)
	return resp, nil
}

func (s *cuentaCorrienteService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCuentaRequest) (*dto.CuentaCorrienteResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	var cuenta *model.CuentaCorriente
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		if _, err := s.repos.Clientes.FindByID(ctx, tx, clienteID); err != nil {
			return notFound(err, ErrClienteNoEncontrado)
		}
		cuenta, err = s.ledger.AbrirCuenta(ctx, tx, clienteID, req.LimiteCredito, req.SaldoInicial, usuarioID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	log.Info().
		Str("cuenta_id", cuenta.ID.String()).
		Str("cliente_id", clienteID.String()).
		Str("saldo", cuenta.Saldo.StringFixed(2)).
		Msg("cuenta corriente abierta")
	return cuentaToResponse(cuenta), nil
}

func (s *cuentaCorrienteService) ActualizarLimite(ctx context.Context, id uuid.UUID, limite decimal.Decimal) (*dto.CuentaCorrienteResponse, error) {
	if limite.IsNegative() {
		return nil, invalido("El límite de crédito no puede ser negativo")
	}
	var cuenta *model.CuentaCorriente
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		var err error
		cuenta, err = s.repos.Cuentas.FindByID(ctx, tx, id, true)
		if err != nil {
			return notFound(err, ErrCuentaNoEncontrada)
		}
		return concurrencia(s.repos.Cuentas.ActualizarLimite(ctx, tx, cuenta, limite.Round(2)))
	})
	if txErr != nil {
		return nil, txErr
	}
	return cuentaToResponse(cuenta), nil
}

func (s *cuentaCorrienteService) CambiarEstado(ctx context.Context, id uuid.UUID, activo bool) (*dto.CuentaCorrienteResponse, error) {
	var cuenta *model.CuentaCorriente
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		var err error
		cuenta, err = s.repos.Cuentas.FindByID(ctx, tx, id, true)
		if err != nil {
			return notFound(err, ErrCuentaNoEncontrada)
		}
		if cuenta.Activo == activo {
			return nil
		}
		if activo {
			// At most one active account per customer.
			otra, err := s.repos.Cuentas.FindActivaByCliente(ctx, tx, cuenta.ClienteID, true)
			if err == nil && otra.ID != cuenta.ID {
				return ErrCuentaExistente
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return concurrencia(s.repos.Cuentas.ActualizarEstado(ctx, tx, cuenta, activo))
	})
	if txErr != nil {
		return nil, txErr
	}
	log.Info().Str("cuenta_id", id.String()).Bool("activo", activo).Msg("estado de cuenta corriente actualizado")
	return cuentaToResponse(cuenta), nil
}

func (s *cuentaCorrienteService) RegistrarAbono(ctx context.Context, usuarioID uuid.UUID, req dto.AbonoCuentaRequest) (*dto.MovimientoResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	pvID, err := parseOptID("punto_venta_id", req.PuntoVentaID)
	if err != nil {
		return nil, err
	}
	tipoPago := "Efectivo"
	if req.TipoPago != nil && *req.TipoPago != "" {
		tipoPago = *req.TipoPago
	}
	if model.EsCuentaCorriente(tipoPago) {
		return nil, invalido("Un abono no puede pagarse con cuenta corriente")
	}

	var mov *model.MovimientoCuentaCorriente
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		if _, err := s.repos.Clientes.FindByID(ctx, tx, clienteID); err != nil {
			return notFound(err, ErrClienteNoEncontrado)
		}
		cuenta, err := s.repos.Cuentas.FindByCliente(ctx, tx, clienteID)
		if err != nil {
			return notFound(err, ErrCuentaNoEncontrada)
		}
		// Re-read under lock so the debt check sees the saldo the posting will use.
		if cuenta, err = s.repos.Cuentas.FindByID(ctx, tx, cuenta.ID, true); err != nil {
			return err
		}
		if !cuenta.Activo {
			return ErrCuentaInactiva
		}
		if req.Monto.GreaterThan(cuenta.Saldo) {
			return ErrSaldoInsuficiente.Msgf("El abono (%s) supera la deuda actual (%s)", req.Monto.StringFixed(2), cuenta.Saldo.StringFixed(2))
		}

		notas := req.Notas
		if notas == "" {
			notas = fmt.Sprintf("Abono %s", tipoPago)
		}
		cuentaID := cuenta.ID
		mov, err = s.ledger.Post(ctx, tx, MovimientoInput{
			CuentaID:       cuenta.ID,
			Tipo:           model.MovimientoPago,
			Monto:          req.Monto,
			ReferenciaID:   &cuentaID,
			TipoReferencia: model.RefCuentaCorriente,
			UsuarioID:      usuarioID,
			Notas:          notas,
			RequerirActiva: true,
		})
		if err != nil {
			return err
		}

		// Without a punto de venta there is no till to book the Pago against.
		if pvID == nil {
			return nil
		}
		_, err = s.poster.Registrar(ctx, tx, PagoInput{
			Monto:          req.Monto,
			TipoPago:       tipoPago,
			ReferenciaID:   cuenta.ID,
			TipoReferencia: model.RefCuentaCorriente,
			ClienteID:      &clienteID,
			UsuarioID:      usuarioID,
			PuntoVentaID:   *pvID,
			Notas:          notas,
			MovimientoID:   &mov.ID,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("cliente_id", clienteID.String()).
		Str("monto", mov.Monto.StringFixed(2)).
		Str("saldo_nuevo", mov.SaldoNuevo.StringFixed(2)).
		Msg("abono registrado")
	resp := movimientoToResponse(mov)
	return &resp, nil
}

func (s *cuentaCorrienteService) RegistrarCargo(ctx context.Context, usuarioID uuid.UUID, req dto.CargoCuentaRequest) (*dto.MovimientoResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	var mov *model.MovimientoCuentaCorriente
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		cuenta, err := s.repos.Cuentas.FindByCliente(ctx, tx, clienteID)
		if err != nil {
			return notFound(err, ErrCuentaNoEncontrada)
		}
		cuentaID := cuenta.ID
		mov, err = s.ledger.Post(ctx, tx, MovimientoInput{
			CuentaID:       cuenta.ID,
			Tipo:           model.MovimientoCargo,
			Monto:          req.Monto,
			ReferenciaID:   &cuentaID,
			TipoReferencia: model.RefAjuste,
			UsuarioID:      usuarioID,
			Notas:          req.Notas,
			RequerirActiva: true,
			ValidarLimite:  true,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	log.Info().Str("cliente_id", clienteID.String()).Str("monto", mov.Monto.StringFixed(2)).Msg("cargo manual registrado")
	resp := movimientoToResponse(mov)
	return &resp, nil
}

func (s *cuentaCorrienteService) ListarMovimientos(ctx context.Context, cuentaID uuid.UUID, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if _, err := s.repos.Cuentas.FindByID(ctx, nil, cuentaID, false); err != nil {
		return nil, notFound(err, ErrCuentaNoEncontrada)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movs, total, err := s.repos.Cuentas.ListMovimientos(ctx, cuentaID, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	return &dto.MovimientoListResponse{
		Data:  movimientosToResponse(movs),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func cuentaToResponse(c *model.CuentaCorriente) *dto.CuentaCorrienteResponse {
	resp := &dto.CuentaCorrienteResponse{
		ID:            c.ID.String(),
		ClienteID:     c.ClienteID.String(),
		Saldo:         c.Saldo,
		LimiteCredito: c.LimiteCredito,
		Activo:        c.Activo,
	}
	if c.Cliente != nil {
		resp.ClienteNombre = c.Cliente.Nombre
	}
	if c.FechaUltimoMovimiento != nil {
		f := fmtFecha(*c.FechaUltimoMovimiento)
		resp.FechaUltimoMovimiento = &f
	}
	return resp
}

func movimientoToResponse(m *model.MovimientoCuentaCorriente) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:                 m.ID.String(),
		CuentaCorrienteID:  m.CuentaCorrienteID.String(),
		Tipo:               string(m.Tipo),
		Monto:              m.Monto,
		SaldoAnterior:      m.SaldoAnterior,
		SaldoNuevo:         m.SaldoNuevo,
		ReferenciaID:       idStr(m.ReferenciaID),
		TipoReferencia:     string(m.TipoReferencia),
		UsuarioID:          m.UsuarioID.String(),
		Notas:              m.Notas,
		MovimientoOrigenID: idStr(m.MovimientoOrigenID),
		CreatedAt:          fmtFecha(m.CreatedAt),
	}
}

func movimientosToResponse(movs []model.MovimientoCuentaCorriente) []dto.MovimientoResponse {
	out := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		out = append(out, movimientoToResponse(&movs[i]))
	}
	return out
}
