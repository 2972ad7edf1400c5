package service

import (
	"context"
	"errors"

	"cellfie/internal/dto"
	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PagoService handles payments registered directly, outside a sale flow.
type PagoService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.PagoResponse, error)
	Anular(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error
	ListarPorReferencia(ctx context.Context, filter dto.PagoFilter) ([]dto.PagoResponse, error)
}

type pagoService struct {
	repos  *repository.Repos
	ledger LedgerService
	poster PagoPoster
	policy LedgerPolicy
}

func NewPagoService(repos *repository.Repos, ledger LedgerService, poster PagoPoster, policy LedgerPolicy) PagoService {
	return &pagoService{repos: repos, ledger: ledger, poster: poster, policy: policy}
}

// tablasReferencia maps each payable reference tag to the table it points at.
var tablasReferencia = map[model.TipoReferencia]string{
	model.RefVenta:           "ventas",
	model.RefVentaEquipo:     "ventas_equipos",
	model.RefDevolucion:      "devoluciones",
	model.RefReparacion:      "reparaciones",
	model.RefCuentaCorriente: "cuentas_corrientes",
}

func (s *pagoService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.PagoResponse, error) {
	refID, err := parseID("referencia_id", req.ReferenciaID)
	if err != nil {
		return nil, err
	}
	pvID, err := parseID("punto_venta_id", req.PuntoVentaID)
	if err != nil {
		return nil, err
	}
	clienteID, err := parseOptID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	tipoRef := model.TipoReferencia(req.TipoReferencia)
	tabla, ok := tablasReferencia[tipoRef]
	if !ok {
		return nil, invalido("Tipo de referencia inválido: %s", req.TipoReferencia)
	}

	var pago *model.Pago
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		var n int64
		if err := tx.WithContext(ctx).Table(tabla).Where("id = ?", refID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrReferenciaNoEncontrada.Msgf("No existe %s con id %s", tipoRef, refID)
		}

		if clienteID != nil && model.EsCuentaCorriente(req.TipoPago) && s.policy.PagoDirectoCreaCuenta {
			if _, err := s.repos.Clientes.FindByID(ctx, tx, *clienteID); err != nil {
				return notFound(err, ErrClienteNoEncontrado)
			}
			if _, err := s.ledger.AsegurarCuenta(ctx, tx, *clienteID); err != nil {
				return err
			}
		}

		var err error
		pago, err = s.poster.Registrar(ctx, tx, PagoInput{
			Monto:          req.Monto,
			TipoPago:       req.TipoPago,
			ReferenciaID:   refID,
			TipoReferencia: tipoRef,
			ClienteID:      clienteID,
			UsuarioID:      usuarioID,
			PuntoVentaID:   pvID,
			Notas:          req.Notas,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("pago_id", pago.ID.String()).
		Str("monto", pago.Monto.StringFixed(2)).
		Str("tipo_pago", pago.TipoPago).
		Bool("cuenta_corriente", pago.MovimientoID != nil).
		Msg("pago registrado")
	resp := pagoToResponse(pago)
	return &resp, nil
}

func (s *pagoService) Anular(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error {
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		pago, err := s.repos.Pagos.FindByID(ctx, tx, id, false)
		if err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Pago no encontrado"))
		}
		// Repair first, then pago: same lock order as cancelling the repair.
		deReparacion := pago.TipoReferencia == model.RefReparacion
		if deReparacion {
			if _, err := s.repos.Reparaciones.FindByID(ctx, tx, pago.ReferenciaID, true); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if pago, err = s.repos.Pagos.FindByID(ctx, tx, id, true); err != nil {
			return err
		}
		if err := s.poster.Anular(ctx, tx, pago, usuarioID, motivo, model.RefAnulacionPago); err != nil {
			return err
		}
		if deReparacion {
			return s.repos.Reparaciones.AnularPagoPorPago(ctx, tx, pago.ID)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}
	log.Info().Str("pago_id", id.String()).Str("motivo", motivo).Msg("pago anulado")
	return nil
}

func (s *pagoService) ListarPorReferencia(ctx context.Context, filter dto.PagoFilter) ([]dto.PagoResponse, error) {
	refID, err := parseID("referencia_id", filter.ReferenciaID)
	if err != nil {
		return nil, err
	}
	pagos, err := s.repos.Pagos.ListByReferencia(ctx, nil, refID, model.TipoReferencia(filter.TipoReferencia))
	if err != nil {
		return nil, err
	}
	return pagosToResponse(pagos), nil
}

func pagoToResponse(p *model.Pago) dto.PagoResponse {
	return dto.PagoResponse{
		ID:              p.ID.String(),
		Monto:           p.Monto,
		TipoPago:        p.TipoPago,
		ReferenciaID:    p.ReferenciaID.String(),
		TipoReferencia:  string(p.TipoReferencia),
		ClienteID:       idStr(p.ClienteID),
		UsuarioID:       p.UsuarioID.String(),
		PuntoVentaID:    p.PuntoVentaID.String(),
		MovimientoID:    idStr(p.MovimientoID),
		EsReintegro:     p.EsReintegro,
		Anulado:         p.Anulado,
		MotivoAnulacion: p.MotivoAnulacion,
		Notas:           p.Notas,
		CreatedAt:       fmtFecha(p.CreatedAt),
	}
}

func pagosToResponse(pagos []model.Pago) []dto.PagoResponse {
	out := make([]dto.PagoResponse, 0, len(pagos))
	for i := range pagos {
		out = append(out, pagoToResponse(&pagos[i]))
	}
	return out
}
