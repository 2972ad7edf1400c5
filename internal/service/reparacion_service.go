package service

import (
	"context"
	"fmt"
	"time"

	"cellfie/internal/dto"
	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReparacionService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearReparacionRequest) (*dto.ReparacionResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ReparacionResponse, error)
	RegistrarPago(ctx context.Context, usuarioID, id uuid.UUID, req dto.PagoReparacionRequest) (*dto.PagoReparacionResponse, error)
	Cancelar(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error
}

type reparacionService struct {
	repos  *repository.Repos
	poster PagoPoster
	liq    liquidacion
	now    func() time.Time
}

func NewReparacionService(repos *repository.Repos, ledger LedgerService, poster PagoPoster) ReparacionService {
	return &reparacionService{
		repos:  repos,
		poster: poster,
		liq:    liquidacion{ledger: ledger, poster: poster},
		now:    time.Now,
	}
}

func (s *reparacionService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearReparacionRequest) (*dto.ReparacionResponse, error) {
	pvID, err := parseID("punto_venta_id", req.PuntoVentaID)
	if err != nil {
		return nil, err
	}
	clienteID, err := parseOptID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.PuntosVenta.FindByID(ctx, nil, pvID); err != nil {
		return nil, notFound(err, ErrPuntoVentaNoEncontrado)
	}
	if clienteID != nil {
		if _, err := s.repos.Clientes.FindByID(ctx, nil, *clienteID); err != nil {
			return nil, notFound(err, ErrClienteNoEncontrado)
		}
	}

	rep := &model.Reparacion{
		ClienteID:    clienteID,
		PuntoVentaID: pvID,
		UsuarioID:    usuarioID,
		Equipo:       req.Equipo,
		Descripcion:  req.Descripcion,
		Total:        req.Total.Round(2),
		Estado:       model.ReparacionPendiente,
	}
	if err := s.repos.Reparaciones.Create(ctx, rep); err != nil {
		return nil, err
	}
	log.Info().Str("reparacion_id", rep.ID.String()).Str("total", rep.Total.StringFixed(2)).Msg("reparacion creada")
	return reparacionToResponse(rep), nil
}

func (s *reparacionService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ReparacionResponse, error) {
	rep, err := s.repos.Reparaciones.FindByID(ctx, nil, id, false)
	if err != nil {
		return nil, notFound(err, ErrNoEncontrado.Msgf("Reparación no encontrada"))
	}
	return reparacionToResponse(rep), nil
}

// RegistrarPago applies one payment to a repair. The amount may not exceed
// total minus the live payments already applied.
func (s *reparacionService) RegistrarPago(ctx context.Context, usuarioID, id uuid.UUID, req dto.PagoReparacionRequest) (*dto.PagoReparacionResponse, error) {
	var pr model.PagoReparacion
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		rep, err := s.repos.Reparaciones.FindByID(ctx, tx, id, true)
		if err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Reparación no encontrada"))
		}
		if rep.Estado == model.ReparacionCancelada {
			return ErrReparacionCancelada
		}
		saldo := rep.Total.Sub(pagado(rep))
		if req.Monto.GreaterThan(saldo) {
			return ErrExcedeSaldoPendiente.Msgf("El pago (%s) supera el saldo pendiente de la reparación (%s)", req.Monto.StringFixed(2), saldo.StringFixed(2))
		}

		notas := req.Notas
		if notas == "" {
			notas = fmt.Sprintf("Pago reparación %s", rep.ID)
		}
		pagos, err := s.liq.registrar(ctx, tx, []dto.PagoLegRequest{{TipoPago: req.TipoPago, Monto: req.Monto}}, PagoInput{
			ReferenciaID:   rep.ID,
			TipoReferencia: model.RefReparacion,
			ClienteID:      rep.ClienteID,
			UsuarioID:      usuarioID,
			PuntoVentaID:   rep.PuntoVentaID,
			Notas:          notas,
		})
		if err != nil {
			return err
		}

		pr = model.PagoReparacion{
			ReparacionID: rep.ID,
			PagoID:       pagos[0].ID,
			Monto:        pagos[0].Monto,
			TipoPago:     req.TipoPago,
			MovimientoID: pagos[0].MovimientoID,
			UsuarioID:    usuarioID,
		}
		return s.repos.Reparaciones.CreatePago(ctx, tx, &pr)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("reparacion_id", id.String()).
		Str("pago_id", pr.PagoID.String()).
		Str("monto", pr.Monto.StringFixed(2)).
		Str("tipo_pago", pr.TipoPago).
		Msg("pago de reparacion registrado")
	return pagoReparacionToResponse(pr), nil
}

// Cancelar cancels the repair and reverses every payment that was charged to
// the customer's account. Cash-like payments stay as they are.
func (s *reparacionService) Cancelar(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error {
	var revertidos int
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		rep, err := s.repos.Reparaciones.FindByID(ctx, tx, id, true)
		if err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Reparación no encontrada"))
		}
		if rep.Estado == model.ReparacionCancelada {
			return ErrReparacionCancelada.Msgf("La reparación ya está cancelada")
		}

		for _, pr := range rep.Pagos {
			if pr.Anulado || pr.MovimientoID == nil {
				continue
			}
			pago, err := s.repos.Pagos.FindByID(ctx, tx, pr.PagoID, true)
			if err != nil {
				return notFound(err, ErrNoEncontrado.Msgf("Pago %s no encontrado", pr.PagoID))
			}
			if !pago.Anulado {
				if err := s.poster.Anular(ctx, tx, pago, usuarioID, motivo, model.RefAnulacionReparacion); err != nil {
					return err
				}
			}
			if err := s.repos.Reparaciones.AnularPago(ctx, tx, pr.ID); err != nil {
				return err
			}
			revertidos++
		}

		return s.repos.Reparaciones.Cancelar(ctx, tx, rep, motivo, s.now())
	})
	if txErr != nil {
		return txErr
	}

	log.Info().Str("reparacion_id", id.String()).Int("pagos_revertidos", revertidos).Msg("reparacion cancelada")
	return nil
}

// pagado sums the live payments of a repair.
func pagado(rep *model.Reparacion) decimal.Decimal {
	total := decimal.Zero
	for _, p := range rep.Pagos {
		if !p.Anulado {
			total = total.Add(p.Monto)
		}
	}
	return total
}

func pagoReparacionToResponse(p model.PagoReparacion) *dto.PagoReparacionResponse {
	return &dto.PagoReparacionResponse{
		ID:           p.ID.String(),
		PagoID:       p.PagoID.String(),
		Monto:        p.Monto,
		TipoPago:     p.TipoPago,
		MovimientoID: idStr(p.MovimientoID),
		Anulado:      p.Anulado,
		CreatedAt:    fmtFecha(p.CreatedAt),
	}
}

func reparacionToResponse(r *model.Reparacion) *dto.ReparacionResponse {
	pagos := make([]dto.PagoReparacionResponse, 0, len(r.Pagos))
	for _, p := range r.Pagos {
		pagos = append(pagos, *pagoReparacionToResponse(p))
	}
	total := pagado(r)
	return &dto.ReparacionResponse{
		ID:           r.ID.String(),
		ClienteID:    idStr(r.ClienteID),
		PuntoVentaID: r.PuntoVentaID.String(),
		Equipo:       r.Equipo,
		Descripcion:  r.Descripcion,
		Total:        r.Total,
		Pagado:       total,
		Saldo:        r.Total.Sub(total),
		Estado:       r.Estado,
		Pagos:        pagos,
		CreatedAt:    fmtFecha(r.CreatedAt),
	}
}
