package service

import (
	"context"
	"errors"
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

type VentaEquipoService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaEquipoRequest) (*dto.VentaCreadaResponse, error)
	Anular(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaEquipoResponse, error)
}

type ventaEquipoService struct {
	repos *repository.Repos
	liq   liquidacion
	queue ComprobanteQueue
	now   func() time.Time
}

func NewVentaEquipoService(repos *repository.Repos, ledger LedgerService, poster PagoPoster, queue ComprobanteQueue) VentaEquipoService {
	return &ventaEquipoService{
		repos: repos,
		liq:   liquidacion{ledger: ledger, poster: poster},
		queue: queue,
		now:   time.Now,
	}
}

// Registrar sells one device. With a plan canje the traded-in device enters
// stock as a new Equipo flagged es_canje and the customer pays
// total - valor_canje.
func (s *ventaEquipoService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaEquipoRequest) (*dto.VentaCreadaResponse, error) {
	pvID, err := parseID("punto_venta_id", req.PuntoVentaID)
	if err != nil {
		return nil, err
	}
	equipoID, err := parseID("equipo_id", req.EquipoID)
	if err != nil {
		return nil, err
	}
	clienteID, err := parseOptID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	if clienteID == nil && tieneCuentaCorriente(req.Pagos) {
		return nil, invalido("Los pagos en cuenta corriente requieren un cliente")
	}

	var venta model.VentaEquipo
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		if _, err := s.repos.PuntosVenta.FindByID(ctx, tx, pvID); err != nil {
			return notFound(err, ErrPuntoVentaNoEncontrado)
		}
		if clienteID != nil {
			if _, err := s.repos.Clientes.FindByID(ctx, tx, *clienteID); err != nil {
				return notFound(err, ErrClienteNoEncontrado)
			}
		}

		equipo, err := s.repos.Equipos.FindByID(ctx, tx, equipoID, true)
		if err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Equipo no encontrado"))
		}
		if equipo.Vendido {
			return ErrEquipoVendido.Msgf("El equipo %s %s (IMEI %s) ya fue vendido", equipo.Marca, equipo.Modelo, equipo.IMEI)
		}
		if equipo.PuntoVentaID != pvID {
			return invalido("El equipo pertenece a otro punto de venta")
		}

		precio := equipo.Precio
		if req.Precio != nil {
			if !req.Precio.IsPositive() {
				return invalido("El precio debe ser mayor a cero")
			}
			precio = req.Precio.Round(2)
		}
		total := aplicarDescuento(precio, req.PorcentajeDescuento)

		valorCanje := decimal.Zero
		if req.PlanCanje != nil {
			valorCanje = req.PlanCanje.ValorCanje.Round(2)
			if valorCanje.GreaterThan(total) {
				return invalido("El valor del canje (%s) supera el total de la venta (%s)", valorCanje.StringFixed(2), total.StringFixed(2))
			}
		}
		montoAPagar := total.Sub(valorCanje)

		if pagado := sumarLegs(req.Pagos); !coincide(pagado, montoAPagar) {
			return ErrPagosNoCoinciden.Msgf("La suma de los pagos (%s) no coincide con el monto a pagar (%s)", pagado.StringFixed(2), montoAPagar.StringFixed(2))
		}

		ahora := s.now()
		numero, err := s.repos.Equipos.NextNumeroFactura(ctx, tx, ahora)
		if err != nil {
			return err
		}
		venta = model.VentaEquipo{
			ID:                  uuid.New(),
			NumeroFactura:       numero,
			ClienteID:           clienteID,
			PuntoVentaID:        pvID,
			UsuarioID:           usuarioID,
			EquipoID:            equipo.ID,
			Precio:              precio,
			PorcentajeInteres:   req.PorcentajeInteres,
			PorcentajeDescuento: req.PorcentajeDescuento,
			Total:               total,
			ValorCanje:          valorCanje,
			MontoAPagar:         montoAPagar,
			Notas:               req.Notas,
		}

		if req.PlanCanje != nil {
			canje, err := s.ingresarCanje(ctx, tx, req.PlanCanje, venta.ID, clienteID, pvID)
			if err != nil {
				return err
			}
			venta.EquipoCanjeID = &canje.ID
		}

		if err := s.repos.Equipos.CreateVenta(ctx, tx, &venta); err != nil {
			return err
		}
		if err := s.repos.Equipos.MarcarVendido(ctx, tx, equipo, true, ahora); err != nil {
			return err
		}

		_, err = s.liq.registrar(ctx, tx, req.Pagos, PagoInput{
			ReferenciaID:   venta.ID,
			TipoReferencia: model.RefVentaEquipo,
			ClienteID:      clienteID,
			UsuarioID:      usuarioID,
			PuntoVentaID:   pvID,
			Notas:          fmt.Sprintf("Venta equipo %s", numero),
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("venta_equipo_id", venta.ID.String()).
		Str("numero_factura", venta.NumeroFactura).
		Str("total", venta.Total.StringFixed(2)).
		Str("valor_canje", venta.ValorCanje.StringFixed(2)).
		Msg("venta de equipo registrada")

	if s.queue != nil {
		payload := map[string]interface{}{"tipo": "venta_equipo", "id": venta.ID.String()}
		if err := s.queue.EnqueueComprobante(ctx, payload); err != nil {
			log.Warn().Err(err).Str("id", venta.ID.String()).Msg("no se pudo encolar el comprobante")
		}
	}

	return &dto.VentaCreadaResponse{ID: venta.ID.String(), NumeroFactura: venta.NumeroFactura, Total: venta.Total}, nil
}

func (s *ventaEquipoService) ingresarCanje(ctx context.Context, tx *gorm.DB, pc *dto.PlanCanjeRequest, ventaID uuid.UUID, clienteID *uuid.UUID, pvID uuid.UUID) (*model.Equipo, error) {
	existe, err := s.repos.Equipos.ExisteIMEI(ctx, tx, pc.IMEI)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, ErrIMEIDuplicado.Msgf("Ya existe un equipo con IMEI %s", pc.IMEI)
	}
	precio := pc.PrecioReventa
	if !precio.IsPositive() {
		precio = pc.ValorCanje
	}
	canje := &model.Equipo{
		Marca:          pc.Marca,
		Modelo:         pc.Modelo,
		IMEI:           pc.IMEI,
		Capacidad:      pc.Capacidad,
		Color:          pc.Color,
		Bateria:        pc.Bateria,
		Estado:         "usado",
		Precio:         precio.Round(2),
		Costo:          pc.ValorCanje.Round(2),
		PuntoVentaID:   pvID,
		EsCanje:        true,
		VentaCanjeID:   &ventaID,
		ClienteCanjeID: clienteID,
		Observaciones:  pc.Observaciones,
	}
	if err := s.repos.Equipos.Create(ctx, tx, canje); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrIMEIDuplicado.Msgf("Ya existe un equipo con IMEI %s", pc.IMEI)
		}
		return nil, err
	}
	return canje, nil
}

// Anular returns the sold device to stock, removes the trade-in unit the sale
// created and annuls every live payment.
func (s *ventaEquipoService) Anular(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error {
	var venta *model.VentaEquipo
	var canjeEliminado *model.Equipo
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		var err error
		venta, err = s.repos.Equipos.FindVentaByID(ctx, tx, id, true)
		if err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Venta de equipo no encontrada"))
		}
		if venta.Anulada {
			return ErrYaAnulado.Msgf("La venta de equipo ya está anulada")
		}

		if venta.EquipoCanjeID != nil {
			canje, err := s.repos.Equipos.FindByID(ctx, tx, *venta.EquipoCanjeID, true)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				log.Warn().Str("venta_equipo_id", venta.ID.String()).Msg("equipo de canje ya no existe")
			case err != nil:
				return err
			case canje.Vendido:
				return ErrEquipoVendido.Msgf("El equipo de canje (IMEI %s) ya fue vendido; anule esa venta primero", canje.IMEI)
			default:
				if err := s.repos.Equipos.Delete(ctx, tx, canje.ID); err != nil {
					return err
				}
				canjeEliminado = canje
			}
		}

		if err := s.repos.Equipos.MarcarVendido(ctx, tx, venta.Equipo, false, s.now()); err != nil {
			return err
		}

		pagos, err := s.repos.Pagos.ListByReferencia(ctx, tx, venta.ID, model.RefVentaEquipo)
		if err != nil {
			return err
		}
		if _, err := s.liq.anularTodos(ctx, tx, pagos, usuarioID, motivo, model.RefAnulacionVentaEquipo); err != nil {
			return err
		}
		return s.repos.Equipos.AnularVenta(ctx, tx, venta, motivo, s.now())
	})
	if txErr != nil {
		return txErr
	}

	if canjeEliminado != nil {
		log.Info().
			Str("equipo_id", canjeEliminado.ID.String()).
			Str("imei", canjeEliminado.IMEI).
			Str("venta_equipo_id", venta.ID.String()).
			Msg("equipo de canje eliminado")
	}
	log.Info().Str("venta_equipo_id", venta.ID.String()).Str("numero_factura", venta.NumeroFactura).Msg("venta de equipo anulada")
	return nil
}

func (s *ventaEquipoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaEquipoResponse, error) {
	venta, err := s.repos.Equipos.FindVentaByID(ctx, nil, id, false)
	if err != nil {
		return nil, notFound(err, ErrNoEncontrado.Msgf("Venta de equipo no encontrada"))
	}
	pagos, err := s.repos.Pagos.ListByReferencia(ctx, nil, id, model.RefVentaEquipo)
	if err != nil {
		return nil, err
	}
	return &dto.VentaEquipoResponse{
		ID:                  venta.ID.String(),
		NumeroFactura:       venta.NumeroFactura,
		ClienteID:           idStr(venta.ClienteID),
		PuntoVentaID:        venta.PuntoVentaID.String(),
		Equipo:              equipoToResponse(venta.Equipo),
		Precio:              venta.Precio,
		PorcentajeInteres:   venta.PorcentajeInteres,
		PorcentajeDescuento: venta.PorcentajeDescuento,
		Total:               venta.Total,
		ValorCanje:          venta.ValorCanje,
		MontoAPagar:         venta.MontoAPagar,
		EquipoCanjeID:       idStr(venta.EquipoCanjeID),
		Anulada:             venta.Anulada,
		Pagos:               pagosToResponse(pagos),
		CreatedAt:           fmtFecha(venta.CreatedAt),
	}, nil
}
