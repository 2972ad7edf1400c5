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

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaCreadaResponse, error)
	AnularVenta(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
}

type ventaService struct {
	repos *repository.Repos
	stock stockMover
	liq   liquidacion
	queue ComprobanteQueue
	now   func() time.Time
}

func NewVentaService(repos *repository.Repos, ledger LedgerService, poster PagoPoster, queue ComprobanteQueue) VentaService {
	return &ventaService{
		repos: repos,
		stock: stockMover{productos: repos.Productos, movimientos: repos.MovimientosStock},
		liq:   liquidacion{ledger: ledger, poster: poster},
		queue: queue,
		now:   time.Now,
	}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// One transaction:
//   1. Validate punto de venta and cliente
//   2. For each item: fetch product, check stock at the punto de venta, price the line
//   3. total = subtotal - general discount (interest is informational)
//   4. Payments must add up to total within one cent
//   5. Insert venta + items with the next invoice number
//   6. Decrement inventory and record stock movements
//   7. Settle payments (on-account legs post a cargo first, then the poster)
// After commit a receipt job is queued (best-effort).

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaCreadaResponse, error) {
	pvID, err := parseID("punto_venta_id", req.PuntoVentaID)
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

	type resolvedItem struct {
		producto  *model.Producto
		cantidad  int
		descuento decimal.Decimal
		subtotal  decimal.Decimal
	}

	var venta model.Venta
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		// 1. Referenced entities
		if _, err := s.repos.PuntosVenta.FindByID(ctx, tx, pvID); err != nil {
			return notFound(err, ErrPuntoVentaNoEncontrado)
		}
		if clienteID != nil {
			if _, err := s.repos.Clientes.FindByID(ctx, tx, *clienteID); err != nil {
				return notFound(err, ErrClienteNoEncontrado)
			}
		}

		// 2. Resolve products; quantities of repeated products are checked together
		resolved := make([]resolvedItem, 0, len(req.Productos))
		pedido := make(map[uuid.UUID]int)
		subtotal := decimal.Zero
		for _, item := range req.Productos {
			pid, err := parseID("producto_id", item.ProductoID)
			if err != nil {
				return err
			}
			p, err := s.repos.Productos.FindByID(ctx, tx, pid)
			if err != nil {
				return notFound(err, ErrNoEncontrado.Msgf("Producto %s no encontrado", item.ProductoID))
			}
			if !p.Activo {
				return invalido("El producto %s está inactivo y no puede venderse", p.Nombre)
			}
			pedido[pid] += item.Cantidad
			if err := s.stock.disponible(ctx, tx, p, pvID, pedido[pid]); err != nil {
				return err
			}
			bruto := p.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
			linea := aplicarDescuento(bruto, item.PorcentajeDescuento)
			subtotal = subtotal.Add(linea)
			resolved = append(resolved, resolvedItem{producto: p, cantidad: item.Cantidad, descuento: item.PorcentajeDescuento, subtotal: linea})
		}

		// 3. Total
		total := aplicarDescuento(subtotal, req.PorcentajeDescuento)

		// 4. Payment-sum conservation
		if pagado := sumarLegs(req.Pagos); !coincide(pagado, total) {
			return ErrPagosNoCoinciden.Msgf("La suma de los pagos (%s) no coincide con el total (%s)", pagado.StringFixed(2), total.StringFixed(2))
		}

		// 5. Header + items
		numero, err := s.repos.Ventas.NextNumeroFactura(ctx, tx, s.now())
		if err != nil {
			return err
		}
		venta = model.Venta{
			NumeroFactura:       numero,
			ClienteID:           clienteID,
			PuntoVentaID:        pvID,
			UsuarioID:           usuarioID,
			Subtotal:            subtotal,
			PorcentajeInteres:   req.PorcentajeInteres,
			PorcentajeDescuento: req.PorcentajeDescuento,
			Total:               total,
			Notas:               req.Notas,
		}
		for _, r := range resolved {
			venta.Items = append(venta.Items, model.DetalleVenta{
				ProductoID:          r.producto.ID,
				Cantidad:            r.cantidad,
				PrecioUnitario:      r.producto.Precio,
				PorcentajeDescuento: r.descuento,
				Subtotal:            r.subtotal,
			})
		}
		if err := s.repos.Ventas.Create(ctx, tx, &venta); err != nil {
			return err
		}

		// 6. Inventory
		ref := venta.ID
		for _, r := range resolved {
			motivo := fmt.Sprintf("Venta %s", numero)
			if err := s.stock.mover(ctx, tx, r.producto.ID, pvID, -r.cantidad, StockVenta, motivo, &ref, usuarioID); err != nil {
				return err
			}
		}

		// 7. Payments
		_, err = s.liq.registrar(ctx, tx, req.Pagos, PagoInput{
			ReferenciaID:   venta.ID,
			TipoReferencia: model.RefVenta,
			ClienteID:      clienteID,
			UsuarioID:      usuarioID,
			PuntoVentaID:   pvID,
			Notas:          fmt.Sprintf("Venta %s", numero),
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("numero_factura", venta.NumeroFactura).
		Str("total", venta.Total.StringFixed(2)).
		Msg("venta registrada")

	s.encolarComprobante(ctx, "venta", venta.ID)

	return &dto.VentaCreadaResponse{
		ID:            venta.ID.String(),
		NumeroFactura: venta.NumeroFactura,
		Total:         venta.Total,
	}, nil
}

func (s *ventaService) encolarComprobante(ctx context.Context, tipo string, id uuid.UUID) {
	if s.queue == nil {
		return
	}
	payload := map[string]interface{}{"tipo": tipo, "id": id.String()}
	if err := s.queue.EnqueueComprobante(ctx, payload); err != nil {
		log.Warn().Err(err).Str("id", id.String()).Msg("no se pudo encolar el comprobante")
	}
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Annuls the sale's active returns and reverses their settlement, restores stock
// for the quantities not already returned and annuls every live payment of the
// sale; on-account payments get a reversal at the current saldo.

func (s *ventaService) AnularVenta(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error {
	var venta *model.Venta
	var anulados, devolucionesAnuladas int
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		var err error
		venta, err = s.repos.Ventas.FindByID(ctx, tx, id, true)
		if err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Venta no encontrada"))
		}
		if venta.Anulada {
			return ErrYaAnulado.Msgf("La venta ya está anulada")
		}

		m := fmt.Sprintf("Anulación venta %s: %s", venta.NumeroFactura, motivo)

		// Returned units are already back in stock; only their settlement is undone.
		devs, err := s.repos.Devoluciones.ListActivasByVenta(ctx, tx, venta.ID)
		if err != nil {
			return err
		}
		for i := range devs {
			if err := s.liq.revertirDevolucion(ctx, tx, s.repos, &devs[i], usuarioID, m); err != nil {
				return err
			}
			if err := s.repos.Devoluciones.Anular(ctx, tx, &devs[i], m, s.now()); err != nil {
				return err
			}
		}
		if len(devs) > 0 {
			if err := s.repos.Ventas.SetTieneDevoluciones(ctx, tx, venta.ID, false); err != nil {
				return err
			}
		}
		devolucionesAnuladas = len(devs)

		ref := venta.ID
		for _, item := range venta.Items {
			pendiente := item.Pendiente()
			if pendiente <= 0 {
				continue
			}
			if err := s.stock.mover(ctx, tx, item.ProductoID, venta.PuntoVentaID, pendiente, StockAnulacionVenta, m, &ref, usuarioID); err != nil {
				return err
			}
		}

		pagos, err := s.repos.Pagos.ListByReferencia(ctx, tx, venta.ID, model.RefVenta)
		if err != nil {
			return err
		}
		anulados, err = s.liq.anularTodos(ctx, tx, pagos, usuarioID, motivo, model.RefAnulacionVenta)
		if err != nil {
			return err
		}

		return s.repos.Ventas.Anular(ctx, tx, venta, motivo, s.now())
	})
	if txErr != nil {
		return txErr
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("numero_factura", venta.NumeroFactura).
		Int("pagos_anulados", anulados).
		Int("devoluciones_anuladas", devolucionesAnuladas).
		Msg("venta anulada")
	return nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repos.Ventas.FindByID(ctx, nil, id, false)
	if err != nil {
		return nil, notFound(err, ErrNoEncontrado.Msgf("Venta no encontrada"))
	}
	pagos, err := s.repos.Pagos.ListByReferencia(ctx, nil, id, model.RefVenta)
	if err != nil {
		return nil, err
	}
	return ventaToResponse(venta, pagos), nil
}

func ventaToResponse(v *model.Venta, pagos []model.Pago) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			ID:                  item.ID.String(),
			ProductoID:          item.ProductoID.String(),
			Producto:            nombre,
			Cantidad:            item.Cantidad,
			CantidadDevuelta:    item.CantidadDevuelta,
			PrecioUnitario:      item.PrecioUnitario,
			PorcentajeDescuento: item.PorcentajeDescuento,
			Subtotal:            item.Subtotal,
			EsReemplazo:         item.EsReemplazo,
		})
	}
	return &dto.VentaResponse{
		ID:                  v.ID.String(),
		NumeroFactura:       v.NumeroFactura,
		ClienteID:           idStr(v.ClienteID),
		PuntoVentaID:        v.PuntoVentaID.String(),
		Subtotal:            v.Subtotal,
		PorcentajeInteres:   v.PorcentajeInteres,
		PorcentajeDescuento: v.PorcentajeDescuento,
		Total:               v.Total,
		Anulada:             v.Anulada,
		TieneDevoluciones:   v.TieneDevoluciones,
		Items:               items,
		Pagos:               pagosToResponse(pagos),
		CreatedAt:           fmtFecha(v.CreatedAt),
	}
}
