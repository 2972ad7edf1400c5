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

type DevolucionService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarDevolucionRequest) (*dto.DevolucionResponse, error)
	Anular(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.DevolucionResponse, error)
}

type devolucionService struct {
	repos  *repository.Repos
	ledger LedgerService
	poster PagoPoster
	stock  stockMover
	liq    liquidacion
	now    func() time.Time
}

func NewDevolucionService(repos *repository.Repos, ledger LedgerService, poster PagoPoster) DevolucionService {
	return &devolucionService{
		repos:  repos,
		ledger: ledger,
		poster: poster,
		stock:  stockMover{productos: repos.Productos, movimientos: repos.MovimientosStock},
		liq:    liquidacion{ledger: ledger, poster: poster},
		now:    time.Now,
	}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// One transaction:
//   1. Lock the sale; it must exist and not be annulled
//   2. Validate every returned line against what is still pending on it
//   3. Price replacements and check their stock
//   4. Insert the return, restock normal units, write off defective ones
//   5. Add replacement lines and take their stock out
//   6. Settle the diferencia:
//        < 0 with cliente   → pago movement on the account (opened if needed)
//        < 0 without cliente → reintegro Pago
//        > 0                → Pago for the given leg (cargo first when on account)

func (s *devolucionService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarDevolucionRequest) (*dto.DevolucionResponse, error) {
	ventaID, err := parseID("venta_id", req.VentaID)
	if err != nil {
		return nil, err
	}

	type lineaDevuelta struct {
		detalle  *model.DetalleVenta
		producto *model.Producto
		cantidad int
		estado   string
		precio   decimal.Decimal
	}
	type lineaReemplazo struct {
		producto *model.Producto
		cantidad int
		subtotal decimal.Decimal
	}

	var dev model.Devolucion
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		// 1. Sale
		venta, err := s.repos.Ventas.FindByID(ctx, tx, ventaID, true)
		if err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Venta no encontrada"))
		}
		if venta.Anulada {
			return ErrVentaAnulada.Msgf("La venta %s está anulada", venta.NumeroFactura)
		}
		lineas := make(map[uuid.UUID]*model.DetalleVenta, len(venta.Items))
		for i := range venta.Items {
			lineas[venta.Items[i].ID] = &venta.Items[i]
		}

		// 2. Returned lines; a line repeated in the request shares one row and is checked on its total
		devueltas := make([]lineaDevuelta, 0, len(req.Items))
		pedido := make(map[uuid.UUID]int)
		detalles := make(map[uuid.UUID]*model.DetalleVenta)
		valorDevuelto := decimal.Zero
		for _, item := range req.Items {
			did, err := parseID("detalle_venta_id", item.DetalleVentaID)
			if err != nil {
				return err
			}
			if _, ok := lineas[did]; !ok {
				return invalido("La línea %s no pertenece a la venta %s", item.DetalleVentaID, venta.NumeroFactura)
			}
			detalle, ok := detalles[did]
			if !ok {
				if detalle, err = s.repos.Ventas.FindDetalle(ctx, tx, did, true); err != nil {
					return err
				}
				detalle.Producto = lineas[did].Producto
				detalles[did] = detalle
			}
			nombre := detalle.ProductoID.String()
			if detalle.Producto != nil {
				nombre = detalle.Producto.Nombre
			}
			if detalle.Devuelto || detalle.Pendiente() <= 0 {
				return ErrDevolucionExcedida.Msgf("La línea de %s ya fue devuelta por completo", nombre)
			}
			pedido[did] += item.Cantidad
			if pedido[did] > detalle.Pendiente() {
				return ErrDevolucionExcedida.Msgf("Se pidieron %d unidades de %s pero quedan %d por devolver", pedido[did], nombre, detalle.Pendiente())
			}
			precio := aplicarDescuento(detalle.PrecioEfectivo(), venta.PorcentajeDescuento)
			valorDevuelto = valorDevuelto.Add(precio.Mul(decimal.NewFromInt(int64(item.Cantidad))))
			devueltas = append(devueltas, lineaDevuelta{
				detalle:  detalle,
				producto: detalle.Producto,
				cantidad: item.Cantidad,
				estado:   item.Estado,
				precio:   precio,
			})
		}

		// 3. Replacements
		reemplazos := make([]lineaReemplazo, 0, len(req.Reemplazos))
		pedidoReemplazo := make(map[uuid.UUID]int)
		valorReemplazo := decimal.Zero
		for _, item := range req.Reemplazos {
			pid, err := parseID("producto_id", item.ProductoID)
			if err != nil {
				return err
			}
			p, err := s.repos.Productos.FindByID(ctx, tx, pid)
			if err != nil {
				return notFound(err, ErrNoEncontrado.Msgf("Producto %s no encontrado", item.ProductoID))
			}
			if !p.Activo {
				return invalido("El producto %s está inactivo", p.Nombre)
			}
			pedidoReemplazo[pid] += item.Cantidad
			if err := s.stock.disponible(ctx, tx, p, venta.PuntoVentaID, pedidoReemplazo[pid]); err != nil {
				return err
			}
			subtotal := p.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad))).Round(2)
			valorReemplazo = valorReemplazo.Add(subtotal)
			reemplazos = append(reemplazos, lineaReemplazo{producto: p, cantidad: item.Cantidad, subtotal: subtotal})
		}

		valorDevuelto = valorDevuelto.Round(2)
		diferencia := valorReemplazo.Sub(valorDevuelto)
		if diferencia.IsPositive() {
			if req.Pago == nil {
				return ErrPagosNoCoinciden.Msgf("Falta el pago de la diferencia (%s)", diferencia.StringFixed(2))
			}
			if !coincide(req.Pago.Monto, diferencia) {
				return ErrPagosNoCoinciden.Msgf("El pago (%s) no coincide con la diferencia (%s)", req.Pago.Monto.StringFixed(2), diferencia.StringFixed(2))
			}
		}

		// 4. Header, restock and losses
		dev = model.Devolucion{
			VentaID:        venta.ID,
			ClienteID:      venta.ClienteID,
			PuntoVentaID:   venta.PuntoVentaID,
			UsuarioID:      usuarioID,
			Motivo:         req.Motivo,
			ValorDevuelto:  valorDevuelto,
			ValorReemplazo: valorReemplazo,
			Diferencia:     diferencia,
		}
		for _, d := range devueltas {
			dev.Items = append(dev.Items, model.DevolucionItem{
				DetalleVentaID: d.detalle.ID,
				ProductoID:     d.detalle.ProductoID,
				Cantidad:       d.cantidad,
				Estado:         d.estado,
				PrecioUnitario: d.precio,
			})
		}
		if err := s.repos.Devoluciones.Create(ctx, tx, &dev); err != nil {
			return err
		}

		ref := dev.ID
		motivoStock := fmt.Sprintf("Devolución venta %s", venta.NumeroFactura)
		for _, d := range devueltas {
			if err := s.repos.Ventas.ActualizarDevuelto(ctx, tx, d.detalle, d.cantidad); err != nil {
				return err
			}
			if d.estado == model.EstadoDevolucionDefectuoso {
				costo := decimal.Zero
				if d.producto != nil {
					costo = d.producto.Costo.Mul(decimal.NewFromInt(int64(d.cantidad)))
				}
				err := s.repos.Devoluciones.CreatePerdida(ctx, tx, &model.Perdida{
					ProductoID:   d.detalle.ProductoID,
					PuntoVentaID: venta.PuntoVentaID,
					Cantidad:     d.cantidad,
					Costo:        costo,
					Motivo:       req.Motivo,
					DevolucionID: &ref,
					UsuarioID:    usuarioID,
				})
				if err != nil {
					return err
				}
				continue
			}
			if err := s.stock.mover(ctx, tx, d.detalle.ProductoID, venta.PuntoVentaID, d.cantidad, StockDevolucion, motivoStock, &ref, usuarioID); err != nil {
				return err
			}
		}

		// 5. Replacement lines
		for _, r := range reemplazos {
			linea := &model.DetalleVenta{
				VentaID:        venta.ID,
				ProductoID:     r.producto.ID,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.producto.Precio,
				Subtotal:       r.subtotal,
				EsReemplazo:    true,
				DevolucionID:   &ref,
			}
			if err := s.repos.Ventas.CreateDetalle(ctx, tx, linea); err != nil {
				return err
			}
			if err := s.stock.mover(ctx, tx, r.producto.ID, venta.PuntoVentaID, -r.cantidad, StockReemplazo, motivoStock, &ref, usuarioID); err != nil {
				return err
			}
		}

		// 6. Settlement
		if err := s.liquidar(ctx, tx, &dev, venta, req.Pago, usuarioID); err != nil {
			return err
		}
		if err := s.repos.Devoluciones.SetLiquidacion(ctx, tx, &dev); err != nil {
			return err
		}
		return s.repos.Ventas.SetTieneDevoluciones(ctx, tx, venta.ID, true)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("devolucion_id", dev.ID.String()).
		Str("venta_id", dev.VentaID.String()).
		Str("valor_devuelto", dev.ValorDevuelto.StringFixed(2)).
		Str("diferencia", dev.Diferencia.StringFixed(2)).
		Msg("devolucion registrada")

	return devolucionToResponse(&dev), nil
}

func (s *devolucionService) liquidar(ctx context.Context, tx *gorm.DB, dev *model.Devolucion, venta *model.Venta, leg *dto.PagoLegRequest, usuarioID uuid.UUID) error {
	notas := fmt.Sprintf("Devolución %s de venta %s", dev.ID, venta.NumeroFactura)
	switch {
	case dev.Diferencia.IsZero():
		return nil

	case dev.Diferencia.IsPositive():
		pagos, err := s.liq.registrar(ctx, tx, []dto.PagoLegRequest{*leg}, PagoInput{
			ReferenciaID:   dev.ID,
			TipoReferencia: model.RefDevolucion,
			ClienteID:      dev.ClienteID,
			UsuarioID:      usuarioID,
			PuntoVentaID:   dev.PuntoVentaID,
			Notas:          notas,
		})
		if err != nil {
			return err
		}
		dev.PagoID = &pagos[0].ID
		dev.MovimientoID = pagos[0].MovimientoID
		return nil

	case dev.ClienteID != nil:
		cuenta, err := s.ledger.AsegurarCuenta(ctx, tx, *dev.ClienteID)
		if err != nil {
			return err
		}
		ref := dev.ID
		mov, err := s.ledger.Post(ctx, tx, MovimientoInput{
			CuentaID:       cuenta.ID,
			Tipo:           model.MovimientoPago,
			Monto:          dev.Diferencia.Abs(),
			ReferenciaID:   &ref,
			TipoReferencia: model.RefDevolucion,
			UsuarioID:      usuarioID,
			Notas:          notas,
		})
		if err != nil {
			return err
		}
		dev.MovimientoID = &mov.ID
		return nil

	default:
		tipoPago := "Efectivo"
		if leg != nil && leg.TipoPago != "" && !model.EsCuentaCorriente(leg.TipoPago) {
			tipoPago = leg.TipoPago
		}
		pago, err := s.poster.Registrar(ctx, tx, PagoInput{
			Monto:          dev.Diferencia.Abs(),
			TipoPago:       tipoPago,
			ReferenciaID:   dev.ID,
			TipoReferencia: model.RefDevolucion,
			UsuarioID:      usuarioID,
			PuntoVentaID:   dev.PuntoVentaID,
			Notas:          notas,
			EsReintegro:    true,
		})
		if err != nil {
			return err
		}
		dev.PagoID = &pago.ID
		return nil
	}
}

// ── Anular ────────────────────────────────────────────────────────────────────
// Mirrors Registrar: restocked units leave stock again, written-off units are
// un-lost, replacement lines are deleted and their stock comes back, and the
// settlement is reversed at the current saldo.

func (s *devolucionService) Anular(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error {
	var dev *model.Devolucion
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		var err error
		dev, err = s.repos.Devoluciones.FindByID(ctx, tx, id, false)
		if err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Devolución no encontrada"))
		}
		// Sale before return, as when the sale itself is annulled.
		venta, err := s.repos.Ventas.FindByID(ctx, tx, dev.VentaID, true)
		if err != nil {
			return err
		}
		if dev, err = s.repos.Devoluciones.FindByID(ctx, tx, id, true); err != nil {
			return err
		}
		if dev.Anulada {
			return ErrYaAnulado.Msgf("La devolución ya está anulada")
		}
		if venta.Anulada {
			return ErrVentaAnulada.Msgf("La venta %s está anulada; la devolución ya no puede anularse", venta.NumeroFactura)
		}
		productos := make(map[uuid.UUID]*model.Producto)
		for _, item := range venta.Items {
			if item.Producto != nil {
				productos[item.ProductoID] = item.Producto
			}
			if item.EsReemplazo && item.DevolucionID != nil && *item.DevolucionID == dev.ID && item.CantidadDevuelta > 0 {
				return invalido("Los productos de reemplazo ya tienen devoluciones; anúlelas primero")
			}
		}

		ref := dev.ID
		m := fmt.Sprintf("Anulación devolución venta %s: %s", venta.NumeroFactura, motivo)

		lineas, err := s.repos.Ventas.DeleteReemplazos(ctx, tx, dev.ID)
		if err != nil {
			return err
		}
		for _, l := range lineas {
			if err := s.stock.mover(ctx, tx, l.ProductoID, venta.PuntoVentaID, l.Cantidad, StockAnulacionDevolucion, m, &ref, usuarioID); err != nil {
				return err
			}
		}

		perdidas := false
		for _, item := range dev.Items {
			detalle, err := s.repos.Ventas.FindDetalle(ctx, tx, item.DetalleVentaID, true)
			if err != nil {
				return err
			}
			if err := s.repos.Ventas.ActualizarDevuelto(ctx, tx, detalle, -item.Cantidad); err != nil {
				return err
			}
			if item.Estado == model.EstadoDevolucionDefectuoso {
				perdidas = true
				continue
			}
			p := productos[item.ProductoID]
			if p == nil {
				p = &model.Producto{ID: item.ProductoID, Nombre: item.ProductoID.String()}
			}
			if err := s.stock.disponible(ctx, tx, p, venta.PuntoVentaID, item.Cantidad); err != nil {
				return err
			}
			if err := s.stock.mover(ctx, tx, item.ProductoID, venta.PuntoVentaID, -item.Cantidad, StockAnulacionDevolucion, m, &ref, usuarioID); err != nil {
				return err
			}
		}
		if perdidas {
			if err := s.repos.Devoluciones.AnularPerdidas(ctx, tx, dev.ID); err != nil {
				return err
			}
		}

		if err := s.liq.revertirDevolucion(ctx, tx, s.repos, dev, usuarioID, motivo); err != nil {
			return err
		}
		if err := s.repos.Devoluciones.Anular(ctx, tx, dev, motivo, s.now()); err != nil {
			return err
		}
		activas, err := s.repos.Devoluciones.CountActivasByVenta(ctx, tx, venta.ID)
		if err != nil {
			return err
		}
		return s.repos.Ventas.SetTieneDevoluciones(ctx, tx, venta.ID, activas > 0)
	})
	if txErr != nil {
		return txErr
	}

	log.Info().
		Str("devolucion_id", dev.ID.String()).
		Str("venta_id", dev.VentaID.String()).
		Msg("devolucion anulada")
	return nil
}

func (s *devolucionService) Obtener(ctx context.Context, id uuid.UUID) (*dto.DevolucionResponse, error) {
	dev, err := s.repos.Devoluciones.FindByID(ctx, nil, id, false)
	if err != nil {
		return nil, notFound(err, ErrNoEncontrado.Msgf("Devolución no encontrada"))
	}
	return devolucionToResponse(dev), nil
}

func devolucionToResponse(d *model.Devolucion) *dto.DevolucionResponse {
	items := make([]dto.ItemDevolucionResponse, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, dto.ItemDevolucionResponse{
			DetalleVentaID: it.DetalleVentaID.String(),
			ProductoID:     it.ProductoID.String(),
			Cantidad:       it.Cantidad,
			Estado:         it.Estado,
			PrecioUnitario: it.PrecioUnitario,
		})
	}
	return &dto.DevolucionResponse{
		ID:             d.ID.String(),
		VentaID:        d.VentaID.String(),
		ClienteID:      idStr(d.ClienteID),
		Motivo:         d.Motivo,
		ValorDevuelto:  d.ValorDevuelto,
		ValorReemplazo: d.ValorReemplazo,
		Diferencia:     d.Diferencia,
		MovimientoID:   idStr(d.MovimientoID),
		PagoID:         idStr(d.PagoID),
		Anulada:        d.Anulada,
		Items:          items,
		CreatedAt:      fmtFecha(d.CreatedAt),
	}
}
