package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cellfie/internal/infra"
	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ComprobanteJobPayload is the job body enqueued after a sale commits.
type ComprobanteJobPayload struct {
	Tipo string `json:"tipo"` // "venta" | "venta_equipo"
	ID   string `json:"id"`
}

// EmailQueue is satisfied by *Dispatcher.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

// ComprobanteWorker renders the receipt PDF of a committed sale and, when
// mailing is enabled and the customer has an e-mail, queues it for sending.
type ComprobanteWorker struct {
	repos       *repository.Repos
	emails      EmailQueue
	storagePath string
	comercio    string
	mailEnabled bool
}

func NewComprobanteWorker(repos *repository.Repos, emails EmailQueue, storagePath, comercio string, mailEnabled bool) *ComprobanteWorker {
	return &ComprobanteWorker{
		repos:       repos,
		emails:      emails,
		storagePath: storagePath,
		comercio:    comercio,
		mailEnabled: mailEnabled,
	}
}

// Process handles one job. Unknown sales are dropped; store errors are retried.
func (w *ComprobanteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ComprobanteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("comprobante_worker: invalid payload")
		return nil
	}
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		log.Error().Str("id", payload.ID).Msg("comprobante_worker: invalid id")
		return nil
	}

	var (
		comp      *infra.Comprobante
		clienteID *uuid.UUID
	)
	switch payload.Tipo {
	case string(model.RefVenta):
		comp, clienteID, err = w.desdeVenta(ctx, id)
	case string(model.RefVentaEquipo):
		comp, clienteID, err = w.desdeVentaEquipo(ctx, id)
	default:
		log.Error().Str("tipo", payload.Tipo).Msg("comprobante_worker: unknown tipo")
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("id", payload.ID).Str("tipo", payload.Tipo).Msg("comprobante_worker: venta not found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("comprobante_worker: load %s %s: %w", payload.Tipo, payload.ID, err)
	}

	email, err := w.cliente(ctx, clienteID, comp)
	if err != nil {
		return fmt.Errorf("comprobante_worker: load cliente: %w", err)
	}

	path, err := infra.GuardarComprobante(comp, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("numero_factura", comp.Numero).Str("path", path).Msg("comprobante_worker: comprobante generado")

	if !w.mailEnabled || email == "" || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: email,
		Subject: fmt.Sprintf("%s - Comprobante %s", w.comercio, comp.Numero),
		Body:    fmt.Sprintf("Gracias por su compra. Adjuntamos el comprobante %s.", comp.Numero),
		PDFPath: path,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		// The PDF is already on disk; re-rendering on retry is harmless.
		return fmt.Errorf("comprobante_worker: enqueue email: %w", err)
	}
	return nil
}

func (w *ComprobanteWorker) desdeVenta(ctx context.Context, id uuid.UUID) (*infra.Comprobante, *uuid.UUID, error) {
	v, err := w.repos.Ventas.FindByID(ctx, nil, id, false)
	if err != nil {
		return nil, nil, err
	}
	comp := &infra.Comprobante{
		Comercio:  w.comercio,
		Titulo:    "Venta",
		Numero:    v.NumeroFactura,
		Fecha:     v.CreatedAt,
		Subtotal:  v.Subtotal,
		Descuento: v.PorcentajeDescuento,
		Interes:   v.PorcentajeInteres,
		Total:     v.Total,
	}
	for _, it := range v.Items {
		if it.EsReemplazo {
			continue
		}
		nombre := "Producto"
		if it.Producto != nil {
			nombre = it.Producto.Nombre
		}
		comp.Lineas = append(comp.Lineas, infra.LineaComprobante{Descripcion: nombre, Cantidad: it.Cantidad, Importe: it.Subtotal})
	}
	if err := w.pagos(ctx, comp, id, model.RefVenta); err != nil {
		return nil, nil, err
	}
	return comp, v.ClienteID, nil
}

func (w *ComprobanteWorker) desdeVentaEquipo(ctx context.Context, id uuid.UUID) (*infra.Comprobante, *uuid.UUID, error) {
	v, err := w.repos.Equipos.FindVentaByID(ctx, nil, id, false)
	if err != nil {
		return nil, nil, err
	}
	comp := &infra.Comprobante{
		Comercio:  w.comercio,
		Titulo:    "Venta de equipo",
		Numero:    v.NumeroFactura,
		Fecha:     v.CreatedAt,
		Subtotal:  v.Precio,
		Descuento: v.PorcentajeDescuento,
		Interes:   v.PorcentajeInteres,
		Canje:     v.ValorCanje,
		Total:     v.MontoAPagar,
	}
	if e := v.Equipo; e != nil {
		comp.Lineas = []infra.LineaComprobante{{
			Descripcion: fmt.Sprintf("%s %s IMEI %s", e.Marca, e.Modelo, e.IMEI),
			Cantidad:    1,
			Importe:     v.Precio,
		}}
	}
	if err := w.pagos(ctx, comp, id, model.RefVentaEquipo); err != nil {
		return nil, nil, err
	}
	return comp, v.ClienteID, nil
}

func (w *ComprobanteWorker) pagos(ctx context.Context, comp *infra.Comprobante, id uuid.UUID, tipo model.TipoReferencia) error {
	pagos, err := w.repos.Pagos.ListByReferencia(ctx, nil, id, tipo)
	if err != nil {
		return err
	}
	for _, p := range pagos {
		if p.Anulado {
			continue
		}
		comp.Pagos = append(comp.Pagos, infra.PagoComprobante{Tipo: p.TipoPago, Monto: p.Monto})
	}
	return nil
}

// cliente fills the customer name on comp and returns the customer's e-mail, if any.
func (w *ComprobanteWorker) cliente(ctx context.Context, id *uuid.UUID, comp *infra.Comprobante) (string, error) {
	if id == nil {
		return "", nil
	}
	c, err := w.repos.Clientes.FindByID(ctx, nil, *id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	comp.Cliente = c.Nombre
	if c.Email == nil {
		return "", nil
	}
	return *c.Email, nil
}
