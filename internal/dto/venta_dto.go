package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID          string          `json:"producto_id"          validate:"required,uuid"`
	Cantidad            int             `json:"cantidad"             validate:"required,min=1"`
	PorcentajeDescuento decimal.Decimal `json:"porcentaje_descuento" validate:"min=0,max=100"`
}

type RegistrarVentaRequest struct {
	PuntoVentaID        string             `json:"punto_venta_id"       validate:"required,uuid"`
	ClienteID           *string            `json:"cliente_id"           validate:"omitempty,uuid"`
	Productos           []ItemVentaRequest `json:"productos"            validate:"required,min=1,dive"`
	Pagos               []PagoLegRequest   `json:"pagos"                validate:"required,min=1,dive"`
	PorcentajeDescuento decimal.Decimal    `json:"porcentaje_descuento" validate:"min=0,max=100"`
	// PorcentajeInteres is shown on the receipt only; it never changes the total.
	PorcentajeInteres decimal.Decimal `json:"porcentaje_interes" validate:"min=0,max=100"`
	Notas             string          `json:"notas"              validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// VentaCreadaResponse is the 201 body of POST /api/ventas and /api/ventas-equipos.
type VentaCreadaResponse struct {
	ID            string          `json:"id"`
	NumeroFactura string          `json:"numero_factura"`
	Total         decimal.Decimal `json:"total"`
}

type ItemVentaResponse struct {
	ID                  string          `json:"id"`
	ProductoID          string          `json:"producto_id"`
	Producto            string          `json:"producto"`
	Cantidad            int             `json:"cantidad"`
	CantidadDevuelta    int             `json:"cantidad_devuelta"`
	PrecioUnitario      decimal.Decimal `json:"precio_unitario"`
	PorcentajeDescuento decimal.Decimal `json:"porcentaje_descuento"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	EsReemplazo         bool            `json:"es_reemplazo"`
}

type VentaResponse struct {
	ID                  string              `json:"id"`
	NumeroFactura       string              `json:"numero_factura"`
	ClienteID           *string             `json:"cliente_id"`
	PuntoVentaID        string              `json:"punto_venta_id"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	PorcentajeInteres   decimal.Decimal     `json:"porcentaje_interes"`
	PorcentajeDescuento decimal.Decimal     `json:"porcentaje_descuento"`
	Total               decimal.Decimal     `json:"total"`
	Anulada             bool                `json:"anulada"`
	TieneDevoluciones   bool                `json:"tiene_devoluciones"`
	Items               []ItemVentaResponse `json:"items"`
	Pagos               []PagoResponse      `json:"pagos"`
	CreatedAt           string              `json:"created_at"`
}
