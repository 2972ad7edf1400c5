package dto

import "github.com/shopspring/decimal"

type ItemDevolucionRequest struct {
	DetalleVentaID string `json:"detalle_venta_id" validate:"required,uuid"`
	Cantidad       int    `json:"cantidad"         validate:"required,min=1"`
	Estado         string `json:"estado"           validate:"required,oneof=normal defectuoso"`
}

type ItemReemplazoRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type RegistrarDevolucionRequest struct {
	VentaID    string                  `json:"venta_id"   validate:"required,uuid"`
	Motivo     string                  `json:"motivo"     validate:"required,min=3,max=500"`
	Items      []ItemDevolucionRequest `json:"items"      validate:"required,min=1,dive"`
	Reemplazos []ItemReemplazoRequest  `json:"reemplazos" validate:"omitempty,dive"`
	// Pago settles a positive diferencia; required when replacements cost more than what is returned.
	Pago *PagoLegRequest `json:"pago"`
}

type ItemDevolucionResponse struct {
	DetalleVentaID string          `json:"detalle_venta_id"`
	ProductoID     string          `json:"producto_id"`
	Cantidad       int             `json:"cantidad"`
	Estado         string          `json:"estado"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
}

type DevolucionResponse struct {
	ID             string                   `json:"id"`
	VentaID        string                   `json:"venta_id"`
	ClienteID      *string                  `json:"cliente_id"`
	Motivo         string                   `json:"motivo"`
	ValorDevuelto  decimal.Decimal          `json:"valor_devuelto"`
	ValorReemplazo decimal.Decimal          `json:"valor_reemplazo"`
	Diferencia     decimal.Decimal          `json:"diferencia"`
	MovimientoID   *string                  `json:"movimiento_id"`
	PagoID         *string                  `json:"pago_id"`
	Anulada        bool                     `json:"anulada"`
	Items          []ItemDevolucionResponse `json:"items"`
	CreatedAt      string                   `json:"created_at"`
}
