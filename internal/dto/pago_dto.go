package dto

import "github.com/shopspring/decimal"

// RegistrarPagoRequest is the body of POST /api/pagos.
type RegistrarPagoRequest struct {
	Monto          decimal.Decimal `json:"monto"           validate:"gt=0"`
	TipoPago       string          `json:"tipo_pago"       validate:"required,max=50"`
	ReferenciaID   string          `json:"referencia_id"   validate:"required,uuid"`
	TipoReferencia string          `json:"tipo_referencia" validate:"required,oneof=venta venta_equipo devolucion cuenta_corriente reparacion"`
	ClienteID      *string         `json:"cliente_id"      validate:"omitempty,uuid"`
	PuntoVentaID   string          `json:"punto_venta_id"  validate:"required,uuid"`
	Notas          string          `json:"notas"           validate:"omitempty,max=500"`
}

// PagoLegRequest is one settlement leg inside a sale-like request.
type PagoLegRequest struct {
	TipoPago string          `json:"tipo_pago" validate:"required,max=50"`
	Monto    decimal.Decimal `json:"monto"     validate:"gt=0"`
}

type AnularRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=500"`
}

// PagoFilter is bound from the query string of GET /api/pagos.
type PagoFilter struct {
	ReferenciaID   string `form:"referencia_id"   validate:"required,uuid"`
	TipoReferencia string `form:"tipo_referencia" validate:"required"`
}

type PagoResponse struct {
	ID              string          `json:"id"`
	Monto           decimal.Decimal `json:"monto"`
	TipoPago        string          `json:"tipo_pago"`
	ReferenciaID    string          `json:"referencia_id"`
	TipoReferencia  string          `json:"tipo_referencia"`
	ClienteID       *string         `json:"cliente_id"`
	UsuarioID       string          `json:"usuario_id"`
	PuntoVentaID    string          `json:"punto_venta_id"`
	MovimientoID    *string         `json:"movimiento_id"`
	EsReintegro     bool            `json:"es_reintegro"`
	Anulado         bool            `json:"anulado"`
	MotivoAnulacion *string         `json:"motivo_anulacion"`
	Notas           string          `json:"notas"`
	CreatedAt       string          `json:"created_at"`
}

// AnulacionResponse is the body of every successful PUT .../anular.
type AnulacionResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
