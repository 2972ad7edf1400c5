package dto

import "github.com/shopspring/decimal"

type CrearReparacionRequest struct {
	ClienteID    *string         `json:"cliente_id"     validate:"omitempty,uuid"`
	PuntoVentaID string          `json:"punto_venta_id" validate:"required,uuid"`
	Equipo       string          `json:"equipo"         validate:"required,max=200"`
	Descripcion  string          `json:"descripcion"    validate:"required,max=1000"`
	Total        decimal.Decimal `json:"total"          validate:"gt=0"`
}

type PagoReparacionRequest struct {
	TipoPago string          `json:"tipo_pago" validate:"required,max=50"`
	Monto    decimal.Decimal `json:"monto"     validate:"gt=0"`
	Notas    string          `json:"notas"     validate:"omitempty,max=500"`
}

type PagoReparacionResponse struct {
	ID           string          `json:"id"`
	PagoID       string          `json:"pago_id"`
	Monto        decimal.Decimal `json:"monto"`
	TipoPago     string          `json:"tipo_pago"`
	MovimientoID *string         `json:"movimiento_id"`
	Anulado      bool            `json:"anulado"`
	CreatedAt    string          `json:"created_at"`
}

type ReparacionResponse struct {
	ID           string                   `json:"id"`
	ClienteID    *string                  `json:"cliente_id"`
	PuntoVentaID string                   `json:"punto_venta_id"`
	Equipo       string                   `json:"equipo"`
	Descripcion  string                   `json:"descripcion"`
	Total        decimal.Decimal          `json:"total"`
	Pagado       decimal.Decimal          `json:"pagado"`
	Saldo        decimal.Decimal          `json:"saldo"`
	Estado       string                   `json:"estado"`
	Pagos        []PagoReparacionResponse `json:"pagos"`
	CreatedAt    string                   `json:"created_at"`
}
