package dto

import "github.com/shopspring/decimal"

// PlanCanjeRequest describes the device the customer hands in.
type PlanCanjeRequest struct {
	Marca      string          `json:"marca"       validate:"required,max=50"`
	Modelo     string          `json:"modelo"      validate:"required,max=100"`
	IMEI       string          `json:"imei"        validate:"required,min=8,max=20"`
	Capacidad  *string         `json:"capacidad"   validate:"omitempty,max=20"`
	Color      *string         `json:"color"       validate:"omitempty,max=30"`
	Bateria    *int            `json:"bateria"     validate:"omitempty,min=0,max=100"`
	ValorCanje decimal.Decimal `json:"valor_canje" validate:"gt=0"`
	// PrecioReventa is the list price of the unit once back in stock; defaults to ValorCanje.
	PrecioReventa decimal.Decimal `json:"precio_reventa" validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

type RegistrarVentaEquipoRequest struct {
	PuntoVentaID        string            `json:"punto_venta_id"       validate:"required,uuid"`
	ClienteID           *string           `json:"cliente_id"           validate:"omitempty,uuid"`
	EquipoID            string            `json:"equipo_id"            validate:"required,uuid"`
	Precio              *decimal.Decimal  `json:"precio"`
	PorcentajeDescuento decimal.Decimal   `json:"porcentaje_descuento" validate:"min=0,max=100"`
	PorcentajeInteres   decimal.Decimal   `json:"porcentaje_interes"   validate:"min=0,max=100"`
	Pagos               []PagoLegRequest  `json:"pagos"                validate:"omitempty,dive"`
	PlanCanje           *PlanCanjeRequest `json:"plan_canje"`
	Notas               string            `json:"notas"                validate:"omitempty,max=500"`
}

type VentaEquipoResponse struct {
	ID                  string          `json:"id"`
	NumeroFactura       string          `json:"numero_factura"`
	ClienteID           *string         `json:"cliente_id"`
	PuntoVentaID        string          `json:"punto_venta_id"`
	Equipo              EquipoResponse  `json:"equipo"`
	Precio              decimal.Decimal `json:"precio"`
	PorcentajeInteres   decimal.Decimal `json:"porcentaje_interes"`
	PorcentajeDescuento decimal.Decimal `json:"porcentaje_descuento"`
	Total               decimal.Decimal `json:"total"`
	ValorCanje          decimal.Decimal `json:"valor_canje"`
	MontoAPagar         decimal.Decimal `json:"monto_a_pagar"`
	EquipoCanjeID       *string         `json:"equipo_canje_id"`
	Anulada             bool            `json:"anulada"`
	Pagos               []PagoResponse  `json:"pagos"`
	CreatedAt           string          `json:"created_at"`
}
