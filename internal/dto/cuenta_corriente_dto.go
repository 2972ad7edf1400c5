package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCuentaRequest struct {
	ClienteID     string          `json:"cliente_id"     validate:"required,uuid"`
	LimiteCredito decimal.Decimal `json:"limite_credito" validate:"min=0"`
	SaldoInicial  decimal.Decimal `json:"saldo_inicial"  validate:"min=0"`
}

type ActualizarLimiteRequest struct {
	LimiteCredito decimal.Decimal `json:"limite_credito" validate:"min=0"`
}

type CambiarEstadoCuentaRequest struct {
	Activo *bool `json:"activo" validate:"required"`
}

// AbonoCuentaRequest is the body of POST /api/cuentas-corrientes/pago.
type AbonoCuentaRequest struct {
	ClienteID    string          `json:"cliente_id"     validate:"required,uuid"`
	Monto        decimal.Decimal `json:"monto"          validate:"gt=0"`
	TipoPago     *string         `json:"tipo_pago"      validate:"omitempty,max=50"`
	PuntoVentaID *string         `json:"punto_venta_id" validate:"omitempty,uuid"`
	Notas        string          `json:"notas"          validate:"omitempty,max=500"`
}

// CargoCuentaRequest is a manual charge or adjustment (POST /api/cuentas-corrientes/cargo).
type CargoCuentaRequest struct {
	ClienteID string          `json:"cliente_id" validate:"required,uuid"`
	Monto     decimal.Decimal `json:"monto"      validate:"gt=0"`
	Notas     string          `json:"notas"      validate:"required,min=3,max=500"`
}

type MovimientoFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID                 string          `json:"id"`
	CuentaCorrienteID  string          `json:"cuenta_corriente_id"`
	Tipo               string          `json:"tipo"`
	Monto              decimal.Decimal `json:"monto"`
	SaldoAnterior      decimal.Decimal `json:"saldo_anterior"`
	SaldoNuevo         decimal.Decimal `json:"saldo_nuevo"`
	ReferenciaID       *string         `json:"referencia_id"`
	TipoReferencia     string          `json:"tipo_referencia"`
	UsuarioID          string          `json:"usuario_id"`
	Notas              string          `json:"notas"`
	MovimientoOrigenID *string         `json:"movimiento_origen_id"`
	CreatedAt          string          `json:"created_at"`
}

type CuentaCorrienteResponse struct {
	ID                    string               `json:"id"`
	ClienteID             string               `json:"cliente_id"`
	ClienteNombre         string               `json:"cliente_nombre"`
	Saldo                 decimal.Decimal      `json:"saldo"`
	LimiteCredito         decimal.Decimal      `json:"limite_credito"`
	Activo                bool                 `json:"activo"`
	FechaUltimoMovimiento *string              `json:"fecha_ultimo_movimiento"`
	Movimientos           []MovimientoResponse `json:"movimientos,omitempty"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
