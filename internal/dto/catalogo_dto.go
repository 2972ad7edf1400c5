package dto

import "github.com/shopspring/decimal"

// ─── Clientes / Puntos de venta ──────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=150"`
	Telefono *string `json:"telefono" validate:"omitempty,max=30"`
	DNI      *string `json:"dni"      validate:"omitempty,max=20"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type ClienteResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Telefono *string `json:"telefono"`
	DNI      *string `json:"dni"`
	Email    *string `json:"email"`
	Activo   bool    `json:"activo"`
}

type CrearPuntoVentaRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=100"`
	Direccion *string `json:"direccion" validate:"omitempty,max=200"`
}

type PuntoVentaResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Direccion *string `json:"direccion"`
	Activo    bool    `json:"activo"`
}

// ─── Productos / Inventario ──────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo      string          `json:"codigo"      validate:"required,min=1,max=50"`
	Nombre      string          `json:"nombre"      validate:"required,min=2,max=150"`
	Descripcion *string         `json:"descripcion"`
	Categoria   string          `json:"categoria"   validate:"omitempty,max=50"`
	Precio      decimal.Decimal `json:"precio"      validate:"gt=0"`
	Costo       decimal.Decimal `json:"costo"       validate:"min=0"`
}

type ProductoResponse struct {
	ID        string          `json:"id"`
	Codigo    string          `json:"codigo"`
	Nombre    string          `json:"nombre"`
	Categoria string          `json:"categoria"`
	Precio    decimal.Decimal `json:"precio"`
	Costo     decimal.Decimal `json:"costo"`
	Activo    bool            `json:"activo"`
}

// FijarStockRequest sets the absolute stock of a product at one punto de venta.
type FijarStockRequest struct {
	ProductoID   string `json:"producto_id"    validate:"required,uuid"`
	PuntoVentaID string `json:"punto_venta_id" validate:"required,uuid"`
	Stock        int    `json:"stock"          validate:"min=0"`
	StockMinimo  *int   `json:"stock_minimo"   validate:"omitempty,min=0"`
	Motivo       string `json:"motivo"         validate:"omitempty,max=200"`
}

type InventarioResponse struct {
	ProductoID   string `json:"producto_id"`
	PuntoVentaID string `json:"punto_venta_id"`
	Stock        int    `json:"stock"`
	StockMinimo  int    `json:"stock_minimo"`
}

// ─── Equipos ─────────────────────────────────────────────────────────────────

type CrearEquipoRequest struct {
	Marca         string          `json:"marca"          validate:"required,max=50"`
	Modelo        string          `json:"modelo"         validate:"required,max=100"`
	IMEI          string          `json:"imei"           validate:"required,min=8,max=20"`
	Capacidad     *string         `json:"capacidad"      validate:"omitempty,max=20"`
	Color         *string         `json:"color"          validate:"omitempty,max=30"`
	Bateria       *int            `json:"bateria"        validate:"omitempty,min=0,max=100"`
	Estado        string          `json:"estado"         validate:"omitempty,oneof=nuevo usado"`
	Precio        decimal.Decimal `json:"precio"         validate:"gt=0"`
	Costo         decimal.Decimal `json:"costo"          validate:"min=0"`
	PuntoVentaID  string          `json:"punto_venta_id" validate:"required,uuid"`
	Observaciones *string         `json:"observaciones"`
}

type EquipoResponse struct {
	ID           string          `json:"id"`
	Marca        string          `json:"marca"`
	Modelo       string          `json:"modelo"`
	IMEI         string          `json:"imei"`
	Capacidad    *string         `json:"capacidad"`
	Color        *string         `json:"color"`
	Bateria      *int            `json:"bateria"`
	Estado       string          `json:"estado"`
	Precio       decimal.Decimal `json:"precio"`
	PuntoVentaID string          `json:"punto_venta_id"`
	Vendido      bool            `json:"vendido"`
	EsCanje      bool            `json:"es_canje"`
	VentaCanjeID *string         `json:"venta_canje_id"`
}

// ProductoFilter is bound from the query string of GET /api/productos.
type ProductoFilter struct {
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
