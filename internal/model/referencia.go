package model

// TipoReferencia tags the entity a Pago or movement points at through ReferenciaID.
type TipoReferencia string

const (
	RefVenta                TipoReferencia = "venta"
	RefVentaEquipo          TipoReferencia = "venta_equipo"
	RefDevolucion           TipoReferencia = "devolucion"
	RefReparacion           TipoReferencia = "reparacion"
	RefCuentaCorriente      TipoReferencia = "cuenta_corriente"
	RefAjuste               TipoReferencia = "ajuste"
	RefAnulacionVenta       TipoReferencia = "anulacion_venta"
	RefAnulacionVentaEquipo TipoReferencia = "anulacion_venta_equipo"
	RefAnulacionDevolucion  TipoReferencia = "anulacion_devolucion"
	RefAnulacionReparacion  TipoReferencia = "anulacion_reparacion"
	RefAnulacionPago        TipoReferencia = "anulacion_pago"
)

func (t TipoReferencia) Valid() bool {
	switch t {
	case RefVenta, RefVentaEquipo, RefDevolucion, RefReparacion, RefCuentaCorriente, RefAjuste,
		RefAnulacionVenta, RefAnulacionVentaEquipo, RefAnulacionDevolucion, RefAnulacionReparacion,
		RefAnulacionPago:
		return true
	}
	return false
}

// Anulacion returns the tag used for movements that reverse a posting tagged t.
func (t TipoReferencia) Anulacion() TipoReferencia {
	switch t {
	case RefVenta:
		return RefAnulacionVenta
	case RefVentaEquipo:
		return RefAnulacionVentaEquipo
	case RefDevolucion:
		return RefAnulacionDevolucion
	case RefReparacion:
		return RefAnulacionReparacion
	default:
		return RefAnulacionPago
	}
}
