package service

import (
	"errors"

	"cellfie/internal/apierror"
	"cellfie/internal/repository"

	"gorm.io/gorm"
)

// Domain errors. Handlers map them to HTTP through apierror.Status; callers
// compare with errors.Is, which matches on the code even after Msgf.
var (
	ErrNoEncontrado            = apierror.NotFound("no_encontrado", "Recurso no encontrado")
	ErrClienteNoEncontrado     = apierror.NotFound("cliente_no_encontrado", "Cliente no encontrado")
	ErrPuntoVentaNoEncontrado  = apierror.NotFound("punto_venta_no_encontrado", "Punto de venta no encontrado")
	ErrCuentaNoEncontrada      = apierror.NotFound("cuenta_no_encontrada", "El cliente no tiene cuenta corriente")
	ErrReferenciaNoEncontrada  = apierror.NotFound("referencia_no_encontrada", "La referencia del pago no existe")
	ErrCuentaExistente         = apierror.Conflict("cuenta_existente", "El cliente ya tiene una cuenta corriente activa")
	ErrCuentaInactiva          = apierror.Conflict("cuenta_inactiva", "La cuenta corriente está inactiva")
	ErrSinCuentaActiva         = apierror.Conflict("sin_cuenta_activa", "El cliente no tiene una cuenta corriente activa")
	ErrLimiteCredito           = apierror.Conflict("limite_credito", "La operación excede el límite de crédito del cliente")
	ErrYaAnulado               = apierror.Conflict("ya_anulado", "El registro ya fue anulado")
	ErrStockInsuficiente       = apierror.Conflict("stock_insuficiente", "Stock insuficiente")
	ErrPagosNoCoinciden        = apierror.Conflict("pagos_no_coinciden", "La suma de los pagos no coincide con el total")
	ErrSaldoInsuficiente       = apierror.Conflict("saldo_insuficiente", "El monto supera la deuda del cliente")
	ErrModificacionConcurrente = apierror.Conflict("modificacion_concurrente", "La cuenta fue modificada por otra operación, reintente")
	ErrYaRevertido             = apierror.Conflict("ya_revertido", "El movimiento ya fue revertido")
	ErrReparacionCancelada     = apierror.Conflict("reparacion_cancelada", "La reparación está cancelada")
	ErrEquipoVendido           = apierror.Conflict("equipo_vendido", "El equipo ya fue vendido")
	ErrExcedeSaldoPendiente    = apierror.Conflict("excede_saldo_pendiente", "El pago supera el saldo pendiente")
	ErrIMEIDuplicado           = apierror.Conflict("imei_duplicado", "Ya existe un equipo con ese IMEI")
	ErrVentaAnulada            = apierror.Conflict("venta_anulada", "La venta está anulada")
	ErrDevolucionExcedida      = apierror.Conflict("devolucion_excedida", "La cantidad supera lo pendiente de devolver")
	ErrCredenciales            = apierror.Validation("credenciales_invalidas", "Credenciales invalidas")
	ErrDatoInvalido            = apierror.Validation("dato_invalido", "Datos invalidos")
)

// notFound converts gorm's ErrRecordNotFound into the given domain error and
// passes every other error through.
func notFound(err error, domain *apierror.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain
	}
	return err
}

// concurrencia maps an optimistic-lock miss to ErrModificacionConcurrente.
func concurrencia(err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return ErrModificacionConcurrente.Wrap(err)
	}
	return err
}

func invalido(format string, args ...any) error {
	return ErrDatoInvalido.Msgf(format, args...)
}
