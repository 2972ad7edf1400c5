package model

// All lists every persisted model, in dependency order. Used by AutoMigrate in
// tests; production schemas come from the SQL migrations.
func All() []any {
	return []any{
		&Usuario{}, &PuntoVenta{}, &Cliente{},
		&CuentaCorriente{}, &MovimientoCuentaCorriente{}, &Pago{},
		&Producto{}, &Inventario{}, &MovimientoStock{},
		&Venta{}, &DetalleVenta{},
		&Equipo{}, &VentaEquipo{},
		&Devolucion{}, &DevolucionItem{}, &Perdida{},
		&Reparacion{}, &PagoReparacion{},
	}
}
