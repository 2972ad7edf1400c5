package repository

import "gorm.io/gorm"

// Repos bundles every repository built on one *gorm.DB.
type Repos struct {
	DB               *gorm.DB
	Usuarios         UsuarioRepository
	Clientes         ClienteRepository
	PuntosVenta      PuntoVentaRepository
	Cuentas          CuentaCorrienteRepository
	Pagos            PagoRepository
	Productos        ProductoRepository
	MovimientosStock MovimientoStockRepository
	Ventas           VentaRepository
	Equipos          EquipoRepository
	Devoluciones     DevolucionRepository
	Reparaciones     ReparacionRepository
}

func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		DB:               db,
		Usuarios:         NewUsuarioRepository(db),
		Clientes:         NewClienteRepository(db),
		PuntosVenta:      NewPuntoVentaRepository(db),
		Cuentas:          NewCuentaCorrienteRepository(db),
		Pagos:            NewPagoRepository(db),
		Productos:        NewProductoRepository(db),
		MovimientosStock: NewMovimientoStockRepository(db),
		Ventas:           NewVentaRepository(db),
		Equipos:          NewEquipoRepository(db),
		Devoluciones:     NewDevolucionRepository(db),
		Reparaciones:     NewReparacionRepository(db),
	}
}
