package router

import (
	"strings"
	"time"

	"cellfie/internal/config"
	"cellfie/internal/handler"
	"cellfie/internal/infra"
	"cellfie/internal/middleware"
	"cellfie/internal/repository"
	"cellfie/internal/service"
	"cellfie/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← (Ledger, Poster) ← Repository ← DB/Redis
//
// rdb and smtp may be nil: receipts are then not queued and the product cache is bypassed.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtp *infra.Breaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(strings.Split(cfg.CORSOrigins, ",")))
	r.Use(middleware.ErrorHandler())
	limite := cfg.RateLimitPorMinuto
	if limite <= 0 {
		limite = 1000
	}
	r.Use(middleware.RateLimiter(limite, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	repos := repository.NewRepos(db)

	// ── Ledger core ──────────────────────────────────────────────────────────
	policy := service.LedgerPolicy{
		LimiteEnApertura:      cfg.LimiteEnApertura,
		PagoDirectoCreaCuenta: cfg.PagoDirectoCreaCuenta,
	}
	ledger := service.NewLedgerService(repos.Cuentas, policy)
	poster := service.NewPagoPoster(repos.Pagos, repos.PuntosVenta, repos.Clientes, repos.Cuentas, ledger)

	// Receipt jobs only when Redis is available; a nil interface disables them.
	var queue service.ComprobanteQueue
	if rdb != nil {
		queue = worker.NewDispatcher(rdb)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(repos.Usuarios, cfg)
	catalogoSvc := service.NewCatalogoService(repos, rdb)
	cuentasSvc := service.NewCuentaCorrienteService(repos, ledger, poster)
	pagoSvc := service.NewPagoService(repos, ledger, poster, policy)
	ventaSvc := service.NewVentaService(repos, ledger, poster, queue)
	ventaEquipoSvc := service.NewVentaEquipoService(repos, ledger, poster, queue)
	devolucionSvc := service.NewDevolucionService(repos, ledger, poster)
	reparacionSvc := service.NewReparacionService(repos, ledger, poster)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	cuentasH := handler.NewCuentasCorrientesHandler(cuentasSvc)
	pagosH := handler.NewPagosHandler(pagoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	ventasEquiposH := handler.NewVentasEquiposHandler(ventaEquipoSvc)
	devolucionesH := handler.NewDevolucionesHandler(devolucionSvc)
	reparacionesH := handler.NewReparacionesHandler(reparacionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtp))

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	supervisa := middleware.RequireRole(middleware.RolSupervisor, middleware.RolAdministrador)
	administra := middleware.RequireRole(middleware.RolAdministrador)

	// Protected routes; any authenticated role unless stated otherwise
	api := r.Group("/api", middleware.JWTAuth(cfg.JWTSecret))
	{
		api.GET("/clientes", catalogoH.ListarClientes)
		api.POST("/clientes", catalogoH.CrearCliente)
		api.GET("/clientes/:id", catalogoH.ObtenerCliente)

		api.GET("/puntos-venta", catalogoH.ListarPuntosVenta)
		api.POST("/puntos-venta", administra, catalogoH.CrearPuntoVenta)

		api.GET("/productos", catalogoH.ListarProductos)
		api.GET("/productos/:id", catalogoH.ObtenerProducto)
		api.POST("/productos", administra, catalogoH.CrearProducto)
		api.PUT("/inventario", administra, catalogoH.FijarStock)

		api.POST("/equipos", administra, catalogoH.CrearEquipo)
		api.GET("/equipos/:id", catalogoH.ObtenerEquipo)

		rep := api.Group("/reparaciones")
		{
			rep.POST("", reparacionesH.Crear)
			rep.GET("/:id", reparacionesH.Obtener)
			rep.POST("/:id/pagos", reparacionesH.RegistrarPago)
			rep.PUT("/:id/cancelar", supervisa, reparacionesH.Cancelar)
		}

		pagos := api.Group("/pagos")
		{
			pagos.POST("", pagosH.Registrar)
			pagos.GET("", pagosH.Listar)
			pagos.PUT("/:id/anular", supervisa, pagosH.Anular)
		}

		cc := api.Group("/cuentas-corrientes")
		{
			cc.GET("/cliente/:cliente_id", cuentasH.ObtenerPorCliente)
			cc.POST("", supervisa, cuentasH.Abrir)
			cc.PUT("/:id/limite", supervisa, cuentasH.ActualizarLimite)
			cc.PUT("/:id/estado", supervisa, cuentasH.CambiarEstado)
			cc.POST("/pago", cuentasH.RegistrarAbono)
			cc.POST("/cargo", cuentasH.RegistrarCargo)
			cc.GET("/:id/movimientos", cuentasH.ListarMovimientos)
		}

		ventas := api.Group("/ventas")
		{
			ventas.POST("", ventasH.RegistrarVenta)
			ventas.GET("/:id", ventasH.ObtenerVenta)
			ventas.PUT("/:id/anular", supervisa, ventasH.AnularVenta)
		}

		ve := api.Group("/ventas-equipos")
		{
			ve.POST("", ventasEquiposH.Registrar)
			ve.GET("/:id", ventasEquiposH.Obtener)
			ve.PUT("/:id/anular", supervisa, ventasEquiposH.Anular)
		}

		dev := api.Group("/devoluciones")
		{
			dev.POST("", devolucionesH.Registrar)
			dev.GET("/:id", devolucionesH.Obtener)
			dev.PUT("/:id/anular", supervisa, devolucionesH.Anular)
		}
	}

	// Swagger UI outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
