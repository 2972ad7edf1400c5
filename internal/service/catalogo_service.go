package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cellfie/internal/dto"
	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const productoCacheTTL = 4 * time.Hour

// CatalogoService covers the collaborators the flows read: customers, stores,
// products with their stock and serialized devices.
type CatalogoService interface {
	CrearCliente(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerCliente(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	ListarClientes(ctx context.Context, nombre string) ([]dto.ClienteResponse, error)

	CrearPuntoVenta(ctx context.Context, req dto.CrearPuntoVentaRequest) (*dto.PuntoVentaResponse, error)
	ListarPuntosVenta(ctx context.Context) ([]dto.PuntoVentaResponse, error)

	CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ListarProductos(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	FijarStock(ctx context.Context, usuarioID uuid.UUID, req dto.FijarStockRequest) (*dto.InventarioResponse, error)

	CrearEquipo(ctx context.Context, req dto.CrearEquipoRequest) (*dto.EquipoResponse, error)
	ObtenerEquipo(ctx context.Context, id uuid.UUID) (*dto.EquipoResponse, error)
}

type catalogoService struct {
	repos *repository.Repos
	rdb   *redis.Client // optional; nil disables the product cache
}

func NewCatalogoService(repos *repository.Repos, rdb *redis.Client) CatalogoService {
	return &catalogoService{repos: repos, rdb: rdb}
}

// ── Clientes ──────────────────────────────────────────────────────────────────

func (s *catalogoService) CrearCliente(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:   req.Nombre,
		Telefono: req.Telefono,
		DNI:      req.DNI,
		Email:    req.Email,
		Activo:   true,
	}
	if err := s.repos.Clientes.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *catalogoService) ObtenerCliente(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repos.Clientes.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrClienteNoEncontrado)
	}
	return clienteToResponse(c), nil
}

// ListarClientes always includes the walk-in customer, creating it on first use.
func (s *catalogoService) ListarClientes(ctx context.Context, nombre string) ([]dto.ClienteResponse, error) {
	if _, err := s.repos.Clientes.EnsureGeneral(ctx); err != nil {
		return nil, err
	}
	list, err := s.repos.Clientes.List(ctx, nombre)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClienteResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *clienteToResponse(&list[i]))
	}
	return resp, nil
}

// ── Puntos de venta ───────────────────────────────────────────────────────────

func (s *catalogoService) CrearPuntoVenta(ctx context.Context, req dto.CrearPuntoVentaRequest) (*dto.PuntoVentaResponse, error) {
	p := &model.PuntoVenta{Nombre: req.Nombre, Direccion: req.Direccion, Activo: true}
	if err := s.repos.PuntosVenta.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalido("Ya existe un punto de venta llamado %s", req.Nombre)
		}
		return nil, err
	}
	return &dto.PuntoVentaResponse{ID: p.ID.String(), Nombre: p.Nombre, Direccion: p.Direccion, Activo: p.Activo}, nil
}

func (s *catalogoService) ListarPuntosVenta(ctx context.Context) ([]dto.PuntoVentaResponse, error) {
	list, err := s.repos.PuntosVenta.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PuntoVentaResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, dto.PuntoVentaResponse{ID: p.ID.String(), Nombre: p.Nombre, Direccion: p.Direccion, Activo: p.Activo})
	}
	return resp, nil
}

// ── Productos ─────────────────────────────────────────────────────────────────

func (s *catalogoService) CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	categoria := req.Categoria
	if categoria == "" {
		categoria = "general"
	}
	p := &model.Producto{
		Codigo:      req.Codigo,
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Categoria:   categoria,
		Precio:      req.Precio.Round(2),
		Costo:       req.Costo.Round(2),
		Activo:      true,
	}
	if err := s.repos.Productos.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalido("Ya existe un producto con código %s", req.Codigo)
		}
		return nil, err
	}
	return productoToResponse(p), nil
}

// ObtenerProducto is cache-aside over Redis; cache errors only cost a DB read.
func (s *catalogoService) ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	cacheKey := "producto:" + id.String()
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.ProductoResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repos.Productos.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrNoEncontrado.Msgf("Producto no encontrado"))
	}
	resp := productoToResponse(p)

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(context.Background(), cacheKey, b, productoCacheTTL).Err()
		}
	}
	return resp, nil
}

func (s *catalogoService) ListarProductos(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	list, total, err := s.repos.Productos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	data := make([]dto.ProductoResponse, 0, len(list))
	for i := range list {
		data = append(data, *productoToResponse(&list[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// FijarStock overwrites the counter of one product at one store and records
// the difference as an "ajuste" stock movement.
func (s *catalogoService) FijarStock(ctx context.Context, usuarioID uuid.UUID, req dto.FijarStockRequest) (*dto.InventarioResponse, error) {
	productoID, err := parseID("producto_id", req.ProductoID)
	if err != nil {
		return nil, err
	}
	pvID, err := parseID("punto_venta_id", req.PuntoVentaID)
	if err != nil {
		return nil, err
	}

	var inv *model.Inventario
	txErr := runTx(ctx, s.repos.DB, func(tx *gorm.DB) error {
		if _, err := s.repos.Productos.FindByID(ctx, tx, productoID); err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Producto no encontrado"))
		}
		if _, err := s.repos.PuntosVenta.FindByID(ctx, tx, pvID); err != nil {
			return notFound(err, ErrPuntoVentaNoEncontrado)
		}
		inv, err = s.repos.Productos.FindInventario(ctx, tx, productoID, pvID, true)
		if err != nil {
			return err
		}
		if req.StockMinimo != nil {
			inv.StockMinimo = *req.StockMinimo
		}
		antes, err := s.repos.Productos.FijarStockTx(ctx, tx, inv, req.Stock)
		if err != nil {
			return err
		}
		if antes == req.Stock {
			return nil
		}
		motivo := req.Motivo
		if motivo == "" {
			motivo = "Ajuste manual de stock"
		}
		uid := usuarioID
		return s.repos.MovimientosStock.CreateTx(ctx, tx, &model.MovimientoStock{
			ProductoID:    productoID,
			PuntoVentaID:  pvID,
			Tipo:          StockAjuste,
			Cantidad:      req.Stock - antes,
			StockAnterior: antes,
			StockNuevo:    req.Stock,
			Motivo:        motivo,
			UsuarioID:     &uid,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("producto_id", productoID.String()).
		Str("punto_venta_id", pvID.String()).
		Int("stock", inv.Stock).
		Msg("stock fijado")

	return &dto.InventarioResponse{
		ProductoID:   inv.ProductoID.String(),
		PuntoVentaID: inv.PuntoVentaID.String(),
		Stock:        inv.Stock,
		StockMinimo:  inv.StockMinimo,
	}, nil
}

// ── Equipos ───────────────────────────────────────────────────────────────────

func (s *catalogoService) CrearEquipo(ctx context.Context, req dto.CrearEquipoRequest) (*dto.EquipoResponse, error) {
	pvID, err := parseID("punto_venta_id", req.PuntoVentaID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.PuntosVenta.FindByID(ctx, nil, pvID); err != nil {
		return nil, notFound(err, ErrPuntoVentaNoEncontrado)
	}
	existe, err := s.repos.Equipos.ExisteIMEI(ctx, nil, req.IMEI)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, ErrIMEIDuplicado.Msgf("Ya existe un equipo con IMEI %s", req.IMEI)
	}
	estado := req.Estado
	if estado == "" {
		estado = "nuevo"
	}
	e := &model.Equipo{
		Marca:         req.Marca,
		Modelo:        req.Modelo,
		IMEI:          req.IMEI,
		Capacidad:     req.Capacidad,
		Color:         req.Color,
		Bateria:       req.Bateria,
		Estado:        estado,
		Precio:        req.Precio.Round(2),
		Costo:         req.Costo.Round(2),
		PuntoVentaID:  pvID,
		Observaciones: req.Observaciones,
	}
	if err := s.repos.Equipos.Create(ctx, nil, e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrIMEIDuplicado.Msgf("Ya existe un equipo con IMEI %s", req.IMEI)
		}
		return nil, err
	}
	resp := equipoToResponse(e)
	return &resp, nil
}

func (s *catalogoService) ObtenerEquipo(ctx context.Context, id uuid.UUID) (*dto.EquipoResponse, error) {
	e, err := s.repos.Equipos.FindByID(ctx, nil, id, false)
	if err != nil {
		return nil, notFound(err, ErrNoEncontrado.Msgf("Equipo no encontrado"))
	}
	resp := equipoToResponse(e)
	return &resp, nil
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:       c.ID.String(),
		Nombre:   c.Nombre,
		Telefono: c.Telefono,
		DNI:      c.DNI,
		Email:    c.Email,
		Activo:   c.Activo,
	}
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:        p.ID.String(),
		Codigo:    p.Codigo,
		Nombre:    p.Nombre,
		Categoria: p.Categoria,
		Precio:    p.Precio,
		Costo:     p.Costo,
		Activo:    p.Activo,
	}
}

func equipoToResponse(e *model.Equipo) dto.EquipoResponse {
	if e == nil {
		return dto.EquipoResponse{}
	}
	return dto.EquipoResponse{
		ID:           e.ID.String(),
		Marca:        e.Marca,
		Modelo:       e.Modelo,
		IMEI:         e.IMEI,
		Capacidad:    e.Capacidad,
		Color:        e.Color,
		Bateria:      e.Bateria,
		Estado:       e.Estado,
		Precio:       e.Precio,
		PuntoVentaID: e.PuntoVentaID.String(),
		Vendido:      e.Vendido,
		EsCanje:      e.EsCanje,
		VentaCanjeID: idStr(e.VentaCanjeID),
	}
}
