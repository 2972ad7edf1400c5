package service

import (
	"testing"

	"cellfie/internal/dto"
	"cellfie/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogo_ProductoYStock(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogoService(f.repos, nil)

	p, err := svc.CrearProducto(f.ctx, dto.CrearProductoRequest{Codigo: "FUN-IP15", Nombre: "Funda iPhone 15", Precio: dec("2500"), Costo: dec("900")})
	require.NoError(t, err)
	assert.Equal(t, "general", p.Categoria)

	_, err = svc.CrearProducto(f.ctx, dto.CrearProductoRequest{Codigo: "FUN-IP15", Nombre: "Otra", Precio: dec("1")})
	assert.ErrorIs(t, err, ErrDatoInvalido)

	minimo := 2
	inv, err := svc.FijarStock(f.ctx, f.usuario, dto.FijarStockRequest{ProductoID: p.ID, PuntoVentaID: f.pv.ID.String(), Stock: 12, StockMinimo: &minimo})
	require.NoError(t, err)
	assert.Equal(t, 12, inv.Stock)
	assert.Equal(t, 2, inv.StockMinimo)

	_, err = svc.FijarStock(f.ctx, f.usuario, dto.FijarStockRequest{ProductoID: p.ID, PuntoVentaID: f.pv.ID.String(), Stock: 10})
	require.NoError(t, err)

	var movs []model.MovimientoStock
	require.NoError(t, f.db.Order("created_at ASC").Find(&movs).Error)
	require.Len(t, movs, 2)
	assert.Equal(t, 12, movs[0].Cantidad)
	assert.Equal(t, -2, movs[1].Cantidad)
	assert.Equal(t, StockAjuste, movs[1].Tipo)

	got, err := svc.ObtenerProducto(f.ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.Equal(t, "Funda iPhone 15", got.Nombre)
}

func TestCatalogo_EquipoIMEIUnico(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogoService(f.repos, nil)
	req := dto.CrearEquipoRequest{Marca: "Xiaomi", Modelo: "Redmi Note 13", IMEI: "861234567890123", Precio: dec("320000"), PuntoVentaID: f.pv.ID.String()}

	e, err := svc.CrearEquipo(f.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "nuevo", e.Estado)
	assert.False(t, e.Vendido)

	_, err = svc.CrearEquipo(f.ctx, req)
	assert.ErrorIs(t, err, ErrIMEIDuplicado)
}
