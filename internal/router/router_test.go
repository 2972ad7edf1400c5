package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cellfie/internal/config"
	"cellfie/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	engine   *gin.Engine
	db       *gorm.DB
	pv       *model.PuntoVenta
	cliente  *model.Cliente
	producto *model.Producto
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	env := &testEnv{db: db}
	env.pv = &model.PuntoVenta{Nombre: "Local Centro"}
	require.NoError(t, db.Create(env.pv).Error)
	env.cliente = &model.Cliente{Nombre: "Martín Gómez"}
	require.NoError(t, db.Create(env.cliente).Error)
	env.producto = &model.Producto{Codigo: "VID-A54", Nombre: "Vidrio templado A54", Categoria: "accesorios",
		Precio: decimal.NewFromInt(3000), Costo: decimal.NewFromInt(1000)}
	require.NoError(t, db.Create(env.producto).Error)
	require.NoError(t, db.Create(&model.Inventario{ProductoID: env.producto.ID, PuntoVentaID: env.pv.ID, Stock: 10}).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("cellfie2026"), bcrypt.MinCost)
	require.NoError(t, err)
	for username, rol := range map[string]string{"vendedor": "vendedor", "supervisor": "supervisor"} {
		require.NoError(t, db.Create(&model.Usuario{Username: username, Nombre: username, PasswordHash: string(hash), Rol: rol}).Error)
	}

	cfg := &config.Config{Env: "test", JWTSecret: "test-secret-key", JWTExpirationHours: 8, JWTRefreshHours: 24}
	env.engine = New(cfg, db, nil, nil)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": "cellfie2026"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func (e *testEnv) venta(monto float64, tipoPago string) map[string]any {
	return map[string]any{
		"punto_venta_id": e.pv.ID.String(),
		"cliente_id":     e.cliente.ID.String(),
		"productos":      []map[string]any{{"producto_id": e.producto.ID.String(), "cantidad": 2}},
		"pagos":          []map[string]any{{"tipo_pago": tipoPago, "monto": monto}},
	}
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	decodeBody(t, w, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "vendedor", "password": "incorrecta"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVentas_SinToken(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/ventas", env.venta(6000, "Efectivo"), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVentas_CicloCompleto(t *testing.T) {
	env := setupTestEnv(t)
	vendedor := env.login(t, "vendedor")
	supervisor := env.login(t, "supervisor")

	w := env.do(t, http.MethodPost, "/api/ventas", env.venta(6000, "Efectivo"), vendedor)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var creada struct {
		ID            string `json:"id"`
		NumeroFactura string `json:"numero_factura"`
	}
	decodeBody(t, w, &creada)
	assert.Regexp(t, `^F\d{6}-\d{4}$`, creada.NumeroFactura)

	w = env.do(t, http.MethodGet, "/api/pagos?referencia_id="+creada.ID+"&tipo_referencia=venta", nil, vendedor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pagos []map[string]any
	decodeBody(t, w, &pagos)
	assert.Len(t, pagos, 1)

	anular := map[string]string{"motivo": "error de carga"}
	w = env.do(t, http.MethodPut, "/api/ventas/"+creada.ID+"/anular", anular, vendedor)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, "/api/ventas/"+creada.ID+"/anular", anular, supervisor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var inv model.Inventario
	require.NoError(t, env.db.First(&inv, "producto_id = ?", env.producto.ID).Error)
	assert.Equal(t, 10, inv.Stock)

	w = env.do(t, http.MethodPut, "/api/ventas/"+creada.ID+"/anular", anular, supervisor)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVentas_Errores(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, "vendedor")

	t.Run("pagos que no cubren el total", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/ventas", env.venta(5000, "Efectivo"), token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]any
		decodeBody(t, w, &body)
		assert.NotEmpty(t, body["message"])
	})

	t.Run("validacion de campos", func(t *testing.T) {
		req := env.venta(6000, "Efectivo")
		delete(req, "productos")
		w := env.do(t, http.MethodPost, "/api/ventas", req, token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		var body struct {
			Errors []struct {
				Campo string `json:"campo"`
			} `json:"errors"`
		}
		decodeBody(t, w, &body)
		require.NotEmpty(t, body.Errors)
		assert.Equal(t, "productos", body.Errors[0].Campo)
	})

	t.Run("venta inexistente", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/ventas/"+uuid.NewString(), nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("id mal formado", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/ventas/no-es-uuid", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCuentaCorriente_VentaYAbono(t *testing.T) {
	env := setupTestEnv(t)
	vendedor := env.login(t, "vendedor")

	w := env.do(t, http.MethodPost, "/api/ventas", env.venta(6000, "Cuenta Corriente"), vendedor)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/cuentas-corrientes/cliente/"+env.cliente.ID.String(), nil, vendedor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cuenta struct {
		ID    string          `json:"id"`
		Saldo decimal.Decimal `json:"saldo"`
	}
	decodeBody(t, w, &cuenta)
	assert.True(t, decimal.NewFromInt(6000).Equal(cuenta.Saldo))

	w = env.do(t, http.MethodPost, "/api/cuentas-corrientes/pago", map[string]any{
		"cliente_id":     env.cliente.ID.String(),
		"monto":          2500,
		"tipo_pago":      "Efectivo",
		"punto_venta_id": env.pv.ID.String(),
	}, vendedor)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/cuentas-corrientes/"+cuenta.ID+"/movimientos?page=1&limit=10", nil, vendedor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Total int64 `json:"total"`
	}
	decodeBody(t, w, &page)
	assert.EqualValues(t, 2, page.Total)
}
