package service

import (
	"testing"

	"cellfie/internal/config"
	"cellfie/internal/dto"
	"cellfie/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*fixture, AuthService) {
	t.Helper()
	f := newFixture(t)
	hash, err := HashPassword("mostrador123")
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&model.Usuario{
		Username:     "vendedor1",
		Nombre:       "Vendedor Uno",
		PasswordHash: hash,
		Rol:          "vendedor",
		PuntoVentaID: &f.pv.ID,
	}).Error)

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8, JWTRefreshHours: 24}
	return f, NewAuthService(f.repos.Usuarios, cfg)
}

func TestLogin(t *testing.T) {
	f, svc := newAuthFixture(t)

	resp, err := svc.Login(f.ctx, dto.LoginRequest{Username: "vendedor1", Password: "mostrador123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "vendedor", resp.User.Rol)
	require.NotNil(t, resp.User.PuntoVentaID)
	assert.Equal(t, f.pv.ID.String(), *resp.User.PuntoVentaID)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID, claims["user_id"])
	assert.Equal(t, "vendedor", claims["rol"])
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	f, svc := newAuthFixture(t)

	_, err := svc.Login(f.ctx, dto.LoginRequest{Username: "vendedor1", Password: "otra"})
	assert.ErrorIs(t, err, ErrCredenciales)
	_, err = svc.Login(f.ctx, dto.LoginRequest{Username: "nadie", Password: "mostrador123"})
	assert.ErrorIs(t, err, ErrCredenciales)

	require.NoError(t, f.db.Model(&model.Usuario{}).Where("username = ?", "vendedor1").Update("activo", false).Error)
	_, err = svc.Login(f.ctx, dto.LoginRequest{Username: "vendedor1", Password: "mostrador123"})
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestRefresh(t *testing.T) {
	f, svc := newAuthFixture(t)

	resp, err := svc.Login(f.ctx, dto.LoginRequest{Username: "vendedor1", Password: "mostrador123"})
	require.NoError(t, err)

	nuevo, err := svc.Refresh(f.ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, nuevo.User.ID)

	_, err = svc.Refresh(f.ctx, "no-es-un-token")
	assert.ErrorIs(t, err, ErrCredenciales)
}
