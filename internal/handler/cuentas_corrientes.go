package handler

import (
	"net/http"

	"cellfie/internal/dto"
	"cellfie/internal/middleware"
	"cellfie/internal/service"

	"github.com/gin-gonic/gin"
)

type CuentasCorrientesHandler struct {
	svc service.CuentaCorrienteService
}

func NewCuentasCorrientesHandler(svc service.CuentaCorrienteService) *CuentasCorrientesHandler {
	return &CuentasCorrientesHandler{svc: svc}
}

// ObtenerPorCliente godoc
// @Summary      Cuenta corriente de un cliente
// @Description  Devuelve la cuenta con sus últimos 20 movimientos.
// @Tags         cuentas-corrientes
// @Produce      json
// @Security     BearerAuth
// @Param        cliente_id path     string true "UUID del cliente"
// @Success      200        {object} dto.CuentaCorrienteResponse
// @Failure      404        {object} apierror.APIError
// @Router       /api/cuentas-corrientes/cliente/{cliente_id} [get]
func (h *CuentasCorrientesHandler) ObtenerPorCliente(c *gin.Context) {
	clienteID, ok := paramID(c, "cliente_id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorCliente(c.Request.Context(), clienteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Abrir godoc
// @Summary      Abrir cuenta corriente
// @Tags         cuentas-corrientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.AbrirCuentaRequest true "Cuenta"
// @Success      201  {object} dto.CuentaCorrienteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/cuentas-corrientes [post]
func (h *CuentasCorrientesHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCuentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CuentasCorrientesHandler) ActualizarLimite(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarLimiteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarLimite(c.Request.Context(), id, req.LimiteCredito)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CuentasCorrientesHandler) CambiarEstado(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarEstadoCuentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), id, *req.Activo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarAbono godoc
// @Summary      Abono a cuenta corriente
// @Description  Registra un pago directo que reduce la deuda del cliente. No puede superar el saldo.
// @Tags         cuentas-corrientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.AbonoCuentaRequest true "Abono"
// @Success      201  {object} dto.MovimientoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /api/cuentas-corrientes/pago [post]
func (h *CuentasCorrientesHandler) RegistrarAbono(c *gin.Context) {
	var req dto.AbonoCuentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarAbono(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarCargo godoc
// @Summary      Cargo manual a cuenta corriente
// @Tags         cuentas-corrientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CargoCuentaRequest true "Cargo"
// @Success      201  {object} dto.MovimientoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/cuentas-corrientes/cargo [post]
func (h *CuentasCorrientesHandler) RegistrarCargo(c *gin.Context) {
	var req dto.CargoCuentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarCargo(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CuentasCorrientesHandler) ListarMovimientos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), id, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
