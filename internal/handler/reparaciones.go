package handler

import (
	"net/http"

	"cellfie/internal/dto"
	"cellfie/internal/middleware"
	"cellfie/internal/service"

	"github.com/gin-gonic/gin"
)

type ReparacionesHandler struct{ svc service.ReparacionService }

func NewReparacionesHandler(svc service.ReparacionService) *ReparacionesHandler {
	return &ReparacionesHandler{svc: svc}
}

func (h *ReparacionesHandler) Crear(c *gin.Context) {
	var req dto.CrearReparacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReparacionesHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarPago godoc
// @Summary      Pago de reparación
// @Description  El monto no puede superar el saldo pendiente. En cuenta corriente se registra primero el cargo.
// @Tags         reparaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                    true "UUID de la reparación"
// @Param        body body     dto.PagoReparacionRequest true "Pago"
// @Success      201  {object} dto.PagoReparacionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /api/reparaciones/{id}/pagos [post]
func (h *ReparacionesHandler) RegistrarPago(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.PagoReparacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPago(c.Request.Context(), middleware.UsuarioID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cancelar godoc
// @Summary      Cancelar reparación
// @Description  Revierte los pagos cargados en cuenta corriente.
// @Tags         reparaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string            true "UUID de la reparación"
// @Param        body body     dto.AnularRequest true "Motivo"
// @Success      200  {object} dto.AnulacionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/reparaciones/{id}/cancelar [put]
func (h *ReparacionesHandler) Cancelar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AnularRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), middleware.UsuarioID(c), id, req.Motivo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AnulacionResponse{Message: "Reparación cancelada", ID: id.String()})
}
