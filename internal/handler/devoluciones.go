package handler

import (
	"net/http"

	"cellfie/internal/dto"
	"cellfie/internal/middleware"
	"cellfie/internal/service"

	"github.com/gin-gonic/gin"
)

type DevolucionesHandler struct{ svc service.DevolucionService }

func NewDevolucionesHandler(svc service.DevolucionService) *DevolucionesHandler {
	return &DevolucionesHandler{svc: svc}
}

// Registrar godoc
// @Summary      Registrar devolución
// @Description  Devuelve líneas de una venta, opcionalmente con reemplazos, y liquida la diferencia.
// @Tags         devoluciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarDevolucionRequest true "Devolución"
// @Success      201  {object} dto.DevolucionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /api/devoluciones [post]
func (h *DevolucionesHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarDevolucionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Anular godoc
// @Summary      Anular devolución
// @Tags         devoluciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string            true "UUID de la devolución"
// @Param        body body     dto.AnularRequest true "Motivo"
// @Success      200  {object} dto.AnulacionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/devoluciones/{id}/anular [put]
func (h *DevolucionesHandler) Anular(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AnularRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Anular(c.Request.Context(), middleware.UsuarioID(c), id, req.Motivo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AnulacionResponse{Message: "Devolución anulada", ID: id.String()})
}

func (h *DevolucionesHandler) Obtener(c *gin.Context) {
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
