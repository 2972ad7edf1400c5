package handler

import (
	"net/http"

	"cellfie/internal/dto"
	"cellfie/internal/middleware"
	"cellfie/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasEquiposHandler struct{ svc service.VentaEquipoService }

func NewVentasEquiposHandler(svc service.VentaEquipoService) *VentasEquiposHandler {
	return &VentasEquiposHandler{svc: svc}
}

// Registrar godoc
// @Summary      Registrar venta de equipo
// @Description  Vende un equipo. Con plan canje el equipo entregado ingresa al stock y el cliente paga la diferencia.
// @Tags         ventas-equipos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaEquipoRequest true "Venta de equipo"
// @Success      201  {object} dto.VentaCreadaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /api/ventas-equipos [post]
func (h *VentasEquiposHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaEquipoRequest
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
// @Summary      Anular venta de equipo
// @Tags         ventas-equipos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string            true "UUID de la venta"
// @Param        body body     dto.AnularRequest true "Motivo"
// @Success      200  {object} dto.AnulacionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/ventas-equipos/{id}/anular [put]
func (h *VentasEquiposHandler) Anular(c *gin.Context) {
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
	c.JSON(http.StatusOK, dto.AnulacionResponse{Message: "Venta de equipo anulada", ID: id.String()})
}

func (h *VentasEquiposHandler) Obtener(c *gin.Context) {
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
