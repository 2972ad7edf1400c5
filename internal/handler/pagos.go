package handler

import (
	"net/http"

	"cellfie/internal/dto"
	"cellfie/internal/middleware"
	"cellfie/internal/service"

	"github.com/gin-gonic/gin"
)

type PagosHandler struct{ svc service.PagoService }

func NewPagosHandler(svc service.PagoService) *PagosHandler { return &PagosHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar pago
// @Description  Registra un pago contra una venta, venta de equipo, devolución, reparación o cuenta corriente. En cuenta corriente exige una cuenta activa.
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarPagoRequest true "Pago"
// @Success      201  {object} dto.PagoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /api/pagos [post]
func (h *PagosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarPagoRequest
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
// @Summary      Anular pago
// @Description  Marca el pago como anulado y revierte su movimiento de cuenta corriente sobre el saldo actual.
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string            true "UUID del pago"
// @Param        body body     dto.AnularRequest true "Motivo"
// @Success      200  {object} dto.AnulacionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /api/pagos/{id}/anular [put]
func (h *PagosHandler) Anular(c *gin.Context) {
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
	c.JSON(http.StatusOK, dto.AnulacionResponse{Message: "Pago anulado", ID: id.String()})
}

// Listar godoc
// @Summary      Pagos de una referencia
// @Tags         pagos
// @Produce      json
// @Security     BearerAuth
// @Param        referencia_id   query string true "UUID de la referencia"
// @Param        tipo_referencia query string true "venta | venta_equipo | devolucion | reparacion | cuenta_corriente"
// @Success      200 {array}  dto.PagoResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/pagos [get]
func (h *PagosHandler) Listar(c *gin.Context) {
	var filter dto.PagoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarPorReferencia(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
