package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/valuation"
	"github.com/autos-trefa/trefa-api/internal/domain"
)

// ValuationHandler maneja la valuación de vehículos para consignación.
type ValuationHandler struct {
	uc *valuation.UseCase
}

// NewValuationHandler construye el handler.
func NewValuationHandler(uc *valuation.UseCase) *ValuationHandler {
	return &ValuationHandler{uc: uc}
}

// Brands godoc
// @Summary      Catálogo de marcas
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  string
// @Router       /api/valuacion/marcas [get]
func (h *ValuationHandler) Brands(c *fiber.Ctx) error {
	out, err := h.uc.Brands(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Models godoc
// @Summary      Modelos de una marca
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Param        marca  query  string  true  "Marca"
// @Success      200  {array}  string
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/valuacion/modelos [get]
func (h *ValuationHandler) Models(c *fiber.Ctx) error {
	out, err := h.uc.Models(c.Context(), c.Query("marca"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Years godoc
// @Summary      Años disponibles de un modelo
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Param        marca   query  string  true  "Marca"
// @Param        modelo  query  string  true  "Modelo"
// @Success      200  {array}  int
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/valuacion/anios [get]
func (h *ValuationHandler) Years(c *fiber.Ctx) error {
	out, err := h.uc.Years(c.Context(), c.Query("marca"), c.Query("modelo"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Quote godoc
// @Summary      Cotizar un vehículo
// @Description  Con teléfono verificado devuelve las bandas de mercado completas; sin verificar, un teaser con la oferta redondeada a miles.
// @Tags         valuation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  dto.ValuationRequest  true  "Vehículo a valuar"
// @Success      200  {object}  dto.ValuationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/valuacion/cotizar [post]
func (h *ValuationHandler) Quote(c *fiber.Ctx) error {
	var req dto.ValuationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.GetQuote(c.Context(), GetUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte PDF de la cotización
// @Description  Requiere teléfono verificado.
// @Tags         valuation
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Param        request  body  dto.ValuationRequest  true  "Vehículo a valuar"
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/valuacion/reporte [post]
func (h *ValuationHandler) Report(c *fiber.Ctx) error {
	var req dto.ValuationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	pdf, err := h.uc.GetReport(c.Context(), GetUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="cotizacion.pdf"`)
	return c.Send(pdf)
}
