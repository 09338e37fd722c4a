package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/verification"
)

// VerificationHandler maneja la verificación telefónica por SMS.
type VerificationHandler struct {
	uc *verification.UseCase
}

// NewVerificationHandler construye el handler.
func NewVerificationHandler(uc *verification.UseCase) *VerificationHandler {
	return &VerificationHandler{uc: uc}
}

// SendOTP godoc
// @Summary      Enviar código de verificación por SMS
// @Tags         verification
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SendOTPRequest  true  "Teléfono a verificar"
// @Success      200   {object}  dto.OTPResponse
// @Router       /api/verification/send [post]
func (h *VerificationHandler) SendOTP(c *fiber.Ctx) error {
	var in dto.SendOTPRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.SendOTP(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// VerifyOTP godoc
// @Summary      Confirmar código de verificación
// @Tags         verification
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.VerifyOTPRequest  true  "Teléfono y código"
// @Success      200   {object}  dto.OTPResponse
// @Router       /api/verification/check [post]
func (h *VerificationHandler) VerifyOTP(c *fiber.Ctx) error {
	var in dto.VerifyOTPRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.VerifyOTP(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
