package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autos-trefa/trefa-api/internal/application/sync"
)

// AdminHandler expone operaciones administrativas del inventario.
type AdminHandler struct {
	sync *sync.UseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(syncUC *sync.UseCase) *AdminHandler {
	return &AdminHandler{sync: syncUC}
}

// RunSync godoc
// @Summary      Sincronizar el inventario desde la fuente externa
// @Description  Ejecuta un ciclo completo de sincronización y devuelve el resumen.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  sync.Result
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/admin/sync [post]
func (h *AdminHandler) RunSync(c *fiber.Ctx) error {
	result, err := h.sync.Run(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
