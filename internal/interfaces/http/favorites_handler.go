package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autos-trefa/trefa-api/internal/application/favorites"
)

// FavoritesHandler maneja favoritos y alertas de precio del usuario.
type FavoritesHandler struct {
	uc *favorites.UseCase
}

// NewFavoritesHandler construye el handler.
func NewFavoritesHandler(uc *favorites.UseCase) *FavoritesHandler {
	return &FavoritesHandler{uc: uc}
}

// ToggleFavorite godoc
// @Summary      Marcar o desmarcar un vehículo como favorito
// @Tags         favorites
// @Security     Bearer
// @Produce      json
// @Param        ordencompra  path  string  true  "Orden de compra"
// @Success      200  {object}  dto.ToggleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/favoritos/{ordencompra} [post]
func (h *FavoritesHandler) ToggleFavorite(c *fiber.Ctx) error {
	out, err := h.uc.ToggleFavorite(GetUserID(c), c.Params("ordencompra"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListFavorites godoc
// @Summary      Listar favoritos con el vehículo resuelto
// @Tags         favorites
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.FavoriteResponse
// @Router       /api/favoritos [get]
func (h *FavoritesHandler) ListFavorites(c *fiber.Ctx) error {
	out, err := h.uc.ListFavorites(GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TogglePriceWatch godoc
// @Summary      Suscribir o cancelar alerta de precio
// @Tags         favorites
// @Security     Bearer
// @Produce      json
// @Param        ordencompra  path  string  true  "Orden de compra"
// @Success      200  {object}  dto.ToggleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alertas-precio/{ordencompra} [post]
func (h *FavoritesHandler) TogglePriceWatch(c *fiber.Ctx) error {
	out, err := h.uc.TogglePriceWatch(GetUserID(c), c.Params("ordencompra"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListPriceWatches godoc
// @Summary      Listar alertas de precio con el precio actual
// @Tags         favorites
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PriceWatchResponse
// @Router       /api/alertas-precio [get]
func (h *FavoritesHandler) ListPriceWatches(c *fiber.Ctx) error {
	out, err := h.uc.ListPriceWatches(GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
