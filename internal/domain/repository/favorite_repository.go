package repository

import "github.com/autos-trefa/trefa-api/internal/domain/entity"

// FavoriteRepository favoritos y alertas de precio por usuario.
type FavoriteRepository interface {
	AddFavorite(f *entity.Favorite) error
	RemoveFavorite(userID, ordenCompra string) error
	IsFavorite(userID, ordenCompra string) (bool, error)
	ListFavorites(userID string) ([]*entity.Favorite, error)

	AddPriceWatch(w *entity.PriceWatch) error
	RemovePriceWatch(userID, ordenCompra string) error
	IsWatching(userID, ordenCompra string) (bool, error)
	ListPriceWatches(userID string) ([]*entity.PriceWatch, error)
}
