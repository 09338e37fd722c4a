package favorites

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

// UseCase de favoritos y alertas de precio. Ambos son toggles idempotentes
// sobre la ordencompra del vehículo.
type UseCase struct {
	favorites repository.FavoriteRepository
	vehicles  repository.VehicleRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(favorites repository.FavoriteRepository, vehicleRepo repository.VehicleRepository) *UseCase {
	return &UseCase{favorites: favorites, vehicles: vehicleRepo}
}

// ToggleFavorite marca o desmarca un favorito y devuelve el estado final.
func (uc *UseCase) ToggleFavorite(userID, ordenCompra string) (*dto.ToggleResponse, error) {
	v, err := uc.vehicles.GetByOrdenCompra(ordenCompra)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	active, err := uc.favorites.IsFavorite(userID, ordenCompra)
	if err != nil {
		return nil, err
	}
	if active {
		if err := uc.favorites.RemoveFavorite(userID, ordenCompra); err != nil {
			return nil, err
		}
	} else {
		err := uc.favorites.AddFavorite(&entity.Favorite{
			UserID:      userID,
			OrdenCompra: ordenCompra,
			CreatedAt:   time.Now(),
		})
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
	}
	return &dto.ToggleResponse{OrdenCompra: ordenCompra, Active: !active}, nil
}

// ListFavorites favoritos del usuario con el vehículo resuelto. Un favorito
// cuyo vehículo salió del inventario se conserva pero se marca no disponible.
func (uc *UseCase) ListFavorites(userID string) ([]dto.FavoriteResponse, error) {
	list, err := uc.favorites.ListFavorites(userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FavoriteResponse, 0, len(list))
	for _, f := range list {
		item := dto.FavoriteResponse{OrdenCompra: f.OrdenCompra, CreatedAt: f.CreatedAt}
		v, err := uc.vehicles.GetByOrdenCompra(f.OrdenCompra)
		if err != nil {
			return nil, err
		}
		if v != nil && v.OrdenStatus == entity.OrdenStatusComprado && !v.Vendido {
			item.Vehicle = vehicles.ToResponse(v)
			item.Available = true
		}
		out = append(out, item)
	}
	return out, nil
}

// TogglePriceWatch suscribe o cancela la alerta de precio. Al suscribir se
// guarda el precio vigente como referencia para detectar bajadas.
func (uc *UseCase) TogglePriceWatch(userID, ordenCompra string) (*dto.ToggleResponse, error) {
	v, err := uc.vehicles.GetByOrdenCompra(ordenCompra)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	active, err := uc.favorites.IsWatching(userID, ordenCompra)
	if err != nil {
		return nil, err
	}
	if active {
		if err := uc.favorites.RemovePriceWatch(userID, ordenCompra); err != nil {
			return nil, err
		}
	} else {
		err := uc.favorites.AddPriceWatch(&entity.PriceWatch{
			UserID:        userID,
			OrdenCompra:   ordenCompra,
			LastSeenPrice: v.Precio.String(),
			CreatedAt:     time.Now(),
		})
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
	}
	return &dto.ToggleResponse{OrdenCompra: ordenCompra, Active: !active}, nil
}

// ListPriceWatches alertas del usuario con el precio actual y si bajó.
func (uc *UseCase) ListPriceWatches(userID string) ([]dto.PriceWatchResponse, error) {
	list, err := uc.favorites.ListPriceWatches(userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceWatchResponse, 0, len(list))
	for _, w := range list {
		item := dto.PriceWatchResponse{
			OrdenCompra:   w.OrdenCompra,
			LastSeenPrice: w.LastSeenPrice,
			CreatedAt:     w.CreatedAt,
		}
		v, err := uc.vehicles.GetByOrdenCompra(w.OrdenCompra)
		if err != nil {
			return nil, err
		}
		if v != nil {
			item.CurrentPrice = v.Precio.String()
			item.Vehicle = vehicles.ToResponse(v)
			if last, err := decimal.NewFromString(w.LastSeenPrice); err == nil {
				item.PriceDropped = v.Precio.LessThan(last)
			}
		}
		out = append(out, item)
	}
	return out, nil
}
