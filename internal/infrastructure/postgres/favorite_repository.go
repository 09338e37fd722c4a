package postgres

import (
	"context"
	"fmt"

	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

var _ repository.FavoriteRepository = (*FavoriteRepo)(nil)

// FavoriteRepo implementación del puerto FavoriteRepository sobre PostgreSQL.
type FavoriteRepo struct {
	q Querier
}

// NewFavoriteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFavoriteRepository(q Querier) *FavoriteRepo {
	return &FavoriteRepo{q: q}
}

// AddFavorite marca un favorito; repetirlo devuelve ErrDuplicate.
func (r *FavoriteRepo) AddFavorite(f *entity.Favorite) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO favorites (user_id, ordencompra, created_at) VALUES ($1, $2, $3)`,
		f.UserID, f.OrdenCompra, f.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// RemoveFavorite desmarca el favorito; quitar uno inexistente no es error.
func (r *FavoriteRepo) RemoveFavorite(userID, ordenCompra string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM favorites WHERE user_id = $1 AND ordencompra = $2`,
		userID, ordenCompra,
	)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// IsFavorite indica si el vehículo está marcado por el usuario.
func (r *FavoriteRepo) IsFavorite(userID, ordenCompra string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND ordencompra = $2)`,
		userID, ordenCompra,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

// ListFavorites favoritos del usuario, más recientes primero.
func (r *FavoriteRepo) ListFavorites(userID string) ([]*entity.Favorite, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT user_id, ordencompra, created_at FROM favorites
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var out []*entity.Favorite
	for rows.Next() {
		var f entity.Favorite
		if err := rows.Scan(&f.UserID, &f.OrdenCompra, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// AddPriceWatch suscribe la alerta; repetirla devuelve ErrDuplicate.
func (r *FavoriteRepo) AddPriceWatch(w *entity.PriceWatch) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO price_watches (user_id, ordencompra, last_seen_price, created_at)
		 VALUES ($1, $2, $3, $4)`,
		w.UserID, w.OrdenCompra, w.LastSeenPrice, w.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert price watch: %w", err)
	}
	return nil
}

// RemovePriceWatch cancela la alerta.
func (r *FavoriteRepo) RemovePriceWatch(userID, ordenCompra string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM price_watches WHERE user_id = $1 AND ordencompra = $2`,
		userID, ordenCompra,
	)
	if err != nil {
		return fmt.Errorf("delete price watch: %w", err)
	}
	return nil
}

// IsWatching indica si el usuario tiene alerta sobre el vehículo.
func (r *FavoriteRepo) IsWatching(userID, ordenCompra string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM price_watches WHERE user_id = $1 AND ordencompra = $2)`,
		userID, ordenCompra,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check price watch: %w", err)
	}
	return exists, nil
}

// ListPriceWatches alertas del usuario, más recientes primero.
func (r *FavoriteRepo) ListPriceWatches(userID string) ([]*entity.PriceWatch, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT user_id, ordencompra, last_seen_price, created_at FROM price_watches
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list price watches: %w", err)
	}
	defer rows.Close()

	var out []*entity.PriceWatch
	for rows.Next() {
		var w entity.PriceWatch
		if err := rows.Scan(&w.UserID, &w.OrdenCompra, &w.LastSeenPrice, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}
