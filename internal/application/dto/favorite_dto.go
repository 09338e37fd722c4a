package dto

import "time"

// FavoriteResponse favorito con el vehículo resuelto cuando sigue publicado.
type FavoriteResponse struct {
	OrdenCompra string           `json:"ordencompra"`
	CreatedAt   time.Time        `json:"created_at"`
	Vehicle     *VehicleResponse `json:"vehicle,omitempty"`
	Available   bool             `json:"available"`
}

// PriceWatchResponse alerta de precio con el delta contra el precio actual.
type PriceWatchResponse struct {
	OrdenCompra   string           `json:"ordencompra"`
	LastSeenPrice string           `json:"last_seen_price"`
	CurrentPrice  string           `json:"current_price,omitempty"`
	PriceDropped  bool             `json:"price_dropped"`
	Vehicle       *VehicleResponse `json:"vehicle,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ToggleResponse resultado de marcar/desmarcar favorito o alerta.
type ToggleResponse struct {
	OrdenCompra string `json:"ordencompra"`
	Active      bool   `json:"active"`
}
