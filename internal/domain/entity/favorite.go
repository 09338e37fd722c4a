package entity

import "time"

// Favorite marca un vehículo como favorito de un usuario.
type Favorite struct {
	UserID      string
	OrdenCompra string
	CreatedAt   time.Time
}

// PriceWatch suscribe a un usuario a cambios de precio de un vehículo.
// LastSeenPrice guarda el precio vigente al momento de suscribirse; el worker
// de sync compara contra él para detectar bajadas.
type PriceWatch struct {
	UserID        string
	OrdenCompra   string
	LastSeenPrice string // serializado como texto para no perder precisión
	CreatedAt     time.Time
}
