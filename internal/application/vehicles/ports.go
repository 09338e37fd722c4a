package vehicles

import (
	"context"
	"time"

	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// CachedPage es una página del catálogo guardada en el caché de borde. La
// frescura se decide aquí (StoredAt + TTL), no con la expiración de Redis:
// las entradas viejas se conservan para servirlas como último recurso cuando
// todas las fuentes vivas fallan.
type CachedPage struct {
	Vehicles []*entity.Vehicle `json:"vehicles"`
	Total    int               `json:"total"`
	StoredAt time.Time         `json:"stored_at"`
}

// EdgeCache puerto del tier 1: caché rápido de vehículos y páginas.
// Toda operación debe respetar el context (el lookup le impone 5 s).
type EdgeCache interface {
	GetVehicle(ctx context.Context, slug string) (*entity.Vehicle, error)
	SetVehicle(ctx context.Context, v *entity.Vehicle) error
	GetPage(ctx context.Context, key string) (*CachedPage, error)
	SetPage(ctx context.Context, key string, page *CachedPage) error
	// InvalidatePages borra todas las páginas cacheadas (tras un sync).
	InvalidatePages(ctx context.Context) error
}

// InventorySource puerto del tier 3: la fuente de verdad externa (Airtable).
type InventorySource interface {
	GetBySlug(ctx context.Context, slug string) (*entity.Vehicle, error)
	GetByOrdenCompra(ctx context.Context, ordenCompra string) (*entity.Vehicle, error)
	GetByRecordID(ctx context.Context, recordID string) (*entity.Vehicle, error)
}
