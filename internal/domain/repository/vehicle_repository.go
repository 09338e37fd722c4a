package repository

import "github.com/autos-trefa/trefa-api/internal/domain/entity"

// VehicleRepository puerto de persistencia para inventario_cache (tier 2 del
// lookup escalonado; la fuente de verdad es Airtable).
type VehicleRepository interface {
	GetBySlug(slug string) (*entity.Vehicle, error)
	// GetBySlugFuzzy busca por prefijo/sufijo ILIKE restringido a vehículos
	// Comprado; cubre slugs con sufijo de desambiguación (mazda-3-2024-2).
	GetBySlugFuzzy(slug string) (*entity.Vehicle, error)
	GetByOrdenCompra(ordenCompra string) (*entity.Vehicle, error)
	GetByRecordID(recordID string) (*entity.Vehicle, error)
	List(filters entity.VehicleFilters, limit, offset int) ([]*entity.Vehicle, int, error)
	ListSlugs() ([]string, error)
	// ListSlugsLike devuelve slugs iguales al base o con sufijo "base-%",
	// excluyendo opcionalmente una ordencompra (generación de slug único).
	ListSlugsLike(base, excludeOrdenCompra string) ([]string, error)
	FilterOptions() (*entity.FilterOptions, error)
	// UpdateEditable persiste únicamente los campos del allow-list del panel
	// admin; los identificadores (marca/modelo/año/precio) no se tocan.
	UpdateEditable(v *entity.Vehicle) error
	UpdateImages(v *entity.Vehicle) error
	IncrementViewCount(ordenCompra string) error
	// Upsert por record_id, usado por el worker de sincronización.
	Upsert(v *entity.Vehicle) error
	MarkMissing(presentRecordIDs []string) (int, error)
	ListMissingPhotos(limit int) ([]*entity.Vehicle, error)
}
