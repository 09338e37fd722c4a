package repository

import "github.com/autos-trefa/trefa-api/internal/domain/entity"

// ConsignmentRepository puerto de persistencia para listados de consignación,
// sus imágenes y contadores.
type ConsignmentRepository interface {
	Create(l *entity.ConsignmentListing) error
	GetByID(id string) (*entity.ConsignmentListing, error)
	Update(l *entity.ConsignmentListing) error
	Delete(id string) error
	ListByUser(userID string) ([]*entity.ConsignmentListing, error)
	ListByStatus(status string, limit, offset int) ([]*entity.ConsignmentListing, int, error)
	IncrementViews(id string) error
	IncrementContacts(id string) error
	StatsByUser(userID string) (*entity.ConsignmentStats, error)
	StatsGlobal() (*entity.ConsignmentStats, error)

	AddImage(img *entity.ListingImage) error
	ListImages(listingID string) ([]*entity.ListingImage, error)
	GetImage(imageID string) (*entity.ListingImage, error)
	DeleteImage(imageID string) error
	// ClearPrimary y SetPrimary implementan el unset-then-set que preserva la
	// invariante de una sola imagen primaria por listado.
	ClearPrimary(listingID string) error
	SetPrimary(imageID string) error
}
