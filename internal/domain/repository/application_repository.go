package repository

import "github.com/autos-trefa/trefa-api/internal/domain/entity"

// ApplicationRepository puerto de persistencia para solicitudes de
// financiamiento y sus documentos.
type ApplicationRepository interface {
	Create(a *entity.Application) error
	GetByID(id string) (*entity.Application, error)
	Update(a *entity.Application) error
	ListByUser(userID string, limit, offset int) ([]*entity.Application, error)
	ListByStatus(status string, limit, offset int) ([]*entity.Application, int, error)
	AddDocument(d *entity.Document) error
	ListDocuments(applicationID string) ([]*entity.Document, error)
}
