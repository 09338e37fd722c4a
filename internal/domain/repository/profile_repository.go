package repository

import "github.com/autos-trefa/trefa-api/internal/domain/entity"

// ProfileRepository puerto de persistencia para perfiles.
type ProfileRepository interface {
	Create(p *entity.Profile) error
	GetByID(id string) (*entity.Profile, error)
	GetByEmail(email string) (*entity.Profile, error)
	// GetByPhoneVerified busca un perfil con ese teléfono ya verificado,
	// excluyendo al usuario indicado (chequeo de unicidad del OTP).
	GetByPhoneVerified(phone, excludeUserID string) (*entity.Profile, error)
	Update(p *entity.Profile) error
	// Upsert inserta o actualiza por ID (camino de respaldo del get-or-create).
	Upsert(p *entity.Profile) error
	SetPhoneVerified(userID, phone string) error
	SetRole(userID, role string) error
	List(role string, limit, offset int) ([]*entity.Profile, int, error)
	// NextAdvisor devuelve el perfil de ventas con asignación más antigua y
	// actualiza su last_assigned_at en la misma operación (round-robin).
	NextAdvisor() (*entity.Profile, error)
	AssignAdvisor(userID, advisorID string) error
}
