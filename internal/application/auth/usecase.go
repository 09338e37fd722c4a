package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
	"github.com/autos-trefa/trefa-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase autenticación y reconciliación de perfiles: registro, login,
// get-or-create con upsert de respaldo, validación de rol contra la lista
// blanca y asignación round-robin de asesor de ventas.
type UseCase struct {
	profiles repository.ProfileRepository
	jwtCfg   JWTConfig
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(profiles repository.ProfileRepository, jwtCfg JWTConfig) *UseCase {
	return &UseCase{profiles: profiles, jwtCfg: jwtCfg}
}

// Register crea un perfil: hashea password con bcrypt y persiste con rol user.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *UseCase) Register(in dto.RegisterRequest) (*dto.LoginResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.profiles.GetByEmail(in.Email)
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	p := &entity.Profile{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         entity.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.profiles.Create(p); err != nil {
		return nil, err
	}
	return uc.loginResponse(p)
}

// Login verifica email/password, genera JWT y retorna token + perfil.
func (uc *UseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	p, err := uc.profiles.GetByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !entity.ValidRole(p.Role) {
		// Rol fuera de la lista blanca: el perfil no se confía.
		return nil, domain.ErrInvalidRole
	}
	return uc.loginResponse(p)
}

func (uc *UseCase) loginResponse(p *entity.Profile) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, p.ID, p.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, Profile: *ToProfileResponse(p)}, nil
}

// GetOrCreateProfile resuelve el perfil de un usuario autenticado. Si el
// fetch primario falla intenta un upsert de respaldo con los datos mínimos;
// un rol fuera de la lista blanca invalida el perfil por completo.
func (uc *UseCase) GetOrCreateProfile(userID, email string) (*dto.ProfileResponse, error) {
	p, err := uc.profiles.GetByID(userID)
	if err != nil || p == nil {
		// Camino de respaldo: upsert seguro con los datos de la sesión.
		now := time.Now()
		fallback := &entity.Profile{
			ID:        userID,
			Email:     email,
			Role:      entity.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if upErr := uc.profiles.Upsert(fallback); upErr != nil {
			if err != nil {
				return nil, fmt.Errorf("perfil no disponible: %w", err)
			}
			return nil, upErr
		}
		p = fallback
	}
	if !entity.ValidRole(p.Role) {
		return nil, domain.ErrInvalidRole
	}
	return ToProfileResponse(p), nil
}

// UpdateProfile aplica un patch del propio usuario. Los campos de atribución
// (UTM, referrer, landing page) solo se escriben una vez: si el perfil ya
// tiene first_visit_at se ignoran en silencio.
func (uc *UseCase) UpdateProfile(userID string, in dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	p, err := uc.profiles.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	if in.Phone != nil && *in.Phone != p.Phone {
		p.Phone = *in.Phone
		p.PhoneVerified = false // un teléfono nuevo requiere verificar de nuevo
	}
	if in.PictureURL != nil {
		p.PictureURL = *in.PictureURL
	}
	if p.FirstVisitAt == nil && hasTracking(in) {
		now := time.Now()
		p.UTMSource = deref(in.UTMSource)
		p.UTMMedium = deref(in.UTMMedium)
		p.UTMCampaign = deref(in.UTMCampaign)
		p.UTMTerm = deref(in.UTMTerm)
		p.UTMContent = deref(in.UTMContent)
		p.RFDM = deref(in.RFDM)
		p.Referrer = deref(in.Referrer)
		p.LandingPage = deref(in.LandingPage)
		p.FirstVisitAt = &now
	}
	p.UpdatedAt = time.Now()
	if err := uc.profiles.Update(p); err != nil {
		return nil, err
	}
	return ToProfileResponse(p), nil
}

// AssignAdvisor asigna un asesor de ventas al perfil si aún no tiene uno.
// Balancea por last_assigned_at (el asesor con asignación más antigua va
// primero). Idempotente: si ya hay asesor devuelve el actual.
func (uc *UseCase) AssignAdvisor(userID string) (*dto.AdvisorResponse, error) {
	p, err := uc.profiles.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	if p.AsesorID != "" {
		return uc.advisorResponse(p.AsesorID)
	}
	advisor, err := uc.profiles.NextAdvisor()
	if err != nil {
		return nil, err
	}
	if advisor == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.profiles.AssignAdvisor(userID, advisor.ID); err != nil {
		return nil, err
	}
	return &dto.AdvisorResponse{
		AdvisorID:   advisor.ID,
		AdvisorName: advisor.FirstName + " " + advisor.LastName,
	}, nil
}

func (uc *UseCase) advisorResponse(advisorID string) (*dto.AdvisorResponse, error) {
	advisor, err := uc.profiles.GetByID(advisorID)
	if err != nil || advisor == nil {
		return &dto.AdvisorResponse{AdvisorID: advisorID}, nil
	}
	return &dto.AdvisorResponse{
		AdvisorID:   advisor.ID,
		AdvisorName: advisor.FirstName + " " + advisor.LastName,
	}, nil
}

// SetRole cambia el rol de un perfil (solo admin). Roles fuera de la lista
// blanca se rechazan antes de tocar la DB.
func (uc *UseCase) SetRole(userID, role string) (*dto.ProfileResponse, error) {
	if !entity.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	p, err := uc.profiles.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.profiles.SetRole(userID, role); err != nil {
		return nil, err
	}
	p.Role = role
	return ToProfileResponse(p), nil
}

// ListProfiles listado paginado para el panel admin, con filtro por rol.
func (uc *UseCase) ListProfiles(role string, limit, offset int) (*dto.ProfileListResponse, error) {
	if role != "" && !entity.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	list, total, err := uc.profiles.List(role, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProfileResponse, 0, len(list))
	for _, p := range list {
		if !entity.ValidRole(p.Role) {
			continue // filas corruptas no se exponen
		}
		items = append(items, *ToProfileResponse(p))
	}
	return &dto.ProfileListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// ToProfileResponse convierte la entidad al DTO público con flags derivados.
func ToProfileResponse(p *entity.Profile) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	return &dto.ProfileResponse{
		ID:            p.ID,
		Email:         p.Email,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Phone:         p.Phone,
		PhoneVerified: p.PhoneVerified,
		Role:          p.Role,
		AsesorID:      p.AsesorID,
		PictureURL:    p.PictureURL,
		FirstVisitAt:  p.FirstVisitAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		IsAdmin:       p.Role == entity.RoleAdmin,
		IsSales:       p.Role == entity.RoleSales,
		IsMarketing:   p.Role == entity.RoleMarketing,
	}
}

func hasTracking(in dto.UpdateProfileRequest) bool {
	return in.UTMSource != nil || in.UTMMedium != nil || in.UTMCampaign != nil ||
		in.UTMTerm != nil || in.UTMContent != nil || in.RFDM != nil ||
		in.Referrer != nil || in.LandingPage != nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
