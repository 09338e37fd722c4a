package dto

import "time"

// RegisterRequest alta de usuario con email y contraseña.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileResponse perfil público del usuario (sin hash de contraseña).
type ProfileResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	PhoneVerified bool       `json:"phone_verified"`
	Role          string     `json:"role"`
	AsesorID      string     `json:"asesor_asignado_id,omitempty"`
	PictureURL    string     `json:"picture_url,omitempty"`
	FirstVisitAt  *time.Time `json:"first_visit_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Flags derivados del rol, para que el cliente no duplique la lista blanca.
	IsAdmin     bool `json:"is_admin"`
	IsSales     bool `json:"is_sales"`
	IsMarketing bool `json:"is_marketing"`
}

// LoginResponse token más el perfil resuelto.
type LoginResponse struct {
	Token   string          `json:"token"`
	Profile ProfileResponse `json:"profile"`
}

// UpdateProfileRequest campos editables por el propio usuario. Los punteros
// distinguen "no enviado" de "vaciar".
type UpdateProfileRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	PictureURL *string `json:"picture_url"`

	// Atribución de origen; solo se persiste en la primera visita.
	UTMSource   *string `json:"utm_source"`
	UTMMedium   *string `json:"utm_medium"`
	UTMCampaign *string `json:"utm_campaign"`
	UTMTerm     *string `json:"utm_term"`
	UTMContent  *string `json:"utm_content"`
	RFDM        *string `json:"rfdm"`
	Referrer    *string `json:"referrer"`
	LandingPage *string `json:"landing_page"`
}

// SetRoleRequest cambio de rol por un admin.
type SetRoleRequest struct {
	Role string `json:"role"`
}

// ProfileListResponse listado paginado para el panel admin.
type ProfileListResponse struct {
	Items []ProfileResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AdvisorResponse resultado de la asignación round-robin.
type AdvisorResponse struct {
	AdvisorID   string `json:"advisor_id"`
	AdvisorName string `json:"advisor_name,omitempty"`
}
