package entity

import "time"

// Roles válidos para Profile. Cualquier otro valor se trata como perfil
// inválido: no se cachea ni se confía en él.
const (
	RoleUser      = "user"
	RoleSales     = "sales"
	RoleAdmin     = "admin"
	RoleMarketing = "marketing"
)

// ValidRole indica si el rol pertenece a la lista blanca.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleSales, RoleAdmin, RoleMarketing:
		return true
	}
	return false
}

// Profile representa el registro de usuario de la aplicación, distinto de la
// sesión del proveedor de identidad. Se crea con upsert en el primer login y
// nunca se borra físicamente.
type Profile struct {
	ID            string
	Email         string
	PasswordHash  string // bcrypt; nunca viaja en DTOs
	FirstName     string
	LastName      string
	Phone         string
	PhoneVerified bool
	Role          string // user, sales, admin, marketing
	AsesorID      string // perfil de ventas asignado por round-robin; vacío = sin asignar
	PictureURL    string

	// Atribución de origen; se persiste una sola vez (FirstVisitAt vacío).
	UTMSource    string
	UTMMedium    string
	UTMCampaign  string
	UTMTerm      string
	UTMContent   string
	RFDM         string
	Referrer     string
	LandingPage  string
	FirstVisitAt *time.Time

	// LastAssignedAt solo aplica a perfiles de ventas: marca la última vez que
	// el round-robin les asignó un lead.
	LastAssignedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsStaff indica si el perfil tiene un rol interno.
func (p *Profile) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleSales || p.Role == RoleMarketing
}
