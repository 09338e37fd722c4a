package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del listado de consignación ("vende tu auto"). Flujo de moderación:
// draft → pending_approval → active|rejected → sold|paused|expired.
const (
	ListingStatusDraft           = "draft"
	ListingStatusPendingApproval = "pending_approval"
	ListingStatusActive          = "active"
	ListingStatusRejected        = "rejected"
	ListingStatusSold            = "sold"
	ListingStatusPaused          = "paused"
	ListingStatusExpired         = "expired"
)

// ConsignmentListing es un anuncio enviado por un usuario y moderado por un
// admin; es independiente del inventario propio de la agencia.
type ConsignmentListing struct {
	ID          string
	UserID      string
	Marca       string
	Modelo      string
	AutoAno     int
	Kilometraje int
	Precio      decimal.Decimal
	Descripcion string

	Status          string
	AdminNotes      string
	RejectionReason string
	ReviewedBy      string

	ViewCount    int
	ContactCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListingImage es una foto del anuncio. Exactamente una por anuncio puede
// tener IsPrimary=true mientras el anuncio tenga fotos.
type ListingImage struct {
	ID        string
	ListingID string
	URL       string
	IsPrimary bool
	Position  int
	CreatedAt time.Time
}

// ConsignmentStats agrega contadores para dashboards de usuario y admin.
type ConsignmentStats struct {
	Total           int
	Active          int
	PendingApproval int
	Sold            int
	Rejected        int
	TotalViews      int
	TotalContacts   int
}
