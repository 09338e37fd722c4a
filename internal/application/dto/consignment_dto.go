package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateListingRequest alta de un anuncio de consignación (queda en draft).
type CreateListingRequest struct {
	Marca       string          `json:"marca"`
	Modelo      string          `json:"modelo"`
	AutoAno     int             `json:"autoano"`
	Kilometraje int             `json:"kilometraje"`
	Precio      decimal.Decimal `json:"precio"`
	Descripcion string          `json:"descripcion"`
}

// UpdateListingRequest edición por el dueño. Estado, contadores y campos de
// revisión no son editables por esta vía.
type UpdateListingRequest struct {
	Marca       *string          `json:"marca"`
	Modelo      *string          `json:"modelo"`
	AutoAno     *int             `json:"autoano"`
	Kilometraje *int             `json:"kilometraje"`
	Precio      *decimal.Decimal `json:"precio"`
	Descripcion *string          `json:"descripcion"`
}

// RejectListingRequest rechazo con motivo por un admin.
type RejectListingRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// ListingImageResponse foto de un anuncio.
type ListingImageResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
	Position  int    `json:"position"`
}

// ListingResponse anuncio con sus fotos.
type ListingResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	Marca           string                 `json:"marca"`
	Modelo          string                 `json:"modelo"`
	AutoAno         int                    `json:"autoano"`
	Kilometraje     int                    `json:"kilometraje"`
	Precio          decimal.Decimal        `json:"precio"`
	Descripcion     string                 `json:"descripcion,omitempty"`
	Status          string                 `json:"status"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	ViewCount       int                    `json:"view_count"`
	ContactCount    int                    `json:"contact_count"`
	Images          []ListingImageResponse `json:"images"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ListingListResponse listado paginado.
type ListingListResponse struct {
	Items []ListingResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ConsignmentStatsResponse contadores para dashboards.
type ConsignmentStatsResponse struct {
	Total           int `json:"total"`
	Active          int `json:"active"`
	PendingApproval int `json:"pending_approval"`
	Sold            int `json:"sold"`
	Rejected        int `json:"rejected"`
	TotalViews      int `json:"total_views"`
	TotalContacts   int `json:"total_contacts"`
}
