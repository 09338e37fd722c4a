package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateApplicationRequest inicia una solicitud en borrador.
type CreateApplicationRequest struct {
	OrdenCompra string           `json:"ordencompra"`
	TermMonths  int              `json:"term_months"`
	DownPayment *decimal.Decimal `json:"down_payment"` // nil = usar el mínimo
}

// UpdateApplicationRequest ajusta términos de un borrador.
type UpdateApplicationRequest struct {
	OrdenCompra *string          `json:"ordencompra"`
	TermMonths  *int             `json:"term_months"`
	DownPayment *decimal.Decimal `json:"down_payment"`
}

// ReviewApplicationRequest transición de revisión por staff.
type ReviewApplicationRequest struct {
	Status string `json:"status"` // reviewing, approved, rejected
	Notes  string `json:"notes"`
}

// ApplicationResponse solicitud con su resumen de financiamiento derivado.
type ApplicationResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	OrdenCompra     string          `json:"ordencompra"`
	TermMonths      int             `json:"term_months"`
	DownPayment     decimal.Decimal `json:"down_payment"`
	AmountToFinance decimal.Decimal `json:"amount_to_finance"`
	Status          string          `json:"status"`
	ReviewNotes     string          `json:"review_notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ApplicationListResponse listado paginado.
type ApplicationListResponse struct {
	Items []ApplicationResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// FinancingTermsResponse resumen informativo para el paso de términos del
// wizard; no hay cálculo de intereses ni amortización.
type FinancingTermsResponse struct {
	Precio              decimal.Decimal `json:"precio"`
	EngancheMinimo      decimal.Decimal `json:"enganche_minimo"`
	EngancheRecomendado decimal.Decimal `json:"enganche_recomendado"`
	PlazosDisponibles   []int           `json:"plazos_disponibles"`
	MontoAFinanciar     decimal.Decimal `json:"monto_a_financiar"`
}

// DocumentResponse documento subido a una solicitud.
type DocumentResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}
