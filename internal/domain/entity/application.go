package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del flujo de solicitud de financiamiento.
const (
	ApplicationStatusDraft     = "draft"
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusReviewing = "reviewing"
	ApplicationStatusApproved  = "approved"
	ApplicationStatusRejected  = "rejected"
)

// Plazos ofrecidos en meses; por vehículo se recorta con PlazoMax.
var TermOptions = []int{12, 24, 36, 48, 60}

// Application es una solicitud de financiamiento: vehículo elegido más los
// términos seleccionados en el wizard. El resumen es solo informativo, no hay
// cálculo de intereses.
type Application struct {
	ID              string
	UserID          string
	OrdenCompra     string // vehículo seleccionado
	TermMonths      int
	DownPayment     decimal.Decimal
	AmountToFinance decimal.Decimal // precio - enganche, derivado
	Status          string
	ReviewedBy      string // perfil staff que tomó la última transición
	ReviewNotes     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Tipos de documento aceptados en una solicitud.
const (
	DocumentINEFront     = "ine_front"
	DocumentINEBack      = "ine_back"
	DocumentProofAddress = "proof_address"
	DocumentProofIncome  = "proof_income"
)

// ValidDocumentType indica si el tipo pertenece al catálogo.
func ValidDocumentType(t string) bool {
	switch t {
	case DocumentINEFront, DocumentINEBack, DocumentProofAddress, DocumentProofIncome:
		return true
	}
	return false
}

// Document es un archivo adjunto a una solicitud, almacenado en object storage.
type Document struct {
	ID            string
	ApplicationID string
	Type          string
	URL           string
	UploadedAt    time.Time
}
