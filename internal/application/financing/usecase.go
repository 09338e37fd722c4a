package financing

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

// Reglas de enganche del wizard: mínimo 25% del precio (salvo override por
// vehículo), recomendado 40%. Solo aritmética de resumen, sin intereses.
var (
	minDownPaymentRate = decimal.NewFromFloat(0.25)
	recDownPaymentRate = decimal.NewFromFloat(0.40)
)

// searchLimit tope de resultados del buscador del wizard.
const searchLimit = 12

// UseCase del wizard de financiamiento: selección de vehículo, términos y
// ciclo de vida de la solicitud con sus documentos.
type UseCase struct {
	apps     repository.ApplicationRepository
	vehicles repository.VehicleRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(apps repository.ApplicationRepository, vehicleRepo repository.VehicleRepository) *UseCase {
	return &UseCase{apps: apps, vehicles: vehicleRepo}
}

// MinDownPayment 25% del precio, o el override del vehículo cuando existe.
func MinDownPayment(precio, override decimal.Decimal) decimal.Decimal {
	if override.IsPositive() {
		return override
	}
	return precio.Mul(minDownPaymentRate)
}

// TermsFor calcula el resumen informativo de términos para un vehículo.
// downPayment nil usa el mínimo. Los plazos son el subconjunto de {12,24,36,
// 48,60} que no excede el plazomax del vehículo (plazomax ≤ 0 = todos).
func TermsFor(v *entity.Vehicle, downPayment *decimal.Decimal) *dto.FinancingTermsResponse {
	min := MinDownPayment(v.Precio, v.EngancheMin)
	rec := v.EngancheRecomendado
	if !rec.IsPositive() {
		rec = v.Precio.Mul(recDownPaymentRate)
	}
	dp := min
	if downPayment != nil {
		dp = *downPayment
	}
	return &dto.FinancingTermsResponse{
		Precio:              v.Precio,
		EngancheMinimo:      min,
		EngancheRecomendado: rec,
		PlazosDisponibles:   TermOptionsFor(v.PlazoMax),
		MontoAFinanciar:     v.Precio.Sub(dp),
	}
}

// TermOptionsFor recorta el catálogo de plazos con el máximo del vehículo.
// Un plazomax menor al plazo más corto del catálogo es dato sucio del
// inventario y se trata igual que sin tope: catálogo completo.
func TermOptionsFor(plazoMax int) []int {
	if plazoMax <= 0 {
		return append([]int(nil), entity.TermOptions...)
	}
	var out []int
	for _, t := range entity.TermOptions {
		if t <= plazoMax {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return append([]int(nil), entity.TermOptions...)
	}
	return out
}

// Terms resuelve el vehículo y devuelve su resumen de términos.
func (uc *UseCase) Terms(ordenCompra string, downPayment *decimal.Decimal) (*dto.FinancingTermsResponse, error) {
	v, err := uc.vehicles.GetByOrdenCompra(ordenCompra)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if downPayment != nil && downPayment.LessThan(MinDownPayment(v.Precio, v.EngancheMin)) {
		return nil, domain.ErrInvalidInput
	}
	return TermsFor(v, downPayment), nil
}

// SearchVehicles filtro del selector del wizard: substring case-insensitive
// sobre título/marca/modelo/año, máximo 12 resultados.
func (uc *UseCase) SearchVehicles(query string) ([]*entity.Vehicle, error) {
	list, _, err := uc.vehicles.List(entity.VehicleFilters{HideSeparado: true}, 200, 0)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*entity.Vehicle
	for _, v := range list {
		if len(out) >= searchLimit {
			break
		}
		if q == "" || matchesQuery(v, q) {
			out = append(out, v)
		}
	}
	return out, nil
}

func matchesQuery(v *entity.Vehicle, q string) bool {
	haystack := strings.ToLower(strings.Join([]string{
		v.Titulo, v.Marca, v.Modelo, strconv.Itoa(v.AutoAno),
	}, " "))
	return strings.Contains(haystack, q)
}

// Create abre una solicitud en borrador validando vehículo y términos.
func (uc *UseCase) Create(userID string, in dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	v, err := uc.vehicles.GetByOrdenCompra(in.OrdenCompra)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	term := in.TermMonths
	if term == 0 {
		opts := TermOptionsFor(v.PlazoMax)
		term = opts[len(opts)-1]
	}
	if !validTerm(term, v.PlazoMax) {
		return nil, domain.ErrInvalidInput
	}
	min := MinDownPayment(v.Precio, v.EngancheMin)
	dp := min
	if in.DownPayment != nil {
		if in.DownPayment.LessThan(min) {
			return nil, domain.ErrInvalidInput
		}
		dp = *in.DownPayment
	}
	now := time.Now()
	a := &entity.Application{
		ID:              uuid.New().String(),
		UserID:          userID,
		OrdenCompra:     in.OrdenCompra,
		TermMonths:      term,
		DownPayment:     dp,
		AmountToFinance: v.Precio.Sub(dp),
		Status:          entity.ApplicationStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.apps.Create(a); err != nil {
		return nil, err
	}
	return toResponse(a), nil
}

// Update ajusta un borrador del propio usuario; solicitudes ya enviadas no se
// editan por esta vía.
func (uc *UseCase) Update(userID, id string, in dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error) {
	a, err := uc.apps.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if a.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if a.Status != entity.ApplicationStatusDraft {
		return nil, domain.ErrConflict
	}
	if in.OrdenCompra != nil {
		a.OrdenCompra = *in.OrdenCompra
	}
	v, err := uc.vehicles.GetByOrdenCompra(a.OrdenCompra)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if in.TermMonths != nil {
		if !validTerm(*in.TermMonths, v.PlazoMax) {
			return nil, domain.ErrInvalidInput
		}
		a.TermMonths = *in.TermMonths
	}
	if in.DownPayment != nil {
		if in.DownPayment.LessThan(MinDownPayment(v.Precio, v.EngancheMin)) {
			return nil, domain.ErrInvalidInput
		}
		a.DownPayment = *in.DownPayment
	}
	a.AmountToFinance = v.Precio.Sub(a.DownPayment)
	a.UpdatedAt = time.Now()
	if err := uc.apps.Update(a); err != nil {
		return nil, err
	}
	return toResponse(a), nil
}

// Submit pasa el borrador a submitted.
func (uc *UseCase) Submit(userID, id string) (*dto.ApplicationResponse, error) {
	a, err := uc.apps.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if a.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if a.Status != entity.ApplicationStatusDraft {
		return nil, domain.ErrConflict
	}
	a.Status = entity.ApplicationStatusSubmitted
	a.UpdatedAt = time.Now()
	if err := uc.apps.Update(a); err != nil {
		return nil, err
	}
	return toResponse(a), nil
}

// Review transición de staff: submitted→reviewing→approved|rejected.
func (uc *UseCase) Review(reviewerID, id string, in dto.ReviewApplicationRequest) (*dto.ApplicationResponse, error) {
	a, err := uc.apps.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if !validReviewTransition(a.Status, in.Status) {
		return nil, domain.ErrConflict
	}
	a.Status = in.Status
	a.ReviewedBy = reviewerID
	a.ReviewNotes = in.Notes
	a.UpdatedAt = time.Now()
	if err := uc.apps.Update(a); err != nil {
		return nil, err
	}
	return toResponse(a), nil
}

func validReviewTransition(from, to string) bool {
	switch to {
	case entity.ApplicationStatusReviewing:
		return from == entity.ApplicationStatusSubmitted
	case entity.ApplicationStatusApproved, entity.ApplicationStatusRejected:
		return from == entity.ApplicationStatusSubmitted || from == entity.ApplicationStatusReviewing
	}
	return false
}

// ListMine solicitudes del usuario.
func (uc *UseCase) ListMine(userID string, limit, offset int) (*dto.ApplicationListResponse, error) {
	list, err := uc.apps.ListByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return listResponse(list, limit, offset, 0), nil
}

// ListByStatus bandeja de revisión para staff.
func (uc *UseCase) ListByStatus(status string, limit, offset int) (*dto.ApplicationListResponse, error) {
	list, total, err := uc.apps.ListByStatus(status, limit, offset)
	if err != nil {
		return nil, err
	}
	return listResponse(list, limit, offset, total), nil
}

// Get devuelve una solicitud si pertenece al usuario o si el caller es staff.
func (uc *UseCase) Get(userID string, isStaff bool, id string) (*dto.ApplicationResponse, error) {
	a, err := uc.apps.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if a.UserID != userID && !isStaff {
		return nil, domain.ErrForbidden
	}
	return toResponse(a), nil
}

// AddDocument adjunta un archivo ya almacenado a la solicitud.
func (uc *UseCase) AddDocument(userID, applicationID, docType, url string) (*dto.DocumentResponse, error) {
	if !entity.ValidDocumentType(docType) {
		return nil, domain.ErrInvalidInput
	}
	a, err := uc.apps.GetByID(applicationID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if a.UserID != userID {
		return nil, domain.ErrForbidden
	}
	d := &entity.Document{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		Type:          docType,
		URL:           url,
		UploadedAt:    time.Now(),
	}
	if err := uc.apps.AddDocument(d); err != nil {
		return nil, err
	}
	return &dto.DocumentResponse{ID: d.ID, Type: d.Type, URL: d.URL, UploadedAt: d.UploadedAt}, nil
}

// ListDocuments documentos de una solicitud.
func (uc *UseCase) ListDocuments(userID string, isStaff bool, applicationID string) ([]dto.DocumentResponse, error) {
	a, err := uc.apps.GetByID(applicationID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if a.UserID != userID && !isStaff {
		return nil, domain.ErrForbidden
	}
	docs, err := uc.apps.ListDocuments(applicationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, dto.DocumentResponse{ID: d.ID, Type: d.Type, URL: d.URL, UploadedAt: d.UploadedAt})
	}
	return out, nil
}

func validTerm(term, plazoMax int) bool {
	for _, t := range TermOptionsFor(plazoMax) {
		if t == term {
			return true
		}
	}
	return false
}

func toResponse(a *entity.Application) *dto.ApplicationResponse {
	return &dto.ApplicationResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		OrdenCompra:     a.OrdenCompra,
		TermMonths:      a.TermMonths,
		DownPayment:     a.DownPayment,
		AmountToFinance: a.AmountToFinance,
		Status:          a.Status,
		ReviewNotes:     a.ReviewNotes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func listResponse(list []*entity.Application, limit, offset, total int) *dto.ApplicationListResponse {
	items := make([]dto.ApplicationResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *toResponse(a))
	}
	return &dto.ApplicationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
}
