package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autos-trefa/trefa-api/internal/application/consignment"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	apphttp "github.com/autos-trefa/trefa-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeListingRepo struct {
	byID     map[string]*entity.ConsignmentListing
	views    map[string]int
	contacts map[string]int
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		byID:     map[string]*entity.ConsignmentListing{},
		views:    map[string]int{},
		contacts: map[string]int{},
	}
}

func (f *fakeListingRepo) Create(l *entity.ConsignmentListing) error {
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeListingRepo) GetByID(id string) (*entity.ConsignmentListing, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingRepo) Update(l *entity.ConsignmentListing) error {
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeListingRepo) Delete(id string) error { delete(f.byID, id); return nil }

func (f *fakeListingRepo) ListByUser(userID string) ([]*entity.ConsignmentListing, error) {
	var out []*entity.ConsignmentListing
	for _, l := range f.byID {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) ListByStatus(status string, limit, offset int) ([]*entity.ConsignmentListing, int, error) {
	var out []*entity.ConsignmentListing
	for _, l := range f.byID {
		if l.Status == status {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeListingRepo) IncrementViews(id string) error    { f.views[id]++; return nil }
func (f *fakeListingRepo) IncrementContacts(id string) error { f.contacts[id]++; return nil }

func (f *fakeListingRepo) StatsByUser(string) (*entity.ConsignmentStats, error) {
	return &entity.ConsignmentStats{}, nil
}

func (f *fakeListingRepo) StatsGlobal() (*entity.ConsignmentStats, error) {
	return &entity.ConsignmentStats{}, nil
}

func (f *fakeListingRepo) AddImage(*entity.ListingImage) error { return nil }

func (f *fakeListingRepo) ListImages(string) ([]*entity.ListingImage, error) { return nil, nil }

func (f *fakeListingRepo) GetImage(string) (*entity.ListingImage, error) { return nil, nil }
func (f *fakeListingRepo) DeleteImage(string) error                      { return nil }
func (f *fakeListingRepo) ClearPrimary(string) error                     { return nil }
func (f *fakeListingRepo) SetPrimary(string) error                       { return nil }

type noopUploader struct{}

func (noopUploader) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	return "https://cdn.trefa.example/" + key, nil
}

func (noopUploader) Delete(context.Context, string) error { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	activeListingID = "11111111-1111-4111-8111-111111111111"
	draftListingID  = "22222222-2222-4222-8222-222222222222"
)

func buildConsignmentApp(t *testing.T) (*fiber.App, *fakeListingRepo) {
	t.Helper()
	repo := newFakeListingRepo()
	repo.byID[activeListingID] = &entity.ConsignmentListing{
		ID:     activeListingID,
		UserID: "otro-usuario",
		Marca:  "Honda", Modelo: "Civic", AutoAno: 2021,
		Precio: decimal.NewFromInt(310000),
		Status: entity.ListingStatusActive,
	}
	repo.byID[draftListingID] = &entity.ConsignmentListing{
		ID:     draftListingID,
		UserID: testUserID,
		Marca:  "Mazda", Modelo: "3", AutoAno: 2022,
		Precio: decimal.NewFromInt(280000),
		Status: entity.ListingStatusDraft,
	}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ConsignmentUC: consignment.NewUseCase(repo, noopUploader{}, zerolog.Nop()),
		JWTSecret:     testJWTSecret,
	})
	return app, repo
}

func consignmentRequest(t *testing.T, app *fiber.App, method, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Detalle público de consignaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestConsignacionDetalle_AnonimoVeAnuncioActivo(t *testing.T) {
	app, repo := buildConsignmentApp(t)

	resp := consignmentRequest(t, app, http.MethodGet, "/api/consignaciones/"+activeListingID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "el detalle activo es público, sin token")
	assert.Equal(t, 1, repo.views[activeListingID], "la visita anónima cuenta")
}

func TestConsignacionContacto_AnonimoRegistraContacto(t *testing.T) {
	app, repo := buildConsignmentApp(t)

	resp := consignmentRequest(t, app, http.MethodPost, "/api/consignaciones/"+activeListingID+"/contacto", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, repo.contacts[activeListingID])
}

func TestConsignacionDetalle_AnonimoNoVeBorradores(t *testing.T) {
	app, _ := buildConsignmentApp(t)

	resp := consignmentRequest(t, app, http.MethodGet, "/api/consignaciones/"+draftListingID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConsignacionDetalle_DuenoVeSuBorradorConToken(t *testing.T) {
	app, _ := buildConsignmentApp(t)

	resp := consignmentRequest(t, app, http.MethodGet,
		"/api/consignaciones/"+draftListingID, tokenForRole(t, entity.RoleUser))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "el token opcional identifica al dueño")
}

func TestConsignacionMias_NoCaeEnElDetallePublico(t *testing.T) {
	app, _ := buildConsignmentApp(t)

	// /mias exige token: la ruta pública /:id no debe capturarla
	resp := consignmentRequest(t, app, http.MethodGet, "/api/consignaciones/mias", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = consignmentRequest(t, app, http.MethodGet,
		"/api/consignaciones/mias", tokenForRole(t, entity.RoleUser))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
