package financing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/financing"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeApps struct {
	byID map[string]*entity.Application
}

func newFakeApps() *fakeApps {
	return &fakeApps{byID: make(map[string]*entity.Application)}
}

func (f *fakeApps) Create(a *entity.Application) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeApps) GetByID(id string) (*entity.Application, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApps) Update(a *entity.Application) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeApps) ListByUser(userID string, _, _ int) ([]*entity.Application, error) {
	var out []*entity.Application
	for _, a := range f.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApps) ListByStatus(status string, _, _ int) ([]*entity.Application, int, error) {
	var out []*entity.Application
	for _, a := range f.byID {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (f *fakeApps) AddDocument(*entity.Document) error { return nil }

func (f *fakeApps) ListDocuments(string) ([]*entity.Document, error) { return nil, nil }

type fakeVehicles struct {
	byOC map[string]*entity.Vehicle
	list []*entity.Vehicle
}

func (f *fakeVehicles) GetBySlug(string) (*entity.Vehicle, error)      { return nil, nil }
func (f *fakeVehicles) GetBySlugFuzzy(string) (*entity.Vehicle, error) { return nil, nil }

func (f *fakeVehicles) GetByOrdenCompra(oc string) (*entity.Vehicle, error) {
	return f.byOC[oc], nil
}

func (f *fakeVehicles) GetByRecordID(string) (*entity.Vehicle, error) { return nil, nil }

func (f *fakeVehicles) List(entity.VehicleFilters, int, int) ([]*entity.Vehicle, int, error) {
	return f.list, len(f.list), nil
}

func (f *fakeVehicles) ListSlugs() ([]string, error)                     { return nil, nil }
func (f *fakeVehicles) ListSlugsLike(string, string) ([]string, error)   { return nil, nil }
func (f *fakeVehicles) FilterOptions() (*entity.FilterOptions, error)    { return nil, nil }
func (f *fakeVehicles) UpdateEditable(*entity.Vehicle) error             { return nil }
func (f *fakeVehicles) UpdateImages(*entity.Vehicle) error               { return nil }
func (f *fakeVehicles) IncrementViewCount(string) error                  { return nil }
func (f *fakeVehicles) Upsert(*entity.Vehicle) error                     { return nil }
func (f *fakeVehicles) MarkMissing([]string) (int, error)                { return 0, nil }
func (f *fakeVehicles) ListMissingPhotos(int) ([]*entity.Vehicle, error) { return nil, nil }

func vehiculo(oc string, precio int64, plazoMax int) *entity.Vehicle {
	return &entity.Vehicle{
		OrdenCompra: oc,
		Titulo:      "Nissan Versa 2023",
		Marca:       "Nissan",
		Modelo:      "Versa",
		AutoAno:     2023,
		Precio:      decimal.NewFromInt(precio),
		PlazoMax:    plazoMax,
	}
}

func dec(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas de enganche y plazos
// ──────────────────────────────────────────────────────────────────────────────

func TestMinDownPayment_ReglaDel25(t *testing.T) {
	got := financing.MinDownPayment(decimal.NewFromInt(400000), decimal.Zero)
	assert.True(t, decimal.NewFromInt(100000).Equal(got))
}

func TestMinDownPayment_OverridePorVehiculo(t *testing.T) {
	got := financing.MinDownPayment(decimal.NewFromInt(400000), decimal.NewFromInt(150000))
	assert.True(t, decimal.NewFromInt(150000).Equal(got))
}

func TestTermOptionsFor_RecortaConPlazoMax(t *testing.T) {
	assert.Equal(t, []int{12, 24, 36}, financing.TermOptionsFor(36))
	assert.Equal(t, []int{12, 24, 36, 48, 60}, financing.TermOptionsFor(0))
	assert.Equal(t, []int{12, 24, 36, 48, 60}, financing.TermOptionsFor(72))
}

func TestTermOptionsFor_PlazoMaxMenorAlCatalogo(t *testing.T) {
	// Un tope por debajo de 12 meses es dato sucio: nunca se devuelve vacío
	assert.Equal(t, []int{12, 24, 36, 48, 60}, financing.TermOptionsFor(6))
	assert.Equal(t, []int{12, 24, 36, 48, 60}, financing.TermOptionsFor(1))
}

func TestCreate_PlazoMaxSucioNoRompe(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC9": vehiculo("OC9", 400000, 6)}}
	uc := financing.NewUseCase(newFakeApps(), vehicles)

	a, err := uc.Create("user-1", dto.CreateApplicationRequest{OrdenCompra: "OC9"})
	require.NoError(t, err)
	assert.Equal(t, 60, a.TermMonths, "con plazomax sucio aplica el catálogo completo")
}

func TestTermsFor_EngancheRecomendado40(t *testing.T) {
	v := vehiculo("OC1", 400000, 60)
	terms := financing.TermsFor(v, nil)

	assert.True(t, decimal.NewFromInt(100000).Equal(terms.EngancheMinimo))
	assert.True(t, decimal.NewFromInt(160000).Equal(terms.EngancheRecomendado))
	// Sin enganche explícito el monto a financiar usa el mínimo.
	assert.True(t, decimal.NewFromInt(300000).Equal(terms.MontoAFinanciar))
}

func TestTerms_EngancheMenorAlMinimoRechazado(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 400000, 60)}}
	uc := financing.NewUseCase(newFakeApps(), vehicles)

	_, err := uc.Terms("OC1", dec(50000))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Buscador del wizard
// ──────────────────────────────────────────────────────────────────────────────

func TestSearchVehicles_FiltraPorSubstringYCapaResultados(t *testing.T) {
	var list []*entity.Vehicle
	for i := 0; i < 20; i++ {
		list = append(list, vehiculo("OC"+string(rune('A'+i)), 300000, 60))
	}
	list = append(list, &entity.Vehicle{
		OrdenCompra: "OCZ", Titulo: "Mazda CX-5 2022", Marca: "Mazda", Modelo: "CX-5", AutoAno: 2022,
		Precio: decimal.NewFromInt(420000),
	})
	vehicles := &fakeVehicles{list: list}
	uc := financing.NewUseCase(newFakeApps(), vehicles)

	got, err := uc.SearchVehicles("mazda")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "OCZ", got[0].OrdenCompra)

	// Sin query devuelve todo pero nunca más de 12.
	all, err := uc.SearchVehicles("")
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida de la solicitud
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_DefaultsYDerivados(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 400000, 36)}}
	uc := financing.NewUseCase(newFakeApps(), vehicles)

	a, err := uc.Create("user-1", dto.CreateApplicationRequest{OrdenCompra: "OC1"})
	require.NoError(t, err)

	assert.Equal(t, entity.ApplicationStatusDraft, a.Status)
	assert.Equal(t, 36, a.TermMonths, "sin plazo explícito se usa el mayor disponible")
	assert.True(t, decimal.NewFromInt(100000).Equal(a.DownPayment))
	assert.True(t, decimal.NewFromInt(300000).Equal(a.AmountToFinance))
}

func TestCreate_PlazoFueraDeCatalogo(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 400000, 36)}}
	uc := financing.NewUseCase(newFakeApps(), vehicles)

	_, err := uc.Create("user-1", dto.CreateApplicationRequest{OrdenCompra: "OC1", TermMonths: 48})
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"48 meses excede el plazomax de 36 del vehículo")
}

func TestCreate_EngancheInsuficiente(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 400000, 60)}}
	uc := financing.NewUseCase(newFakeApps(), vehicles)

	_, err := uc.Create("user-1", dto.CreateApplicationRequest{OrdenCompra: "OC1", DownPayment: dec(99999)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmit_SoloBorradorYSoloDueno(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 400000, 60)}}
	apps := newFakeApps()
	uc := financing.NewUseCase(apps, vehicles)

	a, err := uc.Create("user-1", dto.CreateApplicationRequest{OrdenCompra: "OC1"})
	require.NoError(t, err)

	_, err = uc.Submit("otro-usuario", a.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	sent, err := uc.Submit("user-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ApplicationStatusSubmitted, sent.Status)

	// Doble envío → conflicto.
	_, err = uc.Submit("user-1", a.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdate_SolicitudEnviadaNoSeEdita(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 400000, 60)}}
	apps := newFakeApps()
	uc := financing.NewUseCase(apps, vehicles)

	a, err := uc.Create("user-1", dto.CreateApplicationRequest{OrdenCompra: "OC1"})
	require.NoError(t, err)
	_, err = uc.Submit("user-1", a.ID)
	require.NoError(t, err)

	_, err = uc.Update("user-1", a.ID, dto.UpdateApplicationRequest{DownPayment: dec(200000)})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Revisión de staff
// ──────────────────────────────────────────────────────────────────────────────

func TestReview_Transiciones(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 400000, 60)}}
	apps := newFakeApps()
	uc := financing.NewUseCase(apps, vehicles)

	a, err := uc.Create("user-1", dto.CreateApplicationRequest{OrdenCompra: "OC1"})
	require.NoError(t, err)

	// Un borrador no puede pasar directo a reviewing.
	_, err = uc.Review("staff-1", a.ID, dto.ReviewApplicationRequest{Status: entity.ApplicationStatusReviewing})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Submit("user-1", a.ID)
	require.NoError(t, err)

	r, err := uc.Review("staff-1", a.ID, dto.ReviewApplicationRequest{Status: entity.ApplicationStatusReviewing})
	require.NoError(t, err)
	assert.Equal(t, entity.ApplicationStatusReviewing, r.Status)

	approved, err := uc.Review("staff-1", a.ID, dto.ReviewApplicationRequest{
		Status: entity.ApplicationStatusApproved,
		Notes:  "documentación completa",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ApplicationStatusApproved, approved.Status)
	assert.Equal(t, "documentación completa", approved.ReviewNotes)

	// Una solicitud aprobada es terminal.
	_, err = uc.Review("staff-1", a.ID, dto.ReviewApplicationRequest{Status: entity.ApplicationStatusRejected})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReview_SubmittedDirectoARechazado(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 400000, 60)}}
	apps := newFakeApps()
	uc := financing.NewUseCase(apps, vehicles)

	a, err := uc.Create("user-1", dto.CreateApplicationRequest{OrdenCompra: "OC1"})
	require.NoError(t, err)
	_, err = uc.Submit("user-1", a.ID)
	require.NoError(t, err)

	rejected, err := uc.Review("staff-1", a.ID, dto.ReviewApplicationRequest{Status: entity.ApplicationStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, entity.ApplicationStatusRejected, rejected.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentos
// ──────────────────────────────────────────────────────────────────────────────

func TestAddDocument_TipoInvalido(t *testing.T) {
	vehicles := &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 400000, 60)}}
	apps := newFakeApps()
	uc := financing.NewUseCase(apps, vehicles)

	a, err := uc.Create("user-1", dto.CreateApplicationRequest{OrdenCompra: "OC1"})
	require.NoError(t, err)

	_, err = uc.AddDocument("user-1", a.ID, "selfie", "https://cdn.example.com/doc.jpg")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	doc, err := uc.AddDocument("user-1", a.ID, entity.DocumentINEFront, "https://cdn.example.com/doc.jpg")
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentINEFront, doc.Type)
}
