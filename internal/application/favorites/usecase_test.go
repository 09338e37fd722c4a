package favorites_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autos-trefa/trefa-api/internal/application/favorites"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// ─────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────

type fakeFavRepo struct {
	favorites   map[string]*entity.Favorite   // key userID|oc
	watches     map[string]*entity.PriceWatch // key userID|oc
	addFavErr   error
	addWatchErr error
}

func newFakeFavRepo() *fakeFavRepo {
	return &fakeFavRepo{
		favorites: map[string]*entity.Favorite{},
		watches:   map[string]*entity.PriceWatch{},
	}
}

func key(userID, oc string) string { return userID + "|" + oc }

func (f *fakeFavRepo) AddFavorite(fav *entity.Favorite) error {
	if f.addFavErr != nil {
		return f.addFavErr
	}
	f.favorites[key(fav.UserID, fav.OrdenCompra)] = fav
	return nil
}

func (f *fakeFavRepo) RemoveFavorite(userID, oc string) error {
	delete(f.favorites, key(userID, oc))
	return nil
}

func (f *fakeFavRepo) IsFavorite(userID, oc string) (bool, error) {
	_, ok := f.favorites[key(userID, oc)]
	return ok, nil
}

func (f *fakeFavRepo) ListFavorites(userID string) ([]*entity.Favorite, error) {
	var out []*entity.Favorite
	for _, fav := range f.favorites {
		if fav.UserID == userID {
			out = append(out, fav)
		}
	}
	return out, nil
}

func (f *fakeFavRepo) AddPriceWatch(w *entity.PriceWatch) error {
	if f.addWatchErr != nil {
		return f.addWatchErr
	}
	f.watches[key(w.UserID, w.OrdenCompra)] = w
	return nil
}

func (f *fakeFavRepo) RemovePriceWatch(userID, oc string) error {
	delete(f.watches, key(userID, oc))
	return nil
}

func (f *fakeFavRepo) IsWatching(userID, oc string) (bool, error) {
	_, ok := f.watches[key(userID, oc)]
	return ok, nil
}

func (f *fakeFavRepo) ListPriceWatches(userID string) ([]*entity.PriceWatch, error) {
	var out []*entity.PriceWatch
	for _, w := range f.watches {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakeVehicles struct {
	byOC map[string]*entity.Vehicle
}

func (f *fakeVehicles) GetBySlug(string) (*entity.Vehicle, error)      { return nil, nil }
func (f *fakeVehicles) GetBySlugFuzzy(string) (*entity.Vehicle, error) { return nil, nil }

func (f *fakeVehicles) GetByOrdenCompra(oc string) (*entity.Vehicle, error) {
	return f.byOC[oc], nil
}

func (f *fakeVehicles) GetByRecordID(string) (*entity.Vehicle, error) { return nil, nil }

func (f *fakeVehicles) List(entity.VehicleFilters, int, int) ([]*entity.Vehicle, int, error) {
	return nil, 0, nil
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

func vehiculo(oc string, precio int64) *entity.Vehicle {
	return &entity.Vehicle{
		OrdenCompra: oc,
		Titulo:      "Mazda 3 2024",
		Precio:      decimal.NewFromInt(precio),
		OrdenStatus: entity.OrdenStatusComprado,
	}
}

// ─────────────────────────────────────────────
// Favoritos
// ─────────────────────────────────────────────

func TestToggleFavorite_MarcaYDesmarca(t *testing.T) {
	repo := newFakeFavRepo()
	uc := favorites.NewUseCase(repo, &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 300000)}})

	r, err := uc.ToggleFavorite("u1", "OC1")
	require.NoError(t, err)
	assert.True(t, r.Active)

	r, err = uc.ToggleFavorite("u1", "OC1")
	require.NoError(t, err)
	assert.False(t, r.Active)
	assert.Empty(t, repo.favorites)
}

func TestToggleFavorite_VehiculoInexistente(t *testing.T) {
	uc := favorites.NewUseCase(newFakeFavRepo(), &fakeVehicles{byOC: map[string]*entity.Vehicle{}})

	_, err := uc.ToggleFavorite("u1", "OC404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleFavorite_DuplicadoEnvueltoEsIdempotente(t *testing.T) {
	repo := newFakeFavRepo()
	// El repo SQL envuelve la violación de unicidad con %w; el toggle la
	// trata como éxito aunque llegue envuelta
	repo.addFavErr = fmt.Errorf("add favorite: %w", domain.ErrDuplicate)
	uc := favorites.NewUseCase(repo, &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 300000)}})

	r, err := uc.ToggleFavorite("u1", "OC1")
	require.NoError(t, err)
	assert.True(t, r.Active)
}

func TestListFavorites_VehiculoVendidoNoDisponible(t *testing.T) {
	repo := newFakeFavRepo()
	repo.favorites[key("u1", "OC1")] = &entity.Favorite{UserID: "u1", OrdenCompra: "OC1", CreatedAt: time.Now()}
	repo.favorites[key("u1", "OC2")] = &entity.Favorite{UserID: "u1", OrdenCompra: "OC2", CreatedAt: time.Now()}
	vendido := vehiculo("OC2", 250000)
	vendido.Vendido = true
	uc := favorites.NewUseCase(repo, &fakeVehicles{byOC: map[string]*entity.Vehicle{
		"OC1": vehiculo("OC1", 300000),
		"OC2": vendido,
	}})

	list, err := uc.ListFavorites("u1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	byOC := map[string]bool{}
	for _, item := range list {
		byOC[item.OrdenCompra] = item.Available
	}
	assert.True(t, byOC["OC1"])
	assert.False(t, byOC["OC2"], "un favorito vendido se conserva pero no está disponible")
}

// ─────────────────────────────────────────────
// Alertas de precio
// ─────────────────────────────────────────────

func TestTogglePriceWatch_GuardaPrecioDeReferencia(t *testing.T) {
	repo := newFakeFavRepo()
	uc := favorites.NewUseCase(repo, &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 300000)}})

	r, err := uc.TogglePriceWatch("u1", "OC1")
	require.NoError(t, err)
	assert.True(t, r.Active)
	assert.Equal(t, "300000", repo.watches[key("u1", "OC1")].LastSeenPrice)
}

func TestTogglePriceWatch_DuplicadoEnvueltoEsIdempotente(t *testing.T) {
	repo := newFakeFavRepo()
	repo.addWatchErr = fmt.Errorf("add price watch: %w", domain.ErrDuplicate)
	uc := favorites.NewUseCase(repo, &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 300000)}})

	r, err := uc.TogglePriceWatch("u1", "OC1")
	require.NoError(t, err)
	assert.True(t, r.Active)
}

func TestListPriceWatches_DetectaBajadaDePrecio(t *testing.T) {
	repo := newFakeFavRepo()
	repo.watches[key("u1", "OC1")] = &entity.PriceWatch{
		UserID: "u1", OrdenCompra: "OC1", LastSeenPrice: "320000", CreatedAt: time.Now(),
	}
	uc := favorites.NewUseCase(repo, &fakeVehicles{byOC: map[string]*entity.Vehicle{"OC1": vehiculo("OC1", 300000)}})

	list, err := uc.ListPriceWatches("u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].PriceDropped)
	assert.Equal(t, "300000", list[0].CurrentPrice)
}
