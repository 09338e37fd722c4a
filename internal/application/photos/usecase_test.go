package photos_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autos-trefa/trefa-api/internal/application/photos"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeRepo struct {
	byOC  map[string]*entity.Vehicle
	saved *entity.Vehicle
}

func (f *fakeRepo) GetBySlug(string) (*entity.Vehicle, error)      { return nil, nil }
func (f *fakeRepo) GetBySlugFuzzy(string) (*entity.Vehicle, error) { return nil, nil }

func (f *fakeRepo) GetByOrdenCompra(oc string) (*entity.Vehicle, error) {
	return f.byOC[oc], nil
}

func (f *fakeRepo) GetByRecordID(string) (*entity.Vehicle, error) { return nil, nil }

func (f *fakeRepo) List(entity.VehicleFilters, int, int) ([]*entity.Vehicle, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ListSlugs() ([]string, error)                   { return nil, nil }
func (f *fakeRepo) ListSlugsLike(string, string) ([]string, error) { return nil, nil }
func (f *fakeRepo) FilterOptions() (*entity.FilterOptions, error)  { return nil, nil }
func (f *fakeRepo) UpdateEditable(*entity.Vehicle) error           { return nil }

func (f *fakeRepo) UpdateImages(v *entity.Vehicle) error {
	f.saved = v
	return nil
}

func (f *fakeRepo) IncrementViewCount(string) error   { return nil }
func (f *fakeRepo) Upsert(*entity.Vehicle) error      { return nil }
func (f *fakeRepo) MarkMissing([]string) (int, error) { return 0, nil }

func (f *fakeRepo) ListMissingPhotos(int) ([]*entity.Vehicle, error) { return nil, nil }

type fakeUploader struct {
	uploads []string
	deleted []string
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	f.uploads = append(f.uploads, key)
	return "https://cdn.trefa.example/" + key, nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

// pngBytes genera una imagen mínima válida para el pipeline de reencuadre.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newPhotoUseCase(v *entity.Vehicle) (*photos.UseCase, *fakeRepo, *fakeUploader) {
	repo := &fakeRepo{byOC: map[string]*entity.Vehicle{v.OrdenCompra: v}}
	up := &fakeUploader{}
	return photos.NewUseCase(repo, up, nil, zerolog.Nop()), repo, up
}

// ──────────────────────────────────────────────────────────────────────────────
// Upload
// ──────────────────────────────────────────────────────────────────────────────

func TestUpload_PrimeraFotoQuedaComoPrincipal(t *testing.T) {
	v := &entity.Vehicle{OrdenCompra: "OC1", Titulo: "Mazda 3i 2024"}
	uc, repo, up := newPhotoUseCase(v)

	resp, err := uc.Upload(context.Background(), "OC1", []photos.UploadFile{
		{Name: "frente.png", Data: pngBytes(t, 40, 30)},
		{Name: "lateral.png", Data: pngBytes(t, 40, 30)},
	})
	require.NoError(t, err)

	require.Len(t, resp.Uploaded, 2)
	assert.Equal(t, resp.Uploaded[0], resp.Featured,
		"sin principal previa, la primera subida debe quedar como principal")
	assert.True(t, repo.saved.UseR2Images, "toda subida deja al vehículo en modo R2")
	// Variante completa y miniatura por archivo.
	assert.Len(t, up.uploads, 4)
}

func TestUpload_ConPrincipalExistenteNoLaReemplaza(t *testing.T) {
	v := &entity.Vehicle{
		OrdenCompra:    "OC1",
		R2FeatureImage: "https://cdn.trefa.example/vehiculos/OC1/actual.jpg",
		UseR2Images:    true,
	}
	uc, _, _ := newPhotoUseCase(v)

	resp, err := uc.Upload(context.Background(), "OC1", []photos.UploadFile{
		{Name: "nueva.png", Data: pngBytes(t, 40, 30)},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.trefa.example/vehiculos/OC1/actual.jpg", resp.Featured)
}

func TestUpload_ArchivoCorruptoSeOmite(t *testing.T) {
	v := &entity.Vehicle{OrdenCompra: "OC1"}
	uc, _, _ := newPhotoUseCase(v)

	// Un archivo corrupto entre uno válido: la subida sigue con el válido.
	resp, err := uc.Upload(context.Background(), "OC1", []photos.UploadFile{
		{Name: "rota.jpg", Data: []byte("esto no es una imagen")},
		{Name: "buena.png", Data: pngBytes(t, 40, 30)},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Uploaded, 1)

	// Solo archivos corruptos → entrada inválida.
	_, err = uc.Upload(context.Background(), "OC1", []photos.UploadFile{
		{Name: "rota.jpg", Data: []byte("tampoco")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// SetFeatured: invariante de una sola principal
// ──────────────────────────────────────────────────────────────────────────────

func TestSetFeatured_IntercambiaConLaAnterior(t *testing.T) {
	v := &entity.Vehicle{
		OrdenCompra:    "OC1",
		R2FeatureImage: "https://cdn.trefa.example/vehiculos/OC1/a.jpg",
		R2Gallery:      []string{"https://cdn.trefa.example/vehiculos/OC1/b.jpg"},
		UseR2Images:    true,
	}
	uc, repo, _ := newPhotoUseCase(v)

	resp, err := uc.SetFeatured("OC1", "https://cdn.trefa.example/vehiculos/OC1/b.jpg")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.trefa.example/vehiculos/OC1/b.jpg", resp.FeatureImage)
	assert.Contains(t, repo.saved.R2Gallery, "https://cdn.trefa.example/vehiculos/OC1/a.jpg",
		"la principal anterior debe regresar a la galería")
	assert.NotContains(t, repo.saved.R2Gallery, "https://cdn.trefa.example/vehiculos/OC1/b.jpg",
		"la nueva principal no debe quedar duplicada en la galería")
}

func TestSetFeatured_URLDesconocida(t *testing.T) {
	v := &entity.Vehicle{OrdenCompra: "OC1", R2Gallery: []string{"https://cdn.trefa.example/vehiculos/OC1/a.jpg"}}
	uc, _, _ := newPhotoUseCase(v)

	_, err := uc.SetFeatured("OC1", "https://otro-lado.example/x.jpg")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// DeletePhoto
// ──────────────────────────────────────────────────────────────────────────────

// Al borrar la principal, la primera foto restante se promueve automáticamente.
func TestDeletePhoto_BorrarPrincipalPromueveLaSiguiente(t *testing.T) {
	v := &entity.Vehicle{
		OrdenCompra:    "OC1",
		R2FeatureImage: "https://cdn.trefa.example/vehiculos/OC1/a.jpg",
		R2Gallery: []string{
			"https://cdn.trefa.example/vehiculos/OC1/b.jpg",
			"https://cdn.trefa.example/vehiculos/OC1/c.jpg",
		},
		UseR2Images: true,
	}
	uc, _, up := newPhotoUseCase(v)

	resp, err := uc.DeletePhoto(context.Background(), "OC1", "https://cdn.trefa.example/vehiculos/OC1/a.jpg")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.trefa.example/vehiculos/OC1/b.jpg", resp.FeatureImage)
	assert.NotContains(t, resp.Gallery, "https://cdn.trefa.example/vehiculos/OC1/b.jpg",
		"la promovida sale de la galería")
	assert.Equal(t, []string{"vehiculos/OC1/a.jpg"}, up.deleted,
		"el objeto propio debe borrarse de storage")
}

func TestDeletePhoto_UltimaFotoDejaAlVehiculoSinPrincipal(t *testing.T) {
	v := &entity.Vehicle{
		OrdenCompra:    "OC1",
		R2FeatureImage: "https://cdn.trefa.example/vehiculos/OC1/a.jpg",
		UseR2Images:    true,
	}
	uc, repo, _ := newPhotoUseCase(v)

	resp, err := uc.DeletePhoto(context.Background(), "OC1", "https://cdn.trefa.example/vehiculos/OC1/a.jpg")
	require.NoError(t, err)
	assert.Empty(t, resp.FeatureImage)
	assert.Empty(t, repo.saved.R2FeatureImage)
}

// Las imágenes legacy de Airtable se quitan de la fila pero no se toca storage.
func TestDeletePhoto_LegacyNoTocaStorage(t *testing.T) {
	v := &entity.Vehicle{
		OrdenCompra:     "OC1",
		FeatureImage:    "https://dl.airtable.com/foto-legacy.jpg",
		GaleriaExterior: []string{"https://dl.airtable.com/foto-legacy.jpg"},
	}
	uc, _, up := newPhotoUseCase(v)

	_, err := uc.DeletePhoto(context.Background(), "OC1", "https://dl.airtable.com/foto-legacy.jpg")
	require.NoError(t, err)
	assert.Empty(t, up.deleted)
}

func TestDeletePhoto_URLInexistente(t *testing.T) {
	v := &entity.Vehicle{OrdenCompra: "OC1"}
	uc, _, _ := newPhotoUseCase(v)

	_, err := uc.DeletePhoto(context.Background(), "OC1", "https://cdn.trefa.example/vehiculos/OC1/nada.jpg")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
