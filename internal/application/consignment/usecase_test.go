package consignment_test

import (
	"context"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autos-trefa/trefa-api/internal/application/consignment"
	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/photos"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake in-memory del repositorio de consignación
// ──────────────────────────────────────────────────────────────────────────────

type fakeConsignmentRepo struct {
	listings map[string]*entity.ConsignmentListing
	images   map[string]*entity.ListingImage
}

func newFakeConsignmentRepo() *fakeConsignmentRepo {
	return &fakeConsignmentRepo{
		listings: make(map[string]*entity.ConsignmentListing),
		images:   make(map[string]*entity.ListingImage),
	}
}

func (f *fakeConsignmentRepo) Create(l *entity.ConsignmentListing) error {
	cp := *l
	f.listings[l.ID] = &cp
	return nil
}

func (f *fakeConsignmentRepo) GetByID(id string) (*entity.ConsignmentListing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeConsignmentRepo) Update(l *entity.ConsignmentListing) error {
	cp := *l
	f.listings[l.ID] = &cp
	return nil
}

func (f *fakeConsignmentRepo) Delete(id string) error {
	delete(f.listings, id)
	for imgID, img := range f.images {
		if img.ListingID == id {
			delete(f.images, imgID)
		}
	}
	return nil
}

func (f *fakeConsignmentRepo) ListByUser(userID string) ([]*entity.ConsignmentListing, error) {
	var out []*entity.ConsignmentListing
	for _, l := range f.listings {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeConsignmentRepo) ListByStatus(status string, _, _ int) ([]*entity.ConsignmentListing, int, error) {
	var out []*entity.ConsignmentListing
	for _, l := range f.listings {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

func (f *fakeConsignmentRepo) IncrementViews(id string) error {
	f.listings[id].ViewCount++
	return nil
}

func (f *fakeConsignmentRepo) IncrementContacts(id string) error {
	f.listings[id].ContactCount++
	return nil
}

func (f *fakeConsignmentRepo) StatsByUser(userID string) (*entity.ConsignmentStats, error) {
	s := &entity.ConsignmentStats{}
	for _, l := range f.listings {
		if l.UserID != userID {
			continue
		}
		s.Total++
		switch l.Status {
		case entity.ListingStatusActive:
			s.Active++
		case entity.ListingStatusPendingApproval:
			s.PendingApproval++
		case entity.ListingStatusSold:
			s.Sold++
		case entity.ListingStatusRejected:
			s.Rejected++
		}
		s.TotalViews += l.ViewCount
		s.TotalContacts += l.ContactCount
	}
	return s, nil
}

func (f *fakeConsignmentRepo) StatsGlobal() (*entity.ConsignmentStats, error) {
	s := &entity.ConsignmentStats{Total: len(f.listings)}
	return s, nil
}

func (f *fakeConsignmentRepo) AddImage(img *entity.ListingImage) error {
	cp := *img
	f.images[img.ID] = &cp
	return nil
}

func (f *fakeConsignmentRepo) ListImages(listingID string) ([]*entity.ListingImage, error) {
	var out []*entity.ListingImage
	for _, img := range f.images {
		if img.ListingID == listingID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeConsignmentRepo) GetImage(imageID string) (*entity.ListingImage, error) {
	img, ok := f.images[imageID]
	if !ok {
		return nil, nil
	}
	cp := *img
	return &cp, nil
}

func (f *fakeConsignmentRepo) DeleteImage(imageID string) error {
	delete(f.images, imageID)
	return nil
}

func (f *fakeConsignmentRepo) ClearPrimary(listingID string) error {
	for _, img := range f.images {
		if img.ListingID == listingID {
			img.IsPrimary = false
		}
	}
	return nil
}

func (f *fakeConsignmentRepo) SetPrimary(imageID string) error {
	f.images[imageID].IsPrimary = true
	return nil
}

type fakeUploader struct {
	deleted []string
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	return "https://cdn.trefa.example/" + key, nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func newConsignmentUseCase() (*consignment.UseCase, *fakeConsignmentRepo, *fakeUploader) {
	repo := newFakeConsignmentRepo()
	up := &fakeUploader{}
	return consignment.NewUseCase(repo, up, zerolog.Nop()), repo, up
}

func crearBorrador(t *testing.T, uc *consignment.UseCase, userID string) *dto.ListingResponse {
	t.Helper()
	l, err := uc.Create(userID, dto.CreateListingRequest{
		Marca:       "Honda",
		Modelo:      "Civic",
		AutoAno:     2021,
		Kilometraje: 45000,
		Precio:      decimal.NewFromInt(310000),
	})
	require.NoError(t, err)
	return l
}

func conFoto(t *testing.T, uc *consignment.UseCase, userID, id string) {
	t.Helper()
	_, err := uc.AddImage(context.Background(), userID, id, photos.UploadFile{Name: "f.jpg", Data: []byte("jpg")})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida: draft → pending_approval → active|rejected → sold|paused|expired
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_DatosIncompletos(t *testing.T) {
	uc, _, _ := newConsignmentUseCase()
	_, err := uc.Create("user-1", dto.CreateListingRequest{Marca: "Honda"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmit_RequiereAlMenosUnaFoto(t *testing.T) {
	uc, _, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")

	_, err := uc.Submit("user-1", l.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un borrador sin fotos no puede enviarse")

	conFoto(t, uc, "user-1", l.ID)
	sent, err := uc.Submit("user-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusPendingApproval, sent.Status)
}

func TestApprove_SoloDesdePendiente(t *testing.T) {
	uc, _, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")

	_, err := uc.Approve("admin-1", l.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "un borrador no puede aprobarse directo")

	conFoto(t, uc, "user-1", l.ID)
	_, err = uc.Submit("user-1", l.ID)
	require.NoError(t, err)

	approved, err := uc.Approve("admin-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusActive, approved.Status)
}

func TestReject_RequiereMotivoYEdicionRegresaADraft(t *testing.T) {
	uc, _, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")
	conFoto(t, uc, "user-1", l.ID)
	_, err := uc.Submit("user-1", l.ID)
	require.NoError(t, err)

	_, err = uc.Reject("admin-1", l.ID, dto.RejectListingRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el rechazo exige motivo")

	rejected, err := uc.Reject("admin-1", l.ID, dto.RejectListingRequest{Reason: "fotos borrosas"})
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusRejected, rejected.Status)
	assert.Equal(t, "fotos borrosas", rejected.RejectionReason)

	// Editar un rechazado lo regresa a borrador y limpia el motivo.
	nuevoPrecio := decimal.NewFromInt(295000)
	edited, err := uc.Update("user-1", l.ID, dto.UpdateListingRequest{Precio: &nuevoPrecio})
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusDraft, edited.Status)
	assert.Empty(t, edited.RejectionReason)
}

func TestSubmit_RechazadoSeReenviaDirecto(t *testing.T) {
	uc, _, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")
	conFoto(t, uc, "user-1", l.ID)
	_, err := uc.Submit("user-1", l.ID)
	require.NoError(t, err)
	_, err = uc.Reject("admin-1", l.ID, dto.RejectListingRequest{Reason: "fotos borrosas"})
	require.NoError(t, err)

	// Sin pasar por edición: el rechazado vuelve a moderación y el motivo
	// de rechazo anterior no sobrevive
	resent, err := uc.Submit("user-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusPendingApproval, resent.Status)
	assert.Empty(t, resent.RejectionReason)

	// Un anuncio ya en moderación no se reenvía
	_, err = uc.Submit("user-1", l.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSetStatus_TransicionesDelDueno(t *testing.T) {
	uc, repo, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")
	conFoto(t, uc, "user-1", l.ID)
	_, err := uc.Submit("user-1", l.ID)
	require.NoError(t, err)
	_, err = uc.Approve("admin-1", l.ID)
	require.NoError(t, err)

	// active → paused → active → sold
	paused, err := uc.SetStatus("user-1", l.ID, entity.ListingStatusPaused)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusPaused, paused.Status)

	// Un anuncio pausado no puede venderse sin reactivarse.
	_, err = uc.SetStatus("user-1", l.ID, entity.ListingStatusSold)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.SetStatus("user-1", l.ID, entity.ListingStatusActive)
	require.NoError(t, err)
	sold, err := uc.SetStatus("user-1", l.ID, entity.ListingStatusSold)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusSold, sold.Status)

	// Vendido es terminal.
	_, err = uc.SetStatus("user-1", l.ID, entity.ListingStatusActive)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.Equal(t, entity.ListingStatusSold, repo.listings[l.ID].Status)
}

func TestDelete_SoloBorradorYSoloDueno(t *testing.T) {
	uc, _, up := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")
	conFoto(t, uc, "user-1", l.ID)

	err := uc.Delete(context.Background(), "otro-usuario", l.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, uc.Delete(context.Background(), "user-1", l.ID))
	assert.Len(t, up.deleted, 1, "las fotos deben borrarse de storage al eliminar")

	// Un anuncio publicado ya no puede eliminarse.
	l2 := crearBorrador(t, uc, "user-1")
	conFoto(t, uc, "user-1", l2.ID)
	_, err = uc.Submit("user-1", l2.ID)
	require.NoError(t, err)
	err = uc.Delete(context.Background(), "user-1", l2.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Visibilidad y contadores
// ──────────────────────────────────────────────────────────────────────────────

func TestGet_NoPublicadoSoloDuenoOAdmin(t *testing.T) {
	uc, _, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")

	_, err := uc.Get("curioso", false, l.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "un borrador ajeno se comporta como inexistente")

	_, err = uc.Get("user-1", false, l.ID)
	assert.NoError(t, err)
	_, err = uc.Get("staff", true, l.ID)
	assert.NoError(t, err)
}

func TestGet_VistaPublicaIncrementaVistas(t *testing.T) {
	uc, repo, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")
	conFoto(t, uc, "user-1", l.ID)
	_, err := uc.Submit("user-1", l.ID)
	require.NoError(t, err)
	_, err = uc.Approve("admin-1", l.ID)
	require.NoError(t, err)

	_, err = uc.Get("visitante", false, l.ID)
	require.NoError(t, err)
	_, err = uc.Get("user-1", false, l.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listings[l.ID].ViewCount,
		"solo las vistas ajenas al dueño cuentan")
}

func TestRecordContact_SoloActivos(t *testing.T) {
	uc, repo, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")

	err := uc.RecordContact(l.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	conFoto(t, uc, "user-1", l.ID)
	_, err = uc.Submit("user-1", l.ID)
	require.NoError(t, err)
	_, err = uc.Approve("admin-1", l.ID)
	require.NoError(t, err)

	require.NoError(t, uc.RecordContact(l.ID))
	assert.Equal(t, 1, repo.listings[l.ID].ContactCount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fotos del anuncio
// ──────────────────────────────────────────────────────────────────────────────

func TestAddImage_PrimeraEsPrimaria(t *testing.T) {
	uc, _, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")

	first, err := uc.AddImage(context.Background(), "user-1", l.ID, photos.UploadFile{Name: "a.jpg", Data: []byte("a")})
	require.NoError(t, err)
	second, err := uc.AddImage(context.Background(), "user-1", l.ID, photos.UploadFile{Name: "b.jpg", Data: []byte("b")})
	require.NoError(t, err)

	assert.True(t, first.IsPrimary)
	assert.False(t, second.IsPrimary)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
}

func TestSetPrimaryImage_NuncaHayDosPrimarias(t *testing.T) {
	uc, repo, _ := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")

	first, err := uc.AddImage(context.Background(), "user-1", l.ID, photos.UploadFile{Name: "a.jpg", Data: []byte("a")})
	require.NoError(t, err)
	second, err := uc.AddImage(context.Background(), "user-1", l.ID, photos.UploadFile{Name: "b.jpg", Data: []byte("b")})
	require.NoError(t, err)

	require.NoError(t, uc.SetPrimaryImage("user-1", l.ID, second.ID))

	imgs, err := repo.ListImages(l.ID)
	require.NoError(t, err)
	var primaries int
	for _, img := range imgs {
		if img.IsPrimary {
			primaries++
			assert.Equal(t, second.ID, img.ID)
		}
	}
	assert.Equal(t, 1, primaries)

	old, err := repo.GetImage(first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsPrimary)
}

func TestDeleteImage_PrimariaBorradaPromueveLaSiguiente(t *testing.T) {
	uc, repo, up := newConsignmentUseCase()
	l := crearBorrador(t, uc, "user-1")

	first, err := uc.AddImage(context.Background(), "user-1", l.ID, photos.UploadFile{Name: "a.jpg", Data: []byte("a")})
	require.NoError(t, err)
	second, err := uc.AddImage(context.Background(), "user-1", l.ID, photos.UploadFile{Name: "b.jpg", Data: []byte("b")})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteImage(context.Background(), "user-1", l.ID, first.ID))

	img, err := repo.GetImage(second.ID)
	require.NoError(t, err)
	assert.True(t, img.IsPrimary, "al borrar la primaria, la siguiente debe promoverse")
	assert.Len(t, up.deleted, 1)
}
