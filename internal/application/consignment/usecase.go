package consignment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/photos"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

// maxListingImages tope de fotos por anuncio.
const maxListingImages = 15

// UseCase de consignación: ciclo de vida del anuncio (borrador, moderación,
// publicación) y manejo de sus fotos.
type UseCase struct {
	repo     repository.ConsignmentRepository
	uploader photos.Uploader
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.ConsignmentRepository, uploader photos.Uploader, log zerolog.Logger) *UseCase {
	return &UseCase{repo: repo, uploader: uploader, log: log}
}

// Create da de alta un anuncio en borrador.
func (uc *UseCase) Create(userID string, in dto.CreateListingRequest) (*dto.ListingResponse, error) {
	if in.Marca == "" || in.Modelo == "" || in.AutoAno <= 0 || !in.Precio.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	l := &entity.ConsignmentListing{
		ID:          uuid.New().String(),
		UserID:      userID,
		Marca:       in.Marca,
		Modelo:      in.Modelo,
		AutoAno:     in.AutoAno,
		Kilometraje: in.Kilometraje,
		Precio:      in.Precio,
		Descripcion: in.Descripcion,
		Status:      entity.ListingStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(l); err != nil {
		return nil, err
	}
	return uc.toResponse(l)
}

// Update edita un anuncio del dueño. Solo se permite en draft o rejected; un
// anuncio rechazado editado vuelve a draft.
func (uc *UseCase) Update(userID, id string, in dto.UpdateListingRequest) (*dto.ListingResponse, error) {
	l, err := uc.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if l.Status != entity.ListingStatusDraft && l.Status != entity.ListingStatusRejected {
		return nil, domain.ErrConflict
	}
	if in.Marca != nil {
		l.Marca = *in.Marca
	}
	if in.Modelo != nil {
		l.Modelo = *in.Modelo
	}
	if in.AutoAno != nil {
		l.AutoAno = *in.AutoAno
	}
	if in.Kilometraje != nil {
		l.Kilometraje = *in.Kilometraje
	}
	if in.Precio != nil {
		if !in.Precio.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		l.Precio = *in.Precio
	}
	if in.Descripcion != nil {
		l.Descripcion = *in.Descripcion
	}
	if l.Status == entity.ListingStatusRejected {
		l.Status = entity.ListingStatusDraft
		l.RejectionReason = ""
		l.AdminNotes = ""
	}
	l.UpdatedAt = time.Now()
	if err := uc.repo.Update(l); err != nil {
		return nil, err
	}
	return uc.toResponse(l)
}

// Submit envía el anuncio a moderación desde borrador o rechazado. Requiere
// al menos una foto; reenviar un rechazado limpia el motivo de rechazo.
func (uc *UseCase) Submit(userID, id string) (*dto.ListingResponse, error) {
	l, err := uc.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if l.Status != entity.ListingStatusDraft && l.Status != entity.ListingStatusRejected {
		return nil, domain.ErrConflict
	}
	imgs, err := uc.repo.ListImages(id)
	if err != nil {
		return nil, err
	}
	if len(imgs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	l.Status = entity.ListingStatusPendingApproval
	l.RejectionReason = ""
	l.UpdatedAt = time.Now()
	if err := uc.repo.Update(l); err != nil {
		return nil, err
	}
	return uc.toResponse(l)
}

// Approve publica un anuncio pendiente (solo admin).
func (uc *UseCase) Approve(adminID, id string) (*dto.ListingResponse, error) {
	return uc.moderate(adminID, id, entity.ListingStatusActive, "", "")
}

// Reject regresa un anuncio pendiente con motivo (solo admin).
func (uc *UseCase) Reject(adminID, id string, in dto.RejectListingRequest) (*dto.ListingResponse, error) {
	if in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.moderate(adminID, id, entity.ListingStatusRejected, in.Reason, in.Notes)
}

func (uc *UseCase) moderate(adminID, id, status, reason, notes string) (*dto.ListingResponse, error) {
	l, err := uc.mustListing(id)
	if err != nil {
		return nil, err
	}
	if l.Status != entity.ListingStatusPendingApproval {
		return nil, domain.ErrConflict
	}
	l.Status = status
	l.RejectionReason = reason
	l.AdminNotes = notes
	l.ReviewedBy = adminID
	l.UpdatedAt = time.Now()
	if err := uc.repo.Update(l); err != nil {
		return nil, err
	}
	uc.log.Info().Str("listing_id", id).Str("status", status).Msg("anuncio moderado")
	return uc.toResponse(l)
}

// SetStatus transiciones del dueño sobre un anuncio publicado:
// active→sold|paused|expired y paused→active.
func (uc *UseCase) SetStatus(userID, id, status string) (*dto.ListingResponse, error) {
	l, err := uc.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if !validOwnerTransition(l.Status, status) {
		return nil, domain.ErrConflict
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	if err := uc.repo.Update(l); err != nil {
		return nil, err
	}
	return uc.toResponse(l)
}

func validOwnerTransition(from, to string) bool {
	switch from {
	case entity.ListingStatusActive:
		return to == entity.ListingStatusSold || to == entity.ListingStatusPaused || to == entity.ListingStatusExpired
	case entity.ListingStatusPaused:
		return to == entity.ListingStatusActive
	}
	return false
}

// Delete elimina un anuncio del dueño. Solo en draft.
func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	l, err := uc.owned(userID, id)
	if err != nil {
		return err
	}
	if l.Status != entity.ListingStatusDraft {
		return domain.ErrConflict
	}
	imgs, err := uc.repo.ListImages(id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(id); err != nil {
		return err
	}
	for _, img := range imgs {
		if err := uc.uploader.Delete(ctx, listingImageKey(id, img.ID)); err != nil {
			uc.log.Warn().Err(err).Str("image_id", img.ID).Msg("no se pudo borrar la foto de storage")
		}
	}
	return nil
}

// Get devuelve un anuncio. Los anuncios no publicados solo los ve el dueño o
// un admin; la vista pública de un activo incrementa vistas.
func (uc *UseCase) Get(viewerID string, isAdmin bool, id string) (*dto.ListingResponse, error) {
	l, err := uc.mustListing(id)
	if err != nil {
		return nil, err
	}
	if l.Status != entity.ListingStatusActive && l.UserID != viewerID && !isAdmin {
		return nil, domain.ErrNotFound
	}
	if l.Status == entity.ListingStatusActive && l.UserID != viewerID {
		if err := uc.repo.IncrementViews(id); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo incrementar vistas")
		} else {
			l.ViewCount++
		}
	}
	return uc.toResponse(l)
}

// RecordContact incrementa el contador de contactos de un anuncio activo.
func (uc *UseCase) RecordContact(id string) error {
	l, err := uc.mustListing(id)
	if err != nil {
		return err
	}
	if l.Status != entity.ListingStatusActive {
		return domain.ErrConflict
	}
	return uc.repo.IncrementContacts(id)
}

// ListMine anuncios del usuario en cualquier estado.
func (uc *UseCase) ListMine(userID string) (*dto.ListingListResponse, error) {
	list, err := uc.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return uc.listResponse(list, len(list), 0, len(list))
}

// ListPublic anuncios activos para el catálogo público.
func (uc *UseCase) ListPublic(limit, offset int) (*dto.ListingListResponse, error) {
	list, total, err := uc.repo.ListByStatus(entity.ListingStatusActive, limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.listResponse(list, limit, offset, total)
}

// ListPending bandeja de moderación para admin.
func (uc *UseCase) ListPending(limit, offset int) (*dto.ListingListResponse, error) {
	list, total, err := uc.repo.ListByStatus(entity.ListingStatusPendingApproval, limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.listResponse(list, limit, offset, total)
}

// Stats contadores del usuario, o globales para admin.
func (uc *UseCase) Stats(userID string, global bool) (*dto.ConsignmentStatsResponse, error) {
	var (
		s   *entity.ConsignmentStats
		err error
	)
	if global {
		s, err = uc.repo.StatsGlobal()
	} else {
		s, err = uc.repo.StatsByUser(userID)
	}
	if err != nil {
		return nil, err
	}
	return &dto.ConsignmentStatsResponse{
		Total:           s.Total,
		Active:          s.Active,
		PendingApproval: s.PendingApproval,
		Sold:            s.Sold,
		Rejected:        s.Rejected,
		TotalViews:      s.TotalViews,
		TotalContacts:   s.TotalContacts,
	}, nil
}

// AddImage sube una foto al anuncio. La primera foto queda como primaria.
func (uc *UseCase) AddImage(ctx context.Context, userID, id string, file photos.UploadFile) (*dto.ListingImageResponse, error) {
	l, err := uc.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if l.Status != entity.ListingStatusDraft && l.Status != entity.ListingStatusRejected {
		return nil, domain.ErrConflict
	}
	existing, err := uc.repo.ListImages(id)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxListingImages {
		return nil, domain.ErrInvalidInput
	}

	imageID := uuid.New().String()
	url, err := uc.uploader.Upload(ctx, listingImageKey(id, imageID), "image/jpeg", file.Data)
	if err != nil {
		return nil, err
	}
	img := &entity.ListingImage{
		ID:        imageID,
		ListingID: id,
		URL:       url,
		IsPrimary: len(existing) == 0,
		Position:  len(existing),
		CreatedAt: time.Now(),
	}
	if err := uc.repo.AddImage(img); err != nil {
		return nil, err
	}
	return &dto.ListingImageResponse{ID: img.ID, URL: img.URL, IsPrimary: img.IsPrimary, Position: img.Position}, nil
}

// SetPrimaryImage cambia la foto primaria. Se limpia la marca anterior antes
// de fijar la nueva para que nunca haya dos primarias.
func (uc *UseCase) SetPrimaryImage(userID, id, imageID string) error {
	if _, err := uc.owned(userID, id); err != nil {
		return err
	}
	img, err := uc.repo.GetImage(imageID)
	if err != nil {
		return err
	}
	if img == nil || img.ListingID != id {
		return domain.ErrNotFound
	}
	if err := uc.repo.ClearPrimary(id); err != nil {
		return err
	}
	return uc.repo.SetPrimary(imageID)
}

// DeleteImage quita una foto; si era la primaria, la siguiente por posición
// queda como primaria.
func (uc *UseCase) DeleteImage(ctx context.Context, userID, id, imageID string) error {
	if _, err := uc.owned(userID, id); err != nil {
		return err
	}
	img, err := uc.repo.GetImage(imageID)
	if err != nil {
		return err
	}
	if img == nil || img.ListingID != id {
		return domain.ErrNotFound
	}
	if err := uc.repo.DeleteImage(imageID); err != nil {
		return err
	}
	if img.IsPrimary {
		rest, err := uc.repo.ListImages(id)
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			if err := uc.repo.ClearPrimary(id); err != nil {
				return err
			}
			if err := uc.repo.SetPrimary(rest[0].ID); err != nil {
				return err
			}
		}
	}
	if err := uc.uploader.Delete(ctx, listingImageKey(id, imageID)); err != nil {
		uc.log.Warn().Err(err).Str("image_id", imageID).Msg("no se pudo borrar la foto de storage")
	}
	return nil
}

func (uc *UseCase) owned(userID, id string) (*entity.ConsignmentListing, error) {
	l, err := uc.mustListing(id)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return l, nil
}

func (uc *UseCase) mustListing(id string) (*entity.ConsignmentListing, error) {
	l, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func listingImageKey(listingID, imageID string) string {
	return fmt.Sprintf("consignacion/%s/%s.jpg", listingID, imageID)
}

func (uc *UseCase) toResponse(l *entity.ConsignmentListing) (*dto.ListingResponse, error) {
	imgs, err := uc.repo.ListImages(l.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.ListingResponse{
		ID:              l.ID,
		UserID:          l.UserID,
		Marca:           l.Marca,
		Modelo:          l.Modelo,
		AutoAno:         l.AutoAno,
		Kilometraje:     l.Kilometraje,
		Precio:          l.Precio,
		Descripcion:     l.Descripcion,
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
		ViewCount:       l.ViewCount,
		ContactCount:    l.ContactCount,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
	for _, img := range imgs {
		out.Images = append(out.Images, dto.ListingImageResponse{
			ID: img.ID, URL: img.URL, IsPrimary: img.IsPrimary, Position: img.Position,
		})
	}
	return out, nil
}

func (uc *UseCase) listResponse(list []*entity.ConsignmentListing, limit, offset, total int) (*dto.ListingListResponse, error) {
	resp := &dto.ListingListResponse{Page: dto.PageResponse{Limit: limit, Offset: offset, Total: total}}
	for _, l := range list {
		r, err := uc.toResponse(l)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, *r)
	}
	return resp, nil
}
