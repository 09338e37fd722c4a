package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

var _ repository.ConsignmentRepository = (*ConsignmentRepo)(nil)

const listingColumns = `id, user_id, marca, modelo, autoano, kilometraje, precio, descripcion,
	status, admin_notes, rejection_reason, reviewed_by, view_count, contact_count,
	created_at, updated_at`

// ConsignmentRepo implementación del puerto ConsignmentRepository sobre PostgreSQL.
type ConsignmentRepo struct {
	q Querier
}

// NewConsignmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConsignmentRepository(q Querier) *ConsignmentRepo {
	return &ConsignmentRepo{q: q}
}

// Create persiste un anuncio nuevo.
func (r *ConsignmentRepo) Create(l *entity.ConsignmentListing) error {
	query := `
		INSERT INTO consignment_listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.UserID, l.Marca, l.Modelo, l.AutoAno, l.Kilometraje, l.Precio, l.Descripcion,
		l.Status, l.AdminNotes, l.RejectionReason, l.ReviewedBy, l.ViewCount, l.ContactCount,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// GetByID obtiene un anuncio por ID.
func (r *ConsignmentRepo) GetByID(id string) (*entity.ConsignmentListing, error) {
	var l entity.ConsignmentListing
	err := r.q.QueryRow(context.Background(),
		`SELECT `+listingColumns+` FROM consignment_listings WHERE id = $1`, id,
	).Scan(listingDests(&l)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return &l, nil
}

// Update actualiza el anuncio completo (salvo contadores).
func (r *ConsignmentRepo) Update(l *entity.ConsignmentListing) error {
	query := `
		UPDATE consignment_listings SET marca = $2, modelo = $3, autoano = $4,
			kilometraje = $5, precio = $6, descripcion = $7, status = $8, admin_notes = $9,
			rejection_reason = $10, reviewed_by = $11, updated_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		l.ID, l.Marca, l.Modelo, l.AutoAno, l.Kilometraje, l.Precio, l.Descripcion,
		l.Status, l.AdminNotes, l.RejectionReason, l.ReviewedBy, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el anuncio; las imágenes caen por ON DELETE CASCADE.
func (r *ConsignmentRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM consignment_listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser anuncios del usuario en cualquier estado.
func (r *ConsignmentRepo) ListByUser(userID string) ([]*entity.ConsignmentListing, error) {
	return r.list(
		`SELECT `+listingColumns+` FROM consignment_listings WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
}

// ListByStatus listado paginado por estado con total.
func (r *ConsignmentRepo) ListByStatus(status string, limit, offset int) ([]*entity.ConsignmentListing, int, error) {
	list, err := r.list(
		`SELECT `+listingColumns+` FROM consignment_listings
		 WHERE status = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	var total int
	err = r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM consignment_listings WHERE status = $1`, status,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}
	return list, total, nil
}

// IncrementViews suma una vista.
func (r *ConsignmentRepo) IncrementViews(id string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE consignment_listings SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// IncrementContacts suma un contacto.
func (r *ConsignmentRepo) IncrementContacts(id string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE consignment_listings SET contact_count = contact_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment contacts: %w", err)
	}
	return nil
}

// StatsByUser contadores de los anuncios del usuario.
func (r *ConsignmentRepo) StatsByUser(userID string) (*entity.ConsignmentStats, error) {
	return r.stats(`WHERE user_id = $1`, userID)
}

// StatsGlobal contadores de todos los anuncios.
func (r *ConsignmentRepo) StatsGlobal() (*entity.ConsignmentStats, error) {
	return r.stats(``)
}

func (r *ConsignmentRepo) stats(where string, args ...any) (*entity.ConsignmentStats, error) {
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE status = 'active'),
			count(*) FILTER (WHERE status = 'pending_approval'),
			count(*) FILTER (WHERE status = 'sold'),
			count(*) FILTER (WHERE status = 'rejected'),
			coalesce(sum(view_count), 0),
			coalesce(sum(contact_count), 0)
		FROM consignment_listings ` + where
	var s entity.ConsignmentStats
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&s.Total, &s.Active, &s.PendingApproval, &s.Sold, &s.Rejected, &s.TotalViews, &s.TotalContacts,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stats: %w", err)
	}
	return &s, nil
}

func (r *ConsignmentRepo) list(query string, args ...any) ([]*entity.ConsignmentListing, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []*entity.ConsignmentListing
	for rows.Next() {
		var l entity.ConsignmentListing
		if err := rows.Scan(listingDests(&l)...); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func listingDests(l *entity.ConsignmentListing) []any {
	return []any{
		&l.ID, &l.UserID, &l.Marca, &l.Modelo, &l.AutoAno, &l.Kilometraje, &l.Precio,
		&l.Descripcion, &l.Status, &l.AdminNotes, &l.RejectionReason, &l.ReviewedBy,
		&l.ViewCount, &l.ContactCount, &l.CreatedAt, &l.UpdatedAt,
	}
}

// AddImage agrega una foto al anuncio.
func (r *ConsignmentRepo) AddImage(img *entity.ListingImage) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO consignment_images (id, listing_id, url, is_primary, position, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		img.ID, img.ListingID, img.URL, img.IsPrimary, img.Position, img.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert listing image: %w", err)
	}
	return nil
}

// ListImages fotos del anuncio ordenadas por posición.
func (r *ConsignmentRepo) ListImages(listingID string) ([]*entity.ListingImage, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, listing_id, url, is_primary, position, created_at
		 FROM consignment_images WHERE listing_id = $1 ORDER BY position, created_at`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list listing images: %w", err)
	}
	defer rows.Close()

	var out []*entity.ListingImage
	for rows.Next() {
		var img entity.ListingImage
		if err := rows.Scan(&img.ID, &img.ListingID, &img.URL, &img.IsPrimary, &img.Position, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &img)
	}
	return out, rows.Err()
}

// GetImage obtiene una foto por ID.
func (r *ConsignmentRepo) GetImage(imageID string) (*entity.ListingImage, error) {
	var img entity.ListingImage
	err := r.q.QueryRow(context.Background(),
		`SELECT id, listing_id, url, is_primary, position, created_at
		 FROM consignment_images WHERE id = $1`,
		imageID,
	).Scan(&img.ID, &img.ListingID, &img.URL, &img.IsPrimary, &img.Position, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get listing image: %w", err)
	}
	return &img, nil
}

// DeleteImage elimina una foto.
func (r *ConsignmentRepo) DeleteImage(imageID string) error {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM consignment_images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("delete listing image: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearPrimary desmarca la foto primaria del anuncio.
func (r *ConsignmentRepo) ClearPrimary(listingID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE consignment_images SET is_primary = false WHERE listing_id = $1`, listingID)
	if err != nil {
		return fmt.Errorf("clear primary image: %w", err)
	}
	return nil
}

// SetPrimary marca la foto como primaria.
func (r *ConsignmentRepo) SetPrimary(imageID string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE consignment_images SET is_primary = true WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("set primary image: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
