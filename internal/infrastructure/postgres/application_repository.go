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

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

const applicationColumns = `id, user_id, ordencompra, term_months, down_payment,
	amount_to_finance, status, reviewed_by, review_notes, created_at, updated_at`

// ApplicationRepo implementación del puerto ApplicationRepository sobre PostgreSQL.
type ApplicationRepo struct {
	q Querier
}

// NewApplicationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewApplicationRepository(q Querier) *ApplicationRepo {
	return &ApplicationRepo{q: q}
}

// Create persiste una solicitud nueva.
func (r *ApplicationRepo) Create(a *entity.Application) error {
	query := `
		INSERT INTO financing_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.UserID, a.OrdenCompra, a.TermMonths, a.DownPayment, a.AmountToFinance,
		a.Status, a.ReviewedBy, a.ReviewNotes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *ApplicationRepo) GetByID(id string) (*entity.Application, error) {
	var a entity.Application
	err := r.q.QueryRow(context.Background(),
		`SELECT `+applicationColumns+` FROM financing_applications WHERE id = $1`, id,
	).Scan(
		&a.ID, &a.UserID, &a.OrdenCompra, &a.TermMonths, &a.DownPayment, &a.AmountToFinance,
		&a.Status, &a.ReviewedBy, &a.ReviewNotes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &a, nil
}

// Update actualiza la solicitud completa.
func (r *ApplicationRepo) Update(a *entity.Application) error {
	query := `
		UPDATE financing_applications SET ordencompra = $2, term_months = $3,
			down_payment = $4, amount_to_finance = $5, status = $6, reviewed_by = $7,
			review_notes = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		a.ID, a.OrdenCompra, a.TermMonths, a.DownPayment, a.AmountToFinance,
		a.Status, a.ReviewedBy, a.ReviewNotes, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser solicitudes de un usuario, más recientes primero.
func (r *ApplicationRepo) ListByUser(userID string, limit, offset int) ([]*entity.Application, error) {
	return r.list(
		`SELECT `+applicationColumns+` FROM financing_applications
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
}

// ListByStatus bandeja de revisión con total.
func (r *ApplicationRepo) ListByStatus(status string, limit, offset int) ([]*entity.Application, int, error) {
	list, err := r.list(
		`SELECT `+applicationColumns+` FROM financing_applications
		 WHERE status = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	var total int
	err = r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM financing_applications WHERE status = $1`, status,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return list, total, nil
}

func (r *ApplicationRepo) list(query string, args ...any) ([]*entity.Application, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*entity.Application
	for rows.Next() {
		var a entity.Application
		err := rows.Scan(
			&a.ID, &a.UserID, &a.OrdenCompra, &a.TermMonths, &a.DownPayment,
			&a.AmountToFinance, &a.Status, &a.ReviewedBy, &a.ReviewNotes, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// AddDocument adjunta un documento a la solicitud.
func (r *ApplicationRepo) AddDocument(d *entity.Document) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO application_documents (id, application_id, type, url, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.ApplicationID, d.Type, d.URL, d.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// ListDocuments documentos de una solicitud en orden de subida.
func (r *ApplicationRepo) ListDocuments(applicationID string) ([]*entity.Document, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, application_id, type, url, uploaded_at FROM application_documents
		 WHERE application_id = $1 ORDER BY uploaded_at`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		var d entity.Document
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.Type, &d.URL, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
