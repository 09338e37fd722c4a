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

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

const profileColumns = `id, email, password_hash, first_name, last_name, phone, phone_verified,
	role, asesor_id, picture_url, utm_source, utm_medium, utm_campaign, utm_term, utm_content,
	rfdm, referrer, landing_page, first_visit_at, last_assigned_at, created_at, updated_at`

// ProfileRepo implementación del puerto ProfileRepository sobre PostgreSQL (usable con pool o tx).
type ProfileRepo struct {
	q Querier
}

// NewProfileRepository construye el adaptador de persistencia para perfiles. Pasar pool o tx (Querier).
func NewProfileRepository(q Querier) *ProfileRepo {
	return &ProfileRepo{q: q}
}

// Create persiste un perfil nuevo.
func (r *ProfileRepo) Create(p *entity.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(context.Background(), query, profileArgs(p)...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByID obtiene un perfil por ID.
func (r *ProfileRepo) GetByID(id string) (*entity.Profile, error) {
	return r.getOne(`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

// GetByEmail obtiene un perfil por email.
func (r *ProfileRepo) GetByEmail(email string) (*entity.Profile, error) {
	return r.getOne(`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email)
}

// GetByPhoneVerified busca otro perfil con el teléfono ya verificado.
func (r *ProfileRepo) GetByPhoneVerified(phone, excludeUserID string) (*entity.Profile, error) {
	return r.getOne(
		`SELECT `+profileColumns+` FROM profiles WHERE phone = $1 AND phone_verified AND id <> $2`,
		phone, excludeUserID,
	)
}

// Update actualiza el perfil completo.
func (r *ProfileRepo) Update(p *entity.Profile) error {
	query := `
		UPDATE profiles SET email = $2, first_name = $3, last_name = $4, phone = $5,
			phone_verified = $6, picture_url = $7, utm_source = $8, utm_medium = $9,
			utm_campaign = $10, utm_term = $11, utm_content = $12, rfdm = $13, referrer = $14,
			landing_page = $15, first_visit_at = $16, updated_at = $17
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		p.ID, p.Email, p.FirstName, p.LastName, p.Phone, p.PhoneVerified, p.PictureURL,
		p.UTMSource, p.UTMMedium, p.UTMCampaign, p.UTMTerm, p.UTMContent, p.RFDM,
		p.Referrer, p.LandingPage, p.FirstVisitAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Upsert inserta o actualiza por ID. Camino de respaldo del get-or-create:
// si la fila ya existe solo refresca email y updated_at.
func (r *ProfileRepo) Upsert(p *entity.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query, profileArgs(p)...)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// SetPhoneVerified marca el teléfono como verificado.
func (r *ProfileRepo) SetPhoneVerified(userID, phone string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE profiles SET phone = $2, phone_verified = true, updated_at = now() WHERE id = $1`,
		userID, phone,
	)
	if err != nil {
		return fmt.Errorf("set phone verified: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetRole asigna el rol.
func (r *ProfileRepo) SetRole(userID, role string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1`,
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List lista perfiles, opcionalmente filtrados por rol.
func (r *ProfileRepo) List(role string, limit, offset int) ([]*entity.Profile, int, error) {
	where := ""
	args := []any{limit, offset}
	if role != "" {
		where = " WHERE role = $3"
		args = append(args, role)
	}
	rows, err := r.q.Query(context.Background(),
		`SELECT `+profileColumns+` FROM profiles`+where+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*entity.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	var total int
	countQuery := `SELECT count(*) FROM profiles`
	countArgs := []any{}
	if role != "" {
		countQuery += ` WHERE role = $1`
		countArgs = append(countArgs, role)
	}
	if err := r.q.QueryRow(context.Background(), countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	return out, total, nil
}

// NextAdvisor toma el asesor de ventas con asignación más antigua y le marca
// last_assigned_at en la misma sentencia (round-robin sin carreras).
func (r *ProfileRepo) NextAdvisor() (*entity.Profile, error) {
	query := `
		UPDATE profiles SET last_assigned_at = now()
		WHERE id = (
			SELECT id FROM profiles WHERE role = 'sales'
			ORDER BY last_assigned_at NULLS FIRST, created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + profileColumns
	p, err := r.getOne(query)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// AssignAdvisor fija el asesor del usuario.
func (r *ProfileRepo) AssignAdvisor(userID, advisorID string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE profiles SET asesor_id = $2, updated_at = now() WHERE id = $1`,
		userID, advisorID,
	)
	if err != nil {
		return fmt.Errorf("assign advisor: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *ProfileRepo) getOne(query string, args ...any) (*entity.Profile, error) {
	p, err := scanProfile(r.q.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	var p entity.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.FirstName, &p.LastName, &p.Phone, &p.PhoneVerified,
		&p.Role, &p.AsesorID, &p.PictureURL, &p.UTMSource, &p.UTMMedium, &p.UTMCampaign,
		&p.UTMTerm, &p.UTMContent, &p.RFDM, &p.Referrer, &p.LandingPage, &p.FirstVisitAt,
		&p.LastAssignedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func profileArgs(p *entity.Profile) []any {
	return []any{
		p.ID, p.Email, p.PasswordHash, p.FirstName, p.LastName, p.Phone, p.PhoneVerified,
		p.Role, p.AsesorID, p.PictureURL, p.UTMSource, p.UTMMedium, p.UTMCampaign,
		p.UTMTerm, p.UTMContent, p.RFDM, p.Referrer, p.LandingPage, p.FirstVisitAt,
		p.LastAssignedAt, p.CreatedAt, p.UpdatedAt,
	}
}
