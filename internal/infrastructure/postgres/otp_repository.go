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

var _ repository.OTPRepository = (*OTPRepo)(nil)

// OTPRepo implementación del puerto OTPRepository sobre sms_otp_codes.
type OTPRepo struct {
	q Querier
}

// NewOTPRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOTPRepository(q Querier) *OTPRepo {
	return &OTPRepo{q: q}
}

// Create registra un envío de código.
func (r *OTPRepo) Create(a *entity.OTPAttempt) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO sms_otp_codes (id, user_id, phone, status, twilio_message_sid, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.UserID, a.Phone, a.Status, a.TwilioMessageSID, a.ExpiresAt, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert otp attempt: %w", err)
	}
	return nil
}

// LatestPending devuelve el intento pendiente más reciente y no expirado.
func (r *OTPRepo) LatestPending(userID, phone string) (*entity.OTPAttempt, error) {
	var a entity.OTPAttempt
	err := r.q.QueryRow(context.Background(),
		`SELECT id, user_id, phone, status, twilio_message_sid, expires_at, created_at, verified_at
		 FROM sms_otp_codes
		 WHERE user_id = $1 AND phone = $2 AND status = 'pending' AND expires_at > now()
		 ORDER BY created_at DESC LIMIT 1`,
		userID, phone,
	).Scan(&a.ID, &a.UserID, &a.Phone, &a.Status, &a.TwilioMessageSID, &a.ExpiresAt, &a.CreatedAt, &a.VerifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get otp attempt: %w", err)
	}
	return &a, nil
}

// MarkApproved marca el intento como aprobado.
func (r *OTPRepo) MarkApproved(id string) error {
	return r.setStatus(id, entity.OTPStatusApproved, true)
}

// MarkFailed marca el intento como fallido.
func (r *OTPRepo) MarkFailed(id string) error {
	return r.setStatus(id, entity.OTPStatusFailed, false)
}

func (r *OTPRepo) setStatus(id, status string, verified bool) error {
	query := `UPDATE sms_otp_codes SET status = $2 WHERE id = $1`
	if verified {
		query = `UPDATE sms_otp_codes SET status = $2, verified_at = now() WHERE id = $1`
	}
	cmd, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update otp attempt: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
