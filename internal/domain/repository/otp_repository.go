package repository

import "github.com/autos-trefa/trefa-api/internal/domain/entity"

// OTPRepository registro de envíos de código de verificación por SMS.
type OTPRepository interface {
	Create(a *entity.OTPAttempt) error
	// LatestPending devuelve el intento pendiente más reciente y no expirado
	// para un usuario y teléfono; nil si no hay.
	LatestPending(userID, phone string) (*entity.OTPAttempt, error)
	MarkApproved(id string) error
	MarkFailed(id string) error
}
