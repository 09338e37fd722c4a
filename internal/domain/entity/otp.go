package entity

import "time"

// Estados del registro de verificación telefónica. El código en sí vive en el
// proveedor (Twilio Verify); aquí solo se rastrea el intento.
const (
	OTPStatusPending  = "pending"
	OTPStatusApproved = "approved"
	OTPStatusFailed   = "failed"
)

// OTPAttempt es una fila de sms_otp_codes: un envío de código a un teléfono.
type OTPAttempt struct {
	ID               string
	UserID           string
	Phone            string // ya normalizado a E.164
	Status           string
	TwilioMessageSID string
	ExpiresAt        time.Time
	CreatedAt        time.Time
	VerifiedAt       *time.Time
}
