package verification

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

// codeTTL ventana de validez de un código enviado.
const codeTTL = 10 * time.Minute

// Códigos estables de error que el cliente mapea a mensajes.
const (
	errInvalidNumber   = "invalid_number"
	errRateLimited     = "rate_limited"
	errAlreadyVerified = "already_verified"
	errInvalidCode     = "invalid_code"
)

// Verifier puerto hacia el proveedor de verificación por SMS (Twilio Verify).
type Verifier interface {
	// StartVerification dispara el envío del código y devuelve el SID.
	StartVerification(ctx context.Context, phone string) (string, error)
	// CheckVerification valida el código; true si fue aprobado.
	CheckVerification(ctx context.Context, phone, code string) (bool, error)
}

// UseCase de verificación telefónica: normalización a E.164, unicidad del
// número, límite de envíos y confirmación del código.
type UseCase struct {
	profiles repository.ProfileRepository
	attempts repository.OTPRepository
	verifier Verifier
	log      zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewUseCase construye el caso de uso.
func NewUseCase(profiles repository.ProfileRepository, attempts repository.OTPRepository, verifier Verifier, log zerolog.Logger) *UseCase {
	return &UseCase{
		profiles: profiles,
		attempts: attempts,
		verifier: verifier,
		log:      log,
		limiters: make(map[string]*rate.Limiter),
	}
}

// NormalizePhone lleva un número mexicano de 10 dígitos a E.164 (+52...).
// Acepta entradas con espacios, guiones o paréntesis y prefijos 52/+52 ya
// presentes. Devuelve ErrInvalidPhone cuando no queda un número válido.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return "+52" + d, nil
	case len(d) == 12 && strings.HasPrefix(d, "52"):
		return "+" + d, nil
	case len(d) == 13 && strings.HasPrefix(d, "521"):
		// formato legado con 1 de celular tras la lada de país
		return "+52" + d[3:], nil
	}
	return "", domain.ErrInvalidPhone
}

// limiter un envío cada 60s por teléfono, con ráfaga inicial de 1.
func (uc *UseCase) limiter(phone string) *rate.Limiter {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l, ok := uc.limiters[phone]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute), 1)
		uc.limiters[phone] = l
	}
	return l
}

// SendOTP normaliza el teléfono, verifica que no pertenezca a otra cuenta y
// dispara el envío del código. Los fallos de negocio regresan OTPResponse con
// código estable, no error.
func (uc *UseCase) SendOTP(ctx context.Context, userID string, in dto.SendOTPRequest) (*dto.OTPResponse, error) {
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return &dto.OTPResponse{Error: errInvalidNumber, Message: "Número de teléfono inválido"}, nil
	}

	owner, err := uc.profiles.GetByPhoneVerified(phone, userID)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		return &dto.OTPResponse{Error: errAlreadyVerified, Message: "Este número ya está verificado en otra cuenta"}, nil
	}

	if !uc.limiter(phone).Allow() {
		return &dto.OTPResponse{Error: errRateLimited, Message: "Demasiados intentos, espera un momento"}, nil
	}

	sid, err := uc.verifier.StartVerification(ctx, phone)
	if err != nil {
		if code := classifyProviderError(err); code != "" {
			return &dto.OTPResponse{Error: code, Message: "No se pudo enviar el código"}, nil
		}
		return nil, err
	}

	attempt := &entity.OTPAttempt{
		ID:               uuid.New().String(),
		UserID:           userID,
		Phone:            phone,
		Status:           entity.OTPStatusPending,
		TwilioMessageSID: sid,
		ExpiresAt:        time.Now().Add(codeTTL),
		CreatedAt:        time.Now(),
	}
	if err := uc.attempts.Create(attempt); err != nil {
		return nil, err
	}

	uc.log.Info().Str("user_id", userID).Msg("código de verificación enviado")
	return &dto.OTPResponse{Success: true, Message: "Código enviado"}, nil
}

// VerifyOTP confirma el código con el proveedor y marca el teléfono como
// verificado en el perfil.
func (uc *UseCase) VerifyOTP(ctx context.Context, userID string, in dto.VerifyOTPRequest) (*dto.OTPResponse, error) {
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return &dto.OTPResponse{Error: errInvalidNumber, Message: "Número de teléfono inválido"}, nil
	}

	attempt, err := uc.attempts.LatestPending(userID, phone)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return &dto.OTPResponse{Error: errInvalidCode, Message: "Código expirado o no solicitado"}, nil
	}

	ok, err := uc.verifier.CheckVerification(ctx, phone, in.Code)
	if err != nil {
		if code := classifyProviderError(err); code != "" {
			return &dto.OTPResponse{Error: code, Message: "No se pudo validar el código"}, nil
		}
		return nil, err
	}
	if !ok {
		if err := uc.attempts.MarkFailed(attempt.ID); err != nil {
			uc.log.Error().Err(err).Msg("no se pudo marcar intento fallido")
		}
		return &dto.OTPResponse{Error: errInvalidCode, Message: "Código incorrecto"}, nil
	}

	if err := uc.attempts.MarkApproved(attempt.ID); err != nil {
		return nil, err
	}
	if err := uc.profiles.SetPhoneVerified(userID, phone); err != nil {
		return nil, err
	}

	uc.log.Info().Str("user_id", userID).Msg("teléfono verificado")
	return &dto.OTPResponse{Success: true, Message: "Teléfono verificado"}, nil
}

// classifyProviderError mapea mensajes del proveedor a códigos estables; vacío
// cuando el error debe propagarse como 500.
func classifyProviderError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid parameter"), strings.Contains(msg, "not a valid phone"):
		return errInvalidNumber
	case strings.Contains(msg, "max send attempts"), strings.Contains(msg, "too many requests"), strings.Contains(msg, "429"):
		return errRateLimited
	}
	return ""
}
