package verification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/verification"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeProfiles struct {
	verifiedOwner *entity.Profile // dueño previo del teléfono, si existe
	verifiedPhone string
	verifiedUser  string
}

func (f *fakeProfiles) Create(*entity.Profile) error               { return nil }
func (f *fakeProfiles) GetByID(string) (*entity.Profile, error)    { return nil, nil }
func (f *fakeProfiles) GetByEmail(string) (*entity.Profile, error) { return nil, nil }
func (f *fakeProfiles) Update(*entity.Profile) error               { return nil }
func (f *fakeProfiles) Upsert(*entity.Profile) error               { return nil }
func (f *fakeProfiles) SetRole(string, string) error               { return nil }
func (f *fakeProfiles) NextAdvisor() (*entity.Profile, error)      { return nil, domain.ErrNotFound }
func (f *fakeProfiles) AssignAdvisor(string, string) error         { return nil }

func (f *fakeProfiles) List(string, int, int) ([]*entity.Profile, int, error) {
	return nil, 0, nil
}

func (f *fakeProfiles) GetByPhoneVerified(phone, excludeUserID string) (*entity.Profile, error) {
	if f.verifiedOwner != nil && f.verifiedOwner.Phone == phone && f.verifiedOwner.ID != excludeUserID {
		return f.verifiedOwner, nil
	}
	return nil, nil
}

func (f *fakeProfiles) SetPhoneVerified(userID, phone string) error {
	f.verifiedUser = userID
	f.verifiedPhone = phone
	return nil
}

type fakeAttempts struct {
	created  []*entity.OTPAttempt
	approved []string
	failed   []string
}

func (f *fakeAttempts) Create(a *entity.OTPAttempt) error {
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAttempts) LatestPending(userID, phone string) (*entity.OTPAttempt, error) {
	for i := len(f.created) - 1; i >= 0; i-- {
		a := f.created[i]
		if a.UserID == userID && a.Phone == phone && a.Status == entity.OTPStatusPending {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAttempts) MarkApproved(id string) error {
	f.approved = append(f.approved, id)
	return nil
}

func (f *fakeAttempts) MarkFailed(id string) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeVerifier struct {
	startErr  error
	checkOK   bool
	checkErr  error
	lastPhone string
}

func (f *fakeVerifier) StartVerification(_ context.Context, phone string) (string, error) {
	f.lastPhone = phone
	if f.startErr != nil {
		return "", f.startErr
	}
	return "VE123", nil
}

func (f *fakeVerifier) CheckVerification(_ context.Context, phone, _ string) (bool, error) {
	f.lastPhone = phone
	return f.checkOK, f.checkErr
}

// ──────────────────────────────────────────────────────────────────────────────
// NormalizePhone
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalizePhone_Formatos(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"8112345678", "+528112345678"},
		{"81 1234 5678", "+528112345678"},
		{"(81) 1234-5678", "+528112345678"},
		{"528112345678", "+528112345678"},
		{"+52 81 1234 5678", "+528112345678"},
		{"5218112345678", "+528112345678"}, // formato legado con 1 de celular
	}
	for _, c := range cases {
		got, err := verification.NormalizePhone(c.in)
		require.NoError(t, err, "entrada %q", c.in)
		assert.Equal(t, c.want, got, "entrada %q", c.in)
	}
}

func TestNormalizePhone_Invalidos(t *testing.T) {
	for _, in := range []string{"", "12345", "811234567890123", "sin dígitos"} {
		_, err := verification.NormalizePhone(in)
		assert.ErrorIs(t, err, domain.ErrInvalidPhone, "entrada %q", in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// SendOTP
// ──────────────────────────────────────────────────────────────────────────────

func TestSendOTP_FlujoCompleto(t *testing.T) {
	profiles := &fakeProfiles{}
	attempts := &fakeAttempts{}
	verifier := &fakeVerifier{}
	uc := verification.NewUseCase(profiles, attempts, verifier, zerolog.Nop())

	out, err := uc.SendOTP(context.Background(), "user-1", dto.SendOTPRequest{Phone: "81 1234 5678"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "+528112345678", verifier.lastPhone, "el proveedor debe recibir E.164")
	require.Len(t, attempts.created, 1)
	assert.Equal(t, entity.OTPStatusPending, attempts.created[0].Status)
	assert.Equal(t, "VE123", attempts.created[0].TwilioMessageSID)
}

func TestSendOTP_NumeroInvalidoNoEsError(t *testing.T) {
	uc := verification.NewUseCase(&fakeProfiles{}, &fakeAttempts{}, &fakeVerifier{}, zerolog.Nop())

	out, err := uc.SendOTP(context.Background(), "user-1", dto.SendOTPRequest{Phone: "123"})
	require.NoError(t, err, "el número inválido es un fallo de negocio, no un 500")
	assert.False(t, out.Success)
	assert.Equal(t, "invalid_number", out.Error)
}

func TestSendOTP_TelefonoDeOtraCuenta(t *testing.T) {
	profiles := &fakeProfiles{verifiedOwner: &entity.Profile{ID: "otro-usuario", Phone: "+528112345678"}}
	uc := verification.NewUseCase(profiles, &fakeAttempts{}, &fakeVerifier{}, zerolog.Nop())

	out, err := uc.SendOTP(context.Background(), "user-1", dto.SendOTPRequest{Phone: "8112345678"})
	require.NoError(t, err)
	assert.Equal(t, "already_verified", out.Error)
}

// El segundo envío inmediato al mismo teléfono debe toparse con el límite.
func TestSendOTP_RateLimitPorTelefono(t *testing.T) {
	attempts := &fakeAttempts{}
	uc := verification.NewUseCase(&fakeProfiles{}, attempts, &fakeVerifier{}, zerolog.Nop())

	first, err := uc.SendOTP(context.Background(), "user-1", dto.SendOTPRequest{Phone: "8112345678"})
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := uc.SendOTP(context.Background(), "user-1", dto.SendOTPRequest{Phone: "8112345678"})
	require.NoError(t, err)
	assert.Equal(t, "rate_limited", second.Error)
	assert.Len(t, attempts.created, 1, "el envío limitado no debe registrar intento")
}

func TestSendOTP_ErrorDelProveedorClasificado(t *testing.T) {
	verifier := &fakeVerifier{startErr: errors.New("Twilio: Invalid parameter `To`")}
	uc := verification.NewUseCase(&fakeProfiles{}, &fakeAttempts{}, verifier, zerolog.Nop())

	out, err := uc.SendOTP(context.Background(), "user-1", dto.SendOTPRequest{Phone: "8112345678"})
	require.NoError(t, err)
	assert.Equal(t, "invalid_number", out.Error)
}

func TestSendOTP_ErrorDesconocidoSePropaga(t *testing.T) {
	verifier := &fakeVerifier{startErr: errors.New("connection refused")}
	uc := verification.NewUseCase(&fakeProfiles{}, &fakeAttempts{}, verifier, zerolog.Nop())

	_, err := uc.SendOTP(context.Background(), "user-1", dto.SendOTPRequest{Phone: "8112345678"})
	assert.Error(t, err, "errores no clasificables deben propagarse")
}

// ──────────────────────────────────────────────────────────────────────────────
// VerifyOTP
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyOTP_CodigoCorrectoVerificaPerfil(t *testing.T) {
	profiles := &fakeProfiles{}
	attempts := &fakeAttempts{}
	verifier := &fakeVerifier{checkOK: true}
	uc := verification.NewUseCase(profiles, attempts, verifier, zerolog.Nop())

	_, err := uc.SendOTP(context.Background(), "user-1", dto.SendOTPRequest{Phone: "8112345678"})
	require.NoError(t, err)

	out, err := uc.VerifyOTP(context.Background(), "user-1", dto.VerifyOTPRequest{Phone: "8112345678", Code: "123456"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Len(t, attempts.approved, 1)
	assert.Equal(t, "user-1", profiles.verifiedUser)
	assert.Equal(t, "+528112345678", profiles.verifiedPhone)
}

func TestVerifyOTP_CodigoIncorrectoMarcaFallido(t *testing.T) {
	attempts := &fakeAttempts{}
	verifier := &fakeVerifier{checkOK: false}
	uc := verification.NewUseCase(&fakeProfiles{}, attempts, verifier, zerolog.Nop())

	_, err := uc.SendOTP(context.Background(), "user-1", dto.SendOTPRequest{Phone: "8112345678"})
	require.NoError(t, err)

	out, err := uc.VerifyOTP(context.Background(), "user-1", dto.VerifyOTPRequest{Phone: "8112345678", Code: "000000"})
	require.NoError(t, err)
	assert.Equal(t, "invalid_code", out.Error)
	assert.Len(t, attempts.failed, 1)
}

func TestVerifyOTP_SinEnvioPrevio(t *testing.T) {
	uc := verification.NewUseCase(&fakeProfiles{}, &fakeAttempts{}, &fakeVerifier{checkOK: true}, zerolog.Nop())

	out, err := uc.VerifyOTP(context.Background(), "user-1", dto.VerifyOTPRequest{Phone: "8112345678", Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "invalid_code", out.Error)
}
