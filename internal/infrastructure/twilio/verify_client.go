package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/autos-trefa/trefa-api/internal/application/verification"
	"github.com/autos-trefa/trefa-api/pkg/config"
)

var _ verification.Verifier = (*VerifyClient)(nil)

const defaultBaseURL = "https://verify.twilio.com"

// VerifyClient adaptador del proveedor de verificación por SMS sobre la API
// REST de Twilio Verify. Usa net/http de la librería estándar; no requiere SDK.
type VerifyClient struct {
	baseURL    string
	accountSID string
	authToken  string
	serviceSID string
	httpClient *http.Client
}

// NewVerifyClient construye el cliente. cfg.BaseURL vacío usa el endpoint real.
func NewVerifyClient(cfg config.TwilioConfig) *VerifyClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &VerifyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		serviceSID: cfg.VerifyServiceSID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// StartVerification dispara el envío del código por SMS y devuelve el SID de
// la verificación.
func (c *VerifyClient) StartVerification(ctx context.Context, phone string) (string, error) {
	body, err := c.post(ctx, "/Verifications", url.Values{
		"To":      {phone},
		"Channel": {"sms"},
	})
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "sid").String(), nil
}

// CheckVerification valida el código; true cuando el estado es approved.
func (c *VerifyClient) CheckVerification(ctx context.Context, phone, code string) (bool, error) {
	body, err := c.post(ctx, "/VerificationCheck", url.Values{
		"To":   {phone},
		"Code": {code},
	})
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(body, "status").String() == "approved", nil
}

func (c *VerifyClient) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	u := fmt.Sprintf("%s/v2/Services/%s%s", c.baseURL, c.serviceSID, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twilio request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("twilio: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("twilio: status %d: %s", resp.StatusCode, msg)
	}
	return body, nil
}
