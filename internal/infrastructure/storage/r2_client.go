package storage

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/autos-trefa/trefa-api/internal/application/photos"
	"github.com/autos-trefa/trefa-api/pkg/config"
)

var _ photos.Uploader = (*R2Client)(nil)

// R2Client adaptador de object storage S3-compatible (Cloudflare R2) con
// firma AWS SigV4 sobre net/http; no requiere el SDK de AWS.
type R2Client struct {
	endpoint      string
	bucket        string
	accessKey     string
	secretKey     string
	publicBaseURL string
	httpClient    *http.Client
	now           func() time.Time
}

// NewR2Client construye el cliente.
func NewR2Client(cfg config.StorageConfig) *R2Client {
	return &R2Client{
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		bucket:        cfg.Bucket,
		accessKey:     cfg.AccessKey,
		secretKey:     cfg.SecretKey,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		now:           time.Now,
	}
}

// Upload sube el objeto y devuelve su URL pública.
func (c *R2Client) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := c.do(ctx, http.MethodPut, key, contentType, data); err != nil {
		return "", err
	}
	return c.publicBaseURL + "/" + key, nil
}

// Delete borra el objeto; borrar uno inexistente no es error (S3 responde 204).
func (c *R2Client) Delete(ctx context.Context, key string) error {
	return c.do(ctx, http.MethodDelete, key, "", nil)
}

func (c *R2Client) do(ctx context.Context, method, key, contentType string, data []byte) error {
	u := fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, encodeKey(key))
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("storage request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.sign(req, data)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("storage: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// sign firma la petición con AWS Signature V4 (región auto, servicio s3, como
// exige R2).
func (c *R2Client) sign(req *http.Request, payload []byte) {
	const (
		region  = "auto"
		service = "s3"
	)
	now := c.now().UTC()
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	payloadHash := sha256.Sum256(payload)
	payloadHex := hex.EncodeToString(payloadHash[:])

	req.Header.Set("Host", req.URL.Host)
	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Content-Sha256", payloadHex)

	signedHeaders := []string{"host", "x-amz-content-sha256", "x-amz-date"}
	var canonHeaders strings.Builder
	for _, h := range signedHeaders {
		canonHeaders.WriteString(h)
		canonHeaders.WriteString(":")
		if h == "host" {
			canonHeaders.WriteString(req.URL.Host)
		} else {
			canonHeaders.WriteString(req.Header.Get(h))
		}
		canonHeaders.WriteString("\n")
	}

	canonicalRequest := strings.Join([]string{
		req.Method,
		req.URL.EscapedPath(),
		req.URL.RawQuery,
		canonHeaders.String(),
		strings.Join(signedHeaders, ";"),
		payloadHex,
	}, "\n")
	crHash := sha256.Sum256([]byte(canonicalRequest))

	scope := strings.Join([]string{dateStamp, region, service, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		hex.EncodeToString(crHash[:]),
	}, "\n")

	kDate := hmacSHA256([]byte("AWS4"+c.secretKey), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	kSigning := hmacSHA256(kService, "aws4_request")
	signature := hex.EncodeToString(hmacSHA256(kSigning, stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		c.accessKey, scope, strings.Join(signedHeaders, ";"), signature,
	))
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

// encodeKey escapa cada segmento de la llave conservando las diagonales.
func encodeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
