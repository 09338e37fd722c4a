package intelimotor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/autos-trefa/trefa-api/internal/application/valuation"
	"github.com/autos-trefa/trefa-api/pkg/config"
)

var _ valuation.Pricer = (*Client)(nil)

const defaultBaseURL = "https://app.intelimotor.com/api"

// Client adaptador del proveedor de valuación sobre la API REST de
// Intelimotor (solo lectura). Usa net/http de la librería estándar.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewClient construye el cliente. cfg.BaseURL vacío usa el endpoint real.
func NewClient(cfg config.IntelimotorConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Brands catálogo de marcas.
func (c *Client) Brands(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/brands", nil)
	if err != nil {
		return nil, err
	}
	return names(body), nil
}

// Models catálogo de modelos de una marca.
func (c *Client) Models(ctx context.Context, brand string) ([]string, error) {
	body, err := c.get(ctx, "/models", url.Values{"brand": {brand}})
	if err != nil {
		return nil, err
	}
	return names(body), nil
}

// Years años disponibles de un modelo.
func (c *Client) Years(ctx context.Context, brand, model string) ([]int, error) {
	body, err := c.get(ctx, "/years", url.Values{"brand": {brand}, "model": {model}})
	if err != nil {
		return nil, err
	}
	var out []int
	for _, r := range gjson.GetBytes(body, "data").Array() {
		if y := int(r.Get("name").Int()); y > 0 {
			out = append(out, y)
		}
	}
	return out, nil
}

// Quote cotiza el vehículo y devuelve las bandas de mercado.
func (c *Client) Quote(ctx context.Context, marca, modelo string, ano, kilometraje int, version string) (*valuation.Quote, error) {
	params := url.Values{
		"brand": {marca},
		"model": {modelo},
		"year":  {fmt.Sprint(ano)},
		"kms":   {fmt.Sprint(kilometraje)},
	}
	if version != "" {
		params.Set("trim", version)
	}
	body, err := c.get(ctx, "/valuations", params)
	if err != nil {
		return nil, err
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		data = gjson.ParseBytes(body)
	}
	return &valuation.Quote{
		SuggestedOffer:  decimal.NewFromFloat(data.Get("suggestedOffer").Float()),
		HighMarketValue: decimal.NewFromFloat(data.Get("highMarketValue").Float()),
		LowMarketValue:  decimal.NewFromFloat(data.Get("lowMarketValue").Float()),
		AvgDaysOnMarket: int(data.Get("avgDaysOnMarket").Int()),
		AvgKms:          int(data.Get("avgKms").Int()),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)
	params.Set("apiSecret", c.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("intelimotor request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intelimotor: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("intelimotor: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intelimotor: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func names(body []byte) []string {
	var out []string
	for _, r := range gjson.GetBytes(body, "data").Array() {
		if n := r.Get("name").String(); n != "" {
			out = append(out, n)
		}
	}
	return out
}
