package airtable

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/autos-trefa/trefa-api/internal/application/sync"
	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/pkg/config"
	"github.com/autos-trefa/trefa-api/pkg/fieldconv"
)

// Verificar en tiempo de compilación los puertos que implementa el cliente.
var _ vehicles.InventorySource = (*Client)(nil)
var _ sync.SourceLister = (*Client)(nil)

const (
	defaultBaseURL = "https://api.airtable.com"
	listPageSize   = 100
)

// Client adaptador de la fuente de verdad del inventario sobre la API REST de
// Airtable. Usa net/http de la librería estándar; no requiere SDK.
type Client struct {
	baseURL    string
	apiKey     string
	baseID     string
	table      string
	httpClient *http.Client
}

// NewClient construye el cliente. cfg.BaseURL vacío usa el endpoint real.
func NewClient(cfg config.AirtableConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		baseID:  cfg.BaseID,
		table:   cfg.Table,
		httpClient: &http.Client{
			// El lookup escalonado impone además su propio timeout por context.
			Timeout: 25 * time.Second,
		},
	}
}

// GetBySlug busca un registro por slug exacto.
func (c *Client) GetBySlug(ctx context.Context, slug string) (*entity.Vehicle, error) {
	return c.findOne(ctx, fmt.Sprintf(`{slug} = %s`, airtableString(slug)))
}

// GetByOrdenCompra busca un registro por orden de compra.
func (c *Client) GetByOrdenCompra(ctx context.Context, ordenCompra string) (*entity.Vehicle, error) {
	return c.findOne(ctx, fmt.Sprintf(`{ordencompra} = %s`, airtableString(ordenCompra)))
}

// GetByRecordID obtiene un registro por su ID.
func (c *Client) GetByRecordID(ctx context.Context, recordID string) (*entity.Vehicle, error) {
	body, err := c.get(ctx, c.recordURL(recordID))
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	rec := gjson.ParseBytes(body)
	if !rec.Get("id").Exists() {
		return nil, nil
	}
	return recordToVehicle(rec), nil
}

// ListAll descarga el inventario completo siguiendo la paginación por offset.
func (c *Client) ListAll(ctx context.Context) ([]*entity.Vehicle, error) {
	var out []*entity.Vehicle
	offset := ""
	for {
		u := c.tableURL() + "?" + url.Values{
			"pageSize": {fmt.Sprint(listPageSize)},
		}.Encode()
		if offset != "" {
			u += "&offset=" + url.QueryEscape(offset)
		}
		body, err := c.get(ctx, u)
		if err != nil {
			return nil, err
		}
		if body == nil {
			return nil, fmt.Errorf("airtable: tabla %s no encontrada", c.table)
		}
		parsed := gjson.ParseBytes(body)
		for _, rec := range parsed.Get("records").Array() {
			out = append(out, recordToVehicle(rec))
		}
		offset = parsed.Get("offset").String()
		if offset == "" {
			return out, nil
		}
	}
}

func (c *Client) findOne(ctx context.Context, formula string) (*entity.Vehicle, error) {
	u := c.tableURL() + "?" + url.Values{
		"filterByFormula": {formula},
		"maxRecords":      {"1"},
	}.Encode()
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	records := gjson.GetBytes(body, "records").Array()
	if len(records) == 0 {
		return nil, nil
	}
	return recordToVehicle(records[0]), nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("airtable request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("airtable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("airtable: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) tableURL() string {
	return fmt.Sprintf("%s/v0/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table))
}

func (c *Client) recordURL(recordID string) string {
	return c.tableURL() + "/" + url.PathEscape(recordID)
}

// recordToVehicle mapea un registro de Airtable a la entidad. Solo se extraen
// los identificadores y el JSON crudo de campos; el resto lo completa la
// normalización (que ya maneja variantes de claves y tipos sueltos).
func recordToVehicle(rec gjson.Result) *entity.Vehicle {
	fields := rec.Get("fields")
	v := &entity.Vehicle{
		RecordID:    rec.Get("id").String(),
		OrdenCompra: fields.Get("ordencompra").String(),
		Slug:        fields.Get("slug").String(),
		RawData:     []byte(fields.Raw),
	}
	v.Vendido = fields.Get("vendido").Bool()
	v.Separado = fields.Get("separado").Bool()
	v.OrdenStatus = fields.Get("ordenstatus").String()
	if v.OrdenStatus == "" {
		v.OrdenStatus = fields.Get("OrdenStatus").String()
	}
	v.Rezago = fields.Get("rezago").Bool()
	if t := fields.Get("ingreso_inventario").String(); t != "" {
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			v.IngresoInventario = &ts
		} else if ts, err := time.Parse("2006-01-02", t); err == nil {
			v.IngresoInventario = &ts
		}
	}
	// view_count del lado de Airtable es informativo; el contador vivo es el
	// de Postgres.
	v.ViewCount = fieldconv.Int(fields.Get("view_count").Value())
	return v
}

// airtableString escapa un valor para usarlo en filterByFormula.
func airtableString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
