package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// VehicleResponse forma única del vehículo hacia los clientes, ya normalizada:
// las galerías siempre son arrays, las sucursales siempre nombres completos.
type VehicleResponse struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	OrdenCompra string `json:"ordencompra"`

	Titulo          string `json:"titulo"`
	Descripcion     string `json:"descripcion,omitempty"`
	MetaDescripcion string `json:"metadescripcion,omitempty"`

	Marca       string          `json:"marca"`
	Modelo      string          `json:"modelo"`
	AutoAno     int             `json:"autoano"`
	Precio      decimal.Decimal `json:"precio"`
	Kilometraje int             `json:"kilometraje"`
	Transmision string          `json:"transmision,omitempty"`
	Combustible string          `json:"combustible,omitempty"`
	Carroceria  string          `json:"carroceria,omitempty"`
	Cilindros   int             `json:"cilindros,omitempty"`

	EngancheMin            decimal.Decimal `json:"enganchemin"`
	EngancheRecomendado    decimal.Decimal `json:"enganche_recomendado"`
	MensualidadMinima      decimal.Decimal `json:"mensualidad_minima"`
	MensualidadRecomendada decimal.Decimal `json:"mensualidad_recomendada"`
	PlazoMax               int             `json:"plazomax"`

	FeatureImage string   `json:"feature_image"`
	Galeria      []string `json:"galeria"`

	Ubicacion []string `json:"ubicacion"`
	Garantia  string   `json:"garantia,omitempty"`

	Vendido     bool   `json:"vendido"`
	Separado    bool   `json:"separado"`
	OrdenStatus string `json:"ordenstatus"`

	Clasificacion []string `json:"clasificacionid,omitempty"`
	Promociones   []string `json:"promociones,omitempty"`

	ViewCount         int        `json:"view_count"`
	IngresoInventario *time.Time `json:"ingreso_inventario,omitempty"`
	Rezago            bool       `json:"rezago"`
}

// VehicleListResponse página del catálogo.
type VehicleListResponse struct {
	Items []VehicleResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// UpdateVehicleRequest campos editables desde el panel admin. Los campos de
// identidad (marca/modelo/año/precio) son de solo lectura en esta pantalla.
type UpdateVehicleRequest struct {
	MensualidadMinima      *decimal.Decimal `json:"mensualidad_minima"`
	MensualidadRecomendada *decimal.Decimal `json:"mensualidad_recomendada"`
	Ubicacion              *[]string        `json:"ubicacion"`
	Garantia               *string          `json:"garantia"`
	Carroceria             *string          `json:"carroceria"`
	Kilometraje            *int             `json:"kilometraje"`
	Transmision            *string          `json:"transmision"`
	OrdenStatus            *string          `json:"ordenstatus"`
	Promociones            *[]string        `json:"promociones"`
}

// FilterOptionsResponse valores disponibles para los filtros del catálogo.
type FilterOptionsResponse struct {
	Marcas        []string `json:"marcas"`
	Anos          []int    `json:"anos"`
	Transmisiones []string `json:"transmisiones"`
	Combustibles  []string `json:"combustibles"`
	Carrocerias   []string `json:"carrocerias"`
	Ubicaciones   []string `json:"ubicaciones"`
	Garantias     []string `json:"garantias"`
	Promociones   []string `json:"promociones"`
}
