package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de orden relevantes del inventario. Solo los vehículos "Comprado"
// son visibles en el catálogo público.
const (
	OrdenStatusComprado = "Comprado"
	OrdenStatusVendido  = "Vendido"
)

// Sucursales: el upstream usa códigos cortos; la app siempre expone el nombre.
var SucursalNames = map[string]string{
	"MTY":  "Monterrey",
	"GPE":  "Guadalupe",
	"TMPS": "Reynosa",
	"COAH": "Saltillo",
}

// Vehicle es la fila denormalizada de inventario_cache: espejo del inventario
// en Airtable más los campos propios de la app (slug, contadores, imágenes R2).
// Los campos de imagen conviven en tres generaciones: los legacy de Airtable
// (FeatureImage, GaleriaExterior...), los sincronizados (FotosExteriorURL) y
// los R2 subidos desde el panel admin, que siempre tienen prioridad.
type Vehicle struct {
	ID          int64
	Slug        string
	OrdenCompra string
	RecordID    string // id del registro en Airtable; vacío si la fila es local

	Titulo          string
	Descripcion     string
	MetaDescripcion string

	Marca       string
	Modelo      string
	AutoAno     int
	Precio      decimal.Decimal
	Kilometraje int
	Transmision string
	Combustible string
	Carroceria  string
	Cilindros   int
	Motor       string

	// Parámetros de financiamiento por vehículo. EngancheMin en cero significa
	// "usar la regla general del 25%".
	EngancheMin            decimal.Decimal
	EngancheRecomendado    decimal.Decimal
	MensualidadMinima      decimal.Decimal
	MensualidadRecomendada decimal.Decimal
	PlazoMax               int

	// Imágenes R2 (prioridad máxima, subidas vía panel admin).
	R2FeatureImage string
	R2Gallery      []string
	UseR2Images    bool
	// Imágenes legacy.
	FeatureImage     string
	FeatureImageURL  string
	GaleriaExterior  []string
	FotosExteriorURL []string
	GaleriaInterior  []string
	FotosInteriorURL []string

	Ubicacion []string // nombres de sucursal ya normalizados
	Garantia  string

	Vendido     bool
	Separado    bool
	OrdenStatus string

	ClasificacionID []string
	Promociones     []string

	ViewCount         int
	IngresoInventario *time.Time
	Rezago            bool

	// RawData conserva el JSON crudo de Airtable para los registros cuyas
	// columnas aún no fueron mapeadas por el sync.
	RawData []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayImage devuelve la imagen principal respetando la prioridad R2 →
// legacy → primera de galería. Vacío si el vehículo no tiene fotos.
func (v *Vehicle) DisplayImage() string {
	if v.R2FeatureImage != "" {
		return v.R2FeatureImage
	}
	if v.FeatureImage != "" {
		return v.FeatureImage
	}
	if v.FeatureImageURL != "" {
		return v.FeatureImageURL
	}
	if len(v.FotosExteriorURL) > 0 {
		return v.FotosExteriorURL[0]
	}
	if len(v.GaleriaExterior) > 0 {
		return v.GaleriaExterior[0]
	}
	return ""
}

// Gallery devuelve la galería visible: la R2 cuando existe, si no la unión
// de-duplicada de las fuentes legacy en orden de llegada.
func (v *Vehicle) Gallery() []string {
	if v.UseR2Images && len(v.R2Gallery) > 0 {
		return v.R2Gallery
	}
	if len(v.R2Gallery) > 0 {
		return v.R2Gallery
	}
	seen := make(map[string]struct{})
	var out []string
	for _, src := range [][]string{v.FotosExteriorURL, v.GaleriaExterior, v.GaleriaInterior} {
		for _, u := range src {
			if u == "" {
				continue
			}
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

// VehicleFilters son los filtros del catálogo público.
type VehicleFilters struct {
	Search       string
	Marca        []string
	AutoAno      []int
	Promociones  []string
	Garantia     []string
	Carroceria   []string
	Transmision  []string
	Combustible  []string
	Ubicacion    []string
	HideSeparado bool
	MinPrecio    decimal.Decimal
	MaxPrecio    decimal.Decimal
	MinEnganche  decimal.Decimal
	MaxEnganche  decimal.Decimal
	OrderBy      string // "price-asc", "year-desc", "mileage-asc", "relevance"...
}

// FilterOptions agrega los valores distintos disponibles para los filtros.
type FilterOptions struct {
	Marcas        []string
	Anos          []int
	Transmisiones []string
	Combustibles  []string
	Carrocerias   []string
	Ubicaciones   []string
	Garantias     []string
	Promociones   []string
}
