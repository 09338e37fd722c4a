package vehicles

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/pkg/fieldconv"
	"github.com/autos-trefa/trefa-api/pkg/slug"
)

// Título por defecto cuando ni las columnas ni el JSON crudo traen datos.
const fallbackTitle = "Auto sin título"

// Normalize deja un vehículo en la forma canónica que consume el resto de la
// app: columnas vacías rellenadas desde el JSON crudo de Airtable, sucursales
// con nombre completo, galerías de-duplicadas, título y slug garantizados.
// Se aplica a TODO vehículo que sale de cualquier tier.
func Normalize(v *entity.Vehicle) *entity.Vehicle {
	if v == nil {
		return nil
	}
	fillFromRaw(v)

	v.Ubicacion = normalizeSucursales(v.Ubicacion)
	v.GaleriaExterior = dedupe(v.GaleriaExterior)
	v.FotosExteriorURL = dedupe(append(v.FotosExteriorURL, v.GaleriaExterior...))
	v.GaleriaInterior = dedupe(v.GaleriaInterior)
	v.R2Gallery = dedupe(v.R2Gallery)

	if v.Titulo == "" {
		t := strings.TrimSpace(strings.Join(nonEmpty(v.Marca, v.Modelo, itoa(v.AutoAno)), " "))
		if t == "" {
			t = fallbackTitle
		}
		v.Titulo = t
	}
	if v.Slug == "" {
		if s := slug.ForVehicle(v.Marca, v.Modelo, v.AutoAno); s != "" {
			v.Slug = s
		} else {
			v.Slug = slug.Make(v.Titulo)
		}
	}
	return v
}

// fillFromRaw completa columnas vacías desde el JSON crudo que el sync guarda
// cuando aún no mapeó el registro. Las claves de Airtable llegan con variantes
// de mayúsculas (Marca vs marca), por eso se consultan ambas.
func fillFromRaw(v *entity.Vehicle) {
	if len(v.RawData) == 0 {
		return
	}
	raw := gjson.ParseBytes(v.RawData)

	if v.Marca == "" {
		v.Marca = rawString(raw, "marca", "Marca")
	}
	if v.Modelo == "" {
		v.Modelo = rawString(raw, "modelo", "Modelo")
	}
	if v.AutoAno == 0 {
		v.AutoAno = fieldconv.Int(rawValue(raw, "autoano", "AutoAno"))
	}
	if v.Precio.IsZero() {
		v.Precio = fieldconv.Decimal(rawValue(raw, "precio", "Precio"))
	}
	if v.Kilometraje == 0 {
		v.Kilometraje = fieldconv.Int(rawValue(raw, "kilometraje", "Kilometraje"))
	}
	if v.Transmision == "" {
		v.Transmision = fieldconv.First(rawValue(raw, "transmision", "Transmision"))
	}
	if v.Combustible == "" {
		v.Combustible = fieldconv.First(rawValue(raw, "combustible", "Combustible"))
	}
	if v.Carroceria == "" {
		v.Carroceria = fieldconv.First(rawValue(raw, "carroceria", "ClasificacionID"))
	}
	if v.Garantia == "" {
		v.Garantia = rawString(raw, "garantia", "Garantia")
	}
	if v.Titulo == "" {
		v.Titulo = rawString(raw, "titulo", "Auto")
	}
	if v.OrdenCompra == "" {
		v.OrdenCompra = rawString(raw, "ordencompra", "ordenCompra")
	}
	if v.OrdenStatus == "" {
		v.OrdenStatus = rawString(raw, "ordenstatus", "OrdenStatus")
	}
	if len(v.Ubicacion) == 0 {
		v.Ubicacion = fieldconv.StringList(rawValue(raw, "ubicacion", "Ubicacion"))
	}
	if len(v.ClasificacionID) == 0 {
		v.ClasificacionID = fieldconv.StringList(rawValue(raw, "clasificacionid", "ClasificacionID"))
	}
	if len(v.Promociones) == 0 {
		v.Promociones = fieldconv.StringList(rawValue(raw, "promociones", "Promociones"))
	}
	if len(v.GaleriaExterior) == 0 {
		v.GaleriaExterior = fieldconv.StringList(rawValue(raw, "galeriaExterior", "Foto Catalogo"))
	}
	if len(v.GaleriaInterior) == 0 {
		v.GaleriaInterior = fieldconv.StringList(rawValue(raw, "galeriaInterior", "galeria_interior"))
	}
	if v.FeatureImage == "" {
		v.FeatureImage = rawString(raw, "image_link", "feature_image")
	}
	if v.PlazoMax == 0 {
		v.PlazoMax = fieldconv.Int(rawValue(raw, "plazomax", "PlazoMax"))
	}
	if v.EngancheMin.IsZero() {
		v.EngancheMin = fieldconv.Decimal(rawValue(raw, "enganchemin", "EngancheMin"))
	}
	if v.EngancheRecomendado.IsZero() {
		v.EngancheRecomendado = fieldconv.Decimal(rawValue(raw, "enganche_recomendado", "EngancheRecomendado"))
	}
}

func rawValue(raw gjson.Result, keys ...string) interface{} {
	for _, k := range keys {
		if r := raw.Get(k); r.Exists() {
			return r.Value()
		}
	}
	return nil
}

func rawString(raw gjson.Result, keys ...string) string {
	for _, k := range keys {
		if r := raw.Get(k); r.Exists() {
			if s := strings.TrimSpace(r.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func normalizeSucursales(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if name, ok := entity.SucursalNames[strings.ToUpper(s)]; ok {
			s = name
		}
		out = append(out, s)
	}
	return out
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || !strings.HasPrefix(s, "http") {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func nonEmpty(ss ...string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
