package vehicles

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
	"github.com/autos-trefa/trefa-api/pkg/slug"
)

const (
	// PageSize del catálogo público.
	PageSize = 21
	// pageTTL frescura de una página cacheada.
	pageTTL = 5 * time.Minute
	// tier1Timeout presupuesto del caché de borde antes de caer al tier 2.
	tier1Timeout = 5 * time.Second
)

// UseCase resuelve vehículos con el lookup escalonado de tres niveles:
// caché de borde → Postgres → Airtable (fuente de verdad). Cada tier que
// falla se registra y se cae al siguiente; solo el agotamiento total devuelve
// ErrNotFound.
type UseCase struct {
	repo   repository.VehicleRepository
	cache  EdgeCache       // nil = sin tier 1
	source InventorySource // nil = sin tier 3
	log    zerolog.Logger
}

// NewUseCase construye el caso de uso. cache y source pueden ser nil y el
// lookup degrada a los tiers disponibles.
func NewUseCase(repo repository.VehicleRepository, cache EdgeCache, source InventorySource, log zerolog.Logger) *UseCase {
	return &UseCase{repo: repo, cache: cache, source: source, log: log}
}

// GetBySlug resuelve un vehículo con máxima disponibilidad.
//
// TIER 1: caché de borde (timeout 5 s, lo más rápido)
// TIER 2: Postgres por slug exacto y luego fuzzy ILIKE
// TIER 3: Airtable (fuente de verdad, siempre tiene el slug)
//
// Si el tier 2 devuelve una fila incompleta (sin título real, precio cero o
// sin foto) se intenta enriquecer desde el tier 3 aunque ya haya resultado.
func (uc *UseCase) GetBySlug(ctx context.Context, slugStr string) (*entity.Vehicle, error) {
	if slugStr == "" {
		return nil, domain.ErrInvalidInput
	}

	if uc.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, tier1Timeout)
		v, err := uc.cache.GetVehicle(cacheCtx, slugStr)
		cancel()
		if err != nil {
			uc.log.Warn().Err(err).Str("slug", slugStr).Msg("tier 1 falló, siguiendo con Postgres")
		} else if v != nil {
			return Normalize(v), nil
		}
	}

	v, err := uc.repo.GetBySlug(slugStr)
	if err != nil {
		uc.log.Warn().Err(err).Str("slug", slugStr).Msg("tier 2 falló en slug exacto")
	}
	if v == nil && err == nil {
		v, err = uc.repo.GetBySlugFuzzy(slugStr)
		if err != nil {
			uc.log.Warn().Err(err).Str("slug", slugStr).Msg("tier 2 falló en búsqueda fuzzy")
		}
	}
	if v != nil {
		v = Normalize(v)
		if !isComplete(v) && uc.source != nil {
			if enriched := uc.enrich(ctx, v); enriched != nil {
				v = enriched
			}
		}
		uc.cacheVehicle(ctx, v)
		return v, nil
	}

	if uc.source != nil {
		av, err := uc.source.GetBySlug(ctx, slugStr)
		if err != nil {
			uc.log.Error().Err(err).Str("slug", slugStr).Msg("tier 3 (Airtable) falló")
		} else if av != nil {
			av = Normalize(av)
			uc.cacheVehicle(ctx, av)
			return av, nil
		}
	}

	// Último recurso: el slug puede ser en realidad una orden de compra.
	if strings.HasPrefix(slugStr, "OC") || strings.HasPrefix(slugStr, "ID") {
		return uc.GetByOrdenCompra(ctx, slugStr)
	}

	return nil, domain.ErrNotFound
}

// GetByOrdenCompra busca por orden de compra: Postgres y después Airtable,
// con el mismo enriquecimiento de filas incompletas.
func (uc *UseCase) GetByOrdenCompra(ctx context.Context, ordenCompra string) (*entity.Vehicle, error) {
	if ordenCompra == "" {
		return nil, domain.ErrInvalidInput
	}
	v, err := uc.repo.GetByOrdenCompra(ordenCompra)
	if err != nil {
		uc.log.Warn().Err(err).Str("ordencompra", ordenCompra).Msg("lookup en Postgres falló")
	}
	if v != nil {
		v = Normalize(v)
		if !isComplete(v) && uc.source != nil {
			if enriched := uc.enrich(ctx, v); enriched != nil {
				v = enriched
			}
		}
		return v, nil
	}
	if uc.source != nil {
		av, err := uc.source.GetByOrdenCompra(ctx, ordenCompra)
		if err != nil {
			uc.log.Error().Err(err).Str("ordencompra", ordenCompra).Msg("fallback a Airtable falló")
		} else if av != nil {
			return Normalize(av), nil
		}
	}
	return nil, domain.ErrNotFound
}

// enrich reemplaza una fila incompleta con la versión de Airtable cuando esa
// versión sí está completa; conserva el slug local para no romper rutas.
func (uc *UseCase) enrich(ctx context.Context, v *entity.Vehicle) *entity.Vehicle {
	var av *entity.Vehicle
	var err error
	switch {
	case v.RecordID != "":
		av, err = uc.source.GetByRecordID(ctx, v.RecordID)
	case v.OrdenCompra != "":
		av, err = uc.source.GetByOrdenCompra(ctx, v.OrdenCompra)
	default:
		return nil
	}
	if err != nil {
		uc.log.Warn().Err(err).Str("ordencompra", v.OrdenCompra).Msg("enriquecimiento desde Airtable falló")
		return nil
	}
	if av == nil {
		return nil
	}
	av = Normalize(av)
	if !isComplete(av) {
		return nil
	}
	if v.Slug != "" {
		av.Slug = v.Slug
	}
	return av
}

// isComplete: título real, precio positivo y al menos una foto no placeholder.
func isComplete(v *entity.Vehicle) bool {
	if v == nil {
		return false
	}
	if v.Titulo == "" || v.Titulo == fallbackTitle {
		return false
	}
	if !v.Precio.IsPositive() {
		return false
	}
	img := v.DisplayImage()
	return img != "" && !strings.Contains(img, "placeholder")
}

// List devuelve una página del catálogo. Orden de intentos: página fresca en
// caché → Postgres (y re-cacheo) → página vieja en caché como último recurso.
func (uc *UseCase) List(ctx context.Context, filters entity.VehicleFilters, page int) ([]*entity.Vehicle, int, error) {
	if page < 1 {
		page = 1
	}
	key := pageKey(filters, page)

	var stale *CachedPage
	if uc.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, tier1Timeout)
		cached, err := uc.cache.GetPage(cacheCtx, key)
		cancel()
		if err != nil {
			uc.log.Warn().Err(err).Msg("lectura de página cacheada falló")
		} else if cached != nil {
			if time.Since(cached.StoredAt) < pageTTL {
				return cached.Vehicles, cached.Total, nil
			}
			stale = cached
		}
	}

	offset := (page - 1) * PageSize
	list, total, err := uc.repo.List(filters, PageSize, offset)
	if err == nil {
		for i, v := range list {
			list[i] = Normalize(v)
		}
		if uc.cache != nil {
			cacheCtx, cancel := context.WithTimeout(ctx, tier1Timeout)
			if serr := uc.cache.SetPage(cacheCtx, key, &CachedPage{Vehicles: list, Total: total, StoredAt: time.Now()}); serr != nil {
				uc.log.Warn().Err(serr).Msg("escritura de página cacheada falló")
			}
			cancel()
		}
		return list, total, nil
	}

	uc.log.Error().Err(err).Msg("todas las fuentes vivas fallaron, intentando caché viejo")
	if stale != nil {
		return stale.Vehicles, stale.Total, nil
	}
	return nil, 0, err
}

// ListSlugs para sitemaps.
func (uc *UseCase) ListSlugs() ([]string, error) {
	return uc.repo.ListSlugs()
}

// FilterOptions agregados de filtros para el catálogo.
func (uc *UseCase) FilterOptions() (*dto.FilterOptionsResponse, error) {
	opts, err := uc.repo.FilterOptions()
	if err != nil {
		return nil, err
	}
	return &dto.FilterOptionsResponse{
		Marcas:        opts.Marcas,
		Anos:          opts.Anos,
		Transmisiones: opts.Transmisiones,
		Combustibles:  opts.Combustibles,
		Carrocerias:   opts.Carrocerias,
		Ubicaciones:   opts.Ubicaciones,
		Garantias:     opts.Garantias,
		Promociones:   opts.Promociones,
	}, nil
}

// RecordView incrementa el contador de vistas (fire-and-forget: el error solo
// se loggea) y devuelve el vehículo con el contador ya incrementado para
// feedback inmediato.
func (uc *UseCase) RecordView(ctx context.Context, slugStr string) (*entity.Vehicle, error) {
	v, err := uc.GetBySlug(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if v.OrdenCompra != "" {
		go func(oc string) {
			if err := uc.repo.IncrementViewCount(oc); err != nil {
				uc.log.Error().Err(err).Str("ordencompra", oc).Msg("incremento de vistas falló")
			}
		}(v.OrdenCompra)
	}
	v.ViewCount++
	return v, nil
}

// GenerateUniqueSlug produce marca-modelo-año y resuelve colisiones con
// sufijo numérico: mazda-3i-2024, mazda-3i-2024-2, ...
func (uc *UseCase) GenerateUniqueSlug(marca, modelo string, ano int, excludeOrdenCompra string) (string, error) {
	base := slug.ForVehicle(marca, modelo, ano)
	if base == "" {
		return "", domain.ErrInvalidInput
	}
	existing, err := uc.repo.ListSlugsLike(base, excludeOrdenCompra)
	if err != nil {
		// Sin acceso a la DB el base es la mejor apuesta.
		uc.log.Warn().Err(err).Str("base", base).Msg("consulta de slugs existentes falló")
		return base, nil
	}
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base, nil
	}
	for n := 2; ; n++ {
		candidate := slug.WithSuffix(base, n)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}

// UpdateEditable aplica el patch del panel admin sobre el allow-list de
// campos e invalida las entradas de caché afectadas.
func (uc *UseCase) UpdateEditable(ctx context.Context, ordenCompra string, in dto.UpdateVehicleRequest) (*entity.Vehicle, error) {
	v, err := uc.repo.GetByOrdenCompra(ordenCompra)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if in.MensualidadMinima != nil {
		v.MensualidadMinima = *in.MensualidadMinima
	}
	if in.MensualidadRecomendada != nil {
		v.MensualidadRecomendada = *in.MensualidadRecomendada
	}
	if in.Ubicacion != nil {
		v.Ubicacion = normalizeSucursales(*in.Ubicacion)
	}
	if in.Garantia != nil {
		v.Garantia = *in.Garantia
	}
	if in.Carroceria != nil {
		v.Carroceria = *in.Carroceria
	}
	if in.Kilometraje != nil {
		v.Kilometraje = *in.Kilometraje
	}
	if in.Transmision != nil {
		v.Transmision = *in.Transmision
	}
	if in.OrdenStatus != nil {
		v.OrdenStatus = *in.OrdenStatus
	}
	if in.Promociones != nil {
		v.Promociones = *in.Promociones
	}
	v.UpdatedAt = time.Now()
	if err := uc.repo.UpdateEditable(v); err != nil {
		return nil, err
	}
	uc.cacheVehicle(ctx, v)
	if uc.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, tier1Timeout)
		if err := uc.cache.InvalidatePages(cacheCtx); err != nil {
			uc.log.Warn().Err(err).Msg("invalidación de páginas cacheadas falló")
		}
		cancel()
	}
	return v, nil
}

func (uc *UseCase) cacheVehicle(ctx context.Context, v *entity.Vehicle) {
	if uc.cache == nil || v == nil || v.Slug == "" {
		return
	}
	cacheCtx, cancel := context.WithTimeout(ctx, tier1Timeout)
	defer cancel()
	if err := uc.cache.SetVehicle(cacheCtx, v); err != nil {
		uc.log.Warn().Err(err).Str("slug", v.Slug).Msg("escritura en caché de borde falló")
	}
}

// pageKey serializa filtros+página de forma determinista para el caché.
func pageKey(f entity.VehicleFilters, page int) string {
	sort.Strings(f.Marca)
	sort.Ints(f.AutoAno)
	sort.Strings(f.Promociones)
	sort.Strings(f.Garantia)
	sort.Strings(f.Carroceria)
	sort.Strings(f.Transmision)
	sort.Strings(f.Combustible)
	sort.Strings(f.Ubicacion)
	b, _ := json.Marshal(struct {
		F entity.VehicleFilters
		P int
	}{f, page})
	return "vehicles:" + string(b)
}

// ToResponse convierte la entidad ya normalizada al DTO público.
func ToResponse(v *entity.Vehicle) *dto.VehicleResponse {
	if v == nil {
		return nil
	}
	return &dto.VehicleResponse{
		ID:                     v.ID,
		Slug:                   v.Slug,
		OrdenCompra:            v.OrdenCompra,
		Titulo:                 v.Titulo,
		Descripcion:            v.Descripcion,
		MetaDescripcion:        v.MetaDescripcion,
		Marca:                  v.Marca,
		Modelo:                 v.Modelo,
		AutoAno:                v.AutoAno,
		Precio:                 v.Precio,
		Kilometraje:            v.Kilometraje,
		Transmision:            v.Transmision,
		Combustible:            v.Combustible,
		Carroceria:             v.Carroceria,
		Cilindros:              v.Cilindros,
		EngancheMin:            v.EngancheMin,
		EngancheRecomendado:    v.EngancheRecomendado,
		MensualidadMinima:      v.MensualidadMinima,
		MensualidadRecomendada: v.MensualidadRecomendada,
		PlazoMax:               v.PlazoMax,
		FeatureImage:           v.DisplayImage(),
		Galeria:                v.Gallery(),
		Ubicacion:              v.Ubicacion,
		Garantia:               v.Garantia,
		Vendido:                v.Vendido,
		Separado:               v.Separado,
		OrdenStatus:            v.OrdenStatus,
		Clasificacion:          v.ClasificacionID,
		Promociones:            v.Promociones,
		ViewCount:              v.ViewCount,
		IngresoInventario:      v.IngresoInventario,
		Rezago:                 v.Rezago,
	}
}
