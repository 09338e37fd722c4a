package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

// SourceLister puerto de lectura masiva de la fuente de verdad (Airtable);
// pagina internamente y devuelve el inventario completo.
type SourceLister interface {
	ListAll(ctx context.Context) ([]*entity.Vehicle, error)
}

// Result resumen de una corrida de sincronización.
type Result struct {
	Fetched    int           `json:"fetched"`
	Upserted   int           `json:"upserted"`
	MarkedGone int           `json:"marked_gone"`
	Skipped    int           `json:"skipped"`
	Elapsed    time.Duration `json:"elapsed"`
}

// UseCase del worker de sincronización Airtable → inventario_cache: upsert por
// record_id, slug para filas nuevas, marcado de ausentes e invalidación del
// caché de páginas.
type UseCase struct {
	repo     repository.VehicleRepository
	source   SourceLister
	vehicles *vehicles.UseCase
	cache    vehicles.EdgeCache // puede ser nil
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.VehicleRepository, source SourceLister, vehicleUC *vehicles.UseCase, cache vehicles.EdgeCache, log zerolog.Logger) *UseCase {
	return &UseCase{repo: repo, source: source, vehicles: vehicleUC, cache: cache, log: log}
}

// Run ejecuta una sincronización completa.
func (uc *UseCase) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	remote, err := uc.source.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Fetched: len(remote)}
	present := make([]string, 0, len(remote))
	for _, rv := range remote {
		if rv.RecordID == "" || rv.OrdenCompra == "" {
			res.Skipped++
			continue
		}
		present = append(present, rv.RecordID)

		v := vehicles.Normalize(rv)
		existing, err := uc.repo.GetByRecordID(v.RecordID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.Slug != "" {
			// las filas ya conocidas conservan su slug publicado
			v.Slug = existing.Slug
		} else {
			slug, err := uc.vehicles.GenerateUniqueSlug(v.Marca, v.Modelo, v.AutoAno, v.OrdenCompra)
			if err != nil {
				return nil, err
			}
			v.Slug = slug
		}
		if err := uc.repo.Upsert(v); err != nil {
			uc.log.Error().Err(err).Str("record_id", v.RecordID).Msg("no se pudo upsertar el vehículo")
			res.Skipped++
			continue
		}
		res.Upserted++
	}

	// Una corrida que no trajo ninguna fila válida nunca marca ausentes:
	// con present vacío el barrido daría por vendido el inventario entero.
	if len(present) == 0 {
		uc.log.Warn().
			Int("fetched", res.Fetched).
			Int("skipped", res.Skipped).
			Msg("corrida sin filas válidas, se omite el marcado de ausentes")
	} else {
		gone, err := uc.repo.MarkMissing(present)
		if err != nil {
			return nil, err
		}
		res.MarkedGone = gone
	}

	if uc.cache != nil {
		cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := uc.cache.InvalidatePages(cctx); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo invalidar el caché de páginas")
		}
	}

	res.Elapsed = time.Since(start)
	uc.log.Info().
		Int("fetched", res.Fetched).
		Int("upserted", res.Upserted).
		Int("marked_gone", res.MarkedGone).
		Int("skipped", res.Skipped).
		Dur("elapsed", res.Elapsed).
		Msg("sincronización de inventario completada")
	return res, nil
}
