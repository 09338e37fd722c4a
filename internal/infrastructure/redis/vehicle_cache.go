package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/pkg/config"
)

var _ vehicles.EdgeCache = (*VehicleCache)(nil)

const (
	vehicleKeyPrefix = "vehiculo:"
	pageKeyPrefix    = "pagina:"

	// Las entradas viven mucho más que su frescura lógica: las páginas viejas
	// se sirven como último recurso cuando Postgres y Airtable fallan.
	vehicleTTL = 6 * time.Hour
	pageTTL    = 24 * time.Hour
)

// VehicleCache implementación del caché de borde (tier 1) sobre Redis.
type VehicleCache struct {
	client *goredis.Client
}

// NewVehicleCache conecta a Redis y verifica la conexión.
func NewVehicleCache(ctx context.Context, cfg config.RedisConfig) (*VehicleCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &VehicleCache{client: client}, nil
}

// Close cierra la conexión.
func (c *VehicleCache) Close() error {
	return c.client.Close()
}

// GetVehicle lee un vehículo cacheado por slug; nil si no está.
func (c *VehicleCache) GetVehicle(ctx context.Context, slug string) (*entity.Vehicle, error) {
	data, err := c.client.Get(ctx, vehicleKeyPrefix+slug).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle cache: %w", err)
	}
	var v entity.Vehicle
	if err := json.Unmarshal(data, &v); err != nil {
		// entrada corrupta: tratarla como miss
		return nil, nil
	}
	return &v, nil
}

// SetVehicle cachea un vehículo por slug.
func (c *VehicleCache) SetVehicle(ctx context.Context, v *entity.Vehicle) error {
	if v.Slug == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal vehicle: %w", err)
	}
	if err := c.client.Set(ctx, vehicleKeyPrefix+v.Slug, data, vehicleTTL).Err(); err != nil {
		return fmt.Errorf("set vehicle cache: %w", err)
	}
	return nil
}

// GetPage lee una página cacheada del catálogo; nil si no está.
func (c *VehicleCache) GetPage(ctx context.Context, key string) (*vehicles.CachedPage, error) {
	data, err := c.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get page cache: %w", err)
	}
	var page vehicles.CachedPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, nil
	}
	return &page, nil
}

// SetPage cachea una página del catálogo.
func (c *VehicleCache) SetPage(ctx context.Context, key string, page *vehicles.CachedPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}
	if err := c.client.Set(ctx, pageKeyPrefix+key, data, pageTTL).Err(); err != nil {
		return fmt.Errorf("set page cache: %w", err)
	}
	return nil
}

// InvalidatePages borra todas las páginas cacheadas (tras un sync o una
// edición de inventario).
func (c *VehicleCache) InvalidatePages(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, pageKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan page keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete page keys: %w", err)
	}
	return nil
}
