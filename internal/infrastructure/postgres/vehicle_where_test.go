package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// ─────────────────────────────────────────────
// Construcción del WHERE del catálogo
// ─────────────────────────────────────────────

func TestBuildVehicleWhere_Base(t *testing.T) {
	where, args := buildVehicleWhere(entity.VehicleFilters{})

	assert.Equal(t, `WHERE ordenstatus = 'Comprado' AND NOT vendido`, where)
	assert.Empty(t, args)
}

func TestBuildVehicleWhere_CarroceriaConsultaAmbasColumnas(t *testing.T) {
	where, args := buildVehicleWhere(entity.VehicleFilters{
		Carroceria: []string{"SUV", "Pickup"},
	})

	// ILIKE sobre carroceria por cada valor, más solape con clasificacionid
	assert.Contains(t, where, `carroceria ILIKE $1`)
	assert.Contains(t, where, `carroceria ILIKE $2`)
	assert.Contains(t, where, `clasificacionid && $3`)
	assert.Contains(t, where, ` OR `)

	require.Len(t, args, 3)
	assert.Equal(t, "%SUV%", args[0])
	assert.Equal(t, "%Pickup%", args[1])
	assert.Equal(t, []string{"SUV", "Pickup"}, args[2])
}

func TestBuildVehicleWhere_FiltrosCombinados(t *testing.T) {
	where, args := buildVehicleWhere(entity.VehicleFilters{
		Marca:        []string{"Nissan"},
		Carroceria:   []string{"Sedán"},
		HideSeparado: true,
	})

	assert.Contains(t, where, `NOT separado`)
	assert.Contains(t, where, `marca = ANY($1)`)
	assert.Contains(t, where, `carroceria ILIKE $2`)
	assert.Contains(t, where, `clasificacionid && $3`)
	assert.Len(t, args, 3)
}
