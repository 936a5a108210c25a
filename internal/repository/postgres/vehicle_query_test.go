package postgres

import (
	"testing"

	"flota-service/internal/domain/vehicle"

	"github.com/stretchr/testify/assert"
)

func TestBuildVehicleListQueryEmpty(t *testing.T) {
	where, args := buildVehicleListQuery(&vehicle.ListFilters{})

	assert.Equal(t, "TRUE", where)
	assert.Empty(t, args)
}

func TestBuildVehicleListQueryAllFilters(t *testing.T) {
	anio := 2020
	where, args := buildVehicleListQuery(&vehicle.ListFilters{
		Dominio: "ab1",
		Marca:   "for",
		Modelo:  "ran",
		Tipo:    "cam",
		Anio:    &anio,
		Unidad:  "UP3",
		Destino: "monte",
	})

	assert.Contains(t, where, "v.dominio ILIKE '%' || $1 || '%'")
	assert.Contains(t, where, "v.marca ILIKE '%' || $2 || '%'")
	assert.Contains(t, where, "v.modelo ILIKE '%' || $3 || '%'")
	assert.Contains(t, where, "v.tipo ILIKE '%' || $4 || '%'")
	assert.Contains(t, where, "v.anio = $5")
	assert.Contains(t, where, "v.title = $6")
	assert.Contains(t, where, "d.descripcion ILIKE '%' || $7 || '%'")
	assert.Equal(t, []interface{}{"ab1", "for", "ran", "cam", 2020, "UP3", "monte"}, args)
}

func TestBuildVehicleListQueryUnitOnly(t *testing.T) {
	where, args := buildVehicleListQuery(&vehicle.ListFilters{Unidad: "DG"})

	assert.Equal(t, "v.title = $1", where)
	assert.Equal(t, []interface{}{"DG"}, args)
}

func TestBuildVehicleListQueryDestinoUsesExists(t *testing.T) {
	where, _ := buildVehicleListQuery(&vehicle.ListFilters{Destino: "salto"})

	assert.Contains(t, where, "EXISTS (SELECT 1 FROM destinos d WHERE d.vehiculo_id = v.id")
}

func TestBuildVehicleListQueryEscapesLikeMetacharacters(t *testing.T) {
	_, args := buildVehicleListQuery(&vehicle.ListFilters{
		Dominio: "10_",
		Destino: "100%",
	})

	assert.Equal(t, []interface{}{`10\_`, `100\%`}, args)
}
