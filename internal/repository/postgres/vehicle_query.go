// internal/repository/postgres/vehicle_query.go
package postgres

import (
	"fmt"
	"strings"

	"flota-service/internal/domain/vehicle"
)

// buildVehicleListQuery translates the loose filter bag into a WHERE clause
// with positional args. Text filters are partial and case-insensitive, anio
// is exact, unidad matches the title label verbatim, and a destination-text
// filter requires at least one matching entry in the destinos collection.
func buildVehicleListQuery(f *vehicle.ListFilters) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	like := func(column, value string) {
		conditions = append(conditions, fmt.Sprintf("v.%s ILIKE '%%' || $%d || '%%'", column, argPos))
		args = append(args, escapeLike(value))
		argPos++
	}

	if f.Dominio != "" {
		like("dominio", f.Dominio)
	}
	if f.Marca != "" {
		like("marca", f.Marca)
	}
	if f.Modelo != "" {
		like("modelo", f.Modelo)
	}
	if f.Tipo != "" {
		like("tipo", f.Tipo)
	}
	if f.Anio != nil {
		conditions = append(conditions, fmt.Sprintf("v.anio = $%d", argPos))
		args = append(args, *f.Anio)
		argPos++
	}
	if f.Unidad != "" {
		conditions = append(conditions, fmt.Sprintf("v.title = $%d", argPos))
		args = append(args, f.Unidad)
		argPos++
	}
	if f.Destino != "" {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM destinos d WHERE d.vehiculo_id = v.id AND d.descripcion ILIKE '%%' || $%d || '%%')", argPos))
		args = append(args, escapeLike(f.Destino))
		argPos++
	}

	if len(conditions) == 0 {
		return "TRUE", args
	}
	return strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters in filter text so the partial
// match stays literal (backslash is the default ESCAPE character).
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
