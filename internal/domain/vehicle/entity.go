// internal/domain/vehicle/entity.go
package vehicle

import "time"

// Vehicle is the parent row of the fleet aggregate. Title doubles as the
// organizational-unit label used for access scoping; Chofer is the driver's
// display name, plain text by design (drivers are not accounts).
type Vehicle struct {
	ID        int64     `json:"id" db:"id"`
	Dominio   string    `json:"dominio" db:"dominio"`
	Marca     string    `json:"marca" db:"marca"`
	Modelo    string    `json:"modelo" db:"modelo"`
	Anio      int       `json:"anio" db:"anio"`
	Tipo      string    `json:"tipo" db:"tipo"`
	Chasis    string    `json:"chasis" db:"chasis"`
	Motor     string    `json:"motor" db:"motor"`
	Cedula    string    `json:"cedula" db:"cedula"`
	Title     string    `json:"title" db:"title"`
	Chofer    string    `json:"chofer" db:"chofer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Doc is the plain listing projection: the parent row with its image URLs
// flattened in place of the raw join rows.
type Doc struct {
	Vehicle
	Imagenes []string `json:"imagenes"`
}

// UnitCount is one dashboard row: vehicles per organizational unit.
type UnitCount struct {
	Unidad string `json:"unidad"`
	Total  int64  `json:"total"`
}
