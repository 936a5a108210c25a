// internal/domain/history/entity.go
package history

import "time"

// Kind is the closed set of history collections a vehicle owns. Dispatch on
// a collection name string is replaced by this tag plus the static Spec
// table below; unknown tags are rejected at the boundary.
type Kind string

const (
	KindKilometraje Kind = "kilometraje"
	KindService     Kind = "service"
	KindReparacion  Kind = "reparacion"
	KindDestino     Kind = "destino"
	KindRodado      Kind = "rodado"
	KindDescripcion Kind = "descripcion"
	KindImagen      Kind = "imagen"
)

// Spec describes how one collection is persisted: its table, the payload
// column, whether the payload is numeric, and the column that defines
// "newest" for deleteLast/list ordering.
type Spec struct {
	Table      string
	PayloadCol string
	Numeric    bool
	OrderCol   string
}

var specs = map[Kind]Spec{
	KindKilometraje: {Table: "kilometrajes", PayloadCol: "kilometraje", Numeric: true, OrderCol: "fecha"},
	KindService:     {Table: "services", PayloadCol: "descripcion", OrderCol: "fecha"},
	KindReparacion:  {Table: "reparaciones", PayloadCol: "descripcion", OrderCol: "fecha"},
	KindDestino:     {Table: "destinos", PayloadCol: "descripcion", OrderCol: "fecha"},
	KindRodado:      {Table: "rodados", PayloadCol: "descripcion", OrderCol: "fecha"},
	KindDescripcion: {Table: "descripciones", PayloadCol: "descripcion", OrderCol: "id"},
	KindImagen:      {Table: "imagenes", PayloadCol: "url", OrderCol: "id"},
}

// SpecFor returns the persistence spec for a kind.
func SpecFor(k Kind) (Spec, bool) {
	s, ok := specs[k]
	return s, ok
}

// Kinds lists every recognized collection kind.
func Kinds() []Kind {
	return []Kind{
		KindKilometraje, KindService, KindReparacion,
		KindDestino, KindRodado, KindDescripcion, KindImagen,
	}
}

// Entry is one append-only record in one of the collections. Exactly one of
// Kilometraje/Descripcion is set depending on the kind (image URLs travel in
// Descripcion's place as Valor).
type Entry struct {
	ID          int64     `json:"id" db:"id"`
	VehiculoID  int64     `json:"vehiculo_id" db:"vehiculo_id"`
	Kind        Kind      `json:"kind"`
	Kilometraje *int64    `json:"kilometraje,omitempty"`
	Valor       *string   `json:"valor,omitempty"`
	Fecha       time.Time `json:"fecha" db:"fecha"`
}
