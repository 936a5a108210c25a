// internal/domain/vehicle/dto.go
package vehicle

// CreateRequest carries the parent fields plus the optional first history
// entries. Image URLs arrive already uploaded; the core never touches files.
type CreateRequest struct {
	Dominio string `json:"dominio" binding:"required,max=20"`
	Marca   string `json:"marca" binding:"required,max=100"`
	Modelo  string `json:"modelo" binding:"required,max=100"`
	Anio    int    `json:"anio" binding:"required,min=1900,max=2100"`
	Tipo    string `json:"tipo" binding:"max=100"`
	Chasis  string `json:"chasis" binding:"required,max=100"`
	Motor   string `json:"motor" binding:"required,max=100"`
	Cedula  string `json:"cedula" binding:"max=100"`
	Title   string `json:"title" binding:"required,max=50"`
	Chofer  string `json:"chofer" binding:"max=255"`

	Kilometros   string   `json:"kilometros"`
	Service      string   `json:"service"`
	Rodado       string   `json:"rodado"`
	Reparaciones string   `json:"reparaciones"`
	Descripcion  string   `json:"descripcion"`
	Destino      string   `json:"destino"`
	Imagenes     []string `json:"imagenes"`
}

// UpdateRequest is a flat bag of optional keys. Empty strings mean "field
// not supplied" and are skipped, never "clear this field"; that matches the
// validation contract of the rest of the API.
type UpdateRequest struct {
	Dominio string `json:"dominio" binding:"max=20"`
	Marca   string `json:"marca" binding:"max=100"`
	Modelo  string `json:"modelo" binding:"max=100"`
	Anio    *int   `json:"anio" binding:"omitempty,min=1900,max=2100"`
	Tipo    string `json:"tipo" binding:"max=100"`
	Chasis  string `json:"chasis" binding:"max=100"`
	Motor   string `json:"motor" binding:"max=100"`
	Cedula  string `json:"cedula" binding:"max=100"`
	Title   string `json:"title" binding:"max=50"`
	Chofer  string `json:"chofer" binding:"max=255"`

	Kilometros   string   `json:"kilometros"`
	Service      string   `json:"service"`
	Rodado       string   `json:"rodado"`
	Reparaciones string   `json:"reparaciones"`
	Descripcion  string   `json:"descripcion"`
	Destino      string   `json:"destino"`
	Imagenes     []string `json:"imagenes"`
}

// ListFilters is the loose filter bag for listing. Text filters are partial
// and case-insensitive; Anio is exact; Unidad scopes by the title label.
type ListFilters struct {
	Dominio string `form:"dominio"`
	Marca   string `form:"marca"`
	Modelo  string `form:"modelo"`
	Tipo    string `form:"tipo"`
	Destino string `form:"destino"`
	Anio    *int   `form:"anio"`
	Unidad  string `form:"unidad"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}
