// internal/domain/user/dto.go
package user

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,max=255"`
	Admin    bool   `json:"admin"`
	Unidad   string `json:"unidad"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=255"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Admin    *bool   `json:"admin"`
	Unidad   *string `json:"unidad"`
	IsActive *bool   `json:"is_active"`
}

type RegisterPushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Profile is the API projection of a user. UnitFlags carries the legacy
// per-unit booleans derived from the canonical unidad.
type Profile struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Admin     bool            `json:"admin"`
	Unidad    string          `json:"unidad"`
	UnitFlags map[string]bool `json:"unit_flags"`
}

func (u *User) ToProfile() *Profile {
	return &Profile{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Admin:     u.Admin,
		Unidad:    u.Unidad.String(),
		UnitFlags: u.Unidad.Flags(),
	}
}
