package app

import "mindhaven/internal/model"

// Identity is the verified caller extracted from the bearer token. Every
// authorization decision takes the Identity fresh from the request;
// nothing derived from it is cached across calls.
type Identity struct {
	UserID uint
	Role   string
}

func (id Identity) IsAdmin() bool {
	return id.Role == model.RoleAdmin
}

// IsResponder reports whether the caller may claim and resolve tickets.
func (id Identity) IsResponder() bool {
	return id.Role == model.RolePsychologist || id.Role == model.RoleAdmin
}
