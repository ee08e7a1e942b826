package model

import "time"

const (
	RoleUser         = "user"
	RolePsychologist = "psychologist"
	RoleAdmin        = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:user;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsResponder reports whether the user may claim and work crisis tickets.
func (u *User) IsResponder() bool {
	return u.Role == RolePsychologist || u.Role == RoleAdmin
}
