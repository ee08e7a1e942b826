package model

import "time"

const (
	MessageRoleUser         = "user"
	MessageRoleAssistant    = "assistant"
	MessageRolePsychologist = "psychologist"
)

// Message is an append-only transcript record. Rows are never updated or
// deleted; transcript order is created_at then id ascending.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Role      string    `gorm:"size:16;not null;index" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
