package model

import "time"

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusAssigned   TicketStatus = "assigned"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// Ticket is one user's request for human psychological support, tied to a
// chat session. Invariants:
//   - AssignedResponderID is nil exactly while Status is open.
//   - Status only moves forward: open -> assigned -> in_progress -> resolved.
//   - At most one responder is ever assigned over the ticket's lifetime.
//
// Tickets are never deleted; resolution is a state, not a removal.
type Ticket struct {
	ID                  uint         `gorm:"primaryKey" json:"id"`
	UserID              uint         `gorm:"not null;index" json:"user_id"`
	SessionID           uint         `gorm:"not null;index" json:"session_id"`
	AssignedResponderID *uint        `gorm:"index" json:"assigned_responder_id,omitempty"`
	Status              TicketStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	Severity            int          `gorm:"not null" json:"severity"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
	ResolvedAt          *time.Time   `json:"resolved_at,omitempty"`
}

// Active reports whether the ticket still owns its session's handoff flow.
func (t *Ticket) Active() bool {
	return t.Status != TicketStatusResolved
}
