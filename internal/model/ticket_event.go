package model

import "time"

const (
	TicketEventEscalated = "ticket.escalated"
	TicketEventClaimed   = "ticket.claimed"
	TicketEventResolved  = "ticket.resolved"
)

// TicketEvent is an audit row written by the event worker for every ticket
// lifecycle transition consumed from the broker.
type TicketEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	Event     string    `gorm:"size:32;not null" json:"event"`
	ActorID   uint      `gorm:"index" json:"actor_id"`
	Severity  int       `json:"severity"`
	Status    string    `gorm:"size:16" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
