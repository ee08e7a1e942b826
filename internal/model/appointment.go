package model

import "time"

const (
	AppointmentModeVideo = "video"
	AppointmentModeCall  = "call"

	AppointmentStatusRequested = "requested"
)

// Appointment books a scheduled synchronous call against a ticket. The
// responder id is copied from the ticket at creation time and does not
// track later reassignment. No availability checking is done here;
// conflict resolution is a responder-side process.
type Appointment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TicketID    uint      `gorm:"not null;index" json:"ticket_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	ResponderID *uint     `gorm:"index" json:"responder_id,omitempty"`
	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	Mode        string    `gorm:"size:16;not null" json:"mode"`
	Status      string    `gorm:"size:16;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
