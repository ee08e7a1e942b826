package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mindhaven/internal/model"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ticket *model.Ticket) error {
	if err := r.db.Create(ticket).Error; err != nil {
		return fmt.Errorf("create ticket failed: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetByID(id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := r.db.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket failed: %w", err)
	}
	return &ticket, nil
}

// GetActiveBySessionID returns the session's unresolved ticket, if any.
// A session has at most one active ticket at a time.
func (r *TicketRepository) GetActiveBySessionID(sessionID uint) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.
		Where("session_id = ? AND status <> ?", sessionID, model.TicketStatusResolved).
		Order("created_at DESC").
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active ticket failed: %w", err)
	}
	return &ticket, nil
}

// ListOpen returns unclaimed tickets, highest severity first so responders
// see the most urgent escalations on top.
func (r *TicketRepository) ListOpen() ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.
		Where("status = ?", model.TicketStatusOpen).
		Order("severity DESC, created_at ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("list open tickets failed: %w", err)
	}
	return tickets, nil
}

// Claim atomically assigns the ticket to responderID. The single
// conditional UPDATE only matches while the ticket is still open and
// unassigned, so of any number of concurrent claimers exactly one sees
// RowsAffected == 1; the rest get claimed == false and must treat the
// ticket as already handled.
func (r *TicketRepository) Claim(ticketID, responderID uint) (bool, error) {
	res := r.db.Model(&model.Ticket{}).
		Where("id = ? AND status = ? AND assigned_responder_id IS NULL", ticketID, model.TicketStatusOpen).
		Updates(map[string]interface{}{
			"assigned_responder_id": responderID,
			"status":                model.TicketStatusInProgress,
		})
	if res.Error != nil {
		return false, fmt.Errorf("claim ticket failed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkResolved moves the ticket to resolved unless it already is. Resolved
// is terminal, so the guard doubles as the invalid-transition check.
func (r *TicketRepository) MarkResolved(ticketID uint, at time.Time) (bool, error) {
	res := r.db.Model(&model.Ticket{}).
		Where("id = ? AND status <> ?", ticketID, model.TicketStatusResolved).
		Updates(map[string]interface{}{
			"status":      model.TicketStatusResolved,
			"resolved_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("resolve ticket failed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
