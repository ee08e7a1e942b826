package repository

import (
	"fmt"

	"gorm.io/gorm"

	"mindhaven/internal/model"
)

type TicketEventRepository struct {
	db *gorm.DB
}

func NewTicketEventRepository(db *gorm.DB) *TicketEventRepository {
	return &TicketEventRepository{db: db}
}

func (r *TicketEventRepository) Create(event *model.TicketEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create ticket event failed: %w", err)
	}
	return nil
}

func (r *TicketEventRepository) ListByTicketID(ticketID uint) ([]model.TicketEvent, error) {
	var events []model.TicketEvent
	if err := r.db.Where("ticket_id = ?", ticketID).Order("created_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list ticket events failed: %w", err)
	}
	return events, nil
}
