package repository

import (
	"fmt"

	"gorm.io/gorm"

	"mindhaven/internal/model"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(appointment *model.Appointment) error {
	if err := r.db.Create(appointment).Error; err != nil {
		return fmt.Errorf("create appointment failed: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) ListByUserID(userID uint) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := r.db.Where("user_id = ?", userID).Order("scheduled_at ASC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list appointments failed: %w", err)
	}
	return appointments, nil
}
