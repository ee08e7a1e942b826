package app

import (
	"time"

	"mindhaven/internal/model"
	"mindhaven/internal/repository"
)

type AppointmentService struct {
	appointmentRepo *repository.AppointmentRepository
	ticketRepo      *repository.TicketRepository
}

type RequestAppointmentInput struct {
	Caller      Identity
	TicketID    uint
	ScheduledAt time.Time
	Mode        string
}

func NewAppointmentService(
	appointmentRepo *repository.AppointmentRepository,
	ticketRepo *repository.TicketRepository,
) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		ticketRepo:      ticketRepo,
	}
}

// Request books a follow-up slot against the caller's own ticket. The
// responder on the appointment is whoever holds the ticket at booking
// time; a later reassignment does not retroactively move the appointment.
func (s *AppointmentService) Request(input RequestAppointmentInput) (*model.Appointment, error) {
	if input.Caller.UserID == 0 || input.TicketID == 0 {
		return nil, ErrInvalidInput
	}
	if input.Mode != model.AppointmentModeVideo && input.Mode != model.AppointmentModeCall {
		return nil, ErrInvalidInput
	}
	if !input.ScheduledAt.After(time.Now()) {
		return nil, ErrInvalidInput
	}

	ticket, err := s.ticketRepo.GetByID(input.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.UserID != input.Caller.UserID {
		return nil, ErrForbidden
	}

	appointment := &model.Appointment{
		UserID:      input.Caller.UserID,
		TicketID:    input.TicketID,
		ResponderID: ticket.AssignedResponderID,
		ScheduledAt: input.ScheduledAt,
		Mode:        input.Mode,
		Status:      model.AppointmentStatusRequested,
	}
	if err := s.appointmentRepo.Create(appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentService) ListByUser(userID uint) ([]model.Appointment, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.appointmentRepo.ListByUserID(userID)
}
