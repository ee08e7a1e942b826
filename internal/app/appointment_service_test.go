package app

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"mindhaven/internal/model"
	"mindhaven/internal/repository"
	"mindhaven/internal/triage"
)

func newAppointmentFixture(t *testing.T) (*gorm.DB, *AppointmentService, *TicketService) {
	t.Helper()
	db := newTestDB(t)
	ticketSvc := newTicketService(db)
	appointmentSvc := NewAppointmentService(
		repository.NewAppointmentRepository(db),
		repository.NewTicketRepository(db),
	)
	return db, appointmentSvc, ticketSvc
}

func TestRequestAppointmentCopiesAssignedResponder(t *testing.T) {
	db, appointmentSvc, ticketSvc := newAppointmentFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	responder := Identity{UserID: 2, Role: model.RolePsychologist}
	session := createTestSession(t, db, owner.UserID)

	ticket, err := ticketSvc.Raise(owner, session.ID, triage.SeverityHigh)
	if err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if _, err := ticketSvc.Claim(responder, ticket.ID); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	appointment, err := appointmentSvc.Request(RequestAppointmentInput{
		Caller:      owner,
		TicketID:    ticket.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Mode:        model.AppointmentModeVideo,
	})
	if err != nil {
		t.Fatalf("request appointment failed: %v", err)
	}

	if appointment.ResponderID == nil || *appointment.ResponderID != responder.UserID {
		t.Fatalf("appointment must copy the assigned responder, got %v", appointment.ResponderID)
	}
	if appointment.Status != model.AppointmentStatusRequested {
		t.Fatalf("expected requested status, got %s", appointment.Status)
	}
}

func TestRequestAppointmentOnUnassignedTicket(t *testing.T) {
	db, appointmentSvc, ticketSvc := newAppointmentFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	session := createTestSession(t, db, owner.UserID)

	ticket, err := ticketSvc.Raise(owner, session.ID, triage.SeverityModerate)
	if err != nil {
		t.Fatalf("raise failed: %v", err)
	}

	appointment, err := appointmentSvc.Request(RequestAppointmentInput{
		Caller:      owner,
		TicketID:    ticket.ID,
		ScheduledAt: time.Now().Add(time.Hour),
		Mode:        model.AppointmentModeCall,
	})
	if err != nil {
		t.Fatalf("request appointment failed: %v", err)
	}
	if appointment.ResponderID != nil {
		t.Fatalf("unassigned ticket should leave the responder empty, got %v", appointment.ResponderID)
	}
}

func TestRequestAppointmentValidation(t *testing.T) {
	db, appointmentSvc, ticketSvc := newAppointmentFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	session := createTestSession(t, db, owner.UserID)
	ticket, err := ticketSvc.Raise(owner, session.ID, triage.SeverityHigh)
	if err != nil {
		t.Fatalf("raise failed: %v", err)
	}

	_, err = appointmentSvc.Request(RequestAppointmentInput{
		Caller:      owner,
		TicketID:    ticket.ID,
		ScheduledAt: time.Now().Add(time.Hour),
		Mode:        "carrier-pigeon",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown mode, got %v", err)
	}

	_, err = appointmentSvc.Request(RequestAppointmentInput{
		Caller:      owner,
		TicketID:    ticket.ID,
		ScheduledAt: time.Now().Add(-time.Hour),
		Mode:        model.AppointmentModeVideo,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for past time, got %v", err)
	}

	_, err = appointmentSvc.Request(RequestAppointmentInput{
		Caller:      Identity{UserID: 5, Role: model.RoleUser},
		TicketID:    ticket.ID,
		ScheduledAt: time.Now().Add(time.Hour),
		Mode:        model.AppointmentModeVideo,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	_, err = appointmentSvc.Request(RequestAppointmentInput{
		Caller:      owner,
		TicketID:    999,
		ScheduledAt: time.Now().Add(time.Hour),
		Mode:        model.AppointmentModeVideo,
	})
	if !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestListAppointmentsByUser(t *testing.T) {
	db, appointmentSvc, ticketSvc := newAppointmentFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	session := createTestSession(t, db, owner.UserID)
	ticket, err := ticketSvc.Raise(owner, session.ID, triage.SeverityHigh)
	if err != nil {
		t.Fatalf("raise failed: %v", err)
	}

	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(2 * time.Hour)
	for _, at := range []time.Time{later, sooner} {
		if _, err := appointmentSvc.Request(RequestAppointmentInput{
			Caller:      owner,
			TicketID:    ticket.ID,
			ScheduledAt: at,
			Mode:        model.AppointmentModeCall,
		}); err != nil {
			t.Fatalf("request appointment failed: %v", err)
		}
	}

	appointments, err := appointmentSvc.ListByUser(owner.UserID)
	if err != nil {
		t.Fatalf("list appointments failed: %v", err)
	}
	if len(appointments) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(appointments))
	}
	if appointments[0].ScheduledAt.After(appointments[1].ScheduledAt) {
		t.Fatalf("appointments must be ordered soonest first")
	}
}
