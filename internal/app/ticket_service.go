package app

import (
	"context"
	"log"
	"time"

	"mindhaven/internal/model"
	"mindhaven/internal/platform/rabbitmq"
	"mindhaven/internal/repository"
	"mindhaven/internal/triage"
)

// TicketEventPublisher pushes ticket lifecycle events to the broker.
// Publishing is best effort: a broker outage never fails the transition.
type TicketEventPublisher interface {
	Publish(ctx context.Context, payload rabbitmq.TicketEventPayload) error
}

type TicketService struct {
	ticketRepo  *repository.TicketRepository
	sessionRepo *repository.SessionRepository
	publisher   TicketEventPublisher
}

// StatusSnapshot is what the owner's polling client sees. It is rebuilt
// from the ticket row on every poll; ticket state can change between polls.
type StatusSnapshot struct {
	TicketID            uint               `json:"ticket_id"`
	Status              model.TicketStatus `json:"status"`
	AssignedResponderID *uint              `json:"assigned_responder_id,omitempty"`
	SessionID           uint               `json:"session_id"`
	Severity            int                `json:"severity"`
}

func NewTicketService(
	ticketRepo *repository.TicketRepository,
	sessionRepo *repository.SessionRepository,
	publisher TicketEventPublisher,
) *TicketService {
	return &TicketService{
		ticketRepo:  ticketRepo,
		sessionRepo: sessionRepo,
		publisher:   publisher,
	}
}

// Raise opens a ticket manually for the caller's own session. Severity
// outside the classifier's range defaults to the high tier, since a user
// explicitly asking for a human is treated as urgent.
func (s *TicketService) Raise(caller Identity, sessionID uint, severity int) (*model.Ticket, error) {
	if caller.UserID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != caller.UserID {
		return nil, ErrForbidden
	}
	if severity < triage.SeverityBaseline || severity > triage.SeverityHigh {
		severity = triage.SeverityHigh
	}

	existing, err := s.ticketRepo.GetActiveBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrActiveTicketExists
	}

	return s.open(session.UserID, sessionID, severity)
}

// OpenEscalation creates a ticket from the automated pipeline when a
// message crosses the escalation threshold. The caller has already checked
// that the session carries no active ticket.
func (s *TicketService) OpenEscalation(ownerID, sessionID uint, severity int) (*model.Ticket, error) {
	if ownerID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}
	return s.open(ownerID, sessionID, severity)
}

func (s *TicketService) open(ownerID, sessionID uint, severity int) (*model.Ticket, error) {
	ticket := &model.Ticket{
		UserID:    ownerID,
		SessionID: sessionID,
		Status:    model.TicketStatusOpen,
		Severity:  severity,
	}
	if err := s.ticketRepo.Create(ticket); err != nil {
		return nil, err
	}
	s.publishEvent(model.TicketEventEscalated, ticket, ownerID)
	return ticket, nil
}

// Claim assigns the ticket to the calling responder. The repository does
// the compare-and-swap; of concurrent claimers exactly one wins and the
// rest get ErrTicketAlreadyClaimed. A won claim moves the ticket straight
// to in_progress - there is no separate confirmation signal, so assigned
// and in_progress collapse into one externally observable handoff state.
func (s *TicketService) Claim(caller Identity, ticketID uint) (*model.Ticket, error) {
	if caller.UserID == 0 || ticketID == 0 {
		return nil, ErrInvalidInput
	}
	if !caller.IsResponder() {
		return nil, ErrForbidden
	}

	ticket, err := s.ticketRepo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	claimed, err := s.ticketRepo.Claim(ticketID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrTicketAlreadyClaimed
	}

	ticket, err = s.ticketRepo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(model.TicketEventClaimed, ticket, caller.UserID)
	return ticket, nil
}

// Resolve terminates the ticket. Only the assigned responder or an admin
// may resolve; resolved is terminal and records resolved_at.
func (s *TicketService) Resolve(caller Identity, ticketID uint) (*model.Ticket, error) {
	if caller.UserID == 0 || ticketID == 0 {
		return nil, ErrInvalidInput
	}

	ticket, err := s.ticketRepo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.Status == model.TicketStatusResolved {
		return nil, ErrInvalidTransition
	}
	if !caller.IsAdmin() {
		if ticket.AssignedResponderID == nil || *ticket.AssignedResponderID != caller.UserID {
			return nil, ErrForbidden
		}
	}

	resolved, err := s.ticketRepo.MarkResolved(ticketID, time.Now())
	if err != nil {
		return nil, err
	}
	if !resolved {
		// Lost a race with another resolver.
		return nil, ErrInvalidTransition
	}

	ticket, err = s.ticketRepo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(model.TicketEventResolved, ticket, caller.UserID)
	return ticket, nil
}

// Status returns the owner's view of the ticket for the polling client.
// Only the ticket's owner may query it; ownership is re-checked on every
// poll.
func (s *TicketService) Status(caller Identity, ticketID uint) (*StatusSnapshot, error) {
	if caller.UserID == 0 || ticketID == 0 {
		return nil, ErrInvalidInput
	}

	ticket, err := s.ticketRepo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.UserID != caller.UserID {
		return nil, ErrForbidden
	}

	return &StatusSnapshot{
		TicketID:            ticket.ID,
		Status:              ticket.Status,
		AssignedResponderID: ticket.AssignedResponderID,
		SessionID:           ticket.SessionID,
		Severity:            ticket.Severity,
	}, nil
}

// ListOpen returns claimable tickets for the responder dashboard, most
// severe first.
func (s *TicketService) ListOpen(caller Identity) ([]model.Ticket, error) {
	if !caller.IsResponder() {
		return nil, ErrForbidden
	}
	return s.ticketRepo.ListOpen()
}

// ActiveForSession exposes the session's unresolved ticket to the message
// router.
func (s *TicketService) ActiveForSession(sessionID uint) (*model.Ticket, error) {
	return s.ticketRepo.GetActiveBySessionID(sessionID)
}

// publishEvent sends the lifecycle event fire-and-forget: the event must
// go out even if the request context is gone, but with its own timeout.
func (s *TicketService) publishEvent(event string, ticket *model.Ticket, actorID uint) {
	if s.publisher == nil || ticket == nil {
		return
	}
	payload := rabbitmq.TicketEventPayload{
		Event:     event,
		TicketID:  ticket.ID,
		SessionID: ticket.SessionID,
		UserID:    ticket.UserID,
		ActorID:   actorID,
		Severity:  ticket.Severity,
		Status:    string(ticket.Status),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, payload); err != nil {
			log.Printf("publish ticket event %s failed: %v", event, err)
		}
	}()
}
