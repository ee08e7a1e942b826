package app

import (
	"context"
	"strings"
	"time"

	"mindhaven/internal/model"
	"mindhaven/internal/repository"
	"mindhaven/internal/triage"
)

// TranscriptCache keeps read transcripts out of the hot path. Message
// content only - never authorization results.
type TranscriptCache interface {
	GetTranscript(ctx context.Context, sessionID uint) ([]model.Message, bool, error)
	SetTranscript(ctx context.Context, sessionID uint, messages []model.Message) error
	DeleteTranscript(ctx context.Context, sessionID uint) error
	MarkDirty(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}

// ChatService routes messages into sessions. Who may append which role is
// decided in one place, authorizeAppend, against the session and its
// active ticket as they are right now - the checks run fresh on every
// call because the ticket can change between two requests.
type ChatService struct {
	sessionRepo     *repository.SessionRepository
	messageRepo     *repository.MessageRepository
	ticketService   *TicketService
	transcriptCache TranscriptCache
}

type CreateSessionInput struct {
	UserID uint
	Title  string
}

type SendMessageInput struct {
	Author    Identity
	SessionID uint
	Role      string
	Content   string
}

// SendMessageResult carries the stored messages plus the triage outcome
// for user-authored sends. SafetyNotice is set whenever severity is high,
// independent of anything else on the request.
type SendMessageResult struct {
	Messages     []model.Message `json:"messages"`
	Severity     int             `json:"severity,omitempty"`
	Escalated    bool            `json:"escalated,omitempty"`
	TicketID     *uint           `json:"ticket_id,omitempty"`
	SafetyNotice string          `json:"safety_notice,omitempty"`
}

func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	ticketService *TicketService,
	transcriptCache TranscriptCache,
) *ChatService {
	return &ChatService{
		sessionRepo:     sessionRepo,
		messageRepo:     messageRepo,
		ticketService:   ticketService,
		transcriptCache: transcriptCache,
	}
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.Session, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}

	session := &model.Session{
		UserID: input.UserID,
		Title:  title,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions(userID uint) ([]model.Session, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessionRepo.ListByUserID(userID)
}

// authorizeAppend is the single gate over who may write which role into a
// session. ticket is the session's active ticket or nil.
//
//   - user: only the session owner speaks as the user.
//   - psychologist: only an admin or the ticket's assigned responder; an
//     unassigned or absent ticket rejects - a responder claims before
//     speaking.
//   - assistant: reserved for the automated pipeline, never accepted from
//     a caller.
func authorizeAppend(author Identity, role string, session *model.Session, ticket *model.Ticket) error {
	switch role {
	case model.MessageRoleUser:
		if author.UserID != session.UserID {
			return ErrForbidden
		}
		return nil
	case model.MessageRolePsychologist:
		if author.IsAdmin() {
			return nil
		}
		if ticket == nil || ticket.AssignedResponderID == nil {
			return ErrForbidden
		}
		if *ticket.AssignedResponderID != author.UserID {
			return ErrForbidden
		}
		return nil
	case model.MessageRoleAssistant:
		return ErrForbidden
	default:
		return ErrInvalidInput
	}
}

// SendMessage validates, authorizes, and persists one message. User sends
// additionally run triage: an escalating message opens a ticket if the
// session has none, and the assistant answers with its scripted reply
// unless a human responder already holds the conversation.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.Author.UserID == 0 || input.SessionID == 0 {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	session, err := s.sessionRepo.GetByID(input.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	ticket, err := s.ticketService.ActiveForSession(input.SessionID)
	if err != nil {
		return nil, err
	}

	if err := authorizeAppend(input.Author, input.Role, session, ticket); err != nil {
		return nil, err
	}

	s.invalidateTranscript(ctx, input.SessionID)

	message := &model.Message{
		SessionID: input.SessionID,
		UserID:    input.Author.UserID,
		Role:      input.Role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	result := &SendMessageResult{Messages: []model.Message{*message}}

	if input.Role == model.MessageRoleUser {
		if err := s.runAssistantPipeline(ctx, session, ticket, content, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// runAssistantPipeline classifies the user message, opens an escalation
// ticket when the high tier fires and none is active, and appends the
// scripted assistant reply while the conversation is not handed off.
func (s *ChatService) runAssistantPipeline(
	ctx context.Context,
	session *model.Session,
	ticket *model.Ticket,
	content string,
	result *SendMessageResult,
) error {
	severity, escalate := triage.Classify(content)
	result.Severity = severity
	result.Escalated = escalate
	if severity >= triage.EscalateThreshold {
		result.SafetyNotice = triage.SafetyNotice
	}

	if escalate && ticket == nil {
		opened, err := s.ticketService.OpenEscalation(session.UserID, session.ID, severity)
		if err != nil {
			return err
		}
		ticket = opened
	}
	if ticket != nil {
		result.TicketID = &ticket.ID
	}

	// Once a human responder holds the session the assistant stays silent.
	if ticket != nil && ticket.Status != model.TicketStatusOpen {
		return nil
	}

	reply := &model.Message{
		SessionID: session.ID,
		UserID:    session.UserID,
		Role:      model.MessageRoleAssistant,
		Content:   triage.Reply(severity),
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(reply); err != nil {
		return err
	}
	s.invalidateTranscript(ctx, session.ID)
	result.Messages = append(result.Messages, *reply)
	return nil
}

// Transcript returns the session's messages in append order. Readable by
// the owner, an admin, or the active ticket's assigned responder - anyone
// allowed to write into the conversation can read what came before.
func (s *ChatService) Transcript(ctx context.Context, requester Identity, sessionID uint, limit int) ([]model.Message, error) {
	if requester.UserID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.UserID != requester.UserID && !requester.IsAdmin() {
		ticket, err := s.ticketService.ActiveForSession(sessionID)
		if err != nil {
			return nil, err
		}
		if ticket == nil || ticket.AssignedResponderID == nil || *ticket.AssignedResponderID != requester.UserID {
			return nil, ErrForbidden
		}
	}

	if s.transcriptCache != nil {
		dirty, err := s.transcriptCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.transcriptCache.GetTranscript(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(sessionID, limit)
	if err != nil {
		return nil, err
	}
	if s.transcriptCache != nil {
		if dirty, dirtyErr := s.transcriptCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.transcriptCache.SetTranscript(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

func (s *ChatService) invalidateTranscript(ctx context.Context, sessionID uint) {
	if s.transcriptCache == nil {
		return
	}
	_ = s.transcriptCache.MarkDirty(ctx, sessionID)
	_ = s.transcriptCache.DeleteTranscript(ctx, sessionID)
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
