package app

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"mindhaven/internal/model"
	"mindhaven/internal/repository"
	"mindhaven/internal/triage"
)

func newChatFixture(t *testing.T) (*gorm.DB, *ChatService, *TicketService) {
	t.Helper()
	db := newTestDB(t)
	ticketSvc := newTicketService(db)
	chatSvc := NewChatService(
		repository.NewSessionRepository(db),
		repository.NewMessageRepository(db),
		ticketSvc,
		nil,
	)
	return db, chatSvc, ticketSvc
}

func TestSendMessageHighRiskOpensTicket(t *testing.T) {
	db, chatSvc, ticketSvc := newChatFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	session := createTestSession(t, db, owner.UserID)

	result, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "I want to die",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if result.Severity != triage.SeverityHigh || !result.Escalated {
		t.Fatalf("expected high severity escalation, got (%d, %v)", result.Severity, result.Escalated)
	}
	if result.SafetyNotice == "" {
		t.Fatalf("high severity result must carry the safety notice")
	}
	if result.TicketID == nil {
		t.Fatalf("escalation must surface the opened ticket id")
	}
	if len(result.Messages) != 2 {
		t.Fatalf("expected user message plus assistant reply, got %d messages", len(result.Messages))
	}
	if result.Messages[1].Role != model.MessageRoleAssistant {
		t.Fatalf("second message should be the assistant reply, got role %s", result.Messages[1].Role)
	}

	ticket, err := ticketSvc.ActiveForSession(session.ID)
	if err != nil {
		t.Fatalf("fetch active ticket failed: %v", err)
	}
	if ticket == nil || ticket.Status != model.TicketStatusOpen {
		t.Fatalf("expected an open ticket for the session, got %+v", ticket)
	}
	if ticket.Severity != triage.SeverityHigh {
		t.Fatalf("ticket severity should match classification, got %d", ticket.Severity)
	}
}

func TestSendMessageModerateStaysAutomated(t *testing.T) {
	db, chatSvc, ticketSvc := newChatFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	session := createTestSession(t, db, owner.UserID)

	result, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "I feel anxious and can't breathe",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if result.Severity != triage.SeverityModerate || result.Escalated {
		t.Fatalf("expected moderate severity without escalation, got (%d, %v)", result.Severity, result.Escalated)
	}
	if result.TicketID != nil {
		t.Fatalf("moderate message must not open a ticket")
	}
	if result.SafetyNotice != "" {
		t.Fatalf("moderate message must not carry the safety notice")
	}
	if len(result.Messages) != 2 {
		t.Fatalf("expected assistant reply for moderate message, got %d messages", len(result.Messages))
	}

	ticket, err := ticketSvc.ActiveForSession(session.ID)
	if err != nil {
		t.Fatalf("fetch active ticket failed: %v", err)
	}
	if ticket != nil {
		t.Fatalf("no ticket should exist, got %+v", ticket)
	}
}

func TestSendMessageDoesNotDuplicateActiveTicket(t *testing.T) {
	db, chatSvc, _ := newChatFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	session := createTestSession(t, db, owner.UserID)

	first, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "I want to die",
	})
	if err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	second, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "I still want to end my life",
	})
	if err != nil {
		t.Fatalf("second send failed: %v", err)
	}

	if second.TicketID == nil || *second.TicketID != *first.TicketID {
		t.Fatalf("second escalation must reuse the active ticket, got %v then %v", first.TicketID, second.TicketID)
	}

	var count int64
	if err := db.Model(&model.Ticket{}).Where("session_id = ?", session.ID).Count(&count).Error; err != nil {
		t.Fatalf("count tickets failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single ticket for the session, got %d", count)
	}
}

func TestAssistantSilentAfterHandoff(t *testing.T) {
	db, chatSvc, ticketSvc := newChatFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	responder := Identity{UserID: 2, Role: model.RolePsychologist}
	session := createTestSession(t, db, owner.UserID)

	escalated, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "I want to die",
	})
	if err != nil {
		t.Fatalf("escalating send failed: %v", err)
	}
	if _, err := ticketSvc.Claim(responder, *escalated.TicketID); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	result, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "are you there?",
	})
	if err != nil {
		t.Fatalf("send after handoff failed: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("assistant must stay silent after handoff, got %d messages", len(result.Messages))
	}
}

func TestPsychologistCannotSpeakBeforeClaim(t *testing.T) {
	db, chatSvc, ticketSvc := newChatFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	responder := Identity{UserID: 2, Role: model.RolePsychologist}
	session := createTestSession(t, db, owner.UserID)

	escalated, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "I want to die",
	})
	if err != nil {
		t.Fatalf("escalating send failed: %v", err)
	}

	_, err = chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    responder,
		SessionID: session.ID,
		Role:      model.MessageRolePsychologist,
		Content:   "Hello, I'm here to help",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("unclaimed responder must be rejected, got %v", err)
	}

	if _, err := ticketSvc.Claim(responder, *escalated.TicketID); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if _, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    responder,
		SessionID: session.ID,
		Role:      model.MessageRolePsychologist,
		Content:   "Hello, I'm here to help",
	}); err != nil {
		t.Fatalf("assigned responder send failed: %v", err)
	}
}

func TestOtherResponderCannotSpeakAfterClaim(t *testing.T) {
	db, chatSvc, ticketSvc := newChatFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	responder := Identity{UserID: 2, Role: model.RolePsychologist}
	other := Identity{UserID: 3, Role: model.RolePsychologist}
	session := createTestSession(t, db, owner.UserID)

	escalated, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "I want to die",
	})
	if err != nil {
		t.Fatalf("escalating send failed: %v", err)
	}
	if _, err := ticketSvc.Claim(responder, *escalated.TicketID); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	_, err = chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    other,
		SessionID: session.ID,
		Role:      model.MessageRolePsychologist,
		Content:   "let me take over",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-assigned responder must be rejected, got %v", err)
	}
}

func TestNonOwnerCannotSpeakAsUser(t *testing.T) {
	db, chatSvc, _ := newChatFixture(t)
	session := createTestSession(t, db, 1)

	_, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    Identity{UserID: 2, Role: model.RoleUser},
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "hello",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAssistantRoleRejectedFromCallers(t *testing.T) {
	db, chatSvc, _ := newChatFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	session := createTestSession(t, db, owner.UserID)

	_, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleAssistant,
		Content:   "pretending to be the bot",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("assistant role from a caller must be rejected, got %v", err)
	}
}

func TestSendMessageValidation(t *testing.T) {
	db, chatSvc, _ := newChatFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	session := createTestSession(t, db, owner.UserID)

	_, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Content:   "   ",
	})
	if !errors.Is(err, ErrMessageEmpty) {
		t.Fatalf("expected ErrMessageEmpty, got %v", err)
	}

	_, err = chatSvc.SendMessage(context.Background(), SendMessageInput{
		Author:    owner,
		SessionID: 999,
		Role:      model.MessageRoleUser,
		Content:   "hello",
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestTranscriptOrderAndAccess(t *testing.T) {
	db, chatSvc, ticketSvc := newChatFixture(t)
	owner := Identity{UserID: 1, Role: model.RoleUser}
	responder := Identity{UserID: 2, Role: model.RolePsychologist}
	stranger := Identity{UserID: 3, Role: model.RoleUser}
	session := createTestSession(t, db, owner.UserID)

	contents := []string{"first message", "second message", "I want to die"}
	for _, content := range contents {
		if _, err := chatSvc.SendMessage(context.Background(), SendMessageInput{
			Author:    owner,
			SessionID: session.ID,
			Role:      model.MessageRoleUser,
			Content:   content,
		}); err != nil {
			t.Fatalf("send %q failed: %v", content, err)
		}
	}

	_, err := chatSvc.Transcript(context.Background(), stranger, session.ID, 0)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger must not read the transcript, got %v", err)
	}

	_, err = chatSvc.Transcript(context.Background(), responder, session.ID, 0)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("unassigned responder must not read the transcript, got %v", err)
	}

	ticket, err := ticketSvc.ActiveForSession(session.ID)
	if err != nil || ticket == nil {
		t.Fatalf("expected active ticket, got %+v err %v", ticket, err)
	}
	if _, err := ticketSvc.Claim(responder, ticket.ID); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	transcript, err := chatSvc.Transcript(context.Background(), responder, session.ID, 0)
	if err != nil {
		t.Fatalf("assigned responder transcript failed: %v", err)
	}

	var userMessages []model.Message
	for _, msg := range transcript {
		if msg.Role == model.MessageRoleUser {
			userMessages = append(userMessages, msg)
		}
	}
	if len(userMessages) != len(contents) {
		t.Fatalf("expected %d user messages, got %d", len(contents), len(userMessages))
	}
	for i, content := range contents {
		if userMessages[i].Content != content {
			t.Fatalf("transcript out of order at %d: expected %q, got %q", i, content, userMessages[i].Content)
		}
	}

	ownerView, err := chatSvc.Transcript(context.Background(), owner, session.ID, 0)
	if err != nil {
		t.Fatalf("owner transcript failed: %v", err)
	}
	if len(ownerView) != len(transcript) {
		t.Fatalf("owner and responder should see the same transcript")
	}
}
