package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TicketEventPayload is the JSON body published for every ticket
// lifecycle transition. Consumed by the audit worker.
type TicketEventPayload struct {
	Event     string `json:"event"`
	TicketID  uint   `json:"ticket_id"`
	SessionID uint   `json:"session_id"`
	UserID    uint   `json:"user_id"`
	ActorID   uint   `json:"actor_id"`
	Severity  int    `json:"severity"`
	Status    string `json:"status"`
}

type EventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

// NewEventPublisher creates a publisher for the ticket event queue. If conn
// is nil or queueName is empty, Publish is a no-op.
func NewEventPublisher(conn *amqp.Connection, queueName string) *EventPublisher {
	return &EventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, payload TicketEventPayload) error {
	if p.conn == nil || p.queueName == "" {
		return nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal ticket event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish ticket event failed: %w", err)
	}
	return nil
}
