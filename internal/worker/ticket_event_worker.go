package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"mindhaven/internal/model"
	"mindhaven/internal/platform/rabbitmq"
	"mindhaven/internal/repository"
)

// TicketEventWorker consumes ticket lifecycle events from the broker and
// records them as audit rows. Consumption is at-least-once; a duplicate
// event yields a duplicate audit row, which the audit trail tolerates.
type TicketEventWorker struct {
	conn      *amqp.Connection
	repo      *repository.TicketEventRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTicketEventWorker(conn *amqp.Connection, repo *repository.TicketEventRepository, queueName string) *TicketEventWorker {
	return &TicketEventWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *TicketEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var payload rabbitmq.TicketEventPayload
				if err := json.Unmarshal(d.Body, &payload); err != nil {
					log.Printf("worker decode ticket event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				event := &model.TicketEvent{
					TicketID: payload.TicketID,
					Event:    payload.Event,
					ActorID:  payload.ActorID,
					Severity: payload.Severity,
					Status:   payload.Status,
				}
				if err := w.repo.Create(event); err != nil {
					log.Printf("worker persist ticket event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *TicketEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
