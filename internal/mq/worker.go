package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// WorkerConfig configures a Worker.
type WorkerConfig struct {
	URL   string
	Queue string
	// CommandTimeout bounds the handling of one delivery.
	CommandTimeout time.Duration
	// Prefetch limits unacknowledged deliveries in flight.
	Prefetch int
}

// Worker consumes the command queue and publishes a Response for every
// delivery that carries a reply-to queue.
type Worker struct {
	cfg        WorkerConfig
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewWorker(cfg WorkerConfig, dispatcher *Dispatcher, logger *slog.Logger) *Worker {
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 5 * time.Second
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{cfg: cfg, dispatcher: dispatcher, logger: logger.With("component", "mq_worker", "queue", cfg.Queue)}
}

// Run blocks until ctx is cancelled or the broker closes the connection.
func (w *Worker) Run(ctx context.Context) error {
	conn, err := amqp.Dial(w.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(w.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(w.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := ch.Consume(w.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	w.logger.InfoContext(ctx, "mq worker listening")

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "mq worker stopping")
			return nil
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("amqp connection closed")
			}
			return fmt.Errorf("amqp connection closed: %w", amqpErr)
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handleDelivery(ctx, ch, d)
		}
	}
}

func (w *Worker) handleDelivery(parent context.Context, ch *amqp.Channel, d amqp.Delivery) {
	// Always ack so a poison message is not redelivered forever.
	defer func() {
		if err := d.Ack(false); err != nil {
			w.logger.ErrorContext(parent, "failed to ack message", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(parent, w.cfg.CommandTimeout)
	defer cancel()

	resp := w.dispatcher.Handle(ctx, d.Body)
	if d.ReplyTo == "" {
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to marshal response", "error", err)
		return
	}
	err = ch.PublishWithContext(ctx, "", d.ReplyTo, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: d.CorrelationId,
		Body:          body,
	})
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to publish response", "error", err, "correlation_id", d.CorrelationId)
	}
}
