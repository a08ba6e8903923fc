package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"signal-radar/internal/domain"
	"signal-radar/internal/infra/metrics"
)

// RabbitAlertQueue реализует очередь оповещений поверх AMQP.
type RabbitAlertQueue struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	queue      string
	deliveries <-chan amqp.Delivery
}

// NewRabbitAlertQueue подключается к брокеру и объявляет durable-очередь.
func NewRabbitAlertQueue(amqpURL, queue string) (*RabbitAlertQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &RabbitAlertQueue{conn: conn, ch: ch, queue: queue}, nil
}

// Enqueue публикует задачу в очередь.
func (q *RabbitAlertQueue) Enqueue(ctx context.Context, job domain.AlertJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Body:         payload,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Pop блокирующе читает задачу из очереди и подтверждает её получение.
func (q *RabbitAlertQueue) Pop(ctx context.Context) (domain.AlertJob, error) {
	if q.deliveries == nil {
		if err := q.ch.Qos(1, 0, false); err != nil {
			return domain.AlertJob{}, fmt.Errorf("set qos: %w", err)
		}
		deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
		if err != nil {
			return domain.AlertJob{}, fmt.Errorf("start consume: %w", err)
		}
		q.deliveries = deliveries
	}

	select {
	case <-ctx.Done():
		return domain.AlertJob{}, ctx.Err()
	case delivery, ok := <-q.deliveries:
		if !ok {
			return domain.AlertJob{}, errors.New("rabbitmq queue: channel closed")
		}
		var job domain.AlertJob
		if err := json.Unmarshal(delivery.Body, &job); err != nil {
			_ = delivery.Nack(false, false)
			return domain.AlertJob{}, fmt.Errorf("decode job: %w", err)
		}
		if err := delivery.Ack(false); err != nil {
			return domain.AlertJob{}, fmt.Errorf("ack job: %w", err)
		}
		return job, nil
	}
}

// Close освобождает канал и соединение.
func (q *RabbitAlertQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}
