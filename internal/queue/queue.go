// Package queue carries campaign dispatch jobs over RabbitMQ. The
// surrounding system (or the seeder, for local runs) publishes a job;
// the worker binary consumes it and invokes the campaign dispatcher.
package queue

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// DispatchJob asks the worker to dispatch one stored campaign through
// the named sending device or service.
type DispatchJob struct {
	CampaignID string `json:"campaign_id"`
	SenderID   string `json:"sender_id"`
}

// Queue wraps one AMQP connection, channel and durable queue.
type Queue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	name string
}

// Dial connects to the broker and declares the durable job queue.
func Dial(url, queueName string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return &Queue{conn: conn, ch: ch, name: queueName}, nil
}

// PublishDispatch enqueues one dispatch job as persistent JSON.
func (q *Queue) PublishDispatch(job DispatchJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.ch.Publish(
		"",     // default exchange
		q.name, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// ConsumeDispatch delivers jobs to the handler one at a time. A handler
// error nacks without requeue: the dispatcher records the terminal
// failure itself and operators re-invoke, so redelivery would only
// duplicate work.
func (q *Queue) ConsumeDispatch(handler func(DispatchJob) error) error {
	deliveries, err := q.ch.Consume(
		q.name,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for d := range deliveries {
		var job DispatchJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			log.Printf("[Queue] Dropping malformed job: %v", err)
			_ = d.Nack(false, false)
			continue
		}

		if err := handler(job); err != nil {
			log.Printf("[Queue] Job for campaign %s failed: %v", job.CampaignID, err)
			_ = d.Nack(false, false)
			continue
		}

		_ = d.Ack(false)
	}

	return nil
}

// Close releases the channel and connection.
func (q *Queue) Close() {
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}
