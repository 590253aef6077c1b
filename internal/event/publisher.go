package event

import (
	"encoding/json"
	"sync"
	"time"

	"trivia-service/internal/logger"

	"github.com/streadway/amqp"
)

// Publisher emits domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

type envelope struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type EventPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *logger.Logger
}

func NewEventPublisher(amqpURL, exchange string, log *logger.Logger) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &EventPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		log:      log.With("component", "EventPublisher", "exchange", exchange),
	}, nil
}

func (p *EventPublisher) Publish(eventType string, payload interface{}) error {
	body, err := json.Marshal(envelope{Type: eventType, Payload: payload, OccurredAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	p.log.Debug("Publishing event", "type", eventType)

	p.mu.Lock()
	defer p.mu.Unlock()
	// Use the event type as the routing key for topic exchange
	err = p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		p.log.Warn("Failed to publish event", "type", eventType, "error", err)
	}
	return err
}

func (p *EventPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// LogPublisher writes events to the structured log instead of a broker. It
// is used when RabbitMQ is not configured.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log.With("component", "EventPublisher")}
}

func (p *LogPublisher) Publish(eventType string, payload interface{}) error {
	p.log.Info("[EVENT]", "type", eventType, "payload", payload)
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

type Recorded struct {
	Type    string
	Payload interface{}
}

func (r *Recorder) Publish(eventType string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Type: eventType, Payload: payload})
	return nil
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *Recorder) Count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
