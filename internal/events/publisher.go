package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tourdesk/internal/domain/models"
	"tourdesk/internal/utils"
)

// Message is the envelope every broker receives.
type Message struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	RequestID   string          `json:"request_id,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

func MessageOf(ev models.OutboxEvent) Message {
	return Message{
		ID:          ev.ID,
		Type:        ev.EventType,
		AggregateID: ev.AggregateID,
		RequestID:   ev.RequestID,
		OccurredAt:  ev.CreatedAt.UTC(),
		Payload:     ev.Payload,
	}
}

// Publisher delivers one message. key groups messages that must stay ordered.
type Publisher interface {
	Publish(ctx context.Context, key string, msg Message) error
	Close() error
}

// LogPublisher only logs. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, key string, msg Message) error {
	utils.LogEvent(msg.RequestID, "outbox", "publish", fmt.Sprintf("broker=log type=%s key=%s id=%s", msg.Type, key, msg.ID))
	return nil
}

func (LogPublisher) Close() error { return nil }

// Settings selects and configures a broker.
type Settings struct {
	Broker       string
	KafkaBrokers []string
	KafkaTopic   string
	AMQPURL      string
	AMQPExchange string
}

// NewPublisher builds the publisher named by s.Broker: kafka, amqp or log.
func NewPublisher(s Settings) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(s.Broker)) {
	case "", "log":
		return LogPublisher{}, nil
	case "kafka":
		if len(s.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS wajib diisi untuk broker kafka")
		}
		return NewKafkaPublisher(s.KafkaBrokers, s.KafkaTopic), nil
	case "amqp", "rabbitmq":
		return DialAMQP(s.AMQPURL, s.AMQPExchange)
	}
	return nil, fmt.Errorf("broker %q tidak dikenal", s.Broker)
}
