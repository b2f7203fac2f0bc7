package kafka

import (
	"context"
	"encoding/json"
	"time"

	"eventify/internal/config"
	"eventify/internal/models"

	"github.com/segmentio/kafka-go"
)

// Producer streams registration and settlement events for downstream
// consumers (analytics, reminder jobs). All publishes are best-effort
// from the caller's perspective.
type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
}

func NewProducer(cfg config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{Writer: writer, Topics: cfg.Topics}
}

type registrationEvent struct {
	RSVPID    string    `json:"rsvp_id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

type settlementEvent struct {
	PaymentID string    `json:"payment_id"`
	RSVPID    string    `json:"rsvp_id"`
	EventID   string    `json:"event_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

func (p *Producer) publish(ctx context.Context, topic, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}

func (p *Producer) PublishRegistrationConfirmed(ctx context.Context, rsvp models.RSVP) error {
	return p.publish(ctx, p.Topics.RegistrationConfirmed, rsvp.EventID, registrationEvent{
		RSVPID:    rsvp.ID,
		UserID:    rsvp.UserID,
		EventID:   rsvp.EventID,
		Timestamp: time.Now(),
	})
}

func (p *Producer) PublishRegistrationCancelled(ctx context.Context, rsvp models.RSVP) error {
	return p.publish(ctx, p.Topics.RegistrationCancelled, rsvp.EventID, registrationEvent{
		RSVPID:    rsvp.ID,
		UserID:    rsvp.UserID,
		EventID:   rsvp.EventID,
		Timestamp: time.Now(),
	})
}

func (p *Producer) PublishPaymentSettled(ctx context.Context, payment models.Payment) error {
	return p.publish(ctx, p.Topics.PaymentSettled, payment.EventID, settlementEvent{
		PaymentID: payment.ID,
		RSVPID:    payment.RSVPID,
		EventID:   payment.EventID,
		Amount:    payment.Amount,
		Timestamp: time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
