package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Writer is the subset of *kafka.Writer the notifier needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func NewKafkaWriter(cfg KafkaConfig, log zerolog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		MaxAttempts:  3,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf("kafka writer: "+msg, args...)
		}),
	}
}

// KafkaNotifier publishes notifications as JSON events. Messages are keyed by
// entity id so events for one order stay on one partition.
type KafkaNotifier struct {
	w Writer
}

func NewKafkaNotifier(w Writer) *KafkaNotifier {
	return &KafkaNotifier{w: w}
}

func (n *KafkaNotifier) publish(ctx context.Context, key int64, eventType string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}

	err = n.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(key, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(eventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func (n *KafkaNotifier) NotifyContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	return n.publish(ctx, msg.ID, EventContactCreated, NewContactEvent(msg))
}

func (n *KafkaNotifier) NotifyOrderConfirmation(ctx context.Context, user domain.User, order domain.Order, lines []domain.OrderLine) error {
	return n.publish(ctx, order.ID, EventOrderConfirmed, NewOrderEvent(user, order, lines))
}

func (n *KafkaNotifier) Close() error {
	return n.w.Close()
}

var _ port.Notifier = (*KafkaNotifier)(nil)
