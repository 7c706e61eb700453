package events

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events to a single topic, keyed by subject so that
// updates for one workspace or job stay ordered within a partition.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: kafka.NewWriter(kafka.WriterConfig{
			Brokers:     brokers,
			Topic:       topic,
			MaxAttempts: 3,
			Balancer:    &kafka.Hash{},
		}),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := kafkaMessage(e)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, msg)
}

func kafkaMessage(e Event) (kafka.Message, error) {
	body, err := e.encode()
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.Subject),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
			{Key: "routing_key", Value: []byte(e.RoutingKey())},
		},
		Time: e.Timestamp,
	}, nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
