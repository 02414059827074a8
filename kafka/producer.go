package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/partspoint/autoparts-backend/models"
)

// Producer publishes order and payment lifecycle events. Publishing is
// best-effort: callers log failures and never fail the request over them.
type Producer struct {
	orderWriter   *kafka.Writer
	paymentWriter *kafka.Writer
}

// ProducerAPI is the surface services depend on, so tests can stub it.
type ProducerAPI interface {
	SendOrderCreatedEvent(ctx context.Context, event models.OrderCreatedEvent) error
	SendPaymentEvent(ctx context.Context, event models.PaymentEvent) error
}

func NewProducer(brokers []string, orderTopic, paymentTopic string) *Producer {
	return &Producer{
		orderWriter: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    orderTopic,
			Balancer: &kafka.LeastBytes{},
		},
		paymentWriter: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    paymentTopic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Producer) SendOrderCreatedEvent(ctx context.Context, event models.OrderCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	}
	return p.orderWriter.WriteMessages(ctx, msg)
}

func (p *Producer) SendPaymentEvent(ctx context.Context, event models.PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	}
	return p.paymentWriter.WriteMessages(ctx, msg)
}

func (p *Producer) Close() {
	_ = p.orderWriter.Close()
	_ = p.paymentWriter.Close()
}
