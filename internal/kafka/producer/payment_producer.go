package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/kafka"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/IBM/sarama"
)

// PaymentProducer отправляет события платежей в Kafka
type PaymentProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	now      func() time.Time
}

// NewPaymentProducer создает новый продюсер событий платежей
func NewPaymentProducer(producer sarama.SyncProducer, log *logger.Logger) *PaymentProducer {
	return &PaymentProducer{
		producer: producer,
		log:      log,
		now:      time.Now,
	}
}

// NewSyncProducer подключается к брокерам и создает sarama.SyncProducer
func NewSyncProducer(cfg *kafka.Config, log *logger.Logger) (sarama.SyncProducer, error) {
	p, err := sarama.NewSyncProducer(cfg.Brokers, kafka.NewSaramaConfig(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return p, nil
}

// PublishPaymentPending публикует событие о созданном платеже
func (p *PaymentProducer) PublishPaymentPending(ctx context.Context, payment domain.Payment) error {
	return p.publishEvent(ctx, kafka.TopicPaymentPending, payment)
}

// PublishPaymentSucceeded публикует событие об успешной оплате
func (p *PaymentProducer) PublishPaymentSucceeded(ctx context.Context, payment domain.Payment) error {
	return p.publishEvent(ctx, kafka.TopicPaymentSucceeded, payment)
}

func (p *PaymentProducer) publishEvent(ctx context.Context, topic string, payment domain.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := p.now()
	messageValue, err := json.Marshal(kafka.NewPaymentEvent(payment, now))
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(payment.ID),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte(kafka.HeaderEventType),
				Value: []byte(topic),
			},
		},
		Timestamp: now,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.log.Errorw("Failed to publish payment event", "topic", topic, "paymentID", payment.ID, "error", err)
		return fmt.Errorf("failed to publish payment event: %w", err)
	}

	p.log.Infow("Published payment event", "topic", topic, "partition", partition, "offset", offset, "paymentID", payment.ID)
	return nil
}

// Close закрывает продюсер
func (p *PaymentProducer) Close() error {
	return p.producer.Close()
}
