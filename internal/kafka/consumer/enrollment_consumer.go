package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/kafka"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
)

// EnrollmentConfirmer записывает студента на оплаченный курс
type EnrollmentConfirmer interface {
	ConfirmEnrollment(ctx context.Context, userID, courseID string) error
}

// EnrollmentConsumer читает payment.succeeded и создает записи на курсы
type EnrollmentConsumer struct {
	group   sarama.ConsumerGroup
	handler *EnrollmentHandler
	log     *logger.Logger
	// retry пауза между сессиями, завершившимися ошибкой
	retry backoff.BackOff
}

// consumeRetryPolicy повторяет без ограничения по времени, пауза растет до 30 секунд
func consumeRetryPolicy() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0
	return policy
}

// NewEnrollmentConsumer создает consumer group для топика payment.succeeded
func NewEnrollmentConsumer(cfg *kafka.Config, confirmer EnrollmentConfirmer, log *logger.Logger) (*EnrollmentConsumer, error) {
	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.Consumer.Group, kafka.NewSaramaConfig(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}
	return &EnrollmentConsumer{
		group:   group,
		handler: NewEnrollmentHandler(confirmer, log),
		log:     log,
		retry:   consumeRetryPolicy(),
	}, nil
}

// Run блокируется до отмены ctx. После ребалансировки или ошибки обработчика
// сессия пересоздается и чтение продолжается с последнего закоммиченного смещения.
func (c *EnrollmentConsumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.log.Errorw("Kafka consumer error", "error", err)
		}
	}()

	topics := []string{kafka.TopicPaymentSucceeded}
	for {
		err := c.group.Consume(ctx, topics, c.handler)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) || ctx.Err() != nil {
			return nil
		}
		if err == nil {
			c.retry.Reset()
			continue
		}

		wait := c.retry.NextBackOff()
		if wait == backoff.Stop {
			return fmt.Errorf("kafka consume retries exhausted: %w", err)
		}
		c.log.Errorw("Kafka consume session ended with error", "error", err, "retryIn", wait.String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Close останавливает consumer group
func (c *EnrollmentConsumer) Close() error {
	return c.group.Close()
}

// EnrollmentHandler реализует sarama.ConsumerGroupHandler
type EnrollmentHandler struct {
	confirmer EnrollmentConfirmer
	log       *logger.Logger
}

// NewEnrollmentHandler создает обработчик сообщений payment.succeeded
func NewEnrollmentHandler(confirmer EnrollmentConfirmer, log *logger.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{confirmer: confirmer, log: log}
}

func (h *EnrollmentHandler) Setup(session sarama.ConsumerGroupSession) error {
	h.log.Infow("Kafka consumer session started", "memberID", session.MemberID())
	return nil
}

func (h *EnrollmentHandler) Cleanup(session sarama.ConsumerGroupSession) error {
	h.log.Infow("Kafka consumer session finished", "memberID", session.MemberID())
	return nil
}

// ConsumeClaim обрабатывает сообщения партиции по порядку.
// Временная ошибка завершает сессию без коммита, чтобы сообщение было прочитано снова.
func (h *EnrollmentHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handleMessage(session.Context(), msg); err != nil {
				return err
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *EnrollmentHandler) handleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var event kafka.PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.log.Warnw("Skipping malformed payment event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if event.UserID == "" || event.CourseID == "" {
		h.log.Warnw("Skipping payment event without user or course", "paymentID", event.ID, "offset", msg.Offset)
		return nil
	}

	if err := h.confirmer.ConfirmEnrollment(ctx, event.UserID, event.CourseID); err != nil {
		switch domain.KindOf(err) {
		case domain.KindBadRequest, domain.KindNotFound:
			h.log.Warnw("Skipping payment event that cannot be enrolled", "paymentID", event.ID, "error", err)
			return nil
		}
		h.log.Errorw("Failed to confirm enrollment", "paymentID", event.ID, "error", err)
		return fmt.Errorf("confirm enrollment for payment %s: %w", event.ID, err)
	}

	h.log.Infow("Enrollment confirmed from payment event", "paymentID", event.ID, "userID", event.UserID, "courseID", event.CourseID)
	return nil
}
