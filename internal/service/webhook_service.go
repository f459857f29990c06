package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/metrics"
	"github.com/Dhoini/course-marketplace/internal/notification"
	"github.com/Dhoini/course-marketplace/internal/repository"
	"github.com/Dhoini/course-marketplace/pkg/logger"
)

// WebhookService интерфейс сервиса обработки событий провайдера
type WebhookService interface {
	// HandleEvent применяет проверенное событие к платежам.
	// Повторная доставка того же события не меняет состояние.
	HandleEvent(ctx context.Context, event domain.ProviderEvent) (domain.WebhookOutcome, error)
}

type webhookService struct {
	payments  repository.PaymentRepository
	publisher PaymentEventPublisher
	notifier  notification.Notifier
	metrics   metrics.MarketplaceMetrics
	log       *logger.Logger
}

// NewWebhookService создает новый сервис вебхуков
func NewWebhookService(
	payments repository.PaymentRepository,
	publisher PaymentEventPublisher,
	notifier notification.Notifier,
	m metrics.MarketplaceMetrics,
	log *logger.Logger,
) WebhookService {
	return &webhookService{
		payments:  payments,
		publisher: publisher,
		notifier:  notifier,
		metrics:   m,
		log:       log,
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, event domain.ProviderEvent) (domain.WebhookOutcome, error) {
	var err error
	outcome := domain.WebhookOutcomeHandled

	switch ev := event.(type) {
	case domain.PaymentIntentSucceeded:
		err = s.handlePaymentIntentSucceeded(ctx, ev)
	case domain.SubscriptionCreated:
		err = s.handleSubscriptionCreated(ctx, ev)
	case domain.UnrecognizedEvent:
		s.log.Warnw("Unhandled webhook event type", "eventID", ev.ID, "eventType", ev.Type)
		outcome = domain.WebhookOutcomeIgnored
	default:
		err = fmt.Errorf("unsupported event %T", event)
	}

	if err != nil {
		s.metrics.IncWebhookEvent(event.EventType(), metrics.OutcomeError)
		s.log.Errorw("Webhook processing failed", "eventID", event.EventID(), "eventType", event.EventType(), "error", err)
		return "", domain.Internal("Error handling webhook: "+err.Error(), err)
	}

	s.metrics.IncWebhookEvent(event.EventType(), string(outcome))
	return outcome, nil
}

func (s *webhookService) handlePaymentIntentSucceeded(ctx context.Context, ev domain.PaymentIntentSucceeded) error {
	// Платеж мог быть записан под ID payment intent или под ID из метаданных
	ids := []string{ev.PaymentIntentID}
	if paymentID := ev.Metadata[domain.MetadataPaymentID]; paymentID != "" {
		ids = append(ids, paymentID)
	}

	updated, err := s.payments.MarkSucceeded(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to update payments: %w", err)
	}
	if len(updated) == 0 {
		s.log.Infow("No payments matched payment intent", "paymentIntentID", ev.PaymentIntentID)
	}

	for _, payment := range updated {
		if err := s.publisher.PublishPaymentSucceeded(ctx, payment); err != nil {
			return fmt.Errorf("failed to publish payment %s: %w", payment.ID, err)
		}
		s.metrics.ObservePaymentAmount(payment.Amount, string(payment.Status))
	}

	return s.notify(ctx, notification.PaymentSucceededEmail(ev.ReceiptEmail))
}

// handleSubscriptionCreated записывает оплату подписки. Повторная доставка находит
// существующую запись и повторяет публикацию и письмо: прошлая попытка могла
// завершиться ошибкой после вставки.
func (s *webhookService) handleSubscriptionCreated(ctx context.Context, ev domain.SubscriptionCreated) error {
	userID := ev.Metadata[domain.MetadataUserID]
	if userID == "" {
		userID = ev.CustomerID
	}
	courseID := ev.Metadata[domain.MetadataCourseID]
	if userID == "" || courseID == "" {
		s.log.Warnw("Skipping subscription without user or course", "subscriptionID", ev.SubscriptionID, "userID", userID, "courseID", courseID)
		return nil
	}

	payment, err := s.payments.Create(ctx, domain.Payment{
		ID:       ev.SubscriptionID,
		Amount:   domain.FromMinorUnits(ev.AmountMinor),
		Status:   domain.PaymentStatusSucceeded,
		UserID:   userID,
		CourseID: courseID,
	})
	inserted := err == nil
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		s.log.Infow("Subscription payment already recorded", "subscriptionID", ev.SubscriptionID)
		if payment, err = s.payments.GetByID(ctx, ev.SubscriptionID); err != nil {
			return fmt.Errorf("failed to load subscription payment: %w", err)
		}
	case errors.Is(err, repository.ErrInvalidData):
		// Курс не существует: повторная доставка не поможет
		s.log.Warnw("Skipping subscription for unknown course", "subscriptionID", ev.SubscriptionID, "courseID", courseID, "error", err)
		return nil
	case err != nil:
		return fmt.Errorf("failed to create subscription payment: %w", err)
	}

	if err := s.publisher.PublishPaymentSucceeded(ctx, payment); err != nil {
		return fmt.Errorf("failed to publish payment %s: %w", payment.ID, err)
	}
	if inserted {
		s.metrics.ObservePaymentAmount(payment.Amount, string(payment.Status))
	}

	return s.notify(ctx, notification.SubscriptionCreatedEmail(ev.CustomerEmail))
}

// notify отправляет письмо; письмо без адреса пропускается
func (s *webhookService) notify(ctx context.Context, email notification.Email) error {
	if email.To == "" {
		s.log.Warnw("Skipping email without recipient", "subject", email.Subject)
		return nil
	}
	if err := s.notifier.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to send %q email: %w", email.Subject, err)
	}
	return nil
}
