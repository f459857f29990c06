package service

import (
	"context"
	"errors"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/metrics"
	"github.com/Dhoini/course-marketplace/internal/repository"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/google/uuid"
)

// CheckoutOptions параметры сессий оплаты
type CheckoutOptions struct {
	Currency          string
	DefaultSuccessURL string
	DefaultCancelURL  string
}

// CheckoutService интерфейс сервиса оплаты курсов
type CheckoutService interface {
	// InitiateEnrollment создает сессию оплаты и платеж в статусе pending
	InitiateEnrollment(ctx context.Context, caller domain.Caller, courseID, successURL, cancelURL string) (domain.CheckoutSession, error)
}

type checkoutService struct {
	courses   repository.CourseRepository
	payments  repository.PaymentRepository
	provider  CheckoutProvider
	publisher PaymentEventPublisher
	metrics   metrics.MarketplaceMetrics
	opts      CheckoutOptions
	log       *logger.Logger
}

// NewCheckoutService создает новый сервис оплаты
func NewCheckoutService(
	courses repository.CourseRepository,
	payments repository.PaymentRepository,
	provider CheckoutProvider,
	publisher PaymentEventPublisher,
	m metrics.MarketplaceMetrics,
	opts CheckoutOptions,
	log *logger.Logger,
) CheckoutService {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &checkoutService{
		courses:   courses,
		payments:  payments,
		provider:  provider,
		publisher: publisher,
		metrics:   m,
		opts:      opts,
		log:       log,
	}
}

func (s *checkoutService) InitiateEnrollment(ctx context.Context, caller domain.Caller, courseID, successURL, cancelURL string) (domain.CheckoutSession, error) {
	if !caller.Is(domain.RoleStudent) {
		return domain.CheckoutSession{}, domain.Forbidden("User not authenticated or not a student")
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidData) {
			return domain.CheckoutSession{}, domain.NotFound("Course not found")
		}
		return domain.CheckoutSession{}, domain.Internal("Internal server error", err)
	}

	if successURL == "" {
		successURL = s.opts.DefaultSuccessURL
	}
	if cancelURL == "" {
		cancelURL = s.opts.DefaultCancelURL
	}

	// ID платежа известен до создания сессии и передается провайдеру в метаданных
	paymentID := uuid.NewString()
	session, err := s.provider.CreateOneTimeSession(ctx, domain.CheckoutRequest{
		AmountMinor:       course.PriceMinorUnits(),
		Currency:          s.opts.Currency,
		ProductName:       course.Title,
		CustomerEmail:     caller.Email,
		SuccessURL:        successURL,
		CancelURL:         cancelURL,
		ClientReferenceID: caller.ID,
		Metadata: map[string]string{
			domain.MetadataUserID:    caller.ID,
			domain.MetadataCourseID:  course.ID,
			domain.MetadataPaymentID: paymentID,
		},
	})
	if err != nil {
		s.metrics.IncCheckoutSession(metrics.OutcomeFailed)
		return domain.CheckoutSession{}, domain.Internal("Internal server error", err)
	}

	payment, err := s.payments.Create(ctx, domain.Payment{
		ID:                paymentID,
		Amount:            course.Price,
		Status:            domain.PaymentStatusPending,
		UserID:            caller.ID,
		CourseID:          course.ID,
		ProviderSessionID: session.ID,
	})
	if err != nil {
		s.metrics.IncCheckoutSession(metrics.OutcomeFailed)
		s.log.Errorw("Checkout session created but payment was not recorded",
			"sessionID", session.ID, "paymentID", paymentID, "userID", caller.ID, "courseID", course.ID, "error", err)
		return domain.CheckoutSession{}, domain.Internal("Internal server error", err)
	}

	if err := s.publisher.PublishPaymentPending(ctx, payment); err != nil {
		s.log.Warnw("Failed to publish pending payment", "paymentID", payment.ID, "error", err)
	}

	s.metrics.IncCheckoutSession(metrics.OutcomeCreated)
	s.metrics.ObservePaymentAmount(payment.Amount, string(payment.Status))
	s.log.Infow("Checkout session created", "sessionID", session.ID, "paymentID", payment.ID, "courseID", course.ID)
	return session, nil
}
