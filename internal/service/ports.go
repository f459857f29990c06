package service

import (
	"context"

	"github.com/Dhoini/course-marketplace/internal/domain"
)

// CheckoutProvider создает сессии оплаты у платежного провайдера
type CheckoutProvider interface {
	CreateOneTimeSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error)
}

// PaymentEventPublisher публикует события жизненного цикла платежа
type PaymentEventPublisher interface {
	PublishPaymentPending(ctx context.Context, payment domain.Payment) error
	PublishPaymentSucceeded(ctx context.Context, payment domain.Payment) error
}
