package stripe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// Config конфигурация клиента Stripe
type Config struct {
	APIKey string
	// BackendURL переопределяет адрес API (stripe-mock, тесты)
	BackendURL string
	Breaker    BreakerConfig
}

// BreakerConfig настройки circuit breaker для вызовов Stripe API
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// CheckoutClient создает сессии оплаты Stripe Checkout
type CheckoutClient struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
	log     *logger.Logger
}

// NewCheckoutClient создает новый клиент Stripe
func NewCheckoutClient(cfg Config, log *logger.Logger) *CheckoutClient {
	sc := &client.API{}
	sc.Init(cfg.APIKey, backendsFor(cfg.BackendURL))

	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        "stripe-checkout",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Ошибки валидации запроса не говорят о недоступности Stripe
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &CheckoutClient{
		api:     sc,
		breaker: gobreaker.NewCircuitBreaker[*stripe.CheckoutSession](settings),
		log:     log,
	}
}

func backendsFor(url string) *stripe.Backends {
	if url == "" {
		return nil
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(url),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	}
}

// CreateOneTimeSession создает разовую сессию оплаты на сумму req.AmountMinor
func (c *CheckoutClient) CreateOneTimeSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		// Метаданные копируются в payment intent, чтобы вебхук мог найти платеж
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: req.Metadata,
		},
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	session, err := c.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return c.api.CheckoutSessions.New(params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.log.Warnw("Stripe checkout temporarily unavailable", "error", err)
			return domain.CheckoutSession{}, fmt.Errorf("stripe: checkout unavailable: %w", err)
		}
		logStripeError(c.log, "CreateCheckoutSession", err)
		return domain.CheckoutSession{}, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	c.log.Infow("Stripe checkout session created", "sessionID", session.ID, "amount", req.AmountMinor, "currency", req.Currency)
	return domain.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// isClientError сообщает, что Stripe отклонил запрос как некорректный
func isClientError(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500 && stripeErr.HTTPStatusCode != 429
	}
	return false
}

// logStripeError логирует детали ошибки Stripe API
func logStripeError(log *logger.Logger, operation string, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		log.Errorw("Stripe API error",
			"operation", operation,
			"type", stripeErr.Type,
			"code", stripeErr.Code,
			"status", stripeErr.HTTPStatusCode,
			"requestID", stripeErr.RequestID,
			"message", stripeErr.Msg,
		)
		return
	}
	log.Errorw("Stripe call failed", "operation", operation, "error", err)
}
