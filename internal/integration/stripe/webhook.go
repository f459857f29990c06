package stripe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// ErrMissingSignature в запросе нет заголовка Stripe-Signature
var ErrMissingSignature = errors.New("missing Stripe signature")

// WebhookVerifier проверяет подпись вебхуков Stripe и переводит события в domain.ProviderEvent
type WebhookVerifier struct {
	secret string
	log    *logger.Logger
}

// NewWebhookVerifier создает верификатор с секретом whsec_...
func NewWebhookVerifier(secret string, log *logger.Logger) *WebhookVerifier {
	return &WebhookVerifier{
		secret: secret,
		log:    log,
	}
}

// Verify проверяет подпись и разбирает событие.
// Ошибки подписи возвращаются как BadRequest, ошибки разбора объекта как Internal.
func (v *WebhookVerifier) Verify(payload []byte, sigHeader string) (domain.ProviderEvent, error) {
	if sigHeader == "" {
		return nil, domain.BadRequest("Webhook Error: " + ErrMissingSignature.Error())
	}

	// Версия API события задается настройками аккаунта и может не совпадать с версией SDK
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		v.log.Warnw("Webhook signature verification failed", "error", err)
		return nil, domain.BadRequest("Webhook Error: " + err.Error())
	}

	v.log.Infow("Received verified Stripe event", "eventID", event.ID, "eventType", event.Type)

	parsed, err := mapEvent(event)
	if err != nil {
		return nil, domain.Internal("Error handling webhook: "+err.Error(), err)
	}
	return parsed, nil
}

// mapEvent переводит событие Stripe в закрытый набор вариантов
func mapEvent(event stripe.Event) (domain.ProviderEvent, error) {
	if event.Data == nil {
		return nil, fmt.Errorf("event %s has no data", event.ID)
	}

	switch string(event.Type) {
	case domain.EventTypePaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to parse payment intent: %w", err)
		}
		return domain.PaymentIntentSucceeded{
			ID:              event.ID,
			PaymentIntentID: pi.ID,
			ReceiptEmail:    pi.ReceiptEmail,
			AmountMinor:     pi.Amount,
			Metadata:        pi.Metadata,
		}, nil

	case domain.EventTypeSubscriptionCreated:
		var sub subscriptionObject
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to parse subscription: %w", err)
		}
		customerID, customerEmail := sub.customer()
		if sub.CustomerEmail != "" {
			customerEmail = sub.CustomerEmail
		}
		return domain.SubscriptionCreated{
			ID:             event.ID,
			SubscriptionID: sub.ID,
			CustomerID:     customerID,
			CustomerEmail:  customerEmail,
			AmountMinor:    sub.amount(),
			Metadata:       sub.Metadata,
		}, nil

	default:
		return domain.UnrecognizedEvent{ID: event.ID, Type: string(event.Type)}, nil
	}
}

// subscriptionObject поля подписки, нужные для создания платежа.
// Поле plan есть только у подписок с одной ценой, поэтому сумма берется и из items.
type subscriptionObject struct {
	ID            string            `json:"id"`
	Customer      json.RawMessage   `json:"customer"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
	Plan          *struct {
		Amount int64 `json:"amount"`
	} `json:"plan"`
	Items struct {
		Data []struct {
			Quantity int64 `json:"quantity"`
			Price    struct {
				UnitAmount int64 `json:"unit_amount"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// customer возвращает ID и e-mail клиента; customer бывает строкой или развернутым объектом
func (s subscriptionObject) customer() (string, string) {
	if len(s.Customer) == 0 {
		return "", ""
	}

	var id string
	if err := json.Unmarshal(s.Customer, &id); err == nil {
		return id, ""
	}

	var obj struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(s.Customer, &obj); err == nil {
		return obj.ID, obj.Email
	}
	return "", ""
}

func (s subscriptionObject) amount() int64 {
	if s.Plan != nil && s.Plan.Amount > 0 {
		return s.Plan.Amount
	}

	var total int64
	for _, item := range s.Items.Data {
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		total += item.Price.UnitAmount * qty
	}
	return total
}
