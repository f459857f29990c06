package domain

// ProviderEvent событие, полученное от платежного провайдера после проверки подписи.
// Набор вариантов закрыт: PaymentIntentSucceeded, SubscriptionCreated, UnrecognizedEvent.
type ProviderEvent interface {
	EventID() string
	EventType() string
	providerEvent()
}

const (
	EventTypePaymentIntentSucceeded = "payment_intent.succeeded"
	EventTypeSubscriptionCreated    = "customer.subscription.created"
)

// PaymentIntentSucceeded платеж по payment intent завершился успешно
type PaymentIntentSucceeded struct {
	ID              string
	PaymentIntentID string
	ReceiptEmail    string
	AmountMinor     int64
	Metadata        map[string]string
}

func (e PaymentIntentSucceeded) EventID() string   { return e.ID }
func (e PaymentIntentSucceeded) EventType() string { return EventTypePaymentIntentSucceeded }
func (PaymentIntentSucceeded) providerEvent()      {}

// SubscriptionCreated у провайдера создана подписка
type SubscriptionCreated struct {
	ID             string
	SubscriptionID string
	CustomerID     string
	CustomerEmail  string
	AmountMinor    int64
	Metadata       map[string]string
}

func (e SubscriptionCreated) EventID() string   { return e.ID }
func (e SubscriptionCreated) EventType() string { return EventTypeSubscriptionCreated }
func (SubscriptionCreated) providerEvent()      {}

// UnrecognizedEvent любое событие, которое сервис не обрабатывает
type UnrecognizedEvent struct {
	ID   string
	Type string
}

func (e UnrecognizedEvent) EventID() string   { return e.ID }
func (e UnrecognizedEvent) EventType() string { return e.Type }
func (UnrecognizedEvent) providerEvent()      {}

// WebhookOutcome результат обработки события
type WebhookOutcome string

const (
	WebhookOutcomeHandled WebhookOutcome = "handled"
	WebhookOutcomeIgnored WebhookOutcome = "ignored"
)
