package notification

import (
	"context"
	"errors"
)

// ErrNoRecipient у письма не указан получатель
var ErrNoRecipient = errors.New("email recipient is empty")

// Email письмо для отправки
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Notifier отправляет e-mail уведомления
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

// PaymentSucceededEmail письмо об успешной оплате курса
func PaymentSucceededEmail(to string) Email {
	return Email{
		To:      to,
		Subject: "Payment Successful",
		HTML:    "<h1>Your payment was successful!</h1>",
		Text:    "Your payment was successful!",
	}
}

// SubscriptionCreatedEmail письмо о созданной подписке
func SubscriptionCreatedEmail(to string) Email {
	return Email{
		To:      to,
		Subject: "Subscription Created",
		HTML:    "<h1>Your subscription was created successfully!</h1>",
		Text:    "Your subscription was created successfully!",
	}
}
