package kafka

import (
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
)

// Топики событий платежей
const (
	TopicPaymentPending   = "payment.pending"
	TopicPaymentSucceeded = "payment.succeeded"
)

// HeaderEventType заголовок сообщения с типом события
const HeaderEventType = "event_type"

// PaymentEvent событие платежа в Kafka
type PaymentEvent struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	CourseID  string               `json:"course_id"`
	Amount    float64              `json:"amount"`
	Status    domain.PaymentStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
}

// NewPaymentEvent создает событие из платежа
func NewPaymentEvent(payment domain.Payment, at time.Time) PaymentEvent {
	return PaymentEvent{
		ID:        payment.ID,
		UserID:    payment.UserID,
		CourseID:  payment.CourseID,
		Amount:    payment.Amount,
		Status:    payment.Status,
		Timestamp: at,
	}
}
