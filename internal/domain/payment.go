package domain

import (
	"math"
	"time"
)

// PaymentStatus статус платежа. Набор значений открыт: провайдер может добавить новые.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
)

// Payment запись о платеже студента за курс
type Payment struct {
	ID                string        `json:"id"`
	Amount            float64       `json:"amount"` // в основных единицах валюты
	Status            PaymentStatus `json:"paymentStatus"`
	UserID            string        `json:"userId"`
	CourseID          string        `json:"courseId"`
	ProviderSessionID string        `json:"providerSessionId,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// ToMinorUnits переводит сумму в центы с округлением до ближайшего целого
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits переводит центы в основные единицы валюты
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
