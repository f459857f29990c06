package domain

import "time"

// CourseEnrollment подтвержденная запись студента на курс
type CourseEnrollment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckoutRequest параметры разовой сессии оплаты у провайдера
type CheckoutRequest struct {
	AmountMinor   int64
	Currency      string
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	// ClientReferenceID связывает сессию с пользователем
	ClientReferenceID string
	Metadata          map[string]string
}

// CheckoutSession созданная у провайдера сессия оплаты
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"sessionUrl"`
}

// Ключи метаданных, которые передаются провайдеру и возвращаются в событиях
const (
	MetadataUserID    = "userId"
	MetadataCourseID  = "courseId"
	MetadataPaymentID = "paymentId"
)
