package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
)

// PaymentRepository интерфейс для работы с платежами
type PaymentRepository interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	Create(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	// MarkSucceeded переводит в succeeded все платежи с указанными ID и возвращает их.
	// Отсутствие совпадений не является ошибкой.
	MarkSucceeded(ctx context.Context, ids []string) ([]domain.Payment, error)
}

// InMemoryPaymentRepository реализация репозитория платежей в памяти
type InMemoryPaymentRepository struct {
	payments map[string]domain.Payment
	mutex    sync.RWMutex
	log      *logger.Logger
	now      func() time.Time
}

// NewInMemoryPaymentRepository создает новый репозиторий платежей в памяти
func NewInMemoryPaymentRepository(log *logger.Logger) *InMemoryPaymentRepository {
	return &InMemoryPaymentRepository{
		payments: make(map[string]domain.Payment),
		log:      log,
		now:      time.Now,
	}
}

// GetByID возвращает платеж по ID
func (r *InMemoryPaymentRepository) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	payment, exists := r.payments[id]
	if !exists {
		return domain.Payment{}, ErrNotFound
	}

	return payment, nil
}

// Create создает новый платеж
func (r *InMemoryPaymentRepository) Create(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if payment.ID == "" {
		return domain.Payment{}, ErrInvalidData
	}
	if _, exists := r.payments[payment.ID]; exists {
		return domain.Payment{}, ErrDuplicate
	}

	now := r.now()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now

	r.payments[payment.ID] = payment
	return payment, nil
}

// MarkSucceeded обновляет статус всех найденных платежей
func (r *InMemoryPaymentRepository) MarkSucceeded(ctx context.Context, ids []string) ([]domain.Payment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var updated []domain.Payment
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		payment, exists := r.payments[id]
		if !exists {
			continue
		}
		payment.Status = domain.PaymentStatusSucceeded
		payment.UpdatedAt = r.now()
		r.payments[id] = payment
		updated = append(updated, payment)
	}

	return updated, nil
}

// Count возвращает количество платежей
func (r *InMemoryPaymentRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.payments)
}
