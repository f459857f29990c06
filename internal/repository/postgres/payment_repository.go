package postgres

import (
	"context"
	"fmt"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, amount, payment_status, user_id, course_id, COALESCE(provider_session_id, ''), created_at, updated_at`

// PaymentRepository реализация репозитория платежей через PostgreSQL
type PaymentRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPaymentRepository создает новый репозиторий платежей
func NewPaymentRepository(db *pgxpool.Pool, log *logger.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:  db,
		log: log,
	}
}

// GetByID возвращает платеж по ID
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return domain.Payment{}, mapped
		}
		return domain.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// Create создает новый платеж
func (r *PaymentRepository) Create(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	query := `
		INSERT INTO payments (id, amount, payment_status, user_id, course_id, provider_session_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING ` + paymentColumns

	created, err := scanPayment(r.db.QueryRow(ctx, query,
		payment.ID,
		payment.Amount,
		string(payment.Status),
		payment.UserID,
		payment.CourseID,
		payment.ProviderSessionID,
	))
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return domain.Payment{}, mapped
		}
		return domain.Payment{}, fmt.Errorf("failed to create payment: %w", err)
	}

	r.log.Debugw("Payment inserted", "paymentID", created.ID, "status", created.Status)
	return created, nil
}

// MarkSucceeded массово переводит платежи в succeeded
func (r *PaymentRepository) MarkSucceeded(ctx context.Context, ids []string) ([]domain.Payment, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		UPDATE payments
		SET payment_status = $2, updated_at = now()
		WHERE id = ANY($1)
		RETURNING ` + paymentColumns

	rows, err := r.db.Query(ctx, query, ids, string(domain.PaymentStatusSucceeded))
	if err != nil {
		return nil, fmt.Errorf("failed to update payments: %w", err)
	}

	updated, err := collectPayments(rows)
	if err != nil {
		return nil, err
	}

	r.log.Debugw("Payments marked as succeeded", "requested", len(ids), "updated", len(updated))
	return updated, nil
}

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var payment domain.Payment
	var status string

	err := row.Scan(
		&payment.ID,
		&payment.Amount,
		&status,
		&payment.UserID,
		&payment.CourseID,
		&payment.ProviderSessionID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return domain.Payment{}, err
	}

	payment.Status = domain.PaymentStatus(status)
	return payment, nil
}

func collectPayments(rows pgx.Rows) ([]domain.Payment, error) {
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}
