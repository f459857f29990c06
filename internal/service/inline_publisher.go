package service

import (
	"context"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
)

// InlinePublisher заменяет Kafka при KAFKA_ENABLED=false:
// payment.succeeded сразу подтверждает запись на курс в том же запросе.
type InlinePublisher struct {
	enrollments EnrollmentService
	log         *logger.Logger
}

// NewInlinePublisher создает синхронный издатель событий
func NewInlinePublisher(enrollments EnrollmentService, log *logger.Logger) *InlinePublisher {
	return &InlinePublisher{enrollments: enrollments, log: log}
}

func (p *InlinePublisher) PublishPaymentPending(ctx context.Context, payment domain.Payment) error {
	p.log.Debugw("Payment pending", "paymentID", payment.ID)
	return nil
}

func (p *InlinePublisher) PublishPaymentSucceeded(ctx context.Context, payment domain.Payment) error {
	if payment.UserID == "" || payment.CourseID == "" {
		p.log.Warnw("Payment without user or course, enrollment skipped", "paymentID", payment.ID)
		return nil
	}

	err := p.enrollments.ConfirmEnrollment(ctx, payment.UserID, payment.CourseID)
	if domain.KindOf(err) == domain.KindNotFound {
		p.log.Warnw("Payment references unknown course, enrollment skipped", "paymentID", payment.ID, "courseID", payment.CourseID)
		return nil
	}
	return err
}
