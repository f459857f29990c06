package service

import (
	"context"
	"errors"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/metrics"
	"github.com/Dhoini/course-marketplace/internal/repository"
	"github.com/Dhoini/course-marketplace/pkg/logger"
)

// EnrollmentService интерфейс сервиса записей студентов на курсы
type EnrollmentService interface {
	ListEnrollments(ctx context.Context, caller domain.Caller, userID string) ([]domain.Course, error)
	// ConfirmEnrollment записывает студента на курс; повторный вызов ничего не меняет
	ConfirmEnrollment(ctx context.Context, userID, courseID string) error
}

type enrollmentService struct {
	repo    repository.EnrollmentRepository
	metrics metrics.MarketplaceMetrics
	log     *logger.Logger
}

// NewEnrollmentService создает новый сервис записей
func NewEnrollmentService(repo repository.EnrollmentRepository, m metrics.MarketplaceMetrics, log *logger.Logger) EnrollmentService {
	return &enrollmentService{
		repo:    repo,
		metrics: m,
		log:     log,
	}
}

func (s *enrollmentService) ListEnrollments(ctx context.Context, caller domain.Caller, userID string) ([]domain.Course, error) {
	if !caller.IsSelf(userID, domain.RoleStudent) {
		return nil, domain.Forbidden("Unauthorized")
	}

	courses, err := s.repo.ListCoursesByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal("Internal server error", err)
	}
	return courses, nil
}

func (s *enrollmentService) ConfirmEnrollment(ctx context.Context, userID, courseID string) error {
	enrollment, created, err := s.repo.Create(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidData) {
			return domain.NotFound("Course not found")
		}
		return domain.Internal("failed to confirm enrollment", err)
	}

	s.metrics.IncEnrollmentConfirmed(created)
	if created {
		s.log.Infow("Enrollment confirmed", "enrollmentID", enrollment.ID, "userID", userID, "courseID", courseID)
	} else {
		s.log.Debugw("Enrollment already exists", "userID", userID, "courseID", courseID)
	}
	return nil
}
