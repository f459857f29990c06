package service

import (
	"context"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/metrics"
	"github.com/Dhoini/course-marketplace/internal/repository"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/Dhoini/course-marketplace/pkg/req"
	"github.com/google/uuid"
)

// CourseService интерфейс сервиса каталога курсов
type CourseService interface {
	ListCourses(ctx context.Context) ([]domain.Course, error)
	CreateCourse(ctx context.Context, caller domain.Caller, input domain.NewCourse) (domain.Course, error)
	ListCoursesByTutor(ctx context.Context, caller domain.Caller, tutorID string) ([]domain.Course, error)
}

type courseService struct {
	repo    repository.CourseRepository
	metrics metrics.MarketplaceMetrics
	log     *logger.Logger
	now     func() time.Time
}

// NewCourseService создает новый сервис каталога курсов
func NewCourseService(repo repository.CourseRepository, m metrics.MarketplaceMetrics, log *logger.Logger) CourseService {
	return &courseService{
		repo:    repo,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

func (s *courseService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	s.log.Debug("Listing all courses")

	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.Internal("Internal server error", err)
	}
	return courses, nil
}

func (s *courseService) CreateCourse(ctx context.Context, caller domain.Caller, input domain.NewCourse) (domain.Course, error) {
	if !caller.Is(domain.RoleTutor) {
		s.log.Warnw("Course creation rejected", "callerID", caller.ID, "role", caller.Role)
		return domain.Course{}, domain.Forbidden("Unauthorized")
	}
	if input.MissingRequired() {
		return domain.Course{}, domain.BadRequest("Missing required fields")
	}
	if err := req.IsValid(input); err != nil {
		return domain.Course{}, domain.BadRequest(req.Describe(err))
	}

	now := s.now().UTC()
	slots := make([]domain.Slot, len(input.Slots))
	for i, slot := range input.Slots {
		if slot.Status == "" {
			slot.Status = domain.SlotStatusAvailable
		}
		slots[i] = slot
	}

	course := domain.Course{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		ZoomLink:    input.ZoomLink,
		Price:       input.Price,
		Slots:       slots,
		TutorID:     caller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, course)
	if err != nil {
		return domain.Course{}, domain.Internal("Internal server error", err)
	}

	s.metrics.IncCourseCreated()
	s.log.Infow("Course created", "courseID", created.ID, "tutorID", created.TutorID)
	return created, nil
}

func (s *courseService) ListCoursesByTutor(ctx context.Context, caller domain.Caller, tutorID string) ([]domain.Course, error) {
	if !caller.IsSelf(tutorID, domain.RoleTutor) {
		return nil, domain.Forbidden("Unauthorized")
	}

	courses, err := s.repo.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, domain.Internal("Internal server error", err)
	}
	return courses, nil
}
