package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/google/uuid"
)

// EnrollmentRepository интерфейс для работы с записями на курсы
type EnrollmentRepository interface {
	// Create добавляет запись, если пары (userID, courseID) еще нет. created=false для повторной записи.
	Create(ctx context.Context, userID, courseID string) (enrollment domain.CourseEnrollment, created bool, err error)
	ListCoursesByUser(ctx context.Context, userID string) ([]domain.Course, error)
}

type enrollmentKey struct {
	userID   string
	courseID string
}

// InMemoryEnrollmentRepository реализация репозитория записей в памяти
type InMemoryEnrollmentRepository struct {
	enrollments map[enrollmentKey]domain.CourseEnrollment
	order       []enrollmentKey
	courses     CourseRepository
	mutex       sync.RWMutex
	log         *logger.Logger
}

// NewInMemoryEnrollmentRepository создает репозиторий; courses нужен для выдачи курсов студента
func NewInMemoryEnrollmentRepository(courses CourseRepository, log *logger.Logger) *InMemoryEnrollmentRepository {
	return &InMemoryEnrollmentRepository{
		enrollments: make(map[enrollmentKey]domain.CourseEnrollment),
		courses:     courses,
		log:         log,
	}
}

// Create добавляет запись на курс
func (r *InMemoryEnrollmentRepository) Create(ctx context.Context, userID, courseID string) (domain.CourseEnrollment, bool, error) {
	if userID == "" || courseID == "" {
		return domain.CourseEnrollment{}, false, ErrInvalidData
	}
	if _, err := r.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.CourseEnrollment{}, false, ErrInvalidData
		}
		return domain.CourseEnrollment{}, false, fmt.Errorf("failed to check course: %w", err)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := enrollmentKey{userID: userID, courseID: courseID}
	if existing, exists := r.enrollments[key]; exists {
		return existing, false, nil
	}

	enrollment := domain.CourseEnrollment{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	}
	r.enrollments[key] = enrollment
	r.order = append(r.order, key)

	return enrollment, true, nil
}

// ListCoursesByUser возвращает курсы, на которые записан пользователь
func (r *InMemoryEnrollmentRepository) ListCoursesByUser(ctx context.Context, userID string) ([]domain.Course, error) {
	r.mutex.RLock()
	var courseIDs []string
	for _, key := range r.order {
		if key.userID == userID {
			courseIDs = append(courseIDs, key.courseID)
		}
	}
	r.mutex.RUnlock()

	courses := make([]domain.Course, 0, len(courseIDs))
	for _, id := range courseIDs {
		course, err := r.courses.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load enrolled course %s: %w", id, err)
		}
		courses = append(courses, course)
	}

	return courses, nil
}
