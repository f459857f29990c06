package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
)

// CourseRepository интерфейс для работы с курсами
type CourseRepository interface {
	List(ctx context.Context) ([]domain.Course, error)
	ListByTutor(ctx context.Context, tutorID string) ([]domain.Course, error)
	GetByID(ctx context.Context, id string) (domain.Course, error)
	Create(ctx context.Context, course domain.Course) (domain.Course, error)
}

// InMemoryCourseRepository реализация репозитория курсов в памяти
type InMemoryCourseRepository struct {
	courses map[string]domain.Course
	mutex   sync.RWMutex
	log     *logger.Logger
}

// NewInMemoryCourseRepository создает новый репозиторий курсов в памяти
func NewInMemoryCourseRepository(log *logger.Logger) *InMemoryCourseRepository {
	return &InMemoryCourseRepository{
		courses: make(map[string]domain.Course),
		log:     log,
	}
}

// List возвращает все курсы, новые первыми
func (r *InMemoryCourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	courses := make([]domain.Course, 0, len(r.courses))
	for _, course := range r.courses {
		courses = append(courses, course)
	}
	sortNewestFirst(courses)

	return courses, nil
}

// ListByTutor возвращает курсы преподавателя
func (r *InMemoryCourseRepository) ListByTutor(ctx context.Context, tutorID string) ([]domain.Course, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	courses := make([]domain.Course, 0)
	for _, course := range r.courses {
		if course.TutorID == tutorID {
			courses = append(courses, course)
		}
	}
	sortNewestFirst(courses)

	return courses, nil
}

// GetByID возвращает курс по ID
func (r *InMemoryCourseRepository) GetByID(ctx context.Context, id string) (domain.Course, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	course, exists := r.courses[id]
	if !exists {
		return domain.Course{}, ErrNotFound
	}

	return course, nil
}

// Create сохраняет курс
func (r *InMemoryCourseRepository) Create(ctx context.Context, course domain.Course) (domain.Course, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if course.ID == "" || course.TutorID == "" {
		return domain.Course{}, ErrInvalidData
	}
	if _, exists := r.courses[course.ID]; exists {
		return domain.Course{}, ErrDuplicate
	}

	r.courses[course.ID] = course
	r.log.Debugw("Course stored in memory", "courseID", course.ID, "tutorID", course.TutorID)

	return course, nil
}

func sortNewestFirst(courses []domain.Course) {
	sort.SliceStable(courses, func(i, j int) bool {
		if courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].ID < courses[j].ID
		}
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
}
