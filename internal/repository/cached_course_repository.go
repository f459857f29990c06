package repository

import (
	"context"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
)

// CachedCourseRepository реализует CourseRepository с кэшированием списков.
// Ошибки кэша только логируются, источником истины остается основное хранилище.
type CachedCourseRepository struct {
	repo  CourseRepository
	cache CourseCache
	log   *logger.Logger
}

// NewCachedCourseRepository создает репозиторий с кэшированием
func NewCachedCourseRepository(repo CourseRepository, cache CourseCache, log *logger.Logger) CourseRepository {
	return &CachedCourseRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List сначала ищет список в кэше, затем в БД
func (r *CachedCourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	return r.cachedList(ctx, allCoursesKey, func() ([]domain.Course, error) {
		return r.repo.List(ctx)
	})
}

// ListByTutor сначала ищет список в кэше, затем в БД
func (r *CachedCourseRepository) ListByTutor(ctx context.Context, tutorID string) ([]domain.Course, error) {
	return r.cachedList(ctx, TutorCoursesKey(tutorID), func() ([]domain.Course, error) {
		return r.repo.ListByTutor(ctx, tutorID)
	})
}

// GetByID не кэшируется: используется при оплате, где важна актуальная цена
func (r *CachedCourseRepository) GetByID(ctx context.Context, id string) (domain.Course, error) {
	return r.repo.GetByID(ctx, id)
}

// Create сохраняет курс и сбрасывает кэш списков
func (r *CachedCourseRepository) Create(ctx context.Context, course domain.Course) (domain.Course, error) {
	created, err := r.repo.Create(ctx, course)
	if err != nil {
		return domain.Course{}, err
	}

	if err := r.cache.Invalidate(ctx, allCoursesKey, TutorCoursesKey(created.TutorID)); err != nil {
		r.log.Warnw("Failed to invalidate courses cache", "error", err, "courseID", created.ID)
	}

	return created, nil
}

func (r *CachedCourseRepository) cachedList(ctx context.Context, key string, load func() ([]domain.Course, error)) ([]domain.Course, error) {
	courses, ok, err := r.cache.GetCourses(ctx, key)
	if err != nil {
		r.log.Warnw("Error getting courses from cache", "error", err, "key", key)
	}
	if ok {
		return courses, nil
	}

	courses, err = load()
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetCourses(ctx, key, courses); err != nil {
		r.log.Warnw("Failed to cache courses", "error", err, "key", key)
	}

	return courses, nil
}
