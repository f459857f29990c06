package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func course(id, tutorID string, createdAt time.Time) domain.Course {
	return domain.Course{
		ID:        id,
		Title:     "Course " + id,
		Price:     25,
		TutorID:   tutorID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestInMemoryCourseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCourseRepository(logger.Discard())
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, course("c1", "t1", base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, course("c2", "t2", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, course("c3", "t1", base.Add(2*time.Hour)))
	require.NoError(t, err)

	_, err = repo.Create(ctx, course("c1", "t1", base))
	assert.ErrorIs(t, err, ErrDuplicate)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c3", all[0].ID)

	byTutor, err := repo.ListByTutor(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, byTutor, 2)

	none, err := repo.ListByTutor(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryPaymentRepository_MarkSucceeded(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryPaymentRepository(logger.Discard())

	_, err := repo.Create(ctx, domain.Payment{ID: "p1", Amount: 10, Status: domain.PaymentStatusPending, UserID: "u1", CourseID: "c1"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Payment{ID: "p2", Amount: 20, Status: domain.PaymentStatusPending, UserID: "u1", CourseID: "c2"})
	require.NoError(t, err)

	updated, err := repo.MarkSucceeded(ctx, []string{"p1", "p1", "", "unknown"})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, domain.PaymentStatusSucceeded, updated[0].Status)

	p2, err := repo.GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, p2.Status)

	none, err := repo.MarkSucceeded(ctx, []string{"nothing"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.Create(ctx, domain.Payment{ID: "p1"})
	assert.ErrorIs(t, err, ErrDuplicate)

	assert.Equal(t, 2, repo.Count())
}

func TestInMemoryEnrollmentRepository(t *testing.T) {
	ctx := context.Background()
	courses := NewInMemoryCourseRepository(logger.Discard())
	_, err := courses.Create(ctx, course("c1", "t1", time.Now()))
	require.NoError(t, err)
	repo := NewInMemoryEnrollmentRepository(courses, logger.Discard())

	first, created, err := repo.Create(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repo.Create(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	_, _, err = repo.Create(ctx, "s1", "missing")
	assert.ErrorIs(t, err, ErrInvalidData)

	enrolled, err := repo.ListCoursesByUser(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, "c1", enrolled[0].ID)

	empty, err := repo.ListCoursesByUser(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

type fakeCourseCache struct {
	data        map[string][]domain.Course
	gets        int
	invalidated []string
	getErr      error
}

func newFakeCourseCache() *fakeCourseCache {
	return &fakeCourseCache{data: make(map[string][]domain.Course)}
}

func (f *fakeCourseCache) GetCourses(ctx context.Context, key string) ([]domain.Course, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	courses, ok := f.data[key]
	return courses, ok, nil
}

func (f *fakeCourseCache) SetCourses(ctx context.Context, key string, courses []domain.Course) error {
	f.data[key] = courses
	return nil
}

func (f *fakeCourseCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	f.invalidated = append(f.invalidated, keys...)
	return nil
}

func TestCachedCourseRepository_ReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	inner := NewInMemoryCourseRepository(logger.Discard())
	cache := newFakeCourseCache()
	repo := NewCachedCourseRepository(inner, cache, logger.Discard())

	_, err := repo.Create(ctx, course("c1", "t1", time.Now()))
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, cache.data, allCoursesKey)

	// запись в обход декоратора не видна, пока кэш не сброшен
	_, err = inner.Create(ctx, course("c2", "t1", time.Now()))
	require.NoError(t, err)
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.Create(ctx, course("c3", "t1", time.Now()))
	require.NoError(t, err)
	assert.Contains(t, cache.invalidated, allCoursesKey)
	assert.Contains(t, cache.invalidated, TutorCoursesKey("t1"))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestCachedCourseRepository_CacheErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	inner := NewInMemoryCourseRepository(logger.Discard())
	_, err := inner.Create(ctx, course("c1", "t1", time.Now()))
	require.NoError(t, err)

	cache := newFakeCourseCache()
	cache.getErr = errors.New("redis down")
	repo := NewCachedCourseRepository(inner, cache, logger.Discard())

	list, err := repo.ListByTutor(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
