package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	// Ключи кэша списков курсов
	allCoursesKey         = "courses:all"
	tutorCoursesKeyPrefix = "courses:tutor:"

	defaultCacheTTL = 5 * time.Minute
)

// CourseCache кэш списков курсов
type CourseCache interface {
	// GetCourses возвращает (nil, false, nil), если ключа нет в кэше
	GetCourses(ctx context.Context, key string) ([]domain.Course, bool, error)
	SetCourses(ctx context.Context, key string, courses []domain.Course) error
	Invalidate(ctx context.Context, keys ...string) error
}

// TutorCoursesKey ключ кэша курсов преподавателя
func TutorCoursesKey(tutorID string) string {
	return tutorCoursesKeyPrefix + tutorID
}

// RedisCourseCache реализует CourseCache поверх Redis
type RedisCourseCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCourseCache подключается к Redis и проверяет соединение
func NewRedisCourseCache(ctx context.Context, addr, password string, db int, ttl time.Duration, log *logger.Logger) (*RedisCourseCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	log.Infow("Connected to Redis successfully", "addr", addr)
	return NewRedisCourseCacheWithClient(client, ttl, log), nil
}

// NewRedisCourseCacheWithClient использует уже созданный клиент
func NewRedisCourseCacheWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCourseCache {
	return &RedisCourseCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Ping проверяет доступность Redis
func (c *RedisCourseCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close закрывает соединение с Redis
func (c *RedisCourseCache) Close() error {
	return c.client.Close()
}

// GetCourses получает список курсов из кэша
func (c *RedisCourseCache) GetCourses(ctx context.Context, key string) ([]domain.Course, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.log.Debugw("Courses not found in cache", "key", key)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get courses from cache: %w", err)
	}

	var courses []domain.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached courses: %w", err)
	}

	c.log.Debugw("Courses retrieved from cache", "key", key, "count", len(courses))
	return courses, true, nil
}

// SetCourses кэширует список курсов
func (c *RedisCourseCache) SetCourses(ctx context.Context, key string, courses []domain.Course) error {
	data, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("failed to marshal courses: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache courses: %w", err)
	}

	c.log.Debugw("Courses cached", "key", key, "count", len(courses))
	return nil
}

// Invalidate удаляет ключи из кэша
func (c *RedisCourseCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate courses cache: %w", err)
	}
	return nil
}
