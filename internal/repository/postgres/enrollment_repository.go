package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/repository"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentRepository реализация репозитория записей на курсы через PostgreSQL
type EnrollmentRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewEnrollmentRepository создает новый репозиторий записей
func NewEnrollmentRepository(db *pgxpool.Pool, log *logger.Logger) *EnrollmentRepository {
	return &EnrollmentRepository{
		db:  db,
		log: log,
	}
}

// Create добавляет запись на курс; повторная запись возвращает существующую
func (r *EnrollmentRepository) Create(ctx context.Context, userID, courseID string) (domain.CourseEnrollment, bool, error) {
	insert := `
		INSERT INTO course_enrollments (id, user_id, course_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id) DO NOTHING
		RETURNING id, user_id, course_id, created_at
	`

	var e domain.CourseEnrollment
	err := r.db.QueryRow(ctx, insert, uuid.NewString(), userID, courseID).
		Scan(&e.ID, &e.UserID, &e.CourseID, &e.CreatedAt)
	if err == nil {
		return e, true, nil
	}

	mapped := mapError(err)
	if !errors.Is(mapped, repository.ErrNotFound) {
		if mapped != err {
			return domain.CourseEnrollment{}, false, mapped
		}
		return domain.CourseEnrollment{}, false, fmt.Errorf("failed to create enrollment: %w", err)
	}

	// ON CONFLICT DO NOTHING не возвращает строк: запись уже есть
	existing := `SELECT id, user_id, course_id, created_at FROM course_enrollments WHERE user_id = $1 AND course_id = $2`
	if err := r.db.QueryRow(ctx, existing, userID, courseID).Scan(&e.ID, &e.UserID, &e.CourseID, &e.CreatedAt); err != nil {
		return domain.CourseEnrollment{}, false, fmt.Errorf("failed to load existing enrollment: %w", err)
	}
	return e, false, nil
}

// ListCoursesByUser возвращает курсы, на которые записан пользователь
func (r *EnrollmentRepository) ListCoursesByUser(ctx context.Context, userID string) ([]domain.Course, error) {
	query := `
		SELECT c.id, c.title, c.description, c.zoom_link, c.price, c.slots, c.tutor_id, c.created_at, c.updated_at
		FROM course_enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrolled courses: %w", err)
	}
	return collectCourses(rows)
}
