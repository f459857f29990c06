package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/repository"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `id, title, description, zoom_link, price, slots, tutor_id, created_at, updated_at`

// CourseRepository реализация репозитория курсов через PostgreSQL
type CourseRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewCourseRepository создает новый репозиторий курсов
func NewCourseRepository(db *pgxpool.Pool, log *logger.Logger) *CourseRepository {
	return &CourseRepository{
		db:  db,
		log: log,
	}
}

// List возвращает все курсы
func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	return collectCourses(rows)
}

// ListByTutor возвращает курсы преподавателя
func (r *CourseRepository) ListByTutor(ctx context.Context, tutorID string) ([]domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE tutor_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tutor courses: %w", err)
	}
	return collectCourses(rows)
}

// GetByID возвращает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id string) (domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if mapped := mapError(err); errors.Is(mapped, repository.ErrNotFound) || errors.Is(mapped, repository.ErrInvalidData) {
			return domain.Course{}, repository.ErrNotFound
		}
		return domain.Course{}, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// Create сохраняет новый курс
func (r *CourseRepository) Create(ctx context.Context, course domain.Course) (domain.Course, error) {
	slots, err := json.Marshal(course.Slots)
	if err != nil {
		return domain.Course{}, fmt.Errorf("failed to marshal slots: %w", err)
	}

	query := `
		INSERT INTO courses (id, title, description, zoom_link, price, slots, tutor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + courseColumns

	created, err := scanCourse(r.db.QueryRow(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.ZoomLink,
		course.Price,
		slots,
		course.TutorID,
		course.CreatedAt,
		course.UpdatedAt,
	))
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return domain.Course{}, mapped
		}
		return domain.Course{}, fmt.Errorf("failed to create course: %w", err)
	}

	r.log.Debugw("Course inserted", "courseID", created.ID, "tutorID", created.TutorID)
	return created, nil
}

func scanCourse(row pgx.Row) (domain.Course, error) {
	var course domain.Course
	var slots []byte

	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.ZoomLink,
		&course.Price,
		&slots,
		&course.TutorID,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return domain.Course{}, err
	}

	course.Slots = []domain.Slot{}
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &course.Slots); err != nil {
			return domain.Course{}, fmt.Errorf("failed to unmarshal slots of course %s: %w", course.ID, err)
		}
	}
	return course, nil
}

func collectCourses(rows pgx.Rows) ([]domain.Course, error) {
	defer rows.Close()

	courses := make([]domain.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}
