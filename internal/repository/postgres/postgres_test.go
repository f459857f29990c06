package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Dhoini/course-marketplace/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), repository.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505"}), repository.ErrDuplicate)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23503"}), repository.ErrInvalidData)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other))
}

func TestMigrations_Embedded(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "001_init.sql", migrations[0].Version)
	for _, table := range []string{"courses", "payments", "course_enrollments"} {
		assert.True(t, strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS "+table), table)
	}
	assert.Contains(t, migrations[0].SQL, "UNIQUE (user_id, course_id)")
}
