package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError_KindMatching(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Forbidden("Unauthorized"))

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestError_InternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Internal server error", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: connection refused", err.Error())
}

func TestCaller(t *testing.T) {
	var anonymous Caller
	assert.False(t, anonymous.Authenticated())
	assert.False(t, anonymous.Is(RoleStudent))

	tutor := Caller{ID: "u1", Role: RoleTutor}
	assert.True(t, tutor.Is(RoleTutor))
	assert.True(t, tutor.IsSelf("u1", RoleTutor))
	assert.False(t, tutor.IsSelf("u2", RoleTutor))
	assert.False(t, tutor.IsSelf("u1", RoleStudent))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(5000), Course{Price: 50}.PriceMinorUnits())
	assert.Equal(t, 12.5, FromMinorUnits(1250))
}

func TestSlotOrdered(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, Slot{StartTime: start, EndTime: start.Add(time.Hour)}.Ordered())
	assert.False(t, Slot{StartTime: start, EndTime: start}.Ordered())
	assert.False(t, Slot{StartTime: start.Add(time.Hour), EndTime: start}.Ordered())
}

func TestNewCourseMissingRequired(t *testing.T) {
	assert.True(t, NewCourse{Price: 10, Slots: []Slot{}}.MissingRequired())
	assert.True(t, NewCourse{Title: "Go", Slots: []Slot{}}.MissingRequired())
	assert.True(t, NewCourse{Title: "Go", Price: 10}.MissingRequired())
	assert.False(t, NewCourse{Title: "Go", Price: 10, Slots: []Slot{}}.MissingRequired())
}
