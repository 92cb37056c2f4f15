package enrollment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lessonIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestComputeProgress(t *testing.T) {
	ids := lessonIDs(3)

	assert.Equal(t, 0, ComputeProgress(nil, nil))
	assert.Equal(t, 0, ComputeProgress([]string{ids[0].String()}, nil))
	assert.Equal(t, 33, ComputeProgress([]string{ids[0].String()}, ids))
	assert.Equal(t, 67, ComputeProgress([]string{ids[0].String(), ids[1].String()}, ids))
	assert.Equal(t, 33, ComputeProgress([]string{ids[0].String(), uuid.NewString()}, ids), "stale ids are ignored")
}

func TestApplyLessonCompletionCompletesCourse(t *testing.T) {
	ids := lessonIDs(4)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := &Enrollment{Status: StatusActive}

	for i := 0; i < 3; i++ {
		done := ApplyLessonCompletion(e, ids, ids[i], true, start)
		assert.False(t, done)
	}
	assert.Equal(t, 75, e.Progress)
	assert.Equal(t, StatusActive, e.Status)
	assert.Nil(t, e.CompletedAt)

	finish := start.Add(time.Hour)
	done := ApplyLessonCompletion(e, ids, ids[3], true, finish)
	assert.True(t, done)
	assert.Equal(t, 100, e.Progress)
	assert.Equal(t, StatusCompleted, e.Status)
	require.NotNil(t, e.CompletedAt)
	assert.Equal(t, finish, *e.CompletedAt)
	assert.Equal(t, finish, e.LastAccessedAt)
}

func TestApplyLessonCompletionIsIdempotent(t *testing.T) {
	ids := lessonIDs(2)
	e := &Enrollment{Status: StatusActive}
	now := time.Now()

	ApplyLessonCompletion(e, ids, ids[0], true, now)
	ApplyLessonCompletion(e, ids, ids[0], true, now)
	assert.Len(t, e.CompletedLessons, 1)
	assert.Equal(t, 50, e.Progress)

	ApplyLessonCompletion(e, ids, ids[1], false, now)
	assert.Len(t, e.CompletedLessons, 1, "removing an absent lesson is a no-op")
}

func TestCompletedEnrollmentStaysCompleted(t *testing.T) {
	ids := lessonIDs(2)
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := &Enrollment{Status: StatusActive}

	ApplyLessonCompletion(e, ids, ids[0], true, first)
	require.True(t, ApplyLessonCompletion(e, ids, ids[1], true, first))

	later := first.Add(24 * time.Hour)
	assert.False(t, ApplyLessonCompletion(e, ids, ids[1], false, later))
	assert.Equal(t, 50, e.Progress)
	assert.Equal(t, StatusCompleted, e.Status)
	assert.Equal(t, first, *e.CompletedAt)

	assert.False(t, ApplyLessonCompletion(e, ids, ids[1], true, later))
	assert.Equal(t, first, *e.CompletedAt, "completedAt is not stamped again")
}

func TestRemovalDoesNotAliasPreviousSlice(t *testing.T) {
	ids := lessonIDs(3)
	e := &Enrollment{Status: StatusActive}
	for _, id := range ids {
		ApplyLessonCompletion(e, ids, id, true, time.Now())
	}
	before := e.CompletedLessons

	ApplyLessonCompletion(e, ids, ids[0], false, time.Now())
	assert.Equal(t, ids[0].String(), before[0])
	assert.NotContains(t, []string(e.CompletedLessons), ids[0].String())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusActive, StatusCompleted))
	assert.True(t, CanTransition(StatusActive, StatusCancelled))
	assert.False(t, CanTransition(StatusCompleted, StatusActive))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusActive))
	assert.False(t, CanTransition(StatusActive, StatusActive))
}

func TestViewNeverReturnsNullLessons(t *testing.T) {
	v := Enrollment{Status: StatusActive}.View()
	assert.NotNil(t, v.CompletedLessons)
	assert.Empty(t, v.CompletedLessons)
}
