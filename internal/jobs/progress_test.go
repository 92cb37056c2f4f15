package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/storage/memstore"
	"github.com/mo-amir99/course-progress-server/pkg/logger"
)

func TestProgressJobRecalculatesStaleEnrollments(t *testing.T) {
	ctx := context.Background()
	m := memstore.New()

	c := course.Course{InstructorID: uuid.New(), Title: "Course", Status: course.StatusPublished}
	require.NoError(t, m.Courses().Create(ctx, &c))
	first := lesson.Lesson{CourseID: c.ID, Title: "One", Order: 1}
	require.NoError(t, m.Lessons().Create(ctx, &first))

	// 250 enrollments crosses two batch boundaries.
	ids := make([]uuid.UUID, 250)
	for i := range ids {
		e := enrollment.Enrollment{
			UserID:           uuid.New(),
			CourseID:         c.ID,
			Status:           enrollment.StatusActive,
			CompletedLessons: []string{first.ID.String()},
			Progress:         100,
		}
		require.NoError(t, m.Enrollments().Create(ctx, &e))
		ids[i] = e.ID
	}

	second := lesson.Lesson{CourseID: c.ID, Title: "Two", Order: 2}
	require.NoError(t, m.Lessons().Create(ctx, &second))

	svc := enrollment.NewService(m.Enrollments(), m.Courses(), m.Lessons(), nil, nil, logger.Discard())
	job := NewProgressRecalculationJob(svc, logger.Discard())
	require.NoError(t, job.Execute(ctx))

	for _, id := range ids {
		e, err := m.Enrollments().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 50, e.Progress)
	}
}

type failingRecalculator struct {
	batches [][]enrollment.Enrollment
	calls   int
}

func (f *failingRecalculator) ListActive(_ context.Context, afterID uuid.UUID, _ int) ([]enrollment.Enrollment, error) {
	if afterID == uuid.Nil {
		return f.batches[0], nil
	}
	return nil, nil
}

func (f *failingRecalculator) Recalculate(context.Context, uuid.UUID) (bool, error) {
	f.calls++
	return false, errors.New("boom")
}

func TestProgressJobContinuesPastFailures(t *testing.T) {
	rec := &failingRecalculator{batches: [][]enrollment.Enrollment{make([]enrollment.Enrollment, 3)}}
	job := NewProgressRecalculationJob(rec, logger.Discard())

	assert.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, 3, rec.calls)
	assert.Equal(t, "progress_recalculation", job.Name())
}
