package lesson_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/storage/memstore"
	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

func setup(t *testing.T) (*lesson.Service, *memstore.Store, jwt.Identity, course.Course) {
	t.Helper()
	m := memstore.New()
	owner := jwt.Identity{UserID: uuid.New(), Role: types.UserTypeInstructor}
	c := course.Course{InstructorID: owner.UserID, Title: "Course", Status: course.StatusDraft}
	require.NoError(t, m.Courses().Create(context.Background(), &c))
	courses := course.NewService(m.Courses(), m.Lessons())
	return lesson.NewService(m.Lessons(), courses, nil), m, owner, c
}

func TestCreateAndOrderLessons(t *testing.T) {
	ctx := context.Background()
	svc, _, owner, c := setup(t)

	second, err := svc.Create(ctx, owner, c.ID, lesson.CreateInput{Title: "Second", Order: 2})
	require.NoError(t, err)
	first, err := svc.Create(ctx, owner, c.ID, lesson.CreateInput{Title: "First", Order: 1})
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner, c.ID, lesson.CreateInput{Title: "Clash", Order: 2})
	assert.ErrorIs(t, err, lesson.ErrOrderTaken)

	ordered, err := svc.ListByCourse(ctx, owner, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, lesson.IDs(ordered))

	next, ok := lesson.Next(ordered, first.ID)
	assert.True(t, ok)
	assert.Equal(t, second.ID, next.ID)
	_, ok = lesson.Next(ordered, second.ID)
	assert.False(t, ok)
}

func TestLessonValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, owner, c := setup(t)

	_, err := svc.Create(ctx, owner, c.ID, lesson.CreateInput{Title: " ", Order: 1})
	assert.ErrorIs(t, err, lesson.ErrTitleRequired)
	_, err = svc.Create(ctx, owner, c.ID, lesson.CreateInput{Title: "x", Order: 0})
	assert.ErrorIs(t, err, lesson.ErrOrderInvalid)
	_, err = svc.Create(ctx, owner, c.ID, lesson.CreateInput{Title: "x", Order: 1, Duration: -5})
	assert.ErrorIs(t, err, lesson.ErrDurationInvalid)
}

func TestLessonAccess(t *testing.T) {
	ctx := context.Background()
	svc, m, owner, c := setup(t)
	l, err := svc.Create(ctx, owner, c.ID, lesson.CreateInput{Title: "Hidden", Order: 1})
	require.NoError(t, err)

	student := jwt.Identity{UserID: uuid.New(), Role: types.UserTypeStudent}
	_, err = svc.Get(ctx, student, l.ID)
	assert.ErrorIs(t, err, course.ErrCourseNotFound, "lessons of drafts are hidden")

	_, err = svc.Create(ctx, jwt.Identity{UserID: uuid.New(), Role: types.UserTypeInstructor}, c.ID, lesson.CreateInput{Title: "x", Order: 2})
	assert.ErrorIs(t, err, course.ErrNotOwner)

	other := course.Course{InstructorID: owner.UserID, Title: "Other"}
	require.NoError(t, m.Courses().Create(ctx, &other))
	title := "Moved"
	_, err = svc.Update(ctx, owner, other.ID, l.ID, lesson.UpdateInput{Title: &title})
	assert.ErrorIs(t, err, lesson.ErrCourseMismatch)

	updated, err := svc.Update(ctx, owner, c.ID, l.ID, lesson.UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Moved", updated.Title)

	require.NoError(t, svc.Delete(ctx, owner, c.ID, l.ID))
	_, err = svc.Get(ctx, owner, l.ID)
	assert.ErrorIs(t, err, lesson.ErrLessonNotFound)
}

type recordingListener struct {
	courses []uuid.UUID
}

func (r *recordingListener) InvalidateCourse(_ context.Context, courseID uuid.UUID) {
	r.courses = append(r.courses, courseID)
}

func TestLessonWritesNotifyListener(t *testing.T) {
	ctx := context.Background()
	m := memstore.New()
	owner := jwt.Identity{UserID: uuid.New(), Role: types.UserTypeInstructor}
	c := course.Course{InstructorID: owner.UserID, Title: "Course", Status: course.StatusDraft}
	require.NoError(t, m.Courses().Create(ctx, &c))
	listener := &recordingListener{}
	svc := lesson.NewService(m.Lessons(), course.NewService(m.Courses(), m.Lessons()), listener)

	l, err := svc.Create(ctx, owner, c.ID, lesson.CreateInput{Title: "One", Order: 1})
	require.NoError(t, err)
	order := 2
	_, err = svc.Update(ctx, owner, c.ID, l.ID, lesson.UpdateInput{Order: &order})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, owner, c.ID, l.ID))
	assert.Equal(t, []uuid.UUID{c.ID, c.ID, c.ID}, listener.courses)

	_, err = svc.Create(ctx, owner, c.ID, lesson.CreateInput{Title: "", Order: 1})
	require.Error(t, err)
	assert.Len(t, listener.courses, 3, "rejected writes do not invalidate")
}
