package enrollment_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/internal/storage/memstore"
	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/course-progress-server/pkg/logger"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

type recordedLesson struct {
	lessonID  uuid.UUID
	completed bool
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedLesson
}

func (f *fakeRecorder) MarkLessonCompleted(_ context.Context, _, _, lessonID uuid.UUID, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedLesson{lessonID, completed})
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n notification.Notification) (notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return n, nil
}

type fixture struct {
	store    *memstore.Store
	service  *enrollment.Service
	recorder *fakeRecorder
	notifier *fakeNotifier
	course   course.Course
	lessons  []lesson.Lesson
	learner  uuid.UUID
}

func setup(t *testing.T, lessonCount int) *fixture {
	t.Helper()
	ctx := context.Background()
	m := memstore.New()

	c := course.Course{InstructorID: uuid.New(), Title: "Go Basics", Status: course.StatusPublished}
	require.NoError(t, m.Courses().Create(ctx, &c))

	lessons := make([]lesson.Lesson, lessonCount)
	for i := range lessons {
		lessons[i] = lesson.Lesson{CourseID: c.ID, Title: "Lesson", Order: i + 1}
		require.NoError(t, m.Lessons().Create(ctx, &lessons[i]))
	}

	f := &fixture{
		store:    m,
		recorder: &fakeRecorder{},
		notifier: &fakeNotifier{},
		course:   c,
		lessons:  lessons,
		learner:  uuid.New(),
	}
	f.service = enrollment.NewService(m.Enrollments(), m.Courses(), m.Lessons(), f.recorder, f.notifier, logger.Discard())
	return f
}

func (f *fixture) enroll(t *testing.T) enrollment.Enrollment {
	t.Helper()
	e, created, err := f.service.EnrollFree(context.Background(), f.learner, f.course.ID)
	require.NoError(t, err)
	require.True(t, created)
	return e
}

func TestUpdateProgressCompletesCourse(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 4)
	e := f.enroll(t)

	var updated enrollment.Enrollment
	var err error
	for _, l := range f.lessons[:3] {
		updated, err = f.service.UpdateProgress(ctx, f.learner, e.ID, l.ID, true)
		require.NoError(t, err)
	}
	assert.Equal(t, 75, updated.Progress)
	assert.Equal(t, enrollment.StatusActive, updated.Status)
	assert.Empty(t, f.notifier.sent)

	updated, err = f.service.UpdateProgress(ctx, f.learner, e.ID, f.lessons[3].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, enrollment.StatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	assert.Len(t, updated.CompletedLessons, 4)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypeCourseCompleted, f.notifier.sent[0].Type)
	assert.Equal(t, "Go Basics", f.notifier.sent[0].Data["courseTitle"])
	assert.Len(t, f.recorder.calls, 4)

	stored, err := f.store.Enrollments().Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Progress)
}

func TestUpdateProgressRejections(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 2)
	e := f.enroll(t)

	_, err := f.service.UpdateProgress(ctx, uuid.New(), e.ID, f.lessons[0].ID, true)
	assert.ErrorIs(t, err, enrollment.ErrNotOwner)

	_, err = f.service.UpdateProgress(ctx, f.learner, uuid.New(), f.lessons[0].ID, true)
	assert.ErrorIs(t, err, enrollment.ErrEnrollmentNotFound)

	_, err = f.service.UpdateProgress(ctx, f.learner, e.ID, uuid.New(), true)
	assert.ErrorIs(t, err, lesson.ErrLessonNotFound)

	other := lesson.Lesson{CourseID: uuid.New(), Title: "Elsewhere", Order: 1}
	require.NoError(t, f.store.Lessons().Create(ctx, &other))
	_, err = f.service.UpdateProgress(ctx, f.learner, e.ID, other.ID, true)
	assert.ErrorIs(t, err, enrollment.ErrLessonNotInCourse)

	_, err = f.service.Cancel(ctx, e.ID)
	require.NoError(t, err)
	_, err = f.service.UpdateProgress(ctx, f.learner, e.ID, f.lessons[0].ID, true)
	assert.ErrorIs(t, err, enrollment.ErrEnrollmentCanceled)
	assert.Empty(t, f.recorder.calls)
}

func TestConcurrentUpdatesKeepEveryLesson(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 8)
	e := f.enroll(t)

	var wg sync.WaitGroup
	for _, l := range f.lessons {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.service.UpdateProgress(ctx, f.learner, e.ID, id, true)
			assert.NoError(t, err)
		}(l.ID)
	}
	wg.Wait()

	stored, err := f.store.Enrollments().Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, stored.CompletedLessons, 8)
	assert.Equal(t, 100, stored.Progress)
	assert.Equal(t, enrollment.StatusCompleted, stored.Status)
	assert.Len(t, f.notifier.sent, 1, "completion is announced once")
}

func TestEnrollFree(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)

	first := f.enroll(t)
	again, created, err := f.service.EnrollFree(ctx, f.learner, f.course.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	paid := course.Course{InstructorID: uuid.New(), Title: "Paid", Price: types.NewMoney(10), Status: course.StatusPublished}
	require.NoError(t, f.store.Courses().Create(ctx, &paid))
	_, _, err = f.service.EnrollFree(ctx, f.learner, paid.ID)
	assert.ErrorIs(t, err, enrollment.ErrPaymentRequired)

	draft := course.Course{InstructorID: uuid.New(), Title: "Draft", Status: course.StatusDraft}
	require.NoError(t, f.store.Courses().Create(ctx, &draft))
	_, _, err = f.service.EnrollFree(ctx, f.learner, draft.ID)
	assert.ErrorIs(t, err, course.ErrCourseNotFound)
}

func TestGetVisibility(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)
	e := f.enroll(t)

	_, err := f.service.Get(ctx, jwt.Identity{UserID: f.learner, Role: types.UserTypeStudent}, e.ID)
	assert.NoError(t, err)

	_, err = f.service.Get(ctx, jwt.Identity{UserID: uuid.New(), Role: types.UserTypeStudent}, e.ID)
	assert.ErrorIs(t, err, enrollment.ErrNotOwner)

	_, err = f.service.Get(ctx, jwt.Identity{UserID: uuid.New(), Role: types.UserTypeInstructor}, e.ID)
	assert.NoError(t, err)
}

func TestCancelIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)
	e := f.enroll(t)

	cancelled, err := f.service.Cancel(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = f.service.Cancel(ctx, e.ID)
	assert.ErrorIs(t, err, enrollment.ErrInvalidTransition)

	_, err = enrollment.RequireAccess(ctx, f.store.Enrollments(), f.learner, f.course.ID)
	assert.ErrorIs(t, err, enrollment.ErrNotEnrolled)
}

func TestRecalculateAfterLessonRemoved(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 3)
	e := f.enroll(t)

	for _, l := range f.lessons[:2] {
		_, err := f.service.UpdateProgress(ctx, f.learner, e.ID, l.ID, true)
		require.NoError(t, err)
	}

	changed, err := f.service.Recalculate(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, f.store.Lessons().Delete(ctx, f.lessons[2].ID))
	changed, err = f.service.Recalculate(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err := f.store.Enrollments().Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Progress)
	assert.Equal(t, enrollment.StatusCompleted, stored.Status)
}
