package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/internal/features/progress"
	"github.com/mo-amir99/course-progress-server/internal/storage/memstore"
	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/course-progress-server/pkg/cache"
	"github.com/mo-amir99/course-progress-server/pkg/logger"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

type fakeNotifier struct {
	sent []notification.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n notification.Notification) (notification.Notification, error) {
	f.sent = append(f.sent, n)
	return n, nil
}

type fixture struct {
	store    *memstore.Store
	cache    *cache.MemoryCache
	service  *progress.Service
	notifier *fakeNotifier
	course   course.Course
	lessons  []lesson.Lesson
	learner  uuid.UUID
}

func setup(t *testing.T, lessonCount int) *fixture {
	t.Helper()
	ctx := context.Background()
	m := memstore.New()

	c := course.Course{InstructorID: uuid.New(), Title: "Course", Status: course.StatusPublished}
	require.NoError(t, m.Courses().Create(ctx, &c))

	lessons := make([]lesson.Lesson, lessonCount)
	for i := range lessons {
		lessons[i] = lesson.Lesson{CourseID: c.ID, Title: "Lesson", Order: (i + 1) * 10}
		require.NoError(t, m.Lessons().Create(ctx, &lessons[i]))
	}

	learner := uuid.New()
	e := enrollment.Enrollment{UserID: learner, CourseID: c.ID, Status: enrollment.StatusActive}
	require.NoError(t, m.Enrollments().Create(ctx, &e))

	f := &fixture{
		store:    m,
		cache:    cache.NewMemoryCache(),
		notifier: &fakeNotifier{},
		course:   c,
		lessons:  lessons,
		learner:  learner,
	}
	f.service = progress.NewService(m.Progress(), m.Lessons(), m.Enrollments(), f.cache, time.Minute, f.notifier, logger.Discard())
	return f
}

func (f *fixture) state(t *testing.T) map[string]progress.LessonState {
	t.Helper()
	states, err := f.service.CourseProgress(context.Background(), f.learner, f.course.ID)
	require.NoError(t, err)
	return states
}

func TestPassingQuizUnlocksNextLesson(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 3)

	before := f.state(t)
	assert.True(t, before[f.lessons[0].ID.String()].IsUnlocked)
	assert.False(t, before[f.lessons[1].ID.String()].IsUnlocked)

	result, err := f.service.CompleteQuiz(ctx, f.learner, f.lessons[0].ID, 80, true)
	require.NoError(t, err)
	assert.True(t, result.QuizCompleted)
	assert.Equal(t, 80, result.Score)
	require.NotNil(t, result.UnlockedLesson)
	assert.Equal(t, f.lessons[1].ID, *result.UnlockedLesson)
	assert.Equal(t, "Quiz completed. Next lesson unlocked.", result.Message)

	after := f.state(t)
	first := after[f.lessons[0].ID.String()]
	assert.True(t, first.QuizCompleted)
	require.NotNil(t, first.QuizScore)
	assert.Equal(t, 80, *first.QuizScore)
	assert.NotNil(t, first.QuizCompletedAt)
	assert.True(t, after[f.lessons[1].ID.String()].IsUnlocked, "cached map must be invalidated")
	assert.False(t, after[f.lessons[2].ID.String()].IsUnlocked)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypeLessonUnlocked, f.notifier.sent[0].Type)
	assert.Equal(t, f.lessons[1].ID.String(), f.notifier.sent[0].Data["lessonId"])
}

func TestFailingQuizUnlocksNothing(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 2)

	result, err := f.service.CompleteQuiz(ctx, f.learner, f.lessons[0].ID, 30, false)
	require.NoError(t, err)
	assert.False(t, result.QuizCompleted)
	assert.Nil(t, result.UnlockedLesson)
	assert.Equal(t, "Quiz not passed. Review the lesson and try again.", result.Message)

	states := f.state(t)
	assert.False(t, states[f.lessons[0].ID.String()].QuizCompleted)
	assert.False(t, states[f.lessons[1].ID.String()].IsUnlocked)
	assert.Empty(t, f.notifier.sent)
}

func TestPassingLastLessonQuiz(t *testing.T) {
	f := setup(t, 2)
	result, err := f.service.CompleteQuiz(context.Background(), f.learner, f.lessons[1].ID, 100, true)
	require.NoError(t, err)
	assert.Nil(t, result.UnlockedLesson)
	assert.Equal(t, "Quiz completed. This was the last lesson.", result.Message)
	assert.Empty(t, f.notifier.sent)
}

func TestRepeatedPassNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 2)
	for i := 0; i < 2; i++ {
		_, err := f.service.CompleteQuiz(ctx, f.learner, f.lessons[0].ID, 90, true)
		require.NoError(t, err)
	}
	assert.Len(t, f.notifier.sent, 1)
}

func TestCompleteQuizRejections(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)

	_, err := f.service.CompleteQuiz(ctx, f.learner, f.lessons[0].ID, 101, true)
	assert.ErrorIs(t, err, progress.ErrInvalidScore)

	_, err = f.service.CompleteQuiz(ctx, f.learner, uuid.New(), 50, true)
	assert.ErrorIs(t, err, lesson.ErrLessonNotFound)

	_, err = f.service.CompleteQuiz(ctx, uuid.New(), f.lessons[0].ID, 50, true)
	assert.ErrorIs(t, err, enrollment.ErrNotEnrolled)

	_, err = f.service.CourseProgress(ctx, uuid.New(), f.course.ID)
	assert.ErrorIs(t, err, enrollment.ErrNotEnrolled)
}

func TestBuildProgressMap(t *testing.T) {
	first := lesson.Lesson{Order: 1}
	first.ID = uuid.New()
	locked := lesson.Lesson{Order: 2}
	locked.ID = uuid.New()
	preview := lesson.Lesson{Order: 3, IsPreview: true}
	preview.ID = uuid.New()
	unlocked := lesson.Lesson{Order: 4}
	unlocked.ID = uuid.New()

	score := 70
	rows := []progress.LessonProgress{
		{LessonID: unlocked.ID, IsUnlocked: true, QuizCompleted: true, QuizScore: &score},
		{LessonID: uuid.New(), IsUnlocked: true},
	}

	states := progress.BuildProgressMap([]lesson.Lesson{first, locked, preview, unlocked}, rows)

	assert.Len(t, states, 4, "rows for lessons outside the course are dropped")
	assert.True(t, states[first.ID.String()].IsUnlocked)
	assert.False(t, states[locked.ID.String()].IsUnlocked)
	assert.True(t, states[preview.ID.String()].IsUnlocked)
	assert.True(t, states[unlocked.ID.String()].IsUnlocked)
	assert.True(t, states[unlocked.ID.String()].QuizCompleted)
}

func TestTrackAccumulatesTime(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)

	_, err := f.service.Track(ctx, f.learner, f.lessons[0].ID, 30, 30)
	require.NoError(t, err)
	p, err := f.service.Track(ctx, f.learner, f.lessons[0].ID, 95, 65)
	require.NoError(t, err)

	assert.Equal(t, 95, p.LastPosition)
	assert.Equal(t, 95, p.TimeSpent)
	assert.NotNil(t, p.LastAccessedAt)
}

func TestMarkLessonCompletedKeepsFirstTimestamp(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)
	id := f.lessons[0].ID

	require.NoError(t, f.service.MarkLessonCompleted(ctx, f.learner, f.course.ID, id, true))
	first := f.state(t)[id.String()].CompletedAt
	require.NotNil(t, first)

	require.NoError(t, f.service.MarkLessonCompleted(ctx, f.learner, f.course.ID, id, true))
	assert.Equal(t, *first, *f.state(t)[id.String()].CompletedAt)

	require.NoError(t, f.service.MarkLessonCompleted(ctx, f.learner, f.course.ID, id, false))
	state := f.state(t)[id.String()]
	assert.False(t, state.IsCompleted)
	assert.Nil(t, state.CompletedAt)
}

func TestLessonChangesRefreshCachedMap(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 2)
	owner := jwt.Identity{UserID: f.course.InstructorID, Role: types.UserTypeInstructor}
	lessons := lesson.NewService(f.store.Lessons(), course.NewService(f.store.Courses(), f.store.Lessons()), f.service)

	require.Len(t, f.state(t), 2)

	added, err := lessons.Create(ctx, owner, f.course.ID, lesson.CreateInput{Title: "Bonus", Order: 5})
	require.NoError(t, err)
	states := f.state(t)
	require.Len(t, states, 3, "new lesson must show up without waiting for the TTL")
	assert.True(t, states[added.ID.String()].IsUnlocked, "lowest order is the first lesson")
	assert.False(t, states[f.lessons[0].ID.String()].IsUnlocked)

	require.NoError(t, lessons.Delete(ctx, owner, f.course.ID, added.ID))
	states = f.state(t)
	require.Len(t, states, 2)
	assert.True(t, states[f.lessons[0].ID.String()].IsUnlocked)
}

func TestInvalidateCourseLeavesOtherCoursesCached(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)
	require.Len(t, f.state(t), 1)

	extra := lesson.Lesson{CourseID: f.course.ID, Title: "Hidden", Order: 99}
	require.NoError(t, f.store.Lessons().Create(ctx, &extra))

	f.service.InvalidateCourse(ctx, uuid.New())
	assert.Len(t, f.state(t), 1, "unrelated course bump keeps this map cached")

	f.service.InvalidateCourse(ctx, f.course.ID)
	assert.Len(t, f.state(t), 2)
}
