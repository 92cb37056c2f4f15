package quiz_test

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
	"github.com/mo-amir99/course-progress-server/internal/features/quiz"
	"github.com/mo-amir99/course-progress-server/internal/storage/memstore"
	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/course-progress-server/pkg/logger"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

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
	store      *memstore.Store
	service    *quiz.Service
	notifier   *fakeNotifier
	instructor jwt.Identity
	learner    jwt.Identity
	course     course.Course
	lesson     lesson.Lesson
}

func setup(t *testing.T, store quiz.Store) *fixture {
	t.Helper()
	ctx := context.Background()
	m := memstore.New()
	if store == nil {
		store = m.Quizzes()
	}

	instructor := jwt.Identity{UserID: uuid.New(), Role: types.UserTypeInstructor}
	learner := jwt.Identity{UserID: uuid.New(), Role: types.UserTypeStudent}

	c := course.Course{InstructorID: instructor.UserID, Title: "Course", Status: course.StatusPublished}
	require.NoError(t, m.Courses().Create(ctx, &c))
	l := lesson.Lesson{CourseID: c.ID, Title: "Lesson", Order: 1}
	require.NoError(t, m.Lessons().Create(ctx, &l))
	e := enrollment.Enrollment{UserID: learner.UserID, CourseID: c.ID, Status: enrollment.StatusActive}
	require.NoError(t, m.Enrollments().Create(ctx, &e))

	f := &fixture{
		store:      m,
		notifier:   &fakeNotifier{},
		instructor: instructor,
		learner:    learner,
		course:     c,
		lesson:     l,
	}
	courses := course.NewService(m.Courses(), m.Lessons())
	f.service = quiz.NewService(store, courses, m.Lessons(), m.Enrollments(), f.notifier, logger.Discard(), 3)
	return f
}

func (f *fixture) createQuiz(t *testing.T, maxAttempts *int) quiz.Quiz {
	t.Helper()
	q, err := f.service.Create(context.Background(), f.instructor, f.course.ID, quiz.CreateInput{
		LessonID:     &f.lesson.ID,
		Title:        "Checkpoint",
		PassingScore: 50,
		MaxAttempts:  maxAttempts,
		Questions: []quiz.Question{
			{ID: "q1", QuestionText: "Pick B", Type: quiz.QuestionMultipleChoice, Options: []string{"A", "B"}, CorrectAnswer: "B", Points: 1},
			{ID: "q2", QuestionText: "1+1", Type: quiz.QuestionShortAnswer, CorrectAnswer: "2", Points: 1},
		},
	})
	require.NoError(t, err)
	return q
}

func TestSubmitAttemptNumbersAttempts(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	q := f.createQuiz(t, nil)

	first, result, err := f.service.SubmitAttempt(ctx, q.ID, f.learner.UserID, quiz.SubmitInput{Answers: []string{"A", "1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, first.AttemptNumber)
	assert.False(t, result.Passed)
	assert.Empty(t, f.notifier.sent)

	second, result, err := f.service.SubmitAttempt(ctx, q.ID, f.learner.UserID, quiz.SubmitInput{Answers: []string{"B", "2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, second.AttemptNumber)
	assert.True(t, result.Passed)
	assert.Equal(t, 2, result.Score)
	assert.InDelta(t, 100.0, second.Percentage, 0.001)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypeQuizPassed, f.notifier.sent[0].Type)

	attempts, err := f.service.ListAttempts(ctx, f.learner.UserID, q.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 1, attempts[0].AttemptNumber)
}

func TestSubmitAttemptEnforcesLimit(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	limit := 1
	q := f.createQuiz(t, &limit)

	_, _, err := f.service.SubmitAttempt(ctx, q.ID, f.learner.UserID, quiz.SubmitInput{Answers: []string{"B", "2"}})
	require.NoError(t, err)

	_, _, err = f.service.SubmitAttempt(ctx, q.ID, f.learner.UserID, quiz.SubmitInput{Answers: []string{"B", "2"}})
	assert.ErrorIs(t, err, quiz.ErrAttemptLimitExceeded)
	assert.Contains(t, err.Error(), "1 allowed")
}

func TestSubmitAttemptRejections(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	q := f.createQuiz(t, nil)

	_, _, err := f.service.SubmitAttempt(ctx, uuid.New(), f.learner.UserID, quiz.SubmitInput{})
	assert.ErrorIs(t, err, quiz.ErrQuizNotFound)

	_, _, err = f.service.SubmitAttempt(ctx, q.ID, uuid.New(), quiz.SubmitInput{Answers: []string{"B"}})
	assert.ErrorIs(t, err, enrollment.ErrNotEnrolled)

	_, _, err = f.service.SubmitAttempt(ctx, q.ID, f.learner.UserID, quiz.SubmitInput{Answers: []string{"B", "2", "extra"}})
	assert.ErrorIs(t, err, quiz.ErrTooManyAnswers)
}

func TestConcurrentSubmissionsGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	q := f.createQuiz(t, nil)

	const submissions = 5
	var wg sync.WaitGroup
	numbers := make(chan int, submissions)
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, _, err := f.service.SubmitAttempt(ctx, q.ID, f.learner.UserID, quiz.SubmitInput{Answers: []string{"B", "2"}})
			if err == nil {
				numbers <- a.AttemptNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[int]bool{}
	for n := range numbers {
		assert.False(t, seen[n], "attempt number %d used twice", n)
		seen[n] = true
	}
}

// racingStore inserts a competing attempt right before the first insert so
// the service has to recount and retry.
type racingStore struct {
	quiz.Store
	once sync.Once
}

func (r *racingStore) CreateAttempt(ctx context.Context, a *quiz.Attempt) error {
	r.once.Do(func() {
		rival := *a
		rival.ID = uuid.Nil
		_ = r.Store.CreateAttempt(ctx, &rival)
	})
	return r.Store.CreateAttempt(ctx, a)
}

func TestSubmitAttemptRetriesAfterConflict(t *testing.T) {
	m := memstore.New()
	racing := &racingStore{Store: m.Quizzes()}
	f := setup(t, racing)
	q := f.createQuiz(t, nil)

	a, _, err := f.service.SubmitAttempt(context.Background(), q.ID, f.learner.UserID, quiz.SubmitInput{Answers: []string{"B", "2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, a.AttemptNumber)
}

func TestQuizVisibility(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	q := f.createQuiz(t, nil)

	staffView, err := f.service.Get(ctx, f.instructor, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", staffView.Questions[0].CorrectAnswer)

	learnerView, err := f.service.GetByLesson(ctx, f.learner, f.lesson.ID)
	require.NoError(t, err)
	assert.Empty(t, learnerView.Questions[0].CorrectAnswer)

	_, err = f.service.Get(ctx, jwt.Identity{UserID: uuid.New(), Role: types.UserTypeStudent}, q.ID)
	assert.ErrorIs(t, err, enrollment.ErrNotEnrolled)
}

func TestCreateQuizRules(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	f.createQuiz(t, nil)

	_, err := f.service.Create(ctx, f.instructor, f.course.ID, quiz.CreateInput{
		LessonID:  &f.lesson.ID,
		Title:     "Second",
		Questions: []quiz.Question{{ID: "x", Type: quiz.QuestionShortAnswer, CorrectAnswer: "1", Points: 1}},
	})
	assert.ErrorIs(t, err, quiz.ErrLessonAlreadyHasQuiz)

	stranger := jwt.Identity{UserID: uuid.New(), Role: types.UserTypeInstructor}
	_, err = f.service.Create(ctx, stranger, f.course.ID, quiz.CreateInput{Title: "Nope"})
	assert.ErrorIs(t, err, course.ErrNotOwner)

	other := lesson.Lesson{CourseID: uuid.New(), Title: "Other", Order: 1}
	require.NoError(t, f.store.Lessons().Create(ctx, &other))
	_, err = f.service.Create(ctx, f.instructor, f.course.ID, quiz.CreateInput{LessonID: &other.ID, Title: "Wrong"})
	assert.ErrorIs(t, err, quiz.ErrLessonNotInCourse)
}

func TestDeleteQuiz(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	q := f.createQuiz(t, nil)

	assert.ErrorIs(t, f.service.Delete(ctx, jwt.Identity{UserID: uuid.New(), Role: types.UserTypeInstructor}, q.ID), course.ErrNotOwner)
	require.NoError(t, f.service.Delete(ctx, f.instructor, q.ID))
	_, err := f.service.Get(ctx, f.instructor, q.ID)
	assert.ErrorIs(t, err, quiz.ErrQuizNotFound)
}

func TestDeleteQuizKeepsAttemptHistory(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	q := f.createQuiz(t, nil)

	_, _, err := f.service.SubmitAttempt(ctx, q.ID, f.learner.UserID, quiz.SubmitInput{Answers: []string{"B", "2"}})
	require.NoError(t, err)
	before, err := f.store.Quizzes().CountAttempts(ctx, q.ID, f.learner.UserID)
	require.NoError(t, err)
	require.EqualValues(t, 1, before)

	assert.ErrorIs(t, f.service.Delete(ctx, f.instructor, q.ID), quiz.ErrQuizHasAttempts)

	after, err := f.store.Quizzes().CountAttempts(ctx, q.ID, f.learner.UserID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, err = f.service.Get(ctx, f.instructor, q.ID)
	assert.NoError(t, err, "quiz with attempts stays in place")
}
