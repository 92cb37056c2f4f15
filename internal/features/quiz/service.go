package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/course-progress-server/pkg/metrics"
	"github.com/mo-amir99/course-progress-server/pkg/tracing"
)

// CourseAuthorizer checks that an actor may manage a course.
type CourseAuthorizer interface {
	Authorize(ctx context.Context, actor jwt.Identity, id uuid.UUID) (course.Course, error)
}

// LessonFinder loads lessons.
type LessonFinder interface {
	Get(ctx context.Context, id uuid.UUID) (lesson.Lesson, error)
}

// Notifier delivers learner notifications.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) (notification.Notification, error)
}

// Service manages quizzes and grades attempts.
type Service struct {
	store       Store
	courses     CourseAuthorizer
	lessons     LessonFinder
	enrollments enrollment.Finder
	notifier    Notifier
	logger      *slog.Logger
	retries     int
	now         func() time.Time
}

// NewService creates a quiz service. retries bounds how many times an attempt
// insert is repeated after losing an attempt number race.
func NewService(store Store, courses CourseAuthorizer, lessons LessonFinder, enrollments enrollment.Finder, notifier Notifier, logger *slog.Logger, retries int) *Service {
	if retries < 1 {
		retries = 1
	}
	return &Service{
		store:       store,
		courses:     courses,
		lessons:     lessons,
		enrollments: enrollments,
		notifier:    notifier,
		logger:      logger,
		retries:     retries,
		now:         time.Now,
	}
}

// SubmitAttempt grades answers and stores them as the learner's next attempt.
func (s *Service) SubmitAttempt(ctx context.Context, quizID, userID uuid.UUID, input SubmitInput) (Attempt, Result, error) {
	ctx, span := tracing.Start(ctx, "quiz.SubmitAttempt", attribute.String("quiz.id", quizID.String()))
	defer span.End()

	q, err := s.store.Get(ctx, quizID)
	if err != nil {
		return Attempt{}, Result{}, err
	}
	if _, err := enrollment.RequireAccess(ctx, s.enrollments, userID, q.CourseID); err != nil {
		return Attempt{}, Result{}, err
	}
	if len(input.Answers) > len(q.Questions) {
		return Attempt{}, Result{}, ErrTooManyAnswers
	}

	result := Grade(q, input.Answers)
	now := s.now()
	result.TimeSpent = elapsedSeconds(input.StartedAt, now)

	attempt := Attempt{
		QuizID:      q.ID,
		UserID:      userID,
		CourseID:    q.CourseID,
		Answers:     result.Answers,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Percentage:  result.Percentage,
		Passed:      result.Passed,
		TimeSpent:   result.TimeSpent,
		StartedAt:   input.StartedAt,
		CompletedAt: now,
	}

	if err := s.insertNextAttempt(ctx, q, &attempt); err != nil {
		return Attempt{}, Result{}, err
	}

	metrics.RecordQuizAttempt(result.Passed)
	s.logger.Info("quiz attempt recorded",
		slog.String("quizId", q.ID.String()),
		slog.String("userId", userID.String()),
		slog.Int("attemptNumber", attempt.AttemptNumber),
		slog.Bool("passed", attempt.Passed))

	if attempt.Passed {
		s.notifyPassed(ctx, q, attempt)
	}
	return attempt, result, nil
}

// insertNextAttempt numbers the attempt from the current count and inserts it.
// A unique violation means a concurrent submission took the number, so the
// count is read again.
func (s *Service) insertNextAttempt(ctx context.Context, q Quiz, attempt *Attempt) error {
	limit := q.AttemptLimit()
	for try := 0; try < s.retries; try++ {
		prior, err := s.store.CountAttempts(ctx, q.ID, attempt.UserID)
		if err != nil {
			return fmt.Errorf("count attempts: %w", err)
		}
		if limit > 0 && int(prior) >= limit {
			return fmt.Errorf("%w (%d allowed)", ErrAttemptLimitExceeded, limit)
		}

		attempt.ID = uuid.Nil
		attempt.AttemptNumber = int(prior) + 1
		err = s.store.CreateAttempt(ctx, attempt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrAttemptConflict) {
			return err
		}
		metrics.RecordAttemptConflict()
	}
	return ErrAttemptConflict
}

func (s *Service) notifyPassed(ctx context.Context, q Quiz, attempt Attempt) {
	if s.notifier == nil {
		return
	}
	data := map[string]interface{}{
		"quizId":     q.ID.String(),
		"courseId":   q.CourseID.String(),
		"percentage": attempt.Percentage,
	}
	if q.LessonID != nil {
		data["lessonId"] = q.LessonID.String()
	}
	_, err := s.notifier.Notify(ctx, notification.Notification{
		UserID:  attempt.UserID,
		Type:    notification.TypeQuizPassed,
		Title:   "Quiz passed",
		Message: fmt.Sprintf("You passed %s with %.0f%%.", q.Title, attempt.Percentage),
		Data:    data,
	})
	if err != nil {
		s.logger.Error("failed to send quiz notification",
			slog.String("quizId", q.ID.String()),
			slog.String("error", err.Error()))
	}
}

// Create adds a quiz to a course the actor manages.
func (s *Service) Create(ctx context.Context, actor jwt.Identity, courseID uuid.UUID, input CreateInput) (Quiz, error) {
	if _, err := s.courses.Authorize(ctx, actor, courseID); err != nil {
		return Quiz{}, err
	}
	if input.LessonID != nil {
		l, err := s.lessons.Get(ctx, *input.LessonID)
		if err != nil {
			return Quiz{}, err
		}
		if l.CourseID != courseID {
			return Quiz{}, ErrLessonNotInCourse
		}
	}

	questions, err := normalizeQuestions(input.Questions)
	if err != nil {
		return Quiz{}, err
	}

	q := Quiz{
		CourseID:     courseID,
		LessonID:     input.LessonID,
		Title:        strings.TrimSpace(input.Title),
		Questions:    questions,
		PassingScore: input.PassingScore,
		MaxAttempts:  input.MaxAttempts,
	}
	if err := s.store.Create(ctx, &q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

// Get returns a quiz. Learners must be enrolled and never see correct answers.
func (s *Service) Get(ctx context.Context, actor jwt.Identity, id uuid.UUID) (Quiz, error) {
	q, err := s.store.Get(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	return s.view(ctx, actor, q)
}

// GetByLesson returns the quiz attached to a lesson.
func (s *Service) GetByLesson(ctx context.Context, actor jwt.Identity, lessonID uuid.UUID) (Quiz, error) {
	q, err := s.store.GetByLesson(ctx, lessonID)
	if err != nil {
		return Quiz{}, err
	}
	return s.view(ctx, actor, q)
}

// ListAttempts returns the caller's attempts on a quiz.
func (s *Service) ListAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]Attempt, error) {
	if _, err := s.store.Get(ctx, quizID); err != nil {
		return nil, err
	}
	return s.store.ListAttempts(ctx, quizID, userID)
}

// Delete removes a quiz of a course the actor manages.
func (s *Service) Delete(ctx context.Context, actor jwt.Identity, id uuid.UUID) error {
	q, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.courses.Authorize(ctx, actor, q.CourseID); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) view(ctx context.Context, actor jwt.Identity, q Quiz) (Quiz, error) {
	if actor.Role.IsStaff() {
		return q, nil
	}
	if _, err := enrollment.RequireAccess(ctx, s.enrollments, actor.UserID, q.CourseID); err != nil {
		return Quiz{}, err
	}
	return q.ForLearner(), nil
}

// normalizeQuestions assigns missing ids and checks answers fit their type.
func normalizeQuestions(in []Question) ([]Question, error) {
	out := make([]Question, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, question := range in {
		question.ID = strings.TrimSpace(question.ID)
		if question.ID == "" {
			question.ID = uuid.NewString()
		}
		if _, dup := seen[question.ID]; dup {
			return nil, ErrDuplicateQuestionID
		}
		seen[question.ID] = struct{}{}

		switch question.Type {
		case QuestionMultipleChoice:
			if !contains(question.Options, question.CorrectAnswer) {
				return nil, fmt.Errorf("%w: question %d", ErrInvalidCorrectAnswer, i+1)
			}
		case QuestionTrueFalse:
			if question.CorrectAnswer != "true" && question.CorrectAnswer != "false" {
				return nil, fmt.Errorf("%w: question %d", ErrInvalidCorrectAnswer, i+1)
			}
			question.Options = []string{"true", "false"}
		case QuestionShortAnswer:
			question.Options = nil
		default:
			return nil, fmt.Errorf("%w: question %d has unknown type %q", ErrInvalidQuiz, i+1, question.Type)
		}
		out[i] = question
	}
	return out, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func elapsedSeconds(startedAt *time.Time, now time.Time) int {
	if startedAt == nil {
		return 0
	}
	elapsed := int(now.Sub(*startedAt).Seconds())
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
