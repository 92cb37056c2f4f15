package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/pkg/cache"
	"github.com/mo-amir99/course-progress-server/pkg/metrics"
	"github.com/mo-amir99/course-progress-server/pkg/tracing"
)

// LessonFinder loads lessons.
type LessonFinder interface {
	Get(ctx context.Context, id uuid.UUID) (lesson.Lesson, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]lesson.Lesson, error)
}

// Notifier delivers learner notifications.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) (notification.Notification, error)
}

// Service tracks per-lesson learner state and gates access to lessons.
type Service struct {
	store       Store
	lessons     LessonFinder
	enrollments enrollment.Finder
	cache       cache.Client
	cacheTTL    time.Duration
	notifier    Notifier
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a progress service. cache and notifier may be nil.
func NewService(store Store, lessons LessonFinder, enrollments enrollment.Finder, c cache.Client, cacheTTL time.Duration, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		lessons:     lessons,
		enrollments: enrollments,
		cache:       c,
		cacheTTL:    cacheTTL,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// CompleteQuiz records a quiz outcome for a lesson. A pass unlocks the next
// lesson of the course, if there is one.
func (s *Service) CompleteQuiz(ctx context.Context, userID, lessonID uuid.UUID, score int, passed bool) (QuizResult, error) {
	ctx, span := tracing.Start(ctx, "progress.CompleteQuiz",
		attribute.String("lesson.id", lessonID.String()),
		attribute.Bool("quiz.passed", passed))
	defer span.End()

	if score < 0 || score > 100 {
		return QuizResult{}, ErrInvalidScore
	}
	current, err := s.lessons.Get(ctx, lessonID)
	if err != nil {
		return QuizResult{}, err
	}
	if _, err := enrollment.RequireAccess(ctx, s.enrollments, userID, current.CourseID); err != nil {
		return QuizResult{}, err
	}

	now := s.now()
	_, err = s.store.Upsert(ctx, userID, current.CourseID, lessonID, func(p *LessonProgress) {
		p.QuizCompleted = passed
		p.QuizScore = &score
		p.QuizCompletedAt = &now
		p.IsUnlocked = true
	})
	if err != nil {
		return QuizResult{}, fmt.Errorf("record quiz result: %w", err)
	}
	defer s.Invalidate(ctx, userID, current.CourseID)

	result := QuizResult{QuizCompleted: passed, Score: score}
	if !passed {
		result.Message = "Quiz not passed. Review the lesson and try again."
		return result, nil
	}

	ordered, err := s.lessons.ListByCourse(ctx, current.CourseID)
	if err != nil {
		return QuizResult{}, fmt.Errorf("list course lessons: %w", err)
	}
	next, ok := lesson.Next(ordered, lessonID)
	if !ok {
		result.Message = "Quiz completed. This was the last lesson."
		return result, nil
	}

	if err := s.unlock(ctx, userID, next); err != nil {
		return QuizResult{}, err
	}
	result.UnlockedLesson = &next.ID
	result.Message = "Quiz completed. Next lesson unlocked."
	return result, nil
}

func (s *Service) unlock(ctx context.Context, userID uuid.UUID, next lesson.Lesson) error {
	var newlyUnlocked bool
	_, err := s.store.Upsert(ctx, userID, next.CourseID, next.ID, func(p *LessonProgress) {
		newlyUnlocked = !p.IsUnlocked
		p.IsUnlocked = true
	})
	if err != nil {
		return fmt.Errorf("unlock next lesson: %w", err)
	}
	if !newlyUnlocked {
		return nil
	}

	metrics.RecordLessonUnlock()
	if s.notifier == nil {
		return nil
	}
	_, err = s.notifier.Notify(ctx, notification.Notification{
		UserID:  userID,
		Type:    notification.TypeLessonUnlocked,
		Title:   "New lesson unlocked",
		Message: fmt.Sprintf("%s is now available.", next.Title),
		Data: map[string]interface{}{
			"courseId": next.CourseID.String(),
			"lessonId": next.ID.String(),
		},
	})
	if err != nil {
		s.logger.Error("failed to send unlock notification",
			slog.String("userId", userID.String()),
			slog.String("lessonId", next.ID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// CourseProgress returns the learner's state for every lesson of a course,
// keyed by lesson id. The first lesson and preview lessons are always unlocked.
func (s *Service) CourseProgress(ctx context.Context, userID, courseID uuid.UUID) (map[string]LessonState, error) {
	if _, err := enrollment.RequireAccess(ctx, s.enrollments, userID, courseID); err != nil {
		return nil, err
	}

	key, cacheable := s.cacheKey(ctx, userID, courseID)
	if cacheable {
		var cached map[string]LessonState
		err := cache.GetJSON(ctx, s.cache, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("progress cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	ordered, err := s.lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course lessons: %w", err)
	}
	rows, err := s.store.ListByUserCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lesson progress: %w", err)
	}

	result := BuildProgressMap(ordered, rows)

	if cacheable {
		if err := cache.SetJSON(ctx, s.cache, key, result, s.cacheTTL); err != nil {
			s.logger.Warn("progress cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return result, nil
}

// BuildProgressMap merges stored rows onto the ordered lesson list.
func BuildProgressMap(ordered []lesson.Lesson, rows []LessonProgress) map[string]LessonState {
	byLesson := make(map[uuid.UUID]LessonProgress, len(rows))
	for _, row := range rows {
		byLesson[row.LessonID] = row
	}

	result := make(map[string]LessonState, len(ordered))
	for i, l := range ordered {
		state := LessonState{}
		if row, ok := byLesson[l.ID]; ok {
			state = stateOf(row)
		}
		if i == 0 || l.IsPreview {
			state.IsUnlocked = true
		}
		result[l.ID.String()] = state
	}
	return result
}

// Track stores the playback position and adds to the time spent on a lesson.
func (s *Service) Track(ctx context.Context, userID, lessonID uuid.UUID, position, timeSpent int) (LessonProgress, error) {
	l, err := s.lessons.Get(ctx, lessonID)
	if err != nil {
		return LessonProgress{}, err
	}
	if _, err := enrollment.RequireAccess(ctx, s.enrollments, userID, l.CourseID); err != nil {
		return LessonProgress{}, err
	}

	now := s.now()
	p, err := s.store.Upsert(ctx, userID, l.CourseID, lessonID, func(p *LessonProgress) {
		p.LastPosition = position
		p.TimeSpent += timeSpent
		p.LastAccessedAt = &now
	})
	if err != nil {
		return LessonProgress{}, err
	}
	s.Invalidate(ctx, userID, l.CourseID)
	return p, nil
}

// MarkLessonCompleted mirrors an enrollment lesson change into the lesson row.
// The first completion time is kept when a lesson is completed again.
func (s *Service) MarkLessonCompleted(ctx context.Context, userID, courseID, lessonID uuid.UUID, completed bool) error {
	now := s.now()
	_, err := s.store.Upsert(ctx, userID, courseID, lessonID, func(p *LessonProgress) {
		if completed {
			if !p.IsCompleted {
				p.IsCompleted = true
				p.CompletedAt = &now
			}
		} else {
			p.IsCompleted = false
			p.CompletedAt = nil
		}
		p.LastAccessedAt = &now
	})
	if err != nil {
		return err
	}
	s.Invalidate(ctx, userID, courseID)
	return nil
}

// Invalidate drops the cached progress map of a learner in a course.
func (s *Service) Invalidate(ctx context.Context, userID, courseID uuid.UUID) {
	key, ok := s.cacheKey(ctx, userID, courseID)
	if !ok {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("progress cache invalidation failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// InvalidateCourse drops every learner's cached map for a course by moving the
// course to a new cache version. Lesson writes call it.
func (s *Service) InvalidateCourse(ctx context.Context, courseID uuid.UUID) {
	if s.cache == nil {
		return
	}
	key := courseVersionKey(courseID)
	if err := s.cache.Set(ctx, key, uuid.NewString(), 0); err != nil {
		s.logger.Warn("progress cache version bump failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// cacheKey returns the map key for the course's current version. ok is false
// when there is no cache or the version cannot be read.
func (s *Service) cacheKey(ctx context.Context, userID, courseID uuid.UUID) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	version, err := s.cache.Get(ctx, courseVersionKey(courseID))
	switch {
	case errors.Is(err, cache.ErrMiss):
		version = "0"
	case err != nil:
		s.logger.Warn("progress cache version read failed", slog.String("course_id", courseID.String()), slog.String("error", err.Error()))
		return "", false
	}
	return "progress:" + userID.String() + ":" + courseID.String() + ":" + version, true
}

func courseVersionKey(courseID uuid.UUID) string {
	return "progress:course:" + courseID.String() + ":version"
}
