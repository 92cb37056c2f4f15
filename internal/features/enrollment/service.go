package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/course-progress-server/pkg/metrics"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
	"github.com/mo-amir99/course-progress-server/pkg/tracing"
)

// CourseFinder loads courses without visibility rules.
type CourseFinder interface {
	Get(ctx context.Context, id uuid.UUID) (course.Course, error)
}

// LessonFinder loads lessons.
type LessonFinder interface {
	Get(ctx context.Context, id uuid.UUID) (lesson.Lesson, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]lesson.Lesson, error)
}

// LessonProgressRecorder mirrors a lesson completion into the learner's
// per-lesson progress and drops any cached progress map.
type LessonProgressRecorder interface {
	MarkLessonCompleted(ctx context.Context, userID, courseID, lessonID uuid.UUID, completed bool) error
}

// Notifier delivers learner notifications.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) (notification.Notification, error)
}

// Finder looks up a learner's enrollment in a course.
type Finder interface {
	GetByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (Enrollment, error)
}

// RequireAccess returns the learner's enrollment in courseID, or
// ErrNotEnrolled when there is none or it was cancelled.
func RequireAccess(ctx context.Context, finder Finder, userID, courseID uuid.UUID) (Enrollment, error) {
	e, err := finder.GetByUserCourse(ctx, userID, courseID)
	if errors.Is(err, ErrEnrollmentNotFound) {
		return Enrollment{}, ErrNotEnrolled
	}
	if err != nil {
		return Enrollment{}, err
	}
	if e.IsCancelled() {
		return Enrollment{}, ErrNotEnrolled
	}
	return e, nil
}

// Service owns the enrollment lifecycle and course progress.
type Service struct {
	store    Store
	courses  CourseFinder
	lessons  LessonFinder
	progress LessonProgressRecorder
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates an enrollment service. progress and notifier may be nil.
func NewService(store Store, courses CourseFinder, lessons LessonFinder, progress LessonProgressRecorder, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		courses:  courses,
		lessons:  lessons,
		progress: progress,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// UpdateProgress marks a lesson completed or not completed for the caller's
// enrollment and recomputes its progress.
func (s *Service) UpdateProgress(ctx context.Context, userID, enrollmentID, lessonID uuid.UUID, completed bool) (Enrollment, error) {
	ctx, span := tracing.Start(ctx, "enrollment.UpdateProgress")
	defer span.End()

	current, err := s.store.Get(ctx, enrollmentID)
	if err != nil {
		return Enrollment{}, err
	}
	if current.UserID != userID {
		return Enrollment{}, ErrNotOwner
	}
	if current.IsCancelled() {
		return Enrollment{}, ErrEnrollmentCanceled
	}

	l, err := s.lessons.Get(ctx, lessonID)
	if err != nil {
		return Enrollment{}, err
	}
	if l.CourseID != current.CourseID {
		return Enrollment{}, ErrLessonNotInCourse
	}

	courseLessons, err := s.lessons.ListByCourse(ctx, current.CourseID)
	if err != nil {
		return Enrollment{}, fmt.Errorf("list course lessons: %w", err)
	}
	ids := lesson.IDs(courseLessons)

	var becameCompleted bool
	updated, err := s.store.Mutate(ctx, enrollmentID, func(e *Enrollment) error {
		if e.IsCancelled() {
			return ErrEnrollmentCanceled
		}
		becameCompleted = ApplyLessonCompletion(e, ids, lessonID, completed, s.now())
		return nil
	})
	if err != nil {
		return Enrollment{}, err
	}

	if s.progress != nil {
		if err := s.progress.MarkLessonCompleted(ctx, userID, updated.CourseID, lessonID, completed); err != nil {
			return Enrollment{}, fmt.Errorf("record lesson progress: %w", err)
		}
	}

	if becameCompleted {
		s.onCompleted(ctx, updated)
	}
	return updated, nil
}

// EnrollFree enrolls the caller in a published course that costs nothing.
func (s *Service) EnrollFree(ctx context.Context, userID, courseID uuid.UUID) (Enrollment, bool, error) {
	c, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return Enrollment{}, false, err
	}
	if !c.IsPublished() {
		return Enrollment{}, false, course.ErrCourseNotFound
	}
	if !c.IsFree() {
		return Enrollment{}, false, ErrPaymentRequired
	}
	return s.Enroll(ctx, userID, courseID)
}

// Enroll creates an active enrollment, or returns the existing one with
// created set to false. Checkout flows call it after payment succeeds.
func (s *Service) Enroll(ctx context.Context, userID, courseID uuid.UUID) (Enrollment, bool, error) {
	existing, err := s.store.GetByUserCourse(ctx, userID, courseID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrEnrollmentNotFound) {
		return Enrollment{}, false, err
	}

	now := s.now()
	e := Enrollment{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []string{},
		Status:           StatusActive,
		EnrolledAt:       now,
		LastAccessedAt:   now,
	}
	if err := s.store.Create(ctx, &e); err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			existing, getErr := s.store.GetByUserCourse(ctx, userID, courseID)
			return existing, false, getErr
		}
		return Enrollment{}, false, err
	}

	s.logger.Info("learner enrolled",
		slog.String("userId", userID.String()),
		slog.String("courseId", courseID.String()))
	return e, true, nil
}

// List returns the caller's enrollments.
func (s *Service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Enrollment, int64, error) {
	return s.store.ListByUser(ctx, userID, params)
}

// Get returns an enrollment visible to the actor: its owner or staff.
func (s *Service) Get(ctx context.Context, actor jwt.Identity, id uuid.UUID) (Enrollment, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	if e.UserID != actor.UserID && !actor.Role.IsStaff() {
		return Enrollment{}, ErrNotOwner
	}
	return e, nil
}

// Cancel moves an active enrollment to cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (Enrollment, error) {
	return s.store.Mutate(ctx, id, func(e *Enrollment) error {
		if !CanTransition(e.Status, StatusCancelled) {
			return ErrInvalidTransition
		}
		now := s.now()
		e.Status = StatusCancelled
		e.CancelledAt = &now
		return nil
	})
}

// Recalculate refreshes the stored progress of one enrollment against the
// current lesson list. It reports whether the enrollment changed.
func (s *Service) Recalculate(ctx context.Context, id uuid.UUID) (bool, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	courseLessons, err := s.lessons.ListByCourse(ctx, current.CourseID)
	if err != nil {
		return false, fmt.Errorf("list course lessons: %w", err)
	}
	ids := lesson.IDs(courseLessons)

	stale := ComputeProgress(current.CompletedLessons, ids) != current.Progress ||
		(current.Progress >= 100 && current.Status == StatusActive)
	if !stale {
		return false, nil
	}

	var becameCompleted bool
	updated, err := s.store.Mutate(ctx, id, func(e *Enrollment) error {
		if e.IsCancelled() {
			return ErrEnrollmentCanceled
		}
		becameCompleted = Recalculate(e, ids, s.now())
		return nil
	})
	if err != nil {
		return false, err
	}
	if becameCompleted {
		s.onCompleted(ctx, updated)
	}
	return true, nil
}

// ListActive pages through active enrollments for background work.
func (s *Service) ListActive(ctx context.Context, afterID uuid.UUID, limit int) ([]Enrollment, error) {
	return s.store.ListActive(ctx, afterID, limit)
}

func (s *Service) onCompleted(ctx context.Context, e Enrollment) {
	metrics.RecordEnrollmentCompleted()
	s.logger.Info("course completed",
		slog.String("enrollmentId", e.ID.String()),
		slog.String("userId", e.UserID.String()),
		slog.String("courseId", e.CourseID.String()))

	if s.notifier == nil {
		return
	}
	title := ""
	if c, err := s.courses.Get(ctx, e.CourseID); err == nil {
		title = c.Title
	}
	_, err := s.notifier.Notify(ctx, notification.Notification{
		UserID:  e.UserID,
		Type:    notification.TypeCourseCompleted,
		Title:   "Course completed",
		Message: fmt.Sprintf("Congratulations, you completed %s.", courseName(title)),
		Data: map[string]interface{}{
			"courseId":     e.CourseID.String(),
			"courseTitle":  title,
			"enrollmentId": e.ID.String(),
		},
	})
	if err != nil {
		s.logger.Error("failed to send completion notification",
			slog.String("enrollmentId", e.ID.String()),
			slog.String("error", err.Error()))
	}
}

func courseName(title string) string {
	if title == "" {
		return "the course"
	}
	return title
}
