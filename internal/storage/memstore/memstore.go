// Package memstore keeps every feature store in process memory. It backs
// LMS_STORE=memory and the service tests, and enforces the same uniqueness
// rules as the postgres schema.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/internal/features/progress"
	"github.com/mo-amir99/course-progress-server/internal/features/quiz"
	"github.com/mo-amir99/course-progress-server/internal/features/user"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
)

// Store holds all tables behind one mutex.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users         map[uuid.UUID]user.User
	courses       map[uuid.UUID]course.Course
	lessons       map[uuid.UUID]lesson.Lesson
	enrollments   map[uuid.UUID]enrollment.Enrollment
	progress      map[uuid.UUID]progress.LessonProgress
	quizzes       map[uuid.UUID]quiz.Quiz
	attempts      map[uuid.UUID]quiz.Attempt
	notifications map[uuid.UUID]notification.Notification
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		now:           time.Now,
		users:         make(map[uuid.UUID]user.User),
		courses:       make(map[uuid.UUID]course.Course),
		lessons:       make(map[uuid.UUID]lesson.Lesson),
		enrollments:   make(map[uuid.UUID]enrollment.Enrollment),
		progress:      make(map[uuid.UUID]progress.LessonProgress),
		quizzes:       make(map[uuid.UUID]quiz.Quiz),
		attempts:      make(map[uuid.UUID]quiz.Attempt),
		notifications: make(map[uuid.UUID]notification.Notification),
	}
}

// Users returns the user.Store view.
func (s *Store) Users() *Users { return &Users{s} }

// Courses returns the course.Store view.
func (s *Store) Courses() *Courses { return &Courses{s} }

// Lessons returns the lesson.Store view.
func (s *Store) Lessons() *Lessons { return &Lessons{s} }

// Enrollments returns the enrollment.Store view.
func (s *Store) Enrollments() *Enrollments { return &Enrollments{s} }

// Progress returns the progress.Store view.
func (s *Store) Progress() *Progress { return &Progress{s} }

// Quizzes returns the quiz.Store view.
func (s *Store) Quizzes() *Quizzes { return &Quizzes{s} }

// Notifications returns the notification.Store view.
func (s *Store) Notifications() *Notifications { return &Notifications{s} }

var (
	_ user.Store         = (*Users)(nil)
	_ course.Store       = (*Courses)(nil)
	_ lesson.Store       = (*Lessons)(nil)
	_ enrollment.Store   = (*Enrollments)(nil)
	_ progress.Store     = (*Progress)(nil)
	_ quiz.Store         = (*Quizzes)(nil)
	_ notification.Store = (*Notifications)(nil)
)

// stamp sets the id and timestamps the way gorm would on insert.
func (s *Store) stamp(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := s.now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// page sorts items with less and returns the requested page and the total.
func page[T any](items []T, params pagination.Params, less func(a, b T) bool) ([]T, int64) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	return pagination.Slice(items, params), int64(len(items))
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
