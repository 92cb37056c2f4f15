package lesson

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
)

// CourseAccess is the part of the course service lessons depend on.
type CourseAccess interface {
	Get(ctx context.Context, actor jwt.Identity, id uuid.UUID) (course.Course, error)
	Authorize(ctx context.Context, actor jwt.Identity, id uuid.UUID) (course.Course, error)
}

// ChangeListener is told when the lesson list of a course changes.
type ChangeListener interface {
	InvalidateCourse(ctx context.Context, courseID uuid.UUID)
}

// Service manages lessons inside courses.
type Service struct {
	store    Store
	courses  CourseAccess
	listener ChangeListener
}

// NewService creates a lesson service. listener may be nil.
func NewService(store Store, courses CourseAccess, listener ChangeListener) *Service {
	return &Service{store: store, courses: courses, listener: listener}
}

// ListByCourse returns the ordered lessons of a course the actor can see.
func (s *Service) ListByCourse(ctx context.Context, actor jwt.Identity, courseID uuid.UUID) ([]Lesson, error) {
	if _, err := s.courses.Get(ctx, actor, courseID); err != nil {
		return nil, err
	}
	return s.store.ListByCourse(ctx, courseID)
}

// Get returns a lesson whose course the actor can see.
func (s *Service) Get(ctx context.Context, actor jwt.Identity, id uuid.UUID) (Lesson, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return l, err
	}
	if _, err := s.courses.Get(ctx, actor, l.CourseID); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

// Create adds a lesson to a course the actor manages.
func (s *Service) Create(ctx context.Context, actor jwt.Identity, courseID uuid.UUID, input CreateInput) (Lesson, error) {
	if _, err := s.courses.Authorize(ctx, actor, courseID); err != nil {
		return Lesson{}, err
	}

	l := Lesson{
		CourseID:    courseID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		VideoURL:    strings.TrimSpace(input.VideoURL),
		Order:       input.Order,
		Duration:    input.Duration,
		IsPreview:   input.IsPreview,
	}
	if err := validate(l); err != nil {
		return Lesson{}, err
	}
	if err := s.store.Create(ctx, &l); err != nil {
		return Lesson{}, err
	}
	s.changed(ctx, courseID)
	return l, nil
}

// Update changes a lesson of a course the actor manages.
func (s *Service) Update(ctx context.Context, actor jwt.Identity, courseID, id uuid.UUID, input UpdateInput) (Lesson, error) {
	l, err := s.owned(ctx, actor, courseID, id)
	if err != nil {
		return Lesson{}, err
	}

	if input.Title != nil {
		l.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		l.Description = strings.TrimSpace(*input.Description)
	}
	if input.VideoURL != nil {
		l.VideoURL = strings.TrimSpace(*input.VideoURL)
	}
	if input.Order != nil {
		l.Order = *input.Order
	}
	if input.Duration != nil {
		l.Duration = *input.Duration
	}
	if input.IsPreview != nil {
		l.IsPreview = *input.IsPreview
	}
	if err := validate(l); err != nil {
		return Lesson{}, err
	}
	if err := s.store.Save(ctx, &l); err != nil {
		return Lesson{}, err
	}
	s.changed(ctx, courseID)
	return l, nil
}

// Delete removes a lesson of a course the actor manages.
func (s *Service) Delete(ctx context.Context, actor jwt.Identity, courseID, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, courseID, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, courseID)
	return nil
}

func (s *Service) changed(ctx context.Context, courseID uuid.UUID) {
	if s.listener != nil {
		s.listener.InvalidateCourse(ctx, courseID)
	}
}

func (s *Service) owned(ctx context.Context, actor jwt.Identity, courseID, id uuid.UUID) (Lesson, error) {
	if _, err := s.courses.Authorize(ctx, actor, courseID); err != nil {
		return Lesson{}, err
	}
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if l.CourseID != courseID {
		return Lesson{}, ErrCourseMismatch
	}
	return l, nil
}

func validate(l Lesson) error {
	switch {
	case l.Title == "":
		return ErrTitleRequired
	case l.Order < 1:
		return ErrOrderInvalid
	case l.Duration < 0:
		return ErrDurationInvalid
	}
	return nil
}
