package course

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// LessonCounter reports how many lessons a course has.
type LessonCounter interface {
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
}

// Service applies course visibility and ownership rules.
type Service struct {
	store   Store
	lessons LessonCounter
}

// NewService creates a course service.
func NewService(store Store, lessons LessonCounter) *Service {
	return &Service{store: store, lessons: lessons}
}

// List returns published courses to students and everything to staff.
func (s *Service) List(ctx context.Context, actor jwt.Identity, keyword string, params pagination.Params) ([]Course, int64, error) {
	filters := ListFilters{Keyword: strings.TrimSpace(keyword)}
	if !actor.Role.IsStaff() {
		filters.PublishedOnly = true
	}
	return s.store.List(ctx, filters, params)
}

// Get returns a course. Drafts are hidden from students.
func (s *Service) Get(ctx context.Context, actor jwt.Identity, id uuid.UUID) (Course, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return c, err
	}
	if !c.IsPublished() && !canManage(actor, c) {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

// Create stores a draft course owned by the actor.
func (s *Service) Create(ctx context.Context, actor jwt.Identity, input CreateInput) (Course, error) {
	if input.Price.IsNegative() {
		return Course{}, ErrInvalidPrice
	}
	c := Course{
		InstructorID: actor.UserID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Price:        input.Price,
		Status:       StatusDraft,
	}
	if err := s.store.Create(ctx, &c); err != nil {
		return Course{}, err
	}
	return c, nil
}

// Update changes the supplied fields.
func (s *Service) Update(ctx context.Context, actor jwt.Identity, id uuid.UUID, input UpdateInput) (Course, error) {
	c, err := s.Authorize(ctx, actor, id)
	if err != nil {
		return c, err
	}
	if input.Title != nil {
		c.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		c.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return Course{}, ErrInvalidPrice
		}
		c.Price = *input.Price
	}
	if err := s.store.Save(ctx, &c); err != nil {
		return Course{}, err
	}
	return c, nil
}

// Publish makes a course visible to learners. It needs at least one lesson.
func (s *Service) Publish(ctx context.Context, actor jwt.Identity, id uuid.UUID) (Course, error) {
	c, err := s.Authorize(ctx, actor, id)
	if err != nil {
		return c, err
	}
	if c.IsPublished() {
		return c, nil
	}
	count, err := s.lessons.CountByCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if count == 0 {
		return Course{}, ErrNoLessons
	}
	c.Status = StatusPublished
	if err := s.store.Save(ctx, &c); err != nil {
		return Course{}, err
	}
	return c, nil
}

// Delete removes a course the actor manages.
func (s *Service) Delete(ctx context.Context, actor jwt.Identity, id uuid.UUID) error {
	if _, err := s.Authorize(ctx, actor, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Authorize loads a course and checks the actor may modify it.
func (s *Service) Authorize(ctx context.Context, actor jwt.Identity, id uuid.UUID) (Course, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return c, err
	}
	if !canManage(actor, c) {
		return Course{}, ErrNotOwner
	}
	return c, nil
}

func canManage(actor jwt.Identity, c Course) bool {
	return actor.Role == types.UserTypeAdmin || (actor.Role == types.UserTypeInstructor && c.OwnedBy(actor.UserID))
}
