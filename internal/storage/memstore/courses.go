package memstore

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
)

// Courses implements course.Store.
type Courses struct{ s *Store }

func (r *Courses) List(_ context.Context, filters course.ListFilters, params pagination.Params) ([]course.Course, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	keyword := strings.ToLower(filters.Keyword)
	var matched []course.Course
	for _, c := range r.s.courses {
		if filters.PublishedOnly && !c.IsPublished() {
			continue
		}
		if filters.InstructorID != nil && c.InstructorID != *filters.InstructorID {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(c.Title), keyword) &&
			!strings.Contains(strings.ToLower(c.Description), keyword) {
			continue
		}
		matched = append(matched, c)
	}

	items, total := page(matched, params, func(a, b course.Course) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return items, total, nil
}

func (r *Courses) Get(_ context.Context, id uuid.UUID) (course.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.courses[id]
	if !ok {
		return course.Course{}, course.ErrCourseNotFound
	}
	return c, nil
}

func (r *Courses) Create(_ context.Context, c *course.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	r.s.courses[c.ID] = *c
	return nil
}

func (r *Courses) Save(_ context.Context, c *course.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	r.s.courses[c.ID] = *c
	return nil
}

func (r *Courses) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.courses[id]; !ok {
		return course.ErrCourseNotFound
	}
	delete(r.s.courses, id)
	return nil
}
