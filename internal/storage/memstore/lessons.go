package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
)

// Lessons implements lesson.Store.
type Lessons struct{ s *Store }

func (r *Lessons) ListByCourse(_ context.Context, courseID uuid.UUID) ([]lesson.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []lesson.Lesson
	for _, l := range r.s.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *Lessons) Get(_ context.Context, id uuid.UUID) (lesson.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.lessons[id]
	if !ok {
		return lesson.Lesson{}, lesson.ErrLessonNotFound
	}
	return l, nil
}

func (r *Lessons) Create(_ context.Context, l *lesson.Lesson) error {
	return r.put(l)
}

func (r *Lessons) Save(_ context.Context, l *lesson.Lesson) error {
	return r.put(l)
}

func (r *Lessons) put(l *lesson.Lesson) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, existing := range r.s.lessons {
		if id != l.ID && existing.CourseID == l.CourseID && existing.Order == l.Order {
			return lesson.ErrOrderTaken
		}
	}
	r.s.stamp(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	r.s.lessons[l.ID] = *l
	return nil
}

func (r *Lessons) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.lessons[id]; !ok {
		return lesson.ErrLessonNotFound
	}
	delete(r.s.lessons, id)
	return nil
}

func (r *Lessons) CountByCourse(_ context.Context, courseID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, l := range r.s.lessons {
		if l.CourseID == courseID {
			count++
		}
	}
	return count, nil
}
