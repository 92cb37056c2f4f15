package memstore

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
)

// Enrollments implements enrollment.Store. Mutate holds the store mutex for
// the whole read-modify-write, which stands in for the postgres row lock.
type Enrollments struct{ s *Store }

func cloneEnrollment(e enrollment.Enrollment) enrollment.Enrollment {
	e.CompletedLessons = pq.StringArray(cloneStrings(e.CompletedLessons))
	e.CompletedAt = cloneTime(e.CompletedAt)
	e.CancelledAt = cloneTime(e.CancelledAt)
	return e
}

func (r *Enrollments) Create(_ context.Context, e *enrollment.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.enrollments {
		if existing.UserID == e.UserID && existing.CourseID == e.CourseID {
			return enrollment.ErrAlreadyEnrolled
		}
	}
	r.s.stamp(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	r.s.enrollments[e.ID] = cloneEnrollment(*e)
	return nil
}

func (r *Enrollments) Get(_ context.Context, id uuid.UUID) (enrollment.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.enrollments[id]
	if !ok {
		return enrollment.Enrollment{}, enrollment.ErrEnrollmentNotFound
	}
	return cloneEnrollment(e), nil
}

func (r *Enrollments) GetByUserCourse(_ context.Context, userID, courseID uuid.UUID) (enrollment.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return cloneEnrollment(e), nil
		}
	}
	return enrollment.Enrollment{}, enrollment.ErrEnrollmentNotFound
}

func (r *Enrollments) ListByUser(_ context.Context, userID uuid.UUID, params pagination.Params) ([]enrollment.Enrollment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []enrollment.Enrollment
	for _, e := range r.s.enrollments {
		if e.UserID == userID {
			matched = append(matched, cloneEnrollment(e))
		}
	}
	items, total := page(matched, params, func(a, b enrollment.Enrollment) bool {
		return a.LastAccessedAt.After(b.LastAccessedAt)
	})
	return items, total, nil
}

func (r *Enrollments) ListActive(_ context.Context, afterID uuid.UUID, limit int) ([]enrollment.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []enrollment.Enrollment
	for id, e := range r.s.enrollments {
		if e.Status == enrollment.StatusActive && bytes.Compare(id[:], afterID[:]) > 0 {
			matched = append(matched, cloneEnrollment(e))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return bytes.Compare(matched[i].ID[:], matched[j].ID[:]) < 0
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *Enrollments) Mutate(_ context.Context, id uuid.UUID, fn func(*enrollment.Enrollment) error) (enrollment.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.enrollments[id]
	if !ok {
		return enrollment.Enrollment{}, enrollment.ErrEnrollmentNotFound
	}
	working := cloneEnrollment(current)
	if err := fn(&working); err != nil {
		return enrollment.Enrollment{}, err
	}
	working.UpdatedAt = r.s.now()
	r.s.enrollments[id] = cloneEnrollment(working)
	return working, nil
}
