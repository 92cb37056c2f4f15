package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/progress"
)

// Progress implements progress.Store.
type Progress struct{ s *Store }

func cloneLessonProgress(p progress.LessonProgress) progress.LessonProgress {
	if p.QuizScore != nil {
		score := *p.QuizScore
		p.QuizScore = &score
	}
	p.CompletedAt = cloneTime(p.CompletedAt)
	p.QuizCompletedAt = cloneTime(p.QuizCompletedAt)
	p.LastAccessedAt = cloneTime(p.LastAccessedAt)
	return p
}

func (r *Progress) Upsert(_ context.Context, userID, courseID, lessonID uuid.UUID, fn func(*progress.LessonProgress)) (progress.LessonProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var working progress.LessonProgress
	found := false
	for _, p := range r.s.progress {
		if p.UserID == userID && p.LessonID == lessonID {
			working = cloneLessonProgress(p)
			found = true
			break
		}
	}
	if !found {
		working = progress.LessonProgress{UserID: userID, CourseID: courseID, LessonID: lessonID}
	}

	fn(&working)
	r.s.stamp(&working.ID, &working.CreatedAt, &working.UpdatedAt)
	r.s.progress[working.ID] = cloneLessonProgress(working)
	return working, nil
}

func (r *Progress) ListByUserCourse(_ context.Context, userID, courseID uuid.UUID) ([]progress.LessonProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []progress.LessonProgress
	for _, p := range r.s.progress {
		if p.UserID == userID && p.CourseID == courseID {
			out = append(out, cloneLessonProgress(p))
		}
	}
	return out, nil
}
