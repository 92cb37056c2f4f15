package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mo-amir99/course-progress-server/internal/features/quiz"
)

// Quizzes implements quiz.Store.
type Quizzes struct{ s *Store }

func cloneQuiz(q quiz.Quiz) quiz.Quiz {
	questions := make(datatypes.JSONSlice[quiz.Question], len(q.Questions))
	for i, question := range q.Questions {
		question.Options = cloneStrings(question.Options)
		questions[i] = question
	}
	q.Questions = questions
	if q.LessonID != nil {
		id := *q.LessonID
		q.LessonID = &id
	}
	if q.MaxAttempts != nil {
		limit := *q.MaxAttempts
		q.MaxAttempts = &limit
	}
	return q
}

func cloneAttempt(a quiz.Attempt) quiz.Attempt {
	answers := make(datatypes.JSONSlice[quiz.Answer], len(a.Answers))
	copy(answers, a.Answers)
	a.Answers = answers
	a.StartedAt = cloneTime(a.StartedAt)
	return a
}

func (r *Quizzes) Create(_ context.Context, q *quiz.Quiz) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if q.LessonID != nil {
		for _, existing := range r.s.quizzes {
			if existing.LessonID != nil && *existing.LessonID == *q.LessonID {
				return quiz.ErrLessonAlreadyHasQuiz
			}
		}
	}
	r.s.stamp(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	r.s.quizzes[q.ID] = cloneQuiz(*q)
	return nil
}

func (r *Quizzes) Get(_ context.Context, id uuid.UUID) (quiz.Quiz, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.quizzes[id]
	if !ok {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	return cloneQuiz(q), nil
}

func (r *Quizzes) GetByLesson(_ context.Context, lessonID uuid.UUID) (quiz.Quiz, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, q := range r.s.quizzes {
		if q.LessonID != nil && *q.LessonID == lessonID {
			return cloneQuiz(q), nil
		}
	}
	return quiz.Quiz{}, quiz.ErrQuizNotFound
}

func (r *Quizzes) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.quizzes[id]; !ok {
		return quiz.ErrQuizNotFound
	}
	for _, a := range r.s.attempts {
		if a.QuizID == id {
			return quiz.ErrQuizHasAttempts
		}
	}
	delete(r.s.quizzes, id)
	return nil
}

func (r *Quizzes) CountAttempts(_ context.Context, quizID, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, a := range r.s.attempts {
		if a.QuizID == quizID && a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *Quizzes) CreateAttempt(_ context.Context, a *quiz.Attempt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.attempts {
		if existing.QuizID == a.QuizID && existing.UserID == a.UserID && existing.AttemptNumber == a.AttemptNumber {
			return quiz.ErrAttemptConflict
		}
	}
	r.s.stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	r.s.attempts[a.ID] = cloneAttempt(*a)
	return nil
}

func (r *Quizzes) ListAttempts(_ context.Context, quizID, userID uuid.UUID) ([]quiz.Attempt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []quiz.Attempt
	for _, a := range r.s.attempts {
		if a.QuizID == quizID && a.UserID == userID {
			out = append(out, cloneAttempt(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}
