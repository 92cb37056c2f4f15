package quiz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/course-progress-server/pkg/database"
)

// Store persists quizzes and their attempts.
type Store interface {
	Create(ctx context.Context, q *Quiz) error
	Get(ctx context.Context, id uuid.UUID) (Quiz, error)
	GetByLesson(ctx context.Context, lessonID uuid.UUID) (Quiz, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CountAttempts(ctx context.Context, quizID, userID uuid.UUID) (int64, error)
	// CreateAttempt inserts a. It fails with ErrAttemptConflict when the
	// attempt number is already taken for that quiz and user.
	CreateAttempt(ctx context.Context, a *Attempt) error
	ListAttempts(ctx context.Context, quizID, userID uuid.UUID) ([]Attempt, error)
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create inserts q.
func (s *GormStore) Create(ctx context.Context, q *Quiz) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	err := s.db.WithContext(ctx).Create(q).Error
	if database.IsUniqueViolation(err) {
		return ErrLessonAlreadyHasQuiz
	}
	return err
}

// Get retrieves a quiz by ID.
func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (Quiz, error) {
	var q Quiz
	err := s.db.WithContext(ctx).First(&q, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return q, ErrQuizNotFound
	}
	return q, err
}

// GetByLesson retrieves the quiz attached to a lesson.
func (s *GormStore) GetByLesson(ctx context.Context, lessonID uuid.UUID) (Quiz, error) {
	var q Quiz
	err := s.db.WithContext(ctx).First(&q, "lesson_id = ?", lessonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return q, ErrQuizNotFound
	}
	return q, err
}

// Delete removes a quiz nobody has attempted yet. Attempts are never removed,
// so a quiz with history fails with ErrQuizHasAttempts.
func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q Quiz
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		if err != nil {
			return err
		}

		var attempts int64
		if err := tx.Model(&Attempt{}).Where("quiz_id = ?", id).Count(&attempts).Error; err != nil {
			return err
		}
		if attempts > 0 {
			return ErrQuizHasAttempts
		}
		return tx.Delete(&Quiz{}, "id = ?", id).Error
	})
}

// CountAttempts reports how many attempts a user has made on a quiz.
func (s *GormStore) CountAttempts(ctx context.Context, quizID, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Attempt{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error
	return count, err
}

// CreateAttempt inserts a, relying on the (quiz, user, attempt number) unique index.
func (s *GormStore) CreateAttempt(ctx context.Context, a *Attempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := s.db.WithContext(ctx).Create(a).Error
	if database.IsUniqueViolation(err) {
		return ErrAttemptConflict
	}
	return err
}

// ListAttempts returns a user's attempts on a quiz in submission order.
func (s *GormStore) ListAttempts(ctx context.Context, quizID, userID uuid.UUID) ([]Attempt, error) {
	var attempts []Attempt
	err := s.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}
