package lesson

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/course-progress-server/pkg/database"
)

// Store persists lessons.
type Store interface {
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]Lesson, error)
	Get(ctx context.Context, id uuid.UUID) (Lesson, error)
	Create(ctx context.Context, l *Lesson) error
	Save(ctx context.Context, l *Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ListByCourse returns every lesson of a course in ascending order.
func (s *GormStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]Lesson, error) {
	var lessons []Lesson
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("\"order\" ASC").
		Find(&lessons).Error
	return lessons, err
}

// Get retrieves a lesson by ID.
func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (Lesson, error) {
	var l Lesson
	err := s.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return l, ErrLessonNotFound
	}
	return l, err
}

// Create inserts l.
func (s *GormStore) Create(ctx context.Context, l *Lesson) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(l).Error)
}

// Save writes every column of l.
func (s *GormStore) Save(ctx context.Context, l *Lesson) error {
	return translate(s.db.WithContext(ctx).Save(l).Error)
}

// Delete removes a lesson.
func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Lesson{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// CountByCourse reports how many lessons a course has.
func (s *GormStore) CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func translate(err error) error {
	if database.IsUniqueViolation(err) {
		return ErrOrderTaken
	}
	return err
}
