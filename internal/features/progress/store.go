package progress

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists lesson progress rows.
type Store interface {
	// Upsert creates the (user, lesson) row if missing, then applies fn to it
	// while holding it exclusively and saves the result.
	Upsert(ctx context.Context, userID, courseID, lessonID uuid.UUID, fn func(*LessonProgress)) (LessonProgress, error)
	ListByUserCourse(ctx context.Context, userID, courseID uuid.UUID) ([]LessonProgress, error)
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Upsert seeds the row with INSERT ... ON CONFLICT DO NOTHING and then
// locks it for the update.
func (s *GormStore) Upsert(ctx context.Context, userID, courseID, lessonID uuid.UUID, fn func(*LessonProgress)) (LessonProgress, error) {
	var p LessonProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := LessonProgress{UserID: userID, CourseID: courseID, LessonID: lessonID}
		seed.ID = uuid.New()
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).Create(&seed).Error
		if err != nil {
			return err
		}

		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "user_id = ? AND lesson_id = ?", userID, lessonID).Error
		if err != nil {
			return err
		}
		fn(&p)
		return tx.Save(&p).Error
	})
	if err != nil {
		return LessonProgress{}, err
	}
	return p, nil
}

// ListByUserCourse returns every stored row of a learner in a course.
func (s *GormStore) ListByUserCourse(ctx context.Context, userID, courseID uuid.UUID) ([]LessonProgress, error) {
	var rows []LessonProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&rows).Error
	return rows, err
}
