package enrollment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/course-progress-server/pkg/database"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
)

// Store persists enrollments.
type Store interface {
	Create(ctx context.Context, e *Enrollment) error
	Get(ctx context.Context, id uuid.UUID) (Enrollment, error)
	GetByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (Enrollment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Enrollment, int64, error)
	ListActive(ctx context.Context, afterID uuid.UUID, limit int) ([]Enrollment, error)
	// Mutate applies fn to the current row while holding it exclusively and
	// saves the result. An error from fn aborts without writing.
	Mutate(ctx context.Context, id uuid.UUID, fn func(*Enrollment) error) (Enrollment, error)
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create inserts e. A second enrollment for the same user and course fails
// with ErrAlreadyEnrolled.
func (s *GormStore) Create(ctx context.Context, e *Enrollment) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := s.db.WithContext(ctx).Create(e).Error
	if database.IsUniqueViolation(err) {
		return ErrAlreadyEnrolled
	}
	return err
}

// Get retrieves an enrollment by ID.
func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (Enrollment, error) {
	var e Enrollment
	err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return e, ErrEnrollmentNotFound
	}
	return e, err
}

// GetByUserCourse retrieves the enrollment of a user in a course.
func (s *GormStore) GetByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (Enrollment, error) {
	var e Enrollment
	err := s.db.WithContext(ctx).First(&e, "user_id = ? AND course_id = ?", userID, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return e, ErrEnrollmentNotFound
	}
	return e, err
}

// ListByUser returns a user's enrollments, most recently accessed first.
func (s *GormStore) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Enrollment, int64, error) {
	query := s.db.WithContext(ctx).Model(&Enrollment{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Enrollment
	err := query.Order("last_accessed_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&items).Error
	return items, total, err
}

// ListActive pages through active enrollments ordered by id. Pass uuid.Nil
// to start from the beginning.
func (s *GormStore) ListActive(ctx context.Context, afterID uuid.UUID, limit int) ([]Enrollment, error) {
	var items []Enrollment
	err := s.db.WithContext(ctx).
		Where("status = ? AND id > ?", StatusActive, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// Mutate locks the row with SELECT ... FOR UPDATE for the whole read-modify-write.
func (s *GormStore) Mutate(ctx context.Context, id uuid.UUID, fn func(*Enrollment) error) (Enrollment, error) {
	var e Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&e, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(&e); err != nil {
			return err
		}
		return tx.Save(&e).Error
	})
	if err != nil {
		return Enrollment{}, err
	}
	return e, nil
}
