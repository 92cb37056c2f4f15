package course

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/course-progress-server/pkg/pagination"
)

// Store persists courses.
type Store interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]Course, int64, error)
	Get(ctx context.Context, id uuid.UUID) (Course, error)
	Create(ctx context.Context, c *Course) error
	Save(ctx context.Context, c *Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// List retrieves paginated courses with filters, newest first.
func (s *GormStore) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]Course, int64, error) {
	query := s.db.WithContext(ctx).Model(&Course{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}
	if filters.PublishedOnly {
		query = query.Where("status = ?", StatusPublished)
	}
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []Course
	err := query.Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&courses).Error
	return courses, total, err
}

// Get retrieves a course by ID.
func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (Course, error) {
	var c Course
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, ErrCourseNotFound
	}
	return c, err
}

// Create inserts c.
func (s *GormStore) Create(ctx context.Context, c *Course) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(c).Error
}

// Save writes every column of c.
func (s *GormStore) Save(ctx context.Context, c *Course) error {
	return s.db.WithContext(ctx).Save(c).Error
}

// Delete removes a course.
func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Course{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}
