package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/course-progress-server/pkg/database"
)

// Store persists users.
type Store interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create inserts u. Duplicate emails map to ErrEmailTaken.
func (s *GormStore) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// Get retrieves a user by ID.
func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByEmail retrieves a user by normalized email.
func (s *GormStore) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "email = ?", NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return u, ErrUserNotFound
	}
	return u, err
}
