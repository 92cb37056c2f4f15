package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/course-progress-server/pkg/pagination"
)

// Store persists notifications.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (Notification, error)
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create inserts n.
func (s *GormStore) Create(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(n).Error
}

// ListByUser returns a user's notifications, newest first.
func (s *GormStore) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Notification
	err := query.Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&items).Error
	return items, total, err
}

// MarkRead flags a notification owned by userID as read. Already read
// notifications keep their original readAt.
func (s *GormStore) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (Notification, error) {
	var n Notification
	err := s.db.WithContext(ctx).First(&n, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return n, ErrNotificationNotFound
	}
	if err != nil {
		return n, err
	}
	if n.IsRead {
		return n, nil
	}

	n.IsRead = true
	n.ReadAt = &at
	err = s.db.WithContext(ctx).Model(&n).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": at,
	}).Error
	return n, err
}
