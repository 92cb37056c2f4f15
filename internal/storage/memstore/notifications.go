package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
)

// Notifications implements notification.Store.
type Notifications struct{ s *Store }

func cloneNotification(n notification.Notification) notification.Notification {
	if n.Data != nil {
		data := make(datatypes.JSONMap, len(n.Data))
		for k, v := range n.Data {
			data[k] = v
		}
		n.Data = data
	}
	n.ReadAt = cloneTime(n.ReadAt)
	return n
}

func (r *Notifications) Create(_ context.Context, n *notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	r.s.notifications[n.ID] = cloneNotification(*n)
	return nil
}

func (r *Notifications) ListByUser(_ context.Context, userID uuid.UUID, params pagination.Params) ([]notification.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []notification.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			matched = append(matched, cloneNotification(n))
		}
	}
	items, total := page(matched, params, func(a, b notification.Notification) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return items, total, nil
}

func (r *Notifications) MarkRead(_ context.Context, userID, id uuid.UUID, at time.Time) (notification.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return notification.Notification{}, notification.ErrNotificationNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		n.ReadAt = &at
		n.UpdatedAt = r.s.now()
		r.s.notifications[id] = n
	}
	return cloneNotification(n), nil
}
