package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/user"
)

// Users implements user.Store.
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.Email = user.NormalizeEmail(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	r.s.stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) Get(_ context.Context, id uuid.UUID) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = user.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}
