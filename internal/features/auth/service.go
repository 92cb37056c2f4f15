package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mo-amir99/course-progress-server/internal/features/user"
	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// RegisterInput carries a self-service sign up.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// LoginInput carries credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Result is returned by register and login.
type Result struct {
	User        user.User `json:"user"`
	AccessToken string    `json:"accessToken"`
}

// Service issues access tokens for users in the store.
type Service struct {
	users  user.Store
	secret string
	expiry time.Duration
}

// NewService creates an auth service signing tokens with secret.
func NewService(users user.Store, secret string, expiry time.Duration) *Service {
	return &Service{users: users, secret: secret, expiry: expiry}
}

// Register creates a student account and signs a token for it.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Result, error) {
	u := user.User{
		FullName: strings.TrimSpace(input.FullName),
		Email:    user.NormalizeEmail(input.Email),
		Role:     types.UserTypeStudent,
		Active:   true,
	}
	if err := u.SetPassword(input.Password); err != nil {
		return Result{}, err
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return Result{}, err
	}
	return s.issue(u)
}

// Login checks credentials. Inactive accounts are refused after the password matches.
func (s *Service) Login(ctx context.Context, input LoginInput) (Result, error) {
	u, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return Result{}, ErrInvalidCredentials
		}
		return Result{}, err
	}
	if !u.ComparePassword(input.Password) {
		return Result{}, ErrInvalidCredentials
	}
	if !u.Active {
		return Result{}, ErrInactiveAccount
	}
	return s.issue(u)
}

// Me loads the caller's account.
func (s *Service) Me(ctx context.Context, id jwt.Identity) (user.User, error) {
	return s.users.Get(ctx, id.UserID)
}

func (s *Service) issue(u user.User) (Result, error) {
	token, err := jwt.GenerateAccessToken(jwt.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}, s.secret, s.expiry)
	if err != nil {
		return Result{}, err
	}
	return Result{User: u, AccessToken: token}, nil
}
