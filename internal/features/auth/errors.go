package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveAccount    = errors.New("your account is inactive. Please contact support")
)
