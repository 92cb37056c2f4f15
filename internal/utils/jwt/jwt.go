package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/pkg/types"
)

var (
	ErrInvalidToken = errors.New("invalid or malformed token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the bearer token payload: {userId, email, role}.
type Claims struct {
	UserID uuid.UUID      `json:"userId"`
	Email  string         `json:"email"`
	Role   types.UserType `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the subset of a user the token carries.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   types.UserType
}

// GenerateAccessToken signs an HS256 token for id.
func GenerateAccessToken(id Identity, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: id.UserID,
		Email:  id.Email,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken validates a JWT and extracts claims.
func VerifyToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Identity returns the caller identity carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Email: c.Email, Role: c.Role}
}
