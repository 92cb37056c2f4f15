package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/course-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/course-progress-server/pkg/response"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

const identityKey = "identity"

// Auth verifies bearer tokens. The token's claims are trusted as the caller identity.
type Auth struct {
	secret string
	logger *slog.Logger
}

// NewAuth creates bearer-token middleware signed with secret.
func NewAuth(secret string, logger *slog.Logger) *Auth {
	return &Auth{secret: secret, logger: logger}
}

// Authenticate rejects requests without a valid bearer token.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.ensureAuthenticated(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireRoles authenticates and then checks the caller's role. Admin always passes.
func (a *Auth) RequireRoles(roles ...types.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := a.ensureAuthenticated(c)
		if !ok {
			return
		}
		if !roleAllowed(roles, id.Role) {
			response.Error(c, http.StatusForbidden, "Access denied: Insufficient permissions.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// VerifyToken exposes token verification for other transports such as Socket.IO.
func (a *Auth) VerifyToken(token string) (string, error) {
	claims, err := jwt.VerifyToken(token, a.secret)
	if err != nil {
		return "", err
	}
	return claims.UserID.String(), nil
}

// GetIdentity returns the authenticated caller stored by Authenticate.
func GetIdentity(c *gin.Context) (jwt.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return jwt.Identity{}, false
	}
	id, ok := v.(jwt.Identity)
	return id, ok
}

// SetIdentity stores id on the context. Used by tests and internal callers.
func SetIdentity(c *gin.Context, id jwt.Identity) {
	c.Set(identityKey, id)
}

func (a *Auth) ensureAuthenticated(c *gin.Context) (jwt.Identity, bool) {
	if id, ok := GetIdentity(c); ok {
		return id, true
	}

	header := c.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if !strings.HasPrefix(header, "Bearer ") || token == "" {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return jwt.Identity{}, false
	}

	claims, err := jwt.VerifyToken(token, a.secret)
	if err != nil {
		message := "Invalid token"
		if errors.Is(err, jwt.ErrExpiredToken) {
			message = "Token expired"
		}
		a.logger.DebugContext(c.Request.Context(), "bearer token rejected", slog.String("error", err.Error()))
		response.Error(c, http.StatusUnauthorized, message, nil)
		c.Abort()
		return jwt.Identity{}, false
	}

	id := claims.Identity()
	SetIdentity(c, id)
	return id, true
}

func roleAllowed(roles []types.UserType, role types.UserType) bool {
	if role == types.UserTypeAdmin || len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == types.UserTypeAll || r == role {
			return true
		}
	}
	return false
}
