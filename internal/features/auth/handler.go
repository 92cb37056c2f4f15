package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/course-progress-server/internal/features/user"
	"github.com/mo-amir99/course-progress-server/internal/middleware"
	"github.com/mo-amir99/course-progress-server/pkg/request"
	"github.com/mo-amir99/course-progress-server/pkg/response"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs an auth handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type registerRequest struct {
	FullName string `json:"fullName" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new student account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.service.Register(c.Request.Context(), RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err, "registration failed")
		return
	}

	response.Created(c, res, "Registration successful")
}

// Login authenticates a user and returns an access token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, res, "Login successful", nil)
}

// Me returns the authenticated account.
func (h *Handler) Me(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	u, err := h.service.Me(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to load account")
		return
	}

	response.Success(c, http.StatusOK, u, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, ErrInactiveAccount):
		response.Error(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, user.ErrEmailTaken):
		response.Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, user.ErrInvalidPassword):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, user.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
	}
}
