package notification

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/course-progress-server/internal/middleware"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
	"github.com/mo-amir99/course-progress-server/pkg/request"
	"github.com/mo-amir99/course-progress-server/pkg/response"
)

// Handler processes notification HTTP requests.
type Handler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewHandler constructs a notification handler instance.
func NewHandler(dispatcher *Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, logger: logger}
}

// List returns the caller's notifications.
func (h *Handler) List(c *gin.Context) {
	actor, _ := middleware.GetIdentity(c)
	params := pagination.Extract(c)

	items, total, err := h.dispatcher.List(c.Request.Context(), actor.UserID, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}

	response.Success(c, http.StatusOK, items, "", pagination.MetadataFrom(total, params))
}

// MarkRead flags a notification as read.
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := request.ParamUUID(c, "notificationId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	n, err := h.dispatcher.MarkRead(c.Request.Context(), actor.UserID, id)
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.Error(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to update notification", err)
		return
	}

	response.Success(c, http.StatusOK, n, "Notification marked as read", nil)
}
