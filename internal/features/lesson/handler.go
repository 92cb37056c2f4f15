package lesson

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/middleware"
	"github.com/mo-amir99/course-progress-server/pkg/request"
	"github.com/mo-amir99/course-progress-server/pkg/response"
)

// Handler processes lesson HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a lesson handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type createRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl" binding:"omitempty,url"`
	Order       int    `json:"order" binding:"required,min=1"`
	Duration    int    `json:"duration" binding:"min=0"`
	IsPreview   bool   `json:"isPreview"`
}

type updateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	VideoURL    *string `json:"videoUrl" binding:"omitempty,url"`
	Order       *int    `json:"order" binding:"omitempty,min=1"`
	Duration    *int    `json:"duration" binding:"omitempty,min=0"`
	IsPreview   *bool   `json:"isPreview"`
}

// List returns the ordered lessons of a course.
func (h *Handler) List(c *gin.Context) {
	courseID, err := request.ParamUUID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	lessons, err := h.service.ListByCourse(c.Request.Context(), actor, courseID)
	if err != nil {
		h.respondError(c, err, "failed to list lessons")
		return
	}

	response.Success(c, http.StatusOK, lessons, "", nil)
}

// GetByID returns a single lesson.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := request.ParamUUID(c, "lessonId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	l, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	response.Success(c, http.StatusOK, l, "", nil)
}

// Create adds a lesson to a course.
func (h *Handler) Create(c *gin.Context) {
	courseID, err := request.ParamUUID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req createRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	l, err := h.service.Create(c.Request.Context(), actor, courseID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Order:       req.Order,
		Duration:    req.Duration,
		IsPreview:   req.IsPreview,
	})
	if err != nil {
		h.respondError(c, err, "failed to create lesson")
		return
	}

	response.Created(c, l, "Lesson created")
}

// Update modifies a lesson.
func (h *Handler) Update(c *gin.Context) {
	courseID, err := request.ParamUUID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := request.ParamUUID(c, "lessonId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req updateRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	l, err := h.service.Update(c.Request.Context(), actor, courseID, id, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Order:       req.Order,
		Duration:    req.Duration,
		IsPreview:   req.IsPreview,
	})
	if err != nil {
		h.respondError(c, err, "failed to update lesson")
		return
	}

	response.Success(c, http.StatusOK, l, "Lesson updated", nil)
}

// Delete removes a lesson.
func (h *Handler) Delete(c *gin.Context) {
	courseID, err := request.ParamUUID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := request.ParamUUID(c, "lessonId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	if err := h.service.Delete(c.Request.Context(), actor, courseID, id); err != nil {
		h.respondError(c, err, "failed to delete lesson")
		return
	}

	response.Success(c, http.StatusOK, nil, "Lesson deleted", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrLessonNotFound), errors.Is(err, course.ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, course.ErrNotOwner):
		response.Error(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrOrderTaken):
		response.Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrOrderInvalid),
		errors.Is(err, ErrDurationInvalid), errors.Is(err, ErrCourseMismatch):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
	}
}
