package course

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/course-progress-server/internal/middleware"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
	"github.com/mo-amir99/course-progress-server/pkg/request"
	"github.com/mo-amir99/course-progress-server/pkg/response"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// Handler processes course HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a course handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type createRequest struct {
	Title       string       `json:"title" binding:"required,max=200"`
	Description string       `json:"description"`
	Price       *types.Money `json:"price"`
}

type updateRequest struct {
	Title       *string      `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string      `json:"description"`
	Price       *types.Money `json:"price"`
}

// List returns paginated courses.
func (h *Handler) List(c *gin.Context) {
	actor, _ := middleware.GetIdentity(c)
	params := pagination.Extract(c)

	courses, total, err := h.service.List(c.Request.Context(), actor, c.Query("filterKeyword"), params)
	if err != nil {
		h.respondError(c, err, "failed to list courses")
		return
	}

	response.Success(c, http.StatusOK, courses, "", pagination.MetadataFrom(total, params))
}

// GetByID returns a single course.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := request.ParamUUID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	course, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	response.Success(c, http.StatusOK, course, "", nil)
}

// Create inserts a new draft course.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	input := CreateInput{Title: req.Title, Description: req.Description}
	if req.Price != nil {
		input.Price = *req.Price
	}

	course, err := h.service.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.respondError(c, err, "failed to create course")
		return
	}

	response.Created(c, course, "Course created")
}

// Update modifies an existing course.
func (h *Handler) Update(c *gin.Context) {
	id, err := request.ParamUUID(c, "courseId")
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

	course, err := h.service.Update(c.Request.Context(), actor, id, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		h.respondError(c, err, "failed to update course")
		return
	}

	response.Success(c, http.StatusOK, course, "Course updated", nil)
}

// Publish makes a draft course visible to learners.
func (h *Handler) Publish(c *gin.Context) {
	id, err := request.ParamUUID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	course, err := h.service.Publish(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err, "failed to publish course")
		return
	}

	response.Success(c, http.StatusOK, course, "Course published", nil)
}

// Delete removes a course.
func (h *Handler) Delete(c *gin.Context) {
	id, err := request.ParamUUID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err, "failed to delete course")
		return
	}

	response.Success(c, http.StatusOK, nil, "Course deleted", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrNoLessons):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
	}
}
