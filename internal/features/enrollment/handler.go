package enrollment

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/middleware"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
	"github.com/mo-amir99/course-progress-server/pkg/request"
	"github.com/mo-amir99/course-progress-server/pkg/response"
)

// Handler processes enrollment HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs an enrollment handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type progressRequest struct {
	LessonID  uuid.UUID `json:"lessonId" binding:"required"`
	Completed *bool     `json:"completed" binding:"required"`
}

// UpdateProgress marks a lesson as completed or not for the caller's enrollment.
func (h *Handler) UpdateProgress(c *gin.Context) {
	enrollmentID, err := request.ParamUUID(c, "enrollmentId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req progressRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	e, err := h.service.UpdateProgress(c.Request.Context(), actor.UserID, enrollmentID, req.LessonID, *req.Completed)
	if err != nil {
		h.respondError(c, err, "failed to update progress")
		return
	}

	response.Success(c, http.StatusOK, e.View(), "Progress updated", nil)
}

// Enroll enrolls the caller in a free course.
func (h *Handler) Enroll(c *gin.Context) {
	courseID, err := request.ParamUUID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	e, created, err := h.service.EnrollFree(c.Request.Context(), actor.UserID, courseID)
	if err != nil {
		h.respondError(c, err, "failed to enroll")
		return
	}

	if created {
		response.Created(c, e, "Enrolled successfully")
		return
	}
	response.Success(c, http.StatusOK, e, "Already enrolled", nil)
}

// List returns the caller's enrollments.
func (h *Handler) List(c *gin.Context) {
	actor, _ := middleware.GetIdentity(c)
	params := pagination.Extract(c)

	items, total, err := h.service.List(c.Request.Context(), actor.UserID, params)
	if err != nil {
		h.respondError(c, err, "failed to list enrollments")
		return
	}

	response.Success(c, http.StatusOK, items, "", pagination.MetadataFrom(total, params))
}

// GetByID returns one enrollment.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := request.ParamUUID(c, "enrollmentId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	e, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err, "failed to load enrollment")
		return
	}

	response.Success(c, http.StatusOK, e, "", nil)
}

// Cancel cancels an active enrollment.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := request.ParamUUID(c, "enrollmentId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	e, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to cancel enrollment")
		return
	}

	response.Success(c, http.StatusOK, e, "Enrollment cancelled", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrEnrollmentNotFound), errors.Is(err, lesson.ErrLessonNotFound),
		errors.Is(err, course.ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrPaymentRequired):
		response.Error(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrLessonNotInCourse), errors.Is(err, ErrEnrollmentCanceled),
		errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
	}
}
