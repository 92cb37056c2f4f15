package progress

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/middleware"
	"github.com/mo-amir99/course-progress-server/pkg/request"
	"github.com/mo-amir99/course-progress-server/pkg/response"
)

// Handler processes lesson progress HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a progress handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type quizCompleteRequest struct {
	Score  *int  `json:"score" binding:"required,min=0,max=100"`
	Passed *bool `json:"passed" binding:"required"`
}

type trackRequest struct {
	Position  int `json:"position" binding:"min=0"`
	TimeSpent int `json:"timeSpent" binding:"min=0"`
}

// CompleteQuiz records a quiz outcome and unlocks the next lesson on a pass.
func (h *Handler) CompleteQuiz(c *gin.Context) {
	lessonID, err := request.ParamUUID(c, "lessonId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req quizCompleteRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	result, err := h.service.CompleteQuiz(c.Request.Context(), actor.UserID, lessonID, *req.Score, *req.Passed)
	if err != nil {
		h.respondError(c, err, "failed to record quiz result")
		return
	}

	fields := map[string]interface{}{
		"quizCompleted": result.QuizCompleted,
		"score":         result.Score,
	}
	if result.UnlockedLesson != nil {
		fields["unlockedLessonId"] = result.UnlockedLesson
	}
	response.SuccessFields(c, http.StatusOK, result.Message, fields)
}

// CourseProgress returns the caller's per-lesson map for a course.
func (h *Handler) CourseProgress(c *gin.Context) {
	courseID, err := request.ParamUUID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	states, err := h.service.CourseProgress(c.Request.Context(), actor.UserID, courseID)
	if err != nil {
		h.respondError(c, err, "failed to load course progress")
		return
	}

	response.Success(c, http.StatusOK, states, "", nil)
}

// Track stores playback position and time spent.
func (h *Handler) Track(c *gin.Context) {
	lessonID, err := request.ParamUUID(c, "lessonId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req trackRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	p, err := h.service.Track(c.Request.Context(), actor.UserID, lessonID, req.Position, req.TimeSpent)
	if err != nil {
		h.respondError(c, err, "failed to track lesson")
		return
	}

	response.Success(c, http.StatusOK, p, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, lesson.ErrLessonNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, enrollment.ErrNotEnrolled):
		response.Error(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrInvalidScore):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
	}
}
