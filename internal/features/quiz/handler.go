package quiz

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/middleware"
	"github.com/mo-amir99/course-progress-server/pkg/request"
	"github.com/mo-amir99/course-progress-server/pkg/response"
)

// Handler processes quiz HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a quiz handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type questionRequest struct {
	ID            string   `json:"id" binding:"max=64"`
	QuestionText  string   `json:"questionText" binding:"required,max=2000"`
	Type          string   `json:"type" binding:"required,oneof=multiple-choice true-false short-answer"`
	Options       []string `json:"options" binding:"omitempty,max=20,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
	Points        int      `json:"points" binding:"min=0"`
}

type createRequest struct {
	LessonID     *uuid.UUID        `json:"lessonId"`
	Title        string            `json:"title" binding:"required,max=200"`
	Questions    []questionRequest `json:"questions" binding:"required,min=1,dive"`
	PassingScore int               `json:"passingScore" binding:"min=0,max=100"`
	MaxAttempts  *int              `json:"maxAttempts" binding:"omitempty,min=0"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type attemptRequest struct {
	Answers   []answerRequest `json:"answers" binding:"required"`
	StartedAt *time.Time      `json:"startedAt"`
}

// SubmitAttempt grades a submission and stores it.
func (h *Handler) SubmitAttempt(c *gin.Context) {
	quizID, err := request.ParamUUID(c, "quizId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req attemptRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	answers := make([]string, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = a.Answer
	}

	attempt, result, err := h.service.SubmitAttempt(c.Request.Context(), quizID, actor.UserID, SubmitInput{
		Answers:   answers,
		StartedAt: req.StartedAt,
	})
	if err != nil {
		h.respondError(c, err, "failed to submit attempt")
		return
	}

	response.SuccessFields(c, http.StatusCreated, "", map[string]interface{}{
		"attempt": attempt,
		"results": result,
	})
}

// Create adds a quiz to a course.
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

	questions := make([]Question, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = Question{
			ID:            q.ID,
			QuestionText:  q.QuestionText,
			Type:          QuestionType(q.Type),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		}
	}

	quiz, err := h.service.Create(c.Request.Context(), actor, courseID, CreateInput{
		LessonID:     req.LessonID,
		Title:        req.Title,
		Questions:    questions,
		PassingScore: req.PassingScore,
		MaxAttempts:  req.MaxAttempts,
	})
	if err != nil {
		h.respondError(c, err, "failed to create quiz")
		return
	}

	response.Created(c, quiz, "Quiz created")
}

// GetByID returns a quiz.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := request.ParamUUID(c, "quizId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	quiz, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err, "failed to load quiz")
		return
	}

	response.Success(c, http.StatusOK, quiz, "", nil)
}

// GetByLesson returns the quiz of a lesson.
func (h *Handler) GetByLesson(c *gin.Context) {
	lessonID, err := request.ParamUUID(c, "lessonId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	quiz, err := h.service.GetByLesson(c.Request.Context(), actor, lessonID)
	if err != nil {
		h.respondError(c, err, "failed to load quiz")
		return
	}

	response.Success(c, http.StatusOK, quiz, "", nil)
}

// ListAttempts returns the caller's attempt history.
func (h *Handler) ListAttempts(c *gin.Context) {
	quizID, err := request.ParamUUID(c, "quizId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	attempts, err := h.service.ListAttempts(c.Request.Context(), actor.UserID, quizID)
	if err != nil {
		h.respondError(c, err, "failed to list attempts")
		return
	}

	response.Success(c, http.StatusOK, attempts, "", nil)
}

// Delete removes a quiz.
func (h *Handler) Delete(c *gin.Context) {
	id, err := request.ParamUUID(c, "quizId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	actor, _ := middleware.GetIdentity(c)

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err, "failed to delete quiz")
		return
	}

	response.Success(c, http.StatusOK, nil, "Quiz deleted", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrQuizNotFound), errors.Is(err, lesson.ErrLessonNotFound),
		errors.Is(err, course.ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, enrollment.ErrNotEnrolled), errors.Is(err, course.ErrNotOwner):
		response.Error(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrAttemptLimitExceeded), errors.Is(err, ErrTooManyAnswers),
		errors.Is(err, ErrInvalidQuiz), errors.Is(err, ErrInvalidCorrectAnswer),
		errors.Is(err, ErrDuplicateQuestionID), errors.Is(err, ErrLessonNotInCourse):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrAttemptConflict), errors.Is(err, ErrLessonAlreadyHasQuiz),
		errors.Is(err, ErrQuizHasAttempts):
		response.Error(c, http.StatusConflict, err.Error(), nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
	}
}
