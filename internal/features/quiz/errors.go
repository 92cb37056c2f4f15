package quiz

import "errors"

var (
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrAttemptLimitExceeded = errors.New("maximum number of attempts reached")
	ErrTooManyAnswers       = errors.New("more answers submitted than the quiz has questions")
	ErrAttemptConflict      = errors.New("another attempt was submitted at the same time, please retry")
	ErrInvalidQuiz          = errors.New("invalid quiz definition")
	ErrLessonNotInCourse    = errors.New("lesson does not belong to this course")
	ErrDuplicateQuestionID  = errors.New("question ids must be unique")
	ErrInvalidCorrectAnswer = errors.New("correct answer does not match the question type")
	ErrLessonAlreadyHasQuiz = errors.New("lesson already has a quiz")
	ErrQuizHasAttempts      = errors.New("quiz already has attempts and cannot be deleted")
)
