package lesson

import "errors"

var (
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrTitleRequired   = errors.New("lesson title is required")
	ErrOrderInvalid    = errors.New("lesson order must be at least 1")
	ErrDurationInvalid = errors.New("lesson duration cannot be negative")
	ErrOrderTaken      = errors.New("another lesson in this course already uses that order")
	ErrCourseMismatch  = errors.New("lesson does not belong to this course")
)
