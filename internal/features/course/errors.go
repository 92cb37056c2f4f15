package course

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrNotOwner       = errors.New("only the course instructor or an admin can modify this course")
	ErrInvalidPrice   = errors.New("price cannot be negative")
	ErrNoLessons      = errors.New("a course needs at least one lesson before it can be published")
)
