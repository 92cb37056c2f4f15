package enrollment

import "errors"

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrNotOwner           = errors.New("enrollment does not belong to you")
	ErrNotEnrolled        = errors.New("you are not enrolled in this course")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrEnrollmentCanceled = errors.New("enrollment has been cancelled")
	ErrLessonNotInCourse  = errors.New("lesson does not belong to the enrolled course")
	ErrInvalidTransition  = errors.New("enrollment status cannot change that way")
	ErrPaymentRequired    = errors.New("payment required to enroll in this course")
)
