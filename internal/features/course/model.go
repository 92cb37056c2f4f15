package course

import (
	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// Status is the publication state of a course.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Course is a sequence of lessons owned by one instructor.
type Course struct {
	types.BaseModel

	InstructorID uuid.UUID   `gorm:"type:uuid;not null;column:instructor_id;index" json:"instructorId"`
	Title        string      `gorm:"type:varchar(200);not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	Price        types.Money `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	Status       Status      `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// IsPublished reports whether learners can see and enroll in the course.
func (c Course) IsPublished() bool {
	return c.Status == StatusPublished
}

// IsFree reports whether the course can be enrolled in without checkout.
func (c Course) IsFree() bool {
	return c.Price.IsZero()
}

// OwnedBy reports whether userID is the course instructor.
func (c Course) OwnedBy(userID uuid.UUID) bool {
	return c.InstructorID == userID
}

// ListFilters defines course query filters.
type ListFilters struct {
	Keyword       string
	PublishedOnly bool
	InstructorID  *uuid.UUID
}

// CreateInput carries data for creating a new course.
type CreateInput struct {
	Title       string
	Description string
	Price       types.Money
}

// UpdateInput captures mutable course fields.
type UpdateInput struct {
	Title       *string
	Description *string
	Price       *types.Money
}
