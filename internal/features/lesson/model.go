package lesson

import (
	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// Lesson is one step of a course. Order is unique per course and is the
// only key used to decide which lesson comes next.
type Lesson struct {
	types.BaseModel

	CourseID    uuid.UUID `gorm:"type:uuid;not null;column:course_id;uniqueIndex:idx_lessons_course_order,priority:1" json:"courseId"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	VideoURL    string    `gorm:"type:varchar(500);column:video_url" json:"videoUrl"`
	Order       int       `gorm:"type:int;not null;column:order;uniqueIndex:idx_lessons_course_order,priority:2" json:"order"`
	Duration    int       `gorm:"type:int;not null;default:0" json:"duration"` // seconds
	IsPreview   bool      `gorm:"type:boolean;not null;default:false;column:is_preview" json:"isPreview"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	Title       string
	Description string
	VideoURL    string
	Order       int
	Duration    int
	IsPreview   bool
}

// UpdateInput captures mutable lesson fields.
type UpdateInput struct {
	Title       *string
	Description *string
	VideoURL    *string
	Order       *int
	Duration    *int
	IsPreview   *bool
}

// Next returns the lesson that follows id in an ordered list.
// ok is false when id is the last lesson or is not in the list.
func Next(ordered []Lesson, id uuid.UUID) (Lesson, bool) {
	for i := range ordered {
		if ordered[i].ID == id {
			if i+1 < len(ordered) {
				return ordered[i+1], true
			}
			return Lesson{}, false
		}
	}
	return Lesson{}, false
}

// IDs returns the ids of lessons in order.
func IDs(lessons []Lesson) []uuid.UUID {
	ids := make([]uuid.UUID, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	return ids
}
