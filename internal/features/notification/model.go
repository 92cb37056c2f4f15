package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// Type identifies what a notification is about.
type Type string

const (
	TypeLessonUnlocked  Type = "lesson_unlocked"
	TypeQuizPassed      Type = "quiz_passed"
	TypeCourseCompleted Type = "course_completed"
)

// Notification is a message addressed to one learner.
type Notification struct {
	types.BaseModel

	UserID  uuid.UUID         `gorm:"type:uuid;not null;column:user_id;index" json:"userId"`
	Type    Type              `gorm:"type:varchar(40);not null" json:"type"`
	Title   string            `gorm:"type:varchar(200);not null" json:"title"`
	Message string            `gorm:"type:text;not null" json:"message"`
	Data    datatypes.JSONMap `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead  bool              `gorm:"type:boolean;not null;default:false;column:is_read" json:"isRead"`
	ReadAt  *time.Time        `gorm:"column:read_at" json:"readAt,omitempty"`
}

// TableName overrides the default table name.
func (Notification) TableName() string { return "notifications" }
