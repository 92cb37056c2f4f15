package progress

import (
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// LessonProgress is a learner's state for one lesson. Rows are created the
// first time anything is recorded for the pair.
type LessonProgress struct {
	types.BaseModel

	UserID          uuid.UUID  `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_lesson_progress_user_lesson,priority:1;index:idx_lesson_progress_user_course,priority:1" json:"userId"`
	CourseID        uuid.UUID  `gorm:"type:uuid;not null;column:course_id;index:idx_lesson_progress_user_course,priority:2" json:"courseId"`
	LessonID        uuid.UUID  `gorm:"type:uuid;not null;column:lesson_id;uniqueIndex:idx_lesson_progress_user_lesson,priority:2" json:"lessonId"`
	IsCompleted     bool       `gorm:"type:boolean;not null;default:false;column:is_completed" json:"isCompleted"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
	QuizCompleted   bool       `gorm:"type:boolean;not null;default:false;column:quiz_completed" json:"quizCompleted"`
	QuizScore       *int       `gorm:"type:int;column:quiz_score" json:"quizScore,omitempty"`
	QuizCompletedAt *time.Time `gorm:"column:quiz_completed_at" json:"quizCompletedAt,omitempty"`
	IsUnlocked      bool       `gorm:"type:boolean;not null;default:false;column:is_unlocked" json:"isUnlocked"`
	LastPosition    int        `gorm:"type:int;not null;default:0;column:last_position" json:"lastPosition"`
	TimeSpent       int        `gorm:"type:int;not null;default:0;column:time_spent" json:"timeSpent"` // seconds
	LastAccessedAt  *time.Time `gorm:"column:last_accessed_at" json:"lastAccessedAt,omitempty"`
}

// TableName overrides the default table name.
func (LessonProgress) TableName() string { return "lesson_progress" }

// LessonState is one entry of a course progress map.
type LessonState struct {
	IsCompleted     bool       `json:"isCompleted"`
	QuizCompleted   bool       `json:"quizCompleted"`
	QuizScore       *int       `json:"quizScore,omitempty"`
	IsUnlocked      bool       `json:"isUnlocked"`
	CompletedAt     *time.Time `json:"completedAt"`
	QuizCompletedAt *time.Time `json:"quizCompletedAt"`
	LastAccessedAt  *time.Time `json:"lastAccessedAt"`
	LastPosition    int        `json:"lastPosition"`
	TimeSpent       int        `json:"timeSpent"`
}

// QuizResult is what recording a quiz outcome produces.
type QuizResult struct {
	QuizCompleted  bool       `json:"quizCompleted"`
	Score          int        `json:"score"`
	UnlockedLesson *uuid.UUID `json:"unlockedLessonId,omitempty"`
	Message        string     `json:"message"`
}

func stateOf(p LessonProgress) LessonState {
	return LessonState{
		IsCompleted:     p.IsCompleted,
		QuizCompleted:   p.QuizCompleted,
		QuizScore:       p.QuizScore,
		IsUnlocked:      p.IsUnlocked,
		CompletedAt:     p.CompletedAt,
		QuizCompletedAt: p.QuizCompletedAt,
		LastAccessedAt:  p.LastAccessedAt,
		LastPosition:    p.LastPosition,
		TimeSpent:       p.TimeSpent,
	}
}
