package enrollment

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// Status is the lifecycle state of an enrollment.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions lists every allowed status change. completed and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusActive: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether an enrollment may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Enrollment links a learner to a course and tracks how far they got.
type Enrollment struct {
	types.BaseModel

	UserID           uuid.UUID      `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_enrollments_user_course,priority:1" json:"userId"`
	CourseID         uuid.UUID      `gorm:"type:uuid;not null;column:course_id;uniqueIndex:idx_enrollments_user_course,priority:2;index" json:"courseId"`
	Progress         int            `gorm:"type:int;not null;default:0" json:"progress"`
	CompletedLessons pq.StringArray `gorm:"type:uuid[];column:completed_lessons" json:"completedLessons"`
	Status           Status         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	EnrolledAt       time.Time      `gorm:"column:enrolled_at;not null" json:"enrolledAt"`
	LastAccessedAt   time.Time      `gorm:"column:last_accessed_at;not null" json:"lastAccessedAt"`
	CompletedAt      *time.Time     `gorm:"column:completed_at" json:"completedAt,omitempty"`
	CancelledAt      *time.Time     `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
}

// TableName overrides the default table name.
func (Enrollment) TableName() string { return "enrollments" }

// IsCancelled reports whether the enrollment was cancelled.
func (e Enrollment) IsCancelled() bool {
	return e.Status == StatusCancelled
}

// HasCompleted reports whether lessonID is in the completed set.
func (e Enrollment) HasCompleted(lessonID uuid.UUID) bool {
	id := lessonID.String()
	for _, done := range e.CompletedLessons {
		if done == id {
			return true
		}
	}
	return false
}

// ComputeProgress returns the rounded percentage of courseLessons present in
// completed. Ids that are no longer part of the course are ignored.
func ComputeProgress(completed []string, courseLessons []uuid.UUID) int {
	if len(courseLessons) == 0 {
		return 0
	}
	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}
	hits := 0
	for _, id := range courseLessons {
		if _, ok := done[id.String()]; ok {
			hits++
		}
	}
	return int(math.Round(100 * float64(hits) / float64(len(courseLessons))))
}

// ApplyLessonCompletion adds or removes lessonID from the completed set,
// recomputes progress against courseLessons and stamps the access time.
// It reports whether the enrollment just became completed.
func ApplyLessonCompletion(e *Enrollment, courseLessons []uuid.UUID, lessonID uuid.UUID, completed bool, now time.Time) bool {
	id := lessonID.String()
	if completed {
		if !e.HasCompleted(lessonID) {
			e.CompletedLessons = append(e.CompletedLessons, id)
		}
	} else {
		kept := make(pq.StringArray, 0, len(e.CompletedLessons))
		for _, done := range e.CompletedLessons {
			if done != id {
				kept = append(kept, done)
			}
		}
		e.CompletedLessons = kept
	}
	e.LastAccessedAt = now
	return Recalculate(e, courseLessons, now)
}

// Recalculate refreshes progress and completes the enrollment once it reaches 100.
// A completed enrollment is never moved back to active.
func Recalculate(e *Enrollment, courseLessons []uuid.UUID, now time.Time) bool {
	e.Progress = ComputeProgress(e.CompletedLessons, courseLessons)
	if e.Progress >= 100 && CanTransition(e.Status, StatusCompleted) {
		e.Status = StatusCompleted
		e.CompletedAt = &now
		return true
	}
	return false
}

// ProgressView is the response shape of a progress update.
type ProgressView struct {
	ID               uuid.UUID  `json:"id"`
	Progress         int        `json:"progress"`
	CompletedLessons []string   `json:"completedLessons"`
	Status           Status     `json:"status"`
	CompletedAt      *time.Time `json:"completedAt"`
}

// View projects the fields a progress update returns.
func (e Enrollment) View() ProgressView {
	lessons := []string(e.CompletedLessons)
	if lessons == nil {
		lessons = []string{}
	}
	return ProgressView{
		ID:               e.ID,
		Progress:         e.Progress,
		CompletedLessons: lessons,
		Status:           e.Status,
		CompletedAt:      e.CompletedAt,
	}
}
