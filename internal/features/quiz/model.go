package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// QuestionType is how a question is answered.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionShortAnswer    QuestionType = "short-answer"
)

// Question is one graded item of a quiz.
type Question struct {
	ID            string       `json:"id"`
	QuestionText  string       `json:"questionText"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Points        int          `json:"points"`
}

// Quiz is a set of questions attached to a course and optionally a lesson.
type Quiz struct {
	types.BaseModel

	CourseID     uuid.UUID                     `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	LessonID     *uuid.UUID                    `gorm:"type:uuid;column:lesson_id;uniqueIndex" json:"lessonId,omitempty"`
	Title        string                        `gorm:"type:varchar(200);not null" json:"title"`
	Questions    datatypes.JSONSlice[Question] `gorm:"type:jsonb;not null" json:"questions"`
	PassingScore int                           `gorm:"type:int;not null;column:passing_score" json:"passingScore"`
	MaxAttempts  *int                          `gorm:"type:int;column:max_attempts" json:"maxAttempts,omitempty"`
}

// TableName overrides the default table name.
func (Quiz) TableName() string { return "quizzes" }

// AttemptLimit returns the allowed number of attempts, 0 meaning unlimited.
func (q Quiz) AttemptLimit() int {
	if q.MaxAttempts == nil || *q.MaxAttempts < 0 {
		return 0
	}
	return *q.MaxAttempts
}

// ForLearner returns a copy without the correct answers.
func (q Quiz) ForLearner() Quiz {
	questions := make(datatypes.JSONSlice[Question], len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswer = ""
		questions[i] = question
	}
	q.Questions = questions
	return q
}

// Answer is a graded response to one question.
type Answer struct {
	QuestionID   string `json:"questionId"`
	Answer       string `json:"answer"`
	IsCorrect    bool   `json:"isCorrect"`
	PointsEarned int    `json:"pointsEarned"`
}

// Attempt is one immutable submission of a quiz by a learner.
type Attempt struct {
	types.BaseModel

	QuizID        uuid.UUID                   `gorm:"type:uuid;not null;column:quiz_id;uniqueIndex:idx_quiz_attempts_quiz_user_number,priority:1" json:"quizId"`
	UserID        uuid.UUID                   `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_quiz_attempts_quiz_user_number,priority:2" json:"userId"`
	CourseID      uuid.UUID                   `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	Answers       datatypes.JSONSlice[Answer] `gorm:"type:jsonb;not null" json:"answers"`
	Score         int                         `gorm:"type:int;not null" json:"score"`
	MaxScore      int                         `gorm:"type:int;not null;column:max_score" json:"maxScore"`
	Percentage    float64                     `gorm:"type:numeric(5,2);not null" json:"percentage"`
	Passed        bool                        `gorm:"type:boolean;not null" json:"passed"`
	AttemptNumber int                         `gorm:"type:int;not null;column:attempt_number;uniqueIndex:idx_quiz_attempts_quiz_user_number,priority:3" json:"attemptNumber"`
	TimeSpent     int                         `gorm:"type:int;not null;default:0;column:time_spent" json:"timeSpent"` // seconds
	StartedAt     *time.Time                  `gorm:"column:started_at" json:"startedAt,omitempty"`
	CompletedAt   time.Time                   `gorm:"column:completed_at;not null" json:"completedAt"`
}

// TableName overrides the default table name.
func (Attempt) TableName() string { return "quiz_attempts" }

// CreateInput carries data for creating a quiz.
type CreateInput struct {
	LessonID     *uuid.UUID
	Title        string
	Questions    []Question
	PassingScore int
	MaxAttempts  *int
}

// SubmitInput is a learner's submission.
type SubmitInput struct {
	Answers   []string
	StartedAt *time.Time
}
