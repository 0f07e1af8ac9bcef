package catalog

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// MCQQuestion is a multiple-choice question embedded in a Quiz. Questions
// have no lifecycle of their own; they live and die with the quiz.
type MCQQuestion struct {
	ID            string   `msgpack:"id" json:"id"`
	Question      string   `msgpack:"question" json:"question"`
	Options       []string `msgpack:"options" json:"options"`
	CorrectAnswer int      `msgpack:"correct_answer" json:"correctAnswer"` // 0-based index into Options
	Explanation   string   `msgpack:"explanation,omitempty" json:"explanation,omitempty"`
}

// Quiz is owned by a Course.
type Quiz struct {
	ID           string
	CourseID     string
	Title        string
	Description  string
	TimeLimit    int // minutes
	PassingScore int // percentage, 0-100
	Questions    []MCQQuestion
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewQuiz constructs a quiz under the given course.
func NewQuiz(courseID, title, description string, timeLimit, passingScore int, questions []MCQQuestion) *Quiz {
	if questions == nil {
		questions = []MCQQuestion{}
	}
	now := time.Now().UTC()
	return &Quiz{
		ID:           uuid.New().String(),
		CourseID:     courseID,
		Title:        title,
		Description:  description,
		TimeLimit:    timeLimit,
		PassingScore: passingScore,
		Questions:    questions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateDetails replaces the quiz contents in full.
func (q *Quiz) UpdateDetails(title, description string, timeLimit, passingScore int, questions []MCQQuestion) {
	if questions == nil {
		questions = []MCQQuestion{}
	}
	q.Title = title
	q.Description = description
	q.TimeLimit = timeLimit
	q.PassingScore = passingScore
	q.Questions = questions
	q.UpdatedAt = time.Now().UTC()
}

// SoftDelete marks the quiz logically deleted.
func (q *Quiz) SoftDelete() {
	now := time.Now().UTC()
	q.DeletedAt = &now
	q.UpdatedAt = now
}

// Validate enforces the quiz's structural rules.
func (q *Quiz) Validate() error {
	err := validation.ValidateStruct(q,
		validation.Field(&q.ID, validation.Required),
		validation.Field(&q.CourseID, validation.Required),
		validation.Field(&q.Title, validation.Required),
		validation.Field(&q.TimeLimit, validation.Min(0)),
		validation.Field(&q.PassingScore, validation.Min(0), validation.Max(100)),
	)
	if err != nil {
		return NewInvalidState("quiz", err.Error())
	}
	return nil
}
