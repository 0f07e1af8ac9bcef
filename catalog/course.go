// Package catalog holds the course-catalog domain aggregates and the error
// taxonomy shared by every layer above the store.
//
// An aggregate is a root entity plus everything it exclusively owns: a Course
// owns its ordered Sections (which own their ordered Lessons) and its
// Quizzes. Cross-references such as instructor or user ids are plain foreign
// keys resolved by an external identity service, never object pointers, so
// the object graph is acyclic by construction.
//
// Lifecycle is uniform across aggregates: constructors stamp
// CreatedAt=UpdatedAt=now, every mutation re-stamps UpdatedAt, and deletion
// is logical via DeletedAt. Rows are never physically removed.
package catalog

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Course is the root aggregate of the catalog.
type Course struct {
	ID           string
	Title        string
	Description  string
	InstructorID string
	Sections     []*Section
	Quizzes      []*Quiz
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewCourse constructs a course with a fresh identity and empty, non-nil
// child collections.
func NewCourse(title, description, instructorID string) *Course {
	now := time.Now().UTC()
	return &Course{
		ID:           uuid.New().String(),
		Title:        title,
		Description:  description,
		InstructorID: instructorID,
		Sections:     []*Section{},
		Quizzes:      []*Quiz{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateDetails replaces title and description and re-stamps UpdatedAt.
func (c *Course) UpdateDetails(title, description string) {
	c.Title = title
	c.Description = description
	c.UpdatedAt = time.Now().UTC()
}

// AddSection appends a section to the course.
func (c *Course) AddSection(s *Section) {
	c.Sections = append(c.Sections, s)
	c.UpdatedAt = time.Now().UTC()
}

// AddQuiz appends a quiz to the course.
func (c *Course) AddQuiz(q *Quiz) {
	c.Quizzes = append(c.Quizzes, q)
	c.UpdatedAt = time.Now().UTC()
}

// SoftDelete marks the course logically deleted.
func (c *Course) SoftDelete() {
	now := time.Now().UTC()
	c.DeletedAt = &now
	c.UpdatedAt = now
}

// Deleted reports whether the course has been logically deleted.
func (c *Course) Deleted() bool { return c.DeletedAt != nil }

// Validate enforces the course's structural rules.
func (c *Course) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&c.InstructorID, validation.Required),
	)
	if err != nil {
		return NewInvalidState("course", err.Error())
	}
	return nil
}
