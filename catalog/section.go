package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Section is owned by a Course. The back-reference to the course is a plain
// foreign key, never a pointer.
type Section struct {
	ID        string
	CourseID  string
	Title     string
	Lessons   []*Lesson
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewSection constructs a section under the given course.
func NewSection(courseID, title string) *Section {
	now := time.Now().UTC()
	return &Section{
		ID:        uuid.New().String(),
		CourseID:  courseID,
		Title:     title,
		Lessons:   []*Lesson{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Rename updates the section title.
func (s *Section) Rename(title string) {
	s.Title = title
	s.UpdatedAt = time.Now().UTC()
}

// AddLesson appends a lesson to the section.
func (s *Section) AddLesson(l *Lesson) {
	s.Lessons = append(s.Lessons, l)
	s.UpdatedAt = time.Now().UTC()
}

// SoftDelete marks the section logically deleted.
func (s *Section) SoftDelete() {
	now := time.Now().UTC()
	s.DeletedAt = &now
	s.UpdatedAt = now
}
