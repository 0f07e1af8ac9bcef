package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Lesson is owned by a Section.
type Lesson struct {
	ID        string
	SectionID string
	Title     string
	Content   string
	Duration  int // minutes
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewLesson constructs a lesson under the given section.
func NewLesson(sectionID, title, content string, duration int) *Lesson {
	now := time.Now().UTC()
	return &Lesson{
		ID:        uuid.New().String(),
		SectionID: sectionID,
		Title:     title,
		Content:   content,
		Duration:  duration,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateDetails replaces the lesson's content fields.
func (l *Lesson) UpdateDetails(title, content string, duration int) {
	l.Title = title
	l.Content = content
	l.Duration = duration
	l.UpdatedAt = time.Now().UTC()
}

// SoftDelete marks the lesson logically deleted.
func (l *Lesson) SoftDelete() {
	now := time.Now().UTC()
	l.DeletedAt = &now
	l.UpdatedAt = now
}
