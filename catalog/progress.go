package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Progress tracks a single lesson's completion within an enrollment. At most
// one non-deleted entry may exist per (EnrollmentID, LessonID) pair.
type Progress struct {
	ID           string
	EnrollmentID string
	LessonID     string
	Completed    bool
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewProgress constructs an incomplete progress entry for the given pair.
func NewProgress(enrollmentID, lessonID string) *Progress {
	now := time.Now().UTC()
	return &Progress{
		ID:           uuid.New().String(),
		EnrollmentID: enrollmentID,
		LessonID:     lessonID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Complete marks the lesson finished.
func (p *Progress) Complete() {
	now := time.Now().UTC()
	p.Completed = true
	p.CompletedAt = &now
	p.UpdatedAt = now
}

// SoftDelete marks the progress entry logically deleted.
func (p *Progress) SoftDelete() {
	now := time.Now().UTC()
	p.DeletedAt = &now
	p.UpdatedAt = now
}
