package catalog

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// EnrollmentStatus enumerates the lifecycle states of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentDropped   EnrollmentStatus = "DROPPED"
)

// Enrollment links a user to a course. At most one non-deleted enrollment
// may exist per (UserID, CourseID) pair.
type Enrollment struct {
	ID          string
	UserID      string
	CourseID    string
	Status      EnrollmentStatus
	Progress    float64 // 0-100
	EnrolledAt  time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// NewEnrollment constructs an active enrollment for the given pair.
func NewEnrollment(userID, courseID string) *Enrollment {
	now := time.Now().UTC()
	return &Enrollment{
		ID:         uuid.New().String(),
		UserID:     userID,
		CourseID:   courseID,
		Status:     EnrollmentActive,
		EnrolledAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// UpdateStatus transitions the enrollment. Completing stamps CompletedAt.
func (e *Enrollment) UpdateStatus(status EnrollmentStatus) {
	now := time.Now().UTC()
	e.Status = status
	if status == EnrollmentCompleted {
		e.CompletedAt = &now
		e.Progress = 100
	}
	e.UpdatedAt = now
}

// UpdateProgress records completion percentage.
func (e *Enrollment) UpdateProgress(progress float64) {
	e.Progress = progress
	e.UpdatedAt = time.Now().UTC()
}

// SoftDelete marks the enrollment logically deleted.
func (e *Enrollment) SoftDelete() {
	now := time.Now().UTC()
	e.DeletedAt = &now
	e.UpdatedAt = now
}

// Validate enforces the enrollment's structural rules.
func (e *Enrollment) Validate() error {
	err := validation.ValidateStruct(e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.UserID, validation.Required),
		validation.Field(&e.CourseID, validation.Required),
		validation.Field(&e.Status, validation.Required, validation.In(EnrollmentActive, EnrollmentCompleted, EnrollmentDropped)),
		validation.Field(&e.Progress, validation.Min(0.0), validation.Max(100.0)),
	)
	if err != nil {
		return NewInvalidState("enrollment", err.Error())
	}
	return nil
}
