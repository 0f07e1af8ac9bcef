package storage

import (
	"fmt"

	"github.com/goliatone/go-course-catalog/catalog"
)

// EnrollmentToRow flattens an enrollment.
func EnrollmentToRow(e *catalog.Enrollment) (*EnrollmentRow, error) {
	if e == nil {
		return nil, fmt.Errorf("enrollment mapper: nil aggregate")
	}
	return &EnrollmentRow{
		ID:          e.ID,
		UserID:      e.UserID,
		CourseID:    e.CourseID,
		Status:      string(e.Status),
		Progress:    e.Progress,
		EnrolledAt:  e.EnrolledAt,
		CompletedAt: e.CompletedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		DeletedAt:   e.DeletedAt,
	}, nil
}

// EnrollmentToDomain reconstructs an enrollment, rejecting unknown statuses
// as a malformed row shape.
func EnrollmentToDomain(row *EnrollmentRow) (*catalog.Enrollment, error) {
	if row == nil {
		return nil, fmt.Errorf("enrollment mapper: nil row")
	}
	status := catalog.EnrollmentStatus(row.Status)
	switch status {
	case catalog.EnrollmentActive, catalog.EnrollmentCompleted, catalog.EnrollmentDropped:
	default:
		return nil, fmt.Errorf("enrollment mapper: unknown status %q", row.Status)
	}
	return &catalog.Enrollment{
		ID:          row.ID,
		UserID:      row.UserID,
		CourseID:    row.CourseID,
		Status:      status,
		Progress:    row.Progress,
		EnrolledAt:  row.EnrolledAt,
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		DeletedAt:   row.DeletedAt,
	}, nil
}

// ReviewToRow flattens a review.
func ReviewToRow(r *catalog.Review) (*ReviewRow, error) {
	if r == nil {
		return nil, fmt.Errorf("review mapper: nil aggregate")
	}
	return &ReviewRow{
		ID:        r.ID,
		UserID:    r.UserID,
		CourseID:  r.CourseID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		DeletedAt: r.DeletedAt,
	}, nil
}

// ReviewToDomain reconstructs a review.
func ReviewToDomain(row *ReviewRow) (*catalog.Review, error) {
	if row == nil {
		return nil, fmt.Errorf("review mapper: nil row")
	}
	return &catalog.Review{
		ID:        row.ID,
		UserID:    row.UserID,
		CourseID:  row.CourseID,
		Rating:    row.Rating,
		Comment:   row.Comment,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		DeletedAt: row.DeletedAt,
	}, nil
}

// ProgressToRow flattens a progress entry.
func ProgressToRow(p *catalog.Progress) (*ProgressRow, error) {
	if p == nil {
		return nil, fmt.Errorf("progress mapper: nil aggregate")
	}
	return &ProgressRow{
		ID:           p.ID,
		EnrollmentID: p.EnrollmentID,
		LessonID:     p.LessonID,
		Completed:    p.Completed,
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		DeletedAt:    p.DeletedAt,
	}, nil
}

// ProgressToDomain reconstructs a progress entry.
func ProgressToDomain(row *ProgressRow) (*catalog.Progress, error) {
	if row == nil {
		return nil, fmt.Errorf("progress mapper: nil row")
	}
	return &catalog.Progress{
		ID:           row.ID,
		EnrollmentID: row.EnrollmentID,
		LessonID:     row.LessonID,
		Completed:    row.Completed,
		CompletedAt:  row.CompletedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
	}, nil
}
