package catalog

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Review is a user's rating of a course. At most one review may exist per
// (UserID, CourseID) pair, and the rating must validate before persistence.
type Review struct {
	ID        string
	UserID    string
	CourseID  string
	Rating    int // 1-5
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewReview constructs a review for the given pair.
func NewReview(userID, courseID string, rating int, comment string) *Review {
	now := time.Now().UTC()
	return &Review{
		ID:        uuid.New().String(),
		UserID:    userID,
		CourseID:  courseID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Update replaces the rating and comment.
func (r *Review) Update(rating int, comment string) {
	r.Rating = rating
	r.Comment = comment
	r.UpdatedAt = time.Now().UTC()
}

// SoftDelete marks the review logically deleted.
func (r *Review) SoftDelete() {
	now := time.Now().UTC()
	r.DeletedAt = &now
	r.UpdatedAt = now
}

// Validate enforces the rating range and identity presence.
func (r *Review) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.CourseID, validation.Required),
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.Comment, validation.Length(0, 4000)),
	)
	if err != nil {
		return NewInvalidState("review", "rating must be between 1 and 5: "+err.Error())
	}
	return nil
}
