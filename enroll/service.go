// Package enroll implements the enrollment flow: verify the course, verify
// the user against the identity service, enforce one enrollment per
// user/course pair, persist, then announce.
package enroll

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/events"
	"github.com/goliatone/go-course-catalog/identity"
)

// Topic carries enrollment lifecycle events.
const Topic = "course-events"

// CourseReader is the slice of the course repository the flow needs.
type CourseReader interface {
	FindByID(ctx context.Context, id string) (*catalog.Course, error)
}

// EnrollmentWriter is the slice of the enrollment repository the flow needs.
// Save enforces the one-enrollment-per-pair invariant.
type EnrollmentWriter interface {
	Save(ctx context.Context, e *catalog.Enrollment) error
	Update(ctx context.Context, e *catalog.Enrollment) error
	FindByID(ctx context.Context, id string) (*catalog.Enrollment, error)
}

// Service runs the enrollment flow.
type Service struct {
	courses     CourseReader
	enrollments EnrollmentWriter
	users       identity.Client
	publisher   events.Publisher
	log         *slog.Logger
}

// NewService wires the flow from its collaborators.
func NewService(courses CourseReader, enrollments EnrollmentWriter, users identity.Client, publisher events.Publisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if users == nil {
		users = identity.Disabled{}
	}
	return &Service{
		courses:     courses,
		enrollments: enrollments,
		users:       users,
		publisher:   publisher,
		log:         log.With("component", "enroll"),
	}
}

// Enroll enrolls a user in a course. The USER_ENROLLED event fires only
// after the enrollment is committed; a publish failure is logged and does
// not undo the enrollment.
func (s *Service) Enroll(ctx context.Context, userID, courseID string) (*catalog.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, catalog.NewNotFound("course", courseID)
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollment := catalog.NewEnrollment(userID, courseID)
	if err := s.enrollments.Save(ctx, enrollment); err != nil {
		return nil, err
	}

	s.announce(ctx, events.Event{
		Name: events.UserEnrolled,
		Payload: map[string]any{
			"enrollmentId": enrollment.ID,
			"userId":       user.ID,
			"userEmail":    user.Email,
			"courseId":     course.ID,
			"courseTitle":  course.Title,
		},
	})
	return enrollment, nil
}

// Complete marks an enrollment completed and announces it.
func (s *Service) Complete(ctx context.Context, enrollmentID string) (*catalog.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, catalog.NewNotFound("enrollment", enrollmentID)
	}
	enrollment.UpdateStatus(catalog.EnrollmentCompleted)
	if err := s.enrollments.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	s.announce(ctx, events.Event{
		Name: events.CourseCompleted,
		Payload: map[string]any{
			"enrollmentId": enrollment.ID,
			"userId":       enrollment.UserID,
			"courseId":     enrollment.CourseID,
		},
	})
	return enrollment, nil
}

func (s *Service) announce(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, Topic, event); err != nil {
		s.log.Warn("event publish failed", "event", event.Name, "error", err)
		return
	}
	s.log.Debug("event published", "event", event.Name)
}
