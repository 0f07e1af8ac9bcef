// Package testsupport provides canned aggregates and recording fakes shared
// by the package tests.
package testsupport

import (
	"github.com/goliatone/go-course-catalog/catalog"
)

// SeedCourse returns a fully populated course aggregate: two sections with
// lessons plus one quiz.
func SeedCourse() *catalog.Course {
	course := catalog.NewCourse("Go Fundamentals", "A tour of the language", "instructor-1")

	s1 := catalog.NewSection(course.ID, "Getting Started")
	s1.AddLesson(catalog.NewLesson(s1.ID, "Installing Go", "Download and install the toolchain.", 10))
	s1.AddLesson(catalog.NewLesson(s1.ID, "Hello, World", "Your first program.", 15))

	s2 := catalog.NewSection(course.ID, "Types and Functions")
	s2.AddLesson(catalog.NewLesson(s2.ID, "Structs", "Defining and composing structs.", 20))

	course.AddSection(s1)
	course.AddSection(s2)

	course.AddQuiz(catalog.NewQuiz(course.ID, "Basics Quiz", "Checkpoint for the first sections", 30, 70, []catalog.MCQQuestion{
		{
			ID:            "q-1",
			Question:      "Which keyword declares a variable?",
			Options:       []string{"var", "let", "def"},
			CorrectAnswer: 0,
		},
	}))
	return course
}

// SeedEnrollment returns an active enrollment for the pair.
func SeedEnrollment(userID, courseID string) *catalog.Enrollment {
	return catalog.NewEnrollment(userID, courseID)
}

// SeedReview returns a five-star review for the pair.
func SeedReview(userID, courseID string) *catalog.Review {
	return catalog.NewReview(userID, courseID, 5, "excellent")
}

// SeedProgress returns an incomplete progress entry for the pair.
func SeedProgress(enrollmentID, lessonID string) *catalog.Progress {
	return catalog.NewProgress(enrollmentID, lessonID)
}
