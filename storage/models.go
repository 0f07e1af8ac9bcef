// Package storage owns the relational side of the persistence layer: the
// flat row trees each aggregate is stored as, the pure mappers between rows
// and domain aggregates, and the per-aggregate store gateways over bun.
//
// Rows are what gets cached, not domain aggregates: the cache stores the
// encoded row tree, and readers run it back through the mapper. That keeps
// the mapper the single place where aggregate-boundary rules live.
package storage

import (
	"time"

	"github.com/uptrace/bun"
)

// CourseRow is the storage shape of a Course aggregate root. Sections and
// Quizzes are owned children loaded in the same fetch; soft-deleted rows are
// filtered out of every default read.
type CourseRow struct {
	bun.BaseModel `bun:"table:courses,alias:course" msgpack:"-"`

	ID           string     `bun:"id,pk" msgpack:"id"`
	Title        string     `bun:"title,notnull,unique" msgpack:"title"`
	Description  string     `bun:"description" msgpack:"description"`
	InstructorID string     `bun:"instructor_id,notnull" msgpack:"instructor_id"`
	CreatedAt    time.Time  `bun:"created_at,notnull" msgpack:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull" msgpack:"updated_at"`
	DeletedAt    *time.Time `bun:"deleted_at" msgpack:"deleted_at"`

	Sections []*SectionRow `bun:"rel:has-many,join:id=course_id" msgpack:"sections"`
	Quizzes  []*QuizRow    `bun:"rel:has-many,join:id=course_id" msgpack:"quizzes"`
}

// SectionRow is the storage shape of a Section. The course back-reference is
// a scalar foreign key, never a pointer, so the row tree stays acyclic.
type SectionRow struct {
	bun.BaseModel `bun:"table:sections,alias:section" msgpack:"-"`

	ID        string     `bun:"id,pk" msgpack:"id"`
	CourseID  string     `bun:"course_id,notnull" msgpack:"course_id"`
	Title     string     `bun:"title,notnull" msgpack:"title"`
	CreatedAt time.Time  `bun:"created_at,notnull" msgpack:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,notnull" msgpack:"updated_at"`
	DeletedAt *time.Time `bun:"deleted_at" msgpack:"deleted_at"`

	Lessons []*LessonRow `bun:"rel:has-many,join:id=section_id" msgpack:"lessons"`
}

// LessonRow is the storage shape of a Lesson.
type LessonRow struct {
	bun.BaseModel `bun:"table:lessons,alias:lesson" msgpack:"-"`

	ID        string     `bun:"id,pk" msgpack:"id"`
	SectionID string     `bun:"section_id,notnull" msgpack:"section_id"`
	Title     string     `bun:"title,notnull" msgpack:"title"`
	Content   string     `bun:"content" msgpack:"content"`
	Duration  int        `bun:"duration" msgpack:"duration"`
	CreatedAt time.Time  `bun:"created_at,notnull" msgpack:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,notnull" msgpack:"updated_at"`
	DeletedAt *time.Time `bun:"deleted_at" msgpack:"deleted_at"`
}

// QuizRow is the storage shape of a Quiz. Questions are owned values with no
// lifecycle of their own, persisted as one serialized column.
type QuizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:quiz" msgpack:"-"`

	ID           string     `bun:"id,pk" msgpack:"id"`
	CourseID     string     `bun:"course_id,notnull" msgpack:"course_id"`
	Title        string     `bun:"title,notnull" msgpack:"title"`
	Description  string     `bun:"description" msgpack:"description"`
	TimeLimit    int        `bun:"time_limit" msgpack:"time_limit"`
	PassingScore int        `bun:"passing_score" msgpack:"passing_score"`
	Questions    []byte     `bun:"questions,type:blob" msgpack:"questions"`
	CreatedAt    time.Time  `bun:"created_at,notnull" msgpack:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull" msgpack:"updated_at"`
	DeletedAt    *time.Time `bun:"deleted_at" msgpack:"deleted_at"`
}

// EnrollmentRow is the storage shape of an Enrollment.
type EnrollmentRow struct {
	bun.BaseModel `bun:"table:enrollments,alias:enrollment" msgpack:"-"`

	ID          string     `bun:"id,pk" msgpack:"id"`
	UserID      string     `bun:"user_id,notnull" msgpack:"user_id"`
	CourseID    string     `bun:"course_id,notnull" msgpack:"course_id"`
	Status      string     `bun:"status,notnull" msgpack:"status"`
	Progress    float64    `bun:"progress,notnull,default:0" msgpack:"progress"`
	EnrolledAt  time.Time  `bun:"enrolled_at,notnull" msgpack:"enrolled_at"`
	CompletedAt *time.Time `bun:"completed_at" msgpack:"completed_at"`
	CreatedAt   time.Time  `bun:"created_at,notnull" msgpack:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" msgpack:"updated_at"`
	DeletedAt   *time.Time `bun:"deleted_at" msgpack:"deleted_at"`
}

// ReviewRow is the storage shape of a Review.
type ReviewRow struct {
	bun.BaseModel `bun:"table:reviews,alias:review" msgpack:"-"`

	ID        string     `bun:"id,pk" msgpack:"id"`
	UserID    string     `bun:"user_id,notnull" msgpack:"user_id"`
	CourseID  string     `bun:"course_id,notnull" msgpack:"course_id"`
	Rating    int        `bun:"rating,notnull" msgpack:"rating"`
	Comment   string     `bun:"comment" msgpack:"comment"`
	CreatedAt time.Time  `bun:"created_at,notnull" msgpack:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,notnull" msgpack:"updated_at"`
	DeletedAt *time.Time `bun:"deleted_at" msgpack:"deleted_at"`
}

// ProgressRow is the storage shape of a Progress entry.
type ProgressRow struct {
	bun.BaseModel `bun:"table:progress,alias:progress" msgpack:"-"`

	ID           string     `bun:"id,pk" msgpack:"id"`
	EnrollmentID string     `bun:"enrollment_id,notnull" msgpack:"enrollment_id"`
	LessonID     string     `bun:"lesson_id,notnull" msgpack:"lesson_id"`
	Completed    bool       `bun:"completed,notnull,default:false" msgpack:"completed"`
	CompletedAt  *time.Time `bun:"completed_at" msgpack:"completed_at"`
	CreatedAt    time.Time  `bun:"created_at,notnull" msgpack:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull" msgpack:"updated_at"`
	DeletedAt    *time.Time `bun:"deleted_at" msgpack:"deleted_at"`
}

// PageEnvelope is the cached value for one page of a listing: the row trees
// plus the total count for the whole filter scope.
type PageEnvelope[R any] struct {
	Rows  []R `msgpack:"rows"`
	Total int `msgpack:"total"`
}
