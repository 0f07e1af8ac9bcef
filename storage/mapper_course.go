package storage

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-course-catalog/catalog"
)

// The mappers are pure, bidirectional translations between domain aggregates
// and storage row trees. They do no I/O. The only error path is a
// malformed-input shape (a corrupted questions blob, a nil node), which is
// data corruption rather than an expected outcome.
//
// Round-trip law: CourseToRow(CourseToDomain(r)) equals r field for field,
// including empty (never nil) child collections.

// CourseToRow flattens a course aggregate into its storage row tree,
// carrying every owned child even when the child list is empty.
func CourseToRow(c *catalog.Course) (*CourseRow, error) {
	if c == nil {
		return nil, fmt.Errorf("course mapper: nil aggregate")
	}
	row := &CourseRow{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		InstructorID: c.InstructorID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		DeletedAt:    c.DeletedAt,
		Sections:     make([]*SectionRow, 0, len(c.Sections)),
		Quizzes:      make([]*QuizRow, 0, len(c.Quizzes)),
	}
	for _, s := range c.Sections {
		sr, err := SectionToRow(s)
		if err != nil {
			return nil, err
		}
		row.Sections = append(row.Sections, sr)
	}
	for _, q := range c.Quizzes {
		qr, err := QuizToRow(q)
		if err != nil {
			return nil, err
		}
		row.Quizzes = append(row.Quizzes, qr)
	}
	return row, nil
}

// CourseToDomain reconstructs the course aggregate from its row tree.
func CourseToDomain(row *CourseRow) (*catalog.Course, error) {
	if row == nil {
		return nil, fmt.Errorf("course mapper: nil row")
	}
	c := &catalog.Course{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		InstructorID: row.InstructorID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
		Sections:     make([]*catalog.Section, 0, len(row.Sections)),
		Quizzes:      make([]*catalog.Quiz, 0, len(row.Quizzes)),
	}
	for _, sr := range row.Sections {
		s, err := SectionToDomain(sr)
		if err != nil {
			return nil, err
		}
		c.Sections = append(c.Sections, s)
	}
	for _, qr := range row.Quizzes {
		q, err := QuizToDomain(qr)
		if err != nil {
			return nil, err
		}
		c.Quizzes = append(c.Quizzes, q)
	}
	return c, nil
}

// SectionToRow flattens a section and its lessons.
func SectionToRow(s *catalog.Section) (*SectionRow, error) {
	if s == nil {
		return nil, fmt.Errorf("section mapper: nil aggregate")
	}
	row := &SectionRow{
		ID:        s.ID,
		CourseID:  s.CourseID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		DeletedAt: s.DeletedAt,
		Lessons:   make([]*LessonRow, 0, len(s.Lessons)),
	}
	for _, l := range s.Lessons {
		lr, err := LessonToRow(l)
		if err != nil {
			return nil, err
		}
		row.Lessons = append(row.Lessons, lr)
	}
	return row, nil
}

// SectionToDomain reconstructs a section and its lessons.
func SectionToDomain(row *SectionRow) (*catalog.Section, error) {
	if row == nil {
		return nil, fmt.Errorf("section mapper: nil row")
	}
	s := &catalog.Section{
		ID:        row.ID,
		CourseID:  row.CourseID,
		Title:     row.Title,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		DeletedAt: row.DeletedAt,
		Lessons:   make([]*catalog.Lesson, 0, len(row.Lessons)),
	}
	for _, lr := range row.Lessons {
		l, err := LessonToDomain(lr)
		if err != nil {
			return nil, err
		}
		s.Lessons = append(s.Lessons, l)
	}
	return s, nil
}

// LessonToRow flattens a lesson.
func LessonToRow(l *catalog.Lesson) (*LessonRow, error) {
	if l == nil {
		return nil, fmt.Errorf("lesson mapper: nil aggregate")
	}
	return &LessonRow{
		ID:        l.ID,
		SectionID: l.SectionID,
		Title:     l.Title,
		Content:   l.Content,
		Duration:  l.Duration,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
		DeletedAt: l.DeletedAt,
	}, nil
}

// LessonToDomain reconstructs a lesson.
func LessonToDomain(row *LessonRow) (*catalog.Lesson, error) {
	if row == nil {
		return nil, fmt.Errorf("lesson mapper: nil row")
	}
	return &catalog.Lesson{
		ID:        row.ID,
		SectionID: row.SectionID,
		Title:     row.Title,
		Content:   row.Content,
		Duration:  row.Duration,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		DeletedAt: row.DeletedAt,
	}, nil
}

// QuizToRow flattens a quiz; the question list is serialized into a single
// owned column since questions have no lifecycle of their own.
func QuizToRow(q *catalog.Quiz) (*QuizRow, error) {
	if q == nil {
		return nil, fmt.Errorf("quiz mapper: nil aggregate")
	}
	questions := q.Questions
	if questions == nil {
		questions = []catalog.MCQQuestion{}
	}
	blob, err := msgpack.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("quiz mapper: encode questions: %w", err)
	}
	return &QuizRow{
		ID:           q.ID,
		CourseID:     q.CourseID,
		Title:        q.Title,
		Description:  q.Description,
		TimeLimit:    q.TimeLimit,
		PassingScore: q.PassingScore,
		Questions:    blob,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
		DeletedAt:    q.DeletedAt,
	}, nil
}

// QuizToDomain reconstructs a quiz, decoding the question column.
func QuizToDomain(row *QuizRow) (*catalog.Quiz, error) {
	if row == nil {
		return nil, fmt.Errorf("quiz mapper: nil row")
	}
	questions := []catalog.MCQQuestion{}
	if len(row.Questions) > 0 {
		if err := msgpack.Unmarshal(row.Questions, &questions); err != nil {
			return nil, fmt.Errorf("quiz mapper: decode questions: %w", err)
		}
	}
	return &catalog.Quiz{
		ID:           row.ID,
		CourseID:     row.CourseID,
		Title:        row.Title,
		Description:  row.Description,
		TimeLimit:    row.TimeLimit,
		PassingScore: row.PassingScore,
		Questions:    questions,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
	}, nil
}
