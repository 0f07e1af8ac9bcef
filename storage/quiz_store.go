package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// QuizStore executes relational reads and writes for the Quiz aggregate.
// Questions travel inside the row as one serialized column, so the upsert
// has no cascade.
type QuizStore struct {
	db *bun.DB
}

// NewQuizStore returns a store over the given database.
func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

// Upsert inserts or replaces the quiz row by primary key.
func (s *QuizStore) Upsert(ctx context.Context, row *QuizRow) error {
	_, err := s.db.NewInsert().Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("course_id = EXCLUDED.course_id").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("time_limit = EXCLUDED.time_limit").
		Set("passing_score = EXCLUDED.passing_score").
		Set("questions = EXCLUDED.questions").
		Set("updated_at = EXCLUDED.updated_at").
		Set("deleted_at = EXCLUDED.deleted_at").
		Exec(ctx)
	return err
}

// ByID loads one quiz, or (nil, nil) when absent or deleted.
func (s *QuizStore) ByID(ctx context.Context, id string) (*QuizRow, error) {
	row := new(QuizRow)
	err := s.db.NewSelect().Model(row).
		Where("quiz.id = ?", id).
		Where("quiz.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ByCourse loads every non-deleted quiz of a course in creation order.
func (s *QuizStore) ByCourse(ctx context.Context, courseID string) ([]*QuizRow, error) {
	var rows []*QuizRow
	err := s.db.NewSelect().Model(&rows).
		Where("quiz.course_id = ?", courseID).
		Where("quiz.deleted_at IS NULL").
		Order("quiz.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
