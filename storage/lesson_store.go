package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// LessonStore executes relational reads and writes for the Lesson aggregate.
// Lessons own nothing, so the upsert has no cascade.
type LessonStore struct {
	db *bun.DB
}

// NewLessonStore returns a store over the given database.
func NewLessonStore(db *bun.DB) *LessonStore {
	return &LessonStore{db: db}
}

// Upsert inserts or replaces the lesson row by primary key.
func (s *LessonStore) Upsert(ctx context.Context, row *LessonRow) error {
	_, err := s.db.NewInsert().Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("section_id = EXCLUDED.section_id").
		Set("title = EXCLUDED.title").
		Set("content = EXCLUDED.content").
		Set("duration = EXCLUDED.duration").
		Set("updated_at = EXCLUDED.updated_at").
		Set("deleted_at = EXCLUDED.deleted_at").
		Exec(ctx)
	return err
}

// ByID loads one lesson, or (nil, nil) when absent or deleted.
func (s *LessonStore) ByID(ctx context.Context, id string) (*LessonRow, error) {
	row := new(LessonRow)
	err := s.db.NewSelect().Model(row).
		Where("lesson.id = ?", id).
		Where("lesson.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// BySection loads every non-deleted lesson of a section in creation order.
func (s *LessonStore) BySection(ctx context.Context, sectionID string) ([]*LessonRow, error) {
	var rows []*LessonRow
	err := s.db.NewSelect().Model(&rows).
		Where("lesson.section_id = ?", sectionID).
		Where("lesson.deleted_at IS NULL").
		Order("lesson.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
