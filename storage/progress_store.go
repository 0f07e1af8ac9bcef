package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// ProgressStore executes relational reads and writes for Progress entries.
type ProgressStore struct {
	db *bun.DB
}

// NewProgressStore returns a store over the given database.
func NewProgressStore(db *bun.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// Upsert inserts or replaces the progress row by primary key.
func (s *ProgressStore) Upsert(ctx context.Context, row *ProgressRow) error {
	_, err := s.db.NewInsert().Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("completed = EXCLUDED.completed").
		Set("completed_at = EXCLUDED.completed_at").
		Set("updated_at = EXCLUDED.updated_at").
		Set("deleted_at = EXCLUDED.deleted_at").
		Exec(ctx)
	return err
}

// ByID loads one progress entry, or (nil, nil) when absent or deleted.
func (s *ProgressStore) ByID(ctx context.Context, id string) (*ProgressRow, error) {
	row := new(ProgressRow)
	err := s.db.NewSelect().Model(row).
		Where("progress.id = ?", id).
		Where("progress.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ByEnrollmentAndLesson loads the one non-deleted entry for the pair, or
// (nil, nil).
func (s *ProgressStore) ByEnrollmentAndLesson(ctx context.Context, enrollmentID, lessonID string) (*ProgressRow, error) {
	row := new(ProgressRow)
	err := s.db.NewSelect().Model(row).
		Where("progress.enrollment_id = ?", enrollmentID).
		Where("progress.lesson_id = ?", lessonID).
		Where("progress.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ByEnrollment loads every non-deleted progress entry of an enrollment.
func (s *ProgressStore) ByEnrollment(ctx context.Context, enrollmentID string) ([]*ProgressRow, error) {
	var rows []*ProgressRow
	err := s.db.NewSelect().Model(&rows).
		Where("progress.enrollment_id = ?", enrollmentID).
		Where("progress.deleted_at IS NULL").
		Order("progress.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
