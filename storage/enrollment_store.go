package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// EnrollmentStore executes relational reads and writes for the Enrollment
// aggregate.
type EnrollmentStore struct {
	db *bun.DB
}

// NewEnrollmentStore returns a store over the given database.
func NewEnrollmentStore(db *bun.DB) *EnrollmentStore {
	return &EnrollmentStore{db: db}
}

// Upsert inserts or replaces the enrollment row by primary key.
func (s *EnrollmentStore) Upsert(ctx context.Context, row *EnrollmentRow) error {
	_, err := s.db.NewInsert().Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("progress = EXCLUDED.progress").
		Set("completed_at = EXCLUDED.completed_at").
		Set("updated_at = EXCLUDED.updated_at").
		Set("deleted_at = EXCLUDED.deleted_at").
		Exec(ctx)
	return err
}

// ByID loads one enrollment, or (nil, nil) when absent or deleted.
func (s *EnrollmentStore) ByID(ctx context.Context, id string) (*EnrollmentRow, error) {
	row := new(EnrollmentRow)
	err := s.db.NewSelect().Model(row).
		Where("enrollment.id = ?", id).
		Where("enrollment.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ByUserAndCourse loads the one non-deleted enrollment for the pair, or
// (nil, nil). At most one such row exists; the repository enforces the
// invariant on create.
func (s *EnrollmentStore) ByUserAndCourse(ctx context.Context, userID, courseID string) (*EnrollmentRow, error) {
	row := new(EnrollmentRow)
	err := s.db.NewSelect().Model(row).
		Where("enrollment.user_id = ?", userID).
		Where("enrollment.course_id = ?", courseID).
		Where("enrollment.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ByUser returns one page of a user's enrollments plus the total count.
func (s *EnrollmentStore) ByUser(ctx context.Context, userID string, pr PageRequest) ([]*EnrollmentRow, int, error) {
	var rows []*EnrollmentRow
	total, err := s.db.NewSelect().Model(&rows).
		Where("enrollment.user_id = ?", userID).
		Where("enrollment.deleted_at IS NULL").
		OrderExpr("enrollment.? ?", bun.Ident(pr.SortField), bun.Safe(pr.SortDir)).
		Limit(pr.Limit).
		Offset(pr.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ByCourse returns one page of a course's enrollments plus the total count.
func (s *EnrollmentStore) ByCourse(ctx context.Context, courseID string, pr PageRequest) ([]*EnrollmentRow, int, error) {
	var rows []*EnrollmentRow
	total, err := s.db.NewSelect().Model(&rows).
		Where("enrollment.course_id = ?", courseID).
		Where("enrollment.deleted_at IS NULL").
		OrderExpr("enrollment.? ?", bun.Ident(pr.SortField), bun.Safe(pr.SortDir)).
		Limit(pr.Limit).
		Offset(pr.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
