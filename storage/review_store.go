package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// ReviewStore executes relational reads and writes for the Review aggregate.
type ReviewStore struct {
	db *bun.DB
}

// NewReviewStore returns a store over the given database.
func NewReviewStore(db *bun.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// Upsert inserts or replaces the review row by primary key.
func (s *ReviewStore) Upsert(ctx context.Context, row *ReviewRow) error {
	_, err := s.db.NewInsert().Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("rating = EXCLUDED.rating").
		Set("comment = EXCLUDED.comment").
		Set("updated_at = EXCLUDED.updated_at").
		Set("deleted_at = EXCLUDED.deleted_at").
		Exec(ctx)
	return err
}

// ByID loads one review, or (nil, nil) when absent or deleted.
func (s *ReviewStore) ByID(ctx context.Context, id string) (*ReviewRow, error) {
	row := new(ReviewRow)
	err := s.db.NewSelect().Model(row).
		Where("review.id = ?", id).
		Where("review.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ByUserAndCourse loads the one non-deleted review for the pair, or (nil, nil).
func (s *ReviewStore) ByUserAndCourse(ctx context.Context, userID, courseID string) (*ReviewRow, error) {
	row := new(ReviewRow)
	err := s.db.NewSelect().Model(row).
		Where("review.user_id = ?", userID).
		Where("review.course_id = ?", courseID).
		Where("review.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ByCourse returns one page of a course's reviews at or above minRating,
// plus the total count. minRating 0 disables the floor.
func (s *ReviewStore) ByCourse(ctx context.Context, courseID string, minRating int, pr PageRequest) ([]*ReviewRow, int, error) {
	var rows []*ReviewRow
	q := s.db.NewSelect().Model(&rows).
		Where("review.course_id = ?", courseID).
		Where("review.deleted_at IS NULL")
	if minRating > 0 {
		q = q.Where("review.rating >= ?", minRating)
	}
	total, err := q.
		OrderExpr("review.? ?", bun.Ident(pr.SortField), bun.Safe(pr.SortDir)).
		Limit(pr.Limit).
		Offset(pr.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
