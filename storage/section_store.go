package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// SectionStore executes relational reads and writes for the Section
// aggregate (a section plus its owned lessons).
type SectionStore struct {
	db *bun.DB
}

// NewSectionStore returns a store over the given database.
func NewSectionStore(db *bun.DB) *SectionStore {
	return &SectionStore{db: db}
}

// Upsert writes the section with full-replace semantics, replacing its
// owned lessons wholesale.
func (s *SectionStore) Upsert(ctx context.Context, row *SectionRow) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).
			On("CONFLICT (id) DO UPDATE").
			Set("course_id = EXCLUDED.course_id").
			Set("title = EXCLUDED.title").
			Set("updated_at = EXCLUDED.updated_at").
			Set("deleted_at = EXCLUDED.deleted_at").
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*LessonRow)(nil)).
			Where("section_id = ?", row.ID).Exec(ctx); err != nil {
			return err
		}
		if len(row.Lessons) > 0 {
			if _, err := tx.NewInsert().Model(&row.Lessons).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// ByID loads one section with its lessons, or (nil, nil) when absent.
func (s *SectionStore) ByID(ctx context.Context, id string) (*SectionRow, error) {
	row := new(SectionRow)
	err := s.db.NewSelect().Model(row).
		Where("section.id = ?", id).
		Where("section.deleted_at IS NULL").
		Relation("Lessons", activeOrdered).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ByCourse loads every non-deleted section of a course, lessons included,
// in creation order.
func (s *SectionStore) ByCourse(ctx context.Context, courseID string) ([]*SectionRow, error) {
	var rows []*SectionRow
	err := s.db.NewSelect().Model(&rows).
		Where("section.course_id = ?", courseID).
		Where("section.deleted_at IS NULL").
		Relation("Lessons", activeOrdered).
		Order("section.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CourseIDOf resolves the owning course id for one section, deleted or not.
// Invalidation sets for lesson writes need the grandparent id without
// loading the section graph.
func (s *SectionStore) CourseIDOf(ctx context.Context, id string) (string, error) {
	var courseID string
	err := s.db.NewSelect().Model((*SectionRow)(nil)).
		Column("course_id").
		Where("id = ?", id).
		Scan(ctx, &courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return courseID, nil
}
