package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// CourseStore executes relational reads and writes for the Course aggregate.
// It owns no caching logic; every read implicitly filters logically deleted
// rows and loads the whole owned graph in one fetch.
type CourseStore struct {
	db *bun.DB
}

// NewCourseStore returns a store over the given database.
func NewCourseStore(db *bun.DB) *CourseStore {
	return &CourseStore{db: db}
}

// activeOrdered filters soft-deleted children and preserves creation order.
func activeOrdered(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("deleted_at IS NULL").Order("created_at ASC")
}

func courseGraph(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Sections", activeOrdered).
		Relation("Sections.Lessons", activeOrdered).
		Relation("Quizzes", activeOrdered)
}

// Upsert writes the aggregate with full-replace semantics: the root row is
// inserted or replaced by primary key, and the owned children are replaced
// wholesale rather than diffed. The cascade stays inside one transaction;
// nothing outside this aggregate is touched.
func (s *CourseStore) Upsert(ctx context.Context, row *CourseRow) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).
			On("CONFLICT (id) DO UPDATE").
			Set("title = EXCLUDED.title").
			Set("description = EXCLUDED.description").
			Set("instructor_id = EXCLUDED.instructor_id").
			Set("updated_at = EXCLUDED.updated_at").
			Set("deleted_at = EXCLUDED.deleted_at").
			Exec(ctx); err != nil {
			return err
		}

		sectionIDs := tx.NewSelect().Model((*SectionRow)(nil)).
			Column("id").Where("course_id = ?", row.ID)
		if _, err := tx.NewDelete().Model((*LessonRow)(nil)).
			Where("section_id IN (?)", sectionIDs).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*SectionRow)(nil)).
			Where("course_id = ?", row.ID).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*QuizRow)(nil)).
			Where("course_id = ?", row.ID).Exec(ctx); err != nil {
			return err
		}

		if len(row.Sections) > 0 {
			if _, err := tx.NewInsert().Model(&row.Sections).Exec(ctx); err != nil {
				return err
			}
			var lessons []*LessonRow
			for _, section := range row.Sections {
				lessons = append(lessons, section.Lessons...)
			}
			if len(lessons) > 0 {
				if _, err := tx.NewInsert().Model(&lessons).Exec(ctx); err != nil {
					return err
				}
			}
		}
		if len(row.Quizzes) > 0 {
			if _, err := tx.NewInsert().Model(&row.Quizzes).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// ByID loads one course row tree, or (nil, nil) when absent or deleted.
func (s *CourseStore) ByID(ctx context.Context, id string) (*CourseRow, error) {
	row := new(CourseRow)
	err := courseGraph(s.db.NewSelect().Model(row).
		Where("course.id = ?", id).
		Where("course.deleted_at IS NULL")).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ByTitle loads one course row tree by its unique title.
func (s *CourseStore) ByTitle(ctx context.Context, title string) (*CourseRow, error) {
	row := new(CourseRow)
	err := courseGraph(s.db.NewSelect().Model(row).
		Where("course.title = ?", title).
		Where("course.deleted_at IS NULL")).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// TitleOf resolves just the title column for one course id, deleted or not.
// Invalidation-set computation needs the persisted title without paying for
// the whole aggregate graph.
func (s *CourseStore) TitleOf(ctx context.Context, id string) (string, error) {
	var title string
	err := s.db.NewSelect().Model((*CourseRow)(nil)).
		Column("title").
		Where("id = ?", id).
		Scan(ctx, &title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return title, nil
}

// All returns one page of non-deleted courses plus the total count.
func (s *CourseStore) All(ctx context.Context, pr PageRequest) ([]*CourseRow, int, error) {
	var rows []*CourseRow
	total, err := courseGraph(s.db.NewSelect().Model(&rows).
		Where("course.deleted_at IS NULL")).
		OrderExpr("course.? ?", bun.Ident(pr.SortField), bun.Safe(pr.SortDir)).
		Limit(pr.Limit).
		Offset(pr.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ByInstructor returns one page of an instructor's courses plus the total.
func (s *CourseStore) ByInstructor(ctx context.Context, instructorID string, pr PageRequest) ([]*CourseRow, int, error) {
	var rows []*CourseRow
	total, err := courseGraph(s.db.NewSelect().Model(&rows).
		Where("course.deleted_at IS NULL").
		Where("course.instructor_id = ?", instructorID)).
		OrderExpr("course.? ?", bun.Ident(pr.SortField), bun.Safe(pr.SortDir)).
		Limit(pr.Limit).
		Offset(pr.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ByEnrolledUser returns one page of the courses a user is enrolled in.
func (s *CourseStore) ByEnrolledUser(ctx context.Context, userID string, pr PageRequest) ([]*CourseRow, int, error) {
	var rows []*CourseRow
	total, err := courseGraph(s.db.NewSelect().Model(&rows).
		Join("INNER JOIN enrollments AS enrollment ON enrollment.course_id = course.id").
		Where("course.deleted_at IS NULL").
		Where("enrollment.deleted_at IS NULL").
		Where("enrollment.user_id = ?", userID)).
		OrderExpr("course.? ?", bun.Ident(pr.SortField), bun.Safe(pr.SortDir)).
		Limit(pr.Limit).
		Offset(pr.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
