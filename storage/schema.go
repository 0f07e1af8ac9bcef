package storage

import (
	"context"

	"github.com/uptrace/bun"
)

// CreateTables creates every catalog table if absent. Used by tests,
// examples, and fresh single-node deployments; production schemas are
// expected to be migrated out of band.
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*CourseRow)(nil),
		(*SectionRow)(nil),
		(*LessonRow)(nil),
		(*QuizRow)(nil),
		(*EnrollmentRow)(nil),
		(*ReviewRow)(nil),
		(*ProgressRow)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
