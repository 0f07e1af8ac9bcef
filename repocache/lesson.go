package repocache

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/storage"
)

const (
	entityLesson = "lesson"
	nsLessons    = "lessons"
)

// LessonStore is the durable-store contract the lesson repository consumes.
// *storage.LessonStore satisfies it.
type LessonStore interface {
	Upsert(ctx context.Context, row *storage.LessonRow) error
	ByID(ctx context.Context, id string) (*storage.LessonRow, error)
	BySection(ctx context.Context, sectionID string) ([]*storage.LessonRow, error)
}

// SectionOwnerResolver resolves the course a section belongs to without
// loading the section graph. *storage.SectionStore satisfies it.
type SectionOwnerResolver interface {
	CourseIDOf(ctx context.Context, id string) (string, error)
}

// LessonRepository is the single access path for Lesson aggregates. A
// lesson is cached twice over: inside its section's row tree and inside
// the grandparent course's, so writes walk both ancestors when computing
// the invalidation set.
type LessonRepository struct {
	store    LessonStore
	sections SectionOwnerResolver
	courses  CourseTitleResolver
	deps     Deps
	inv      invalidator
	log      *slog.Logger
}

// NewLessonRepository wires the repository with the two ancestor resolvers.
func NewLessonRepository(store LessonStore, sections SectionOwnerResolver, courses CourseTitleResolver, deps Deps) *LessonRepository {
	deps = deps.normalize()
	log := deps.Logger.With("component", "repocache.lesson")
	return &LessonRepository{
		store:    store,
		sections: sections,
		courses:  courses,
		deps:     deps,
		inv:      invalidator{gw: deps.Cache, log: log},
		log:      log,
	}
}

// FindByID returns the lesson, or (nil, nil) when absent or deleted.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*catalog.Lesson, error) {
	ctx, end := r.deps.Observer.Span(ctx, "LessonRepository.FindByID")
	defer end()

	row, err := readThrough(ctx, r.deps, r.log, entityLesson, cache.IDKey(entityLesson, id), func(ctx context.Context) (*storage.LessonRow, error) {
		return r.store.ByID(ctx, id)
	})
	if err != nil || row == nil {
		return nil, err
	}
	lesson, err := storage.LessonToDomain(row)
	if err != nil {
		return nil, catalog.NewInfrastructure(entityLesson, "map", err)
	}
	return lesson, nil
}

// FindBySection returns every lesson of a section in creation order.
func (r *LessonRepository) FindBySection(ctx context.Context, sectionID string) ([]*catalog.Lesson, error) {
	ctx, end := r.deps.Observer.Span(ctx, "LessonRepository.FindBySection")
	defer end()

	key := cache.ListNamespace(nsLessons, "section", sectionID)
	rows, err := listThrough(ctx, r.deps, r.log, entityLesson, key, func(ctx context.Context) ([]*storage.LessonRow, error) {
		return r.store.BySection(ctx, sectionID)
	})
	if err != nil {
		return nil, err
	}
	return mapRows(entityLesson, rows, storage.LessonToDomain)
}

// Save creates a lesson.
func (r *LessonRepository) Save(ctx context.Context, lesson *catalog.Lesson) error {
	ctx, end := r.deps.Observer.Span(ctx, "LessonRepository.Save")
	defer end()
	return r.write(ctx, lesson, "INSERT")
}

// Update rewrites the lesson in full.
func (r *LessonRepository) Update(ctx context.Context, lesson *catalog.Lesson) error {
	ctx, end := r.deps.Observer.Span(ctx, "LessonRepository.Update")
	defer end()
	return r.write(ctx, lesson, "UPDATE")
}

// Delete marks the lesson logically deleted.
func (r *LessonRepository) Delete(ctx context.Context, lesson *catalog.Lesson) error {
	ctx, end := r.deps.Observer.Span(ctx, "LessonRepository.Delete")
	defer end()
	lesson.SoftDelete()
	return r.write(ctx, lesson, "DELETE")
}

// write upserts the row, then invalidates the lesson's own key, the
// section-scoped lesson listing, the parent section's key and listing, and
// the grandparent course's keys and listing namespace. A section row that
// has already been purged resolves to an empty course id; the course-level
// entries are simply skipped then.
func (r *LessonRepository) write(ctx context.Context, lesson *catalog.Lesson, op string) error {
	if lesson.ID == "" || lesson.SectionID == "" {
		return catalog.NewInvalidState(entityLesson, "id and section id are required")
	}
	row, err := storage.LessonToRow(lesson)
	if err != nil {
		return catalog.NewInfrastructure(entityLesson, "map", err)
	}
	courseID, err := r.sections.CourseIDOf(ctx, lesson.SectionID)
	if err != nil {
		return catalog.NewInfrastructure(entityLesson, "query", err)
	}

	keys := []string{
		cache.IDKey(entityLesson, lesson.ID),
		cache.IDKey(entitySection, lesson.SectionID),
	}
	prefixes := []string{
		cache.ListNamespace(nsLessons, "section", lesson.SectionID),
	}
	if courseID != "" {
		title, err := r.courses.TitleOf(ctx, courseID)
		if err != nil {
			return catalog.NewInfrastructure(entityLesson, "query", err)
		}
		keys = append(keys, courseAggregateKeys(courseID, title)...)
		prefixes = append(prefixes,
			cache.ListNamespace(nsSections, "course", courseID),
			nsCourses+cache.KeySeparator,
		)
	}
	return writeThrough(ctx, r.deps, r.inv, entityLesson, op, func(ctx context.Context) error {
		return r.store.Upsert(ctx, row)
	}, keys, prefixes)
}
