package repocache

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/storage"
)

const (
	entitySection = "section"
	nsSections    = "sections"
)

// SectionStore is the durable-store contract the section repository
// consumes. *storage.SectionStore satisfies it.
type SectionStore interface {
	Upsert(ctx context.Context, row *storage.SectionRow) error
	ByID(ctx context.Context, id string) (*storage.SectionRow, error)
	ByCourse(ctx context.Context, courseID string) ([]*storage.SectionRow, error)
	CourseIDOf(ctx context.Context, id string) (string, error)
}

// SectionRepository is the single access path for Section aggregates.
// Because the parent course caches its sections inside its own row tree,
// every section write also invalidates the parent's entries; otherwise a
// course read could serve a stale copy of the section for a full TTL.
type SectionRepository struct {
	store   SectionStore
	courses CourseTitleResolver
	deps    Deps
	inv     invalidator
	log     *slog.Logger
}

// NewSectionRepository wires the repository. The resolver is how writes
// discover the parent course's unique-title cache key.
func NewSectionRepository(store SectionStore, courses CourseTitleResolver, deps Deps) *SectionRepository {
	deps = deps.normalize()
	log := deps.Logger.With("component", "repocache.section")
	return &SectionRepository{
		store:   store,
		courses: courses,
		deps:    deps,
		inv:     invalidator{gw: deps.Cache, log: log},
		log:     log,
	}
}

// FindByID returns the section with its lessons, or (nil, nil) when absent
// or deleted.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*catalog.Section, error) {
	ctx, end := r.deps.Observer.Span(ctx, "SectionRepository.FindByID")
	defer end()

	row, err := readThrough(ctx, r.deps, r.log, entitySection, cache.IDKey(entitySection, id), func(ctx context.Context) (*storage.SectionRow, error) {
		return r.store.ByID(ctx, id)
	})
	if err != nil || row == nil {
		return nil, err
	}
	section, err := storage.SectionToDomain(row)
	if err != nil {
		return nil, catalog.NewInfrastructure(entitySection, "map", err)
	}
	return section, nil
}

// FindByCourse returns every section of a course in creation order. The
// whole collection is cached at one key under the course-scoped namespace,
// so a prefix delete on that namespace covers it.
func (r *SectionRepository) FindByCourse(ctx context.Context, courseID string) ([]*catalog.Section, error) {
	ctx, end := r.deps.Observer.Span(ctx, "SectionRepository.FindByCourse")
	defer end()

	key := cache.ListNamespace(nsSections, "course", courseID)
	rows, err := listThrough(ctx, r.deps, r.log, entitySection, key, func(ctx context.Context) ([]*storage.SectionRow, error) {
		return r.store.ByCourse(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return mapRows(entitySection, rows, storage.SectionToDomain)
}

// Save creates a section.
func (r *SectionRepository) Save(ctx context.Context, section *catalog.Section) error {
	ctx, end := r.deps.Observer.Span(ctx, "SectionRepository.Save")
	defer end()
	return r.write(ctx, section, "INSERT")
}

// Update rewrites the section and its lessons in full.
func (r *SectionRepository) Update(ctx context.Context, section *catalog.Section) error {
	ctx, end := r.deps.Observer.Span(ctx, "SectionRepository.Update")
	defer end()
	return r.write(ctx, section, "UPDATE")
}

// Delete marks the section logically deleted.
func (r *SectionRepository) Delete(ctx context.Context, section *catalog.Section) error {
	ctx, end := r.deps.Observer.Span(ctx, "SectionRepository.Delete")
	defer end()
	section.SoftDelete()
	return r.write(ctx, section, "DELETE")
}

// write upserts the row, then invalidates the section's own entries, the
// course-scoped section listing, the parent course's id and title keys,
// and the course-listing namespace.
func (r *SectionRepository) write(ctx context.Context, section *catalog.Section, op string) error {
	if section.ID == "" || section.CourseID == "" {
		return catalog.NewInvalidState(entitySection, "id and course id are required")
	}
	row, err := storage.SectionToRow(section)
	if err != nil {
		return catalog.NewInfrastructure(entitySection, "map", err)
	}
	title, err := r.courses.TitleOf(ctx, section.CourseID)
	if err != nil {
		return catalog.NewInfrastructure(entitySection, "query", err)
	}

	keys := append(
		[]string{cache.IDKey(entitySection, section.ID)},
		courseAggregateKeys(section.CourseID, title)...,
	)
	prefixes := []string{
		cache.ListNamespace(nsSections, "course", section.CourseID),
		nsCourses + cache.KeySeparator,
	}
	return writeThrough(ctx, r.deps, r.inv, entitySection, op, func(ctx context.Context) error {
		return r.store.Upsert(ctx, row)
	}, keys, prefixes)
}
