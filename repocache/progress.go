package repocache

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/storage"
)

const (
	entityProgress = "progress"
	nsProgress     = "progress"
)

// ProgressStore is the durable-store contract the progress repository
// consumes. *storage.ProgressStore satisfies it.
type ProgressStore interface {
	Upsert(ctx context.Context, row *storage.ProgressRow) error
	ByID(ctx context.Context, id string) (*storage.ProgressRow, error)
	ByEnrollmentAndLesson(ctx context.Context, enrollmentID, lessonID string) (*storage.ProgressRow, error)
	ByEnrollment(ctx context.Context, enrollmentID string) ([]*storage.ProgressRow, error)
}

// ProgressRepository is the single access path for per-lesson Progress
// entries.
type ProgressRepository struct {
	store ProgressStore
	deps  Deps
	inv   invalidator
	log   *slog.Logger
}

// NewProgressRepository wires the repository.
func NewProgressRepository(store ProgressStore, deps Deps) *ProgressRepository {
	deps = deps.normalize()
	log := deps.Logger.With("component", "repocache.progress")
	return &ProgressRepository{
		store: store,
		deps:  deps,
		inv:   invalidator{gw: deps.Cache, log: log},
		log:   log,
	}
}

// FindByID returns the progress entry, or (nil, nil) when absent or deleted.
func (r *ProgressRepository) FindByID(ctx context.Context, id string) (*catalog.Progress, error) {
	ctx, end := r.deps.Observer.Span(ctx, "ProgressRepository.FindByID")
	defer end()

	row, err := readThrough(ctx, r.deps, r.log, entityProgress, cache.IDKey(entityProgress, id), func(ctx context.Context) (*storage.ProgressRow, error) {
		return r.store.ByID(ctx, id)
	})
	if err != nil || row == nil {
		return nil, err
	}
	return r.toDomain(row)
}

// FindByEnrollmentAndLesson returns the one entry for the pair, or (nil, nil).
func (r *ProgressRepository) FindByEnrollmentAndLesson(ctx context.Context, enrollmentID, lessonID string) (*catalog.Progress, error) {
	ctx, end := r.deps.Observer.Span(ctx, "ProgressRepository.FindByEnrollmentAndLesson")
	defer end()

	key := cache.PairKey(entityProgress, "enrollment", enrollmentID, "lesson", lessonID)
	row, err := readThrough(ctx, r.deps, r.log, entityProgress, key, func(ctx context.Context) (*storage.ProgressRow, error) {
		return r.store.ByEnrollmentAndLesson(ctx, enrollmentID, lessonID)
	})
	if err != nil || row == nil {
		return nil, err
	}
	return r.toDomain(row)
}

// FindByEnrollment returns every progress entry of an enrollment in
// creation order.
func (r *ProgressRepository) FindByEnrollment(ctx context.Context, enrollmentID string) ([]*catalog.Progress, error) {
	ctx, end := r.deps.Observer.Span(ctx, "ProgressRepository.FindByEnrollment")
	defer end()

	key := cache.ListNamespace(nsProgress, "enrollment", enrollmentID)
	rows, err := listThrough(ctx, r.deps, r.log, entityProgress, key, func(ctx context.Context) ([]*storage.ProgressRow, error) {
		return r.store.ByEnrollment(ctx, enrollmentID)
	})
	if err != nil {
		return nil, err
	}
	return mapRows(entityProgress, rows, storage.ProgressToDomain)
}

// Save creates a progress entry. One entry per enrollment/lesson pair; a
// second attempt fails with an already-exists error before any store write.
func (r *ProgressRepository) Save(ctx context.Context, p *catalog.Progress) error {
	ctx, end := r.deps.Observer.Span(ctx, "ProgressRepository.Save")
	defer end()

	if p.ID == "" || p.EnrollmentID == "" || p.LessonID == "" {
		return catalog.NewInvalidState(entityProgress, "id, enrollment id and lesson id are required")
	}
	existing, err := r.store.ByEnrollmentAndLesson(ctx, p.EnrollmentID, p.LessonID)
	if err != nil {
		return catalog.NewInfrastructure(entityProgress, "query", err)
	}
	if existing != nil && existing.ID != p.ID {
		return catalog.NewAlreadyExists(entityProgress, p.EnrollmentID+"/"+p.LessonID)
	}
	return r.write(ctx, p, "INSERT")
}

// Update rewrites the progress entry in full.
func (r *ProgressRepository) Update(ctx context.Context, p *catalog.Progress) error {
	ctx, end := r.deps.Observer.Span(ctx, "ProgressRepository.Update")
	defer end()
	return r.write(ctx, p, "UPDATE")
}

// Delete marks the progress entry logically deleted.
func (r *ProgressRepository) Delete(ctx context.Context, p *catalog.Progress) error {
	ctx, end := r.deps.Observer.Span(ctx, "ProgressRepository.Delete")
	defer end()
	p.SoftDelete()
	return r.write(ctx, p, "DELETE")
}

// write upserts the row, then invalidates the id key, the
// enrollment/lesson pair key, and the enrollment-scoped listing.
func (r *ProgressRepository) write(ctx context.Context, p *catalog.Progress, op string) error {
	row, err := storage.ProgressToRow(p)
	if err != nil {
		return catalog.NewInfrastructure(entityProgress, "map", err)
	}
	keys := []string{
		cache.IDKey(entityProgress, p.ID),
		cache.PairKey(entityProgress, "enrollment", p.EnrollmentID, "lesson", p.LessonID),
	}
	prefixes := []string{
		cache.ListNamespace(nsProgress, "enrollment", p.EnrollmentID),
	}
	return writeThrough(ctx, r.deps, r.inv, entityProgress, op, func(ctx context.Context) error {
		return r.store.Upsert(ctx, row)
	}, keys, prefixes)
}

func (r *ProgressRepository) toDomain(row *storage.ProgressRow) (*catalog.Progress, error) {
	p, err := storage.ProgressToDomain(row)
	if err != nil {
		return nil, catalog.NewInfrastructure(entityProgress, "map", err)
	}
	return p, nil
}
