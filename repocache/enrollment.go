package repocache

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/storage"
)

const (
	entityEnrollment = "enrollment"
	nsEnrollments    = "enrollments"
)

// EnrollmentStore is the durable-store contract the enrollment repository
// consumes. *storage.EnrollmentStore satisfies it.
type EnrollmentStore interface {
	Upsert(ctx context.Context, row *storage.EnrollmentRow) error
	ByID(ctx context.Context, id string) (*storage.EnrollmentRow, error)
	ByUserAndCourse(ctx context.Context, userID, courseID string) (*storage.EnrollmentRow, error)
	ByUser(ctx context.Context, userID string, pr storage.PageRequest) ([]*storage.EnrollmentRow, int, error)
	ByCourse(ctx context.Context, courseID string, pr storage.PageRequest) ([]*storage.EnrollmentRow, int, error)
}

// EnrollmentRepository is the single access path for Enrollment aggregates.
type EnrollmentRepository struct {
	store EnrollmentStore
	deps  Deps
	inv   invalidator
	log   *slog.Logger
}

// NewEnrollmentRepository wires the repository.
func NewEnrollmentRepository(store EnrollmentStore, deps Deps) *EnrollmentRepository {
	deps = deps.normalize()
	log := deps.Logger.With("component", "repocache.enrollment")
	return &EnrollmentRepository{
		store: store,
		deps:  deps,
		inv:   invalidator{gw: deps.Cache, log: log},
		log:   log,
	}
}

// FindByID returns the enrollment, or (nil, nil) when absent or deleted.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*catalog.Enrollment, error) {
	ctx, end := r.deps.Observer.Span(ctx, "EnrollmentRepository.FindByID")
	defer end()

	row, err := readThrough(ctx, r.deps, r.log, entityEnrollment, cache.IDKey(entityEnrollment, id), func(ctx context.Context) (*storage.EnrollmentRow, error) {
		return r.store.ByID(ctx, id)
	})
	if err != nil || row == nil {
		return nil, err
	}
	return r.toDomain(row)
}

// FindByUserAndCourse returns the one enrollment for the pair, or (nil, nil).
// The pair keyspace is invalidated alongside the id keyspace on every write.
func (r *EnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) (*catalog.Enrollment, error) {
	ctx, end := r.deps.Observer.Span(ctx, "EnrollmentRepository.FindByUserAndCourse")
	defer end()

	key := cache.PairKey(entityEnrollment, "user", userID, "course", courseID)
	row, err := readThrough(ctx, r.deps, r.log, entityEnrollment, key, func(ctx context.Context) (*storage.EnrollmentRow, error) {
		return r.store.ByUserAndCourse(ctx, userID, courseID)
	})
	if err != nil || row == nil {
		return nil, err
	}
	return r.toDomain(row)
}

// FindByUser returns one page of a user's enrollments plus the total count.
func (r *EnrollmentRepository) FindByUser(ctx context.Context, userID string, pr storage.PageRequest) ([]*catalog.Enrollment, int, error) {
	ctx, end := r.deps.Observer.Span(ctx, "EnrollmentRepository.FindByUser")
	defer end()

	pr = normalizePage(pr)
	ns := cache.ListNamespace(nsEnrollments, "user", userID)
	key := cache.PageKey(ns, pr.Page, pr.Limit, pr.SortField, string(pr.SortDir))
	rows, total, err := pageThrough(ctx, r.deps, r.log, entityEnrollment, key, func(ctx context.Context) ([]*storage.EnrollmentRow, int, error) {
		return r.store.ByUser(ctx, userID, pr)
	})
	if err != nil {
		return nil, 0, err
	}
	enrollments, err := mapRows(entityEnrollment, rows, storage.EnrollmentToDomain)
	return enrollments, total, err
}

// FindByCourse returns one page of a course's enrollments plus the total
// count.
func (r *EnrollmentRepository) FindByCourse(ctx context.Context, courseID string, pr storage.PageRequest) ([]*catalog.Enrollment, int, error) {
	ctx, end := r.deps.Observer.Span(ctx, "EnrollmentRepository.FindByCourse")
	defer end()

	pr = normalizePage(pr)
	ns := cache.ListNamespace(nsEnrollments, "course", courseID)
	key := cache.PageKey(ns, pr.Page, pr.Limit, pr.SortField, string(pr.SortDir))
	rows, total, err := pageThrough(ctx, r.deps, r.log, entityEnrollment, key, func(ctx context.Context) ([]*storage.EnrollmentRow, int, error) {
		return r.store.ByCourse(ctx, courseID, pr)
	})
	if err != nil {
		return nil, 0, err
	}
	enrollments, err := mapRows(entityEnrollment, rows, storage.EnrollmentToDomain)
	return enrollments, total, err
}

// Save creates an enrollment. A user enrolls in a course at most once; a
// second attempt fails with an already-exists error before any store write.
func (r *EnrollmentRepository) Save(ctx context.Context, e *catalog.Enrollment) error {
	ctx, end := r.deps.Observer.Span(ctx, "EnrollmentRepository.Save")
	defer end()

	if err := e.Validate(); err != nil {
		return err
	}
	existing, err := r.store.ByUserAndCourse(ctx, e.UserID, e.CourseID)
	if err != nil {
		return catalog.NewInfrastructure(entityEnrollment, "query", err)
	}
	if existing != nil && existing.ID != e.ID {
		return catalog.NewAlreadyExists(entityEnrollment, e.UserID+"/"+e.CourseID)
	}
	return r.write(ctx, e, "INSERT")
}

// Update rewrites the enrollment in full.
func (r *EnrollmentRepository) Update(ctx context.Context, e *catalog.Enrollment) error {
	ctx, end := r.deps.Observer.Span(ctx, "EnrollmentRepository.Update")
	defer end()

	if err := e.Validate(); err != nil {
		return err
	}
	return r.write(ctx, e, "UPDATE")
}

// Delete marks the enrollment logically deleted, which also frees the
// user/course pair for re-enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, e *catalog.Enrollment) error {
	ctx, end := r.deps.Observer.Span(ctx, "EnrollmentRepository.Delete")
	defer end()
	e.SoftDelete()
	return r.write(ctx, e, "DELETE")
}

// write upserts the row, then invalidates the id key, the user/course pair
// key, both scoped enrollment listings, and the user's enrolled-course
// pages, which an enrollment change also reshapes.
func (r *EnrollmentRepository) write(ctx context.Context, e *catalog.Enrollment, op string) error {
	row, err := storage.EnrollmentToRow(e)
	if err != nil {
		return catalog.NewInfrastructure(entityEnrollment, "map", err)
	}
	keys := []string{
		cache.IDKey(entityEnrollment, e.ID),
		cache.PairKey(entityEnrollment, "user", e.UserID, "course", e.CourseID),
	}
	prefixes := []string{
		cache.ListNamespace(nsEnrollments, "user", e.UserID),
		cache.ListNamespace(nsEnrollments, "course", e.CourseID),
		cache.ListNamespace(nsCourses, "user", e.UserID),
	}
	return writeThrough(ctx, r.deps, r.inv, entityEnrollment, op, func(ctx context.Context) error {
		return r.store.Upsert(ctx, row)
	}, keys, prefixes)
}

func (r *EnrollmentRepository) toDomain(row *storage.EnrollmentRow) (*catalog.Enrollment, error) {
	e, err := storage.EnrollmentToDomain(row)
	if err != nil {
		return nil, catalog.NewInfrastructure(entityEnrollment, "map", err)
	}
	return e, nil
}
