package repocache

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/storage"
)

const (
	entityCourse = "course"
	nsCourses    = "courses"
)

// CourseStore is the durable-store contract the course repository consumes.
// *storage.CourseStore satisfies it.
type CourseStore interface {
	Upsert(ctx context.Context, row *storage.CourseRow) error
	ByID(ctx context.Context, id string) (*storage.CourseRow, error)
	ByTitle(ctx context.Context, title string) (*storage.CourseRow, error)
	TitleOf(ctx context.Context, id string) (string, error)
	All(ctx context.Context, pr storage.PageRequest) ([]*storage.CourseRow, int, error)
	ByInstructor(ctx context.Context, instructorID string, pr storage.PageRequest) ([]*storage.CourseRow, int, error)
	ByEnrolledUser(ctx context.Context, userID string, pr storage.PageRequest) ([]*storage.CourseRow, int, error)
}

// CourseRepository is the single access path for Course aggregates.
type CourseRepository struct {
	store CourseStore
	deps  Deps
	inv   invalidator
	log   *slog.Logger
}

// NewCourseRepository wires the repository from its explicit collaborators.
func NewCourseRepository(store CourseStore, deps Deps) *CourseRepository {
	deps = deps.normalize()
	log := deps.Logger.With("component", "repocache.course")
	return &CourseRepository{
		store: store,
		deps:  deps,
		inv:   invalidator{gw: deps.Cache, log: log},
		log:   log,
	}
}

// FindByID returns the course aggregate, or (nil, nil) when absent or
// deleted. Negative results are never cached.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*catalog.Course, error) {
	ctx, end := r.deps.Observer.Span(ctx, "CourseRepository.FindByID")
	defer end()

	row, err := readThrough(ctx, r.deps, r.log, entityCourse, cache.IDKey(entityCourse, id), func(ctx context.Context) (*storage.CourseRow, error) {
		return r.store.ByID(ctx, id)
	})
	if err != nil || row == nil {
		return nil, err
	}
	return r.toDomain(row)
}

// FindByTitle returns the course with the given unique title, or (nil, nil).
// The title keyspace is separate from the id keyspace; both entries for the
// same row are invalidated together on any write.
func (r *CourseRepository) FindByTitle(ctx context.Context, title string) (*catalog.Course, error) {
	ctx, end := r.deps.Observer.Span(ctx, "CourseRepository.FindByTitle")
	defer end()

	row, err := readThrough(ctx, r.deps, r.log, entityCourse, cache.FieldKey(entityCourse, "title", title), func(ctx context.Context) (*storage.CourseRow, error) {
		return r.store.ByTitle(ctx, title)
	})
	if err != nil || row == nil {
		return nil, err
	}
	return r.toDomain(row)
}

// FindAll returns one page of the catalog plus the total count.
func (r *CourseRepository) FindAll(ctx context.Context, pr storage.PageRequest) ([]*catalog.Course, int, error) {
	ctx, end := r.deps.Observer.Span(ctx, "CourseRepository.FindAll")
	defer end()

	pr = normalizePage(pr)
	key := cache.PageKey(cache.ListNamespace(nsCourses), pr.Page, pr.Limit, pr.SortField, string(pr.SortDir))
	rows, total, err := pageThrough(ctx, r.deps, r.log, entityCourse, key, func(ctx context.Context) ([]*storage.CourseRow, int, error) {
		return r.store.All(ctx, pr)
	})
	if err != nil {
		return nil, 0, err
	}
	courses, err := mapRows(entityCourse, rows, storage.CourseToDomain)
	return courses, total, err
}

// FindByInstructor returns one page of an instructor's courses.
func (r *CourseRepository) FindByInstructor(ctx context.Context, instructorID string, pr storage.PageRequest) ([]*catalog.Course, int, error) {
	ctx, end := r.deps.Observer.Span(ctx, "CourseRepository.FindByInstructor")
	defer end()

	pr = normalizePage(pr)
	ns := cache.ListNamespace(nsCourses, "instructor", instructorID)
	key := cache.PageKey(ns, pr.Page, pr.Limit, pr.SortField, string(pr.SortDir))
	rows, total, err := pageThrough(ctx, r.deps, r.log, entityCourse, key, func(ctx context.Context) ([]*storage.CourseRow, int, error) {
		return r.store.ByInstructor(ctx, instructorID, pr)
	})
	if err != nil {
		return nil, 0, err
	}
	courses, err := mapRows(entityCourse, rows, storage.CourseToDomain)
	return courses, total, err
}

// FindByUser returns one page of the courses a user is enrolled in.
func (r *CourseRepository) FindByUser(ctx context.Context, userID string, pr storage.PageRequest) ([]*catalog.Course, int, error) {
	ctx, end := r.deps.Observer.Span(ctx, "CourseRepository.FindByUser")
	defer end()

	pr = normalizePage(pr)
	ns := cache.ListNamespace(nsCourses, "user", userID)
	key := cache.PageKey(ns, pr.Page, pr.Limit, pr.SortField, string(pr.SortDir))
	rows, total, err := pageThrough(ctx, r.deps, r.log, entityCourse, key, func(ctx context.Context) ([]*storage.CourseRow, int, error) {
		return r.store.ByEnrolledUser(ctx, userID, pr)
	})
	if err != nil {
		return nil, 0, err
	}
	courses, err := mapRows(entityCourse, rows, storage.CourseToDomain)
	return courses, total, err
}

// Save creates a course. The unique-title invariant is enforced here: a
// colliding title fails with an already-exists error before any store write.
func (r *CourseRepository) Save(ctx context.Context, course *catalog.Course) error {
	ctx, end := r.deps.Observer.Span(ctx, "CourseRepository.Save")
	defer end()

	if err := course.Validate(); err != nil {
		return err
	}
	existing, err := r.store.ByTitle(ctx, course.Title)
	if err != nil {
		return catalog.NewInfrastructure(entityCourse, "query", err)
	}
	if existing != nil && existing.ID != course.ID {
		return catalog.NewAlreadyExists(entityCourse, course.Title)
	}
	return r.write(ctx, course, "INSERT", course.Title)
}

// Update rewrites the aggregate in full. Both the old and, when changed, the
// new title key join the invalidation set, so neither lookup can serve the
// pre-update value.
func (r *CourseRepository) Update(ctx context.Context, course *catalog.Course) error {
	ctx, end := r.deps.Observer.Span(ctx, "CourseRepository.Update")
	defer end()

	if err := course.Validate(); err != nil {
		return err
	}
	oldTitle, err := r.store.TitleOf(ctx, course.ID)
	if err != nil {
		return catalog.NewInfrastructure(entityCourse, "query", err)
	}
	return r.write(ctx, course, "UPDATE", oldTitle, course.Title)
}

// Delete marks the course logically deleted and follows the same
// write-then-invalidate path as Update. The row stays in the store for
// audit reads but disappears from every default read and cached listing.
func (r *CourseRepository) Delete(ctx context.Context, course *catalog.Course) error {
	ctx, end := r.deps.Observer.Span(ctx, "CourseRepository.Delete")
	defer end()

	course.SoftDelete()
	return r.write(ctx, course, "DELETE", course.Title)
}

// write upserts the row tree, then fires the invalidation set: the id key,
// every supplied title variant, and the whole course-listing namespace.
func (r *CourseRepository) write(ctx context.Context, course *catalog.Course, op string, titles ...string) error {
	row, err := storage.CourseToRow(course)
	if err != nil {
		return catalog.NewInfrastructure(entityCourse, "map", err)
	}

	keys := []string{cache.IDKey(entityCourse, course.ID)}
	seen := map[string]bool{}
	for _, title := range titles {
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		keys = append(keys, cache.FieldKey(entityCourse, "title", title))
	}
	return writeThrough(ctx, r.deps, r.inv, entityCourse, op, func(ctx context.Context) error {
		return r.store.Upsert(ctx, row)
	}, keys, []string{nsCourses + cache.KeySeparator})
}

func (r *CourseRepository) toDomain(row *storage.CourseRow) (*catalog.Course, error) {
	course, err := storage.CourseToDomain(row)
	if err != nil {
		return nil, catalog.NewInfrastructure(entityCourse, "map", err)
	}
	return course, nil
}
