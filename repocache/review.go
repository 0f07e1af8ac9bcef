package repocache

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/storage"
)

const (
	entityReview = "review"
	nsReviews    = "reviews"
)

// ReviewStore is the durable-store contract the review repository consumes.
// *storage.ReviewStore satisfies it.
type ReviewStore interface {
	Upsert(ctx context.Context, row *storage.ReviewRow) error
	ByID(ctx context.Context, id string) (*storage.ReviewRow, error)
	ByUserAndCourse(ctx context.Context, userID, courseID string) (*storage.ReviewRow, error)
	ByCourse(ctx context.Context, courseID string, minRating int, pr storage.PageRequest) ([]*storage.ReviewRow, int, error)
}

// ReviewRepository is the single access path for Review aggregates.
type ReviewRepository struct {
	store ReviewStore
	deps  Deps
	inv   invalidator
	log   *slog.Logger
}

// NewReviewRepository wires the repository.
func NewReviewRepository(store ReviewStore, deps Deps) *ReviewRepository {
	deps = deps.normalize()
	log := deps.Logger.With("component", "repocache.review")
	return &ReviewRepository{
		store: store,
		deps:  deps,
		inv:   invalidator{gw: deps.Cache, log: log},
		log:   log,
	}
}

// FindByID returns the review, or (nil, nil) when absent or deleted.
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*catalog.Review, error) {
	ctx, end := r.deps.Observer.Span(ctx, "ReviewRepository.FindByID")
	defer end()

	row, err := readThrough(ctx, r.deps, r.log, entityReview, cache.IDKey(entityReview, id), func(ctx context.Context) (*storage.ReviewRow, error) {
		return r.store.ByID(ctx, id)
	})
	if err != nil || row == nil {
		return nil, err
	}
	return r.toDomain(row)
}

// FindByUserAndCourse returns the one review for the pair, or (nil, nil).
func (r *ReviewRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) (*catalog.Review, error) {
	ctx, end := r.deps.Observer.Span(ctx, "ReviewRepository.FindByUserAndCourse")
	defer end()

	key := cache.PairKey(entityReview, "user", userID, "course", courseID)
	row, err := readThrough(ctx, r.deps, r.log, entityReview, key, func(ctx context.Context) (*storage.ReviewRow, error) {
		return r.store.ByUserAndCourse(ctx, userID, courseID)
	})
	if err != nil || row == nil {
		return nil, err
	}
	return r.toDomain(row)
}

// FindByCourse returns one page of a course's reviews at or above minRating
// plus the total count. minRating 0 disables the floor. The floor is part
// of the page key; each filtered view caches separately under the same
// course-scoped namespace.
func (r *ReviewRepository) FindByCourse(ctx context.Context, courseID string, minRating int, pr storage.PageRequest) ([]*catalog.Review, int, error) {
	ctx, end := r.deps.Observer.Span(ctx, "ReviewRepository.FindByCourse")
	defer end()

	pr = normalizePage(pr)
	ns := cache.ListNamespace(nsReviews, "course", courseID)
	if minRating > 0 {
		ns = ns + cache.KeySeparator + "min" + cache.KeySeparator + strconv.Itoa(minRating)
	}
	key := cache.PageKey(ns, pr.Page, pr.Limit, pr.SortField, string(pr.SortDir))
	rows, total, err := pageThrough(ctx, r.deps, r.log, entityReview, key, func(ctx context.Context) ([]*storage.ReviewRow, int, error) {
		return r.store.ByCourse(ctx, courseID, minRating, pr)
	})
	if err != nil {
		return nil, 0, err
	}
	reviews, err := mapRows(entityReview, rows, storage.ReviewToDomain)
	return reviews, total, err
}

// Save creates a review. A user reviews a course at most once; a second
// attempt fails with an already-exists error before any store write.
func (r *ReviewRepository) Save(ctx context.Context, review *catalog.Review) error {
	ctx, end := r.deps.Observer.Span(ctx, "ReviewRepository.Save")
	defer end()

	if err := review.Validate(); err != nil {
		return err
	}
	existing, err := r.store.ByUserAndCourse(ctx, review.UserID, review.CourseID)
	if err != nil {
		return catalog.NewInfrastructure(entityReview, "query", err)
	}
	if existing != nil && existing.ID != review.ID {
		return catalog.NewAlreadyExists(entityReview, review.UserID+"/"+review.CourseID)
	}
	return r.write(ctx, review, "INSERT")
}

// Update rewrites the review in full.
func (r *ReviewRepository) Update(ctx context.Context, review *catalog.Review) error {
	ctx, end := r.deps.Observer.Span(ctx, "ReviewRepository.Update")
	defer end()

	if err := review.Validate(); err != nil {
		return err
	}
	return r.write(ctx, review, "UPDATE")
}

// Delete marks the review logically deleted.
func (r *ReviewRepository) Delete(ctx context.Context, review *catalog.Review) error {
	ctx, end := r.deps.Observer.Span(ctx, "ReviewRepository.Delete")
	defer end()
	review.SoftDelete()
	return r.write(ctx, review, "DELETE")
}

// write upserts the row, then invalidates the id key, the user/course pair
// key, and the course-scoped review listings, filtered variants included.
func (r *ReviewRepository) write(ctx context.Context, review *catalog.Review, op string) error {
	row, err := storage.ReviewToRow(review)
	if err != nil {
		return catalog.NewInfrastructure(entityReview, "map", err)
	}
	keys := []string{
		cache.IDKey(entityReview, review.ID),
		cache.PairKey(entityReview, "user", review.UserID, "course", review.CourseID),
	}
	prefixes := []string{
		cache.ListNamespace(nsReviews, "course", review.CourseID),
	}
	return writeThrough(ctx, r.deps, r.inv, entityReview, op, func(ctx context.Context) error {
		return r.store.Upsert(ctx, row)
	}, keys, prefixes)
}

func (r *ReviewRepository) toDomain(row *storage.ReviewRow) (*catalog.Review, error) {
	review, err := storage.ReviewToDomain(row)
	if err != nil {
		return nil, catalog.NewInfrastructure(entityReview, "map", err)
	}
	return review, nil
}
