package repocache

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/storage"
)

const (
	entityQuiz = "quiz"
	nsQuizzes  = "quizzes"
)

// QuizStore is the durable-store contract the quiz repository consumes.
// *storage.QuizStore satisfies it.
type QuizStore interface {
	Upsert(ctx context.Context, row *storage.QuizRow) error
	ByID(ctx context.Context, id string) (*storage.QuizRow, error)
	ByCourse(ctx context.Context, courseID string) ([]*storage.QuizRow, error)
}

// QuizRepository is the single access path for Quiz aggregates. Quizzes
// ride inside the parent course's cached row tree, so quiz writes
// invalidate the course's entries too.
type QuizRepository struct {
	store   QuizStore
	courses CourseTitleResolver
	deps    Deps
	inv     invalidator
	log     *slog.Logger
}

// NewQuizRepository wires the repository.
func NewQuizRepository(store QuizStore, courses CourseTitleResolver, deps Deps) *QuizRepository {
	deps = deps.normalize()
	log := deps.Logger.With("component", "repocache.quiz")
	return &QuizRepository{
		store:   store,
		courses: courses,
		deps:    deps,
		inv:     invalidator{gw: deps.Cache, log: log},
		log:     log,
	}
}

// FindByID returns the quiz with its questions decoded, or (nil, nil) when
// absent or deleted.
func (r *QuizRepository) FindByID(ctx context.Context, id string) (*catalog.Quiz, error) {
	ctx, end := r.deps.Observer.Span(ctx, "QuizRepository.FindByID")
	defer end()

	row, err := readThrough(ctx, r.deps, r.log, entityQuiz, cache.IDKey(entityQuiz, id), func(ctx context.Context) (*storage.QuizRow, error) {
		return r.store.ByID(ctx, id)
	})
	if err != nil || row == nil {
		return nil, err
	}
	quiz, err := storage.QuizToDomain(row)
	if err != nil {
		return nil, catalog.NewInfrastructure(entityQuiz, "map", err)
	}
	return quiz, nil
}

// FindByCourse returns every quiz of a course in creation order.
func (r *QuizRepository) FindByCourse(ctx context.Context, courseID string) ([]*catalog.Quiz, error) {
	ctx, end := r.deps.Observer.Span(ctx, "QuizRepository.FindByCourse")
	defer end()

	key := cache.ListNamespace(nsQuizzes, "course", courseID)
	rows, err := listThrough(ctx, r.deps, r.log, entityQuiz, key, func(ctx context.Context) ([]*storage.QuizRow, error) {
		return r.store.ByCourse(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return mapRows(entityQuiz, rows, storage.QuizToDomain)
}

// Save creates a quiz.
func (r *QuizRepository) Save(ctx context.Context, quiz *catalog.Quiz) error {
	ctx, end := r.deps.Observer.Span(ctx, "QuizRepository.Save")
	defer end()
	return r.write(ctx, quiz, "INSERT")
}

// Update rewrites the quiz in full, questions included.
func (r *QuizRepository) Update(ctx context.Context, quiz *catalog.Quiz) error {
	ctx, end := r.deps.Observer.Span(ctx, "QuizRepository.Update")
	defer end()
	return r.write(ctx, quiz, "UPDATE")
}

// Delete marks the quiz logically deleted.
func (r *QuizRepository) Delete(ctx context.Context, quiz *catalog.Quiz) error {
	ctx, end := r.deps.Observer.Span(ctx, "QuizRepository.Delete")
	defer end()
	quiz.SoftDelete()
	return r.write(ctx, quiz, "DELETE")
}

// write upserts the row, then invalidates the quiz's own key, the
// course-scoped quiz listing, the parent course's keys, and the
// course-listing namespace.
func (r *QuizRepository) write(ctx context.Context, quiz *catalog.Quiz, op string) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	row, err := storage.QuizToRow(quiz)
	if err != nil {
		return catalog.NewInfrastructure(entityQuiz, "map", err)
	}
	title, err := r.courses.TitleOf(ctx, quiz.CourseID)
	if err != nil {
		return catalog.NewInfrastructure(entityQuiz, "query", err)
	}

	keys := append(
		[]string{cache.IDKey(entityQuiz, quiz.ID)},
		courseAggregateKeys(quiz.CourseID, title)...,
	)
	prefixes := []string{
		cache.ListNamespace(nsQuizzes, "course", quiz.CourseID),
		nsCourses + cache.KeySeparator,
	}
	return writeThrough(ctx, r.deps, r.inv, entityQuiz, op, func(ctx context.Context) error {
		return r.store.Upsert(ctx, row)
	}, keys, prefixes)
}
