package repocache

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/pkg/testsupport"
	"github.com/goliatone/go-course-catalog/storage"
)

type fakeReviewStore struct {
	rows  map[string]*storage.ReviewRow
	calls map[string]int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{rows: map[string]*storage.ReviewRow{}, calls: map[string]int{}}
}

func (s *fakeReviewStore) Upsert(_ context.Context, row *storage.ReviewRow) error {
	s.calls["Upsert"]++
	s.rows[row.ID] = row
	return nil
}

func (s *fakeReviewStore) ByID(_ context.Context, id string) (*storage.ReviewRow, error) {
	s.calls["ByID"]++
	row, ok := s.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, nil
	}
	return row, nil
}

func (s *fakeReviewStore) ByUserAndCourse(_ context.Context, userID, courseID string) (*storage.ReviewRow, error) {
	s.calls["ByUserAndCourse"]++
	for _, row := range s.rows {
		if row.UserID == userID && row.CourseID == courseID && row.DeletedAt == nil {
			return row, nil
		}
	}
	return nil, nil
}

func (s *fakeReviewStore) ByCourse(_ context.Context, courseID string, minRating int, _ storage.PageRequest) ([]*storage.ReviewRow, int, error) {
	s.calls["ByCourse"]++
	var rows []*storage.ReviewRow
	for _, row := range s.rows {
		if row.CourseID == courseID && row.DeletedAt == nil && row.Rating >= minRating {
			rows = append(rows, row)
		}
	}
	return rows, len(rows), nil
}

func TestReviewSaveEnforcesPairUniqueness(t *testing.T) {
	store := newFakeReviewStore()
	repo := NewReviewRepository(store, Deps{Cache: testsupport.NewGatewayFake()})
	ctx := context.Background()

	if err := repo.Save(ctx, testsupport.SeedReview("u1", "c1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	err := repo.Save(ctx, testsupport.SeedReview("u1", "c1"))
	if !errors.Is(err, catalog.ErrAlreadyExists) {
		t.Fatalf("expected already-exists error, got %v", err)
	}
	if store.calls["Upsert"] != 1 {
		t.Errorf("duplicate save must not write, got %d upserts", store.calls["Upsert"])
	}
}

func TestReviewSaveRejectsOutOfRangeRating(t *testing.T) {
	store := newFakeReviewStore()
	repo := NewReviewRepository(store, Deps{Cache: testsupport.NewGatewayFake()})

	err := repo.Save(context.Background(), catalog.NewReview("u1", "c1", 6, ""))
	if !errors.Is(err, catalog.ErrInvalidState) {
		t.Fatalf("expected invalid-state error, got %v", err)
	}
	if store.calls["Upsert"] != 0 {
		t.Error("invalid review must not write")
	}
}

func TestReviewMinRatingVariantsCacheSeparately(t *testing.T) {
	store := newFakeReviewStore()
	gw := testsupport.NewGatewayFake()
	repo := NewReviewRepository(store, Deps{Cache: gw})
	ctx := context.Background()

	if err := repo.Save(ctx, testsupport.SeedReview("u1", "c1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, catalog.NewReview("u2", "c1", 2, "meh")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, all, err := repo.FindByCourse(ctx, "c1", 0, storage.PageRequest{})
	if err != nil {
		t.Fatalf("FindByCourse: %v", err)
	}
	_, filtered, err := repo.FindByCourse(ctx, "c1", 4, storage.PageRequest{})
	if err != nil {
		t.Fatalf("FindByCourse(min 4): %v", err)
	}
	if all != 2 || filtered != 1 {
		t.Errorf("totals = (%d, %d), want (2, 1)", all, filtered)
	}
	if store.calls["ByCourse"] != 2 {
		t.Errorf("distinct rating floors are distinct cached answers, got %d store calls", store.calls["ByCourse"])
	}
}

func TestReviewWriteInvalidatesCourseListingVariants(t *testing.T) {
	store := newFakeReviewStore()
	gw := testsupport.NewGatewayFake()
	repo := NewReviewRepository(store, Deps{Cache: gw})
	ctx := context.Background()

	review := testsupport.SeedReview("u1", "c1")
	if err := repo.Save(ctx, review); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !gw.DeletedKey(cache.IDKey("review", review.ID)) {
		t.Error("id key missing from invalidation set")
	}
	if !gw.DeletedKey(cache.PairKey("review", "user", "u1", "course", "c1")) {
		t.Error("pair key missing from invalidation set")
	}
	// One prefix covers the unfiltered and every min-rating variant.
	if !gw.DeletedPrefix("reviews:course:c1") {
		t.Error("course-scoped review listings should be invalidated by prefix")
	}
}

type fakeProgressStore struct {
	rows  map[string]*storage.ProgressRow
	calls map[string]int
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{rows: map[string]*storage.ProgressRow{}, calls: map[string]int{}}
}

func (s *fakeProgressStore) Upsert(_ context.Context, row *storage.ProgressRow) error {
	s.calls["Upsert"]++
	s.rows[row.ID] = row
	return nil
}

func (s *fakeProgressStore) ByID(_ context.Context, id string) (*storage.ProgressRow, error) {
	s.calls["ByID"]++
	row, ok := s.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, nil
	}
	return row, nil
}

func (s *fakeProgressStore) ByEnrollmentAndLesson(_ context.Context, enrollmentID, lessonID string) (*storage.ProgressRow, error) {
	s.calls["ByEnrollmentAndLesson"]++
	for _, row := range s.rows {
		if row.EnrollmentID == enrollmentID && row.LessonID == lessonID && row.DeletedAt == nil {
			return row, nil
		}
	}
	return nil, nil
}

func (s *fakeProgressStore) ByEnrollment(_ context.Context, enrollmentID string) ([]*storage.ProgressRow, error) {
	s.calls["ByEnrollment"]++
	var rows []*storage.ProgressRow
	for _, row := range s.rows {
		if row.EnrollmentID == enrollmentID && row.DeletedAt == nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func TestProgressSaveEnforcesPairUniqueness(t *testing.T) {
	store := newFakeProgressStore()
	repo := NewProgressRepository(store, Deps{Cache: testsupport.NewGatewayFake()})
	ctx := context.Background()

	if err := repo.Save(ctx, testsupport.SeedProgress("e1", "l1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	err := repo.Save(ctx, testsupport.SeedProgress("e1", "l1"))
	if !errors.Is(err, catalog.ErrAlreadyExists) {
		t.Fatalf("expected already-exists error, got %v", err)
	}
	if store.calls["Upsert"] != 1 {
		t.Errorf("duplicate save must not write, got %d upserts", store.calls["Upsert"])
	}
}

func TestProgressWriteInvalidatesEnrollmentListing(t *testing.T) {
	store := newFakeProgressStore()
	gw := testsupport.NewGatewayFake()
	repo := NewProgressRepository(store, Deps{Cache: gw})
	ctx := context.Background()

	p := testsupport.SeedProgress("e1", "l1")
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	p.Complete()
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !gw.DeletedKey(cache.PairKey("progress", "enrollment", "e1", "lesson", "l1")) {
		t.Error("pair key missing from invalidation set")
	}
	if !gw.DeletedPrefix("progress:enrollment:e1") {
		t.Error("enrollment-scoped listing should be invalidated")
	}

	got, err := repo.FindByEnrollmentAndLesson(ctx, "e1", "l1")
	if err != nil {
		t.Fatalf("FindByEnrollmentAndLesson: %v", err)
	}
	if got == nil || !got.Completed {
		t.Errorf("read after update should see completion, got %+v", got)
	}
}
