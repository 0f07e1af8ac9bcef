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

type fakeEnrollmentStore struct {
	rows  map[string]*storage.EnrollmentRow
	calls map[string]int
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{rows: map[string]*storage.EnrollmentRow{}, calls: map[string]int{}}
}

func (s *fakeEnrollmentStore) Upsert(_ context.Context, row *storage.EnrollmentRow) error {
	s.calls["Upsert"]++
	s.rows[row.ID] = row
	return nil
}

func (s *fakeEnrollmentStore) ByID(_ context.Context, id string) (*storage.EnrollmentRow, error) {
	s.calls["ByID"]++
	row, ok := s.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, nil
	}
	return row, nil
}

func (s *fakeEnrollmentStore) ByUserAndCourse(_ context.Context, userID, courseID string) (*storage.EnrollmentRow, error) {
	s.calls["ByUserAndCourse"]++
	for _, row := range s.rows {
		if row.UserID == userID && row.CourseID == courseID && row.DeletedAt == nil {
			return row, nil
		}
	}
	return nil, nil
}

func (s *fakeEnrollmentStore) ByUser(_ context.Context, userID string, _ storage.PageRequest) ([]*storage.EnrollmentRow, int, error) {
	s.calls["ByUser"]++
	var rows []*storage.EnrollmentRow
	for _, row := range s.rows {
		if row.UserID == userID && row.DeletedAt == nil {
			rows = append(rows, row)
		}
	}
	return rows, len(rows), nil
}

func (s *fakeEnrollmentStore) ByCourse(_ context.Context, courseID string, _ storage.PageRequest) ([]*storage.EnrollmentRow, int, error) {
	s.calls["ByCourse"]++
	var rows []*storage.EnrollmentRow
	for _, row := range s.rows {
		if row.CourseID == courseID && row.DeletedAt == nil {
			rows = append(rows, row)
		}
	}
	return rows, len(rows), nil
}

func newEnrollmentFixture(t *testing.T) (*EnrollmentRepository, *fakeEnrollmentStore, *testsupport.GatewayFake) {
	t.Helper()
	store := newFakeEnrollmentStore()
	gw := testsupport.NewGatewayFake()
	return NewEnrollmentRepository(store, Deps{Cache: gw}), store, gw
}

func TestEnrollmentSaveEnforcesPairUniqueness(t *testing.T) {
	repo, store, _ := newEnrollmentFixture(t)
	ctx := context.Background()

	first := catalog.NewEnrollment("u1", "c1")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := catalog.NewEnrollment("u1", "c1")
	err := repo.Save(ctx, second)
	if !errors.Is(err, catalog.ErrAlreadyExists) {
		t.Fatalf("expected already-exists error, got %v", err)
	}
	if store.calls["Upsert"] != 1 {
		t.Errorf("duplicate save must not write, got %d upserts", store.calls["Upsert"])
	}
}

func TestEnrollmentPairFreedAfterDelete(t *testing.T) {
	repo, _, _ := newEnrollmentFixture(t)
	ctx := context.Background()

	first := catalog.NewEnrollment("u1", "c1")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx, first); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Save(ctx, catalog.NewEnrollment("u1", "c1")); err != nil {
		t.Fatalf("re-enrollment after delete should succeed, got %v", err)
	}
}

func TestEnrollmentFindByUserAndCoursePopulatesPairKey(t *testing.T) {
	repo, store, gw := newEnrollmentFixture(t)
	ctx := context.Background()

	e := catalog.NewEnrollment("u1", "c1")
	if err := repo.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.FindByUserAndCourse(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("FindByUserAndCourse: %v", err)
	}
	if got == nil || got.ID != e.ID {
		t.Fatalf("FindByUserAndCourse returned %+v", got)
	}
	if !gw.Has(cache.PairKey("enrollment", "user", "u1", "course", "c1")) {
		t.Error("pair lookup should populate the pair key")
	}

	before := store.calls["ByUserAndCourse"]
	if _, err := repo.FindByUserAndCourse(ctx, "u1", "c1"); err != nil {
		t.Fatalf("FindByUserAndCourse (cached): %v", err)
	}
	if store.calls["ByUserAndCourse"] != before {
		t.Error("cached pair read should not touch the store")
	}
}

func TestEnrollmentWriteInvalidatesPairAndListings(t *testing.T) {
	repo, _, gw := newEnrollmentFixture(t)
	ctx := context.Background()

	e := catalog.NewEnrollment("u1", "c1")
	if err := repo.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !gw.DeletedKey(cache.IDKey("enrollment", e.ID)) {
		t.Error("id key missing from invalidation set")
	}
	if !gw.DeletedKey(cache.PairKey("enrollment", "user", "u1", "course", "c1")) {
		t.Error("pair key missing from invalidation set")
	}
	for _, prefix := range []string{
		"enrollments:user:u1",
		"enrollments:course:c1",
		"courses:user:u1",
	} {
		if !gw.DeletedPrefix(prefix) {
			t.Errorf("prefix %q missing from invalidation set", prefix)
		}
	}
}

func TestEnrollmentUpdateRejectsInvalidProgress(t *testing.T) {
	repo, store, _ := newEnrollmentFixture(t)

	e := catalog.NewEnrollment("u1", "c1")
	e.Progress = 120
	err := repo.Update(context.Background(), e)
	if !errors.Is(err, catalog.ErrInvalidState) {
		t.Fatalf("expected invalid-state error, got %v", err)
	}
	if store.calls["Upsert"] != 0 {
		t.Error("invalid aggregate must not write")
	}
}

func TestEnrollmentFindByUserPageCached(t *testing.T) {
	repo, store, _ := newEnrollmentFixture(t)
	ctx := context.Background()

	if err := repo.Save(ctx, catalog.NewEnrollment("u1", "c1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, total, err := repo.FindByUser(ctx, "u1", storage.PageRequest{})
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	if _, _, err := repo.FindByUser(ctx, "u1", storage.PageRequest{}); err != nil {
		t.Fatalf("FindByUser (cached): %v", err)
	}
	if store.calls["ByUser"] != 1 {
		t.Errorf("second page read should come from cache, store called %d times", store.calls["ByUser"])
	}
}
