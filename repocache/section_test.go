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

type fakeSectionStore struct {
	rows  map[string]*storage.SectionRow
	calls map[string]int
}

func newFakeSectionStore() *fakeSectionStore {
	return &fakeSectionStore{rows: map[string]*storage.SectionRow{}, calls: map[string]int{}}
}

func (s *fakeSectionStore) Upsert(_ context.Context, row *storage.SectionRow) error {
	s.calls["Upsert"]++
	s.rows[row.ID] = row
	return nil
}

func (s *fakeSectionStore) ByID(_ context.Context, id string) (*storage.SectionRow, error) {
	s.calls["ByID"]++
	row, ok := s.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, nil
	}
	return row, nil
}

func (s *fakeSectionStore) ByCourse(_ context.Context, courseID string) ([]*storage.SectionRow, error) {
	s.calls["ByCourse"]++
	var rows []*storage.SectionRow
	for _, row := range s.rows {
		if row.CourseID == courseID && row.DeletedAt == nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *fakeSectionStore) CourseIDOf(_ context.Context, id string) (string, error) {
	s.calls["CourseIDOf"]++
	if row, ok := s.rows[id]; ok {
		return row.CourseID, nil
	}
	return "", nil
}

func TestSectionWriteInvalidatesParentCourse(t *testing.T) {
	// The staleness scenario: a cached course read must not survive a
	// section write under it.
	course, courseRow := seedCourseRow(t)
	courseStore := newFakeCourseStore(courseRow)
	sectionStore := newFakeSectionStore()
	gw := testsupport.NewGatewayFake()
	deps := Deps{Cache: gw}

	courses := NewCourseRepository(courseStore, deps)
	sections := NewSectionRepository(sectionStore, courseStore, deps)
	ctx := context.Background()

	// Prime the course cache.
	if _, err := courses.FindByID(ctx, course.ID); err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !gw.Has(cache.IDKey("course", course.ID)) {
		t.Fatal("course should be cached after the first read")
	}

	section := catalog.NewSection(course.ID, "Closing Thoughts")
	if err := sections.Save(ctx, section); err != nil {
		t.Fatalf("Save section: %v", err)
	}

	if gw.Has(cache.IDKey("course", course.ID)) {
		t.Error("section write must evict the parent course's id key")
	}
	if !gw.DeletedKey(cache.FieldKey("course", "title", course.Title)) {
		t.Error("section write must evict the parent course's title key")
	}
	if !gw.DeletedPrefix("courses:") {
		t.Error("section write must evict the course listings")
	}
	if !gw.DeletedPrefix("sections:course:" + course.ID) {
		t.Error("section write must evict the course-scoped section listing")
	}

	// The re-read goes back to the store and sees the new child.
	before := courseStore.calls["ByID"]
	if _, err := courses.FindByID(ctx, course.ID); err != nil {
		t.Fatalf("FindByID after section write: %v", err)
	}
	if courseStore.calls["ByID"] != before+1 {
		t.Error("course re-read should miss the cache after a section write")
	}
}

func TestSectionFindByCourseCachesWholeCollection(t *testing.T) {
	courseStore := newFakeCourseStore()
	store := newFakeSectionStore()
	gw := testsupport.NewGatewayFake()
	repo := NewSectionRepository(store, courseStore, Deps{Cache: gw})
	ctx := context.Background()

	section := catalog.NewSection("c1", "Getting Started")
	row, err := storage.SectionToRow(section)
	if err != nil {
		t.Fatalf("SectionToRow: %v", err)
	}
	store.rows[row.ID] = row

	got, err := repo.FindByCourse(ctx, "c1")
	if err != nil {
		t.Fatalf("FindByCourse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FindByCourse returned %d sections, want 1", len(got))
	}
	if !gw.Has("sections:course:c1") {
		t.Error("collection should be cached at the namespace key")
	}

	if _, err := repo.FindByCourse(ctx, "c1"); err != nil {
		t.Fatalf("FindByCourse (cached): %v", err)
	}
	if store.calls["ByCourse"] != 1 {
		t.Errorf("cached collection read should not touch the store, got %d calls", store.calls["ByCourse"])
	}
}

func TestSectionFindByCourseCachesEmptyCollection(t *testing.T) {
	courseStore := newFakeCourseStore()
	store := newFakeSectionStore()
	gw := testsupport.NewGatewayFake()
	repo := NewSectionRepository(store, courseStore, Deps{Cache: gw})
	ctx := context.Background()

	got, err := repo.FindByCourse(ctx, "c1")
	if err != nil {
		t.Fatalf("FindByCourse: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
	if _, err := repo.FindByCourse(ctx, "c1"); err != nil {
		t.Fatalf("FindByCourse (cached): %v", err)
	}
	if store.calls["ByCourse"] != 1 {
		t.Error("an empty collection is a present answer and should be cached")
	}
}

func TestSectionWriteRequiresIdentity(t *testing.T) {
	repo := NewSectionRepository(newFakeSectionStore(), newFakeCourseStore(), Deps{Cache: testsupport.NewGatewayFake()})

	err := repo.Save(context.Background(), &catalog.Section{Title: "orphan"})
	if !errors.Is(err, catalog.ErrInvalidState) {
		t.Fatalf("expected invalid-state error, got %v", err)
	}
}
