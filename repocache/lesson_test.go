package repocache

import (
	"context"
	"testing"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/pkg/testsupport"
	"github.com/goliatone/go-course-catalog/storage"
)

type fakeLessonStore struct {
	rows  map[string]*storage.LessonRow
	calls map[string]int
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{rows: map[string]*storage.LessonRow{}, calls: map[string]int{}}
}

func (s *fakeLessonStore) Upsert(_ context.Context, row *storage.LessonRow) error {
	s.calls["Upsert"]++
	s.rows[row.ID] = row
	return nil
}

func (s *fakeLessonStore) ByID(_ context.Context, id string) (*storage.LessonRow, error) {
	s.calls["ByID"]++
	row, ok := s.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, nil
	}
	return row, nil
}

func (s *fakeLessonStore) BySection(_ context.Context, sectionID string) ([]*storage.LessonRow, error) {
	s.calls["BySection"]++
	var rows []*storage.LessonRow
	for _, row := range s.rows {
		if row.SectionID == sectionID && row.DeletedAt == nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func TestLessonWriteInvalidatesAncestors(t *testing.T) {
	course, courseRow := seedCourseRow(t)
	courseStore := newFakeCourseStore(courseRow)

	sectionStore := newFakeSectionStore()
	section := catalog.NewSection(course.ID, "Getting Started")
	sectionRow, err := storage.SectionToRow(section)
	if err != nil {
		t.Fatalf("SectionToRow: %v", err)
	}
	sectionStore.rows[sectionRow.ID] = sectionRow

	gw := testsupport.NewGatewayFake()
	repo := NewLessonRepository(newFakeLessonStore(), sectionStore, courseStore, Deps{Cache: gw})

	lesson := catalog.NewLesson(section.ID, "Hello, World", "body", 10)
	if err := repo.Save(context.Background(), lesson); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, key := range []string{
		cache.IDKey("lesson", lesson.ID),
		cache.IDKey("section", section.ID),
		cache.IDKey("course", course.ID),
		cache.FieldKey("course", "title", course.Title),
	} {
		if !gw.DeletedKey(key) {
			t.Errorf("key %q missing from invalidation set", key)
		}
	}
	for _, prefix := range []string{
		"lessons:section:" + section.ID,
		"sections:course:" + course.ID,
		"courses:",
	} {
		if !gw.DeletedPrefix(prefix) {
			t.Errorf("prefix %q missing from invalidation set", prefix)
		}
	}
}

func TestLessonWriteWithUnknownSectionSkipsCourseKeys(t *testing.T) {
	gw := testsupport.NewGatewayFake()
	repo := NewLessonRepository(newFakeLessonStore(), newFakeSectionStore(), newFakeCourseStore(), Deps{Cache: gw})

	lesson := catalog.NewLesson("gone-section", "Hello", "body", 5)
	if err := repo.Save(context.Background(), lesson); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !gw.DeletedKey(cache.IDKey("lesson", lesson.ID)) {
		t.Error("lesson key should still be invalidated")
	}
	if gw.DeletedPrefix("courses:") {
		t.Error("no course ancestor resolved, course listings should be untouched")
	}
}
