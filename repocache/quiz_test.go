package repocache

import (
	"context"
	"testing"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/pkg/testsupport"
	"github.com/goliatone/go-course-catalog/storage"
)

type fakeQuizStore struct {
	rows  map[string]*storage.QuizRow
	calls map[string]int
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{rows: map[string]*storage.QuizRow{}, calls: map[string]int{}}
}

func (s *fakeQuizStore) Upsert(_ context.Context, row *storage.QuizRow) error {
	s.calls["Upsert"]++
	s.rows[row.ID] = row
	return nil
}

func (s *fakeQuizStore) ByID(_ context.Context, id string) (*storage.QuizRow, error) {
	s.calls["ByID"]++
	row, ok := s.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, nil
	}
	return row, nil
}

func (s *fakeQuizStore) ByCourse(_ context.Context, courseID string) ([]*storage.QuizRow, error) {
	s.calls["ByCourse"]++
	var rows []*storage.QuizRow
	for _, row := range s.rows {
		if row.CourseID == courseID && row.DeletedAt == nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func TestQuizWriteInvalidatesParentCourse(t *testing.T) {
	course, courseRow := seedCourseRow(t)
	courseStore := newFakeCourseStore(courseRow)
	gw := testsupport.NewGatewayFake()
	repo := NewQuizRepository(newFakeQuizStore(), courseStore, Deps{Cache: gw})

	quiz := catalog.NewQuiz(course.ID, "Final", "closing quiz", 60, 80, nil)
	if err := repo.Save(context.Background(), quiz); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !gw.DeletedKey(cache.IDKey("course", course.ID)) {
		t.Error("quiz write must evict the parent course's id key")
	}
	if !gw.DeletedPrefix("quizzes:course:" + course.ID) {
		t.Error("quiz write must evict the course-scoped quiz listing")
	}
	if !gw.DeletedPrefix("courses:") {
		t.Error("quiz write must evict the course listings")
	}
}

func TestQuizFindByIDRoundTripsQuestions(t *testing.T) {
	quiz := catalog.NewQuiz("c1", "Basics", "desc", 30, 70, []catalog.MCQQuestion{
		{ID: "q1", Question: "?", Options: []string{"a", "b"}, CorrectAnswer: 0},
	})
	row, err := storage.QuizToRow(quiz)
	if err != nil {
		t.Fatalf("QuizToRow: %v", err)
	}
	store := newFakeQuizStore()
	store.rows[row.ID] = row
	repo := NewQuizRepository(store, newFakeCourseStore(), Deps{Cache: testsupport.NewGatewayFake()})
	ctx := context.Background()

	for i := 0; i < 2; i++ { // store read, then cached read
		got, err := repo.FindByID(ctx, quiz.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if got == nil || len(got.Questions) != 1 || got.Questions[0].ID != "q1" {
			t.Fatalf("questions did not survive read %d: %+v", i, got)
		}
	}
	if store.calls["ByID"] != 1 {
		t.Errorf("second read should come from cache, store called %d times", store.calls["ByID"])
	}
}
