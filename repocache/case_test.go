package repocache

import (
	"testing"

	"github.com/goliatone/go-course-catalog/storage"
)

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"createdAt", "created_at"},
		{"CreatedAt", "created_at"},
		{"created_at", "created_at"},
		{"updatedAt", "updated_at"},
		{"instructorID", "instructor_id"},
		{"HTTPStatus", "http_status"},
		{"created-at", "created_at"},
		{"created at", "created_at"},
		{"title", "title"},
		{"a1b2", "a_1b_2"},
	}
	for _, tt := range tests {
		if got := toSnake(tt.in); got != tt.want {
			t.Errorf("toSnake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePage(t *testing.T) {
	pr := normalizePage(storage.PageRequest{SortField: "createdAt", SortDir: "desc"})
	if pr.SortField != "created_at" {
		t.Errorf("SortField = %q, want created_at", pr.SortField)
	}
	if string(pr.SortDir) != "ASC" {
		t.Errorf("lowercase direction should clamp to ASC, got %q", pr.SortDir)
	}
}
