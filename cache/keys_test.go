package cache

import "testing"

func TestIDKey(t *testing.T) {
	got := IDKey("course", "abc-123")
	want := "course:abc-123"
	if got != want {
		t.Errorf("IDKey = %q, want %q", got, want)
	}
}

func TestFieldKey(t *testing.T) {
	got := FieldKey("course", "title", "Go Fundamentals")
	want := "course:title:Go Fundamentals"
	if got != want {
		t.Errorf("FieldKey = %q, want %q", got, want)
	}
}

func TestPairKey(t *testing.T) {
	got := PairKey("enrollment", "user", "u1", "course", "c1")
	want := "enrollment:user:u1:course:c1"
	if got != want {
		t.Errorf("PairKey = %q, want %q", got, want)
	}
}

func TestListNamespace(t *testing.T) {
	tests := []struct {
		name   string
		plural string
		scope  []string
		want   string
	}{
		{"unscoped", "courses", nil, "courses"},
		{"scoped", "courses", []string{"instructor", "i1"}, "courses:instructor:i1"},
		{"child scope", "sections", []string{"course", "c1"}, "sections:course:c1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ListNamespace(tt.plural, tt.scope...); got != tt.want {
				t.Errorf("ListNamespace = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageKey(t *testing.T) {
	ns := ListNamespace("courses", "instructor", "i1")
	got := PageKey(ns, 2, 25, "created_at", "DESC")
	want := "courses:instructor:i1:page:2:limit:25:sort:created_at:DESC"
	if got != want {
		t.Errorf("PageKey = %q, want %q", got, want)
	}
}
