package tui

import (
	"strings"
	"testing"

	"github.com/matheuskafuri/techradar/internal/news"
	"github.com/matheuskafuri/techradar/internal/store"
)

func TestListWindow(t *testing.T) {
	tests := []struct {
		cursor, n, visible int
		start, end         int
	}{
		{0, 0, 5, 0, 0},
		{0, 3, 5, 0, 3},
		{0, 10, 5, 0, 5},
		{4, 10, 5, 0, 5},
		{5, 10, 5, 1, 6},
		{9, 10, 5, 5, 10},
	}
	for _, tt := range tests {
		start, end := listWindow(tt.cursor, tt.n, tt.visible)
		if start != tt.start || end != tt.end {
			t.Errorf("listWindow(%d, %d, %d) = %d, %d, want %d, %d",
				tt.cursor, tt.n, tt.visible, start, end, tt.start, tt.end)
		}
	}
}

func TestNearEnd(t *testing.T) {
	// 17 lines fit 5 items
	tests := []struct {
		cursor, n int
		want      bool
	}{
		{0, 0, false},
		{0, 3, true},
		{0, 10, false},
		{7, 10, false},
		{9, 10, true},
	}
	for _, tt := range tests {
		if got := nearEnd(tt.cursor, tt.n, 17); got != tt.want {
			t.Errorf("nearEnd(%d, %d) = %v, want %v", tt.cursor, tt.n, got, tt.want)
		}
	}
}

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		a    news.Article
		want string
	}{
		{news.Article{SourceTitle: "NVIDIA Blog", SourceURL: "https://blogs.nvidia.com/x"}, "NVIDIA Blog"},
		{news.Article{SourceURL: "https://www.example.com/post"}, "example.com"},
		{news.Article{SourceURL: "::not a url"}, "unknown source"},
		{news.Article{}, "unknown source"},
	}
	for _, tt := range tests {
		if got := sourceLabel(tt.a); got != tt.want {
			t.Errorf("sourceLabel(%+v) = %q, want %q", tt.a, got, tt.want)
		}
	}
}

func TestListFooter(t *testing.T) {
	tests := []struct {
		name string
		st   store.State
		want string
	}{
		{"fetching more", store.State{IsFetchingMore: true, HasMore: true}, "Loading more news..."},
		{"error", store.State{Err: "fetch round 1: boom", HasMore: true}, "Error: fetch round 1: boom"},
		{"end", store.State{}, "You've reached the end!"},
	}
	for _, tt := range tests {
		got := listFooter(tt.st, "*")
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s: footer %q does not contain %q", tt.name, got, tt.want)
		}
	}
	if got := listFooter(store.State{HasMore: true}, "*"); got != "" {
		t.Errorf("expected no footer while more is available, got %q", got)
	}
}

func TestRenderListMarksCursor(t *testing.T) {
	st := store.State{Articles: []news.Article{{Title: "first"}, {Title: "second"}}}
	out := renderList(st, 1, 20, 40, "*")
	if !strings.Contains(out, "> second") {
		t.Errorf("expected cursor on second item:\n%s", out)
	}
	if !strings.Contains(out, "You've reached the end!") {
		t.Errorf("expected end footer:\n%s", out)
	}
}
