package browser

import "testing"

func stubStart(t *testing.T) *[]string {
	t.Helper()
	var opened []string
	orig := start
	start = func(name string, args ...string) error {
		opened = append(opened, args[len(args)-1])
		return nil
	}
	t.Cleanup(func() { start = orig })
	return &opened
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	opened := stubStart(t)
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Open(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("Open(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Open(%q): unexpected error: %v", tt.url, err)
		}
	}
	if len(*opened) != 2 {
		t.Errorf("expected 2 launches, got %v", *opened)
	}
}

func TestSearchURL(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"CUDA 13 released", "https://www.google.com/search?q=CUDA+13+released"},
		{"  C++ & Rust?  ", "https://www.google.com/search?q=C%2B%2B+%26+Rust%3F"},
	}
	for _, tt := range tests {
		if got := SearchURL(tt.title); got != tt.want {
			t.Errorf("SearchURL(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSearch(t *testing.T) {
	opened := stubStart(t)
	if err := Search(" "); err == nil {
		t.Error("expected error for blank title")
	}
	if err := Search("Triton"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(*opened) != 1 || (*opened)[0] != "https://www.google.com/search?q=Triton" {
		t.Errorf("opened %v", *opened)
	}
}
