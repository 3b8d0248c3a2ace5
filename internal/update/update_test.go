package update

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func releaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		current string
		want    string
	}{
		{"newer", http.StatusOK, `{"tag_name":"v1.2.0","html_url":"https://x/r"}`, "v1.1.0", "1.2.0"},
		{"same", http.StatusOK, `{"tag_name":"v1.1.0"}`, "1.1.0", ""},
		{"dev build", http.StatusOK, `{"tag_name":"v1.2.0"}`, "dev", ""},
		{"not found", http.StatusNotFound, `{}`, "v1.0.0", ""},
		{"bad json", http.StatusOK, `not json`, "v1.0.0", ""},
		{"empty tag", http.StatusOK, `{"tag_name":""}`, "v1.0.0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := releaseServer(t, tt.status, tt.body)
			res := check(context.Background(), srv.Client(), srv.URL, tt.current)
			switch {
			case tt.want == "" && res != nil:
				t.Errorf("expected no update, got %+v", res)
			case tt.want != "" && res == nil:
				t.Errorf("expected update to %s, got nil", tt.want)
			case tt.want != "" && res.LatestVersion != tt.want:
				t.Errorf("LatestVersion = %q, want %q", res.LatestVersion, tt.want)
			}
		})
	}
}

func TestCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	if res := check(context.Background(), http.DefaultClient, url, "v1.0.0"); res != nil {
		t.Errorf("expected nil for unreachable server, got %+v", res)
	}
}
