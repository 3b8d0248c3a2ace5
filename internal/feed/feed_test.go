package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/matheuskafuri/techradar/internal/config"
)

func TestHeadlinesSkipsOldAndEmpty(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-2 * time.Hour)
	old := now.Add(-10 * 24 * time.Hour)
	f := &gofeed.Feed{Items: []*gofeed.Item{
		{Title: "<b>CUDA 13</b>  ships &amp; more", Link: "https://a", PublishedParsed: &recent},
		{Title: "Ancient news", PublishedParsed: &old},
		{Title: "   "},
		{Title: "Undated"},
	}}

	got := headlines(f, "NVIDIA Blog", now)
	if len(got) != 2 {
		t.Fatalf("expected 2 headlines, got %d: %v", len(got), got)
	}
	if got[0].Title != "CUDA 13 ships & more" {
		t.Errorf("title = %q, want %q", got[0].Title, "CUDA 13 ships & more")
	}
	if !got[1].Published.Equal(now) {
		t.Errorf("undated item should default to now, got %v", got[1].Published)
	}
	if s := got[0].String(); s != "CUDA 13 ships & more (NVIDIA Blog)" {
		t.Errorf("String() = %q", s)
	}
}

type fakeFetcher struct {
	calls atomic.Int32
	items map[string][]Headline
}

func (f *fakeFetcher) Fetch(ctx context.Context, src config.Source) ([]Headline, error) {
	f.calls.Add(1)
	items, ok := f.items[src.Name]
	if !ok {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, errors.New("404"))
	}
	return items, nil
}

func at(h int) time.Time {
	return time.Date(2026, 3, 10, h, 0, 0, 0, time.UTC)
}

func TestFetchAll(t *testing.T) {
	f := &fakeFetcher{items: map[string][]Headline{
		"A": {{Source: "A", Title: "one", Published: at(1)}, {Source: "A", Title: "three", Published: at(3)}},
		"B": {{Source: "B", Title: "two", Published: at(2)}, {Source: "B", Title: "three", Published: at(0)}},
	}}
	sources := []config.Source{{Name: "A"}, {Name: "B"}, {Name: "broken"}}

	res := FetchAll(context.Background(), f, sources)
	if len(res.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", res.Errors)
	}
	var titles []string
	for _, h := range res.Headlines {
		titles = append(titles, h.Title)
	}
	want := []string{"three", "two", "one"}
	if fmt.Sprint(titles) != fmt.Sprint(want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}
}

func TestGroundingCachesWithinTTL(t *testing.T) {
	f := &fakeFetcher{items: map[string][]Headline{
		"A": {
			{Source: "A", Title: "one", Published: at(1)},
			{Source: "A", Title: "two", Published: at(2)},
			{Source: "A", Title: "three", Published: at(3)},
		},
	}}
	g := NewGrounding(f, []config.Source{{Name: "A"}}, 2, nil)
	clock := at(12)
	g.now = func() time.Time { return clock }

	got := g.Headlines(context.Background())
	if len(got) != 2 || got[0] != "three (A)" {
		t.Errorf("Headlines() = %v", got)
	}
	g.Headlines(context.Background())
	if n := f.calls.Load(); n != 1 {
		t.Errorf("expected cached headlines, fetched %d times", n)
	}

	clock = clock.Add(time.Hour)
	g.Headlines(context.Background())
	if n := f.calls.Load(); n != 2 {
		t.Errorf("expected refresh after TTL, fetched %d times", n)
	}
}

type fetcherFunc func(ctx context.Context, src config.Source) ([]Headline, error)

func (f fetcherFunc) Fetch(ctx context.Context, src config.Source) ([]Headline, error) {
	return f(ctx, src)
}

func TestGroundingRefreshIgnoresCallerCancel(t *testing.T) {
	f := fetcherFunc(func(ctx context.Context, src config.Source) ([]Headline, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []Headline{{Source: "A", Title: "fresh headline", Published: at(1)}}, nil
	})
	g := NewGrounding(f, []config.Source{{Name: "A"}}, 5, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := g.Headlines(ctx)
	if len(got) != 1 || got[0] != "fresh headline (A)" {
		t.Errorf("Headlines() = %v", got)
	}
}

func TestGroundingRetriesAfterTotalFailure(t *testing.T) {
	var calls atomic.Int32
	f := fetcherFunc(func(ctx context.Context, src config.Source) ([]Headline, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("timeout")
		}
		return []Headline{{Source: "A", Title: "fresh headline", Published: at(1)}}, nil
	})
	g := NewGrounding(f, []config.Source{{Name: "A"}}, 5, nil)
	clock := at(12)
	g.now = func() time.Time { return clock }

	if got := g.Headlines(context.Background()); len(got) != 0 {
		t.Errorf("expected no headlines after failure, got %v", got)
	}
	got := g.Headlines(context.Background())
	if len(got) != 1 || got[0] != "fresh headline (A)" {
		t.Errorf("expected refresh after failure, got %v", got)
	}

	// A later total failure keeps the last good headlines.
	clock = clock.Add(time.Hour)
	calls.Store(0)
	if got := g.Headlines(context.Background()); len(got) != 1 {
		t.Errorf("expected last good headlines, got %v", got)
	}
}

func TestGroundingWithoutSources(t *testing.T) {
	g := NewGrounding(&fakeFetcher{}, nil, 10, nil)
	if got := g.Headlines(context.Background()); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

const rss = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Blog</title>
<item><title>Triton kernels on Blackwell</title><link>https://example.com/triton</link></item>
</channel></rss>`

func TestRSSFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rss)
	}))
	defer srv.Close()

	got, err := NewRSSFetcher().Fetch(context.Background(), config.Source{Name: "Blog", URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Triton kernels on Blackwell" || got[0].Link != "https://example.com/triton" {
		t.Errorf("unexpected headlines: %+v", got)
	}
}

func TestRSSFetcherError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewRSSFetcher().Fetch(context.Background(), config.Source{Name: "Blog", URL: srv.URL}); err == nil {
		t.Error("expected error for 404 feed")
	}
}
