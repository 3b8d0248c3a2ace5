package feed

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matheuskafuri/techradar/internal/config"
	"github.com/matheuskafuri/techradar/internal/news"
)

const (
	maxAge         = 7 * 24 * time.Hour
	maxTitleLen    = 140
	fetchParallel  = 4
	defaultTTL     = 15 * time.Minute
	refreshTimeout = 20 * time.Second
)

// Headline is one recent feed item.
type Headline struct {
	Source    string
	Title     string
	Link      string
	Published time.Time
}

func (h Headline) String() string {
	return fmt.Sprintf("%s (%s)", h.Title, h.Source)
}

type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]Headline, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
	now    func() time.Time
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser(), now: time.Now}
}

func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source) ([]Headline, error) {
	feed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	return headlines(feed, source.Name, f.now()), nil
}

func headlines(feed *gofeed.Feed, name string, now time.Time) []Headline {
	oldest := now.Add(-maxAge)
	out := make([]Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		pub := now
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		// Skip items older than 7 days
		if pub.Before(oldest) {
			continue
		}

		title := news.Truncate(news.CleanText(item.Title), maxTitleLen)
		if title == "" {
			continue
		}
		out = append(out, Headline{
			Source:    name,
			Title:     title,
			Link:      item.Link,
			Published: pub,
		})
	}
	return out
}

type FetchResult struct {
	Headlines []Headline
	Errors    []error
}

// FetchAll reads every source concurrently. A failing source is reported
// in Errors and does not stop the others. Headlines come back newest
// first with duplicate titles removed.
func FetchAll(ctx context.Context, fetcher Fetcher, sources []config.Source) FetchResult {
	var (
		mu     sync.Mutex
		result FetchResult
		g      errgroup.Group
	)
	g.SetLimit(fetchParallel)

	for _, src := range sources {
		g.Go(func() error {
			items, err := fetcher.Fetch(ctx, src)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return nil
			}
			result.Headlines = append(result.Headlines, items...)
			return nil
		})
	}
	_ = g.Wait()

	slices.SortStableFunc(result.Headlines, func(a, b Headline) int {
		return cmp.Compare(b.Published.UnixNano(), a.Published.UnixNano())
	})
	seen := news.NewTitleSet(nil)
	result.Headlines = slices.DeleteFunc(result.Headlines, func(h Headline) bool {
		if seen.Has(h.Title) {
			return true
		}
		seen.Add(h.Title)
		return false
	})
	return result
}

// Grounding serves recent headlines from the configured feeds, refreshing
// at most once per TTL. Concurrent callers share a single refresh.
type Grounding struct {
	fetcher Fetcher
	sources []config.Source
	limit   int
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time

	group     singleflight.Group
	mu        sync.Mutex
	cached    []string
	fetchedAt time.Time
}

// NewGrounding returns a Grounding over sources yielding at most limit
// headlines. A nil fetcher reads RSS over HTTP.
func NewGrounding(fetcher Fetcher, sources []config.Source, limit int, log *zap.Logger) *Grounding {
	if fetcher == nil {
		fetcher = NewRSSFetcher()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Grounding{
		fetcher: fetcher,
		sources: sources,
		limit:   limit,
		ttl:     defaultTTL,
		log:     log,
		now:     time.Now,
	}
}

// Headlines returns formatted headlines. It returns nil when no source
// is configured. When every source fails it returns the last good
// headlines, if any, and tries again on the next call.
func (g *Grounding) Headlines(ctx context.Context) []string {
	if len(g.sources) == 0 || g.limit <= 0 {
		return nil
	}

	g.mu.Lock()
	if !g.fetchedAt.IsZero() && g.now().Sub(g.fetchedAt) < g.ttl {
		out := g.cached
		g.mu.Unlock()
		return out
	}
	g.mu.Unlock()

	v, _, _ := g.group.Do("refresh", func() (any, error) {
		// Other callers share this refresh, so the first caller's
		// cancellation must not cut it short.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		res := FetchAll(rctx, g.fetcher, g.sources)
		for _, err := range res.Errors {
			g.log.Warn("grounding feed failed", zap.Error(err))
		}
		if len(res.Errors) == len(g.sources) {
			// Keep the previous headlines and retry on the next call.
			g.mu.Lock()
			out := g.cached
			g.mu.Unlock()
			return out, nil
		}
		items := res.Headlines
		if len(items) > g.limit {
			items = items[:g.limit]
		}
		out := make([]string, len(items))
		for i, h := range items {
			out[i] = h.String()
		}
		g.log.Debug("grounding refreshed", zap.Int("headlines", len(out)), zap.Int("failed", len(res.Errors)))

		g.mu.Lock()
		g.cached = out
		g.fetchedAt = g.now()
		g.mu.Unlock()
		return out, nil
	})
	return v.([]string)
}
