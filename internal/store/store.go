// Package store holds the news state shown to the user and coordinates
// every fetch that changes it.
//
// At most one operation runs at a time. Each operation captures an epoch
// when it starts; switching tabs or starting a new search bumps the epoch,
// so results from a superseded operation are dropped even if its upstream
// keeps producing them.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/matheuskafuri/techradar/internal/news"
	"github.com/matheuskafuri/techradar/internal/source"
	"github.com/matheuskafuri/techradar/internal/topic"
	"github.com/matheuskafuri/techradar/internal/validate"
)

// DefaultPageSize is how many articles one page asks for.
const DefaultPageSize = 10

// State is a snapshot of the store. Snapshots are never modified after
// they are handed out, including the Articles backing array.
type State struct {
	Articles       []news.Article
	IsLoading      bool
	IsFetchingMore bool
	Err            string
	HasMore        bool
	ActiveTab      topic.Key
	CustomQuery    string
	CustomQueryErr string
}

// Fetcher produces article batches for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req source.Request) *source.Batches
}

// Validator judges custom queries.
type Validator interface {
	Validate(ctx context.Context, query string) validate.Verdict
}

// Store is the single owner of news state.
type Store struct {
	fetcher   Fetcher
	validator Validator
	pageSize  int
	log       *zap.Logger

	mu     sync.Mutex
	state  State
	epoch  uint64
	busy   bool
	cancel context.CancelFunc
	reg    registry

	// delivery turnstile: snapshots are delivered in ticket order
	ticket uint64
	turnMu sync.Mutex
	turn   uint64
	turnCh *sync.Cond

	ops sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTab sets the tab active at startup. Invalid keys are ignored.
func WithTab(k topic.Key) Option {
	return func(s *Store) {
		if k.Valid() {
			s.state.ActiveTab = k
		}
	}
}

// New returns a Store starting on the Tech tab with nothing loaded.
func New(f Fetcher, v Validator, opts ...Option) *Store {
	s := &Store{
		fetcher:   f,
		validator: v,
		pageSize:  DefaultPageSize,
		log:       zap.NewNop(),
		state: State{
			ActiveTab: topic.Tech,
			HasMore:   true,
		},
	}
	s.turnCh = sync.NewCond(&s.turnMu)
	for _, opt := range opts {
		opt(s)
	}
	s.state.HasMore = !s.state.ActiveTab.IsCustom()
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until every operation started so far has returned,
// including superseded ones whose results were discarded.
func (s *Store) Wait() {
	s.ops.Wait()
}

// SetActiveTab switches to k, abandoning any operation in flight. Non
// custom tabs start loading their first page in the background.
func (s *Store) SetActiveTab(ctx context.Context, k topic.Key) error {
	if !k.Valid() {
		return fmt.Errorf("%w %q", topic.ErrUnknown, k)
	}

	s.mu.Lock()
	if s.state.ActiveTab == k {
		s.mu.Unlock()
		return nil
	}
	s.supersede()
	s.state.ActiveTab = k
	s.clear(!k.IsCustom())
	epoch := s.epoch
	s.log.Debug("tab switched", zap.String("tab", string(k)), zap.Uint64("epoch", epoch))
	s.commit()

	if !k.IsCustom() {
		s.ops.Add(1)
		go func() {
			defer s.ops.Done()
			s.fetchNews(ctx, true, &epoch)
		}()
	}
	return nil
}

// SetCustomQuery stores the text of the custom search box.
func (s *Store) SetCustomQuery(text string) {
	s.mu.Lock()
	s.state.CustomQuery = text
	s.state.CustomQueryErr = ""
	s.commit()
}

// ValidateAndFetchCustomNews validates the custom query and, when it is
// accepted, loads its first page. It does nothing while another operation
// is running.
func (s *Store) ValidateAndFetchCustomNews(ctx context.Context) {
	s.ops.Add(1)
	defer s.ops.Done()

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return
	}
	epoch, opCtx := s.begin(ctx)
	s.state.ActiveTab = topic.Custom
	s.clear(true)
	query := s.state.CustomQuery
	s.commit()

	verdict := s.validator.Validate(opCtx, query)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Debug("discarding stale verdict", zap.Uint64("epoch", epoch))
		return
	}
	if !verdict.Valid {
		s.state.CustomQueryErr = verdict.Reason
		s.state.IsLoading = false
		s.end()
		s.commit()
		return
	}
	req := s.request()
	s.mu.Unlock()

	s.run(opCtx, epoch, true, req)
}

// FetchNews loads the first page (initial) or the next one. It does
// nothing while another operation is running, or when asking for more
// and no more is expected. Custom searches never have more. It returns once the operation settles.
func (s *Store) FetchNews(ctx context.Context, initial bool) {
	s.ops.Add(1)
	defer s.ops.Done()
	s.fetchNews(ctx, initial, nil)
}

// fetchNews skips the fetch if since is set and the epoch has moved past
// it, which happens when the tab changed again before a background start.
func (s *Store) fetchNews(ctx context.Context, initial bool, since *uint64) {
	s.mu.Lock()
	more := !initial && !s.state.ActiveTab.IsCustom() && s.state.HasMore
	if s.busy || (!initial && !more) || (since != nil && *since != s.epoch) {
		s.mu.Unlock()
		return
	}
	epoch, opCtx := s.begin(ctx)
	if initial {
		s.state.Articles = nil
		s.state.Err = ""
		s.state.HasMore = !s.state.ActiveTab.IsCustom()
		s.state.IsLoading = true
	} else {
		s.state.IsFetchingMore = true
		s.state.Err = ""
	}
	req := s.request()
	s.commit()

	s.run(opCtx, epoch, initial, req)
}

// run consumes one fetch and applies its batches while epoch is current.
func (s *Store) run(ctx context.Context, epoch uint64, initial bool, req source.Request) {
	log := s.log.With(zap.Uint64("epoch", epoch), zap.String("tab", string(req.Topic)))
	log.Debug("fetch start", zap.Bool("initial", initial), zap.Int("exclude", len(req.Exclude)))

	b := s.fetcher.Fetch(ctx, req)
	defer b.Close()

	added := 0
	first := initial
	for b.Next() {
		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			log.Debug("discarding stale batch", zap.Int("size", len(b.Batch())))
			return
		}
		fresh := dedup(s.state.Articles, b.Batch())
		if len(fresh) == 0 && !first {
			s.mu.Unlock()
			continue
		}
		added += len(fresh)
		if len(fresh) > 0 {
			s.state.Articles = append(slices.Clip(s.state.Articles), fresh...)
		}
		if first {
			s.state.IsLoading = false
			s.state.IsFetchingMore = true
			first = false
		}
		s.commit()
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		log.Debug("discarding stale outcome", zap.Error(b.Err()))
		return
	}
	s.state.IsLoading = false
	s.state.IsFetchingMore = false
	if err := b.Err(); err != nil {
		s.state.Err = err.Error()
		log.Warn("fetch failed", zap.Error(err), zap.Int("added", added))
	} else {
		s.state.HasMore = !s.state.ActiveTab.IsCustom() && added >= s.pageSize
		log.Debug("fetch done", zap.Int("added", added), zap.Bool("has_more", s.state.HasMore))
	}
	s.end()
	s.commit()
}

// begin takes the latch under a new epoch. s.mu must be held.
func (s *Store) begin(ctx context.Context) (uint64, context.Context) {
	s.epoch++
	s.busy = true
	opCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return s.epoch, opCtx
}

// end releases the latch held by the current epoch. s.mu must be held.
func (s *Store) end() {
	s.busy = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// supersede invalidates whatever operation is in flight. s.mu must be held.
func (s *Store) supersede() {
	s.epoch++
	s.end()
}

// clear resets content for a fresh context. s.mu must be held.
func (s *Store) clear(loading bool) {
	s.state.Articles = nil
	s.state.Err = ""
	s.state.CustomQueryErr = ""
	s.state.HasMore = !s.state.ActiveTab.IsCustom()
	s.state.IsLoading = loading
	s.state.IsFetchingMore = false
}

// request builds a page request from current state. s.mu must be held.
func (s *Store) request() source.Request {
	return source.Request{
		Topic:   s.state.ActiveTab,
		Query:   s.state.CustomQuery,
		Exclude: news.Titles(s.state.Articles),
		Count:   s.pageSize,
	}
}

// dedup returns the articles of batch whose titles are not in have and
// not repeated earlier in batch.
func dedup(have, batch []news.Article) []news.Article {
	seen := news.NewTitleSet(news.Titles(have))
	var out []news.Article
	for _, a := range batch {
		if seen.Has(a.Title) {
			continue
		}
		seen.Add(a.Title)
		out = append(out, a)
	}
	return out
}
