// Package source turns a generative model into a lazy sequence of
// article batches.
//
// A fetch runs in rounds. Every round asks the model for a handful of
// articles while listing each title already seen, keeps the ones that
// are new, and yields them. Fetching stops once the requested count is
// reached or the model looks exhausted.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheuskafuri/techradar/internal/ai"
	"github.com/matheuskafuri/techradar/internal/extract"
	"github.com/matheuskafuri/techradar/internal/news"
	"github.com/matheuskafuri/techradar/internal/topic"
)

// DefaultBatchSize is how many articles one round asks for.
const DefaultBatchSize = 4

// ErrInvalidTopic is returned before any model call when a request names
// an unknown topic, or the custom topic without a query.
var ErrInvalidTopic = errors.New("invalid topic")

// Request describes one fetch.
type Request struct {
	Topic   topic.Key
	Query   string
	Exclude []string
	Count   int
}

// Error is a fetch failure in a given round.
type Error struct {
	Round int
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch round %d: %v", e.Round, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HeadlineFunc returns recent headlines to ground prompts in. It must not
// fail; an empty result simply omits the section.
type HeadlineFunc func(ctx context.Context) []string

// Source fetches articles from a provider.
type Source struct {
	provider  ai.Provider
	batchSize int
	streaming bool
	headlines HeadlineFunc
	log       *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithBatchSize sets the number of articles requested per round.
func WithBatchSize(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithStreaming enables chunked delivery for providers that support it.
func WithStreaming(on bool) Option {
	return func(s *Source) { s.streaming = on }
}

func WithHeadlines(fn HeadlineFunc) Option {
	return func(s *Source) { s.headlines = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Source reading from p.
func New(p ai.Provider, opts ...Option) *Source {
	s := &Source{
		provider:  p,
		batchSize: DefaultBatchSize,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch starts a fetch for req. Nothing is sent to the provider until the
// first call to Next. The caller must Close the returned Batches.
func (s *Source) Fetch(ctx context.Context, req Request) *Batches {
	return FromSeq(s.seq(ctx, req))
}

func checkRequest(req Request) error {
	if !req.Topic.Valid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidTopic, topic.ErrUnknown, req.Topic)
	}
	if req.Topic.IsCustom() && strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: custom topic requires a query", ErrInvalidTopic)
	}
	return nil
}

func (s *Source) seq(ctx context.Context, req Request) iter.Seq2[[]news.Article, error] {
	return func(yield func([]news.Article, error) bool) {
		if err := checkRequest(req); err != nil {
			yield(nil, err)
			return
		}

		log := s.log.With(
			zap.String("op", uuid.NewString()),
			zap.String("topic", string(req.Topic)),
		)

		var headlines []string
		if s.headlines != nil {
			headlines = s.headlines(ctx)
		}

		seen := newSeen(req.Exclude)
		yielded := 0
		for n := 1; yielded < req.Count; n++ {
			if err := ctx.Err(); err != nil {
				yield(nil, &Error{Round: n, Err: err})
				return
			}

			r := &round{
				size:      min(s.batchSize, req.Count-yielded),
				remaining: req.Count - yielded,
				seen:      seen,
			}
			prompt, err := ai.NewsPrompt(ai.NewsRequest{
				Topic:     req.Topic,
				Query:     req.Query,
				Exclude:   seen.list(),
				Count:     r.size,
				Headlines: headlines,
			})
			if err != nil {
				yield(nil, fmt.Errorf("%w: %w", ErrInvalidTopic, err))
				return
			}

			log.Debug("round start", zap.Int("round", n), zap.Int("size", r.size), zap.Int("excluded", len(seen.order)))
			stopped, err := s.run(ctx, r, prompt, yield)
			if r.skipped > 0 {
				log.Warn("skipped malformed records", zap.Int("round", n), zap.Int("skipped", r.skipped))
			}
			if err != nil {
				log.Debug("round failed", zap.Int("round", n), zap.Error(err))
				yield(nil, &Error{Round: n, Err: err})
				return
			}
			if stopped {
				return
			}

			yielded += r.unique
			log.Debug("round done", zap.Int("round", n), zap.Int("raw", r.raw), zap.Int("unique", r.unique), zap.Int("total", yielded))
			if r.raw < r.size || r.unique == 0 {
				return
			}
		}
	}
}

// run executes one round. stopped reports that the consumer quit early.
func (s *Source) run(ctx context.Context, r *round, p ai.Prompt, yield func([]news.Article, error) bool) (stopped bool, err error) {
	if st, ok := s.provider.(ai.Streamer); ok && s.streaming {
		var sc extract.Scanner
		for chunk, err := range st.Stream(ctx, p) {
			if err != nil {
				return false, err
			}
			if batch := r.accept(sc.Write(chunk)); len(batch) > 0 {
				if !yield(batch, nil) {
					return true, nil
				}
			}
		}
		sc.Flush()
		r.skipped += sc.Skipped()
		if !sc.SawBoundary() {
			return false, extract.ErrNoPayload
		}
		return false, nil
	}

	text, err := s.provider.Generate(ctx, p)
	if err != nil {
		return false, err
	}
	res, err := extract.Parse(text)
	if err != nil {
		return false, err
	}
	r.skipped += res.Skipped
	if batch := r.accept(res.Records); len(batch) > 0 {
		if !yield(batch, nil) {
			return true, nil
		}
	}
	return false, nil
}

type round struct {
	size      int
	remaining int
	seen      *seenTitles

	raw     int
	unique  int
	skipped int
}

// accept decodes records and keeps the ones with a new, non-empty title,
// up to the remaining count.
func (r *round) accept(records []json.RawMessage) []news.Article {
	var out []news.Article
	for _, rec := range records {
		var a news.Article
		if err := json.Unmarshal(rec, &a); err != nil {
			r.skipped++
			continue
		}
		r.raw++
		a = a.Clean()
		if a.Title == "" || r.seen.has(a.Title) || r.unique >= r.remaining {
			continue
		}
		r.seen.add(a.Title)
		r.unique++
		out = append(out, a)
	}
	return out
}

// seenTitles keeps insertion order so prompts are deterministic.
type seenTitles struct {
	set   news.TitleSet
	order []string
}

func newSeen(titles []string) *seenTitles {
	s := &seenTitles{set: news.NewTitleSet(nil)}
	for _, t := range titles {
		s.add(t)
	}
	return s
}

func (s *seenTitles) has(t string) bool { return s.set.Has(t) }

func (s *seenTitles) add(t string) {
	if t == "" || s.set.Has(t) {
		return
	}
	s.set.Add(t)
	s.order = append(s.order, t)
}

func (s *seenTitles) list() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
