package ai

import (
	"context"
	"iter"
	"time"

	"golang.org/x/time/rate"
)

// Limit wraps p so that at most perMinute calls start per minute.
// A non-positive perMinute returns p unchanged.
func Limit(p Provider, perMinute int) Provider {
	if perMinute <= 0 {
		return p
	}
	l := &limited{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
	if s, ok := p.(Streamer); ok {
		return &limitedStreamer{limited: l, streamer: s}
	}
	return l
}

type limited struct {
	Provider
	limiter *rate.Limiter
}

func (l *limited) Generate(ctx context.Context, p Prompt) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.Provider.Generate(ctx, p)
}

func (l *limited) Judge(ctx context.Context, instruction string, schema *Schema) ([]byte, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.Provider.Judge(ctx, instruction, schema)
}

type limitedStreamer struct {
	*limited
	streamer Streamer
}

func (l *limitedStreamer) Stream(ctx context.Context, p Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := l.limiter.Wait(ctx); err != nil {
			yield("", err)
			return
		}
		for chunk, err := range l.streamer.Stream(ctx, p) {
			if !yield(chunk, err) {
				return
			}
		}
	}
}
