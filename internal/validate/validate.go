// Package validate decides whether a free-text query is a technology
// topic worth searching for.
package validate

import (
	"context"
	"encoding/json"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/matheuskafuri/techradar/internal/ai"
)

const (
	MsgEmpty       = "Query cannot be empty."
	MsgFailed      = "Validation failed."
	MsgUnavailable = "Could not validate the query at this time."
)

const defaultCacheSize = 128

// Verdict is the outcome of validating a query.
type Verdict struct {
	Valid  bool
	Reason string
}

type judgement struct {
	IsValid *bool  `json:"isValid"`
	Reason  string `json:"reason"`
}

// Validator asks a provider to judge queries and remembers the answers.
type Validator struct {
	provider ai.Provider
	cache    *lru.Cache[string, Verdict]
	log      *zap.Logger
}

// New returns a Validator. A nil logger discards output.
func New(p ai.Provider, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	cache, _ := lru.New[string, Verdict](defaultCacheSize)
	return &Validator{provider: p, cache: cache, log: log}
}

// Validate never fails: transport and parse problems become a negative
// verdict with a fixed reason.
func (v *Validator) Validate(ctx context.Context, query string) Verdict {
	key := normalize(query)
	if key == "" {
		return Verdict{Reason: MsgEmpty}
	}
	if cached, ok := v.cache.Get(key); ok {
		return cached
	}

	raw, err := v.provider.Judge(ctx, ai.ValidationPrompt(strings.TrimSpace(query)), ai.ValidationSchema)
	if err != nil {
		v.log.Warn("query validation failed", zap.String("query", query), zap.Error(err))
		return Verdict{Reason: MsgUnavailable}
	}
	var j judgement
	if err := json.Unmarshal(raw, &j); err != nil {
		v.log.Warn("unreadable validation verdict", zap.ByteString("raw", raw), zap.Error(err))
		return Verdict{Reason: MsgUnavailable}
	}

	verdict := Verdict{
		Valid:  j.IsValid != nil && *j.IsValid,
		Reason: strings.TrimSpace(j.Reason),
	}
	if verdict.Reason == "" {
		verdict.Reason = MsgFailed
	}
	v.cache.Add(key, verdict)
	v.log.Debug("query validated", zap.String("query", query), zap.Bool("valid", verdict.Valid))
	return verdict
}

func normalize(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
