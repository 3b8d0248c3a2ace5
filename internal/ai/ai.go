package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"time"

	"github.com/matheuskafuri/techradar/internal/config"
)

// Prompt is one instruction sent to a model.
type Prompt struct {
	System string
	User   string
	// Search lets providers that support it ground the answer in a live
	// web search.
	Search bool
}

// Schema describes the JSON object a Judge call must return.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

func (s *Schema) String() string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Provider is the upstream generative model.
type Provider interface {
	// Generate returns the model's complete text answer.
	Generate(ctx context.Context, p Prompt) (string, error)
	// Judge returns a single JSON object shaped by schema.
	Judge(ctx context.Context, instruction string, schema *Schema) ([]byte, error)
	Name() string
}

// Streamer is implemented by providers that can deliver text as it is
// produced. Chunks concatenate to the same text Generate would return.
type Streamer interface {
	Stream(ctx context.Context, p Prompt) iter.Seq2[string, error]
}

// New creates a Provider from the given AI config.
func New(ctx context.Context, cfg *config.AIConfig, apiKey string) (Provider, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}

	client := &http.Client{Timeout: 60 * time.Second}

	var p Provider
	switch cfg.Provider {
	case "gemini", "":
		model := cfg.Model
		if model == "" {
			model = "gemini-2.5-flash"
		}
		g, err := newGemini(ctx, apiKey, model, client)
		if err != nil {
			return nil, err
		}
		p = g
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		p = &claudeProvider{apiKey: apiKey, model: model, client: client, baseURL: claudeURL}
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		p = &openaiProvider{apiKey: apiKey, model: model, client: client, baseURL: openaiURL}
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: gemini, claude, openai)", cfg.Provider)
	}

	return Limit(p, cfg.RequestsPerMinute), nil
}
