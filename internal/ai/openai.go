package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const openaiURL = "https://api.openai.com/v1/chat/completions"

type openaiProvider struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

type openaiRequest struct {
	Model          string          `json:"model"`
	Messages       []openaiMessage `json:"messages"`
	ResponseFormat *openaiFormat   `json:"response_format,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiFormat struct {
	Type string `json:"type"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *openaiProvider) Name() string { return "openai:" + o.model }

func (o *openaiProvider) Generate(ctx context.Context, p Prompt) (string, error) {
	var msgs []openaiMessage
	if p.System != "" {
		msgs = append(msgs, openaiMessage{Role: "system", Content: p.System})
	}
	msgs = append(msgs, openaiMessage{Role: "user", Content: p.User})
	return o.call(ctx, openaiRequest{Model: o.model, Messages: msgs})
}

func (o *openaiProvider) Judge(ctx context.Context, instruction string, schema *Schema) ([]byte, error) {
	text, err := o.call(ctx, openaiRequest{
		Model: o.model,
		Messages: []openaiMessage{{
			Role:    "user",
			Content: instruction + "\n\nRespond with a JSON object matching this JSON schema: " + schema.String(),
		}},
		ResponseFormat: &openaiFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	return firstObject(text)
}

func (o *openaiProvider) call(ctx context.Context, r openaiRequest) (string, error) {
	body, _ := json.Marshal(r)

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai API %d: %s", resp.StatusCode, string(b))
	}

	var or openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", err
	}
	if len(or.Choices) == 0 {
		return "", fmt.Errorf("empty openai response")
	}
	return or.Choices[0].Message.Content, nil
}
