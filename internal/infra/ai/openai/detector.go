package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/pii"
	"github.com/bryanwahyu/video-pii-analyzer/internal/infra/ai/prompt"
)

const maxTokens = 2048

// Detector runs named-entity recognition through a chat model with a
// strict JSON response contract. Several Detectors with different
// models or focuses form the ensemble's external pool.
type Detector struct {
	client *openai.Client
	name   string
	model  string
	focus  string
}

func NewDetector(client *openai.Client, name, model, focus string) *Detector {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Detector{client: client, name: name, model: model, focus: focus}
}

func (d *Detector) Name() string { return d.name }

type nerResponse struct {
	Entities []struct {
		Type       string  `json:"type"`
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
		Start      int     `json:"start"`
		End        int     `json:"end"`
	} `json:"entities"`
}

func (d *Detector) Detect(ctx context.Context, text string) ([]pii.Entity, error) {
	req := openai.ChatCompletionRequest{
		Model: d.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.NERSystemPrompt(d.focus)},
			{Role: openai.ChatMessageRoleUser, Content: prompt.NERUserPrompt(text)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(d.model, "o1") || strings.HasPrefix(d.model, "o3") || strings.HasPrefix(d.model, "o4") || strings.HasPrefix(d.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var parsed nerResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse NER response: %w", err)
	}

	out := make([]pii.Entity, 0, len(parsed.Entities))
	for _, e := range parsed.Entities {
		start, end := e.Start, e.End
		// Models occasionally return sloppy offsets; fall back to the
		// first occurrence of the claimed substring.
		if start < 0 || end <= start || end > len(text) || text[start:end] != e.Text {
			idx := strings.Index(text, e.Text)
			if idx < 0 || e.Text == "" {
				continue
			}
			start, end = idx, idx+len(e.Text)
		}
		out = append(out, pii.Entity{
			Kind:       e.Type,
			Text:       e.Text,
			Confidence: e.Confidence,
			Start:      start,
			End:        end,
			Source:     d.name,
		})
	}
	return out, nil
}
