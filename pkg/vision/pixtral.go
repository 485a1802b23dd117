package vision

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// MistralBaseURL is Mistral's OpenAI-compatible endpoint.
	MistralBaseURL = "https://api.mistral.ai/v1"
	// PixtralModel is the default Mistral vision model.
	PixtralModel = "pixtral-12b-2409"
)

// PixtralDescriber describes images with Mistral's Pixtral model through
// the OpenAI-compatible chat completion API.
type PixtralDescriber struct {
	client *openai.Client
	model  string
	prompt string
}

// NewPixtral creates a PixtralDescriber. Empty model, baseURL and prompt
// take their defaults.
func NewPixtral(apiKey, model, baseURL, prompt string) *PixtralDescriber {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = MistralBaseURL
	config.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = PixtralModel
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &PixtralDescriber{
		client: openai.NewClientWithConfig(config),
		model:  model,
		prompt: prompt,
	}
}

// Describe sends the image as a data URL and returns one segment per
// non-empty choice.
func (d *PixtralDescriber) Describe(ctx context.Context, path string) ([]string, error) {
	mt, b64, err := readImage(path)
	if err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: d.prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: "data:" + mt + ";base64," + b64},
					},
				},
			},
		},
	}
	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision: pixtral: %w", err)
	}

	var segments []string
	for _, c := range resp.Choices {
		if s := strings.TrimSpace(c.Message.Content); s != "" {
			segments = append(segments, s)
		}
	}
	return segments, nil
}
