package vision

import (
	"context"
	"fmt"

	"github.com/greenpower/powergraph/pkg/ollama"
)

// DefaultOllamaModel is a multimodal model commonly available in Ollama.
const DefaultOllamaModel = "llava"

// OllamaDescriber describes images with a local multimodal Ollama model.
type OllamaDescriber struct {
	client *ollama.Client
	model  string
	prompt string
}

// NewOllama creates an OllamaDescriber.
func NewOllama(baseURL, model, prompt string) *OllamaDescriber {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &OllamaDescriber{client: ollama.New(baseURL), model: model, prompt: prompt}
}

// Describe returns the model's answer split into paragraphs.
func (d *OllamaDescriber) Describe(ctx context.Context, path string) ([]string, error) {
	_, b64, err := readImage(path)
	if err != nil {
		return nil, err
	}
	text, err := d.client.Generate(ctx, ollama.GenerateRequest{
		Model:  d.model,
		Prompt: d.prompt,
		Images: []string{b64},
	})
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	return paragraphs(text), nil
}
