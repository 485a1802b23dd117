// Package vision extracts text descriptions from images using a hosted
// multimodal model.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPrompt asks for a description suited to graph annotation.
const DefaultPrompt = "Describe this image in detail. List every product, piece of equipment, " +
	"visible text, figure and setting you can identify."

// Describer turns an image file into text segments.
type Describer interface {
	Describe(ctx context.Context, path string) ([]string, error)
}

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("vision: unknown provider")

// Config selects and configures a Describer.
type Config struct {
	Provider string // "mistral", "ollama" or "none"
	APIKey   string
	Model    string
	BaseURL  string
	Prompt   string
}

// New builds the Describer named by cfg.Provider. It returns a nil
// Describer for "none" or an empty provider.
func New(cfg Config) (Describer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "mistral", "pixtral":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("vision: mistral provider needs an API key")
		}
		return NewPixtral(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Prompt), nil
	case "ollama":
		return NewOllama(cfg.BaseURL, cfg.Model, cfg.Prompt), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// readImage loads path and returns its MIME type and base64 payload.
func readImage(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("vision: read image: %w", err)
	}
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(mt, "image/") {
		mt = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mt, ';'); i != -1 {
		mt = mt[:i]
	}
	return mt, base64.StdEncoding.EncodeToString(data), nil
}

// paragraphs splits text on blank lines, dropping empty pieces.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
