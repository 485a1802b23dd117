package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Embedder turns text into a vector. *ollama.EmbedClient implements it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ImageIndex embeds image descriptions and stores them in a VectorStore.
// The collection is created on first use with the embedding's dimension.
type ImageIndex struct {
	store    *VectorStore
	embedder Embedder
	ready    bool
}

// NewImageIndex creates an ImageIndex.
func NewImageIndex(store *VectorStore, embedder Embedder) *ImageIndex {
	return &ImageIndex{store: store, embedder: embedder}
}

// PointID is the stable Qdrant point id of an image, so reloading the same
// file replaces its point.
func PointID(filename string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("image:"+filename)).String()
}

// IndexImage embeds description and upserts it under the image's point id.
func (x *ImageIndex) IndexImage(ctx context.Context, filename, path, description string) error {
	vec, err := x.embedder.Embed(ctx, description)
	if err != nil {
		return fmt.Errorf("semantic: embed %s: %w", filename, err)
	}
	if !x.ready {
		if err := x.store.EnsureCollection(ctx, len(vec)); err != nil {
			return err
		}
		x.ready = true
	}
	return x.store.Upsert(ctx, []VectorRecord{{
		ID:        PointID(filename),
		Embedding: vec,
		Payload: map[string]any{
			"filename":    filename,
			"path":        path,
			"description": description,
		},
	}})
}
