package graph

import (
	"context"
	"fmt"
)

// Image is an analyzed picture stored as an annotation node.
type Image struct {
	Filename    string
	Path        string
	Description string
}

const mergeImage = `MERGE (i:Image {filename: $filename})
	SET i.description = $description,
	    i.path = $path,
	    i.analyzed_at = datetime()`

// SaveImage upserts an Image node. analyzed_at is set by the server clock.
func (g *GraphStore) SaveImage(ctx context.Context, img Image) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	_, err := sess.Run(ctx, mergeImage, map[string]any{
		"filename":    img.Filename,
		"description": img.Description,
		"path":        img.Path,
	})
	if err != nil {
		return fmt.Errorf("graph: save image %s: %w", img.Filename, err)
	}
	return nil
}
