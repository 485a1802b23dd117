package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/greenpower/powergraph/engine/domain"
	"github.com/greenpower/powergraph/engine/graph"
)

// ErrNoDescription is reported when the describer returns no text.
var ErrNoDescription = errors.New("loader: describer returned no description")

// LoadProducts loads the products file.
func (l *Loader) LoadProducts(ctx context.Context) Outcome {
	out := l.traced(ctx, Products, func(ctx context.Context) Outcome {
		return l.loadDocument(ctx, Products, l.deps.Files.Products, l.deps.Files.ProductsPattern,
			func(ctx context.Context, doc *domain.Document, w *graph.Writer) error {
				return doc.EachProduct(func(p domain.Product) error {
					return w.SaveProduct(ctx, p)
				})
			})
	})
	l.state = ProductsLoaded
	return out
}

// LoadEvents loads trade shows, their sales, and powered events from the
// events file.
func (l *Loader) LoadEvents(ctx context.Context) Outcome {
	out := l.traced(ctx, Events, func(ctx context.Context) Outcome {
		return l.loadDocument(ctx, Events, l.deps.Files.Events, l.deps.Files.EventsPattern,
			func(ctx context.Context, doc *domain.Document, w *graph.Writer) error {
				err := doc.EachTradeShow(func(ts domain.TradeShow) error {
					return w.SaveTradeShow(ctx, ts)
				})
				if err != nil {
					return err
				}
				l.log.Info("loader: trade shows written", "count", doc.Count(domain.KeyTradeShows))
				return doc.EachEvent(func(ev domain.Event) error {
					return w.SaveEvent(ctx, ev)
				})
			})
	})
	l.state = EventsLoaded
	return out
}

// LoadRDProjects loads the R&D projects file.
func (l *Loader) LoadRDProjects(ctx context.Context) Outcome {
	out := l.traced(ctx, RDProjects, func(ctx context.Context) Outcome {
		return l.loadDocument(ctx, RDProjects, l.deps.Files.RDProjects, l.deps.Files.RDPattern,
			func(ctx context.Context, doc *domain.Document, w *graph.Writer) error {
				return doc.EachRDProject(func(p domain.RDProject) error {
					return w.SaveRDProject(ctx, p)
				})
			})
	})
	l.state = RDLoaded
	return out
}

// LoadImage describes the image file and stores it as an Image node. A
// missing file or an unconfigured describer skips the category.
func (l *Loader) LoadImage(ctx context.Context) Outcome {
	out := l.traced(ctx, Images, l.loadImage)
	l.state = ImageLoaded
	return out
}

func (l *Loader) loadImage(ctx context.Context) Outcome {
	path := l.deps.Files.Image
	out := Outcome{Category: Images, Path: path}

	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		out.Kind = Skipped
		return out
	}
	if l.deps.Describer == nil {
		l.log.Info("loader: no describer configured", "path", path)
		out.Kind = Skipped
		return out
	}

	segments, err := l.deps.Describer.Describe(ctx, path)
	if err != nil {
		out.Kind, out.Err = CollaboratorFailed, fmt.Errorf("loader: describe %s: %w", path, err)
		return out
	}
	if len(segments) == 0 {
		out.Kind, out.Err = CollaboratorFailed, ErrNoDescription
		return out
	}

	img := graph.Image{
		Filename:    filepath.Base(path),
		Path:        path,
		Description: strings.Join(segments, "\n"),
	}
	if err := l.deps.Graph.SaveImage(ctx, img); err != nil {
		out.Kind, out.Err = StoreFailed, err
		return out
	}
	out.Kind, out.Records = Loaded, 1

	if l.deps.Index != nil {
		if err := l.deps.Index.IndexImage(ctx, img.Filename, img.Path, img.Description); err != nil {
			l.log.Warn("loader: image index failed", "filename", img.Filename, "error", err)
		}
	}
	return out
}

type writeFunc func(ctx context.Context, doc *domain.Document, w *graph.Writer) error

// loadDocument resolves, reads and parses one data file, then writes its
// records on a single session.
func (l *Loader) loadDocument(ctx context.Context, c Category, expected, pattern string, write writeFunc) Outcome {
	out := Outcome{Category: c}

	res, err := l.deps.Resolver.Resolve(expected, pattern)
	if err != nil {
		out.Kind, out.Err = NotFound, err
		if !notFound(err) {
			out.Err = fmt.Errorf("loader: resolve %s: %w", pattern, err)
		}
		return out
	}
	out.Path, out.Substituted = res.Path, res.Substituted
	if res.Substituted {
		l.log.Warn("loader: expected file missing, using fallback",
			"category", c, "expected", res.Expected, "path", res.Path)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		out.Kind, out.Err = ParseFailed, fmt.Errorf("loader: read %s: %w", res.Path, err)
		return out
	}
	doc, err := domain.ParseDocument(data)
	if err != nil {
		out.Kind, out.Err = ParseFailed, fmt.Errorf("loader: %s: %w", res.Path, err)
		return out
	}

	n, err := l.deps.Graph.Write(ctx, func(w *graph.Writer) error {
		return write(ctx, doc, w)
	})
	out.Records = n
	if err != nil {
		out.Kind, out.Err = classify(err), err
		return out
	}
	out.Kind = Loaded
	return out
}

// classify maps a write-phase error to an outcome kind.
func classify(err error) Kind {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return InvalidRecord
	case errors.Is(err, domain.ErrInvalidDocument):
		return ParseFailed
	default:
		return StoreFailed
	}
}
