// Package loader sequences a full load of the export files into the graph:
// clear, indexes, products, events, R&D projects, then the image annotation.
// A failing category is logged and reported; it never stops the next one.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/greenpower/powergraph/engine/graph"
	"github.com/greenpower/powergraph/engine/source"
	"github.com/greenpower/powergraph/pkg/fn"
	"github.com/greenpower/powergraph/pkg/metrics"
)

// Store is the graph the loader writes to. *graph.GraphStore implements it.
type Store interface {
	Clear(ctx context.Context) error
	EnsureIndexes(ctx context.Context) (int, error)
	Write(ctx context.Context, fn func(w *graph.Writer) error) (int, error)
	SaveImage(ctx context.Context, img graph.Image) error
	NodeCounts(ctx context.Context) (map[string]int64, error)
	RelationshipCounts(ctx context.Context) (map[string]int64, error)
}

// Resolver locates input files. *source.Resolver implements it.
type Resolver interface {
	Resolve(expected, pattern string) (source.Resolution, error)
}

// Describer turns an image into text segments.
type Describer interface {
	Describe(ctx context.Context, path string) ([]string, error)
}

// ImageIndexer stores an image description for similarity search.
type ImageIndexer interface {
	IndexImage(ctx context.Context, filename, path, description string) error
}

// Files names the expected input files and the fallback glob pattern used
// when an expected data file is missing. The image has no fallback.
type Files struct {
	Products        string
	ProductsPattern string
	Events          string
	EventsPattern   string
	RDProjects      string
	RDPattern       string
	Image           string
}

// DefaultFiles returns the conventional file names under dir.
func DefaultFiles(dir string) Files {
	return Files{
		Products:        filepath.Join(dir, "greenpower_products.json"),
		ProductsPattern: "*product*.json",
		Events:          filepath.Join(dir, "greenpower_events.json"),
		EventsPattern:   "*event*.json",
		RDProjects:      filepath.Join(dir, "greenpower_rd_innovations.json"),
		RDPattern:       "*rd*.json",
		Image:           filepath.Join(dir, "exemple.jpg"),
	}
}

// Deps holds the collaborators of a Loader. Describer, Index and Metrics
// are optional.
type Deps struct {
	Graph     Store
	Resolver  Resolver
	Describer Describer
	Index     ImageIndexer
	Logger    *slog.Logger
	Metrics   *metrics.Registry
	Files     Files
}

// Loader runs the load sequence. It is not safe for concurrent use.
type Loader struct {
	deps  Deps
	log   *slog.Logger
	reg   *metrics.Registry
	state State
}

// New creates a Loader.
func New(deps Deps) *Loader {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	reg := deps.Metrics
	if reg == nil {
		reg = metrics.New()
	}
	return &Loader{deps: deps, log: log, reg: reg}
}

// State returns the last stage the loader completed.
func (l *Loader) State() State { return l.state }

// LoadAll clears the graph and loads every category in order. Failures are
// recorded in the report; LoadAll itself never fails.
func (l *Loader) LoadAll(ctx context.Context) Report {
	rep := Report{StartedAt: time.Now()}
	l.state = Idle

	if err := l.deps.Graph.Clear(ctx); err != nil {
		l.log.Error("loader: clear failed", "error", err)
		rep.ClearErr = err.Error()
	} else {
		l.log.Info("loader: graph cleared")
	}
	l.state = Cleared

	created, err := l.deps.Graph.EnsureIndexes(ctx)
	if err != nil {
		// Index failures only cost lookup speed.
		l.log.Warn("loader: some indexes not created", "created", created, "error", err)
		rep.IndexErr = err.Error()
	} else {
		l.log.Info("loader: indexes ready", "count", created)
	}
	l.state = IndexesCreated

	rep.Outcomes = append(rep.Outcomes,
		l.LoadProducts(ctx),
		l.LoadEvents(ctx),
		l.LoadRDProjects(ctx),
		l.LoadImage(ctx),
	)
	l.state = Done

	rep.Duration = time.Since(rep.StartedAt)
	l.reg.Gauge("powergraph_categories_loaded", "Categories loaded by the last run.").Set(int64(rep.Loaded()))
	l.log.Info("loader: load finished",
		"loaded", rep.Loaded(),
		"categories", len(rep.Outcomes),
		"duration", rep.Duration,
	)
	return rep
}

// Verify returns node counts by label and relationship counts by type.
func (l *Loader) Verify(ctx context.Context) (Stats, error) {
	nodes, err := l.deps.Graph.NodeCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	rels, err := l.deps.Graph.RelationshipCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Nodes: nodes, Relationships: rels}, nil
}

// traced runs one category load inside a span and records its outcome.
func (l *Loader) traced(ctx context.Context, c Category, load func(context.Context) Outcome) Outcome {
	var out Outcome
	stage := fn.TracedStage[Category, Outcome]("loader."+string(c), func(ctx context.Context, _ Category) fn.Result[Outcome] {
		out = load(ctx)
		if out.Err != nil {
			return fn.Err[Outcome](out.Err)
		}
		return fn.Ok(out)
	})

	start := time.Now()
	stage(ctx, c)
	l.reg.Histogram(metrics.WithLabels("powergraph_category_duration_seconds", "category", string(c)),
		"Time spent loading one category.", nil).Since(start)
	l.record(out)
	return out
}

func (l *Loader) record(o Outcome) {
	l.reg.Counter(metrics.WithLabels("powergraph_category_outcomes_total", "category", string(o.Category), "kind", o.Kind.String()),
		"Category loads by outcome.").Inc()
	l.reg.Counter(metrics.WithLabels("powergraph_records_written_total", "category", string(o.Category)),
		"Records written to the graph.").Add(int64(o.Records))

	attrs := []any{"category", o.Category, "kind", o.Kind, "records", o.Records}
	if o.Path != "" {
		attrs = append(attrs, "path", o.Path)
	}
	switch o.Kind {
	case Loaded:
		l.log.Info("loader: category loaded", attrs...)
	case Skipped:
		l.log.Info("loader: category skipped", attrs...)
	case NotFound:
		l.log.Warn("loader: no input file", append(attrs, "error", o.Err)...)
	default:
		l.log.Error("loader: category failed", append(attrs, "error", o.Err)...)
	}
}

// notFound reports whether err means the input is absent.
func notFound(err error) bool {
	return errors.Is(err, source.ErrNotFound)
}
