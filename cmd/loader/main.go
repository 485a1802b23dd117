// Command loader clears the Neo4j graph and reloads it from the JSON export
// files, then prints node and relationship counts. It exits non-zero when
// nothing could be loaded.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/greenpower/powergraph/engine/graph"
	"github.com/greenpower/powergraph/engine/loader"
	"github.com/greenpower/powergraph/engine/semantic"
	"github.com/greenpower/powergraph/engine/source"
	"github.com/greenpower/powergraph/pkg/config"
	"github.com/greenpower/powergraph/pkg/metrics"
	"github.com/greenpower/powergraph/pkg/natsutil"
	"github.com/greenpower/powergraph/pkg/ollama"
	"github.com/greenpower/powergraph/pkg/telemetry"
	"github.com/greenpower/powergraph/pkg/vision"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Completed is published on the completion subject after a run.
type Completed struct {
	Report loader.Report `json:"report"`
	Stats  loader.Stats  `json:"stats"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("loader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath     = fs.String("config", "", "TOML config file")
		envFile     = fs.String("env", ".env", "dotenv file")
		dataDir     = fs.String("dir", "", "directory holding the export files")
		neo4jURI    = fs.String("neo4j", "", "Neo4j bolt URI")
		provider    = fs.String("vision", "", "image describer: mistral, ollama or none")
		metricsFile = fs.String("metrics-file", "", "write Prometheus textfile metrics here")
		timeout     = fs.Duration("timeout", 10*time.Minute, "overall run timeout")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*cfgPath, *envFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	override(&cfg.DataDir, *dataDir)
	override(&cfg.Neo4j.URI, *neo4jURI)
	override(&cfg.Vision.Provider, *provider)
	override(&cfg.Metrics.File, *metricsFile)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	log := cfg.Log.NewLogger(stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Exporter: cfg.Trace.Exporter,
		Endpoint: cfg.Trace.Endpoint,
		Insecure: cfg.Trace.Insecure,
	}, "powergraph-loader", stderr)
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	}
	defer shutdown(context.Background())

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URI, neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Password, ""))
	if err != nil {
		log.Error("neo4j connect failed", "error", err)
		return 1
	}
	defer driver.Close(context.Background())
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Error("neo4j verify failed", "uri", cfg.Neo4j.URI, "error", err)
		return 1
	}
	log.Info("connected to Neo4j", "uri", cfg.Neo4j.URI)

	met := metrics.New()
	deps := loader.Deps{
		Graph:     graph.New(driver, cfg.Neo4j.Database),
		Resolver:  source.NewResolver(cfg.DataDir),
		Describer: newDescriber(cfg, log),
		Logger:    log,
		Metrics:   met,
		Files:     loader.DefaultFiles(cfg.DataDir),
	}
	if cfg.Qdrant.Addr != "" {
		vs, err := semantic.New(cfg.Qdrant.Addr, cfg.Qdrant.Collection)
		if err != nil {
			log.Warn("qdrant unavailable, image index disabled", "addr", cfg.Qdrant.Addr, "error", err)
		} else {
			defer vs.Close()
			deps.Index = semantic.NewImageIndex(vs, ollama.NewEmbedClient(cfg.Ollama.URL, cfg.Ollama.EmbedModel))
		}
	}

	ld := loader.New(deps)
	report := ld.LoadAll(ctx)
	stats, err := ld.Verify(ctx)
	if err != nil {
		log.Error("verification failed", "error", err)
	}
	printSummary(stdout, report, stats)

	if cfg.NATS.URL != "" {
		publish(ctx, log, cfg.NATS, Completed{Report: report, Stats: stats})
	}
	if cfg.Metrics.File != "" {
		if err := met.WriteFile(cfg.Metrics.File); err != nil {
			log.Error("metrics write failed", "file", cfg.Metrics.File, "error", err)
		}
	}

	if !report.AnyLoaded() {
		log.Error("no category loaded")
		return 1
	}
	return 0
}

func loadConfig(path, envFile string) (config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// newDescriber returns nil when no describer is configured or it cannot be
// built; the image category is then skipped.
func newDescriber(cfg config.Config, log *slog.Logger) loader.Describer {
	vc := vision.Config{
		Provider: cfg.Vision.Provider,
		APIKey:   cfg.Vision.APIKey,
		Model:    cfg.Vision.Model,
		BaseURL:  cfg.Vision.BaseURL,
		Prompt:   cfg.Vision.Prompt,
	}
	if vc.Provider == "ollama" && vc.BaseURL == "" {
		vc.BaseURL = cfg.Ollama.URL
	}
	d, err := vision.New(vc)
	if err != nil {
		log.Warn("image describer disabled", "provider", vc.Provider, "error", err)
		return nil
	}
	if d == nil {
		return nil
	}
	return d
}

func publish(ctx context.Context, log *slog.Logger, cfg config.NATSConfig, msg Completed) {
	nc, err := natsutil.Connect(cfg.URL, "powergraph-loader")
	if err != nil {
		log.Warn("nats connect failed, report not published", "url", cfg.URL, "error", err)
		return
	}
	defer nc.Close()
	if err := natsutil.Publish(ctx, nc, cfg.Subject, msg); err != nil {
		log.Warn("report publish failed", "subject", cfg.Subject, "error", err)
		return
	}
	log.Info("report published", "subject", cfg.Subject)
}

func printSummary(w io.Writer, report loader.Report, stats loader.Stats) {
	fmt.Fprintf(w, "load finished in %s\n", report.Duration.Round(time.Millisecond))
	for _, o := range report.Outcomes {
		line := fmt.Sprintf("  %-12s %-20s records=%d", o.Category, o.Kind, o.Records)
		if o.Substituted {
			line += " path=" + o.Path
		}
		if o.Err != nil {
			line += " error=" + o.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, "nodes:")
	for _, l := range stats.Labels() {
		fmt.Fprintf(w, "  %-14s %d\n", l, stats.Nodes[l])
	}
	fmt.Fprintln(w, "relationships:")
	for _, t := range stats.Types() {
		fmt.Fprintf(w, "  %-18s %d\n", t, stats.Relationships[t])
	}
}
