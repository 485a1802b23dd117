// Package config loads loader settings. Sources apply in order: built-in
// defaults, an optional TOML file, a .env file, then process environment.
// Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Neo4jConfig locates the graph database. An empty Database uses the
// server default.
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// VisionConfig selects the image describer.
type VisionConfig struct {
	Provider string `toml:"provider"` // mistral, ollama or none
	Model    string `toml:"model"`    // empty selects the provider default
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Prompt   string `toml:"prompt"`
}

// OllamaConfig points at the Ollama server used for embeddings and the
// ollama describer.
type OllamaConfig struct {
	URL        string `toml:"url"`
	EmbedModel string `toml:"embed_model"`
}

// QdrantConfig enables the image description index.
type QdrantConfig struct {
	Addr       string `toml:"addr"` // empty disables the image index
	Collection string `toml:"collection"`
}

// NATSConfig enables publication of the run report.
type NATSConfig struct {
	URL     string `toml:"url"` // empty disables report publication
	Subject string `toml:"subject"`
}

// MetricsConfig sets where run metrics are written.
type MetricsConfig struct {
	File string `toml:"file"` // empty disables the textfile
}

// LogConfig sets the slog handler format and minimum level.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// TraceConfig selects the span exporter.
type TraceConfig struct {
	Exporter string `toml:"exporter"` // none, stdout or otlp
	Endpoint string `toml:"endpoint"`
	Insecure bool   `toml:"insecure"`
}

// Config is the full loader configuration.
type Config struct {
	DataDir string        `toml:"data_dir"`
	Neo4j   Neo4jConfig   `toml:"neo4j"`
	Vision  VisionConfig  `toml:"vision"`
	Ollama  OllamaConfig  `toml:"ollama"`
	Qdrant  QdrantConfig  `toml:"qdrant"`
	NATS    NATSConfig    `toml:"nats"`
	Metrics MetricsConfig `toml:"metrics"`
	Log     LogConfig     `toml:"log"`
	Trace   TraceConfig   `toml:"trace"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir: "data",
		Neo4j: Neo4jConfig{
			URI:  "bolt://localhost:7687",
			User: "neo4j",
		},
		Vision: VisionConfig{
			Provider: "mistral",
		},
		Ollama: OllamaConfig{
			URL:        "http://localhost:11434",
			EmbedModel: "nomic-embed-text",
		},
		Qdrant: QdrantConfig{Collection: "powergraph_images"},
		NATS:   NATSConfig{Subject: "powergraph.load.completed"},
		Log:    LogConfig{Level: "info", Format: "text"},
		Trace:  TraceConfig{Exporter: "none"},
	}
}

// Load returns Default overlaid with the TOML file at path. An empty path
// skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env-style files into the process
// environment without overriding variables already set. Missing files and
// empty paths are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from environment variables read via getenv.
// Unset or empty variables leave the current value.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.DataDir, "POWERGRAPH_DATA_DIR")
	set(&c.Neo4j.URI, "NEO4J_URI")
	set(&c.Neo4j.User, "NEO4J_USERNAME", "NEO4J_USER")
	set(&c.Neo4j.Password, "NEO4J_PASSWORD")
	set(&c.Neo4j.Database, "NEO4J_DATABASE")
	set(&c.Vision.APIKey, "MISTRAL_API_KEY")
	set(&c.Vision.Provider, "POWERGRAPH_VISION_PROVIDER")
	set(&c.Ollama.URL, "OLLAMA_URL")
	set(&c.Qdrant.Addr, "QDRANT_ADDR")
	set(&c.NATS.URL, "NATS_URL")
	set(&c.Metrics.File, "POWERGRAPH_METRICS_FILE")
	set(&c.Log.Level, "LOG_LEVEL")
	set(&c.Trace.Exporter, "POWERGRAPH_TRACE_EXPORTER")
	set(&c.Trace.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// Validate reports settings the loader cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.Neo4j.URI == "" {
		errs = append(errs, errors.New("neo4j.uri is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// NewLogger builds the slog logger described by c.Log, writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
