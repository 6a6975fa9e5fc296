package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlayout/pkg/config"
	"github.com/matzehuels/archlayout/pkg/engine"
	"github.com/matzehuels/archlayout/pkg/engine/graphviz"
	"github.com/matzehuels/archlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "archlayout"

	// defaultTimeout is the default per-document layout timeout (seconds).
	defaultTimeout = 60
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded from --config (or the default path) before any
	// command runs.
	Config *config.Config

	// engine overrides the Graphviz engine in tests.
	engine engine.Engine
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := *c.Config
	if noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	store, keyer, err := cfg.OpenCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}

	var e engine.Engine = graphviz.New(c.Logger)
	if c.engine != nil {
		e = c.engine
	}
	runner := pipeline.NewRunner(e, store, keyer, c.Logger)
	if cfg.Cache.TTL > 0 {
		runner.TTL = cfg.Cache.TTL
	}
	return runner, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutOptions builds pipeline options for a CLI run. Directions given on the
// command line are validated strictly.
func (c *CLI) layoutOptions(direction, formats string) pipeline.Options {
	opts := pipeline.Options{
		Direction:       direction,
		Formats:         parseFormats(formats),
		StrictDirection: direction != "",
		Logger:          c.Logger,
	}
	if opts.Direction == "" {
		opts.Direction = c.Config.Direction
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
