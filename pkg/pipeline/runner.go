package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlayout/pkg/cache"
	"github.com/matzehuels/archlayout/pkg/diagram"
	"github.com/matzehuels/archlayout/pkg/engine"
	"github.com/matzehuels/archlayout/pkg/planner"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Planner    *planner.Planner
	EngineName string
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger

	// TTL is how long layouts stay cached. NewRunner sets [cache.TTLLayout].
	TTL time.Duration
}

// namer is implemented by engines that identify themselves for cache keys.
type namer interface {
	Name() string
}

// NewRunner creates a runner around a layout engine.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(e engine.Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	name := "custom"
	if n, ok := e.(namer); ok {
		name = n.Name()
	}
	return &Runner{
		Planner:    planner.New(e, logger),
		EngineName: name,
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		TTL:        cache.TTLLayout,
	}
}

// Execute lays out a validated document and exports the requested formats.
func (r *Runner) Execute(ctx context.Context, doc *diagram.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Document:     doc,
		DocumentHash: diagram.Hash(doc),
		Direction:    opts.DirectionFor(doc),
	}
	result.Stats.Elements = len(doc.Elements)
	result.Stats.Relationships = len(doc.Relationships)

	// Stage 1: Layout
	layoutStart := time.Now()
	res, hit, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.CacheInfo.LayoutHit = hit
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Nodes = len(res.Nodes)
	result.Stats.Edges = len(res.Edges)
	result.Stats.Containers = len(res.Containers)
	result.Stats.Conflicts = len(res.Conflicts)

	logLayout := r.Logger.Info
	if res.Degraded {
		logLayout = r.Logger.Warn
	}
	logLayout("computed layout",
		"nodes", result.Stats.Nodes,
		"containers", result.Stats.Containers,
		"degraded", res.Degraded,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Export
	exportStart := time.Now()
	artifacts, err := r.Export(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)

	r.Logger.Debug("exported outputs",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
