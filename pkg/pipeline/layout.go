package pipeline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/matzehuels/archlayout/pkg/cache"
	"github.com/matzehuels/archlayout/pkg/diagram"
	"github.com/matzehuels/archlayout/pkg/observability"
	"github.com/matzehuels/archlayout/pkg/planner"
)

// cachedLayout is the cache envelope for a layout. The diagnostics the
// planner keeps out of its JSON output are stored alongside.
type cachedLayout struct {
	Result     *planner.Result    `json:"result"`
	Conflicts  []planner.Conflict `json:"conflicts,omitempty"`
	Containers []string           `json:"containers,omitempty"`
}

// LayoutWithCacheInfo plans doc, reusing a cached layout when one exists, and
// reports whether the cache was hit. Degraded results are never cached.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc *diagram.Document, opts Options) (*planner.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()
	direction := opts.DirectionFor(doc)
	key := r.Keyer.LayoutKey(diagram.Hash(doc), opts.LayoutKeyOpts(doc, r.EngineName))

	if !opts.Refresh {
		var cached cachedLayout
		err := cache.GetJSON(ctx, r.Cache, key, &cached)
		switch {
		case err == nil && cached.Result != nil:
			hooks.OnCacheHit(ctx, "layout")
			res := cached.Result
			res.Conflicts = cached.Conflicts
			res.Containers = cached.Containers
			r.Logger.Debug("layout cache hit", "key", key)
			return res, true, nil
		case err != nil && !errors.Is(err, cache.ErrCacheMiss):
			r.Logger.Warn("cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	res := r.Planner.Plan(ctx, doc.Input(direction))
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if res.Degraded {
		return res, false, nil
	}

	data, err := json.Marshal(cachedLayout{Result: res, Conflicts: res.Conflicts, Containers: res.Containers})
	if err != nil {
		r.Logger.Warn("cannot encode layout for cache", "err", err)
		return res, false, nil
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, r.TTL)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		hooks.OnCacheSet(ctx, "layout", len(data))
	}
	return res, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, doc *diagram.Document, opts Options) (*planner.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	return res, err
}
