// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about layout planning, cache operations, and served HTTP
// requests. The prometheus subpackage ships a ready-made implementation.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPlannerHooks(&myPlannerHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Planner().OnPlanStart(ctx, direction, len(elements), len(relationships))
//	// ... plan ...
//	observability.Planner().OnPlanComplete(ctx, direction, nodeCount, duration, degraded)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Planner Hooks
// =============================================================================

// PlannerHooks receives events from the layout planner.
type PlannerHooks interface {
	// OnPlanStart is called before a layout is planned.
	OnPlanStart(ctx context.Context, direction string, elements, relationships int)

	// OnPlanComplete is called once a layout has been produced. degraded is
	// true when the engine failed and the fallback result was returned.
	OnPlanComplete(ctx context.Context, direction string, nodes int, duration time.Duration, degraded bool)

	// OnEngineFailure records a layout engine error or panic.
	OnEngineFailure(ctx context.Context, err error)

	// OnConflict records a structural relationship that was not applied.
	OnConflict(ctx context.Context, reason string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnError records a request that failed with an error.
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPlannerHooks is a no-op implementation of PlannerHooks.
type NoopPlannerHooks struct{}

func (NoopPlannerHooks) OnPlanStart(context.Context, string, int, int)                    {}
func (NoopPlannerHooks) OnPlanComplete(context.Context, string, int, time.Duration, bool) {}
func (NoopPlannerHooks) OnEngineFailure(context.Context, error)                           {}
func (NoopPlannerHooks) OnConflict(context.Context, string)                               {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	plannerHooks PlannerHooks = NoopPlannerHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetPlannerHooks registers custom planner hooks.
// This should be called once at application startup before any layout runs.
func SetPlannerHooks(h PlannerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		plannerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Planner returns the registered planner hooks.
func Planner() PlannerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return plannerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	plannerHooks = NoopPlannerHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
