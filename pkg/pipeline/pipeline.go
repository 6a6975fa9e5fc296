// Package pipeline runs the load → layout → export pipeline for archlayout.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// validation and output formats behave the same at every entry point.
//
// # Stages
//
//  1. Load: read a JSON or YAML document and validate it
//  2. Layout: plan the diagram, reusing a cached result when the document,
//     direction and engine are unchanged
//  3. Export: encode the result (JSON, YAML) or the engine input (DOT, SVG)
//
// # Usage
//
//	runner := pipeline.NewRunner(graphviz.New(logger), c, nil, logger)
//	doc, err := pipeline.Load("diagram.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, doc, pipeline.Options{Formats: []string{"json"}})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Artifacts["json"])
//
// Interactive callers that re-run layouts while the user edits use [Latest]
// to discard results that were overtaken by a newer run.
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlayout/pkg/buildinfo"
	"github.com/matzehuels/archlayout/pkg/cache"
	"github.com/matzehuels/archlayout/pkg/diagram"
	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/planner"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultDirection is used when neither the options nor the document set one.
const DefaultDirection = string(planner.DefaultDirection)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatYAML: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the per-run configuration of the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Direction overrides the document's direction when set.
	Direction string   `json:"direction,omitempty"`
	Formats   []string `json:"formats,omitempty"`
	// Refresh ignores cached layouts and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	// StrictDirection rejects directions other than DOWN, UP, RIGHT and
	// LEFT. The planner itself accepts any value.
	StrictDirection bool `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the validated input.
	Document *diagram.Document

	// DocumentHash is the content hash used in cache keys.
	DocumentHash string

	// Direction is the direction the layout was planned with.
	Direction string

	// Layout is the planned diagram.
	Layout *planner.Result

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Elements      int
	Relationships int
	Nodes         int
	Edges         int
	Containers    int
	Conflicts     int
	LayoutTime    time.Duration
	ExportTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, yaml, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the options.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills unset fields. Direction stays empty so the document's own
// direction can apply.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(f)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks formats and, when StrictDirection is set, the direction.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.StrictDirection && o.Direction != "" {
		return errors.ValidateDirection(o.Direction)
	}
	return nil
}

// DirectionFor resolves the direction for doc: the options' direction, then
// the document's, then [DefaultDirection].
func (o *Options) DirectionFor(doc *diagram.Document) string {
	switch {
	case o.Direction != "":
		return o.Direction
	case doc != nil && doc.Direction != "":
		return doc.Direction
	}
	return DefaultDirection
}

// LayoutKeyOpts returns cache key options for a layout of doc.
func (o *Options) LayoutKeyOpts(doc *diagram.Document, engineName string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Direction: o.DirectionFor(doc),
		Engine:    engineName,
		Version:   buildinfo.Version,
	}
}

func (o *Options) String() string {
	return fmt.Sprintf("direction=%q formats=%v refresh=%v", o.Direction, o.Formats, o.Refresh)
}
