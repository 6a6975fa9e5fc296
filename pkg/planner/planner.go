package planner

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlayout/pkg/archimate"
	"github.com/matzehuels/archlayout/pkg/engine"
	"github.com/matzehuels/archlayout/pkg/observability"
)

// Input is one layout request.
type Input struct {
	Elements      []archimate.Element
	Relationships []archimate.Relationship
	// Direction defaults to DefaultDirection when empty.
	Direction Direction
}

// Result is a positioned diagram.
type Result struct {
	// Nodes in pre-order: every container precedes its children.
	Nodes []PositionedNode `json:"nodes" yaml:"nodes"`
	// Edges are the visible relationships, every endpoint present in Nodes.
	Edges []archimate.Relationship `json:"edges" yaml:"edges"`
	// Degraded is set when the engine failed and nodes were not positioned.
	Degraded bool `json:"degraded,omitempty" yaml:"degraded,omitempty"`

	EngineErr error `json:"-" yaml:"-"`
	// Conflicts lists structural relationships that were not applied.
	Conflicts []Conflict `json:"-" yaml:"-"`
	// Containers lists the layer container ids in precedence order.
	Containers []string `json:"-" yaml:"-"`
}

// Planner runs the layout pipeline against an engine. A Planner holds no
// per-call state and is safe for concurrent use.
type Planner struct {
	engine engine.Engine
	logger *log.Logger
}

// New returns a planner. A nil logger discards output.
func New(e engine.Engine, logger *log.Logger) *Planner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Planner{engine: e, logger: logger}
}

// Plan computes a hierarchical layout.
//
// The input is never modified. Plan never fails: when the engine returns an
// error or panics the result carries the unpositioned nodes, their parent
// links and the visible edges, with Degraded set.
func (p *Planner) Plan(ctx context.Context, in Input) *Result {
	start := time.Now()
	dir := in.Direction
	if dir == "" {
		dir = DefaultDirection
	}
	if !dir.Known() {
		p.logger.Debug("unknown direction, laying out with free ports", "direction", dir)
	}
	hooks := observability.Planner()
	hooks.OnPlanStart(ctx, string(dir), len(in.Elements), len(in.Relationships))

	st, asm, all := p.build(ctx, in, dir)

	byID := make(map[string]archimate.Element, len(all))
	order := make([]string, len(all))
	for i, e := range all {
		byID[e.ID] = e
		order[i] = e.ID
	}

	res := &Result{
		Edges:      asm.Visible,
		Conflicts:  st.Conflicts,
		Containers: asm.Containers,
	}

	laid, err := p.layout(ctx, asm.Graph)
	if err != nil {
		p.logger.Warn("layout engine failed, returning unpositioned diagram", "err", err)
		hooks.OnEngineFailure(ctx, err)
		res.Nodes = fallback(all, st.Hierarchy)
		res.Degraded = true
		res.EngineErr = err
	} else {
		res.Nodes = Flatten(laid, byID, order, st.Hierarchy)
	}

	p.logger.Debug("layout planned", "direction", dir, "nodes", len(res.Nodes),
		"edges", len(res.Edges), "containers", len(res.Containers), "adopted", st.Adopted,
		"elapsed", time.Since(start))
	hooks.OnPlanComplete(ctx, string(dir), len(res.Nodes), time.Since(start), res.Degraded)
	return res
}

// Graph returns the nested graph Plan would hand to the engine, without
// running it. Used to export the engine input for inspection.
func (p *Planner) Graph(ctx context.Context, in Input) *engine.Graph {
	dir := in.Direction
	if dir == "" {
		dir = DefaultDirection
	}
	_, asm, _ := p.build(ctx, in, dir)
	return asm.Graph
}

// build runs every stage before the engine call.
func (p *Planner) build(ctx context.Context, in Input, dir Direction) (Structure, Assembly, []archimate.Element) {
	elements := p.prepare(in.Elements)
	st := BuildHierarchy(elements, in.Relationships)
	for _, c := range st.Conflicts {
		p.logger.Debug("structural relationship ignored",
			"source", c.Relationship.Source, "target", c.Relationship.Target,
			"type", c.Relationship.Type, "reason", c.Reason)
		observability.Planner().OnConflict(ctx, string(c.Reason))
	}

	groups := SynthesizeLayers(elements, st.Hierarchy)
	all := slices.Concat(elements, groups.Synthesized)
	return st, Assemble(all, st.Hierarchy, groups, in.Relationships, st.Consumed, dir), all
}

// prepare copies and annotates the caller's elements. Duplicate ids keep the
// first occurrence; elements without an id are dropped.
func (p *Planner) prepare(in []archimate.Element) []archimate.Element {
	seen := make(map[string]bool, len(in))
	out := make([]archimate.Element, 0, len(in))
	for _, src := range in {
		if src.ID == "" {
			p.logger.Debug("element without id skipped", "label", src.Label)
			continue
		}
		if seen[src.ID] {
			p.logger.Debug("duplicate element id skipped", "id", src.ID)
			continue
		}
		seen[src.ID] = true

		e := src.Clone()
		if IsLayerGroupID(e.ID) {
			// A container from an earlier result, adopted by the caller.
			layer, _ := archimate.ParseLayer(e.ID[len(LayerGroupPrefix):])
			tmpl := NewLayerContainer(layer)
			e.LayerGroup = true
			if e.Type == "" {
				e.Type = tmpl.Type
			}
			if e.Layer == "" {
				e.Layer = tmpl.Layer
			}
		} else if e.Layer == "" {
			if l := archimate.LayerOf(e.Type); l != archimate.LayerOther {
				e.Layer = l.String()
			}
		}
		out = append(out, e)
	}
	return out
}

// layout calls the engine, converting panics and empty results into errors.
func (p *Planner) layout(ctx context.Context, g *engine.Graph) (out *engine.Graph, err error) {
	if p.engine == nil {
		return nil, engine.ErrNoResult
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("layout engine panic: %v", r)
		}
	}()
	out, err = p.engine.Layout(ctx, g)
	if err == nil && out == nil {
		err = engine.ErrNoResult
	}
	return out, err
}

// fallback places every element at its supplied position, or the origin,
// nested as the hierarchy says. Containers still precede their children.
func fallback(all []archimate.Element, h *Hierarchy) []PositionedNode {
	index := make(map[string]int, len(all))
	for i, e := range all {
		index[e.ID] = i
	}
	children := make(map[string][]string)
	var roots []string
	for _, e := range all {
		if parent, ok := h.Parent(e.ID); ok {
			if _, known := index[parent]; known {
				children[parent] = append(children[parent], e.ID)
				continue
			}
		}
		roots = append(roots, e.ID)
	}

	out := make([]PositionedNode, 0, len(all))
	visited := make(map[string]bool, len(all))
	var visit func(id, parent string)
	visit = func(id, parent string) {
		if visited[id] {
			return
		}
		visited[id] = true
		e := all[index[id]]
		var x, y float64
		if e.Position != nil {
			x, y = e.Position.X, e.Position.Y
		}
		size := ResolveSize(e)
		out = append(out, positioned(e, x, y, size.Width, size.Height, parent))
		for _, c := range children[id] {
			visit(c, id)
		}
	}
	for _, id := range roots {
		visit(id, "")
	}
	for _, e := range all {
		visit(e.ID, "")
	}
	return out
}
