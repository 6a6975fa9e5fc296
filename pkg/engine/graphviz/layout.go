package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archlayout/pkg/engine"
	"github.com/matzehuels/archlayout/pkg/errors"
)

// Engine lays out graphs with the Graphviz dot algorithm, running in-process.
// It is safe for concurrent use; every call gets its own Graphviz instance.
type Engine struct {
	logger *log.Logger
}

// New returns a Graphviz engine. A nil logger discards output.
func New(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{logger: logger}
}

// Name identifies the engine in cache keys and logs.
func (e *Engine) Name() string { return "graphviz-dot" }

// Layout implements [engine.Engine].
func (e *Engine) Layout(ctx context.Context, g *engine.Graph) (*engine.Graph, error) {
	if g == nil {
		return nil, engine.ErrNoResult
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(g.Children) == 0 {
		return g.Clone(), nil
	}

	dot, syms := toDOT(g)
	e.logger.Debug("graphviz input", "bytes", len(dot), "clusters", len(syms.cluster), "nodes", len(syms.node))

	positioned, err := Render(ctx, dot, graphviz.XDOT)
	if err != nil {
		return nil, err
	}

	boxes, err := parseBoxes(string(positioned), syms)
	if err != nil {
		return nil, err
	}

	out := g.Clone()
	missing := place(out, boxes)
	if missing > 0 {
		e.logger.Debug("graphviz omitted nodes", "count", missing)
	}
	return out, nil
}

// Render runs the dot layout on DOT source and writes it in the given format.
// With [graphviz.XDOT] the result is DOT again, with pos, width, height and
// bb attributes filled in; [graphviz.SVG] gives a preview image.
func Render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutEngine, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutEngine, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutEngine, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

// SVG lays out a graph and renders it as an SVG preview.
func SVG(ctx context.Context, g *engine.Graph) ([]byte, error) {
	return Render(ctx, ToDOT(g), graphviz.SVG)
}

// box is a top-left anchored rectangle in root coordinates, y growing down.
type box struct {
	X, Y, W, H float64
}

// parseBoxes reads node and cluster geometry from positioned DOT and converts
// it from Graphviz's bottom-left origin to a top-left origin.
func parseBoxes(positioned string, syms *symbols) (map[string]box, error) {
	ast, err := gographviz.ParseString(positioned)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutEngine, err, "read positioned DOT")
	}
	g := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutEngine, err, "analyse positioned DOT")
	}

	root, err := parseFloats(g.Attrs["bb"], 4)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutEngine, err, "graph bounding box")
	}
	left, top := root[0], root[3]

	boxes := make(map[string]box, len(syms.byName))
	for name, n := range g.Nodes.Lookup {
		id, ok := syms.byName[name]
		if !ok {
			continue
		}
		pos, err := parseFloats(n.Attrs["pos"], 2)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeLayoutEngine, err, "position of %s", id)
		}
		w, errW := parseFloat(n.Attrs["width"])
		h, errH := parseFloat(n.Attrs["height"])
		if errW != nil || errH != nil {
			return nil, errors.New(errors.ErrCodeLayoutEngine, "size of %s missing", id)
		}
		w, h = w*pointsPerInch, h*pointsPerInch
		boxes[id] = box{X: pos[0] - w/2 - left, Y: top - pos[1] - h/2, W: w, H: h}
	}

	for name, sg := range g.SubGraphs.SubGraphs {
		id, ok := syms.byName[name]
		if !ok {
			continue
		}
		bb, err := parseFloats(sg.Attrs["bb"], 4)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeLayoutEngine, err, "bounding box of %s", id)
		}
		boxes[id] = box{X: bb[0] - left, Y: top - bb[3], W: bb[2] - bb[0], H: bb[3] - bb[1]}
	}

	return boxes, nil
}

// place writes parent-relative positions into the tree and returns the
// number of nodes Graphviz did not report. Those keep a zero offset. Sizes
// only grow: the planner's estimate is a minimum.
func place(g *engine.Graph, boxes map[string]box) int {
	missing := 0
	var walk func(nodes []*engine.Node, originX, originY float64, seen map[*engine.Node]bool)
	walk = func(nodes []*engine.Node, originX, originY float64, seen map[*engine.Node]bool) {
		for _, n := range nodes {
			if seen[n] {
				continue
			}
			seen[n] = true
			b, ok := boxes[n.ID]
			if !ok {
				missing++
				n.X, n.Y = 0, 0
				walk(n.Children, originX, originY, seen)
				continue
			}
			n.X, n.Y = b.X-originX, b.Y-originY
			n.Width, n.Height = max(b.W, n.Width), max(b.H, n.Height)
			walk(n.Children, b.X, b.Y, seen)
		}
	}
	walk(g.Children, -g.Options.Padding.Left, -g.Options.Padding.Top, make(map[*engine.Node]bool))
	return missing
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.Trim(s, `"`), 64)
}

// parseFloats splits a quoted, comma-separated attribute such as
// "27,18" or "0,0,340,212".
func parseFloats(s string, want int) ([]float64, error) {
	s = strings.Trim(s, `"`)
	s = strings.TrimSuffix(s, "!")
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("want %d coordinates, got %q", want, s)
	}
	out := make([]float64, want)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
