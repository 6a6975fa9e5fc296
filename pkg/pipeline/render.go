package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/archlayout/pkg/diagram"
	"github.com/matzehuels/archlayout/pkg/engine/graphviz"
)

// Export encodes a pipeline result in each requested format.
//
// JSON and YAML hold the positioned diagram. DOT and SVG describe the nested
// graph handed to the engine, which is useful when a layout looks wrong: the
// DOT can be opened in any Graphviz viewer.
func (r *Runner) Export(ctx context.Context, result *Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = encode(result.Layout, diagram.FormatJSON)
		case FormatYAML:
			data, err = encode(result.Layout, diagram.FormatYAML)
		case FormatDOT:
			g := r.Planner.Graph(ctx, result.Document.Input(result.Direction))
			data = []byte(graphviz.ToDOT(g))
		case FormatSVG:
			g := r.Planner.Graph(ctx, result.Document.Input(result.Direction))
			data, err = graphviz.SVG(ctx, g)
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func encode(v any, f diagram.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := diagram.Write(&buf, v, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
