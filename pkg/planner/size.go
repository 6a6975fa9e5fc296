package planner

import (
	"unicode/utf8"

	"github.com/matzehuels/archlayout/pkg/archimate"
)

// Default node dimensions in pixels.
const (
	LeafWidth       = 160.0
	LeafHeight      = 80.0
	ContainerWidth  = 300.0
	ContainerHeight = 200.0

	charWidth    = 8.0  // average glyph width
	labelPadding = 40.0 // horizontal padding around the label
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64
	Height float64
}

// EstimateSize returns the default size for a node, widened to fit a
// single-line label. Height never grows with the label.
func EstimateSize(label string, container bool) Size {
	s := Size{Width: LeafWidth, Height: LeafHeight}
	if container {
		s = Size{Width: ContainerWidth, Height: ContainerHeight}
	}
	if w := float64(utf8.RuneCountInString(label))*charWidth + labelPadding; w > s.Width {
		s.Width = w
	}
	return s
}

// ResolveSize returns the size the layout engine receives for e. Explicit
// positive Width and Height take precedence over the estimate independently.
func ResolveSize(e archimate.Element) Size {
	s := EstimateSize(e.DisplayLabel(), e.IsContainer())
	if e.Width != nil && *e.Width > 0 {
		s.Width = *e.Width
	}
	if e.Height != nil && *e.Height > 0 {
		s.Height = *e.Height
	}
	return s
}
