package planner

import "github.com/matzehuels/archlayout/pkg/engine"

// Direction is the main flow direction of the layout.
type Direction string

// Known directions. Comparison is exact: only Down enables layer-ordering
// edges and fixed top/bottom ports.
const (
	Down  Direction = engine.DirectionDown
	Up    Direction = engine.DirectionUp
	Right Direction = engine.DirectionRight
	Left  Direction = engine.DirectionLeft
)

// DefaultDirection is used when the caller does not specify one.
const DefaultDirection = Down

// Vertical reports whether d is the top-down mode.
func (d Direction) Vertical() bool { return d == Down }

// Known reports whether d is one of the named directions.
func (d Direction) Known() bool {
	switch d {
	case Down, Up, Right, Left:
		return true
	}
	return false
}
