package engine

// Fixed layout parameters. These are part of the planner contract and are not
// caller-configurable; changing them changes visual output.
const (
	NodeNodeSpacing              = 100.0
	NodeNodeSpacingBetweenLayers = 100.0
	EdgeNodeSpacing              = 60.0
	EdgeEdgeSpacing              = 60.0
	GlobalPadding                = 60.0
)

// Strategy and routing identifiers.
const (
	RoutingOrthogonal        = "ORTHOGONAL"
	LayeringNetworkSimplex   = "NETWORK_SIMPLEX"
	PlacementBrandesKoepf    = "BRANDES_KOEPF"
	CrossingMinLayerSweep    = "LAYER_SWEEP"
	HierarchyIncludeChildren = "INCLUDE_CHILDREN"
	PortConstraintsFixedSide = "FIXED_SIDE"
	PortConstraintsFree      = "FREE"
)

// Layout directions understood by engines. Only DirectionDown has special
// meaning to the planner.
const (
	DirectionDown  = "DOWN"
	DirectionUp    = "UP"
	DirectionRight = "RIGHT"
	DirectionLeft  = "LEFT"
)

const (
	containerPaddingTop  = 60.0
	containerPaddingSide = 30.0
	leafPadding          = 10.0
)

// Options are the root-level layout parameters.
type Options struct {
	Direction                    string
	NodeNodeSpacing              float64
	NodeNodeSpacingBetweenLayers float64
	EdgeNodeSpacing              float64
	EdgeEdgeSpacing              float64
	EdgeRouting                  string
	Layering                     string
	NodePlacement                string
	CrossingMinimization         string
	HierarchyHandling            string
	PortConstraints              string
	Padding                      Padding
}

// DefaultOptions returns the fixed options for a layout direction. Only
// "DOWN" selects fixed top/bottom port sides; any other value leaves ports free.
func DefaultOptions(direction string) Options {
	ports := PortConstraintsFree
	if direction == DirectionDown {
		ports = PortConstraintsFixedSide
	}
	return Options{
		Direction:                    direction,
		NodeNodeSpacing:              NodeNodeSpacing,
		NodeNodeSpacingBetweenLayers: NodeNodeSpacingBetweenLayers,
		EdgeNodeSpacing:              EdgeNodeSpacing,
		EdgeEdgeSpacing:              EdgeEdgeSpacing,
		EdgeRouting:                  RoutingOrthogonal,
		Layering:                     LayeringNetworkSimplex,
		NodePlacement:                PlacementBrandesKoepf,
		CrossingMinimization:         CrossingMinLayerSweep,
		HierarchyHandling:            HierarchyIncludeChildren,
		PortConstraints:              ports,
		Padding: Padding{
			Top:    GlobalPadding,
			Left:   GlobalPadding,
			Bottom: GlobalPadding,
			Right:  GlobalPadding,
		},
	}
}

// ContainerPadding is the inner padding of container nodes; the larger top
// value leaves room for the caption.
func ContainerPadding() Padding {
	return Padding{
		Top:    containerPaddingTop,
		Left:   containerPaddingSide,
		Bottom: containerPaddingSide,
		Right:  containerPaddingSide,
	}
}

// LeafPadding is the inner padding of content nodes.
func LeafPadding() Padding {
	return Padding{Top: leafPadding, Left: leafPadding, Bottom: leafPadding, Right: leafPadding}
}
