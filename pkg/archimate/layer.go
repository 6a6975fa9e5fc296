package archimate

import "strings"

// Layer is an architectural layer. The numeric order of the constants is the
// top-to-bottom precedence used for vertical layouts.
type Layer int

const (
	LayerMotivation Layer = iota
	LayerStrategy
	LayerBusiness
	LayerApplication
	LayerTechnology
	LayerPhysical
	LayerImplementation
	LayerOther
	LayerComposite
)

var layerNames = [...]string{
	LayerMotivation:     "Motivation",
	LayerStrategy:       "Strategy",
	LayerBusiness:       "Business",
	LayerApplication:    "Application",
	LayerTechnology:     "Technology",
	LayerPhysical:       "Physical",
	LayerImplementation: "Implementation",
	LayerOther:          "Other",
	LayerComposite:      "Composite",
}

// Layers returns every layer in precedence order.
func Layers() []Layer {
	out := make([]Layer, 0, len(layerNames))
	for l := LayerMotivation; l <= LayerComposite; l++ {
		out = append(out, l)
	}
	return out
}

// String returns the display name, e.g. "Business".
func (l Layer) String() string {
	if l < LayerMotivation || l > LayerComposite {
		return layerNames[LayerOther]
	}
	return layerNames[l]
}

// Key returns the lowercase name used in synthetic ids, e.g. "business".
func (l Layer) Key() string { return strings.ToLower(l.String()) }

// Label returns the container caption, e.g. "Business Layer".
func (l Layer) Label() string { return l.String() + " Layer" }

// ParseLayer resolves a layer name case-insensitively. "Implementation &
// Migration" is accepted as an alias of Implementation since the generation
// backend emits that spelling.
func ParseLayer(s string) (Layer, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return LayerOther, false
	}
	if key == "implementation & migration" || key == "implementation and migration" {
		return LayerImplementation, true
	}
	for i, name := range layerNames {
		if strings.ToLower(name) == key {
			return Layer(i), true
		}
	}
	return LayerOther, false
}
