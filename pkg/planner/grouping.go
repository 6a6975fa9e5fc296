package planner

import (
	"slices"
	"strings"

	"github.com/matzehuels/archlayout/pkg/archimate"
)

// LayerGroupPrefix prefixes the ids of synthetic layer containers.
const LayerGroupPrefix = "LAYER_GROUP_"

// LayerGroupID returns the container id for a layer, e.g. "LAYER_GROUP_business".
func LayerGroupID(l archimate.Layer) string { return LayerGroupPrefix + l.Key() }

// IsLayerGroupID reports whether id names a layer container.
func IsLayerGroupID(id string) bool {
	if !strings.HasPrefix(id, LayerGroupPrefix) {
		return false
	}
	key := strings.TrimPrefix(id, LayerGroupPrefix)
	for _, l := range archimate.Layers() {
		if l.Key() == key {
			return true
		}
	}
	return false
}

// NewLayerContainer builds the synthetic container element for a layer.
func NewLayerContainer(l archimate.Layer) archimate.Element {
	return archimate.Element{
		ID:         LayerGroupID(l),
		Label:      l.Label(),
		Type:       l.Key() + " Layer",
		Layer:      l.String(),
		LayerGroup: true,
	}
}

// LayerGroups is the outcome of layer grouping.
type LayerGroups struct {
	// Layers lists every grouped layer in precedence order.
	Layers []archimate.Layer
	// ContainerIDs lists the container of each entry in Layers.
	ContainerIDs []string
	// Synthesized holds containers created by this call. Containers reused
	// from the input are not included.
	Synthesized []archimate.Element
}

// SynthesizeLayers wraps every ungrouped element in a container for its layer.
//
// Only root candidates take part: elements without a parent in h that are
// neither container-capable nor layer containers themselves. Candidates of
// the Other layer stay at the top level. One container is produced per layer
// that has at least one candidate; when elements already contains a node with
// the container id (a previous result adopted by the caller) that node is
// reused instead of creating a second one. Parent assignments are recorded in h.
func SynthesizeLayers(elements []archimate.Element, h *Hierarchy) LayerGroups {
	existing := make(map[string]bool, len(elements))
	for _, e := range elements {
		existing[e.ID] = true
	}

	members := make(map[archimate.Layer][]string)
	for _, e := range elements {
		if _, ok := h.Parent(e.ID); ok {
			continue
		}
		if e.IsContainer() || IsLayerGroupID(e.ID) {
			continue
		}
		l := e.ResolvedLayer()
		if l == archimate.LayerOther {
			continue
		}
		members[l] = append(members[l], e.ID)
	}

	var groups LayerGroups
	for l := range members {
		groups.Layers = append(groups.Layers, l)
	}
	slices.Sort(groups.Layers)

	for _, l := range groups.Layers {
		id := LayerGroupID(l)
		if !existing[id] {
			groups.Synthesized = append(groups.Synthesized, NewLayerContainer(l))
		}
		groups.ContainerIDs = append(groups.ContainerIDs, id)
		for _, child := range members[l] {
			// Cannot fail: children are unparented roots and the container is
			// never their descendant.
			_ = h.Assign(child, id)
		}
	}

	return groups
}
