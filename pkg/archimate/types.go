package archimate

import "strings"

// normalizeType lowercases a type name and strips word separators so that
// "BusinessActor", "business actor" and "business_actor" compare equal.
func normalizeType(t string) string {
	var b strings.Builder
	b.Grow(len(t))
	for _, r := range strings.ToLower(t) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// typeLayers maps normalized element types to their layer. It is built once
// and never written afterwards.
var typeLayers = buildTypeLayers(map[Layer][]string{
	LayerMotivation: {
		"resource", "capability", "goal", "objective", "principle", "constraint",
		"requirement", "stakeholder", "driver", "assessment", "outcome", "meaning", "value",
	},
	LayerStrategy: {"course of action", "strategy", "tactic", "value stream"},
	LayerBusiness: {
		"business service", "business process", "business function",
		"business interaction", "business event", "business object", "representation",
		"contract", "business role", "business actor", "business collaboration",
		"business interface", "product",
	},
	LayerApplication: {
		"application service", "application function", "application interaction",
		"application event", "data object", "application component",
		"application collaboration", "application interface", "application process",
	},
	LayerTechnology: {
		"technology service", "technology function", "technology interaction",
		"technology event", "artifact", "technology component",
		"technology collaboration", "technology interface", "technology process",
		"node", "device", "system software", "path", "communication network",
	},
	LayerPhysical:       {"physical element", "equipment", "facility", "distribution network", "material"},
	LayerImplementation: {"work package", "deliverable", "implementation event", "plateau", "gap"},
	LayerComposite:      {"group", "grouping", "junction", "location"},
})

func buildTypeLayers(sets map[Layer][]string) map[string]Layer {
	m := make(map[string]Layer)
	for layer, types := range sets {
		for _, t := range types {
			m[normalizeType(t)] = layer
		}
	}
	return m
}

// LayerOf infers the layer of an element type. Unknown or empty types map to
// LayerOther.
func LayerOf(elementType string) Layer {
	if l, ok := typeLayers[normalizeType(elementType)]; ok {
		return l
	}
	return LayerOther
}

// containerVocabulary lists the type fragments that make an element able to
// contain other elements. Matching is by substring on normalized names.
var containerVocabulary = []string{
	"group", "grouping", "zone", "location",
	"layer", "plateau", "gap",
	"device", "node", "facility", "equipment",
	"systemsoftware", "path",
	"composite",
}

// IsContainerType reports whether elements of this type may contain others.
func IsContainerType(elementType string) bool {
	t := normalizeType(elementType)
	if t == "" {
		return false
	}
	for _, v := range containerVocabulary {
		if strings.Contains(t, v) {
			return true
		}
	}
	return false
}
