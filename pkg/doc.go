// Package pkg provides the libraries behind archlayout, the hierarchical
// layout planner for ArchiMate diagrams.
//
// # Overview
//
// archlayout turns a flat list of ArchiMate elements and relationships into
// a nested, positioned diagram: elements are grouped into one container per
// ArchiMate layer, structural relationships (composition, aggregation,
// assignment, realization) nest elements inside their owners, and a layered
// graph engine positions everything.
//
// # Architecture
//
// The typical data flow:
//
//	JSON/YAML document
//	         ↓
//	    [diagram] package (read + validate)
//	         ↓
//	    [planner] package (hierarchy, layer groups, engine graph)
//	         ↓
//	    [engine/graphviz] package (Graphviz dot layout)
//	         ↓
//	    positioned nodes + visible edges (JSON, YAML, DOT, SVG)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/archlayout/pkg/archimate"
//	    "github.com/matzehuels/archlayout/pkg/engine/graphviz"
//	    "github.com/matzehuels/archlayout/pkg/planner"
//	)
//
//	p := planner.New(graphviz.New(nil), nil)
//	res := p.Plan(context.Background(), planner.Input{
//	    Elements: []archimate.Element{
//	        {ID: "app", Label: "CRM", Type: "ApplicationComponent"},
//	        {ID: "fn", Label: "Billing", Type: "ApplicationFunction"},
//	    },
//	    Relationships: []archimate.Relationship{
//	        {ID: "r1", Source: "app", Target: "fn", Type: "composition"},
//	    },
//	})
//
// # Main Packages
//
// Domain:
//   - [archimate]: element and relationship types, layers, relationship classes
//   - [planner]: hierarchy building, layer grouping, sizing, assembly, flattening
//   - [engine]: the engine contract and the [engine/graphviz] implementation
//
// Orchestration and I/O:
//   - [diagram]: document formats, validation and hashing
//   - [pipeline]: load → layout → export with caching, shared by CLI and server
//   - [server]: HTTP API
//
// Infrastructure:
//   - [cache]: file, Redis, MongoDB and null caches with snappy compression
//   - [config]: TOML configuration
//   - [observability]: planner, cache and HTTP hooks, with a Prometheus backend
//   - [errors]: coded errors and input validation
//   - [buildinfo]: version information set at build time
package pkg
