// Package graphviz implements [engine.Engine] on top of the Graphviz dot
// layered layout, compiled to WebAssembly and run in-process by go-graphviz.
//
// A layout round trip has three steps:
//
//  1. [ToDOT] writes the graph as DOT. Containers with children become
//     clusters, leaf sizes are fixed, and spacing options are converted from
//     pixels to inches.
//  2. [Render] runs dot and emits positioned DOT (xdot).
//  3. The positioned DOT is parsed with gographviz, and node centers and
//     cluster bounding boxes are converted to top-left corners relative to
//     each node's parent, with the y axis flipped to grow downward.
//
// Graphviz sizes clusters itself, so container sizes reflect their content
// plus the cluster margin.
package graphviz
