// Package treeviz draws the member tree of a runtime object.
//
// [Build] walks an object with the same classifier the emitter uses, so the
// tree shows exactly what a stub would contain: classes are expanded down to
// the nesting cap, everything else is a leaf. [ToDOT] turns the tree into
// Graphviz DOT source and [RenderSVG] lays it out with an embedded Graphviz.
//
//	tree, err := treeviz.Build(ctx, classifier, mod, "machine", 2)
//	dot := treeviz.ToDOT(tree, treeviz.Options{Detailed: true})
//	svg, err := treeviz.RenderSVG(dot)
//
// PDF and PNG output convert the SVG with rsvg-convert, which must be on
// PATH.
package treeviz
