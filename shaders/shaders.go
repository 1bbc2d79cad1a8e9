package shaders

import (
	_ "embed"
)

//go:embed select_common.wgsl
var commonWGSL string

//go:embed select_merge.wgsl
var mergeWGSL string

//go:embed select_shape.wgsl
var shapeWGSL string

// MergeWGSL is the full source of the mask merge kernel, entry point
// "merge_masks". One invocation per destination word.
var MergeWGSL = commonWGSL + mergeWGSL

// ShapeWGSL is the full source of the shape containment kernel, entry
// point "select_shape". One invocation per Gaussian.
var ShapeWGSL = commonWGSL + shapeWGSL
