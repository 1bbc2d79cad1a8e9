package splatsel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CPU reference of the selection kernels, mirroring the WGSL invocation
// for invocation: same flat index flattening, same out-of-range guards,
// same per-word and per-bit operation tables. Useful as a software
// fallback and as the oracle for the kernel test suite.

// dispatchInvocations walks the full rounded workgroup grid the way a GPU
// dispatch would, including the overhang invocations past the logical
// count, which must no-op inside the kernel body.
func dispatchInvocations(invocations uint32, body func(flat uint32)) {
	x, y, z := DispatchSize(invocations)
	grid := [3]uint32{x, y, z}
	for wz := uint32(0); wz < z; wz++ {
		for wy := uint32(0); wy < y; wy++ {
			for wx := uint32(0); wx < x; wx++ {
				for local := uint32(0); local < WorkgroupSize; local++ {
					body(FlatInvocationIndex([3]uint32{wx, wy, wz}, grid, local))
				}
			}
		}
	}
}

// MergeInvocation performs one merge kernel work unit: word index w of
// source is folded into word w of dest under op. Indices beyond the
// destination word count no-op. The source mask is not read for
// OpComplement.
func MergeInvocation(op SelectionOp, w uint32, source, dest *Mask) {
	if w >= uint32(len(dest.words)) {
		return
	}
	var src uint32
	if op != OpComplement {
		src = source.words[w]
	}
	dest.words[w] = op.Apply(dest.words[w], src)
}

// MergeMasks runs the merge kernel over the whole destination, as one
// GPU dispatch would.
func MergeMasks(op SelectionOp, source, dest *Mask) {
	dispatchInvocations(uint32(len(dest.words)), func(w uint32) {
		MergeInvocation(op, w, source, dest)
	})
}

// SelectShapeInvocation performs one containment kernel work unit for
// element i. Indices beyond the element count no-op; the element count
// comes from the gaussians slice, never from the mask's word count.
func SelectShapeInvocation(
	op SelectionOp,
	i uint32,
	shape Shape,
	model, gaussianTransform mgl32.Mat4,
	gaussians []Gaussian,
	dest *Mask,
) {
	if i >= uint32(len(gaussians)) {
		return
	}

	worldPos := ToWorld(model, gaussianTransform, gaussians[i].Pos)
	shapePos := shape.InvTransform().Mul4x1(worldPos.Vec4(1)).Vec3()
	inside := shape.Contains(shapePos)

	w, bit := MaskBit(i)
	dest.words[w] = op.ApplyBit(dest.words[w], bit, inside)
}

// SelectShapeMask runs the containment kernel over every element, as one
// GPU dispatch would.
func SelectShapeMask(
	op SelectionOp,
	shape Shape,
	model, gaussianTransform mgl32.Mat4,
	gaussians []Gaussian,
	dest *Mask,
) {
	dispatchInvocations(uint32(len(gaussians)), func(i uint32) {
		SelectShapeInvocation(op, i, shape, model, gaussianTransform, gaussians, dest)
	})
}
