package splatsel

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func identityEnv() (model, gaussianTransform mgl32.Mat4) {
	return NewTransform().Mat4(), NewTransform().Mat4()
}

func TestMergeMasks_TruthTable(t *testing.T) {
	cases := []struct {
		op   SelectionOp
		want uint32
	}{
		{OpUnion, 0xEEEEEEEE},
		{OpIntersection, 0x22222222},
		{OpSymmetricDifference, 0xCCCCCCCC},
		{OpDifference, 0x44444444},
		{OpComplement, 0x99999999},
	}

	for _, c := range cases {
		source := NewMaskFromWords([]uint32{0xAAAAAAAA}, 32)
		dest := NewMaskFromWords([]uint32{0x66666666}, 32)

		MergeMasks(c.op, source, dest)

		if dest.Words()[0] != c.want {
			t.Errorf("%s: got %#x, want %#x", c.op, dest.Words()[0], c.want)
		}
		if source.Words()[0] != 0xAAAAAAAA {
			t.Errorf("%s mutated the source buffer", c.op)
		}
	}
}

func TestMergeInvocation_OutOfRangeIsNoOp(t *testing.T) {
	source := NewMaskFromWords([]uint32{0xFFFFFFFF}, 32)
	dest := NewMaskFromWords([]uint32{0x0F0F0F0F}, 32)

	MergeInvocation(OpUnion, 1, source, dest)
	MergeInvocation(OpUnion, 100, source, dest)

	if dest.Words()[0] != 0x0F0F0F0F {
		t.Errorf("out-of-range invocation mutated the destination: %#x", dest.Words()[0])
	}
}

func TestMergeMasks_UnknownOpIsNoOp(t *testing.T) {
	source := NewMaskFromWords([]uint32{0xFFFFFFFF}, 32)
	dest := NewMaskFromWords([]uint32{0x12345678}, 32)

	MergeMasks(SelectionOp(7), source, dest)

	if dest.Words()[0] != 0x12345678 {
		t.Errorf("unknown op mutated the destination: %#x", dest.Words()[0])
	}
}

func TestSelectShape_Boundary(t *testing.T) {
	model, gt := identityEnv()
	sphere := NewUnitSphere()
	gaussians := []Gaussian{
		{Pos: mgl32.Vec3{1.0, 0, 0}},    // exactly on the boundary
		{Pos: mgl32.Vec3{1.0001, 0, 0}}, // just outside
	}

	dest := NewMask(uint32(len(gaussians)))
	SelectShapeMask(OpUnion, sphere, model, gt, gaussians, dest)

	if !dest.Get(0) {
		t.Error("boundary point classified outside; the boundary is inclusive")
	}
	if dest.Get(1) {
		t.Error("point beyond the boundary classified inside")
	}
}

func TestSelectShape_OutOfRangeGuard(t *testing.T) {
	model, gt := identityEnv()
	sphere := NewUnitSphere()
	// 40 elements, 2 mask words; the second word has 24 don't-care bits
	gaussians := make([]Gaussian, 40)

	dest := NewMask(40)
	before := dest.Clone()

	// grid rounding produces invocations way past the element count; the
	// guard must reject them even though their word index is in range
	for _, i := range []uint32{40, 45, 63, 255} {
		SelectShapeInvocation(OpUnion, i, sphere, model, gt, gaussians, dest)
	}

	for w := range dest.Words() {
		if dest.Words()[w] != before.Words()[w] {
			t.Fatalf("out-of-range invocation mutated word %d", w)
		}
	}
}

// End-to-end scenario: 40 elements over 2 words, 10 inside a unit sphere
// at the origin. Select with union, then complement the result through
// the merge kernel.
func TestSelectShape_EndToEnd(t *testing.T) {
	model, gt := identityEnv()
	sphere := NewUnitSphere()

	gaussians := make([]Gaussian, 40)
	for i := range gaussians {
		if i < 10 {
			gaussians[i].Pos = mgl32.Vec3{float32(i) * 0.05, 0, 0}
		} else {
			gaussians[i].Pos = mgl32.Vec3{10 + float32(i), 0, 0}
		}
	}

	dest := NewMask(40)
	SelectShapeMask(OpUnion, sphere, model, gt, gaussians, dest)

	if dest.Count() != 10 {
		t.Fatalf("selected %d elements, want 10", dest.Count())
	}
	for i := uint32(0); i < 40; i++ {
		if dest.Get(i) != (i < 10) {
			t.Fatalf("element %d selection is %v", i, dest.Get(i))
		}
	}

	// complement via the merge kernel; source is unread
	MergeMasks(OpComplement, NewMask(40), dest)

	if dest.Count() != 30 {
		t.Fatalf("after complement %d elements selected, want 30", dest.Count())
	}
	for i := uint32(0); i < 40; i++ {
		if dest.Get(i) != (i >= 10) {
			t.Fatalf("element %d selection is %v after complement", i, dest.Get(i))
		}
	}
}

func TestSelectShape_IntersectionKeepsOnlyInside(t *testing.T) {
	model, gt := identityEnv()
	sphere := NewUnitSphere()

	gaussians := []Gaussian{
		{Pos: mgl32.Vec3{0, 0, 0}},   // inside
		{Pos: mgl32.Vec3{5, 0, 0}},   // outside
		{Pos: mgl32.Vec3{0.5, 0, 0}}, // inside
		{Pos: mgl32.Vec3{7, 0, 0}},   // outside
	}

	dest := NewMask(4)
	dest.Set(0)
	dest.Set(1) // outside, must be dropped
	dest.Set(3) // outside, must be dropped

	SelectShapeMask(OpIntersection, sphere, model, gt, gaussians, dest)

	if !dest.Get(0) || dest.Get(1) || dest.Get(2) || dest.Get(3) {
		t.Errorf("intersection result wrong: %04b", dest.Words()[0]&0xF)
	}
}

// Per-element updates are commutative: running the invocations in any
// order must give the same mask, and updates to word 0 must never touch
// word 1.
func TestSelectShape_OrderInsensitive(t *testing.T) {
	model, gt := identityEnv()
	sphere := NewUnitSphere()
	rng := rand.New(rand.NewSource(42))

	gaussians := make([]Gaussian, 64)
	for i := range gaussians {
		gaussians[i].Pos = mgl32.Vec3{rng.Float32() * 2, rng.Float32() * 2, rng.Float32() * 2}
	}

	for _, op := range []SelectionOp{OpUnion, OpIntersection, OpSymmetricDifference, OpDifference, OpComplement} {
		ordered := NewMaskFromWords([]uint32{0xF0F0F0F0, 0x0F0F0F0F}, 64)
		shuffled := ordered.Clone()

		for i := uint32(0); i < 64; i++ {
			SelectShapeInvocation(op, i, sphere, model, gt, gaussians, ordered)
		}

		perm := rng.Perm(64)
		for _, i := range perm {
			SelectShapeInvocation(op, uint32(i), sphere, model, gt, gaussians, shuffled)
		}

		if ordered.Words()[0] != shuffled.Words()[0] || ordered.Words()[1] != shuffled.Words()[1] {
			t.Errorf("%s: result depends on invocation order", op)
		}
	}
}

func TestSelectShape_CrossWordIndependence(t *testing.T) {
	model, gt := identityEnv()
	sphere := NewUnitSphere()

	// 64 elements; only elements of word 0 are inside the sphere
	gaussians := make([]Gaussian, 64)
	for i := range gaussians {
		if i < 32 {
			gaussians[i].Pos = mgl32.Vec3{0, 0, 0}
		} else {
			gaussians[i].Pos = mgl32.Vec3{5, 0, 0}
		}
	}

	dest := NewMaskFromWords([]uint32{0, 0xDEADBEEF}, 64)

	rng := rand.New(rand.NewSource(7))
	for _, i := range rng.Perm(32) {
		SelectShapeInvocation(OpUnion, uint32(i), sphere, model, gt, gaussians, dest)
	}

	if dest.Words()[0] != 0xFFFFFFFF {
		t.Errorf("word 0 is %#x, want all bits set", dest.Words()[0])
	}
	if dest.Words()[1] != 0xDEADBEEF {
		t.Errorf("word 1 changed to %#x while only word 0 elements were updated", dest.Words()[1])
	}
}

func TestSelectShape_UnknownOpIsNoOp(t *testing.T) {
	model, gt := identityEnv()
	sphere := NewUnitSphere()
	gaussians := []Gaussian{{Pos: mgl32.Vec3{0, 0, 0}}}

	dest := NewMask(1)
	SelectShapeMask(SelectionOp(11), sphere, model, gt, gaussians, dest)

	if dest.Get(0) {
		t.Error("unknown op mutated the destination")
	}
}

// Setting a bit through the containment kernel and reading it back
// through the merge kernel's source operand must address the same
// physical bit.
func TestKernels_SharedBitAddressing(t *testing.T) {
	model, gt := identityEnv()
	sphere := NewUnitSphere()

	const n = 40
	gaussians := make([]Gaussian, n)
	for i := range gaussians {
		gaussians[i].Pos = mgl32.Vec3{5, 0, 0} // all outside
	}
	gaussians[37].Pos = mgl32.Vec3{0, 0, 0} // element 37 inside

	source := NewMask(n)
	SelectShapeMask(OpUnion, sphere, model, gt, gaussians, source)

	dest := NewMask(n)
	for i := uint32(0); i < n; i++ {
		dest.Set(i)
	}
	MergeMasks(OpIntersection, source, dest)

	if dest.Count() != 1 || !dest.Get(37) {
		t.Errorf("kernels disagree on bit addressing: count %d", dest.Count())
	}
}
