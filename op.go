package splatsel

import "fmt"

// SelectionOp selects how a source selection is folded into a destination
// selection. The numeric values are shared with the WGSL kernels and must
// not be reordered.
//
// Codes outside the five named operations are a deliberate no-op: both
// kernels and the CPU reference leave the destination untouched. A closed
// enum at the host boundary makes an invalid code a host bug, and the
// kernels already promise silent no-op for out-of-range work units.
type SelectionOp uint32

const (
	// OpUnion sets destination bits present in the source.
	OpUnion SelectionOp = 0
	// OpIntersection keeps only destination bits also present in the source.
	OpIntersection SelectionOp = 1
	// OpSymmetricDifference flips destination bits present in the source.
	OpSymmetricDifference SelectionOp = 2
	// OpDifference clears destination bits present in the source.
	OpDifference SelectionOp = 3
	// OpComplement inverts the destination; the source is not read.
	OpComplement SelectionOp = 4
)

func (op SelectionOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	case OpSymmetricDifference:
		return "symmetric-difference"
	case OpDifference:
		return "difference"
	case OpComplement:
		return "complement"
	}
	return fmt.Sprintf("SelectionOp(%d)", uint32(op))
}

// Valid reports whether op is one of the five defined operations.
func (op SelectionOp) Valid() bool {
	return op <= OpComplement
}

// Apply combines one destination word with one source word. This is the
// single truth table backing the merge kernel; the WGSL switch in
// select_merge.wgsl mirrors it case for case.
func (op SelectionOp) Apply(dest, source uint32) uint32 {
	switch op {
	case OpUnion:
		return dest | source
	case OpIntersection:
		return dest & source
	case OpSymmetricDifference:
		return dest ^ source
	case OpDifference:
		return dest &^ source
	case OpComplement:
		return ^dest
	}
	return dest
}

// ApplyBit folds a single derived bit into a destination word, the
// restriction of Apply to a one-bit source operand. inside is the shape
// predicate result for the element owning the mask bit; the other 31 bits
// of the word are never disturbed. Mirrors the switch in select_shape.wgsl.
func (op SelectionOp) ApplyBit(dest, mask uint32, inside bool) uint32 {
	switch op {
	case OpUnion:
		if inside {
			return dest | mask
		}
	case OpIntersection:
		if !inside {
			return dest &^ mask
		}
	case OpSymmetricDifference:
		if inside {
			return dest ^ mask
		}
	case OpDifference:
		if inside {
			return dest &^ mask
		}
	case OpComplement:
		// flips regardless of the predicate
		return dest ^ mask
	}
	return dest
}
