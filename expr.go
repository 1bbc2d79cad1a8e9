package splatsel

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Expr is a selection expression tree. Leaves are existing selections
// (buffers, layers) or geometric selections (shapes); interior nodes are
// the set operations. Evaluating a tree records the necessary kernel
// dispatches into one command encoder.
type Expr interface {
	exprNode()
}

type UnionExpr struct{ L, R Expr }
type IntersectionExpr struct{ L, R Expr }
type SymmetricDifferenceExpr struct{ L, R Expr }
type DifferenceExpr struct{ L, R Expr }
type ComplementExpr struct{ E Expr }

// ShapeExpr denotes the set of elements contained in the shape.
type ShapeExpr struct{ Shape Shape }

// BufferExpr denotes the selection already held in a mask buffer.
type BufferExpr struct{ Buffer *MaskBuffer }

// LayerExpr denotes a named layer's selection, resolved via the LayerSet
// in the evaluation environment.
type LayerExpr struct{ Id LayerId }

func (UnionExpr) exprNode()               {}
func (IntersectionExpr) exprNode()        {}
func (SymmetricDifferenceExpr) exprNode() {}
func (DifferenceExpr) exprNode()          {}
func (ComplementExpr) exprNode()          {}
func (ShapeExpr) exprNode()               {}
func (BufferExpr) exprNode()              {}
func (LayerExpr) exprNode()               {}

func Union(l, r Expr) Expr               { return UnionExpr{L: l, R: r} }
func Intersection(l, r Expr) Expr        { return IntersectionExpr{L: l, R: r} }
func SymmetricDifference(l, r Expr) Expr { return SymmetricDifferenceExpr{L: l, R: r} }

// Difference builds l minus r.
func Difference(l, r Expr) Expr { return DifferenceExpr{L: l, R: r} }
func Complement(e Expr) Expr    { return ComplementExpr{E: e} }
func WithShape(s Shape) Expr    { return ShapeExpr{Shape: s} }
func FromBuffer(b *MaskBuffer) Expr {
	return BufferExpr{Buffer: b}
}
func FromLayer(id LayerId) Expr { return LayerExpr{Id: id} }

// exprOp returns the operation code of an interior node, or false for
// leaves.
func exprOp(e Expr) (SelectionOp, bool) {
	switch e.(type) {
	case UnionExpr:
		return OpUnion, true
	case IntersectionExpr:
		return OpIntersection, true
	case SymmetricDifferenceExpr:
		return OpSymmetricDifference, true
	case DifferenceExpr:
		return OpDifference, true
	case ComplementExpr:
		return OpComplement, true
	}
	return 0, false
}

// EvalEnv carries the per-scene buffers an evaluation needs.
type EvalEnv struct {
	Model             *ModelTransformBuffer
	GaussianTransform *GaussianTransformBuffer
	Gaussians         *GaussiansBuffer
	// Layers resolves LayerExpr leaves; may be nil when no layer leaves
	// appear in the tree.
	Layers *LayerSet
}

// Evaluate records the dispatches computing expr into dest. Binary nodes
// evaluate their left side into dest and their right side into a scratch
// buffer, then merge scratch into dest, so DifferenceExpr{L, R} yields
// L minus R.
func (e *SelectionEngine) Evaluate(encoder *wgpu.CommandEncoder, expr Expr, dest *MaskBuffer, env EvalEnv) error {
	switch n := expr.(type) {
	case BufferExpr:
		return e.copyMask(encoder, n.Buffer, dest)

	case LayerExpr:
		if env.Layers == nil {
			return fmt.Errorf("expression references layer %s but no layer set is provided", n.Id)
		}
		layer, ok := env.Layers.Layer(n.Id)
		if !ok {
			return fmt.Errorf("unknown selection layer %s", n.Id)
		}
		return e.copyMask(encoder, layer.Mask, dest)

	case ShapeExpr:
		if err := e.clearMask(encoder, dest); err != nil {
			return err
		}
		return e.SelectShape(encoder, OpUnion, n.Shape, env.Model, env.GaussianTransform, env.Gaussians, dest)

	case ComplementExpr:
		if err := e.Evaluate(encoder, n.E, dest, env); err != nil {
			return err
		}
		// source operand is unread for complement, but the bind group
		// still needs a distinct buffer
		scratch, err := NewMaskBuffer(e.device, "Scratch", dest.Len())
		if err != nil {
			return err
		}
		defer scratch.Release()
		return e.Merge(encoder, OpComplement, scratch, dest)
	}

	op, ok := exprOp(expr)
	if !ok {
		return fmt.Errorf("unsupported selection expression %T", expr)
	}

	var l, r Expr
	switch n := expr.(type) {
	case UnionExpr:
		l, r = n.L, n.R
	case IntersectionExpr:
		l, r = n.L, n.R
	case SymmetricDifferenceExpr:
		l, r = n.L, n.R
	case DifferenceExpr:
		l, r = n.L, n.R
	}

	// dest = L op R: R lands in scratch and is folded into dest holding L.
	scratch, err := NewMaskBuffer(e.device, "Scratch", dest.Len())
	if err != nil {
		return err
	}
	defer scratch.Release()

	if err := e.Evaluate(encoder, l, dest, env); err != nil {
		return err
	}
	if err := e.Evaluate(encoder, r, scratch, env); err != nil {
		return err
	}
	return e.Merge(encoder, op, scratch, dest)
}
