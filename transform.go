package splatsel

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a position/rotation/scale placement. It backs both the
// model transform (scene placement in world space) and the Gaussian
// transform (collection-local frame adjustment); the kernels compose the
// two before the containment test.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform returns the identity placement.
func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Mat4 returns the forward matrix, M = T * R * S.
func (t Transform) Mat4() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// InvMat4 returns the inverse matrix from the inverted components,
// inv(M) = inv(S) * inv(R) * inv(T). Assumes non-zero scale and a unit
// rotation quaternion.
func (t Transform) InvMat4() mgl32.Mat4 {
	invScale := mgl32.Scale3D(1.0/t.Scale.X(), 1.0/t.Scale.Y(), 1.0/t.Scale.Z())
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// ToWorld places a Gaussian's local position into world space by composing
// the model and Gaussian transforms, exactly as to_world in
// select_shape.wgsl.
func ToWorld(model, gaussian mgl32.Mat4, local mgl32.Vec3) mgl32.Vec3 {
	p := model.Mul4(gaussian).Mul4x1(local.Vec4(1))
	return p.Vec3()
}

// TransformBuffer is a uniform mat4 buffer holding one placement matrix.
type TransformBuffer struct {
	buf *wgpu.Buffer
}

// ModelTransformBuffer holds the scene placement matrix.
type ModelTransformBuffer struct{ TransformBuffer }

// GaussianTransformBuffer holds the per-collection frame matrix.
type GaussianTransformBuffer struct{ TransformBuffer }

func newTransformBuffer(device *wgpu.Device, label string, t Transform) (TransformBuffer, error) {
	buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: mat4ToBytes(t.Mat4()),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return TransformBuffer{}, fmt.Errorf("failed to create %s: %w", label, err)
	}
	return TransformBuffer{buf: buf}, nil
}

// NewModelTransformBuffer uploads the model transform as a uniform.
func NewModelTransformBuffer(device *wgpu.Device, t Transform) (*ModelTransformBuffer, error) {
	tb, err := newTransformBuffer(device, "Model Transform Buffer", t)
	if err != nil {
		return nil, err
	}
	return &ModelTransformBuffer{tb}, nil
}

// NewGaussianTransformBuffer uploads the Gaussian transform as a uniform.
func NewGaussianTransformBuffer(device *wgpu.Device, t Transform) (*GaussianTransformBuffer, error) {
	tb, err := newTransformBuffer(device, "Gaussian Transform Buffer", t)
	if err != nil {
		return nil, err
	}
	return &GaussianTransformBuffer{tb}, nil
}

// Update rewrites the matrix in place.
func (b *TransformBuffer) Update(queue *wgpu.Queue, t Transform) {
	queue.WriteBuffer(b.buf, 0, mat4ToBytes(t.Mat4()))
}

// Buffer returns the underlying uniform buffer.
func (b *TransformBuffer) Buffer() *wgpu.Buffer { return b.buf }

// Release frees the buffer.
func (b *TransformBuffer) Release() { b.buf.Release() }
