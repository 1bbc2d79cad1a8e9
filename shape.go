package splatsel

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind selects the containment predicate inside the shape kernel.
type ShapeKind uint32

const (
	// ShapeKindSphere tests against the unit ball in shape space.
	ShapeKindSphere ShapeKind = 0
)

// Shape is a volumetric containment test. The GPU side receives only the
// kind and the inverse world-to-shape matrix; Contains is the CPU mirror
// of the predicate, taking a point already in shape space. New shapes are
// new implementations of this interface plus a predicate case in the
// kernel; the merge and atomics logic stays untouched.
type Shape interface {
	Kind() ShapeKind
	// InvTransform maps world points into shape space. Callers guarantee
	// the shape's placement is invertible; the kernels propagate whatever
	// numeric result it produces.
	InvTransform() mgl32.Mat4
	// Contains reports whether a shape-space point is inside, boundary
	// inclusive.
	Contains(p mgl32.Vec3) bool
}

// Sphere is an ellipsoidal selection volume: the unit ball under the
// placement's scale, rotation and translation.
type Sphere struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Radii    mgl32.Vec3
}

// NewUnitSphere returns a radius-1 sphere at the world origin.
func NewUnitSphere() Sphere {
	return Sphere{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Radii:    mgl32.Vec3{1, 1, 1},
	}
}

func (s Sphere) Kind() ShapeKind { return ShapeKindSphere }

func (s Sphere) InvTransform() mgl32.Mat4 {
	return Transform{Position: s.Position, Rotation: s.Rotation, Scale: s.Radii}.InvMat4()
}

// Contains is the unit-ball test; a point at squared distance exactly 1
// is inside.
func (s Sphere) Contains(p mgl32.Vec3) bool {
	return p.Dot(p) <= 1.0
}

// shapePodBytes packs the shape uniform: kind u32, 12 bytes padding, then
// the inverse mat4. Must match the Shape struct in select_shape.wgsl.
func shapePodBytes(s Shape) []byte {
	data := make([]byte, 0, 80)
	data = append(data, u32ToBytes(uint32(s.Kind()))...)
	data = append(data, make([]byte, 12)...)
	data = append(data, mat4ToBytes(s.InvTransform())...)
	return data
}

// ShapeBuffer is the uniform buffer carrying one shape per dispatch.
type ShapeBuffer struct {
	buf *wgpu.Buffer
}

// NewShapeBuffer uploads the shape pod.
func NewShapeBuffer(device *wgpu.Device, s Shape) (*ShapeBuffer, error) {
	buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Shape Buffer",
		Contents: shapePodBytes(s),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shape buffer: %w", err)
	}
	return &ShapeBuffer{buf: buf}, nil
}

// Update rewrites the shape in place.
func (b *ShapeBuffer) Update(queue *wgpu.Queue, s Shape) {
	queue.WriteBuffer(b.buf, 0, shapePodBytes(s))
}

// Buffer returns the underlying uniform buffer.
func (b *ShapeBuffer) Buffer() *wgpu.Buffer { return b.buf }

// Release frees the buffer.
func (b *ShapeBuffer) Release() { b.buf.Release() }
