package splatsel

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Gaussian is one anisotropic splat record. Only the position is consumed
// by the selection kernels; rotation, scale and opacity ride along so the
// buffer layout matches the renderer's.
type Gaussian struct {
	Pos     mgl32.Vec3
	Rot     mgl32.Quat
	Scale   mgl32.Vec3
	Opacity float32
}

// gaussianStride is the packed size of one Gaussian on the GPU:
// vec4 pos + vec4 rot + vec4 (scale.xyz, opacity). Must match the
// Gaussian struct in select_shape.wgsl.
const gaussianStride = 48

// GaussiansBuffer is the read-only storage buffer of element records.
type GaussiansBuffer struct {
	buf   *wgpu.Buffer
	count uint32
}

// NewGaussiansBuffer packs and uploads the records.
func NewGaussiansBuffer(device *wgpu.Device, gaussians []Gaussian) (*GaussiansBuffer, error) {
	data := make([]byte, 0, len(gaussians)*gaussianStride)
	for _, g := range gaussians {
		data = append(data, vec3ToBytesPadded(g.Pos, 0)...)
		data = append(data, quatToBytes(g.Rot)...)
		data = append(data, vec3ToBytesPadded(g.Scale, g.Opacity)...)
	}

	buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Gaussians Buffer",
		Contents: data,
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gaussians buffer: %w", err)
	}

	return &GaussiansBuffer{buf: buf, count: uint32(len(gaussians))}, nil
}

// Len returns the element count.
func (b *GaussiansBuffer) Len() uint32 { return b.count }

// Buffer returns the underlying storage buffer.
func (b *GaussiansBuffer) Buffer() *wgpu.Buffer { return b.buf }

// Release frees the buffer.
func (b *GaussiansBuffer) Release() { b.buf.Release() }
