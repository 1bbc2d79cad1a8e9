package splatsel

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/splat3d/splatsel/shaders"
)

// SelectionEngine owns the two selection compute pipelines and records
// their dispatches. It holds no per-dispatch state: every Merge or
// SelectShape call binds fresh uniform buffers, and all persistent
// selection state lives in the MaskBuffers owned by the caller.
type SelectionEngine struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	mergePipeline *wgpu.ComputePipeline
	shapePipeline *wgpu.ComputePipeline

	log Logger
}

// NewSelectionEngine compiles the kernels and builds both pipelines.
// A nil logger disables logging.
func NewSelectionEngine(device *wgpu.Device, log Logger) (*SelectionEngine, error) {
	if log == nil {
		log = NewNopLogger()
	}

	e := &SelectionEngine{
		device: device,
		queue:  device.GetQueue(),
		log:    log,
	}

	var err error
	e.mergePipeline, err = createComputePipeline(device, "MaskMerge", shaders.MergeWGSL, "merge_masks")
	if err != nil {
		return nil, err
	}
	e.shapePipeline, err = createComputePipeline(device, "ShapeSelect", shaders.ShapeWGSL, "select_shape")
	if err != nil {
		return nil, err
	}

	log.Infof("Selection pipelines created (workgroup size %d)", WorkgroupSize)
	return e, nil
}

func createComputePipeline(device *wgpu.Device, name, code, entryPoint string) (*wgpu.ComputePipeline, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name + "Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s shader module: %w", name, err)
	}
	defer shaderModule.Release()

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: name + "Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shaderModule,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline: %w", name, err)
	}
	return pipeline, nil
}

func (e *SelectionEngine) newOpBuffer(op SelectionOp) (*wgpu.Buffer, error) {
	buf, err := e.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Selection Op Buffer",
		Contents: u32ToBytes(uint32(op)),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create op buffer: %w", err)
	}
	return buf, nil
}

// Merge records a set-algebra pass folding source into dest, one work
// unit per 32-bit word. The mapping of work units to words is one to one,
// so no two invocations write the same word.
func (e *SelectionEngine) Merge(encoder *wgpu.CommandEncoder, op SelectionOp, source, dest *MaskBuffer) error {
	if !op.Valid() {
		return fmt.Errorf("invalid selection op %d", uint32(op))
	}
	if source.WordCount() != dest.WordCount() {
		return fmt.Errorf("mask word count mismatch: source %d, dest %d",
			source.WordCount(), dest.WordCount())
	}

	opBuf, err := e.newOpBuffer(op)
	if err != nil {
		return err
	}

	layout := e.mergePipeline.GetBindGroupLayout(0)
	defer layout.Release()

	bindGroup, err := e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Mask Merge Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: opBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: source.Buffer(), Size: wgpu.WholeSize},
			{Binding: 2, Buffer: dest.Buffer(), Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create merge bind group: %w", err)
	}

	x, y, z := DispatchSize(dest.WordCount())
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(e.mergePipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(x, y, z)
	pass.End()

	e.log.Debugf("Merge %s over %d words (%dx%dx%d workgroups)", op, dest.WordCount(), x, y, z)
	return nil
}

// SelectShape records a containment pass: each Gaussian's world position
// is tested against the shape and the resulting bit is folded into dest
// under op. Work units beyond the Gaussian count no-op.
func (e *SelectionEngine) SelectShape(
	encoder *wgpu.CommandEncoder,
	op SelectionOp,
	shape Shape,
	model *ModelTransformBuffer,
	gaussianTransform *GaussianTransformBuffer,
	gaussians *GaussiansBuffer,
	dest *MaskBuffer,
) error {
	if !op.Valid() {
		return fmt.Errorf("invalid selection op %d", uint32(op))
	}
	if dest.Len() != gaussians.Len() {
		return fmt.Errorf("mask sized for %d elements, gaussians hold %d",
			dest.Len(), gaussians.Len())
	}

	opBuf, err := e.newOpBuffer(op)
	if err != nil {
		return err
	}
	shapeBuf, err := NewShapeBuffer(e.device, shape)
	if err != nil {
		return err
	}

	layout0 := e.shapePipeline.GetBindGroupLayout(0)
	defer layout0.Release()
	layout1 := e.shapePipeline.GetBindGroupLayout(1)
	defer layout1.Release()

	bindGroup0, err := e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Shape Select Bind Group 0",
		Layout: layout0,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: opBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: dest.Buffer(), Size: wgpu.WholeSize},
			{Binding: 2, Buffer: model.Buffer(), Size: wgpu.WholeSize},
			{Binding: 3, Buffer: gaussianTransform.Buffer(), Size: wgpu.WholeSize},
			{Binding: 4, Buffer: gaussians.Buffer(), Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shape bind group 0: %w", err)
	}

	bindGroup1, err := e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Shape Select Bind Group 1",
		Layout: layout1,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: shapeBuf.Buffer(), Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shape bind group 1: %w", err)
	}

	x, y, z := DispatchSize(gaussians.Len())
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(e.shapePipeline)
	pass.SetBindGroup(0, bindGroup0, nil)
	pass.SetBindGroup(1, bindGroup1, nil)
	pass.DispatchWorkgroups(x, y, z)
	pass.End()

	e.log.Debugf("SelectShape %s over %d gaussians (%dx%dx%d workgroups)", op, gaussians.Len(), x, y, z)
	return nil
}

// clearMask records a copy of zeroes over dest. New wgpu buffers read as
// zero, so a fresh buffer serves as the source.
func (e *SelectionEngine) clearMask(encoder *wgpu.CommandEncoder, dest *MaskBuffer) error {
	size := dest.data.GetSize()
	zero, err := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Mask Zero Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("failed to create zero buffer: %w", err)
	}
	encoder.CopyBufferToBuffer(zero, 0, dest.data, 0, size)
	return nil
}

// copyMask records a buffer-to-buffer copy of the selection words.
func (e *SelectionEngine) copyMask(encoder *wgpu.CommandEncoder, source, dest *MaskBuffer) error {
	if source.WordCount() != dest.WordCount() {
		return fmt.Errorf("mask word count mismatch: source %d, dest %d",
			source.WordCount(), dest.WordCount())
	}
	encoder.CopyBufferToBuffer(source.data, 0, dest.data, 0, dest.data.GetSize())
	return nil
}
