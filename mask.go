package splatsel

import (
	"fmt"
	"math/bits"

	"github.com/cogentcore/webgpu/wgpu"
)

// Mask is a CPU-side selection bitset, one bit per element packed into
// 32-bit words. Bits at positions >= Len() are don't-care: the kernels
// never test them and callers must not rely on their value.
type Mask struct {
	words []uint32
	count uint32
}

// NewMask returns a zeroed mask for elementCount elements.
func NewMask(elementCount uint32) *Mask {
	return &Mask{
		words: make([]uint32, MaskWordCount(elementCount)),
		count: elementCount,
	}
}

// NewMaskFromWords wraps existing words, e.g. from MaskBuffer.Download.
func NewMaskFromWords(words []uint32, elementCount uint32) *Mask {
	if uint32(len(words)) < MaskWordCount(elementCount) {
		panic(fmt.Sprintf("mask needs %d words for %d elements, got %d",
			MaskWordCount(elementCount), elementCount, len(words)))
	}
	return &Mask{words: words, count: elementCount}
}

// Len returns the element count.
func (m *Mask) Len() uint32 { return m.count }

// Words exposes the backing words. Shared, not a copy.
func (m *Mask) Words() []uint32 { return m.words }

// Get reports whether element i is selected.
func (m *Mask) Get(i uint32) bool {
	w, bit := MaskBit(i)
	return m.words[w]&bit != 0
}

// Set marks element i as selected.
func (m *Mask) Set(i uint32) {
	w, bit := MaskBit(i)
	m.words[w] |= bit
}

// Clear unmarks element i.
func (m *Mask) Clear(i uint32) {
	w, bit := MaskBit(i)
	m.words[w] &^= bit
}

// Count returns the number of selected elements, ignoring don't-care bits
// beyond the element count.
func (m *Mask) Count() uint32 {
	var n uint32
	for i, w := range m.words {
		if uint32(i) == m.count/BitsPerWord {
			w &= (1 << (m.count % BitsPerWord)) - 1
		}
		n += uint32(bits.OnesCount32(w))
	}
	return n
}

// Clone returns an independent copy.
func (m *Mask) Clone() *Mask {
	words := make([]uint32, len(m.words))
	copy(words, m.words)
	return &Mask{words: words, count: m.count}
}

// MaskBuffer is a GPU selection bitset: a storage buffer holding
// ceil(elementCount/32) words, plus a staging buffer for readback.
// The storage buffer participates in dispatches as either the read-only
// source or the atomically written destination.
type MaskBuffer struct {
	data     *wgpu.Buffer
	download *wgpu.Buffer
	count    uint32
}

// NewMaskBuffer creates a zero-initialized mask buffer for elementCount
// elements.
func NewMaskBuffer(device *wgpu.Device, label string, elementCount uint32) (*MaskBuffer, error) {
	size := uint64(MaskWordCount(elementCount)) * 4

	data, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Mask %s Buffer", label),
		Size:  size,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mask buffer: %w", err)
	}

	dl, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Mask %s Download Buffer", label),
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		data.Release()
		return nil, fmt.Errorf("failed to create mask download buffer: %w", err)
	}

	return &MaskBuffer{data: data, download: dl, count: elementCount}, nil
}

// Len returns the element count.
func (b *MaskBuffer) Len() uint32 { return b.count }

// WordCount returns the number of 32-bit words in the buffer.
func (b *MaskBuffer) WordCount() uint32 { return MaskWordCount(b.count) }

// Buffer returns the storage buffer bound into kernel dispatches.
func (b *MaskBuffer) Buffer() *wgpu.Buffer { return b.data }

// Upload overwrites the buffer contents with the mask's words.
func (b *MaskBuffer) Upload(queue *wgpu.Queue, m *Mask) {
	queue.WriteBuffer(b.data, 0, wordsToBytes(m.words[:b.WordCount()]))
}

// PrepareDownload records the storage-to-staging copy on an encoder, for
// callers batching the copy with dispatch work.
func (b *MaskBuffer) PrepareDownload(encoder *wgpu.CommandEncoder) {
	encoder.CopyBufferToBuffer(b.data, 0, b.download, 0, b.download.GetSize())
}

// Download copies the selection back to the CPU and blocks until the
// staging buffer is mapped.
func (b *MaskBuffer) Download(device *wgpu.Device, queue *wgpu.Queue) (*Mask, error) {
	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download encoder: %w", err)
	}
	b.PrepareDownload(encoder)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to finish download encoder: %w", err)
	}
	queue.Submit(cmd)

	return b.MapDownload(device)
}

// MapDownload maps the staging buffer and decodes the words. The copy
// recorded by PrepareDownload must have been submitted.
func (b *MaskBuffer) MapDownload(device *wgpu.Device) (*Mask, error) {
	mapped := false
	b.download.MapAsync(wgpu.MapModeRead, 0, b.download.GetSize(), func(s wgpu.BufferMapAsyncStatus) {
		mapped = s == wgpu.BufferMapAsyncStatusSuccess
	})
	device.Poll(true, nil)

	if !mapped {
		return nil, fmt.Errorf("mask download mapping failed")
	}

	data := b.download.GetMappedRange(0, uint(b.download.GetSize()))
	words := bytesToWords(data)
	b.download.Unmap()

	return NewMaskFromWords(words, b.count), nil
}

// Release frees both GPU buffers.
func (b *MaskBuffer) Release() {
	b.data.Release()
	b.download.Release()
}
