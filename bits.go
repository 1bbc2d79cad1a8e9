package splatsel

// 32 selection bits per mask word, LSB first within the word.
const BitsPerWord = 32

// WorkgroupSize is the fixed compute workgroup width. Must match the
// @workgroup_size attribute in the WGSL kernels.
const WorkgroupSize = 256

// maxWorkgroupsPerDim is the WebGPU per-dimension dispatch limit.
const maxWorkgroupsPerDim = 65535

// MaskWordCount returns the number of 32-bit words needed to hold one
// selection bit per element.
func MaskWordCount(elementCount uint32) uint32 {
	return (elementCount + BitsPerWord - 1) / BitsPerWord
}

// MaskBit maps a global element index to the index of its mask word and
// the single-bit mask marking it within that word. The mapping is shared
// by both kernels (mask_word_index/mask_bit in select_common.wgsl).
func MaskBit(i uint32) (word uint32, mask uint32) {
	return i / BitsPerWord, 1 << (i % BitsPerWord)
}

// DispatchSize splits an invocation count into a 3D workgroup grid of
// WorkgroupSize-wide groups, respecting the per-dimension dispatch limit.
// The grid may round up; kernels guard on the flat index.
func DispatchSize(invocations uint32) (x, y, z uint32) {
	groups := (invocations + WorkgroupSize - 1) / WorkgroupSize
	if groups == 0 {
		groups = 1
	}

	x = groups
	y, z = 1, 1
	if x > maxWorkgroupsPerDim {
		y = (x + maxWorkgroupsPerDim - 1) / maxWorkgroupsPerDim
		x = maxWorkgroupsPerDim
	}
	if y > maxWorkgroupsPerDim {
		z = (y + maxWorkgroupsPerDim - 1) / maxWorkgroupsPerDim
		y = maxWorkgroupsPerDim
	}
	return x, y, z
}

// FlatInvocationIndex collapses 3D dispatch coordinates into the flat
// element index, exactly as flat_invocation_index in select_common.wgsl.
// workgroupID is the per-group id, grid the dispatch size, localIndex the
// invocation's index within its group.
func FlatInvocationIndex(workgroupID [3]uint32, grid [3]uint32, localIndex uint32) uint32 {
	workgroupIndex := (workgroupID[2]*grid[1]+workgroupID[1])*grid[0] + workgroupID[0]
	return workgroupIndex*WorkgroupSize + localIndex
}
