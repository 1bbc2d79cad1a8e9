package splatsel

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Little-endian POD packing helpers for uniform and storage buffers.
// Layouts must match the WGSL structs in the shaders package.

func u32ToBytes(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func mat4ToBytes(m mgl32.Mat4) []byte {
	buf := make([]byte, 64)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func vec3ToBytesPadded(v mgl32.Vec3, w float32) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Z()))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(w))
	return buf
}

func quatToBytes(q mgl32.Quat) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(q.V.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(q.V.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(q.V.Z()))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(q.W))
	return buf
}

func wordsToBytes(words []uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

func bytesToWords(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}
