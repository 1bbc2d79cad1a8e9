package splatsel

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// LayerId identifies a named selection layer.
type LayerId string

func makeLayerId() LayerId {
	return LayerId(uuid.NewString())
}

// Layer is a persistent named selection over one Gaussian collection.
type Layer struct {
	Id   LayerId
	Name string
	Mask *MaskBuffer
}

// LayerSet manages named selection layers for one collection. All layers
// share the collection's element count so they can appear in expressions
// against any destination of the same size.
type LayerSet struct {
	device *wgpu.Device
	count  uint32
	layers map[LayerId]*Layer
}

// NewLayerSet returns an empty set for a collection of elementCount
// elements.
func NewLayerSet(device *wgpu.Device, elementCount uint32) *LayerSet {
	return &LayerSet{
		device: device,
		count:  elementCount,
		layers: make(map[LayerId]*Layer),
	}
}

// CreateLayer allocates a zeroed layer and registers it.
func (s *LayerSet) CreateLayer(name string) (*Layer, error) {
	mask, err := NewMaskBuffer(s.device, name, s.count)
	if err != nil {
		return nil, fmt.Errorf("failed to create layer %q: %w", name, err)
	}
	layer := &Layer{Id: makeLayerId(), Name: name, Mask: mask}
	s.layers[layer.Id] = layer
	return layer, nil
}

// Add registers an existing layer, assigning an id if it has none.
func (s *LayerSet) Add(layer *Layer) LayerId {
	if layer.Id == "" {
		layer.Id = makeLayerId()
	}
	s.layers[layer.Id] = layer
	return layer.Id
}

// Layer looks up a layer by id.
func (s *LayerSet) Layer(id LayerId) (*Layer, bool) {
	layer, ok := s.layers[id]
	return layer, ok
}

// Remove drops a layer and releases its GPU buffers.
func (s *LayerSet) Remove(id LayerId) {
	layer, ok := s.layers[id]
	if !ok {
		return
	}
	if layer.Mask != nil {
		layer.Mask.Release()
	}
	delete(s.layers, id)
}

// Len returns the number of layers.
func (s *LayerSet) Len() int { return len(s.layers) }

// ElementCount returns the collection size the layers are allocated for.
func (s *LayerSet) ElementCount() uint32 { return s.count }
