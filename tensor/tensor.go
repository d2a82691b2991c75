// Copyright 2026 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for Loom's tensor buffers.
//
// Tensors are reference-counted, device-tagged numeric buffers. Shallow
// clones share storage, which is what lets the variable store and its
// callers observe each other's in-place updates.
//
// Example:
//
//	w := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	v := w.ShallowClone()
//	w.AsFloat32()[0] = 1 // visible through v
package tensor

import (
	"github.com/loom-ml/loom/internal/tensor"
)

// Type aliases for the public API

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a reference-counted tensor handle with shared gradient state.
type Tensor = tensor.Tensor

// RawTensor is the low-level buffer representation underneath Tensor.
type RawTensor = tensor.RawTensor

// Creation functions

// New creates a zero-initialized tensor.
func New(shape Shape, dtype DataType, device Device) *Tensor {
	return tensor.New(shape, dtype, device)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType, device Device) *Tensor {
	return tensor.Zeros(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *Tensor {
	return tensor.Ones(shape, dtype, device)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64, dtype DataType, device Device) *Tensor {
	return tensor.Full(shape, value, dtype, device)
}

// FromFloat32 creates a Float32 tensor from a Go slice.
func FromFloat32(data []float32, shape Shape, device Device) (*Tensor, error) {
	return tensor.FromFloat32(data, shape, device)
}

// FromRaw wraps a RawTensor in a Tensor handle.
func FromRaw(raw *RawTensor) *Tensor {
	return tensor.FromRaw(raw)
}

// NewRaw creates a new raw tensor with the given shape, dtype, and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Gradient mode

// NoGrad runs fn with gradient tracking globally suspended, restoring the
// previous mode afterward even if fn panics.
func NoGrad(fn func()) {
	tensor.NoGrad(fn)
}

// GradEnabled reports whether gradient tracking is currently enabled.
func GradEnabled() bool {
	return tensor.GradEnabled()
}
