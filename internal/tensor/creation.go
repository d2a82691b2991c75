package tensor

import (
	"fmt"

	"github.com/x448/float16"
)

// New creates a zero-initialized tensor with the given shape, dtype and
// device tag.
//
// Example:
//
//	t := tensor.New(tensor.Shape{3, 4}, tensor.Float32, tensor.CPU)
func New(shape Shape, dtype DataType, device Device) *Tensor {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return FromRaw(raw)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType, device Device) *Tensor {
	// Buffers come back zero-initialized from make()
	return New(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *Tensor {
	return Full(shape, 1, dtype, device)
}

// Full creates a tensor filled with a specific value, converted to the
// tensor's dtype.
//
// Example:
//
//	t := tensor.Full(tensor.Shape{3, 3}, 3.14, tensor.Float32, tensor.CPU)
func Full(shape Shape, value float64, dtype DataType, device Device) *Tensor {
	t := New(shape, dtype, device)
	switch dtype {
	case Float32:
		data := t.raw.AsFloat32()
		v := float32(value)
		for i := range data {
			data[i] = v
		}
	case Float64:
		data := t.raw.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Float16:
		data := t.raw.AsFloat16()
		v := float16.Fromfloat32(float32(value))
		for i := range data {
			data[i] = v
		}
	case Int32:
		data := t.raw.AsInt32()
		v := int32(value)
		for i := range data {
			data[i] = v
		}
	case Int64:
		data := t.raw.AsInt64()
		v := int64(value)
		for i := range data {
			data[i] = v
		}
	case Uint8:
		data := t.raw.AsUint8()
		v := uint8(value)
		for i := range data {
			data[i] = v
		}
	case Bool:
		data := t.raw.AsBool()
		v := value != 0
		for i := range data {
			data[i] = v
		}
	default:
		panic(fmt.Sprintf("Full: unsupported dtype %s", dtype))
	}
	return t
}

// FromFloat32 creates a Float32 tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromFloat32(data []float32, shape Shape, device Device) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}
	t := New(shape, Float32, device)
	copy(t.raw.AsFloat32(), data)
	return t, nil
}
