package tensor

import (
	"fmt"
	"sync/atomic"
)

// gradState is the gradient-tracking flag shared by every shallow clone of
// a tensor. Keeping it out of the Tensor handle itself means that toggling
// gradient tracking through one handle (e.g. VarStore.Freeze) is observed
// by every other handle to the same storage.
type gradState struct {
	requiresGrad atomic.Bool
}

// Tensor pairs a reference-counted RawTensor buffer with shared gradient
// state. Handles are cheap to clone; clones alias the same storage.
//
// Example:
//
//	w := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	v := w.ShallowClone()
//	w.AsFloat32()[0] = 1 // visible through v as well
type Tensor struct {
	raw  *RawTensor
	grad *gradState
}

// FromRaw wraps a RawTensor in a Tensor handle with fresh (disabled)
// gradient state. The buffer is adopted, not copied.
func FromRaw(raw *RawTensor) *Tensor {
	return &Tensor{
		raw:  raw,
		grad: &gradState{},
	}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.raw.Shape()
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.raw.DType()
}

// Device returns the tensor's compute device.
func (t *Tensor) Device() Device {
	return t.raw.Device()
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
func (t *Tensor) Raw() *RawTensor {
	return t.raw
}

// AsFloat32 returns a typed view of the underlying storage.
// Panics if the dtype is not Float32.
func (t *Tensor) AsFloat32() []float32 {
	return t.raw.AsFloat32()
}

// ShallowClone returns a second handle to the same underlying buffer and
// gradient state. Mutations through either handle are visible through both.
func (t *Tensor) ShallowClone() *Tensor {
	return &Tensor{
		raw:  t.raw.Clone(),
		grad: t.grad,
	}
}

// SetRequiresGrad toggles gradient tracking for this tensor's storage and
// returns the tensor for chaining. The change is visible through every
// shallow clone.
func (t *Tensor) SetRequiresGrad(requires bool) *Tensor {
	t.grad.requiresGrad.Store(requires)
	return t
}

// RequiresGrad reports whether gradient tracking is enabled for this
// tensor's storage.
func (t *Tensor) RequiresGrad() bool {
	return t.grad.requiresGrad.Load()
}

// CopyFrom overwrites this tensor's values with src's values, in place.
// Shape and dtype must match. The write lands in the shared buffer, so it
// is visible through every outstanding handle.
func (t *Tensor) CopyFrom(src *Tensor) error {
	return t.raw.CopyValuesFrom(src.raw)
}

// MustCopyFrom is CopyFrom for call sites where the shapes are equal by
// construction. Panics on mismatch.
func (t *Tensor) MustCopyFrom(src *Tensor) {
	if err := t.CopyFrom(src); err != nil {
		panic(fmt.Sprintf("tensor copy failed: %v", err))
	}
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.raw.DType(), t.raw.Shape(), t.raw.Device())
}
