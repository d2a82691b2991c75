package nn

import (
	"fmt"
	"strings"

	"github.com/loom-ml/loom/internal/tensor"
)

// Path is a namespace cursor into a VarStore, used to build hierarchical
// variable names. Paths are immutable: Sub derives a new Path one segment
// deeper and leaves the receiver untouched, so a parent path can be handed
// to several submodules concurrently.
//
// A Path is meaningless without its store; it holds a reference to it and
// never snapshots the store's contents.
type Path struct {
	segments []string
	store    *VarStore
}

// Sub derives a new Path with name appended to this path's segments.
// Panics if name contains the separator character.
func (p *Path) Sub(name string) *Path {
	if strings.ContainsRune(name, Separator) {
		panic(fmt.Sprintf("sub name cannot contain %c: %s", Separator, name))
	}
	segments := make([]string, 0, len(p.segments)+1)
	segments = append(segments, p.segments...)
	segments = append(segments, name)
	return &Path{
		segments: segments,
		store:    p.store,
	}
}

// Device returns the device of the bound store.
func (p *Path) Device() tensor.Device {
	return p.store.device
}

// qualified computes the fully-qualified name for a variable created at
// this path. Panics if name contains the separator character.
func (p *Path) qualified(name string) string {
	if strings.ContainsRune(name, Separator) {
		panic(fmt.Sprintf("variable name cannot contain %c: %s", Separator, name))
	}
	if len(p.segments) == 0 {
		return name
	}
	return strings.Join(p.segments, string(Separator)) + string(Separator) + name
}

// Add registers t under this path with the given name and trainable flag
// and returns a handle sharing t's storage. If trainable, gradient
// tracking is enabled on the tensor before it is stored. Every variable
// in a store lives on the store's device; passing a tensor from another
// device is a caller bug and panics, like a separator in the name.
//
// If the fully-qualified name is already taken, the new variable is stored
// under "<name>__<n>" where n is the map size at insertion time. This
// keeps concurrent duplicate declarations from silently overwriting each
// other; it is deterministic for a given map size but can in principle
// collide again with another disambiguated name.
func (p *Path) Add(name string, t *tensor.Tensor, trainable bool) *tensor.Tensor {
	qualified := p.qualified(name)
	if t.Device() != p.store.device {
		panic(fmt.Sprintf("tensor device %s does not match store device %s", t.Device(), p.store.device))
	}

	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	if _, exists := p.store.variables[qualified]; exists {
		qualified = fmt.Sprintf("%s__%d", qualified, len(p.store.variables))
	}
	if trainable {
		t.SetRequiresGrad(true)
	}
	p.store.variables[qualified] = &variable{
		tensor:    t.ShallowClone(),
		trainable: trainable,
	}
	return t
}

// ZerosNoTrain creates a non-trainable variable filled with zeros.
func (p *Path) ZerosNoTrain(name string, dims tensor.Shape) *tensor.Tensor {
	z := tensor.Zeros(dims, tensor.Float32, p.Device())
	return p.Add(name, z, false)
}

// OnesNoTrain creates a non-trainable variable filled with ones.
func (p *Path) OnesNoTrain(name string, dims tensor.Shape) *tensor.Tensor {
	o := tensor.Ones(dims, tensor.Float32, p.Device())
	return p.Add(name, o, false)
}

// Var creates a trainable variable initialized per the given Init spec.
func (p *Path) Var(name string, dims tensor.Shape, init Init) *tensor.Tensor {
	v := initTensor(init, dims, p.Device())
	return p.Add(name, v, true)
}

// Zeros creates a trainable variable filled with zeros.
func (p *Path) Zeros(name string, dims tensor.Shape) *tensor.Tensor {
	return p.Var(name, dims, Const(0))
}

// Ones creates a trainable variable filled with ones.
func (p *Path) Ones(name string, dims tensor.Shape) *tensor.Tensor {
	return p.Var(name, dims, Const(1))
}

// RandnStandard creates a trainable variable drawn from N(0, 1).
func (p *Path) RandnStandard(name string, dims tensor.Shape) *tensor.Tensor {
	return p.Var(name, dims, Randn{Mean: 0, Stdev: 1})
}

// Randn creates a trainable variable drawn from N(mean, stdev²).
func (p *Path) Randn(name string, dims tensor.Shape, mean, stdev float64) *tensor.Tensor {
	return p.Var(name, dims, Randn{Mean: mean, Stdev: stdev})
}

// Uniform creates a trainable variable drawn uniformly from [lo, up).
func (p *Path) Uniform(name string, dims tensor.Shape, lo, up float64) *tensor.Tensor {
	return p.Var(name, dims, Uniform{Lo: lo, Up: up})
}

// KaimingUniform creates a trainable variable with Kaiming-uniform
// fan-based initialization.
func (p *Path) KaimingUniform(name string, dims tensor.Shape) *tensor.Tensor {
	return p.Var(name, dims, KaimingUniform{})
}

// VarCopy registers a trainable variable with t's shape and dtype and
// copies t's values into it under a NoGrad scope. Use it to adopt an
// externally computed value as a parameter with a known starting point.
func (p *Path) VarCopy(name string, t *tensor.Tensor) *tensor.Tensor {
	v := tensor.Zeros(t.Shape(), t.DType(), p.Device())
	v = p.Add(name, v, true)
	tensor.NoGrad(func() {
		v.MustCopyFrom(t)
	})
	return v
}
