package nn

import (
	"math"
	"math/rand"

	"github.com/loom-ml/loom/internal/tensor"
)

// Init describes how a new variable's values are produced. The concrete
// specs are Const, Randn, Uniform and KaimingUniform.
type Init interface {
	isInit()
}

// Const fills the variable with a single value.
type Const float64

// Randn draws values from a normal distribution.
type Randn struct {
	Mean  float64
	Stdev float64
}

// Uniform draws values uniformly from [Lo, Up).
type Uniform struct {
	Lo float64
	Up float64
}

// KaimingUniform draws values uniformly from [-bound, bound) with
// bound = sqrt(3 / fanIn), where fanIn is the product of the shape's
// dimensions after the first.
type KaimingUniform struct{}

func (Const) isInit()          {}
func (Randn) isInit()          {}
func (Uniform) isInit()        {}
func (KaimingUniform) isInit() {}

// initTensor materializes a freshly allocated Float32 tensor of the given
// shape on the given device, populated per the init spec.
//
// Randomness comes from the shared math/rand source; the store offers no
// seeding surface.
func initTensor(init Init, dims tensor.Shape, device tensor.Device) *tensor.Tensor {
	switch spec := init.(type) {
	case Const:
		if spec == 0 {
			return tensor.Zeros(dims, tensor.Float32, device)
		}
		return tensor.Full(dims, float64(spec), tensor.Float32, device)
	case Randn:
		t := tensor.New(dims, tensor.Float32, device)
		data := t.AsFloat32()
		for i := range data {
			data[i] = float32(rand.NormFloat64()*spec.Stdev + spec.Mean)
		}
		return t
	case Uniform:
		return uniformTensor(dims, device, spec.Lo, spec.Up)
	case KaimingUniform:
		bound := math.Sqrt(3.0 / float64(dims.FanIn()))
		return uniformTensor(dims, device, -bound, bound)
	default:
		panic("unknown init spec")
	}
}

func uniformTensor(dims tensor.Shape, device tensor.Device, lo, up float64) *tensor.Tensor {
	t := tensor.New(dims, tensor.Float32, device)
	data := t.AsFloat32()
	for i := range data {
		data[i] = float32(lo + rand.Float64()*(up-lo))
	}
	return t
}
