package nn

import "github.com/loom-ml/loom/internal/tensor"

// Linear declares the parameters of a fully connected layer through a
// Path: a Kaiming-uniform "weight" of shape [outFeatures, inFeatures] and
// a zero "bias" of shape [outFeatures].
//
// Loom owns parameter naming, storage and persistence; the matrix math
// itself belongs to whatever compute backend consumes the handles.
//
// Example:
//
//	vs := nn.NewVarStore(tensor.CPU)
//	layer := nn.NewLinear(vs.Root().Sub("fc1"), 784, 128)
//	// registers "fc1|weight" and "fc1|bias" in vs
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *tensor.Tensor // [out_features, in_features]
	bias        *tensor.Tensor // [out_features]
}

// NewLinear declares a linear layer's parameters under path.
func NewLinear(path *Path, inFeatures, outFeatures int) *Linear {
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      path.KaimingUniform("weight", tensor.Shape{outFeatures, inFeatures}),
		bias:        path.Zeros("bias", tensor.Shape{outFeatures}),
	}
}

// Weight returns the weight tensor handle.
func (l *Linear) Weight() *tensor.Tensor {
	return l.weight
}

// Bias returns the bias tensor handle.
func (l *Linear) Bias() *tensor.Tensor {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
