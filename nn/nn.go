// Copyright 2026 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for Loom's variable store: a
// thread-safe, device-scoped registry of named parameter tensors with
// hierarchical naming, trainable tracking, freezing and persistence.
//
// Example:
//
//	vs := nn.NewVarStore(tensor.CPU)
//	enc := vs.Root().Sub("encoder")
//	w := enc.KaimingUniform("weight", tensor.Shape{128, 784})
//	_ = vs.Save("weights.loom")
package nn

import (
	"github.com/loom-ml/loom/internal/nn"
	"github.com/loom-ml/loom/internal/tensor"
)

// Separator splits path segments in fully-qualified variable names.
const Separator = nn.Separator

// VarStore is a device-scoped registry of named variables.
type VarStore = nn.VarStore

// Path is a namespace cursor used to build hierarchical variable names.
type Path = nn.Path

// NotFoundError reports a store variable missing from a loaded bundle.
type NotFoundError = nn.NotFoundError

// NewVarStore creates a new, empty variable store on the given device.
func NewVarStore(device tensor.Device) *VarStore {
	return nn.NewVarStore(device)
}

// Initialization specs

// Init describes how a new variable's values are produced.
type Init = nn.Init

// Const fills the variable with a single value.
type Const = nn.Const

// Randn draws values from a normal distribution.
type Randn = nn.Randn

// Uniform draws values uniformly from [Lo, Up).
type Uniform = nn.Uniform

// KaimingUniform draws values with the fan-based Kaiming-uniform bound.
type KaimingUniform = nn.KaimingUniform

// Layers

// Linear declares a fully connected layer's parameters through a Path.
type Linear = nn.Linear

// NewLinear declares a linear layer's parameters under path.
//
// Example:
//
//	layer := nn.NewLinear(vs.Root().Sub("fc1"), 784, 128)
func NewLinear(path *Path, inFeatures, outFeatures int) *Linear {
	return nn.NewLinear(path, inFeatures, outFeatures)
}
