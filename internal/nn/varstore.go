// Package nn implements the parameter-management layer of the Loom ML
// framework: a thread-safe, device-scoped registry mapping hierarchical
// names to tensors, with trainable tracking, freezing and persistence.
//
// Modules obtain the store's root Path, derive sub-paths per submodule and
// declare their parameters through the Path creation methods:
//
//	vs := nn.NewVarStore(tensor.CPU)
//	enc := vs.Root().Sub("encoder").Sub("layer0")
//	w := enc.KaimingUniform("weight", tensor.Shape{128, 784})
//	b := enc.Zeros("bias", tensor.Shape{128})
//
// The store is the single source of truth for enumerating trainable
// parameters, saving/loading them and toggling gradient tracking.
package nn

import (
	"fmt"
	"sync"

	"github.com/loom-ml/loom/internal/serialization"
	"github.com/loom-ml/loom/internal/tensor"
)

// Separator splits path segments in fully-qualified variable names.
// Neither a path segment nor a variable name may contain it; violating
// this is a caller bug and panics.
const Separator = '|'

// variable pairs a tensor handle with its trainable classification.
// Once the store is frozen, trainable stays true while the tensor no
// longer requires gradients: freezing toggles gradient computation, it
// does not reclassify the variable.
type variable struct {
	tensor    *tensor.Tensor
	trainable bool
}

// VarStore stores the variables used by one or more modules. All of its
// tensors live on a single device fixed at construction.
//
// A single mutex guards the whole name→variable map. Creation from
// multiple goroutines building different submodules concurrently is safe;
// racing writes to one tensor's contents outside the store's operations
// remain the caller's responsibility.
type VarStore struct {
	mu        sync.Mutex
	variables map[string]*variable
	device    tensor.Device
}

// NotFoundError reports a store variable missing from a loaded bundle.
type NotFoundError struct {
	Name string // fully-qualified variable name
	Path string // source file path
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot find %s in %s", e.Name, e.Path)
}

// NewVarStore creates a new, empty variable store located on the given
// device.
func NewVarStore(device tensor.Device) *VarStore {
	return &VarStore{
		variables: make(map[string]*variable),
		device:    device,
	}
}

// Device returns the device this store's variables live on.
func (vs *VarStore) Device() tensor.Device {
	return vs.device
}

// Len returns the number of variables currently in the store.
func (vs *VarStore) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.variables)
}

// Root returns the empty path at the root of this store.
func (vs *VarStore) Root() *Path {
	return &Path{store: vs}
}

// TrainableVariables returns a shallow-cloned handle for every trainable
// variable. Order is unspecified; callers must not rely on it matching
// insertion order.
func (vs *VarStore) TrainableVariables() []*tensor.Tensor {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	var out []*tensor.Tensor
	for _, v := range vs.variables {
		if v.trainable {
			out = append(out, v.tensor.ShallowClone())
		}
	}
	return out
}

// Variables returns a snapshot of every variable as a name → shallow-cloned
// handle map. The handles alias the store's storage.
func (vs *VarStore) Variables() map[string]*tensor.Tensor {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	out := make(map[string]*tensor.Tensor, len(vs.variables))
	for name, v := range vs.variables {
		out[name] = v.tensor.ShallowClone()
	}
	return out
}

// Save writes every variable's values to path as a .loom named-tensor
// bundle. The store is unchanged if writing fails.
func (vs *VarStore) Save(path string) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	named := make([]serialization.NamedTensor, 0, len(vs.variables))
	for name, v := range vs.variables {
		named = append(named, serialization.NamedTensor{Name: name, Tensor: v.tensor.Raw()})
	}
	return serialization.SaveTensors(path, named)
}

// Load reads a .loom bundle from path and copies the loaded values into
// the store's existing variables by name, in place. Variable records and
// trainable flags are untouched; only numeric contents change, under a
// NoGrad scope so that restoring weights is never differentiated.
//
// Every variable already in the store must be present in the file,
// otherwise Load fails with a *NotFoundError naming the first missing
// variable. Names in the file with no matching variable are ignored.
//
// Load is not transactional: on failure, variables processed before the
// offending one have already been overwritten.
func (vs *VarStore) Load(path string) error {
	named, err := serialization.LoadTensors(path)
	if err != nil {
		return err
	}
	loaded := make(map[string]*tensor.Tensor, len(named))
	for _, nt := range named {
		loaded[nt.Name] = tensor.FromRaw(nt.Tensor)
	}

	vs.mu.Lock()
	defer vs.mu.Unlock()

	for name, v := range vs.variables {
		src, ok := loaded[name]
		if !ok {
			return &NotFoundError{Name: name, Path: path}
		}
		var copyErr error
		tensor.NoGrad(func() {
			copyErr = v.tensor.CopyFrom(src)
		})
		if copyErr != nil {
			return fmt.Errorf("%s: %w", name, copyErr)
		}
	}
	return nil
}

// Freeze disables gradient tracking for every trainable variable. The
// trainable classification is left untouched so Unfreeze can restore
// exactly the prior set. Calling Freeze twice is the same as calling it
// once.
func (vs *VarStore) Freeze() {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	for _, v := range vs.variables {
		if v.trainable {
			v.tensor.SetRequiresGrad(false)
		}
	}
}

// Unfreeze re-enables gradient tracking for every trainable variable.
func (vs *VarStore) Unfreeze() {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	for _, v := range vs.variables {
		if v.trainable {
			v.tensor.SetRequiresGrad(true)
		}
	}
}
