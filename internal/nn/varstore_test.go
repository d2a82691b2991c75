package nn

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/internal/tensor"
)

func TestVarStore_Empty(t *testing.T) {
	vs := NewVarStore(tensor.CPU)

	assert.Equal(t, tensor.CPU, vs.Device())
	assert.Equal(t, 0, vs.Len())
	assert.Empty(t, vs.TrainableVariables())
	assert.Empty(t, vs.Variables())
}

func TestVarStore_TrainableVariables(t *testing.T) {
	vs := NewVarStore(tensor.CPU)
	root := vs.Root()

	w := root.Zeros("w", tensor.Shape{2, 3})
	root.ZerosNoTrain("running_mean", tensor.Shape{3})
	b := root.Ones("b", tensor.Shape{3})

	assert.Equal(t, 3, vs.Len())

	trainable := vs.TrainableVariables()
	require.Len(t, trainable, 2)
	for _, v := range trainable {
		assert.True(t, v.RequiresGrad())
	}

	// Handles returned at creation time track gradients too.
	assert.True(t, w.RequiresGrad())
	assert.True(t, b.RequiresGrad())
}

func TestVarStore_VariablesAliasStorage(t *testing.T) {
	vs := NewVarStore(tensor.CPU)
	w := vs.Root().Zeros("w", tensor.Shape{2})

	w.AsFloat32()[0] = 42

	vars := vs.Variables()
	require.Contains(t, vars, "w")
	assert.Equal(t, float32(42), vars["w"].AsFloat32()[0],
		"snapshot handles must alias the store's storage")
}

func TestVarStore_FreezeUnfreeze(t *testing.T) {
	vs := NewVarStore(tensor.CPU)
	root := vs.Root()

	w := root.Zeros("w", tensor.Shape{4})
	m := root.ZerosNoTrain("m", tensor.Shape{4})

	require.True(t, w.RequiresGrad())
	require.False(t, m.RequiresGrad())

	vs.Freeze()
	assert.False(t, w.RequiresGrad(), "freeze must be visible through existing handles")
	assert.False(t, m.RequiresGrad())

	// Frozen variables keep their trainable classification.
	assert.Len(t, vs.TrainableVariables(), 1)

	vs.Freeze() // idempotent
	assert.False(t, w.RequiresGrad())

	vs.Unfreeze()
	assert.True(t, w.RequiresGrad())
	assert.False(t, m.RequiresGrad(), "unfreeze must not touch non-trainable variables")

	vs.Unfreeze() // idempotent
	assert.True(t, w.RequiresGrad())
}

func TestVarStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.loom")

	src := NewVarStore(tensor.CPU)
	w := src.Root().Sub("fc").RandnStandard("weight", tensor.Shape{3, 4})
	b := src.Root().Sub("fc").Zeros("bias", tensor.Shape{3})
	b.AsFloat32()[1] = -2.5

	require.NoError(t, src.Save(path))

	dst := NewVarStore(tensor.CPU)
	w2 := dst.Root().Sub("fc").Zeros("weight", tensor.Shape{3, 4})
	b2 := dst.Root().Sub("fc").Ones("bias", tensor.Shape{3})

	require.NoError(t, dst.Load(path))

	assert.Equal(t, w.AsFloat32(), w2.AsFloat32())
	assert.Equal(t, b.AsFloat32(), b2.AsFloat32())
	assert.Equal(t, float32(-2.5), b2.AsFloat32()[1])

	// Load replaces values in place without reclassifying anything.
	assert.True(t, w2.RequiresGrad())
	assert.Len(t, dst.TrainableVariables(), 2)
}

func TestVarStore_LoadMissingVariable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.loom")

	src := NewVarStore(tensor.CPU)
	src.Root().Zeros("w", tensor.Shape{2})
	require.NoError(t, src.Save(path))

	dst := NewVarStore(tensor.CPU)
	dst.Root().Zeros("w", tensor.Shape{2})
	dst.Root().Zeros("extra", tensor.Shape{2})

	err := dst.Load(path)
	require.Error(t, err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "extra", nf.Name)
	assert.Equal(t, path, nf.Path)
	assert.Contains(t, err.Error(), "cannot find extra")
}

func TestVarStore_LoadIgnoresExtraNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "superset.loom")

	src := NewVarStore(tensor.CPU)
	src.Root().Zeros("w", tensor.Shape{2})
	src.Root().Zeros("unused", tensor.Shape{5})
	require.NoError(t, src.Save(path))

	dst := NewVarStore(tensor.CPU)
	dst.Root().Ones("w", tensor.Shape{2})

	require.NoError(t, dst.Load(path))
	assert.Equal(t, 1, dst.Len(), "loading must never create variables")
}

func TestVarStore_LoadShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mismatch.loom")

	src := NewVarStore(tensor.CPU)
	src.Root().Zeros("w", tensor.Shape{4})
	require.NoError(t, src.Save(path))

	dst := NewVarStore(tensor.CPU)
	dst.Root().Zeros("w", tensor.Shape{2, 2})

	err := dst.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "w")
	assert.Contains(t, err.Error(), "shape mismatch")
}

func TestVarStore_HierarchicalNaming(t *testing.T) {
	vs := NewVarStore(tensor.CPU)
	vs.Root().Sub("a").Sub("b").Zeros("w", tensor.Shape{1})

	vars := vs.Variables()
	require.Len(t, vars, 1)
	assert.Contains(t, vars, "a|b|w")
}

func TestVarStore_NameCollision(t *testing.T) {
	vs := NewVarStore(tensor.CPU)
	root := vs.Root()

	first := root.Zeros("w", tensor.Shape{2})
	second := root.Ones("w", tensor.Shape{2})

	assert.Equal(t, 2, vs.Len(), "a collision must not overwrite the first variable")

	vars := vs.Variables()
	assert.Contains(t, vars, "w")
	assert.Contains(t, vars, "w__1")
	assert.Equal(t, []float32{0, 0}, vars["w"].AsFloat32())
	assert.Equal(t, []float32{1, 1}, vars["w__1"].AsFloat32())

	// Both call sites got live handles into the store.
	first.AsFloat32()[0] = 3
	second.AsFloat32()[0] = 4
	assert.Equal(t, float32(3), vars["w"].AsFloat32()[0])
	assert.Equal(t, float32(4), vars["w__1"].AsFloat32()[0])
}

func TestVarStore_SeparatorPanics(t *testing.T) {
	vs := NewVarStore(tensor.CPU)
	root := vs.Root()

	assert.Panics(t, func() {
		root.Sub("bad|segment")
	})
	assert.Panics(t, func() {
		root.Zeros("bad|name", tensor.Shape{1})
	})
	assert.Equal(t, 0, vs.Len(), "a rejected name must leave the store untouched")
}

// TestVarStore_Scenario walks the canonical usage sequence end to end.
func TestVarStore_Scenario(t *testing.T) {
	vs := NewVarStore(tensor.CPU)
	root := vs.Root()

	w := root.Var("w", tensor.Shape{2, 2}, Const(0))
	b := root.ZerosNoTrain("b", tensor.Shape{2})

	assert.Equal(t, 2, vs.Len())
	assert.Len(t, vs.TrainableVariables(), 1)
	assert.True(t, w.RequiresGrad())
	assert.False(t, b.RequiresGrad())

	vs.Freeze()
	assert.False(t, w.RequiresGrad())
	vs.Unfreeze()
	assert.True(t, w.RequiresGrad())

	path := filepath.Join(t.TempDir(), "scenario.loom")
	w.AsFloat32()[3] = 9
	require.NoError(t, vs.Save(path))

	w.AsFloat32()[3] = 0
	require.NoError(t, vs.Load(path))
	assert.Equal(t, float32(9), w.AsFloat32()[3])
}

func TestVarStore_ConcurrentCreation(t *testing.T) {
	vs := NewVarStore(tensor.CPU)
	root := vs.Root()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			sub := root.Sub(fmt.Sprintf("layer%d", i))
			sub.Zeros("weight", tensor.Shape{4, 4})
			sub.ZerosNoTrain("stats", tensor.Shape{4})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2*workers, vs.Len())
	assert.Len(t, vs.TrainableVariables(), workers)
}
