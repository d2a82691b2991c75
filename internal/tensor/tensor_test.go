package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// TestShallowClone_SharesStorage verifies that clones alias the same buffer.
func TestShallowClone_SharesStorage(t *testing.T) {
	a := Zeros(Shape{2, 3}, Float32, CPU)
	b := a.ShallowClone()

	a.AsFloat32()[0] = 42
	assert.Equal(t, float32(42), b.AsFloat32()[0], "write through a should be visible through b")

	b.AsFloat32()[5] = -1
	assert.Equal(t, float32(-1), a.AsFloat32()[5], "write through b should be visible through a")
}

// TestShallowClone_SharesGradState verifies that gradient tracking toggles
// propagate across clones, which is what freeze/unfreeze relies on.
func TestShallowClone_SharesGradState(t *testing.T) {
	a := Zeros(Shape{4}, Float32, CPU)
	b := a.ShallowClone()

	assert.False(t, a.RequiresGrad())
	assert.False(t, b.RequiresGrad())

	a.SetRequiresGrad(true)
	assert.True(t, b.RequiresGrad(), "SetRequiresGrad must be visible through clones")

	b.SetRequiresGrad(false)
	assert.False(t, a.RequiresGrad())
}

// TestCopyFrom_Mismatches verifies the fallible copy surfaces shape and
// dtype mismatches.
func TestCopyFrom_Mismatches(t *testing.T) {
	dst := Zeros(Shape{2, 2}, Float32, CPU)

	err := dst.CopyFrom(Zeros(Shape{4}, Float32, CPU))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape mismatch")

	err = dst.CopyFrom(Zeros(Shape{2, 2}, Float64, CPU))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dtype mismatch")
}

// TestCopyFrom_CrossDevice verifies that values may be restored across
// device tags (buffers are host-resident either way).
func TestCopyFrom_CrossDevice(t *testing.T) {
	dst := Zeros(Shape{3}, Float32, CUDA)
	src := Full(Shape{3}, 7, Float32, CPU)

	require.NoError(t, dst.CopyFrom(src))
	assert.Equal(t, []float32{7, 7, 7}, dst.AsFloat32())
	assert.Equal(t, CUDA, dst.Device(), "device tag is unchanged by a value copy")
}

// TestCreation_Values checks the fill constructors.
func TestCreation_Values(t *testing.T) {
	z := Zeros(Shape{2, 2}, Float32, CPU)
	for _, v := range z.AsFloat32() {
		assert.Equal(t, float32(0), v)
	}

	o := Ones(Shape{3}, Float32, CPU)
	assert.Equal(t, []float32{1, 1, 1}, o.AsFloat32())

	f := Full(Shape{2}, 3.5, Float64, CPU)
	assert.Equal(t, []float64{3.5, 3.5}, f.Raw().AsFloat64())
}

// TestFull_Float16 checks half-precision fills round-trip through the
// float16 conversion.
func TestFull_Float16(t *testing.T) {
	f := Full(Shape{4}, 1.5, Float16, CPU)
	assert.Equal(t, 2, f.DType().Size())
	assert.Equal(t, 8, f.Raw().ByteSize())
	for _, h := range f.Raw().AsFloat16() {
		assert.Equal(t, float32(1.5), h.Float32())
	}

	want := float16.Fromfloat32(1.5)
	assert.Equal(t, want, f.Raw().AsFloat16()[0])
}

// TestFromFloat32 checks slice construction and length validation.
func TestFromFloat32(t *testing.T) {
	got, err := FromFloat32([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, CPU)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, got.AsFloat32())
	assert.Equal(t, Shape{2, 3}, got.Shape())

	_, err = FromFloat32([]float32{1, 2}, Shape{3}, CPU)
	require.Error(t, err)
}

// TestParseDataType checks the dtype name round trip used by the codec.
func TestParseDataType(t *testing.T) {
	for _, dt := range []DataType{Float32, Float64, Float16, Int32, Int64, Uint8, Bool} {
		parsed, ok := ParseDataType(dt.String())
		require.True(t, ok, "dtype %s should parse", dt)
		assert.Equal(t, dt, parsed)
	}

	_, ok := ParseDataType("complex128")
	assert.False(t, ok)
}
