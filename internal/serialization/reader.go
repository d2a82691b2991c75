package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/loom-ml/loom/internal/tensor"
)

// LoadTensors reads a .loom file and returns its (name, tensor) pairs in
// file order. The returned buffers are freshly allocated host tensors
// tagged with the CPU device; callers merging them into device-resident
// variables copy values, not handles.
func LoadTensors(path string) (_ []NamedTensor, err error) {
	//nolint:gosec // G304: the source path is caller-supplied by design
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return ReadFrom(file)
}

// ReadFrom reads a .loom bundle from an io.Reader.
func ReadFrom(r io.Reader) ([]NamedTensor, error) {
	fixedHeader := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixedHeader); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}

	if string(fixedHeader[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(fixedHeader[4:8])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixedHeader[16:24])
	dataSize := binary.LittleEndian.Uint64(fixedHeader[24:32])
	var stored [32]byte
	copy(stored[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > maxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header JSON: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	// Skip alignment padding before the data section.
	//nolint:gosec // G115: headerSize is bounded by maxHeaderSize, conversion is safe
	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := io.ReadFull(r, make([]byte, padding)); err != nil {
			return nil, fmt.Errorf("failed to read padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
		return nil, err
	}

	//nolint:gosec // G115: dataSize was just materialized as a slice length
	if err := validateTensorMetas(header.Tensors, int64(dataSize)); err != nil {
		return nil, err
	}

	tensors := make([]NamedTensor, 0, len(header.Tensors))
	for _, meta := range header.Tensors {
		dtype, ok := tensor.ParseDataType(meta.DType)
		if !ok {
			return nil, fmt.Errorf("tensor %s: unsupported dtype %q", meta.Name, meta.DType)
		}

		shape := tensor.Shape(meta.Shape)
		if err := shape.Validate(); err != nil {
			return nil, fmt.Errorf("tensor %s: invalid shape: %w", meta.Name, err)
		}

		raw, err := tensor.NewRaw(shape, dtype, tensor.CPU)
		if err != nil {
			return nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
		}
		if int64(raw.ByteSize()) != meta.Size {
			return nil, fmt.Errorf("tensor %s: size %d does not match shape %v dtype %s",
				meta.Name, meta.Size, shape, dtype)
		}
		copy(raw.Data(), data[meta.Offset:meta.Offset+meta.Size])

		tensors = append(tensors, NamedTensor{Name: meta.Name, Tensor: raw})
	}

	return tensors, nil
}

// validateTensorMetas rejects metadata whose regions do not fit inside the
// data section or overlap each other. Offsets may not be negative, and the
// bounds comparison must stay overflow-safe: a crafted offset near the
// int64 maximum would wrap Offset+Size negative and slip past a naive
// check, turning the data slicing below into a panic.
func validateTensorMetas(metas []TensorMeta, dataSize int64) error {
	for _, meta := range metas {
		if meta.Name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidTensorName)
		}
		if meta.Offset < 0 || meta.Size < 0 {
			return fmt.Errorf("%w: tensor %q", ErrNegativeOffset, meta.Name)
		}
		if meta.Offset > dataSize || meta.Size > dataSize-meta.Offset {
			return fmt.Errorf("%w: tensor %q", ErrOutOfBounds, meta.Name)
		}
	}

	// Regions must be disjoint. Offsets and sizes are bounded by dataSize
	// at this point, so the sums cannot overflow.
	sorted := make([]TensorMeta, len(metas))
	copy(sorted, metas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		if prev.Offset+prev.Size > sorted[i].Offset {
			return fmt.Errorf("%w: tensors %q and %q", ErrOverlappingTensors, prev.Name, sorted[i].Name)
		}
	}
	return nil
}
