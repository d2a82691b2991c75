package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

const loomVersion = "0.1.0" // Current Loom version

// SaveTensors writes the named tensors to path in .loom format, in slice
// order. The file is created (or truncated) atomically from the caller's
// perspective: on error the partially written file may remain, but the
// in-memory tensors are never touched.
func SaveTensors(path string, tensors []NamedTensor) (err error) {
	//nolint:gosec // G304: the destination path is caller-supplied by design
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return WriteTo(file, tensors, nil)
}

// WriteTo writes the named tensors to an io.Writer in .loom format.
// Useful for writing to buffers or network connections.
func WriteTo(w io.Writer, tensors []NamedTensor, metadata map[string]string) error {
	header := Header{
		FormatVersion: FormatVersion,
		LoomVersion:   loomVersion,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(tensors)),
		Metadata:      metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Lay out tensor data back to back, recording offsets.
	var currentOffset int64
	var dataBuf []byte
	for _, nt := range tensors {
		if nt.Name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidTensorName)
		}
		raw := nt.Tensor
		size := int64(raw.ByteSize())

		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   nt.Name,
			DType:  raw.DType().String(),
			Shape:  []int(raw.Shape()),
			Offset: currentOffset,
			Size:   size,
		})

		dataBuf = append(dataBuf, raw.Data()[:size]...)
		currentOffset += size
	}

	checksum := ComputeChecksum(dataBuf)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	headerSize := uint64(len(headerJSON))
	dataSize := uint64(len(dataBuf))

	// Fixed 64-byte header.
	fixedHeader := make([]byte, FixedHeaderSize)
	copy(fixedHeader[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixedHeader[4:8], uint32(FormatVersion))
	flags := uint32(0)
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixedHeader[8:12], flags)
	// 0x0C-0x0F reserved, already zero from make()
	binary.LittleEndian.PutUint64(fixedHeader[16:24], headerSize)
	binary.LittleEndian.PutUint64(fixedHeader[24:32], dataSize)
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixedHeader); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	// Pad so tensor data starts on a 64-byte boundary.
	//nolint:gosec // G115: headerSize is bounded by maxHeaderSize, conversion is safe
	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(dataBuf); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}

	return nil
}
