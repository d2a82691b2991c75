package serialization

import (
	"time"

	"github.com/loom-ml/loom/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "LOOM"
	FormatVersion   = 1    // v1: JSON header + SHA-256 checksum
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// maxHeaderSize bounds the JSON header so a corrupt length field cannot
// trigger an enormous allocation.
const maxHeaderSize = 100 * 1024 * 1024

// Flags for the .loom format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
)

// Header is the JSON header in a .loom file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .loom format
	LoomVersion   string            `json:"loom_version"`   // Version of Loom that created this file
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	Tensors       []TensorMeta      `json:"tensors"`        // Tensor metadata, in file order
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// TensorMeta describes a tensor in the .loom file.
type TensorMeta struct {
	Name   string `json:"name"`   // Fully-qualified tensor name (e.g. "encoder|layer0|weight")
	DType  string `json:"dtype"`  // Data type (e.g. "float32", "float16")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// NamedTensor pairs a fully-qualified name with a raw tensor buffer.
// SaveTensors writes pairs in slice order; LoadTensors returns them in
// file order.
type NamedTensor struct {
	Name   string
	Tensor *tensor.RawTensor
}
