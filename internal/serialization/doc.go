// Package serialization implements the .loom named-tensor bundle format.
//
// A .loom file holds an ordered collection of (name, tensor) pairs:
//
//	[64-byte fixed header][JSON header][padding][tensor data]
//
// Fixed header layout:
//
//	0x00-0x03  magic "LOOM"
//	0x04-0x07  format version (uint32 LE)
//	0x08-0x0B  flags (uint32 LE)
//	0x0C-0x0F  reserved
//	0x10-0x17  JSON header size (uint64 LE)
//	0x18-0x1F  data section size (uint64 LE)
//	0x20-0x3F  SHA-256 checksum of the data section
//
// The JSON header carries per-tensor metadata (name, dtype, shape, offset,
// size) in file order. Tensor data starts at the next 64-byte boundary after
// the JSON header and is laid out back to back at the recorded offsets.
package serialization
