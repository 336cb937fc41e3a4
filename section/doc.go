// Package section defines the fixed-size binary headers written by geokey.
//
// Two sections exist:
//
//  1. ValueHeader (16 bytes): prefixes every value stored under an index key.
//     It carries the fingerprint of the index configuration that wrote the
//     value so readers can reject data written under a different schema.
//  2. DescriptorHeader (16 bytes): prefixes the binary form of an index
//     descriptor.
//
// A stored value looks like:
//
//	┌─────────────────────────────────────────────┐
//	│ ValueHeader (16 bytes, fixed)               │
//	│  - Flag (2 bytes): magic, endianness, bits  │
//	│  - Compression, Kind (2 bytes)              │
//	│  - Fingerprint (8 bytes)                    │
//	│  - PayloadLength (4 bytes)                  │
//	├─────────────────────────────────────────────┤
//	│ Payload (variable, optionally compressed)   │
//	│  - visibility label (when flagged)          │
//	│  - field values                             │
//	└─────────────────────────────────────────────┘
//
// # Flag Word
//
// Both headers start with the same 16-bit options word, always stored
// little-endian so the endianness bit can be read before anything else:
//
//	Bit   | Meaning
//	------|------------------------------------------
//	0     | value carries a visibility label
//	1     | 0 = little-endian, 1 = big-endian fields
//	2-3   | reserved, must be zero
//	4-15  | magic number (0xC410 value, 0xC420 descriptor)
//
// Index keys themselves never pass through this package: they are always
// big-endian so byte order equals curve order.
package section
