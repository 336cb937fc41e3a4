// Package adapter binds field handlers to the dimensions of an index and turns
// records into storage entries.
//
// # Value Layout
//
// Every entry of a record shares one value:
//
//	[section.ValueHeader: 16 bytes][payload, compressed as the header says]
//
// The decompressed payload is
//
//	[visibility: string, only when the header flag is set]
//	[min, max: float64 per dimension]
//	[field count: uvarint][name: string, typed value] * count
//
// The header carries the fingerprint of the writing index. DecodeEntry refuses
// values written under another configuration with errs.ErrSchemaMismatch.
package adapter
