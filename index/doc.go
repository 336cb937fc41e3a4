// Package index combines dimension definitions and a space filling curve into
// an Index that turns records into ordered storage keys and query regions into
// key ranges.
//
// # Key Layout
//
// Every key is
//
//	[tier: 1 byte][bin id: 8 bytes per binned dimension][curve key at tier]
//
// Bin ids are order-preserving big-endian integers (see endian.AppendOrderedInt64)
// so keys sort by tier, then bin, then curve position.
//
// # Tiers
//
// An index with per-dimension precision bits has T = max(bits) + 1 tiers. Tier
// t uses min(bits, t) bits per dimension, so tier 0 is a single cell and tier
// T-1 is the full precision curve. Points are always stored at the finest
// tier. A record that spans a range is stored at the finest tier where it
// covers at most MaxDuplicates cells, once per covered cell. Queries scan
// every tier.
//
// # Fingerprint
//
// The Descriptor of an index is its portable configuration (YAML or binary).
// The fingerprint is the xxHash64 of the binary descriptor and is stamped into
// every stored value so data written under a different configuration is
// detected on read.
package index
