package compress

// ZstdCompressor uses Zstandard frames.
//
// The implementation is chosen at build time: pure Go by default, the cgo
// gozstd bindings with the gozstd build tag. Both read each other's output.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
