// Package compress provides the codecs applied to index value payloads.
//
// Each index stores its values with one compression type, recorded both in
// the index descriptor and in the header of every value:
//
//   - None: the field payload is stored as-is
//   - Zstd: best ratio, for large attribute payloads
//   - S2: fast with a good ratio
//   - LZ4: fastest decompression
//   - Snappy: interoperable with stores that already speak Snappy blocks
//
// Zstd uses the pure Go klauspost/compress implementation. Building with the
// gozstd tag (and cgo) switches to the valyala/gozstd bindings instead:
//
//	go build -tags gozstd ./...
//
// Codecs are obtained by type:
//
//	codec, err := compress.GetCodec(format.CompressionSnappy)
//	packed, err := codec.Compress(payload)
//	payload, err = codec.Decompress(packed)
package compress
