// Package sfc maps normalized multi-dimensional points onto a one-dimensional
// space filling curve and back, and decomposes query boxes into key ranges.
//
// Two curves are supported: Z-order (bit interleaving) and the compact Hilbert
// curve, which keeps locality better and supports a different bit depth per
// dimension. Dimensions are aligned at their most significant bit: at curve
// level s every dimension with more than s bits contributes one bit. As a
// result the first levels of a key identify a coarse cell, and a prefix of a
// key is the key of an enclosing cell.
//
// Keys are big-endian bit strings of ceil(sum(bits)/8) bytes. Unused trailing
// bits are zero.
package sfc
