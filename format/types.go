package format

type (
	CurveType       uint8
	CompressionType uint8
	DimensionKind   uint8
	ValueKind       uint8
)

const (
	CurveZOrder  CurveType = 0x1 // CurveZOrder represents Morton (bit interleaving) order.
	CurveHilbert CurveType = 0x2 // CurveHilbert represents the compact Hilbert curve.

	CompressionNone   CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd   CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2     CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4    CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionSnappy CompressionType = 0x5 // CompressionSnappy represents Snappy block compression.

	DimensionBounded  DimensionKind = 0x1 // DimensionBounded clamps values to [min, max].
	DimensionPeriodic DimensionKind = 0x2 // DimensionPeriodic wraps values modulo the span.
	DimensionBinned   DimensionKind = 0x3 // DimensionBinned splits an unbounded axis into fixed-width bins.

	ValuePoint ValueKind = 0x1 // ValuePoint is a single value (min == max).
	ValueRange ValueKind = 0x2 // ValueRange is a closed interval.
)

func (c CurveType) String() string {
	switch c {
	case CurveZOrder:
		return "zorder"
	case CurveHilbert:
		return "hilbert"
	default:
		return "unknown"
	}
}

// ParseCurveType parses the textual curve name used in schema descriptors.
func ParseCurveType(s string) (CurveType, bool) {
	switch s {
	case "zorder", "z-order", "morton":
		return CurveZOrder, true
	case "hilbert":
		return CurveHilbert, true
	default:
		return 0, false
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// ParseCompressionType parses the textual compression name used in schema descriptors.
// The empty string maps to CompressionNone.
func ParseCompressionType(s string) (CompressionType, bool) {
	switch s {
	case "", "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	case "snappy":
		return CompressionSnappy, true
	default:
		return 0, false
	}
}

func (k DimensionKind) String() string {
	switch k {
	case DimensionBounded:
		return "bounded"
	case DimensionPeriodic:
		return "periodic"
	case DimensionBinned:
		return "binned"
	default:
		return "unknown"
	}
}

// ParseDimensionKind parses the textual dimension kind used in schema descriptors.
func ParseDimensionKind(s string) (DimensionKind, bool) {
	switch s {
	case "bounded":
		return DimensionBounded, true
	case "periodic":
		return DimensionPeriodic, true
	case "binned":
		return DimensionBinned, true
	default:
		return 0, false
	}
}

func (v ValueKind) String() string {
	switch v {
	case ValuePoint:
		return "point"
	case ValueRange:
		return "range"
	default:
		return "unknown"
	}
}
