// Package errs defines the sentinel errors returned by geokey packages.
//
// Callers match them with errors.Is; packages wrap them with fmt.Errorf("%w: ...")
// to add detail. None of these errors are retryable: they all describe
// deterministic input or configuration problems.
package errs

import "errors"

// Dimension and region errors.
var (
	// ErrInvalidBounds is returned when a dimension is constructed with min >= max,
	// a non-positive bin width or non-finite bounds.
	ErrInvalidBounds = errors.New("invalid dimension bounds")
	// ErrDimensionMismatch is returned when a point, region or key does not match
	// the configured dimensionality.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidRegion is returned when a query range has min > max or NaN bounds.
	ErrInvalidRegion = errors.New("invalid query region")
	// ErrBudgetExhausted is returned when range decomposition is asked for zero ranges.
	ErrBudgetExhausted = errors.New("range budget exhausted")
	// ErrTooManyBins is returned when a record or query touches more bin
	// combinations than the index allows.
	ErrTooManyBins = errors.New("too many bins")
)

// Curve and key errors.
var (
	ErrInvalidBitDepth  = errors.New("invalid bit depth")
	ErrUnknownCurve     = errors.New("unknown space filling curve")
	ErrInvalidKeyLength = errors.New("invalid key length")
)

// Schema and binary layout errors.
var (
	// ErrSchemaMismatch is returned when stored data was written with a different
	// index configuration than the one decoding it.
	ErrSchemaMismatch      = errors.New("schema fingerprint mismatch")
	ErrInvalidDescriptor   = errors.New("invalid index descriptor")
	ErrDuplicateDimension  = errors.New("duplicate dimension name")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidHeaderSize   = errors.New("invalid header size")
	ErrInvalidHeaderFlags  = errors.New("invalid header flags")
	ErrInvalidMagicNumber  = errors.New("invalid magic number")
	ErrInvalidValuePayload = errors.New("invalid value payload")
)

// Record and field errors.
var (
	ErrMissingField    = errors.New("missing field")
	ErrUnsupportedType = errors.New("unsupported field type")
	ErrUnknownIndex    = errors.New("unknown index")
	ErrDuplicateIndex  = errors.New("duplicate index id")
)
