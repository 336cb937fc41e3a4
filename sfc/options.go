package sfc

import (
	"fmt"

	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/internal/options"
)

// DefaultMaxCells bounds the number of cells DecomposeRange examines per level.
const DefaultMaxCells = 1 << 16

type config struct {
	maxDepth int
	maxCells int
}

// Option configures a Strategy.
type Option = options.Option[*config]

// WithMaxRecursionDepth limits how many curve levels DecomposeRange descends.
// Zero means the full depth of the curve.
func WithMaxRecursionDepth(depth int) Option {
	return options.New(func(c *config) error {
		if depth < 0 {
			return fmt.Errorf("%w: recursion depth %d is negative", errs.ErrInvalidBitDepth, depth)
		}
		c.maxDepth = depth

		return nil
	})
}

// WithMaxCells limits how many cells DecomposeRange keeps on one level before
// it stops refining.
func WithMaxCells(n int) Option {
	return options.NoError(func(c *config) {
		if n > 0 {
			c.maxCells = n
		}
	})
}
