package index

import (
	"fmt"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/errs"
)

// Dimension binds a named dimension definition to its curve precision.
type Dimension struct {
	Name       string
	Definition dimension.Definition
	Bits       uint8
}

// Bounded is a shorthand for a clamped dimension over [min, max].
func Bounded(name string, min, max float64, bits uint8) (Dimension, error) {
	def, err := dimension.NewBounded(min, max)
	if err != nil {
		return Dimension{}, fmt.Errorf("dimension %q: %w", name, err)
	}

	return Dimension{Name: name, Definition: def, Bits: bits}, nil
}

// Periodic is a shorthand for a wrapping dimension over [min, max).
func Periodic(name string, min, max float64, bits uint8) (Dimension, error) {
	def, err := dimension.NewPeriodic(min, max)
	if err != nil {
		return Dimension{}, fmt.Errorf("dimension %q: %w", name, err)
	}

	return Dimension{Name: name, Definition: def, Bits: bits}, nil
}

// Binned is a shorthand for a dimension split into bins of width starting at origin.
func Binned(name string, origin, width float64, bits uint8) (Dimension, error) {
	def, err := dimension.NewBinned(origin, width)
	if err != nil {
		return Dimension{}, fmt.Errorf("dimension %q: %w", name, err)
	}

	return Dimension{Name: name, Definition: def, Bits: bits}, nil
}

// binner returns the definition as a Binner when the dimension is binned.
func (d Dimension) binner() (dimension.Binner, bool) {
	b, ok := d.Definition.(dimension.Binner)
	return b, ok
}

func (d Dimension) validate() error {
	if d.Definition == nil {
		return fmt.Errorf("%w: dimension %q has no definition", errs.ErrInvalidDescriptor, d.Name)
	}

	switch d.Definition.(type) {
	case *dimension.Basic, *dimension.Binned:
		return nil
	default:
		return fmt.Errorf("%w: dimension %q uses unsupported definition %T", errs.ErrInvalidDescriptor, d.Name, d.Definition)
	}
}
