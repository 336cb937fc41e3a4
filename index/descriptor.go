package index

import (
	"bytes"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/encoding"
	"github.com/arloliu/geokey/endian"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
	"github.com/arloliu/geokey/internal/hash"
	"github.com/arloliu/geokey/internal/options"
	"github.com/arloliu/geokey/section"
)

// Descriptor is the portable configuration of an Index. Two indices with equal
// descriptors produce identical keys and share a fingerprint.
//
// Query-side limits such as bin caps and the recursion ceiling are not part of
// the descriptor: they change how much a plan covers, not where data lives.
type Descriptor struct {
	ID            string                `yaml:"id"`
	Curve         string                `yaml:"curve"`
	MaxDuplicates int                   `yaml:"max_duplicates"`
	Compression   string                `yaml:"compression,omitempty"`
	ByteOrder     string                `yaml:"byte_order,omitempty"`
	Dimensions    []DimensionDescriptor `yaml:"dimensions"`
}

// DimensionDescriptor describes one dimension. Min and Max apply to bounded
// and periodic dimensions, Origin and BinWidth to binned ones.
type DimensionDescriptor struct {
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"`
	Min      float64 `yaml:"min,omitempty"`
	Max      float64 `yaml:"max,omitempty"`
	Origin   float64 `yaml:"origin,omitempty"`
	BinWidth float64 `yaml:"bin_width,omitempty"`
	Bits     uint8   `yaml:"bits"`
}

func (ix *Index) buildDescriptor() Descriptor {
	d := Descriptor{
		ID:            ix.id,
		Curve:         ix.cfg.curve.String(),
		MaxDuplicates: ix.cfg.maxDuplicates,
		Compression:   ix.cfg.compression.String(),
		ByteOrder:     "little",
		Dimensions:    make([]DimensionDescriptor, len(ix.dims)),
	}
	if ix.cfg.bigEndian {
		d.ByteOrder = "big"
	}

	for j, dim := range ix.dims {
		dd := DimensionDescriptor{
			Name: dim.Name,
			Kind: dim.Definition.Kind().String(),
			Bits: dim.Bits,
		}
		if b, ok := dim.Definition.(*dimension.Binned); ok {
			dd.Origin = b.Origin()
			dd.BinWidth = b.BinWidth()
		} else {
			bounds := dim.Definition.Bounds()
			dd.Min, dd.Max = bounds.Min, bounds.Max
		}
		d.Dimensions[j] = dd
	}

	return d
}

func (d Descriptor) clone() Descriptor {
	d.Dimensions = slices.Clone(d.Dimensions)
	return d
}

// options converts the descriptor settings into index options.
func (d Descriptor) options() ([]Option, error) {
	curve, ok := format.ParseCurveType(d.Curve)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownCurve, d.Curve)
	}
	compression, ok := format.ParseCompressionType(d.Compression)
	if !ok {
		return nil, fmt.Errorf("%w: compression %q", errs.ErrInvalidDescriptor, d.Compression)
	}

	opts := []Option{WithCurve(curve), WithValueCompression(compression)}
	if d.MaxDuplicates != 0 {
		opts = append(opts, WithMaxDuplicates(d.MaxDuplicates))
	}

	switch d.ByteOrder {
	case "", "little":
	case "big":
		opts = append(opts, WithBigEndianValues())
	default:
		return nil, fmt.Errorf("%w: byte order %q", errs.ErrInvalidDescriptor, d.ByteOrder)
	}

	return opts, nil
}

func (dd DimensionDescriptor) dimension() (Dimension, error) {
	kind, ok := format.ParseDimensionKind(dd.Kind)
	if !ok {
		return Dimension{}, fmt.Errorf("%w: dimension %q has unknown kind %q", errs.ErrInvalidDescriptor, dd.Name, dd.Kind)
	}

	switch kind {
	case format.DimensionBounded:
		return Bounded(dd.Name, dd.Min, dd.Max, dd.Bits)
	case format.DimensionPeriodic:
		return Periodic(dd.Name, dd.Min, dd.Max, dd.Bits)
	default:
		return Binned(dd.Name, dd.Origin, dd.BinWidth, dd.Bits)
	}
}

// FromDescriptor builds the index a descriptor describes. Extra options are
// applied after the descriptor settings and override them.
func FromDescriptor(d Descriptor, opts ...Option) (*Index, error) {
	dims := make([]Dimension, len(d.Dimensions))
	for j, dd := range d.Dimensions {
		dim, err := dd.dimension()
		if err != nil {
			return nil, err
		}
		dims[j] = dim
	}

	base, err := d.options()
	if err != nil {
		return nil, err
	}

	return New(d.ID, dims, append(base, opts...)...)
}

// YAML returns the YAML form of the descriptor.
func (d Descriptor) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// ParseDescriptorYAML parses the YAML form of a descriptor. Unknown keys are
// rejected.
func ParseDescriptorYAML(data []byte) (Descriptor, error) {
	var d Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", errs.ErrInvalidDescriptor, err)
	}

	return d, nil
}

// MarshalBinary returns the canonical binary form of the descriptor: a
// section.DescriptorHeader followed by the body. The body holds the id and,
// per dimension, name, kind, bits and two bounds. Fixed-width numbers use
// the value byte order recorded in the header flag.
func (d Descriptor) MarshalBinary() ([]byte, error) {
	opts, err := d.options()
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if len(d.Dimensions) == 0 || len(d.Dimensions) > 0xFF {
		return nil, fmt.Errorf("%w: %d dimensions", errs.ErrInvalidDescriptor, len(d.Dimensions))
	}

	header := section.NewDescriptorHeader(cfg.curve, len(d.Dimensions), cfg.maxDuplicates, cfg.compression)
	engine := endian.GetLittleEndianEngine()
	if cfg.bigEndian {
		header.Flag.WithBigEndian()
		engine = endian.GetBigEndianEngine()
	}

	enc := encoding.NewFieldEncoder(engine)
	defer enc.Reset()

	enc.WriteString(d.ID)
	for _, dd := range d.Dimensions {
		kind, ok := format.ParseDimensionKind(dd.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: dimension %q has unknown kind %q", errs.ErrInvalidDescriptor, dd.Name, dd.Kind)
		}
		enc.WriteString(dd.Name)
		enc.WriteUvarint(uint64(kind))
		enc.WriteUvarint(uint64(dd.Bits))
		if kind == format.DimensionBinned {
			enc.WriteFloat64(dd.Origin)
			enc.WriteFloat64(dd.BinWidth)
		} else {
			enc.WriteFloat64(dd.Min)
			enc.WriteFloat64(dd.Max)
		}
	}

	body := enc.Bytes()
	header.BodyLength = uint32(len(body))            //nolint: gosec
	header.Checksum = uint32(hash.Fingerprint(body)) //nolint: gosec

	out := make([]byte, 0, section.DescriptorHeaderSize+len(body))
	out = append(out, header.Bytes()...)

	return append(out, body...), nil
}

// UnmarshalDescriptor parses the binary form produced by MarshalBinary.
func UnmarshalDescriptor(data []byte) (Descriptor, error) {
	header, err := section.ParseDescriptorHeader(data)
	if err != nil {
		return Descriptor{}, err
	}

	body := data[section.DescriptorHeaderSize:]
	if uint64(len(body)) != uint64(header.BodyLength) {
		return Descriptor{}, fmt.Errorf("%w: body is %d bytes, header says %d", errs.ErrInvalidDescriptor, len(body), header.BodyLength)
	}
	if uint32(hash.Fingerprint(body)) != header.Checksum { //nolint: gosec
		return Descriptor{}, fmt.Errorf("%w: checksum mismatch", errs.ErrInvalidDescriptor)
	}

	d := Descriptor{
		Curve:         header.Curve.String(),
		MaxDuplicates: int(header.MaxDuplicates),
		Compression:   header.Compression.String(),
		ByteOrder:     "little",
		Dimensions:    make([]DimensionDescriptor, header.Dimensions),
	}
	if header.Flag.IsBigEndian() {
		d.ByteOrder = "big"
	}

	dec := encoding.NewFieldDecoder(body, header.Flag.GetEndianEngine())
	if d.ID, err = dec.ReadString(); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", errs.ErrInvalidDescriptor, err)
	}
	for j := range d.Dimensions {
		if d.Dimensions[j], err = readDimension(dec); err != nil {
			return Descriptor{}, fmt.Errorf("%w: dimension %d: %w", errs.ErrInvalidDescriptor, j, err)
		}
	}
	if dec.Remaining() != 0 {
		return Descriptor{}, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidDescriptor, dec.Remaining())
	}

	return d, nil
}

func readDimension(dec *encoding.FieldDecoder) (DimensionDescriptor, error) {
	var dd DimensionDescriptor
	var err error
	if dd.Name, err = dec.ReadString(); err != nil {
		return dd, err
	}

	kind, err := dec.ReadUvarint()
	if err != nil {
		return dd, err
	}
	dd.Kind = format.DimensionKind(kind).String() //nolint: gosec

	bits, err := dec.ReadUvarint()
	if err != nil {
		return dd, err
	}
	if bits > 0xFF {
		return dd, fmt.Errorf("bits %d out of range", bits)
	}
	dd.Bits = uint8(bits)

	lo, err := dec.ReadFloat64()
	if err != nil {
		return dd, err
	}
	hi, err := dec.ReadFloat64()
	if err != nil {
		return dd, err
	}
	if format.DimensionKind(kind) == format.DimensionBinned { //nolint: gosec
		dd.Origin, dd.BinWidth = lo, hi
	} else {
		dd.Min, dd.Max = lo, hi
	}

	return dd, nil
}

// Fingerprint returns the xxHash64 of the binary form.
func (d Descriptor) Fingerprint() (uint64, error) {
	data, err := d.MarshalBinary()
	if err != nil {
		return 0, err
	}

	return hash.Fingerprint(data), nil
}
