package adapter

import (
	"fmt"
	"slices"
	"time"

	"github.com/arloliu/geokey/compress"
	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/encoding"
	"github.com/arloliu/geokey/endian"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/field"
	"github.com/arloliu/geokey/format"
	"github.com/arloliu/geokey/index"
	"github.com/arloliu/geokey/internal/collision"
	"github.com/arloliu/geokey/internal/options"
	"github.com/arloliu/geokey/section"
)

// Binding assigns the handler that produces the value of one dimension.
type Binding struct {
	Dimension string
	Handler   field.Handler
}

// Adapter encodes records for one index. It is immutable and safe for
// concurrent use when its handlers are.
type Adapter struct {
	index    *index.Index
	handlers []field.Handler // in index dimension order
	fields   []string
	codec    compress.Codec
}

// DecodedEntry is the content of a stored value.
type DecodedEntry struct {
	Kind       format.ValueKind
	Visibility string
	// Ranges holds the raw value of every dimension in index order.
	Ranges []dimension.Range
	// Fields holds the stored record attributes.
	Fields field.MapRecord
}

// New creates an adapter.
//
// Parameters:
//   - ix: the target index
//   - bindings: exactly one handler per index dimension
//   - opts: payload options
//
// Returns:
//   - *Adapter: the adapter
//   - error: errs.ErrDimensionMismatch for a binding of an unknown dimension,
//     errs.ErrDuplicateDimension for two bindings of one dimension and
//     errs.ErrMissingField for an unbound dimension
func New(ix *index.Index, bindings []Binding, opts ...Option) (*Adapter, error) {
	cfg := &config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	names := ix.DimensionNames()
	position := make(map[string]int, len(names))
	for j, name := range names {
		position[name] = j
	}

	a := &Adapter{
		index:    ix,
		handlers: make([]field.Handler, len(names)),
	}

	bound := collision.NewTracker(errs.ErrDuplicateDimension)
	for _, b := range bindings {
		j, ok := position[b.Dimension]
		if !ok {
			return nil, fmt.Errorf("%w: index %s has no dimension %q", errs.ErrDimensionMismatch, ix.ID(), b.Dimension)
		}
		if err := bound.Track(b.Dimension); err != nil {
			return nil, err
		}
		a.handlers[j] = b.Handler
	}
	for j, h := range a.handlers {
		if h == nil {
			return nil, fmt.Errorf("%w: no handler for dimension %q", errs.ErrMissingField, names[j])
		}
	}

	fields := collision.NewTracker(errs.ErrDuplicateDimension)
	for _, h := range a.handlers {
		for _, id := range h.FieldIDs() {
			if !fields.Contains(id) {
				_ = fields.Track(id)
			}
		}
	}
	for _, id := range cfg.extraFields {
		if id != "" && !fields.Contains(id) {
			_ = fields.Track(id)
		}
	}
	a.fields = fields.Names()

	codec, err := compress.GetCodec(ix.Compression())
	if err != nil {
		return nil, err
	}
	a.codec = codec

	return a, nil
}

// Index returns the target index.
func (a *Adapter) Index() *index.Index {
	return a.index
}

// PayloadFields returns the record attributes stored in every value.
func (a *Adapter) PayloadFields() []string {
	return append([]string(nil), a.fields...)
}

// EncodeRecord returns one entry per key the record is stored under.
func (a *Adapter) EncodeRecord(r field.Record) ([]index.Entry, error) {
	return a.Encode(r, "")
}

// Encode is EncodeRecord with an additional visibility label applied to the
// whole record. All entries share one value slice, which must not be modified.
//
// Returns the errors of the bound handlers and of index.Index.EncodeBox, and
// errs.ErrUnsupportedType for payload attributes of unsupported types.
func (a *Adapter) Encode(r field.Record, visibility string) ([]index.Entry, error) {
	box := make([]dimension.Range, len(a.handlers))
	kind := format.ValuePoint
	labels := []string{visibility}
	for j, h := range a.handlers {
		v, err := h.ToIndexValue(r)
		if err != nil {
			return nil, err
		}
		box[j] = v.Range
		if !v.Range.IsPoint() {
			kind = format.ValueRange
		}
		if !slices.Contains(labels, v.Visibility) {
			labels = append(labels, v.Visibility)
		}
	}
	visibility = combineLabels(labels)

	keys, err := a.index.EncodeBox(box)
	if err != nil {
		return nil, err
	}

	value, err := a.encodeValue(r, box, kind, visibility)
	if err != nil {
		return nil, err
	}

	entries := make([]index.Entry, len(keys))
	for i, k := range keys {
		entries[i] = index.Entry{Key: k, Value: value}
	}

	return entries, nil
}

// combineLabels folds the distinct non-empty labels of a record in order.
func combineLabels(labels []string) string {
	out := ""
	for _, label := range labels {
		switch {
		case label == "":
		case out == "":
			out = label
		default:
			out = field.CombineVisibility(out, label)
		}
	}

	return out
}

func (a *Adapter) encodeValue(r field.Record, box []dimension.Range, kind format.ValueKind, visibility string) ([]byte, error) {
	header := section.NewValueHeader(a.index.Fingerprint(), kind, a.index.Compression())
	engine := a.index.ValueEngine()
	if endian.IsBigEndian(engine) {
		header.Flag.WithBigEndian()
	}
	header.Flag.SetHasVisibility(visibility != "")

	enc := encoding.NewFieldEncoder(engine)
	defer enc.Reset()

	if visibility != "" {
		enc.WriteString(visibility)
	}
	for _, rg := range box {
		enc.WriteFloat64(rg.Min)
		enc.WriteFloat64(rg.Max)
	}

	present := make([]string, 0, len(a.fields))
	for _, name := range a.fields {
		if v, ok := r.Get(name); ok && !isNilTime(v) {
			present = append(present, name)
		}
	}
	enc.WriteUvarint(uint64(len(present)))
	for _, name := range present {
		v, _ := r.Get(name)
		if err := enc.WriteField(name, payloadValue(v)); err != nil {
			return nil, err
		}
	}

	payload, err := a.codec.Compress(enc.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress value: %w", err)
	}
	if uint64(len(payload)) > section.MaxPayloadLength {
		return nil, fmt.Errorf("%w: payload of %d bytes", errs.ErrInvalidValuePayload, len(payload))
	}
	header.PayloadLength = uint32(len(payload)) //nolint: gosec

	value := make([]byte, 0, section.ValueHeaderSize+len(payload))
	value = header.AppendTo(value)

	return append(value, payload...), nil
}

func isNilTime(v any) bool {
	t, ok := v.(*time.Time)
	return ok && t == nil
}

// payloadValue maps handler-native values onto the payload model.
func payloadValue(v any) any {
	if t, ok := v.(*time.Time); ok {
		return *t
	}

	return v
}

// DecodeEntry parses a value written by an adapter of the same index.
//
// Returns errs.ErrSchemaMismatch when the value was written under a different
// index configuration, header errors from package section, and
// errs.ErrInvalidValuePayload for a corrupt payload.
func (a *Adapter) DecodeEntry(value []byte) (DecodedEntry, error) {
	header, err := section.ParseValueHeader(value)
	if err != nil {
		return DecodedEntry{}, err
	}
	if header.Fingerprint != a.index.Fingerprint() {
		return DecodedEntry{}, fmt.Errorf("%w: value fingerprint %016x, index %s has %016x",
			errs.ErrSchemaMismatch, header.Fingerprint, a.index.ID(), a.index.Fingerprint())
	}

	body := value[section.ValueHeaderSize:]
	if uint64(len(body)) != uint64(header.PayloadLength) {
		return DecodedEntry{}, fmt.Errorf("%w: payload is %d bytes, header says %d", errs.ErrInvalidValuePayload, len(body), header.PayloadLength)
	}

	codec, err := compress.GetCodec(header.Compression)
	if err != nil {
		return DecodedEntry{}, err
	}
	payload, err := codec.Decompress(body)
	if err != nil {
		return DecodedEntry{}, fmt.Errorf("%w: %w", errs.ErrInvalidValuePayload, err)
	}

	out := DecodedEntry{
		Kind:   header.Kind,
		Ranges: make([]dimension.Range, len(a.handlers)),
	}
	dec := encoding.NewFieldDecoder(payload, header.Flag.GetEndianEngine())
	if header.Flag.HasVisibility() {
		if out.Visibility, err = dec.ReadString(); err != nil {
			return DecodedEntry{}, err
		}
	}
	for j := range out.Ranges {
		if out.Ranges[j].Min, err = dec.ReadFloat64(); err != nil {
			return DecodedEntry{}, err
		}
		if out.Ranges[j].Max, err = dec.ReadFloat64(); err != nil {
			return DecodedEntry{}, err
		}
	}

	count, err := dec.ReadUvarint()
	if err != nil {
		return DecodedEntry{}, err
	}
	if count > uint64(dec.Remaining()) {
		return DecodedEntry{}, fmt.Errorf("%w: %d fields in %d bytes", errs.ErrInvalidValuePayload, count, dec.Remaining())
	}
	out.Fields = make(field.MapRecord, count)
	for range count {
		name, v, err := dec.ReadField()
		if err != nil {
			return DecodedEntry{}, err
		}
		out.Fields[name] = v
	}
	if dec.Remaining() != 0 {
		return DecodedEntry{}, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidValuePayload, dec.Remaining())
	}

	return out, nil
}

// NativeValues reconstructs the handler attributes of a decoded entry.
func (a *Adapter) NativeValues(d DecodedEntry) ([]field.NativeValue, error) {
	if len(d.Ranges) != len(a.handlers) {
		return nil, fmt.Errorf("%w: entry has %d ranges, want %d", errs.ErrDimensionMismatch, len(d.Ranges), len(a.handlers))
	}

	var out []field.NativeValue
	for j, h := range a.handlers {
		values, err := h.ToNativeValues(field.IndexValue{Range: d.Ranges[j], Visibility: d.Visibility})
		if err != nil {
			return nil, err
		}
		out = append(out, values...)
	}

	return out, nil
}
