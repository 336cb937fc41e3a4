// Package endian provides the byte order engines used by geokey.
//
// Index keys are always big-endian, since byte-lexicographic order must equal
// numeric order for range scans to work. Value payloads and headers default to
// little-endian and can be switched to big-endian per index.
//
//	engine := endian.GetBigEndianEngine()
//	key = engine.AppendUint64(key, cell)
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Parse returns the engine named by s ("little" or "big", case-insensitive).
// The empty string selects little-endian.
func Parse(s string) (EndianEngine, error) {
	switch strings.ToLower(s) {
	case "", "little", "little-endian", "le":
		return GetLittleEndianEngine(), nil
	case "big", "big-endian", "be":
		return GetBigEndianEngine(), nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", s)
	}
}

// IsBigEndian reports whether engine writes the most significant byte first.
func IsBigEndian(engine EndianEngine) bool {
	return engine == binary.BigEndian
}
