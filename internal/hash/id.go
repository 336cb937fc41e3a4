package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Fingerprint computes the xxHash64 of a canonical binary form.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Fingerprinter accumulates several byte sections into one fingerprint
// without concatenating them first.
type Fingerprinter struct {
	d *xxhash.Digest
}

// NewFingerprinter creates an empty Fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{d: xxhash.New()}
}

// Write adds a section to the fingerprint.
func (f *Fingerprinter) Write(section []byte) {
	_, _ = f.d.Write(section)
}

// WriteString adds a string section to the fingerprint.
func (f *Fingerprinter) WriteString(section string) {
	_, _ = f.d.WriteString(section)
}

// Sum64 returns the fingerprint of all sections written so far.
func (f *Fingerprinter) Sum64() uint64 {
	return f.d.Sum64()
}
