package pool

import (
	"sync"
)

// Default sizes of pooled buffers.
const (
	PayloadBufferDefaultSize  = 1024      // 1KiB, a typical field payload
	PayloadBufferMaxThreshold = 64 * 1024 // 64KiB
	KeyBufferDefaultSize      = 64
	KeyBufferMaxThreshold     = 1024
)

// ByteBuffer is a growable byte slice that can be returned to a pool.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer and keeps the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite appends data to the buffer.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// WriteByte appends a single byte. It never fails.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// Write appends data to the buffer. It implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// Grow ensures the buffer can take requiredBytes more bytes without
// reallocating. Small buffers grow by at least PayloadBufferDefaultSize,
// larger ones by 25% of their capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if cap(bb.B)-len(bb.B) >= requiredBytes {
		return
	}

	growBy := PayloadBufferDefaultSize
	if cap(bb.B) > 4*PayloadBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	growBy = max(growBy, requiredBytes)

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Clone returns a copy of the buffer content that outlives the buffer.
func (bb *ByteBuffer) Clone() []byte {
	return append([]byte(nil), bb.B...)
}

// ByteBufferPool is a sync.Pool of ByteBuffers. Buffers that grew beyond
// maxThreshold are dropped instead of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with the given initial capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	payloadPool = NewByteBufferPool(PayloadBufferDefaultSize, PayloadBufferMaxThreshold)
	keyPool     = NewByteBufferPool(KeyBufferDefaultSize, KeyBufferMaxThreshold)
)

// GetPayloadBuffer retrieves a buffer for building a value payload.
func GetPayloadBuffer() *ByteBuffer {
	return payloadPool.Get()
}

// PutPayloadBuffer returns a payload buffer to its pool.
func PutPayloadBuffer(bb *ByteBuffer) {
	payloadPool.Put(bb)
}

// GetKeyBuffer retrieves a buffer for assembling an index key.
func GetKeyBuffer() *ByteBuffer {
	return keyPool.Get()
}

// PutKeyBuffer returns a key buffer to its pool.
func PutKeyBuffer(bb *ByteBuffer) {
	keyPool.Put(bb)
}
