// Package pool provides pooled byte buffers and typed slices used while
// assembling frame-set payloads, so a writer appending many frame sets does
// not re-allocate its staging buffer on every append.
package pool

import "sync"

// Default and maximum sizes for pooled payload buffers. A frame set's
// in-memory staging buffer (§4.G step 1) typically holds one stride's worth
// of compressed particle data; 64KiB covers the common case without
// over-retaining memory for the rare gigabyte-scale block.
const (
	DefaultBufferSize = 1024 * 64        // 64KiB
	MaxBufferRetain   = 1024 * 1024 * 4  // 4MiB
)

// ByteBuffer is a reusable growable byte slice.
type ByteBuffer struct {
	B []byte
}

var bufferPool = sync.Pool{
	New: func() any { return &ByteBuffer{B: make([]byte, 0, DefaultBufferSize)} },
}

// Get retrieves a zero-length ByteBuffer from the pool.
func Get() *ByteBuffer {
	bb, _ := bufferPool.Get().(*ByteBuffer)
	bb.B = bb.B[:0]

	return bb
}

// Put returns bb to the pool. Buffers that grew beyond MaxBufferRetain are
// dropped instead of pooled, so one oversized frame set does not pin a
// large allocation in the pool forever.
func Put(bb *ByteBuffer) {
	if cap(bb.B) > MaxBufferRetain {
		return
	}

	bufferPool.Put(bb)
}

// Bytes returns the buffer's current contents.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Len returns the number of bytes written so far.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Reset empties the buffer while retaining its backing array.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Write appends data, growing the backing array if necessary. It always
// returns len(data), nil, satisfying io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}
