package pool

import "sync"

// int64SlicePool holds the intermediate integer buffers the codec pipeline
// decodes into (quantized values, delta residuals) before the next stage
// consumes and copies them. Every quantized value in this container is a
// 64-bit integer (§4.C), so there is no int32 counterpart to pool.
var int64SlicePool = sync.Pool{New: func() any { return &[]int64{} }}

// GetInt64Slice returns an int64 slice of exactly length size and a cleanup
// function the caller must invoke (typically via defer) to return it.
func GetInt64Slice(size int) ([]int64, func()) {
	ptr, _ := int64SlicePool.Get().(*[]int64)
	s := (*ptr)[:0]
	if cap(s) < size {
		s = make([]int64, size)
	} else {
		s = s[:size]
	}
	*ptr = s

	return s, func() { int64SlicePool.Put(ptr) }
}
