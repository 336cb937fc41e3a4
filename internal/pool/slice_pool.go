package pool

import "sync"

var (
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
	uint64SlicePool = sync.Pool{
		New: func() any { return &[]uint64{} },
	}
)

// getSlice resizes the pooled slice behind p to size. The returned cleanup
// function hands the slice back to p.
func getSlice[T any](p *sync.Pool, size int) ([]T, func()) {
	ptr, _ := p.Get().(*[]T)
	if cap(*ptr) < size {
		*ptr = make([]T, size)
	} else {
		*ptr = (*ptr)[:size]
	}

	return *ptr, func() { p.Put(ptr) }
}

// GetFloat64Slice returns a float64 slice of length size and its cleanup
// function, which must be called once the slice is no longer used.
//
//	point, cleanup := pool.GetFloat64Slice(dims)
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	return getSlice[float64](&float64SlicePool, size)
}

// GetUint64Slice returns a uint64 slice of length size and its cleanup function.
func GetUint64Slice(size int) ([]uint64, func()) {
	return getSlice[uint64](&uint64SlicePool, size)
}
