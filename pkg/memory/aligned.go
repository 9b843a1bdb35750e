package memory

import "unsafe"

// DefaultAlignment is the alignment used when the caller does not ask for
// one. Matches the cache line size so SIMD loads never split a line.
const DefaultAlignment = 64

// alignedSlice returns a size-byte slice whose first element sits on an
// align-byte boundary. Go's allocator gives no alignment guarantee beyond
// the element type, so the backing array is over-allocated and the slice
// offset to the boundary.
func alignedSlice(size, align int) []byte {
	if align <= 1 {
		return make([]byte, size)
	}
	buf := make([]byte, size+align)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	shift := int((uintptr(align) - addr%uintptr(align)) % uintptr(align))
	return buf[shift : shift+size : shift+size]
}

// validAlignment reports whether align is a power of two.
func validAlignment(align int) bool {
	return align > 0 && align&(align-1) == 0
}
