package simd

// Kernel names one of the three batch-transform code paths.
type Kernel string

const (
	// KernelWide processes 32-byte blocks (AVX2-class width).
	KernelWide Kernel = "wide"
	// KernelNarrow processes 16-byte blocks (SSE4.2/NEON-class width).
	KernelNarrow Kernel = "narrow"
	// KernelScalar processes one byte at a time.
	KernelScalar Kernel = "scalar"
)

// transformer is one capability-gated implementation of the batch
// transform. An item is eligible for a transformer when it is at least
// width bytes long.
type transformer interface {
	kernel() Kernel
	width() int
	transform(dst, src []byte)
}

// upper maps one ASCII letter to uppercase. Bytes outside 'a'..'z',
// including anything >= 0x80, pass through untouched on every path.
func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c &^ 0x20
	}
	return c
}

// scalarTransform is the reference implementation the vector kernels
// must match byte for byte.
type scalarTransform struct{}

func (scalarTransform) kernel() Kernel { return KernelScalar }
func (scalarTransform) width() int     { return 1 }

func (scalarTransform) transform(dst, src []byte) {
	for i, c := range src {
		dst[i] = upper(c)
	}
}

// narrowTransform walks 16-byte blocks with a 4-way unrolled body, the
// shape the compiler vectorizes to 128-bit loads on SSE and NEON.
type narrowTransform struct{}

func (narrowTransform) kernel() Kernel { return KernelNarrow }
func (narrowTransform) width() int     { return 16 }

func (narrowTransform) transform(dst, src []byte) {
	n := len(src)
	i := 0
	for ; i <= n-16; i += 16 {
		s := src[i : i+16 : i+16]
		d := dst[i : i+16 : i+16]
		for j := 0; j < 16; j += 4 {
			d[j] = upper(s[j])
			d[j+1] = upper(s[j+1])
			d[j+2] = upper(s[j+2])
			d[j+3] = upper(s[j+3])
		}
	}
	for ; i < n; i++ {
		dst[i] = upper(src[i])
	}
}

// wideTransform walks 32-byte blocks with an 8-way unrolled body for
// 256-bit AVX2 vectorization.
type wideTransform struct{}

func (wideTransform) kernel() Kernel { return KernelWide }
func (wideTransform) width() int     { return 32 }

func (wideTransform) transform(dst, src []byte) {
	n := len(src)
	i := 0
	for ; i <= n-32; i += 32 {
		s := src[i : i+32 : i+32]
		d := dst[i : i+32 : i+32]
		for j := 0; j < 32; j += 8 {
			d[j] = upper(s[j])
			d[j+1] = upper(s[j+1])
			d[j+2] = upper(s[j+2])
			d[j+3] = upper(s[j+3])
			d[j+4] = upper(s[j+4])
			d[j+5] = upper(s[j+5])
			d[j+6] = upper(s[j+6])
			d[j+7] = upper(s[j+7])
		}
	}
	for ; i < n; i++ {
		dst[i] = upper(src[i])
	}
}
