package mem

import (
	"bytes"
	"unsafe"

	"github.com/rocketbitz/safemem-go/internal/capi"
)

// NewCString copies s, up to its first NUL byte, into a fresh NUL-terminated C
// allocation. A nil slice yields nil. Release the result with FreeCString.
func NewCString(s []byte) unsafe.Pointer {
	if s == nil {
		return nil
	}
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	ptr := Allocate(uintptr(len(s)) + 1)
	dst := unsafe.Slice((*byte)(ptr), len(s)+1)
	copy(dst, s)
	dst[len(s)] = 0
	return ptr
}

// FreeCString releases a string returned by NewCString. nil is a no-op.
func FreeCString(p unsafe.Pointer) {
	if p == nil {
		return
	}
	capi.FreeBytes(p)
}

// CStringBytes returns a view of the NUL-terminated string at p, excluding the
// terminator.
func CStringBytes(p unsafe.Pointer) []byte {
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), capi.Strlen(p))
}
