//go:build cgo

package capi

import "unsafe"

/*
#include <stdlib.h>
#include <string.h>

static void *safemem_aligned_alloc(size_t size, size_t align) {
    void *ptr = NULL;
    if (posix_memalign(&ptr, align, size) != 0) {
        return NULL;
    }
    return ptr;
}
*/
import "C"

// MinAlignment is the smallest alignment accepted by AllocAligned.
const MinAlignment = unsafe.Sizeof(uintptr(0))

// AllocBytes allocates C-managed memory of the specified size. The memory is
// not zeroed. A nil return for a non-zero size means the allocator is exhausted.
func AllocBytes(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	return ptr
}

// AllocAligned allocates C-managed memory whose address is a multiple of align.
// align must be a power of two no smaller than MinAlignment. Memory obtained
// here is released with FreeBytes.
func AllocAligned(size, align uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	if align < MinAlignment {
		align = MinAlignment
	}
	return C.safemem_aligned_alloc(C.size_t(size), C.size_t(align))
}

// ReallocBytes resizes a block obtained from AllocBytes. Contents up to the
// smaller of the two sizes are preserved. On failure the original block is
// left untouched and nil is returned.
func ReallocBytes(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	if size == 0 {
		FreeBytes(ptr)
		return nil
	}
	return C.realloc(ptr, C.size_t(size))
}

// FreeBytes frees memory allocated via AllocBytes, AllocAligned or ReallocBytes.
func FreeBytes(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	C.free(ptr)
}

// Memcpy copies length bytes from src to dst using C's memcpy.
func Memcpy(dst, src unsafe.Pointer, length uintptr) {
	if length == 0 || dst == nil || src == nil {
		return
	}
	C.memcpy(dst, src, C.size_t(length))
}

// Strlen reports the length of the NUL-terminated string at ptr.
func Strlen(ptr unsafe.Pointer) uintptr {
	if ptr == nil {
		return 0
	}
	return uintptr(C.strlen((*C.char)(ptr)))
}
