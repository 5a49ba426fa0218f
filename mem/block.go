package mem

import (
	"math/bits"
	"unsafe"

	"github.com/rocketbitz/safemem-go/internal/capi"
)

// Allocate returns at least size uninitialized bytes of C-managed memory, or
// nil when size is zero. Allocator exhaustion panics with ErrOutOfMemory.
func Allocate(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	ptr := capi.AllocBytes(size)
	if ptr == nil {
		panic(ErrOutOfMemory)
	}
	return ptr
}

// AllocateAligned is Allocate with an address that is a multiple of align.
// An align of zero or one that is not a power of two uses the platform
// default alignment.
func AllocateAligned(size, align uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	if align == 0 || bits.OnesCount64(uint64(align)) != 1 {
		return Allocate(size)
	}
	ptr := capi.AllocAligned(size, align)
	if ptr == nil {
		panic(ErrOutOfMemory)
	}
	return ptr
}

// Deallocate releases a block obtained from Allocate, AllocateAligned, Resize
// or Buffer.IntoRawBlock. size must be the block's current size; the call is
// a no-op for a nil pointer or zero size. Releasing a block twice is undefined.
func Deallocate(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil || size == 0 {
		return
	}
	capi.FreeBytes(ptr)
}

// Resize changes the size of a block from oldSize to newSize with a single
// reservation. A nil ptr allocates; a zero newSize deallocates and returns nil.
// The returned pointer may differ from ptr, in which case ptr is no longer
// valid. Contents up to min(oldSize, newSize) are preserved.
func Resize(ptr unsafe.Pointer, oldSize, newSize uintptr) unsafe.Pointer {
	if ptr == nil {
		return Allocate(newSize)
	}
	if newSize == 0 {
		Deallocate(ptr, oldSize)
		return nil
	}
	if newSize == oldSize {
		return ptr
	}
	moved := capi.ReallocBytes(ptr, newSize)
	if moved == nil {
		panic(ErrOutOfMemory)
	}
	return moved
}

// CopyChecked copies n bytes from src to dst. It rejects nil pointers but
// cannot verify that the regions are large enough or do not overlap.
func CopyChecked(dst, src unsafe.Pointer, n uintptr) error {
	if dst == nil || src == nil {
		return ErrNilPointer
	}
	capi.Memcpy(dst, src, n)
	return nil
}

// BlockBytes returns a Go slice view over a raw block.
func BlockBytes(ptr unsafe.Pointer, size uintptr) []byte {
	if ptr == nil || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), size)
}
