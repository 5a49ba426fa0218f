package boundary

import (
	"unsafe"

	"github.com/rocketbitz/safemem-go/mem"
)

// RawAlloc allocates size uninitialized bytes; zero yields nil.
func (r *Runtime) RawAlloc(size uintptr) unsafe.Pointer {
	ptr := mem.Allocate(size)
	if ptr != nil {
		r.blockAllocated(originRaw, size)
	}
	return ptr
}

// RawAllocAligned allocates size bytes aligned to align.
func (r *Runtime) RawAllocAligned(size, align uintptr) unsafe.Pointer {
	ptr := mem.AllocateAligned(size, align)
	if ptr != nil {
		r.blockAllocated(originAligned, size)
	}
	return ptr
}

// RawFree releases a block. size must match the block's current size.
func (r *Runtime) RawFree(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil || size == 0 {
		return
	}
	mem.Deallocate(ptr, size)
	r.blockReleased(originRaw, size)
}

// RawRealloc resizes a block from oldSize to newSize, following mem.Resize.
// Resized blocks are accounted as raw: realloc does not keep alignment.
func (r *Runtime) RawRealloc(ptr unsafe.Pointer, oldSize, newSize uintptr) unsafe.Pointer {
	switch {
	case ptr == nil:
		return r.RawAlloc(newSize)
	case newSize == 0:
		r.RawFree(ptr, oldSize)
		return nil
	}
	moved := mem.Resize(ptr, oldSize, newSize)
	r.stats.blocksResized.Add(1)
	if newSize > oldSize {
		r.stats.bytesAllocated.Add(uint64(newSize - oldSize))
	} else {
		r.stats.bytesFreed.Add(uint64(oldSize - newSize))
	}
	r.metricBlockResized(originRaw, oldSize, newSize)
	r.logEvent("block_resized", sizeKV("from", oldSize), sizeKV("to", newSize), logKV("moved", moved != ptr))
	return moved
}

// MemcpyChecked copies n bytes from src to dst, rejecting nil pointers. The
// regions must not overlap.
func (r *Runtime) MemcpyChecked(dst, src unsafe.Pointer, n uintptr) Status {
	if err := mem.CopyChecked(dst, src, n); err != nil {
		r.logEvent("memcpy_rejected", logKV("error", err))
		return StatusFailure
	}
	return StatusOK
}

// CStringNew copies the NUL-terminated string at s into a fresh allocation.
func (r *Runtime) CStringNew(s unsafe.Pointer) unsafe.Pointer {
	if s == nil {
		return nil
	}
	src := mem.CStringBytes(s)
	out := mem.NewCString(src)
	r.blockAllocated(originCString, uintptr(len(src))+1)
	return out
}

// CStringFree releases a string returned by CStringNew.
func (r *Runtime) CStringFree(s unsafe.Pointer) {
	if s == nil {
		return
	}
	size := uintptr(len(mem.CStringBytes(s))) + 1
	mem.FreeCString(s)
	r.blockReleased(originCString, size)
}

func (r *Runtime) blockAllocated(origin string, size uintptr) {
	r.stats.blocksAllocated.Add(1)
	r.stats.bytesAllocated.Add(uint64(size))
	r.metricBlockAllocated(origin, size)
	r.logEvent("block_allocated", logKV(labelOrigin, origin), sizeKV("size", size))
}

func (r *Runtime) blockReleased(origin string, size uintptr) {
	r.stats.blocksFreed.Add(1)
	r.stats.bytesFreed.Add(uint64(size))
	r.metricBlockReleased(origin, size)
	r.logEvent("block_released", logKV(labelOrigin, origin), sizeKV("size", size))
}
