// Command libsafemem builds the safemem C library:
//
//	go build -buildmode=c-shared -o libsafemem.so ./cmd/libsafemem
//
// Every exported function trusts its caller for pointer validity and for the
// sizes passed back to safemem_free and safemem_realloc. Allocator exhaustion
// aborts the process.
package main

/*
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/rocketbitz/safemem-go/boundary"
)

//export safemem_buffer_new
func safemem_buffer_new(initialCapacity C.size_t) C.uintptr_t {
	return C.uintptr_t(rt().BufferNew(uintptr(initialCapacity)))
}

//export safemem_buffer_append
func safemem_buffer_append(handle C.uintptr_t, data unsafe.Pointer, dataLen C.size_t) C.int {
	return C.int(rt().BufferAppend(boundary.Handle(handle), data, uintptr(dataLen)))
}

//export safemem_buffer_len
func safemem_buffer_len(handle C.uintptr_t) C.size_t {
	return C.size_t(rt().BufferLen(boundary.Handle(handle)))
}

//export safemem_buffer_data
func safemem_buffer_data(handle C.uintptr_t) unsafe.Pointer {
	return rt().BufferData(boundary.Handle(handle))
}

//export safemem_buffer_free
func safemem_buffer_free(handle C.uintptr_t) {
	rt().BufferFree(boundary.Handle(handle))
}

//export safemem_malloc
func safemem_malloc(size C.size_t) unsafe.Pointer {
	return rt().RawAlloc(uintptr(size))
}

//export safemem_malloc_aligned
func safemem_malloc_aligned(size, align C.size_t) unsafe.Pointer {
	return rt().RawAllocAligned(uintptr(size), uintptr(align))
}

//export safemem_free
func safemem_free(ptr unsafe.Pointer, size C.size_t) {
	rt().RawFree(ptr, uintptr(size))
}

//export safemem_realloc
func safemem_realloc(ptr unsafe.Pointer, oldSize, newSize C.size_t) unsafe.Pointer {
	return rt().RawRealloc(ptr, uintptr(oldSize), uintptr(newSize))
}

//export safemem_escape_json
func safemem_escape_json(input *C.char, output *C.char, outputSize C.size_t) C.int {
	return C.int(rt().EscapeJSON(unsafe.Pointer(input), unsafe.Pointer(output), uintptr(outputSize)))
}

//export safemem_memcpy
func safemem_memcpy(dst, src unsafe.Pointer, n C.size_t) C.int {
	return C.int(rt().MemcpyChecked(dst, src, uintptr(n)))
}

//export safemem_cstring_new
func safemem_cstring_new(s *C.char) *C.char {
	return (*C.char)(rt().CStringNew(unsafe.Pointer(s)))
}

//export safemem_cstring_free
func safemem_cstring_free(s *C.char) {
	rt().CStringFree(unsafe.Pointer(s))
}

func main() {}
