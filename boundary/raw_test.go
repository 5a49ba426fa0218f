package boundary

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/rocketbitz/safemem-go/mem"
)

func TestRawAllocFreeStats(t *testing.T) {
	r := newTestRuntime(t, Config{})

	if ptr := r.RawAlloc(0); ptr != nil {
		t.Fatalf("expected nil for zero-size allocation")
	}

	ptr := r.RawAlloc(128)
	if ptr == nil {
		t.Fatalf("RawAlloc returned nil")
	}
	r.RawFree(ptr, 128)
	r.RawFree(nil, 128)

	stats := r.Stats()
	if stats.BlocksAllocated != 1 || stats.BlocksFreed != 1 {
		t.Fatalf("unexpected block counts: %+v", stats)
	}
	if stats.BytesAllocated != 128 || stats.BytesFreed != 128 {
		t.Fatalf("unexpected byte counts: %+v", stats)
	}
}

func TestRawReallocPreservesData(t *testing.T) {
	r := newTestRuntime(t, Config{})

	const n = 32
	ptr := r.RawAlloc(n)
	pattern := bytes.Repeat([]byte("ab"), n/2)
	copy(mem.BlockBytes(ptr, n), pattern)

	same := r.RawRealloc(ptr, n, n)
	if !bytes.Equal(mem.BlockBytes(same, n), pattern) {
		t.Fatalf("same-size realloc lost data")
	}

	grown := r.RawRealloc(same, n, 1024)
	if !bytes.Equal(mem.BlockBytes(grown, n), pattern) {
		t.Fatalf("grow lost data")
	}

	if out := r.RawRealloc(grown, 1024, 0); out != nil {
		t.Fatalf("realloc to zero should return nil")
	}

	fresh := r.RawRealloc(nil, 0, 16)
	if fresh == nil {
		t.Fatalf("realloc of nil should allocate")
	}
	r.RawFree(fresh, 16)

	stats := r.Stats()
	if stats.BlocksResized != 2 {
		t.Fatalf("unexpected resize count %d", stats.BlocksResized)
	}
	if stats.BytesAllocated != stats.BytesFreed {
		t.Fatalf("byte accounting unbalanced: %+v", stats)
	}
}

func TestRawAllocAligned(t *testing.T) {
	r := newTestRuntime(t, Config{})
	ptr := r.RawAllocAligned(100, 64)
	if ptr == nil || uintptr(ptr)%64 != 0 {
		t.Fatalf("expected 64-byte aligned pointer, got %p", ptr)
	}
	r.RawFree(ptr, 100)
}

func TestMemcpyChecked(t *testing.T) {
	r := newTestRuntime(t, Config{})

	src := []byte("copy me")
	dst := make([]byte, len(src))
	if st := r.MemcpyChecked(bytesPtr(dst), bytesPtr(src), uintptr(len(src))); st != StatusOK {
		t.Fatalf("MemcpyChecked: %v", st)
	}
	if string(dst) != "copy me" {
		t.Fatalf("unexpected copy %q", dst)
	}
	if st := r.MemcpyChecked(nil, bytesPtr(src), 1); st != StatusFailure {
		t.Fatalf("expected failure for nil dst, got %v", st)
	}
	if st := r.MemcpyChecked(bytesPtr(dst), nil, 1); st != StatusFailure {
		t.Fatalf("expected failure for nil src, got %v", st)
	}
}

func TestCStringNewFree(t *testing.T) {
	r := newTestRuntime(t, Config{})

	if r.CStringNew(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
	r.CStringFree(nil)

	src := mem.NewCString([]byte("user@host"))
	t.Cleanup(func() { mem.FreeCString(src) })

	dup := r.CStringNew(src)
	if dup == nil || dup == src {
		t.Fatalf("expected a distinct copy")
	}
	if got := string(mem.CStringBytes(dup)); got != "user@host" {
		t.Fatalf("unexpected copy %q", got)
	}
	if term := *(*byte)(unsafe.Add(dup, len("user@host"))); term != 0 {
		t.Fatalf("copy is not terminated")
	}
	r.CStringFree(dup)

	empty := mem.NewCString([]byte{})
	t.Cleanup(func() { mem.FreeCString(empty) })
	emptyDup := r.CStringNew(empty)
	if emptyDup == nil {
		t.Fatalf("expected copy of empty string")
	}
	r.CStringFree(emptyDup)

	stats := r.Stats()
	if stats.BlocksAllocated != 2 || stats.BlocksFreed != 2 || stats.BytesAllocated != stats.BytesFreed {
		t.Fatalf("unexpected cstring accounting: %+v", stats)
	}
}
