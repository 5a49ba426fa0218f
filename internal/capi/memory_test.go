//go:build cgo

package capi

import (
	"testing"
	"unsafe"
)

func TestAllocBytesZeroSize(t *testing.T) {
	if ptr := AllocBytes(0); ptr != nil {
		t.Fatalf("expected nil pointer for zero-size allocation, got %p", ptr)
	}
}

func TestReallocPreservesContents(t *testing.T) {
	ptr := AllocBytes(8)
	if ptr == nil {
		t.Fatalf("AllocBytes returned nil")
	}
	copy(unsafe.Slice((*byte)(ptr), 8), "abcdefgh")

	grown := ReallocBytes(ptr, 4096)
	if grown == nil {
		FreeBytes(ptr)
		t.Fatalf("ReallocBytes returned nil")
	}
	t.Cleanup(func() { FreeBytes(grown) })

	if got := string(unsafe.Slice((*byte)(grown), 8)); got != "abcdefgh" {
		t.Fatalf("unexpected contents after realloc: %q", got)
	}
}

func TestAllocAlignedHonoursAlignment(t *testing.T) {
	for _, align := range []uintptr{0, 16, 64, 4096} {
		ptr := AllocAligned(100, align)
		if ptr == nil {
			t.Fatalf("AllocAligned(100, %d) returned nil", align)
		}
		want := align
		if want < MinAlignment {
			want = MinAlignment
		}
		if uintptr(ptr)%want != 0 {
			FreeBytes(ptr)
			t.Fatalf("pointer %p not aligned to %d", ptr, want)
		}
		FreeBytes(ptr)
	}
}

func TestMemcpyAndStrlen(t *testing.T) {
	src := AllocBytes(6)
	dst := AllocBytes(6)
	if src == nil || dst == nil {
		t.Fatalf("AllocBytes returned nil")
	}
	t.Cleanup(func() {
		FreeBytes(src)
		FreeBytes(dst)
	})

	copy(unsafe.Slice((*byte)(src), 6), "hello\x00")
	Memcpy(dst, src, 6)

	if n := Strlen(dst); n != 5 {
		t.Fatalf("unexpected strlen: got %d want 5", n)
	}
	if Strlen(nil) != 0 {
		t.Fatalf("expected zero length for nil pointer")
	}
}
