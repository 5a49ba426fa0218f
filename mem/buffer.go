package mem

import (
	"unsafe"

	"github.com/rocketbitz/safemem-go/internal/capi"
)

// MinCapacity is the smallest reservation a Buffer makes at construction.
const MinCapacity uintptr = 64

// Buffer is a growable byte container backed by C-allocated storage. The zero
// value is not usable; construct buffers with NewBuffer.
type Buffer struct {
	data     unsafe.Pointer
	length   uintptr
	capacity uintptr
	released bool
}

// RawBlock is a raw (pointer, size) pair handed across the boundary. Size is the
// value the owner must pass back to Deallocate or Resize.
type RawBlock struct {
	Pointer unsafe.Pointer
	Size    uintptr
}

// NewBuffer reserves max(initialCapacity, MinCapacity) bytes. Allocator
// exhaustion is fatal and panics with ErrOutOfMemory.
func NewBuffer(initialCapacity uintptr) *Buffer {
	capacity := max(initialCapacity, MinCapacity)
	data := capi.AllocBytes(capacity)
	if data == nil {
		panic(ErrOutOfMemory)
	}
	return &Buffer{data: data, capacity: capacity}
}

// Len returns the number of bytes in use.
func (b *Buffer) Len() uintptr {
	if b == nil {
		return 0
	}
	return b.length
}

// Cap returns the number of bytes reserved.
func (b *Buffer) Cap() uintptr {
	if b == nil {
		return 0
	}
	return b.capacity
}

// IsEmpty reports whether the buffer holds no data.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// Bytes returns a view of the buffer contents. The view is invalidated by the
// next mutating call.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.data == nil || b.length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(b.data), b.length)
}

// Pointer returns the address of the first byte of storage, or nil when the
// buffer owns none.
func (b *Buffer) Pointer() unsafe.Pointer {
	if b == nil {
		return nil
	}
	return b.data
}

// Append copies p after the current contents, growing the reservation to
// max(cap*3/2, len+len(p)) when it does not fit. On ErrOutOfMemory the buffer
// is left unchanged.
func (b *Buffer) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := b.ensure(uintptr(len(p))); err != nil {
		return err
	}
	b.AppendUnchecked(p)
	return nil
}

// AppendString is Append for string data.
func (b *Buffer) AppendString(s string) error {
	return b.Append(unsafe.Slice(unsafe.StringData(s), len(s)))
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) error {
	if err := b.ensure(1); err != nil {
		return err
	}
	*(*byte)(unsafe.Add(b.data, b.length)) = c
	b.length++
	return nil
}

// AppendUnchecked copies p after the current contents without growing. The
// caller must already have established that Len()+len(p) <= Cap(); violating
// that writes past the reservation.
func (b *Buffer) AppendUnchecked(p []byte) {
	if len(p) == 0 {
		return
	}
	capi.Memcpy(unsafe.Add(b.data, b.length), unsafe.Pointer(unsafe.SliceData(p)), uintptr(len(p)))
	b.length += uintptr(len(p))
}

// Reserve ensures at least n bytes of headroom, applying the same growth policy
// as Append.
func (b *Buffer) Reserve(n uintptr) error {
	return b.ensure(n)
}

// Clear resets the length to zero and keeps the reservation.
func (b *Buffer) Clear() {
	if b == nil {
		return
	}
	b.length = 0
}

// ShrinkToFit releases reserved capacity beyond the current length. A buffer
// with no contents releases its storage entirely.
func (b *Buffer) ShrinkToFit() {
	if b == nil || b.data == nil || b.capacity == b.length {
		return
	}
	if b.length == 0 {
		capi.FreeBytes(b.data)
		b.data = nil
		b.capacity = 0
		return
	}
	data := capi.ReallocBytes(b.data, b.length)
	if data == nil {
		// Shrinking is best-effort; keep the larger block.
		return
	}
	b.data = data
	b.capacity = b.length
}

// IntoRawBlock shrinks the buffer to fit and transfers its storage to the
// caller. The returned Size is the post-shrink capacity and must be passed to
// Deallocate. The buffer owns nothing afterwards.
func (b *Buffer) IntoRawBlock() RawBlock {
	if b == nil || b.released {
		return RawBlock{}
	}
	b.ShrinkToFit()
	block := RawBlock{Pointer: b.data, Size: b.capacity}
	b.forget()
	return block
}

// Close releases the buffer's storage. Subsequent calls are no-ops.
func (b *Buffer) Close() error {
	if b == nil || b.released {
		return nil
	}
	capi.FreeBytes(b.data)
	b.forget()
	return nil
}

func (b *Buffer) forget() {
	b.data = nil
	b.length = 0
	b.capacity = 0
	b.released = true
}

func (b *Buffer) ensure(n uintptr) error {
	if b == nil || b.released {
		return ErrReleased
	}
	needed := b.length + n
	if needed <= b.capacity {
		return nil
	}
	target := max(b.capacity*3/2, needed)
	data := capi.ReallocBytes(b.data, target)
	if data == nil {
		return ErrOutOfMemory
	}
	b.data = data
	b.capacity = target
	return nil
}
