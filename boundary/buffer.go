package boundary

import (
	"runtime/cgo"
	"unsafe"

	"github.com/rocketbitz/safemem-go/mem"
)

// Handle is an opaque reference to a boundary-owned buffer. The zero Handle is
// the null handle.
type Handle uintptr

// Buffer resolves the handle. It returns nil for the null handle; any other
// handle that was not produced by BufferNew, or was already freed, panics.
func (h Handle) Buffer() *mem.Buffer {
	if h == 0 {
		return nil
	}
	return cgo.Handle(h).Value().(*mem.Buffer)
}

// BufferNew creates a growable buffer reserving max(initialCapacity, 64) bytes
// and returns its handle.
func (r *Runtime) BufferNew(initialCapacity uintptr) Handle {
	buf := mem.NewBuffer(initialCapacity)
	r.stats.buffersCreated.Add(1)
	r.metricBufferCreated(buf.Cap())
	r.logEvent("buffer_created", sizeKV("capacity", buf.Cap()))
	return Handle(cgo.NewHandle(buf))
}

// BufferAppend appends n bytes at data to the buffer. Appending zero bytes
// always succeeds; a null handle or data pointer with a non-zero length fails.
func (r *Runtime) BufferAppend(h Handle, data unsafe.Pointer, n uintptr) Status {
	if n == 0 {
		return StatusOK
	}
	if h == 0 || data == nil {
		r.appendFailed(errNullArgument)
		return StatusFailure
	}
	buf := h.Buffer()
	p := unsafe.Slice((*byte)(data), n)
	if buf.Len()+n <= buf.Cap() {
		buf.AppendUnchecked(p)
		return StatusOK
	}
	before := buf.Cap()
	if err := buf.Append(p); err != nil {
		r.appendFailed(err)
		return StatusFromError(err)
	}
	r.logEvent("buffer_grown", sizeKV("from", before), sizeKV("to", buf.Cap()))
	return StatusOK
}

// BufferLen returns the buffer length, or zero for the null handle.
func (r *Runtime) BufferLen(h Handle) uintptr {
	if h == 0 {
		return 0
	}
	return h.Buffer().Len()
}

// BufferData returns the address of the buffer's first byte, or nil for the
// null handle. The address is valid until the next mutating call.
func (r *Runtime) BufferData(h Handle) unsafe.Pointer {
	if h == 0 {
		return nil
	}
	return h.Buffer().Pointer()
}

// BufferFree releases the buffer and its handle. The null handle is a no-op.
func (r *Runtime) BufferFree(h Handle) {
	if h == 0 {
		return
	}
	ch := cgo.Handle(h)
	buf := ch.Value().(*mem.Buffer)
	ch.Delete()
	_ = buf.Close()
	r.stats.buffersFreed.Add(1)
	r.metricBufferReleased()
	r.logEvent("buffer_freed")
}

func (r *Runtime) appendFailed(err error) {
	r.stats.appendFailures.Add(1)
	r.metricAppendFailed(err)
	r.logEvent("buffer_append_failed", logKV("error", err))
}
