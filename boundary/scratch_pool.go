package boundary

import (
	"errors"
	"sync/atomic"

	"github.com/rocketbitz/safemem-go/mem"
)

// scratchRetainFactor bounds how far a pooled buffer may grow past its initial
// capacity before Release closes it instead of keeping it.
const scratchRetainFactor = 4

// ScratchPool manages reusable growable buffers for repeated escaping.
type ScratchPool struct {
	capacity  uintptr
	maxRetain uintptr
	pool      chan *mem.Buffer
	closed    atomic.Bool
}

// NewScratchPool constructs a pool that keeps up to size idle buffers, each
// created with the given initial capacity. Buffers are provisioned lazily.
func NewScratchPool(capacity uintptr, size int) *ScratchPool {
	if size < 0 {
		size = 0
	}
	capacity = max(capacity, mem.MinCapacity)
	return &ScratchPool{
		capacity:  capacity,
		maxRetain: capacity * scratchRetainFactor,
		pool:      make(chan *mem.Buffer, size),
	}
}

// Acquire returns an empty buffer from the pool, creating one when none is
// idle. Callers must Release the buffer when finished.
func (p *ScratchPool) Acquire() (*mem.Buffer, error) {
	if p == nil {
		return nil, errors.New("safemem: nil ScratchPool")
	}
	if p.closed.Load() {
		return nil, errors.New("safemem: ScratchPool closed")
	}
	select {
	case buf := <-p.pool:
		return buf, nil
	default:
		return mem.NewBuffer(p.capacity), nil
	}
}

// Release clears buf and returns it to the pool. Buffers that grew beyond the
// retain limit, or that arrive when the pool is full or closed, are closed.
func (p *ScratchPool) Release(buf *mem.Buffer) {
	if p == nil || buf == nil {
		return
	}
	if p.closed.Load() || buf.Cap() > p.maxRetain || buf.Cap() < mem.MinCapacity {
		_ = buf.Close()
		return
	}
	buf.Clear()
	select {
	case p.pool <- buf:
	default:
		_ = buf.Close()
	}
}

// Idle reports the number of buffers currently held by the pool.
func (p *ScratchPool) Idle() int {
	if p == nil {
		return 0
	}
	return len(p.pool)
}

// Close releases all pooled buffers and prevents further acquisitions.
func (p *ScratchPool) Close() {
	if p == nil || !p.closed.CompareAndSwap(false, true) {
		return
	}
	for {
		select {
		case buf := <-p.pool:
			_ = buf.Close()
		default:
			return
		}
	}
}
