package mem

import "errors"

var (
	// ErrOutOfMemory indicates that the platform allocator could not satisfy a reservation.
	ErrOutOfMemory = errors.New("safemem: out of memory")
	// ErrNilPointer indicates that a required pointer argument was nil.
	ErrNilPointer = errors.New("safemem: nil pointer")
	// ErrReleased indicates that a buffer no longer owns any storage.
	ErrReleased = errors.New("safemem: buffer released")
)
