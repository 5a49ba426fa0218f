// Package mem provides C-allocated memory primitives for callers on the far
// side of a cgo boundary: a growable byte buffer with a 1.5x growth policy and
// raw block allocate, resize and deallocate functions keyed by caller-tracked
// sizes.
//
// Storage handed out by this package lives outside the Go heap, so pointers to
// it may be retained by C code. Nothing here synchronizes; a Buffer or block
// must not be used from multiple goroutines without external locking.
package mem
