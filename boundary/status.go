package boundary

import (
	"errors"

	"github.com/rocketbitz/safemem-go/jsonesc"
	"github.com/rocketbitz/safemem-go/mem"
)

// Status is the integer result code returned across the C boundary.
type Status int32

const (
	// StatusOK reports success.
	StatusOK Status = 0
	// StatusFailure reports a null argument, insufficient capacity or allocation failure.
	StatusFailure Status = -1
	// StatusInvalidEncoding reports input text that is not valid UTF-8.
	StatusInvalidEncoding Status = -2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailure:
		return "failure"
	case StatusInvalidEncoding:
		return "invalid_encoding"
	default:
		return "unknown"
	}
}

// StatusFromError maps an error to the status code reported to C callers.
func StatusFromError(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, jsonesc.ErrInvalidEncoding):
		return StatusInvalidEncoding
	default:
		return StatusFailure
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, jsonesc.ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, jsonesc.ErrBufferTooSmall):
		return "too_small"
	case errors.Is(err, errNullArgument):
		return "null_argument"
	case errors.Is(err, mem.ErrReleased):
		return "released"
	case errors.Is(err, errCountOverflow):
		return "count_overflow"
	default:
		return "out_of_memory"
	}
}

var errNullArgument = errors.New("safemem: null argument")
