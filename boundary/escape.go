package boundary

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/rocketbitz/safemem-go/jsonesc"
	"github.com/rocketbitz/safemem-go/mem"
)

// EscapeJSON writes the escaped, NUL-terminated form of the C string at input
// into the outputCap bytes at output. It returns the number of bytes written
// excluding the terminator, StatusFailure for nil pointers, a zero capacity
// or an output that does not fit, and StatusInvalidEncoding for non UTF-8
// input. Outputs longer than math.MaxInt32 bytes cannot be reported and fail
// with StatusFailure.
func (r *Runtime) EscapeJSON(input, output unsafe.Pointer, outputCap uintptr) int32 {
	if input == nil || output == nil || outputCap == 0 {
		r.escapeFailed(errNullArgument)
		return int32(StatusFailure)
	}
	src := mem.CStringBytes(input)
	dst := mem.BlockBytes(output, outputCap)

	span := r.startSpan("safemem.escape_json",
		TraceAttribute{Key: "input_len", Value: len(src)},
		TraceAttribute{Key: "output_cap", Value: outputCap})

	n, path, err := r.escapeTo(dst, src)
	if err == nil {
		err = checkCount(n)
	}
	if err != nil {
		span.End(err)
		r.escapeFailed(err)
		return int32(StatusFromError(err))
	}
	span.AddEvent("escaped", TraceAttribute{Key: "written", Value: n}, TraceAttribute{Key: "path", Value: path})
	span.End(nil)

	r.stats.escapes.Add(1)
	r.metricEscapeCompleted(path, len(src), n)
	return int32(n)
}

// escapeTo copies src directly when it needs no escaping and otherwise
// escapes through a pooled scratch buffer before the capacity check.
func (r *Runtime) escapeTo(dst, src []byte) (int, string, error) {
	if err := jsonesc.CheckEncoding(src); err != nil {
		return 0, "", err
	}
	if !jsonesc.NeedsEscapingBytes(src) {
		n, err := jsonesc.CopyTerminated(dst, src)
		return n, pathDirect, err
	}

	scratch, err := r.scratch.Acquire()
	if err != nil {
		// Pool closed; fall back to a one-off allocation.
		n, err := jsonesc.EscapeTo(dst, src)
		return n, pathEscaped, err
	}
	defer r.scratch.Release(scratch)

	if err := jsonesc.EscapeInto(unsafe.String(unsafe.SliceData(src), len(src)), scratch); err != nil {
		return 0, pathEscaped, err
	}
	n, err := jsonesc.CopyTerminated(dst, scratch.Bytes())
	return n, pathEscaped, err
}

var errCountOverflow = errors.New("safemem: escaped length exceeds int32")

// checkCount rejects lengths the int32 return value cannot carry.
func checkCount(n int) error {
	if int64(n) > math.MaxInt32 {
		return fmt.Errorf("escaped %d bytes: %w", n, errCountOverflow)
	}
	return nil
}

func (r *Runtime) escapeFailed(err error) {
	r.stats.escapeFailures.Add(1)
	r.metricEscapeFailed(err)
	r.logEvent("escape_failed", logKV("error", err), logKV(labelReason, failureReason(err)))
}
