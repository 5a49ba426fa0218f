// Package jsonesc escapes text for embedding inside JSON string literals.
package jsonesc

import (
	"errors"
	"fmt"
	"unicode/utf8"
	"unsafe"

	"github.com/rocketbitz/safemem-go/mem"
)

var (
	// ErrBufferTooSmall indicates that the escaped text plus its terminator does not fit the destination.
	ErrBufferTooSmall = errors.New("safemem: destination buffer too small")
	// ErrInvalidEncoding indicates that the input is not valid UTF-8.
	ErrInvalidEncoding = errors.New("safemem: input is not valid UTF-8")
)

const hexDigits = "0123456789abcdef"

// NeedsEscaping reports whether s contains a quote, a backslash or a control
// byte below 0x20.
func NeedsEscaping(s string) bool {
	for i := 0; i < len(s); i++ {
		if needsEscape(s[i]) {
			return true
		}
	}
	return false
}

// NeedsEscapingBytes is NeedsEscaping for byte slices.
func NeedsEscapingBytes(b []byte) bool {
	return NeedsEscaping(unsafe.String(unsafe.SliceData(b), len(b)))
}

// Escape returns the escaped form of s. Output is pre-sized assuming roughly
// one escape per eight bytes.
func Escape(s string) string {
	return EscapeWithCapacity(s, len(s)+len(s)/8)
}

// EscapeWithCapacity is Escape with an explicit output size estimate.
func EscapeWithCapacity(s string, estimate int) string {
	if !NeedsEscaping(s) {
		return s
	}
	return string(AppendEscaped(make([]byte, 0, estimate), s))
}

// EscapedLen returns the length of the escaped form of s.
func EscapedLen(s string) int {
	n := len(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\' || c == '\n' || c == '\r' || c == '\t' || c == 0x08 || c == 0x0c:
			n++
		case c < 0x20:
			n += 5
		}
	}
	return n
}

// AppendEscaped appends the escaped form of s to dst.
func AppendEscaped(dst []byte, s string) []byte {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !needsEscape(c) {
			continue
		}
		dst = append(dst, s[start:i]...)
		dst = appendEscapedByte(dst, c)
		start = i + 1
	}
	return append(dst, s[start:]...)
}

// EscapeInto appends the escaped form of s to out, growing it as needed. It is
// meant for scratch buffers reused across calls.
func EscapeInto(s string, out *mem.Buffer) error {
	if err := out.Reserve(uintptr(len(s) + len(s)/8)); err != nil {
		return err
	}
	var scratch [6]byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !needsEscape(c) {
			continue
		}
		if err := out.AppendString(s[start:i]); err != nil {
			return err
		}
		if err := out.Append(appendEscapedByte(scratch[:0], c)); err != nil {
			return err
		}
		start = i + 1
	}
	return out.AppendString(s[start:])
}

// EscapeTo writes the escaped, NUL-terminated form of src into dst and returns
// the number of bytes written excluding the terminator. It fails with
// ErrInvalidEncoding for non UTF-8 input and ErrBufferTooSmall when the
// escaped form plus terminator exceeds len(dst).
func EscapeTo(dst, src []byte) (int, error) {
	if err := CheckEncoding(src); err != nil {
		return 0, err
	}
	if !NeedsEscapingBytes(src) {
		return CopyTerminated(dst, src)
	}
	s := unsafe.String(unsafe.SliceData(src), len(src))
	return CopyTerminated(dst, AppendEscaped(make([]byte, 0, len(s)+len(s)/8), s))
}

// CheckEncoding returns ErrInvalidEncoding unless src is valid UTF-8.
func CheckEncoding(src []byte) error {
	if !utf8.Valid(src) {
		return ErrInvalidEncoding
	}
	return nil
}

// CopyTerminated copies already escaped text and a NUL terminator into dst and
// returns len(escaped).
func CopyTerminated(dst, escaped []byte) (int, error) {
	if len(escaped)+1 > len(dst) {
		return 0, fmt.Errorf("copy %d bytes into %d: %w", len(escaped)+1, len(dst), ErrBufferTooSmall)
	}
	n := copy(dst, escaped)
	dst[n] = 0
	return n, nil
}

func needsEscape(c byte) bool {
	return c < 0x20 || c == '"' || c == '\\'
}

func appendEscapedByte(dst []byte, c byte) []byte {
	switch c {
	case '"':
		return append(dst, '\\', '"')
	case '\\':
		return append(dst, '\\', '\\')
	case '\n':
		return append(dst, '\\', 'n')
	case '\r':
		return append(dst, '\\', 'r')
	case '\t':
		return append(dst, '\\', 't')
	case 0x08:
		return append(dst, '\\', 'b')
	case 0x0c:
		return append(dst, '\\', 'f')
	}
	return append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
}
