package jsonesc

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rocketbitz/safemem-go/mem"
)

func TestEscapeTable(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{`a"b`, `a\"b`},
		{`back\slash`, `back\\slash`},
		{"line1\nline2", `line1\nline2`},
		{"cr\rlf", `cr\rlf`},
		{"has\ttab", `has\ttab`},
		{"\b\f", `\b\f`},
		{"\u0001", `\u0001`},
		{"\x1f\x00", `\u001f\u0000`},
		{"héllo ✓", "héllo ✓"},
		{"\x7f", "\x7f"},
	}
	for _, tc := range cases {
		if got := Escape(tc.in); got != tc.want {
			t.Fatalf("Escape(%q): got %q want %q", tc.in, got, tc.want)
		}
		if got := EscapedLen(tc.in); got != len(tc.want) {
			t.Fatalf("EscapedLen(%q): got %d want %d", tc.in, got, len(tc.want))
		}
	}
}

func TestNeedsEscaping(t *testing.T) {
	if NeedsEscaping("plain text") {
		t.Fatalf("plain text should not need escaping")
	}
	if !NeedsEscaping("has\ttab") {
		t.Fatalf("tab should need escaping")
	}
	if NeedsEscaping("") || NeedsEscapingBytes(nil) {
		t.Fatalf("empty input should not need escaping")
	}
	if !NeedsEscapingBytes([]byte(`"`)) {
		t.Fatalf("quote should need escaping")
	}
}

func TestEscapeUnchangedWhenSafe(t *testing.T) {
	inputs := []string{"abc", "0123456789", "spaces and punctuation !#$%&'()*+,-./:;<=>?@[]^_`{|}~", "ünïcödé"}
	for _, in := range inputs {
		if NeedsEscaping(in) {
			t.Fatalf("test input %q unexpectedly needs escaping", in)
		}
		if got := Escape(in); got != in {
			t.Fatalf("Escape(%q) changed safe input to %q", in, got)
		}
	}
}

func TestEscapeProducesValidJSON(t *testing.T) {
	var b strings.Builder
	for c := 0; c < 0x80; c++ {
		b.WriteByte(byte(c))
	}
	in := b.String()

	var decoded string
	if err := json.Unmarshal([]byte(`"`+Escape(in)+`"`), &decoded); err != nil {
		t.Fatalf("escaped output is not a valid JSON string: %v", err)
	}
	if decoded != in {
		t.Fatalf("decoded value differs from input")
	}
}

func TestEscapeIntoScratchBuffer(t *testing.T) {
	buf := mem.NewBuffer(0)
	t.Cleanup(func() { _ = buf.Close() })

	for _, in := range []string{"first\n", `second "quoted"`, ""} {
		buf.Clear()
		if err := EscapeInto(in, buf); err != nil {
			t.Fatalf("EscapeInto(%q): %v", in, err)
		}
		if got, want := string(buf.Bytes()), Escape(in); got != want {
			t.Fatalf("EscapeInto(%q): got %q want %q", in, got, want)
		}
	}

	if err := EscapeInto("x", nil); !errors.Is(err, mem.ErrReleased) {
		t.Fatalf("expected ErrReleased for nil buffer, got %v", err)
	}
}

func TestAppendEscaped(t *testing.T) {
	out := AppendEscaped([]byte(`{"k":"`), "v\"1")
	out = append(out, `"}`...)
	if string(out) != `{"k":"v\"1"}` {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestEscapeToCapacityBoundary(t *testing.T) {
	cases := []string{"plain", "needs \"escape\"\n", "\x01"}
	for _, in := range cases {
		required := EscapedLen(in) + 1

		exact := make([]byte, required)
		n, err := EscapeTo(exact, []byte(in))
		if err != nil {
			t.Fatalf("EscapeTo(%q) with exact capacity: %v", in, err)
		}
		if n != required-1 {
			t.Fatalf("EscapeTo(%q): wrote %d want %d", in, n, required-1)
		}
		if string(exact[:n]) != Escape(in) || exact[n] != 0 {
			t.Fatalf("EscapeTo(%q): unexpected output %q", in, exact)
		}

		short := make([]byte, required-1)
		if _, err := EscapeTo(short, []byte(in)); !errors.Is(err, ErrBufferTooSmall) {
			t.Fatalf("EscapeTo(%q) one byte short: expected ErrBufferTooSmall, got %v", in, err)
		}
	}
}

func TestEscapeToEmptyInput(t *testing.T) {
	dst := []byte{0xff}
	n, err := EscapeTo(dst, nil)
	if err != nil || n != 0 || dst[0] != 0 {
		t.Fatalf("unexpected result for empty input: n=%d err=%v dst=%v", n, err, dst)
	}
	if _, err := EscapeTo(nil, nil); !errors.Is(err, ErrBufferTooSmall) {
		t.Fatalf("expected ErrBufferTooSmall for empty destination, got %v", err)
	}
}

func TestEscapeToInvalidEncoding(t *testing.T) {
	dst := make([]byte, 64)
	if _, err := EscapeTo(dst, []byte{'a', 0xff, 'b'}); !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestCopyTerminated(t *testing.T) {
	dst := []byte("xxxxxx")
	n, err := CopyTerminated(dst, []byte("abc"))
	if err != nil || n != 3 {
		t.Fatalf("CopyTerminated: n=%d err=%v", n, err)
	}
	if string(dst[:4]) != "abc\x00" || dst[4] != 'x' {
		t.Fatalf("unexpected destination %q", dst)
	}

	if _, err := CopyTerminated(make([]byte, 3), []byte("abc")); !errors.Is(err, ErrBufferTooSmall) {
		t.Fatalf("expected ErrBufferTooSmall without room for the terminator, got %v", err)
	}
}

func TestCheckEncoding(t *testing.T) {
	if err := CheckEncoding([]byte("héllo")); err != nil {
		t.Fatalf("unexpected error for valid input: %v", err)
	}
	if err := CheckEncoding([]byte{0xc3, 0x28}); !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
}
