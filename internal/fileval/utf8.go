package fileval

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"
)

const chunkSize = 32 * 1024 // 32 KB

type encoding int

const (
	encodingText encoding = iota
	encodingBinary
	encodingInvalid
)

// scan reads r in chunks and classifies its content. Up to 3 trailing bytes
// are carried between reads so code points split across chunk boundaries
// are validated whole. Scanning stops at the first NUL byte or invalid
// sequence. When partial is set, r is a prefix of the file and may end
// inside a code point.
func scan(r io.Reader, partial bool) (encoding, error) {
	buf := make([]byte, chunkSize)
	var carry []byte

	for {
		n, readErr := r.Read(buf)
		chunk := buf[:n]
		if len(carry) > 0 {
			chunk = append(carry, chunk...)
			carry = nil
		}

		if bytes.IndexByte(chunk, 0) >= 0 {
			return encodingBinary, nil
		}

		if readErr == nil || partial {
			if trail := trailingIncomplete(chunk); trail > 0 {
				carry = bytes.Clone(chunk[len(chunk)-trail:])
				chunk = chunk[:len(chunk)-trail]
			}
		}
		if !utf8.Valid(chunk) {
			return encodingInvalid, nil
		}

		switch {
		case errors.Is(readErr, io.EOF):
			return encodingText, nil
		case readErr != nil:
			return encodingText, readErr
		}
	}
}

// trailingIncomplete returns the number of trailing bytes in data that form
// an incomplete UTF-8 sequence, or 0 when data ends on a code-point boundary.
func trailingIncomplete(data []byte) int {
	n := len(data)
	for i := 1; i <= 3 && i <= n; i++ {
		b := data[n-i]
		if b < utf8.RuneSelf {
			return 0
		}
		if !utf8.RuneStart(b) {
			continue
		}
		var want int
		switch {
		case b&0xE0 == 0xC0:
			want = 2
		case b&0xF0 == 0xE0:
			want = 3
		case b&0xF8 == 0xF0:
			want = 4
		default:
			return 0
		}
		if i < want {
			return i
		}
		return 0
	}
	return 0
}
