package simh

import "encoding/binary"

// CountTrailingMarks returns the number of consecutive tape-mark words
// ending exactly at the end of data. The scan walks backward in
// non-overlapping 4-byte windows and stops at the first non-mark window
// or when fewer than 4 bytes remain. It is defined for any byte sequence,
// including the empty one.
func CountTrailingMarks(data []byte) int {
	count := 0
	pos := len(data)
	for pos >= MarkSize {
		if binary.LittleEndian.Uint32(data[pos-MarkSize:pos]) != TapeMarkWord {
			break
		}
		count++
		pos -= MarkSize
	}
	return count
}

// NeedsTrailerFix reports whether a trailing mark count indicates
// over-termination. Exactly two marks is the valid terminator; zero or one
// is a malformed trailer but not something trimming repairs.
func NeedsTrailerFix(trailingMarks int) bool {
	return trailingMarks > ExpectedTrailingMarks
}

// TrimTrailingMarks removes over-termination from a tape image, leaving
// exactly two trailing tape marks, and returns the trimmed image together
// with the number of marks removed. An image with two or fewer trailing
// marks is returned unchanged with a zero count; the result is idempotent
// under repeated application. The returned slice aliases data.
func TrimTrailingMarks(data []byte) ([]byte, int) {
	count := CountTrailingMarks(data)
	if !NeedsTrailerFix(count) {
		return data, 0
	}
	extra := count - ExpectedTrailingMarks
	return data[:len(data)-extra*MarkSize], extra
}
