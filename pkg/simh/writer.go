package simh

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer emits SIMH tape structure to an underlying stream.
//
// Records are framed with matching leading and trailing length words and
// odd-length payloads are padded with a single zero byte, per the SIMH
// convention. The writer performs no buffering of its own.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord writes a good (class 0) data record.
func (tw *Writer) WriteRecord(data []byte) error {
	return tw.WriteRecordClass(ClassGood, data)
}

// WriteBadRecord writes a record flagged as containing read errors.
func (tw *Writer) WriteBadRecord(data []byte) error {
	return tw.WriteRecordClass(ClassBad, data)
}

// WriteRecordClass writes a data record with an explicit class nibble.
func (tw *Writer) WriteRecordClass(class uint8, data []byte) error {
	length, err := recordLength(len(data))
	if err != nil {
		return err
	}
	word, err := encodeWord(class, length)
	if err != nil {
		return err
	}

	if err := tw.writeWord(word); err != nil {
		return err
	}
	if _, err := tw.w.Write(data); err != nil {
		return err
	}
	if length%2 != 0 {
		if _, err := tw.w.Write([]byte{0}); err != nil {
			return err
		}
	}
	return tw.writeWord(word)
}

// WriteTapeMark writes a single tape mark. Call twice for the standard
// end-of-medium terminator.
func (tw *Writer) WriteTapeMark() error {
	return tw.writeWord(TapeMarkWord)
}

// WriteEndOfMedium writes the explicit end-of-medium word.
func (tw *Writer) WriteEndOfMedium() error {
	return tw.writeWord(EndOfMediumWord)
}

// WriteEraseGap writes count erase-gap markers.
func (tw *Writer) WriteEraseGap(count int) error {
	for i := 0; i < count; i++ {
		if err := tw.writeWord(EraseGapWord); err != nil {
			return err
		}
	}
	return nil
}

// WritePrivateMarker writes a class-7 private marker word.
func (tw *Writer) WritePrivateMarker(value uint32) error {
	word, err := encodeWord(classPrivate, value)
	if err != nil {
		return err
	}
	return tw.writeWord(word)
}

func (tw *Writer) writeWord(word uint32) error {
	var buf [MarkSize]byte
	binary.LittleEndian.PutUint32(buf[:], word)
	_, err := tw.w.Write(buf[:])
	return err
}

func recordLength(n int) (uint32, error) {
	if n < 0 || uint64(n) > uint64(MaxRecordLength) {
		return 0, fmt.Errorf("%w: record is %d bytes, ceiling is 0x%08X",
			ErrRecordTooLong, n, MaxRecordLength)
	}
	return uint32(n), nil
}
