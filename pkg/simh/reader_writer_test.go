package simh

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestWriterFraming(t *testing.T) {
	t.Parallel()

	t.Run("even record", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := NewWriter(&buf).WriteRecord([]byte{0x01, 0x02}); err != nil {
			t.Fatalf("write record: %v", err)
		}
		want := []byte{0x02, 0x00, 0x00, 0x00, 0x01, 0x02, 0x02, 0x00, 0x00, 0x00}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Fatalf("framing mismatch:\ngot  %x\nwant %x", buf.Bytes(), want)
		}
	})

	t.Run("odd record gains pad byte", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := NewWriter(&buf).WriteRecord([]byte{0x01, 0x02, 0x03}); err != nil {
			t.Fatalf("write record: %v", err)
		}
		want := []byte{
			0x03, 0x00, 0x00, 0x00,
			0x01, 0x02, 0x03, 0x00,
			0x03, 0x00, 0x00, 0x00,
		}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Fatalf("framing mismatch:\ngot  %x\nwant %x", buf.Bytes(), want)
		}
	})

	t.Run("tape mark is one zero word", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := NewWriter(&buf).WriteTapeMark(); err != nil {
			t.Fatalf("write tape mark: %v", err)
		}
		if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 0}) {
			t.Fatalf("tape mark bytes: %x", buf.Bytes())
		}
	})
}

func TestReaderWalksRecordsAndMarks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tw := NewWriter(&buf)
	if err := tw.WriteRecord([]byte{1, 2, 3}); err != nil {
		t.Fatalf("write record: %v", err)
	}
	if err := tw.WriteTapeMark(); err != nil {
		t.Fatalf("write tape mark: %v", err)
	}
	if err := tw.WriteTapeMark(); err != nil {
		t.Fatalf("write tape mark: %v", err)
	}
	if err := tw.WriteEndOfMedium(); err != nil {
		t.Fatalf("write end of medium: %v", err)
	}

	tr := NewReader(bytes.NewReader(buf.Bytes()))

	blk, err := tr.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if blk.Record == nil {
		t.Fatalf("expected record, got mark %v", blk.Mark)
	}
	if blk.Record.Class != ClassGood || !bytes.Equal(blk.Record.Data, []byte{1, 2, 3}) {
		t.Fatalf("record mismatch: class=%d data=%x", blk.Record.Class, blk.Record.Data)
	}

	wantMarks := []MarkKind{MarkSingle, MarkDouble, MarkEndOfMedium}
	for _, want := range wantMarks {
		blk, err = tr.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if blk.Record != nil || blk.Mark != want {
			t.Fatalf("expected %v, got %+v", want, blk)
		}
	}

	if _, err = tr.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestReaderBadRecordClass(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tw := NewWriter(&buf)
	if err := tw.WriteBadRecord([]byte{0xAA, 0xBB}); err != nil {
		t.Fatalf("write bad record: %v", err)
	}

	blk, err := NewReader(bytes.NewReader(buf.Bytes())).Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if blk.Record == nil || blk.Record.Class != ClassBad {
		t.Fatalf("expected class-8 record, got %+v", blk)
	}
	if !bytes.Equal(blk.Record.Data, []byte{0xAA, 0xBB}) {
		t.Fatalf("payload mismatch: %x", blk.Record.Data)
	}
}

func TestReaderGapMarkers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tw := NewWriter(&buf)
	if err := tw.WriteEraseGap(2); err != nil {
		t.Fatalf("write erase gap: %v", err)
	}
	if err := tw.WritePrivateMarker(0x123); err != nil {
		t.Fatalf("write private marker: %v", err)
	}

	tr := NewReader(bytes.NewReader(buf.Bytes()))
	for i := 0; i < 2; i++ {
		blk, err := tr.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if blk.Mark != MarkEraseGap {
			t.Fatalf("expected erase gap, got %v", blk.Mark)
		}
	}

	blk, err := tr.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if blk.Mark != MarkPrivate || blk.Value != 0x123 {
		t.Fatalf("expected private marker 0x123, got %+v", blk)
	}
}

func TestReaderRejectsOversizedRecord(t *testing.T) {
	t.Parallel()

	var word [4]byte
	word[0] = 0x01
	word[1] = 0x00
	word[2] = 0x20
	word[3] = 0x01 // length 0x01200001, one past the ceiling

	_, err := NewReader(bytes.NewReader(word[:])).Next()
	if !errors.Is(err, ErrRecordTooLong) {
		t.Fatalf("expected ErrRecordTooLong, got %v", err)
	}
}

func TestReaderLengthWordMismatch(t *testing.T) {
	t.Parallel()

	tape := []byte{
		0x02, 0x00, 0x00, 0x00,
		0xAA, 0xBB,
		0x03, 0x00, 0x00, 0x00, // trailing word disagrees
	}
	_, err := NewReader(bytes.NewReader(tape)).Next()
	if !errors.Is(err, ErrCorruptTape) {
		t.Fatalf("expected ErrCorruptTape, got %v", err)
	}
}

func TestReaderTruncatedWord(t *testing.T) {
	t.Parallel()

	_, err := NewReader(bytes.NewReader([]byte{0x02, 0x00})).Next()
	if !errors.Is(err, ErrTruncatedWord) {
		t.Fatalf("expected ErrTruncatedWord, got %v", err)
	}
}

func TestOpenReaderAtRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tw := NewWriter(&buf)
	if err := tw.WriteRecord([]byte("block one")); err != nil {
		t.Fatalf("write record: %v", err)
	}
	if err := tw.WriteTapeMark(); err != nil {
		t.Fatalf("write tape mark: %v", err)
	}
	if err := tw.WriteTapeMark(); err != nil {
		t.Fatalf("write tape mark: %v", err)
	}

	raw := buf.Bytes()
	f, err := OpenReaderAt(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open readerat: %v", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			t.Fatalf("close: %v", cerr)
		}
	}()

	if f.TrailingMarks() != 2 {
		t.Fatalf("TrailingMarks() = %d, want 2", f.TrailingMarks())
	}

	blk, err := f.Reader().Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if blk.Record == nil || string(blk.Record.Data) != "block one" {
		t.Fatalf("record mismatch: %+v", blk)
	}
}
