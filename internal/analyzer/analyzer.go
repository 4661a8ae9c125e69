// Package analyzer summarizes the structure of a SIMH tape image: the
// tape files it contains, their records and ANSI labels, and the health
// of the end-of-medium trailer. It reads only and never alters a tape.
package analyzer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/acms-au/tapfix/pkg/simh"
)

// Encoding is a coarse classification of a record payload.
type Encoding string

const (
	EncodingEmpty  Encoding = "empty"
	EncodingASCII  Encoding = "ascii"
	EncodingBinary Encoding = "binary"
)

// RecordInfo describes one data record.
type RecordInfo struct {
	Index    int      `json:"index"`
	Offset   int64    `json:"offset"`
	Class    uint8    `json:"class"`
	Length   int      `json:"length"`
	Encoding Encoding `json:"encoding"`
	Label    *Label   `json:"label,omitempty"`
}

// FileInfo describes one tape file (the records between tape marks).
type FileInfo struct {
	Index     int          `json:"index"`
	Records   []RecordInfo `json:"records"`
	DataBytes int64        `json:"data_bytes"`
}

// Analysis is the full structural summary of one tape image.
type Analysis struct {
	Size              int64      `json:"size"`
	Files             []FileInfo `json:"files"`
	TotalRecords      int        `json:"total_records"`
	TotalDataBytes    int64      `json:"total_data_bytes"`
	TrailingMarks     int        `json:"trailing_marks"`
	NeedsTrailerFix   bool       `json:"needs_trailer_fix"`
	EndOfMediumOffset int64      `json:"end_of_medium_offset"` // -1 when absent
	Warnings          []string   `json:"warnings,omitempty"`
}

// AnalyzeFile opens path read-only (mmap where possible) and analyzes it.
func AnalyzeFile(path string) (*Analysis, error) {
	f, err := simh.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Analyze(f.Data), nil
}

// Analyze walks the tape block by block. Structural corruption does not
// fail the analysis; the walk stops there and the condition is recorded
// as a warning, since the trailer summary is still useful on damaged
// tapes.
func Analyze(data []byte) *Analysis {
	a := &Analysis{
		Size:              int64(len(data)),
		TrailingMarks:     simh.CountTrailingMarks(data),
		EndOfMediumOffset: -1,
	}
	a.NeedsTrailerFix = simh.NeedsTrailerFix(a.TrailingMarks)

	tr := simh.NewReader(bytes.NewReader(data))
	var current *FileInfo

	closeFile := func() {
		if current != nil {
			a.Files = append(a.Files, *current)
			current = nil
		}
	}

	for {
		blk, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			a.Warnings = append(a.Warnings, err.Error())
			break
		}

		if rec := blk.Record; rec != nil {
			if current == nil {
				current = &FileInfo{Index: len(a.Files) + 1}
			}
			info := RecordInfo{
				Index:    len(current.Records) + 1,
				Offset:   rec.Offset,
				Class:    rec.Class,
				Length:   len(rec.Data),
				Encoding: classify(rec.Data),
			}
			if label, ok := DecodeLabel(rec.Data); ok {
				info.Label = label
			}
			current.Records = append(current.Records, info)
			current.DataBytes += int64(len(rec.Data))
			a.TotalRecords++
			a.TotalDataBytes += int64(len(rec.Data))
			continue
		}

		switch blk.Mark {
		case simh.MarkSingle:
			closeFile()
		case simh.MarkDouble:
			// end-of-medium terminator; anything after it is slack
		case simh.MarkEndOfMedium:
			if a.EndOfMediumOffset < 0 {
				a.EndOfMediumOffset = blk.Offset
			}
		case simh.MarkEraseGap, simh.MarkHalfGapForward, simh.MarkHalfGapReverse:
			// gap markers carry no data and do not delimit files
		case simh.MarkPrivate, simh.MarkReserved:
			a.Warnings = append(a.Warnings,
				fmt.Sprintf("%s (class 0x%X, value 0x%07X) at offset %d",
					blk.Mark, blk.Class, blk.Value, blk.Offset))
		}
	}
	closeFile()

	return a
}

// classify samples the payload to decide whether it looks like text.
func classify(data []byte) Encoding {
	if len(data) == 0 {
		return EncodingEmpty
	}

	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	printable := 0
	for _, c := range sample {
		if c == '\t' || c == '\n' || c == '\r' || (c >= 0x20 && c < 0x7F) {
			printable++
		}
	}
	if printable*100 >= len(sample)*95 {
		return EncodingASCII
	}
	return EncodingBinary
}
