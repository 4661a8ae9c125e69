package simh

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MarkKind classifies non-record metadata words.
type MarkKind int

const (
	MarkSingle MarkKind = iota
	MarkDouble
	MarkEndOfMedium
	MarkEraseGap
	MarkHalfGapForward
	MarkHalfGapReverse
	MarkPrivate
	MarkReserved
)

func (k MarkKind) String() string {
	switch k {
	case MarkSingle:
		return "tape mark"
	case MarkDouble:
		return "double tape mark"
	case MarkEndOfMedium:
		return "end of medium"
	case MarkEraseGap:
		return "erase gap"
	case MarkHalfGapForward:
		return "forward half gap"
	case MarkHalfGapReverse:
		return "reverse half gap"
	case MarkPrivate:
		return "private marker"
	case MarkReserved:
		return "reserved marker"
	default:
		return fmt.Sprintf("mark(%d)", int(k))
	}
}

// Record is one data record read from a tape image.
type Record struct {
	Offset int64
	Class  uint8
	Data   []byte
}

// Block is one structural element of a tape image: either a data record
// (Record non-nil) or a metadata mark. For private and reserved markers
// Class and Value carry the decoded word fields.
type Block struct {
	Offset int64
	Record *Record
	Mark   MarkKind
	Class  uint8
	Value  uint32
}

// Reader walks a tape image block by block.
//
// The second word of a double tape mark is reported as its own block with
// MarkDouble, matching how drives surface consecutive marks.
type Reader struct {
	r         io.Reader
	offset    int64
	limit     uint32
	afterMark bool
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, limit: MaxRecordLength}
}

// WithLimit lowers the record-length safety ceiling.
func (tr *Reader) WithLimit(limit uint32) *Reader {
	if limit > valueMask {
		limit = valueMask
	}
	tr.limit = limit
	return tr
}

// Next returns the next block of the tape, or io.EOF at end of stream.
// A truncated final word or a record whose trailing length word does not
// match its leading one is reported as an error.
func (tr *Reader) Next() (Block, error) {
	offset := tr.offset
	word, ok, err := tr.readWord()
	if err != nil {
		return Block{}, err
	}
	if !ok {
		return Block{}, io.EOF
	}

	if word == TapeMarkWord {
		return tr.tapeMarkBlock(offset)
	}
	tr.afterMark = false

	// The illegal forward half-gap range decodes to the reserved class,
	// so it has to be rejected before general marker classification.
	if forwardHalfGapIllegalStart <= word && word <= forwardHalfGapIllegalEnd {
		return Block{}, fmt.Errorf("%w: illegal forward half-gap word 0x%08X at offset %d",
			ErrCorruptTape, word, offset)
	}
	if blk, ok := markBlock(offset, word); ok {
		return blk, nil
	}

	return tr.recordBlock(offset, word)
}

func (tr *Reader) tapeMarkBlock(offset int64) (Block, error) {
	kind := MarkSingle
	if tr.afterMark {
		kind = MarkDouble
	}
	tr.afterMark = !tr.afterMark

	return Block{Offset: offset, Mark: kind}, nil
}

func markBlock(offset int64, word uint32) (Block, bool) {
	switch {
	case word == EndOfMediumWord:
		return Block{Offset: offset, Mark: MarkEndOfMedium}, true
	case word == EraseGapWord:
		return Block{Offset: offset, Mark: MarkEraseGap}, true
	case word == ForwardHalfGap:
		return Block{Offset: offset, Mark: MarkHalfGapForward}, true
	case reverseHalfGapStart <= word && word <= reverseHalfGapEnd:
		return Block{Offset: offset, Mark: MarkHalfGapReverse}, true
	}

	class, value := decodeWord(word)
	switch class {
	case classPrivate:
		return Block{Offset: offset, Mark: MarkPrivate, Class: class, Value: value}, true
	case classReserve:
		return Block{Offset: offset, Mark: MarkReserved, Class: class, Value: value}, true
	}
	return Block{}, false
}

func (tr *Reader) recordBlock(offset int64, word uint32) (Block, error) {
	class, length := decodeWord(word)
	if length > tr.limit {
		return Block{}, fmt.Errorf("%w: length 0x%08X at offset %d (ceiling 0x%08X)",
			ErrRecordTooLong, length, offset, tr.limit)
	}

	data := make([]byte, length)
	if err := tr.readFull(data); err != nil {
		return Block{}, err
	}
	if length%2 != 0 {
		var pad [1]byte
		if err := tr.readFull(pad[:]); err != nil {
			return Block{}, err
		}
	}

	trailing, ok, err := tr.readWord()
	if err != nil {
		return Block{}, err
	}
	if !ok {
		return Block{}, fmt.Errorf("%w: missing trailing length word at offset %d",
			ErrTruncatedWord, tr.offset)
	}
	if trailing != word {
		return Block{}, fmt.Errorf("%w: trailing length 0x%08X does not match leading 0x%08X at offset %d",
			ErrCorruptTape, trailing, word, offset)
	}

	return Block{
		Offset: offset,
		Record: &Record{Offset: offset, Class: class, Data: data},
	}, nil
}

// readWord returns the next metadata word, or ok=false at a clean end of
// stream. A partial word is an ErrTruncatedWord.
func (tr *Reader) readWord() (uint32, bool, error) {
	var buf [MarkSize]byte
	n, err := io.ReadFull(tr.r, buf[:])
	switch err {
	case nil:
	case io.EOF:
		return 0, false, nil
	case io.ErrUnexpectedEOF:
		return 0, false, fmt.Errorf("%w: %d stray bytes at offset %d",
			ErrTruncatedWord, n, tr.offset)
	default:
		return 0, false, err
	}
	tr.offset += MarkSize
	return binary.LittleEndian.Uint32(buf[:]), true, nil
}

func (tr *Reader) readFull(p []byte) error {
	n, err := io.ReadFull(tr.r, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: record truncated after %d of %d payload bytes",
			ErrTruncatedWord, n, len(p))
	}
	if err == nil {
		tr.offset += int64(len(p))
	}
	return err
}
