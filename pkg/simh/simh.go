// Package simh implements the SIMH magnetic tape image (.tap) format.
//
// A .tap file is a flat sequence of little-endian 32-bit metadata words.
// Data records are framed by identical leading and trailing length words
// (4-bit class, 28-bit length) with the payload padded to an even byte
// count. All-zero words are tape marks; a double tape mark is the format's
// end-of-medium terminator. The package describes on-tape structure only
// and never interprets record payloads.
package simh

const (
	// MaxRecordLength is the safety ceiling applied to record length
	// words when reading. Real half-inch tape records top out far below
	// this; anything larger indicates a corrupt or non-SIMH file.
	MaxRecordLength uint32 = 0x0120_0000

	// MarkSize is the width of one metadata word in bytes.
	MarkSize = 4

	// ExpectedTrailingMarks is the number of tape marks a well-formed
	// image carries at end of medium.
	ExpectedTrailingMarks = 2
)

// Metadata word values. The tape mark doubles as a zero-length record.
const (
	TapeMarkWord    uint32 = 0x0000_0000
	EraseGapWord    uint32 = 0xFFFF_FFFE
	EndOfMediumWord uint32 = 0xFFFF_FFFF
	ForwardHalfGap  uint32 = 0xFFFE_FFFF
)

// Half-gap marker ranges. Forward half-gaps other than ForwardHalfGap are
// illegal under the SIMH convention.
const (
	forwardHalfGapIllegalStart uint32 = 0xFFFE_0000
	forwardHalfGapIllegalEnd   uint32 = 0xFFFE_FFFE
	reverseHalfGapStart        uint32 = 0xFFFF_0000
	reverseHalfGapEnd          uint32 = 0xFFFF_FFFD
)

// Record classes.
const (
	ClassGood    uint8 = 0x0
	ClassBad     uint8 = 0x8
	classPrivate uint8 = 0x7
	classReserve uint8 = 0xF
)

const (
	classShift = 28
	classMask  uint32 = 0xF000_0000
	valueMask  uint32 = 0x0FFF_FFFF
)

func encodeWord(class uint8, value uint32) (uint32, error) {
	if class > 0xF {
		return 0, errClassRange(class)
	}
	if value > valueMask {
		return 0, errValueRange(value)
	}
	return uint32(class)<<classShift | value&valueMask, nil
}

func decodeWord(word uint32) (uint8, uint32) {
	return uint8((word & classMask) >> classShift), word & valueMask
}
