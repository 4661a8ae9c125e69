package simh

import (
	"errors"
	"fmt"
)

var (
	ErrCorruptTape   = errors.New("simh: corrupt tape image")
	ErrRecordTooLong = errors.New("simh: record exceeds safety ceiling")
	ErrTruncatedWord = errors.New("simh: truncated metadata word")
	ErrTapeTooLarge  = errors.New("simh: tape image does not fit in memory")
)

func errClassRange(class uint8) error {
	return fmt.Errorf("%w: class 0x%X exceeds 4-bit limit", ErrCorruptTape, class)
}

func errValueRange(value uint32) error {
	return fmt.Errorf("%w: length 0x%08X exceeds 28-bit limit", ErrCorruptTape, value)
}
