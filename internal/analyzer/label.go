package analyzer

import "strings"

// labelLength is the fixed size of an ANSI tape label record.
const labelLength = 80

// Label is a decoded ANSI/ISO standard tape label. Only the fields
// relevant to the label's ID are populated.
type Label struct {
	ID string `json:"id"`

	Serial string `json:"serial,omitempty"` // VOL1
	Owner  string `json:"owner,omitempty"`  // VOL1

	File    string `json:"file,omitempty"`     // HDR1, EOF1, EOV1
	FileSet string `json:"file_set,omitempty"` // HDR1
	Created string `json:"created,omitempty"`  // HDR1

	RecordFormat string `json:"record_format,omitempty"` // HDR2
	BlockLen     string `json:"block_len,omitempty"`     // HDR2
	RecordLen    string `json:"record_len,omitempty"`    // HDR2

	Blocks string `json:"blocks,omitempty"` // EOF1, EOV1
}

// DecodeLabel interprets an 80-byte record as an ANSI label. It returns
// false for records of any other size or with an unrecognized identifier.
func DecodeLabel(b []byte) (*Label, bool) {
	if len(b) != labelLength {
		return nil, false
	}

	id := strings.TrimSpace(asciiField(b[:4]))
	switch id {
	case "VOL1":
		return &Label{
			ID:     id,
			Serial: asciiField(b[4:10]),
			Owner:  asciiField(b[37:51]),
		}, true
	case "HDR1":
		return &Label{
			ID:      id,
			File:    asciiField(b[4:21]),
			FileSet: asciiField(b[21:27]),
			Created: asciiField(b[41:47]),
		}, true
	case "HDR2":
		return &Label{
			ID:           id,
			RecordFormat: asciiField(b[4:5]),
			BlockLen:     asciiField(b[5:10]),
			RecordLen:    asciiField(b[10:15]),
		}, true
	case "EOF1", "EOV1":
		return &Label{
			ID:     id,
			File:   asciiField(b[4:21]),
			Blocks: asciiField(b[54:60]),
		}, true
	}

	if strings.HasPrefix(id, "UHL") || strings.HasPrefix(id, "UTL") {
		return &Label{ID: id}, true
	}
	return nil, false
}

// asciiField renders a label field, replacing non-ASCII bytes and trimming
// the space padding ANSI labels use.
func asciiField(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 0x20 && c < 0x7F {
			out[i] = c
		} else {
			out[i] = '.'
		}
	}
	return strings.TrimSpace(string(out))
}
