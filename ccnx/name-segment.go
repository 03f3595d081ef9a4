package ccnx

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/tlv"
)

var (
	unescapedChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~")
	hexChars       = []byte("0123456789ABCDEF")
)

var segmentLabels = map[uint16]string{
	an.TtNameSegment: "Name",
	an.TtIPID:        "IPID",
	an.TtChunk:       "Chunk",
	an.TtVersion:     "Version",
}

func isValidSegmentType(typ uint16) bool {
	return typ != 0
}

// NameSegment represents a name segment.
// Zero value is invalid.
type NameSegment struct {
	tlv.Element
}

var (
	_ tlv.Fielder     = NameSegment{}
	_ tlv.Unmarshaler = (*NameSegment)(nil)
)

// Valid checks whether this segment has a valid TLV-TYPE.
func (seg NameSegment) Valid() bool {
	return isValidSegmentType(seg.Type)
}

// Equal determines whether two segments are the same.
func (seg NameSegment) Equal(other NameSegment) bool {
	return seg.Type == other.Type && bytes.Equal(seg.Value, other.Value)
}

// Copy returns a segment that does not share memory with this segment.
func (seg NameSegment) Copy() NameSegment {
	return MakeNameSegment(seg.Type, bytes.Clone(seg.Value))
}

// Field implements tlv.Fielder interface.
func (seg NameSegment) Field() tlv.Field {
	if !seg.Valid() {
		return tlv.FieldError(ErrSegmentType)
	}
	return seg.Element.Field()
}

// UnmarshalTLV decodes from wire format.
func (seg *NameSegment) UnmarshalTLV(typ uint16, value []byte) error {
	if e := seg.Element.UnmarshalTLV(typ, value); e != nil {
		return e
	}
	if !seg.Valid() {
		return ErrSegmentType
	}
	return nil
}

// String returns URI representation of this segment.
// Generic name segments are written without label.
func (seg NameSegment) String() string {
	return string(seg.appendStringTo(make([]byte, 0, 8+3*seg.Length())))
}

func (seg NameSegment) appendStringTo(b []byte) []byte {
	switch label, ok := segmentLabels[seg.Type]; {
	case seg.Type == an.TtNameSegment:
	case ok:
		b = append(b, label...)
		b = append(b, '=')
	case seg.Type >= an.TtAppMin && seg.Type <= an.TtAppMax:
		b = append(b, "App:"...)
		b = strconv.AppendUint(b, uint64(seg.Type-an.TtAppMin), 10)
		b = append(b, '=')
	default:
		b = strconv.AppendUint(b, uint64(seg.Type), 10)
		b = append(b, '=')
	}

	for _, ch := range seg.Value {
		if bytes.IndexByte(unescapedChars, ch) >= 0 {
			b = append(b, ch)
		} else {
			b = append(b, '%', hexChars[ch>>4], hexChars[ch&0x0F])
		}
	}
	return b
}

// MakeNameSegment constructs a NameSegment from TLV-TYPE and TLV-VALUE.
func MakeNameSegment(typ uint16, value []byte) (seg NameSegment) {
	seg.Element = tlv.MakeElement(typ, value)
	return seg
}

// NameSegmentFrom constructs a NameSegment from TLV-TYPE and tlv.Fielder as TLV-VALUE.
// If value encodes to an error, returns an invalid NameSegment.
//
//	NameSegmentFrom(an.TtChunk, tlv.NNI(1))
func NameSegmentFrom(typ uint16, value tlv.Fielder) NameSegment {
	v, e := value.Field().Encode(nil)
	if e != nil {
		return NameSegment{}
	}
	return MakeNameSegment(typ, v)
}

func parseSegmentLabel(label string) (typ uint16, ok bool) {
	for t, l := range segmentLabels {
		if strings.EqualFold(l, label) {
			return t, true
		}
	}
	if app, isApp := strings.CutPrefix(label, "App:"); isApp {
		n, e := strconv.ParseUint(app, 10, 16)
		if e == nil && n <= an.TtAppMax-an.TtAppMin {
			return an.TtAppMin + uint16(n), true
		}
		return 0, false
	}
	n, e := strconv.ParseUint(label, 10, 16)
	if e == nil && isValidSegmentType(uint16(n)) {
		return uint16(n), true
	}
	return 0, false
}

// ParseNameSegment parses URI representation of name segment.
// It uses best effort and can accept any input.
func ParseNameSegment(input string) (seg NameSegment) {
	seg.Type = an.TtNameSegment
	if label, value, hasLabel := strings.Cut(input, "="); hasLabel {
		if typ, ok := parseSegmentLabel(label); ok {
			seg.Type = typ
			input = value
		}
	}

	var value bytes.Buffer
	value.Grow(len(input))
	for i := 0; i < len(input); {
		ch := input[i]
		if ch == '%' && i+3 <= len(input) {
			if b, e := strconv.ParseUint(input[i+1:i+3], 16, 8); e == nil {
				value.WriteByte(byte(b))
				i += 3
				continue
			}
		}
		value.WriteByte(ch)
		i++
	}
	seg.Value = value.Bytes()
	return seg
}
