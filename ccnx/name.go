package ccnx

import (
	"strings"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/tlv"
)

// URI schemes.
const (
	SchemeLCI  = "lci:"
	schemeCCNx = "ccnx:"
)

// Name represents a name.
// The zero Name has zero segments and prints as "lci:/".
type Name []NameSegment

var (
	_ tlv.Fielder = Name{}
)

// Length returns TLV-LENGTH.
// Use len(name) to get number of segments.
func (name Name) Length() int {
	sum := 0
	for _, seg := range name {
		sum += seg.Size()
	}
	return sum
}

// Equal determines whether two names are the same.
func (name Name) Equal(other Name) bool {
	if len(name) != len(other) {
		return false
	}
	return name.IsPrefixOf(other)
}

// IsPrefixOf returns true if this name is a prefix of other name.
func (name Name) IsPrefixOf(other Name) bool {
	if len(name) > len(other) {
		return false
	}
	for i, seg := range name {
		if !seg.Equal(other[i]) {
			return false
		}
	}
	return true
}

// GetPrefix returns a prefix of i segments.
// If i is negative, it excludes the last -i segments.
func (name Name) GetPrefix(i int) Name {
	if i < 0 {
		i += len(name)
	}
	if i < 0 || i > len(name) {
		return nil
	}
	return name[:i]
}

// Chunk returns the chunk number in the last segment.
// ok is false if the last segment is not a chunk segment.
func (name Name) Chunk() (n uint64, ok bool) {
	if len(name) == 0 || name[len(name)-1].Type != an.TtChunk {
		return 0, false
	}
	var v tlv.NNI
	if e := v.UnmarshalBinary(name[len(name)-1].Value); e != nil {
		return 0, false
	}
	return uint64(v), true
}

// WithChunk returns a new name with a chunk segment appended.
func (name Name) WithChunk(n uint64) Name {
	return name.Append(NameSegmentFrom(an.TtChunk, tlv.NNI(n)))
}

// Append returns a new name with additional segments.
// The new name does not share its segment slice with this name.
func (name Name) Append(segs ...NameSegment) Name {
	out := make(Name, 0, len(name)+len(segs))
	out = append(out, name...)
	return append(out, segs...)
}

// Copy returns a deep copy of this name.
func (name Name) Copy() Name {
	if name == nil {
		return nil
	}
	out := make(Name, len(name))
	for i, seg := range name {
		out[i] = seg.Copy()
	}
	return out
}

// Field implements tlv.Fielder interface.
func (name Name) Field() tlv.Field {
	subs := make([]tlv.Fielder, len(name))
	for i, seg := range name {
		subs[i] = seg
	}
	return tlv.TLVFrom(an.TtName, subs...)
}

// UnmarshalBinary decodes TLV-VALUE from wire format.
func (name *Name) UnmarshalBinary(wire []byte) error {
	*name = make(Name, 0)
	d := tlv.DecodingBuffer(wire)
	for _, de := range d.Elements() {
		var seg NameSegment
		if e := de.Unmarshal(&seg); e != nil {
			return e
		}
		*name = append(*name, seg)
	}
	return d.ErrUnlessEOF()
}

// MarshalText implements encoding.TextMarshaler interface.
func (name Name) MarshalText() (text []byte, e error) {
	return []byte(name.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler interface.
func (name *Name) UnmarshalText(text []byte) error {
	*name = ParseName(string(text))
	return nil
}

// String returns URI representation of this name.
func (name Name) String() string {
	if len(name) == 0 {
		return SchemeLCI + "/"
	}
	b := []byte(SchemeLCI)
	for _, seg := range name {
		b = append(b, '/')
		b = seg.appendStringTo(b)
	}
	return string(b)
}

// ParseName parses URI representation of name.
// Both "lci:" and "ccnx:" schemes are accepted, and the scheme may be omitted.
// It uses best effort and can accept any input.
func ParseName(input string) (name Name) {
	if rest, ok := strings.CutPrefix(input, SchemeLCI); ok {
		input = rest
	} else {
		input = strings.TrimPrefix(input, schemeCCNx)
	}
	for _, token := range strings.Split(input, "/") {
		if token == "" {
			continue
		}
		name = append(name, ParseNameSegment(token))
	}
	return name
}
