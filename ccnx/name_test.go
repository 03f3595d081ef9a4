package ccnx_test

import (
	"testing"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/tlv"
)

func TestNameSegment(t *testing.T) {
	assert, _ := makeAR(t)

	for _, tt := range []struct {
		input     string
		canonical string
		typ       uint16
		value     string
	}{
		{"A", "", an.TtNameSegment, "41"},
		{"Name=A", "A", an.TtNameSegment, "41"},
		{"Chunk=%01", "", an.TtChunk, "01"},
		{"version=%02", "Version=%02", an.TtVersion, "02"},
		{"IPID=%FF", "", an.TtIPID, "FF"},
		{"App:1=x", "", an.TtAppMin + 1, "78"},
		{"4096=x", "App:0=x", an.TtAppMin, "78"},
		{"Goodbye%21", "", an.TtNameSegment, "476F6F6462796521"},
		{"a%2", "a%252", an.TtNameSegment, "612532"},
		{"Unknown=A", "Unknown%3DA", an.TtNameSegment, "556E6B6E6F776E3D41"},
	} {
		seg := ccnx.ParseNameSegment(tt.input)
		assert.Equal(tt.typ, seg.Type, tt.input)
		bytesEqual(assert, bytesFromHex(tt.value), seg.Value, tt.input)
		canonical := tt.canonical
		if canonical == "" {
			canonical = tt.input
		}
		assert.Equal(canonical, seg.String(), tt.input)
	}

	seg := ccnx.NameSegmentFrom(an.TtChunk, tlv.NNI(0x0102))
	assert.Equal("Chunk=%01%02", seg.String())

	var invalid ccnx.NameSegment
	assert.False(invalid.Valid())
	_, e := tlv.EncodeFrom(invalid)
	assert.ErrorIs(e, ccnx.ErrSegmentType)
}

func TestName(t *testing.T) {
	assert, require := makeAR(t)

	var empty ccnx.Name
	assert.Equal("lci:/", empty.String())
	assert.Len(ccnx.ParseName("lci:/"), 0)
	assert.True(ccnx.ParseName("lci:/").Equal(empty))

	name := ccnx.ParseName("lci:/Hello/World")
	require.Len(name, 2)
	assert.Equal("lci:/Hello/World", name.String())
	assert.True(ccnx.ParseName("ccnx:/Hello/World").Equal(name))
	assert.True(ccnx.ParseName("/Hello/World").Equal(name))
	assert.True(ccnx.ParseName("lci:/Hello").IsPrefixOf(name))
	assert.False(name.IsPrefixOf(ccnx.ParseName("lci:/Hello")))
	assert.True(name.GetPrefix(-1).Equal(ccnx.ParseName("lci:/Hello")))
	assert.Nil(name.GetPrefix(3))

	appended := name.Append(ccnx.ParseNameSegment("Chunk=%00"))
	assert.Equal("lci:/Hello/World/Chunk=%00", appended.String())
	assert.Len(name, 2)

	copied := name.Copy()
	assert.True(copied.Equal(name))
	copied[0].Value[0] = 'J'
	assert.Equal("lci:/Hello/World", name.String())
	assert.Equal("lci:/Jello/World", copied.String())

	wire, e := tlv.EncodeFrom(name)
	require.NoError(e)
	bytesEqual(assert, bytesFromHex("0000 0012 0001 0005 48656C6C6F 0001 0005 576F726C64"), wire)

	var decoded ccnx.Name
	require.NoError(decoded.UnmarshalBinary(wire[tlv.HeaderSize:]))
	assert.True(decoded.Equal(name))

	text, e := name.MarshalText()
	assert.NoError(e)
	assert.Equal("lci:/Hello/World", string(text))
	require.NoError(decoded.UnmarshalText([]byte("lci:/Hello/Goodbye%21")))
	assert.Equal("Goodbye!", string(decoded[1].Value))
}

func TestNameChunk(t *testing.T) {
	assert, _ := makeAR(t)

	name := ccnx.ParseName("lci:/file")
	_, ok := name.Chunk()
	assert.False(ok)

	chunked := name.WithChunk(258)
	assert.Equal("lci:/file/Chunk=%01%02", chunked.String())
	n, ok := chunked.Chunk()
	assert.True(ok)
	assert.EqualValues(258, n)
	assert.True(chunked.GetPrefix(-1).Equal(name))
}
