package resolver

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"dicomviewer/internal/metadata/dicomtest"
	"dicomviewer/internal/metadata/parser"
)

func TestDecode(t *testing.T) {
	le := binary.LittleEndian
	f32 := make([]byte, 4)
	le.PutUint32(f32, math.Float32bits(1.5))
	f64 := make([]byte, 16)
	le.PutUint64(f64, math.Float64bits(0.25))
	le.PutUint64(f64[8:], math.Float64bits(-2))

	tests := []struct {
		name     string
		vr       string
		value    []byte
		expected string
	}{
		{name: "text trims trailing padding", vr: "LO", value: []byte("Hospital "), expected: "Hospital"},
		{name: "uid trims nul", vr: "UI", value: []byte("1.2.3\x00"), expected: "1.2.3"},
		{name: "person name keeps components", vr: "PN", value: []byte("Doe^Jane "), expected: "Doe^Jane"},
		{name: "decimal string trims both ends", vr: "DS", value: []byte(" 0.5\\0.5 "), expected: "0.5\\0.5"},
		{name: "integer string", vr: "IS", value: []byte(" 12 "), expected: "12"},
		{name: "date passes through", vr: "DA", value: []byte("20230101"), expected: "20230101"},
		{name: "time passes through", vr: "TM", value: []byte("101530.123 "), expected: "101530.123"},
		{name: "empty value", vr: "LO", value: nil, expected: ""},
		{name: "unsigned short", vr: "US", value: dicomtest.U16(le, 512), expected: "512"},
		{name: "multiple unsigned shorts", vr: "US", value: dicomtest.U16(le, 1, 2, 3), expected: "1\\2\\3"},
		{name: "signed short", vr: "SS", value: dicomtest.U16(le, 0xFFFF), expected: "-1"},
		{name: "unsigned long", vr: "UL", value: dicomtest.U32(le, 70000), expected: "70000"},
		{name: "signed long", vr: "SL", value: dicomtest.U32(le, 0xFFFFFFFE), expected: "-2"},
		{name: "float", vr: "FL", value: f32, expected: "1.5"},
		{name: "doubles", vr: "FD", value: f64, expected: "0.25\\-2"},
		{name: "odd trailing bytes shown as hex", vr: "US", value: []byte{1, 0, 0xAB}, expected: "1\\ab"},
		{name: "attribute tag", vr: "AT", value: dicomtest.U16(le, 0x0010, 0x0020), expected: "(0010,0020)"},
		{name: "sequence", vr: "SQ", value: []byte{1, 2, 3}, expected: ""},
		{name: "binary blob", vr: "OB", value: []byte{0xDE, 0xAD}, expected: "dead"},
		{name: "printable unknown", vr: "UN", value: []byte("hello "), expected: "hello"},
		{name: "binary unknown", vr: "ZZ", value: []byte{0xFF, 0x00, 0x01}, expected: "ff0001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(parser.RawElement{VR: tt.vr, Value: tt.value, Order: le})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecode_BlobIsCapped(t *testing.T) {
	got := Decode(parser.RawElement{VR: "OW", Value: make([]byte, 200)})
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, maxBlobBytes*2+3, len(got))
}
