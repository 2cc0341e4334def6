package parser

import (
	"encoding/binary"
	"fmt"
)

// RawElement is one decoded unit of a document header.
type RawElement struct {
	// Tag is group<<16 | element.
	Tag uint32
	VR  string
	// Value aliases the document buffer; it is only valid for the lifetime of
	// the request that owns the buffer.
	Value []byte
	// Truncated is set when the declared length ran past the end of the data.
	Truncated bool
	Offset    int
	// Order is the byte order binary values were written in.
	Order binary.ByteOrder
}

func (e RawElement) Group() uint16   { return uint16(e.Tag >> 16) }
func (e RawElement) Element() uint16 { return uint16(e.Tag) }

// TagString formats the tag as (gggg,eeee).
func (e RawElement) TagString() string {
	return fmt.Sprintf("(%04x,%04x)", e.Group(), e.Element())
}

const (
	undefinedLength uint32 = 0xFFFFFFFF

	itemTag              uint32 = 0xFFFEE000
	itemDelimitationTag  uint32 = 0xFFFEE00D
	sequenceDelimitation uint32 = 0xFFFEE0DD
)

// shortLengthVRs use a 2-byte length in explicit VR encoding. All other
// codes, including ones this parser does not know, use 2 reserved bytes
// followed by a 4-byte length.
var shortLengthVRs = map[string]struct{}{
	"AE": {}, "AS": {}, "AT": {}, "CS": {}, "DA": {}, "DS": {}, "DT": {},
	"FL": {}, "FD": {}, "IS": {}, "LO": {}, "LT": {}, "PN": {}, "SH": {},
	"SL": {}, "SS": {}, "ST": {}, "TM": {}, "UI": {}, "UL": {}, "US": {},
}

// header is the fixed-size part of an element.
type header struct {
	key       uint32
	vr        string
	length    uint32
	headerLen int
}

func (h header) isDelimiter() bool {
	return h.key>>16 == 0xFFFE
}

// readHeader decodes the element header at pos. ok is false when fewer bytes
// than a complete header remain.
func readHeader(buf []byte, pos int, ts TransferSyntax, vrs VRLookup) (header, bool) {
	if len(buf)-pos < 8 {
		return header{}, false
	}
	order := ts.Order
	key := uint32(order.Uint16(buf[pos:]))<<16 | uint32(order.Uint16(buf[pos+2:]))

	// Item and delimiter tags never carry a VR.
	if key>>16 == 0xFFFE {
		return header{key: key, length: order.Uint32(buf[pos+4:]), headerLen: 8}, true
	}

	if ts.Implicit {
		vr, found := vrs.VR(key)
		if !found {
			vr = "UN"
		}
		return header{key: key, vr: vr, length: order.Uint32(buf[pos+4:]), headerLen: 8}, true
	}

	vr := string(buf[pos+4 : pos+6])
	if _, short := shortLengthVRs[vr]; short {
		return header{key: key, vr: vr, length: uint32(order.Uint16(buf[pos+6:])), headerLen: 8}, true
	}
	if len(buf)-pos < 12 {
		return header{}, false
	}
	return header{key: key, vr: vr, length: order.Uint32(buf[pos+8:]), headerLen: 12}, true
}

// allowsUndefinedLength reports whether an element may use the 0xFFFFFFFF
// length marker. Implicit VR documents signal sequences this way, so any
// tag is accepted there.
func allowsUndefinedLength(vr string, implicit bool) bool {
	if implicit {
		return true
	}
	switch vr {
	case "SQ", "UN", "OB", "OW":
		return true
	}
	return false
}
