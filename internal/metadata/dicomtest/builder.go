// Package dicomtest builds small DICOM Part 10 documents for tests.
package dicomtest

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
)

// Transfer syntax UIDs understood by Builder.
const (
	ImplicitLE = "1.2.840.10008.1.2"
	ExplicitLE = "1.2.840.10008.1.2.1"
	DeflatedLE = "1.2.840.10008.1.2.1.99"
	ExplicitBE = "1.2.840.10008.1.2.2"
)

// Builder assembles a document element by element. The zero value is not
// usable; start with New.
type Builder struct {
	syntax    string
	meta      bytes.Buffer
	dataset   bytes.Buffer
	noMetaLen bool
	signature string
}

// New starts a document whose dataset uses the given transfer syntax.
func New(syntax string) *Builder {
	b := &Builder{syntax: syntax, signature: "DICM"}
	if syntax != "" {
		writeExplicit(&b.meta, binary.LittleEndian, 0x0002, 0x0010, "UI", PadUID(syntax))
	}
	return b
}

// WithSignature replaces the DICM magic.
func (b *Builder) WithSignature(sig string) *Builder {
	b.signature = sig
	return b
}

// WithoutMetaGroupLength omits (0002,0000) so readers must detect the end of
// the meta group by the next group number.
func (b *Builder) WithoutMetaGroupLength() *Builder {
	b.noMetaLen = true
	return b
}

// Meta appends an explicit VR little endian element to the file meta group.
func (b *Builder) Meta(group, element uint16, vr string, value []byte) *Builder {
	writeExplicit(&b.meta, binary.LittleEndian, group, element, vr, value)
	return b
}

// Element appends a dataset element encoded in the builder's syntax.
func (b *Builder) Element(group, element uint16, vr string, value []byte) *Builder {
	switch b.syntax {
	case ImplicitLE:
		writeImplicit(&b.dataset, group, element, value)
	case ExplicitBE:
		writeExplicit(&b.dataset, binary.BigEndian, group, element, vr, value)
	default:
		writeExplicit(&b.dataset, binary.LittleEndian, group, element, vr, value)
	}
	return b
}

// String appends a text element, padding odd lengths with a space.
func (b *Builder) String(group, element uint16, vr, value string) *Builder {
	return b.Element(group, element, vr, PadText(value))
}

// Raw appends bytes to the dataset verbatim.
func (b *Builder) Raw(p []byte) *Builder {
	b.dataset.Write(p)
	return b
}

// Bytes renders the document.
func (b *Builder) Bytes() []byte {
	var out bytes.Buffer
	out.Write(make([]byte, 128))
	out.WriteString(b.signature)
	if !b.noMetaLen {
		l := make([]byte, 4)
		binary.LittleEndian.PutUint32(l, uint32(b.meta.Len()))
		writeExplicit(&out, binary.LittleEndian, 0x0002, 0x0000, "UL", l)
	}
	out.Write(b.meta.Bytes())
	if b.syntax == DeflatedLE {
		var z bytes.Buffer
		w, _ := flate.NewWriter(&z, flate.DefaultCompression)
		_, _ = w.Write(b.dataset.Bytes())
		_ = w.Close()
		out.Write(z.Bytes())
	} else {
		out.Write(b.dataset.Bytes())
	}
	return out.Bytes()
}

// PadText pads an odd-length string with a trailing space.
func PadText(s string) []byte {
	if len(s)%2 == 1 {
		s += " "
	}
	return []byte(s)
}

// PadUID pads an odd-length UID with a trailing NUL.
func PadUID(s string) []byte {
	if len(s)%2 == 1 {
		return append([]byte(s), 0)
	}
	return []byte(s)
}

// U16 encodes unsigned shorts.
func U16(order binary.ByteOrder, vs ...uint16) []byte {
	out := make([]byte, 2*len(vs))
	for i, v := range vs {
		order.PutUint16(out[2*i:], v)
	}
	return out
}

// U32 encodes unsigned longs.
func U32(order binary.ByteOrder, vs ...uint32) []byte {
	out := make([]byte, 4*len(vs))
	for i, v := range vs {
		order.PutUint32(out[4*i:], v)
	}
	return out
}

// Header encodes an explicit VR little endian header with an arbitrary
// length, for building damaged documents with Raw.
func Header(group, element uint16, vr string, length uint32) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, group)
	_ = binary.Write(&buf, le, element)
	buf.WriteString(vr)
	if !isShortKnown(vr) {
		buf.Write([]byte{0, 0})
		_ = binary.Write(&buf, le, length)
	} else {
		_ = binary.Write(&buf, le, uint16(length))
	}
	return buf.Bytes()
}

// Item encodes an item or delimiter tag with the given length.
func Item(element uint16, length uint32) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint16(out, 0xFFFE)
	binary.LittleEndian.PutUint16(out[2:], element)
	binary.LittleEndian.PutUint32(out[4:], length)
	return out
}

func isShortKnown(vr string) bool {
	switch vr {
	case "AE", "AS", "AT", "CS", "DA", "DS", "DT", "FL", "FD", "IS", "LO",
		"LT", "PN", "SH", "SL", "SS", "ST", "TM", "UI", "UL", "US":
		return true
	}
	return false
}

func writeExplicit(buf *bytes.Buffer, order binary.ByteOrder, group, element uint16, vr string, value []byte) {
	_ = binary.Write(buf, order, group)
	_ = binary.Write(buf, order, element)
	buf.WriteString(vr)
	if isShortKnown(vr) {
		_ = binary.Write(buf, order, uint16(len(value)))
	} else {
		buf.Write([]byte{0, 0})
		_ = binary.Write(buf, order, uint32(len(value)))
	}
	buf.Write(value)
}

func writeImplicit(buf *bytes.Buffer, group, element uint16, value []byte) {
	le := binary.LittleEndian
	_ = binary.Write(buf, le, group)
	_ = binary.Write(buf, le, element)
	_ = binary.Write(buf, le, uint32(len(value)))
	buf.Write(value)
}
