// Package parser walks the header of a DICOM Part 10 document and yields its
// data elements in file order.
//
// Parse checks the signature up front; the elements themselves are produced
// lazily by a Scanner. Damage at the end of a document (a value that runs past
// the buffer, a partial trailing header) ends the stream quietly with the
// last element marked Truncated. Damage that makes the remaining stream
// unreadable surfaces as a KindMalformed *Error from Scanner.Err.
package parser

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"dicomviewer/internal/metadata/dictionary"
)

const (
	preambleLen = 128
	signature   = "DICM"

	// maxNestingDepth bounds sequence recursion.
	maxNestingDepth = 16
	// maxInflatedBytes bounds deflated datasets.
	maxInflatedBytes = 256 << 20
)

const (
	tagMetaGroupLength   uint32 = 0x00020000
	tagTransferSyntaxUID uint32 = 0x00020010
)

// VRLookup supplies value representations for implicit VR documents.
type VRLookup interface {
	VR(key uint32) (string, bool)
}

// Option configures Parse.
type Option func(*Scanner)

// WithVRLookup overrides the dictionary used for implicit VR documents.
func WithVRLookup(l VRLookup) Option {
	return func(s *Scanner) {
		if l != nil {
			s.vrs = l
		}
	}
}

// Scanner yields the elements of one document front to back. It cannot be
// rewound; create a new Scanner with Parse to read the document again.
type Scanner struct {
	data   []byte
	pos    int
	syntax TransferSyntax
	vrs    VRLookup

	inMeta  bool
	metaEnd int

	cur  RawElement
	err  error
	done bool
}

// Parse validates the preamble and signature and returns a Scanner
// positioned at the first file meta element.
func Parse(data []byte, opts ...Option) (*Scanner, error) {
	if len(data) < preambleLen+len(signature) {
		return nil, &Error{Kind: KindNotThisFormat, Offset: len(data), Reason: "document shorter than DICOM preamble"}
	}
	if string(data[preambleLen:preambleLen+len(signature)]) != signature {
		return nil, &Error{Kind: KindNotThisFormat, Offset: preambleLen, Reason: "missing DICM signature"}
	}
	s := &Scanner{
		data:    data,
		pos:     preambleLen + len(signature),
		syntax:  LookupTransferSyntax(""),
		vrs:     dictionary.Standard(),
		inMeta:  true,
		metaEnd: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next advances to the next element. It returns false at the end of the
// stream or on a fatal error; check Err afterwards.
func (s *Scanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	if s.inMeta && !s.metaContinues() {
		if err := s.enterDataset(); err != nil {
			s.err = err
			return false
		}
	}

	ts := s.syntax
	if s.inMeta {
		ts = metaSyntax
	}
	el, err := s.readElement(ts)
	if err != nil {
		s.err = err
		return false
	}
	if el == nil {
		s.done = true
		return false
	}
	if s.inMeta {
		if err := s.observeMeta(*el); err != nil {
			s.err = err
			return false
		}
	}
	if el.Truncated {
		s.done = true
	}
	s.cur = *el
	return true
}

// Element returns the element produced by the last successful Next.
func (s *Scanner) Element() RawElement {
	return s.cur
}

// Err returns the fatal error that stopped the scan, if any.
func (s *Scanner) Err() error {
	return s.err
}

// TransferSyntax returns the dataset encoding. It is only final once the
// scanner has left the file meta group.
func (s *Scanner) TransferSyntax() TransferSyntax {
	return s.syntax
}

func (s *Scanner) metaContinues() bool {
	if s.metaEnd >= 0 {
		return s.pos < s.metaEnd
	}
	return len(s.data)-s.pos >= 2 && binary.LittleEndian.Uint16(s.data[s.pos:]) == 0x0002
}

func (s *Scanner) observeMeta(el RawElement) error {
	switch el.Tag {
	case tagMetaGroupLength:
		if el.Truncated || len(el.Value) != 4 {
			return nil
		}
		groupLen := int64(binary.LittleEndian.Uint32(el.Value))
		end := int64(s.pos) + groupLen
		if end > int64(len(s.data)) {
			return malformed(el.Offset, "file meta group length %d exceeds document", groupLen)
		}
		s.metaEnd = int(end)
	case tagTransferSyntaxUID:
		s.syntax = LookupTransferSyntax(strings.TrimRight(string(el.Value), " \x00"))
	}
	return nil
}

// enterDataset switches from the file meta group to the dataset encoding.
func (s *Scanner) enterDataset() error {
	s.inMeta = false
	if !s.syntax.Deflated {
		return nil
	}
	r := flate.NewReader(bytes.NewReader(s.data[s.pos:]))
	defer r.Close()
	inflated, err := io.ReadAll(io.LimitReader(r, maxInflatedBytes+1))
	if err != nil {
		return &Error{Kind: KindMalformed, Offset: s.pos, Reason: "corrupt deflated dataset", Err: err}
	}
	if len(inflated) > maxInflatedBytes {
		return malformed(s.pos, "deflated dataset exceeds %d bytes", maxInflatedBytes)
	}
	s.data = inflated
	s.pos = 0
	return nil
}

// readElement decodes the element at the cursor. A nil element with a nil
// error means the stream is exhausted.
func (s *Scanner) readElement(ts TransferSyntax) (*RawElement, error) {
	start := s.pos
	hdr, ok := readHeader(s.data, start, ts, s.vrs)
	if !ok {
		return nil, nil
	}
	if hdr.isDelimiter() {
		return nil, malformed(start, "item tag (%04x,%04x) outside a sequence", hdr.key>>16, hdr.key&0xFFFF)
	}

	valueStart := start + hdr.headerLen
	el := &RawElement{Tag: hdr.key, VR: hdr.vr, Offset: start, Order: ts.Order}

	if hdr.length == undefinedLength {
		if !allowsUndefinedLength(hdr.vr, ts.Implicit) {
			return nil, malformed(start, "undefined length on %s element (%04x,%04x)", hdr.vr, hdr.key>>16, hdr.key&0xFFFF)
		}
		contentEnd, next, truncated, err := s.skipSequence(valueStart, ts, 1)
		if err != nil {
			return nil, err
		}
		el.Value = s.data[valueStart:contentEnd]
		el.Truncated = truncated
		s.pos = next
		return el, nil
	}

	if uint64(hdr.length) > uint64(math.MaxInt-valueStart) {
		return nil, malformed(start, "length %d overflows document offset", hdr.length)
	}
	end := valueStart + int(hdr.length)
	if end > len(s.data) {
		el.Value = s.data[valueStart:]
		el.Truncated = true
		s.pos = len(s.data)
		return el, nil
	}
	el.Value = s.data[valueStart:end]
	s.pos = end
	return el, nil
}

// skipSequence walks the items of an undefined-length value starting at pos.
// It returns where the contents end, where the next element begins and
// whether the data ran out first.
func (s *Scanner) skipSequence(pos int, ts TransferSyntax, depth int) (contentEnd, next int, truncated bool, err error) {
	if depth > maxNestingDepth {
		return 0, 0, false, malformed(pos, "sequence nesting deeper than %d", maxNestingDepth)
	}
	for {
		hdr, ok := readHeader(s.data, pos, ts, s.vrs)
		if !ok {
			return len(s.data), len(s.data), true, nil
		}
		switch hdr.key {
		case itemTag:
			pos += hdr.headerLen
			if hdr.length == undefinedLength {
				pos, truncated, err = s.skipItem(pos, ts, depth)
				if err != nil || truncated {
					return len(s.data), len(s.data), truncated, err
				}
				continue
			}
			if int64(hdr.length) > int64(len(s.data)-pos) {
				return len(s.data), len(s.data), true, nil
			}
			pos += int(hdr.length)
		case sequenceDelimitation:
			return pos, pos + hdr.headerLen, false, nil
		default:
			return 0, 0, false, malformed(pos, "expected item or sequence delimiter, found (%04x,%04x)", hdr.key>>16, hdr.key&0xFFFF)
		}
	}
}

// skipItem walks the nested elements of an undefined-length item up to and
// including its delimitation item.
func (s *Scanner) skipItem(pos int, ts TransferSyntax, depth int) (next int, truncated bool, err error) {
	for {
		hdr, ok := readHeader(s.data, pos, ts, s.vrs)
		if !ok {
			return len(s.data), true, nil
		}
		if hdr.key == itemDelimitationTag {
			return pos + hdr.headerLen, false, nil
		}
		if hdr.isDelimiter() {
			return 0, false, malformed(pos, "unexpected (%04x,%04x) inside item", hdr.key>>16, hdr.key&0xFFFF)
		}
		valueStart := pos + hdr.headerLen
		if hdr.length == undefinedLength {
			if !allowsUndefinedLength(hdr.vr, ts.Implicit) {
				return 0, false, malformed(pos, "undefined length on %s element (%04x,%04x)", hdr.vr, hdr.key>>16, hdr.key&0xFFFF)
			}
			_, pos, truncated, err = s.skipSequence(valueStart, ts, depth+1)
			if err != nil || truncated {
				return len(s.data), truncated, err
			}
			continue
		}
		if int64(hdr.length) > int64(len(s.data)-valueStart) {
			return len(s.data), true, nil
		}
		pos = valueStart + int(hdr.length)
	}
}
