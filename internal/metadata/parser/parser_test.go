package parser

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/suite"

	"dicomviewer/internal/metadata/dicomtest"
)

// =============================================================================
// Header Parser Test Suite
// =============================================================================
// Justification for unit tests: byte-level encodings, damaged documents and
// nesting limits are hard to reach through the HTTP feature tests.

type ParserSuite struct {
	suite.Suite
}

func TestParserSuite(t *testing.T) {
	suite.Run(t, new(ParserSuite))
}

func (s *ParserSuite) collect(data []byte) ([]RawElement, error) {
	sc, err := Parse(data)
	s.Require().NoError(err)
	var out []RawElement
	for sc.Next() {
		out = append(out, sc.Element())
	}
	return out, sc.Err()
}

func (s *ParserSuite) dataset(els []RawElement) []RawElement {
	var out []RawElement
	for _, el := range els {
		if el.Group() != 0x0002 {
			out = append(out, el)
		}
	}
	return out
}

// =============================================================================
// Signature
// =============================================================================

func (s *ParserSuite) TestSignature() {
	s.Run("missing DICM magic is not this format", func() {
		data := dicomtest.New(dicomtest.ExplicitLE).WithSignature("NOPE").Bytes()
		_, err := Parse(data)
		kind, ok := KindOf(err)
		s.Require().True(ok)
		s.Equal(KindNotThisFormat, kind)
	})

	s.Run("document shorter than preamble is not this format", func() {
		_, err := Parse(make([]byte, 100))
		kind, ok := KindOf(err)
		s.Require().True(ok)
		s.Equal(KindNotThisFormat, kind)
	})

	s.Run("signature only yields no elements", func() {
		data := append(make([]byte, 128), "DICM"...)
		els, err := s.collect(data)
		s.NoError(err)
		s.Empty(els)
	})
}

// =============================================================================
// Transfer syntaxes
// =============================================================================

func (s *ParserSuite) TestTransferSyntaxes() {
	for _, uid := range []string{dicomtest.ExplicitLE, dicomtest.ImplicitLE, dicomtest.ExplicitBE, dicomtest.DeflatedLE} {
		s.Run(uid, func() {
			var order binary.ByteOrder = binary.LittleEndian
			if uid == dicomtest.ExplicitBE {
				order = binary.BigEndian
			}
			data := dicomtest.New(uid).
				String(0x0008, 0x0020, "DA", "20240115").
				String(0x0008, 0x0060, "CS", "MR").
				Element(0x0028, 0x0010, "US", dicomtest.U16(order, 512)).
				String(0x0010, 0x0020, "LO", "12345").
				Bytes()

			sc, err := Parse(data)
			s.Require().NoError(err)
			var els []RawElement
			for sc.Next() {
				els = append(els, sc.Element())
			}
			s.Require().NoError(sc.Err())
			s.Equal(uid, sc.TransferSyntax().UID)

			ds := s.dataset(els)
			s.Require().Len(ds, 4)
			s.Equal(uint32(0x00080020), ds[0].Tag)
			s.Equal("DA", ds[0].VR)
			s.Equal("20240115", string(ds[0].Value))
			s.Equal("CS", ds[1].VR)
			s.Equal("MR", string(ds[1].Value))
			s.Equal("US", ds[2].VR)
			s.Equal(uint16(512), ds[2].Order.Uint16(ds[2].Value))
			s.Equal("LO", ds[3].VR)
			s.Equal("12345 ", string(ds[3].Value))
		})
	}
}

func (s *ParserSuite) TestMetaGroupWithoutLength() {
	data := dicomtest.New(dicomtest.ImplicitLE).
		WithoutMetaGroupLength().
		String(0x0008, 0x0060, "CS", "CT").
		Bytes()

	els, err := s.collect(data)
	s.Require().NoError(err)
	ds := s.dataset(els)
	s.Require().Len(ds, 1)
	s.Equal("CS", ds[0].VR)
	s.Equal("CT", string(ds[0].Value))
}

func (s *ParserSuite) TestUndeclaredSyntaxDefaultsToExplicitLE() {
	data := dicomtest.New("").String(0x0008, 0x0060, "CS", "US").Bytes()

	sc, err := Parse(data)
	s.Require().NoError(err)
	s.Require().True(sc.Next())
	s.Equal(UIDExplicitVRLittleEndian, sc.TransferSyntax().UID)
}

func (s *ParserSuite) TestImplicitUnknownTagIsUN() {
	data := dicomtest.New(dicomtest.ImplicitLE).
		Element(0x0009, 0x1001, "", []byte("priv")).
		Bytes()

	els, err := s.collect(data)
	s.Require().NoError(err)
	ds := s.dataset(els)
	s.Require().Len(ds, 1)
	s.Equal("UN", ds[0].VR)
	s.Equal("priv", string(ds[0].Value))
}

// =============================================================================
// Edge cases
// =============================================================================

func (s *ParserSuite) TestTruncatedFinalValue() {
	data := dicomtest.New(dicomtest.ExplicitLE).
		String(0x0008, 0x0060, "CS", "MR").
		Raw(dicomtest.Header(0x0010, 0x0020, "LO", 20)).
		Raw([]byte("ABC")).
		Bytes()

	els, err := s.collect(data)
	s.Require().NoError(err)
	ds := s.dataset(els)
	s.Require().Len(ds, 2)
	s.False(ds[0].Truncated)
	s.True(ds[1].Truncated)
	s.Equal("ABC", string(ds[1].Value))
}

func (s *ParserSuite) TestPartialTrailingHeaderEndsStream() {
	data := dicomtest.New(dicomtest.ExplicitLE).
		String(0x0008, 0x0060, "CS", "MR").
		Raw([]byte{0x10, 0x00, 0x20}).
		Bytes()

	els, err := s.collect(data)
	s.NoError(err)
	s.Len(s.dataset(els), 1)
}

func (s *ParserSuite) TestZeroLengthValue() {
	data := dicomtest.New(dicomtest.ExplicitLE).
		Element(0x0010, 0x0010, "PN", nil).
		String(0x0010, 0x0020, "LO", "ID").
		Bytes()

	els, err := s.collect(data)
	s.Require().NoError(err)
	ds := s.dataset(els)
	s.Require().Len(ds, 2)
	s.Empty(ds[0].Value)
	s.False(ds[0].Truncated)
	s.Equal("ID", string(ds[1].Value))
}

func (s *ParserSuite) TestUnknownVRIsOpaque() {
	data := dicomtest.New(dicomtest.ExplicitLE).
		Element(0x0011, 0x0010, "ZZ", []byte{1, 2, 3, 4}).
		String(0x0010, 0x0020, "LO", "ID").
		Bytes()

	els, err := s.collect(data)
	s.Require().NoError(err)
	ds := s.dataset(els)
	s.Require().Len(ds, 2)
	s.Equal("ZZ", ds[0].VR)
	s.Equal([]byte{1, 2, 3, 4}, ds[0].Value)
	s.Equal("ID", string(ds[1].Value))
}

// =============================================================================
// Sequences
// =============================================================================

func (s *ParserSuite) TestUndefinedLengthSequenceIsSkipped() {
	inner := append(dicomtest.Header(0x0008, 0x0100, "SH", 4), "CODE"...)
	data := dicomtest.New(dicomtest.ExplicitLE).
		Raw(dicomtest.Header(0x0008, 0x1110, "SQ", 0xFFFFFFFF)).
		Raw(dicomtest.Item(0xE000, 0xFFFFFFFF)).
		Raw(inner).
		Raw(dicomtest.Item(0xE00D, 0)).
		Raw(dicomtest.Item(0xE000, uint32(len(inner)))).
		Raw(inner).
		Raw(dicomtest.Item(0xE0DD, 0)).
		String(0x0010, 0x0020, "LO", "AFTER").
		Bytes()

	els, err := s.collect(data)
	s.Require().NoError(err)
	ds := s.dataset(els)
	s.Require().Len(ds, 2)
	s.Equal("SQ", ds[0].VR)
	s.Equal(uint32(0x00081110), ds[0].Tag)
	s.Equal(uint32(0x00100020), ds[1].Tag)
	s.Equal("AFTER ", string(ds[1].Value))
}

func (s *ParserSuite) TestNestedSequencesBeyondLimitAreMalformed() {
	b := dicomtest.New(dicomtest.ExplicitLE)
	for range maxNestingDepth + 1 {
		b.Raw(dicomtest.Header(0x0008, 0x1110, "SQ", 0xFFFFFFFF)).
			Raw(dicomtest.Item(0xE000, 0xFFFFFFFF))
	}

	_, err := s.collect(b.Bytes())
	kind, ok := KindOf(err)
	s.Require().True(ok)
	s.Equal(KindMalformed, kind)
}

func (s *ParserSuite) TestBrokenItemStructureIsMalformed() {
	data := dicomtest.New(dicomtest.ExplicitLE).
		Raw(dicomtest.Header(0x0008, 0x1110, "SQ", 0xFFFFFFFF)).
		String(0x0010, 0x0020, "LO", "NOT-AN-ITEM").
		Bytes()

	_, err := s.collect(data)
	kind, ok := KindOf(err)
	s.Require().True(ok)
	s.Equal(KindMalformed, kind)
}

// =============================================================================
// Malformed streams
// =============================================================================

func (s *ParserSuite) TestIllegalUndefinedLength() {
	doc := dicomtest.New(dicomtest.ExplicitLE).String(0x0008, 0x0060, "CS", "MR")
	offset := len(doc.Bytes())
	data := doc.Raw(dicomtest.Header(0x0010, 0x0010, "UT", 0xFFFFFFFF)).Bytes()

	els, err := s.collect(data)
	var pe *Error
	s.Require().ErrorAs(err, &pe)
	s.Equal(KindMalformed, pe.Kind)
	s.Equal(offset, pe.Offset)
	s.Len(s.dataset(els), 1)
}

func (s *ParserSuite) TestMetaGroupLengthBeyondDocument() {
	data := append(make([]byte, 128), "DICM"...)
	data = append(data, dicomtest.Header(0x0002, 0x0000, "UL", 4)...)
	data = append(data, dicomtest.U32(binary.LittleEndian, 10_000)...)

	_, err := s.collect(data)
	kind, ok := KindOf(err)
	s.Require().True(ok)
	s.Equal(KindMalformed, kind)
}

func (s *ParserSuite) TestCorruptDeflateStream() {
	data := dicomtest.New("").
		Meta(0x0002, 0x0010, "UI", dicomtest.PadUID(dicomtest.DeflatedLE)).
		Raw([]byte{0xFF, 0xFF, 0xFF, 0xFF}).
		Bytes()

	_, err := s.collect(data)
	kind, ok := KindOf(err)
	s.Require().True(ok)
	s.Equal(KindMalformed, kind)
}

func (s *ParserSuite) TestScannerIsNotRestartable() {
	data := dicomtest.New(dicomtest.ExplicitLE).String(0x0008, 0x0060, "CS", "MR").Bytes()
	sc, err := Parse(data)
	s.Require().NoError(err)
	for sc.Next() {
	}
	s.False(sc.Next())
	s.NoError(sc.Err())
}
