package resolver

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dicomviewer/internal/metadata/dicomtest"
	"dicomviewer/internal/metadata/dictionary"
	"dicomviewer/internal/metadata/parser"
)

type sliceSource struct {
	els []parser.RawElement
	i   int
}

func (s *sliceSource) Next() bool {
	if s.i >= len(s.els) {
		return false
	}
	s.i++
	return true
}

func (s *sliceSource) Element() parser.RawElement {
	return s.els[s.i-1]
}

func text(key uint32, vr, v string) parser.RawElement {
	return parser.RawElement{Tag: key, VR: vr, Value: []byte(v), Order: binary.LittleEndian}
}

const (
	keyPatientID = 0x00100020
	keyStudyDate = 0x00080020
	keyModality  = 0x00080060
	keyRows      = 0x00280010
	keyPrivate   = 0x00091001
)

func sampleDocument(t *testing.T) []byte {
	t.Helper()
	return dicomtest.New(dicomtest.ExplicitLE).
		String(0x0008, 0x0020, "DA", "20230101").
		String(0x0008, 0x0060, "CS", "CT").
		Element(0x0009, 0x1001, "LO", []byte("PRIVATE ")).
		String(0x0010, 0x0020, "LO", "TEST-PATIENT-ID").
		Bytes()
}

func TestResolve_ConcreteDocument(t *testing.T) {
	sc, err := parser.Parse(sampleDocument(t))
	require.NoError(t, err)

	got := Resolve(sc, All(), dictionary.Standard())
	require.NoError(t, sc.Err())

	assert.Equal(t, "TEST-PATIENT-ID", got["PatientID"])
	assert.Equal(t, "20230101", got["StudyDate"])
	assert.Equal(t, "CT", got["Modality"])
	assert.Equal(t, dicomtest.ExplicitLE, got["TransferSyntaxUID"])
	assert.Len(t, got, 4)
}

func TestResolve_SubsetConcreteDocument(t *testing.T) {
	sc, err := parser.Parse(sampleDocument(t))
	require.NoError(t, err)

	got := Resolve(sc, Subset("PatientID"), dictionary.Standard())
	assert.Equal(t, AttributeMap{"PatientID": "TEST-PATIENT-ID"}, got)
}

func TestResolve_AllIncludesExactlyDictionaryTags(t *testing.T) {
	src := &sliceSource{els: []parser.RawElement{
		text(keyPatientID, "LO", "P1"),
		text(keyPrivate, "LO", "hidden"),
		text(keyModality, "CS", "MR"),
		text(0x7FE00010, "OW", "\x00\x01"),
	}}
	got := Resolve(src, All(), dictionary.Standard())
	assert.Equal(t, AttributeMap{"PatientID": "P1", "Modality": "MR"}, got)
}

func TestResolve_SubsetContainment(t *testing.T) {
	els := []parser.RawElement{
		text(keyPatientID, "LO", "P1"),
		text(keyStudyDate, "DA", "20240101"),
		text(keyModality, "CS", "MR"),
	}

	tests := []struct {
		name     string
		names    []string
		expected AttributeMap
	}{
		{
			name:     "present names only",
			names:    []string{"Modality", "StudyDate"},
			expected: AttributeMap{"Modality": "MR", "StudyDate": "20240101"},
		},
		{
			name:     "names absent from document",
			names:    []string{"Modality", "InstitutionName"},
			expected: AttributeMap{"Modality": "MR"},
		},
		{
			name:     "names not in dictionary",
			names:    []string{"NoSuchAttribute", "modality"},
			expected: AttributeMap{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(&sliceSource{els: els}, Subset(tt.names...), dictionary.Standard())
			assert.Equal(t, tt.expected, got)
			for k := range got {
				assert.Contains(t, tt.names, k)
			}
		})
	}
}

func TestResolve_LastSeenWins(t *testing.T) {
	src := &sliceSource{els: []parser.RawElement{
		text(keyModality, "CS", "CT"),
		text(keyModality, "CS", "MR"),
	}}
	got := Resolve(src, Subset("Modality"), dictionary.Standard())
	assert.Equal(t, "MR", got["Modality"])
}

func TestResolve_TruncatedValueIsKept(t *testing.T) {
	data := dicomtest.New(dicomtest.ExplicitLE).
		String(0x0008, 0x0060, "CS", "MR").
		Raw(dicomtest.Header(0x0010, 0x0020, "LO", 40)).
		Raw([]byte("PARTIAL")).
		Bytes()
	sc, err := parser.Parse(data)
	require.NoError(t, err)

	got := Resolve(sc, All(), dictionary.Standard())
	require.NoError(t, sc.Err())
	assert.Equal(t, "MR", got["Modality"])
	assert.Equal(t, "PARTIAL", got["PatientID"])
}

func TestResolve_ImplicitDocument(t *testing.T) {
	data := dicomtest.New(dicomtest.ImplicitLE).
		String(0x0010, 0x0020, "", "ID-7").
		Element(0x0028, 0x0010, "", dicomtest.U16(binary.LittleEndian, 256)).
		Bytes()
	sc, err := parser.Parse(data)
	require.NoError(t, err)

	got := Resolve(sc, Subset("PatientID", "Rows"), dictionary.Standard())
	assert.Equal(t, AttributeMap{"PatientID": "ID-7", "Rows": "256"}, got)
}

func TestResolve_BigEndianNumbers(t *testing.T) {
	src := &sliceSource{els: []parser.RawElement{
		{Tag: keyRows, VR: "US", Value: dicomtest.U16(binary.BigEndian, 1024), Order: binary.BigEndian},
	}}
	got := Resolve(src, All(), dictionary.Standard())
	assert.Equal(t, "1024", got["Rows"])
}

func TestSelectionFromFields(t *testing.T) {
	assert.True(t, SelectionFromFields(nil).IsAll())
	assert.True(t, SelectionFromFields([]string{}).IsAll())
	assert.False(t, SelectionFromFields([]string{""}).IsAll())

	sel := SelectionFromFields([]string{"PatientID", "Modality", "PatientID"})
	assert.False(t, sel.IsAll())
	assert.Equal(t, []string{"PatientID", "Modality"}, sel.Names())
}

func TestSubset_ExactNameMatch(t *testing.T) {
	src := &sliceSource{els: []parser.RawElement{
		text(keyPatientID, "LO", "P1"),
		text(keyModality, "CS", "MR"),
	}}

	tests := []struct {
		name  string
		names []string
	}{
		{name: "leading space", names: []string{" PatientID"}},
		{name: "trailing space", names: []string{"PatientID "}},
		{name: "different case", names: []string{"patientid", "MODALITY"}},
		{name: "blank name", names: []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Resolve(src, SelectionFromFields(tt.names), dictionary.Standard()))
		})
	}
}

func TestSubset_EmptySelectsNothing(t *testing.T) {
	src := &sliceSource{els: []parser.RawElement{text(keyModality, "CS", "CT")}}
	assert.Empty(t, Resolve(src, Subset(), dictionary.Standard()))
}
