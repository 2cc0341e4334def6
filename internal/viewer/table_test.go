package viewer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = map[string]string{
	"PatientID":       "TEST-PATIENT-ID",
	"StudyDate":       "20230101",
	"Modality":        "CT",
	"InstitutionName": "General Hospital",
	"Manufacturer":    "ACME",
}

func TestTable_DefaultColumns(t *testing.T) {
	tbl := New([]string{"PatientID", "StudyDate", "Modality"})
	tbl.Load(sample)

	assert.Equal(t, []Row{
		{Name: "Modality", Value: "CT"},
		{Name: "PatientID", Value: "TEST-PATIENT-ID"},
		{Name: "StudyDate", Value: "20230101"},
	}, tbl.Rows())
}

func TestTable_NoDefaultsShowsEverything(t *testing.T) {
	tbl := New(nil)
	tbl.Load(sample)
	assert.Len(t, tbl.Rows(), len(sample))
}

func TestTable_Search(t *testing.T) {
	tbl := New(nil)
	tbl.Load(sample)

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"InstitutionName", "Manufacturer", "Modality", "PatientID", "StudyDate"}},
		{"patient", []string{"PatientID"}},
		{"HOSPITAL", []string{"InstitutionName"}},
		{"2023", []string{"StudyDate"}},
		{"  ct ", []string{"Modality"}},
		{"nothing-matches", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			tbl.SetSearch(tt.term)
			var got []string
			for _, r := range tbl.Rows() {
				got = append(got, r.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_SearchOnlyConsidersVisibleColumns(t *testing.T) {
	tbl := New([]string{"PatientID"})
	tbl.Load(sample)
	tbl.SetSearch("acme")
	assert.Empty(t, tbl.Rows())
}

func TestTable_ColumnPicker(t *testing.T) {
	tbl := New([]string{"PatientID"})
	tbl.Load(sample)

	assert.True(t, tbl.Toggle("Manufacturer"))
	assert.False(t, tbl.Toggle("PatientID"))
	assert.Equal(t, []Row{{Name: "Manufacturer", Value: "ACME"}}, tbl.Rows())

	cols := tbl.Columns()
	require.Len(t, cols, len(sample))
	assert.Equal(t, Column{Name: "InstitutionName", Visible: false}, cols[0])
	assert.Equal(t, Column{Name: "Manufacturer", Visible: true}, cols[1])

	tbl.ShowAll()
	assert.Len(t, tbl.Rows(), len(sample))

	tbl.Hide("Modality", "StudyDate")
	assert.Len(t, tbl.Rows(), len(sample)-2)

	tbl.ResetColumns()
	assert.Equal(t, []Row{{Name: "PatientID", Value: "TEST-PATIENT-ID"}}, tbl.Rows())
}

func TestTable_VisibilitySurvivesReload(t *testing.T) {
	tbl := New([]string{"PatientID"})
	tbl.Load(sample)
	tbl.Show("Modality")

	tbl.Load(map[string]string{"PatientID": "OTHER", "Modality": "MR"})
	assert.Equal(t, []Row{
		{Name: "Modality", Value: "MR"},
		{Name: "PatientID", Value: "OTHER"},
	}, tbl.Rows())
}

func TestTable_FailKeepsPreviousTable(t *testing.T) {
	tbl := New([]string{"PatientID"})
	tbl.Load(sample)
	before := tbl.Rows()

	tbl.Fail("missing-bucket/missing.dat not found")

	assert.Equal(t, "missing-bucket/missing.dat not found", tbl.Notice())
	assert.Equal(t, before, tbl.Rows())

	tbl.DismissNotice()
	assert.Empty(t, tbl.Notice())
	assert.Equal(t, before, tbl.Rows())
}

func TestTable_LoadClearsNotice(t *testing.T) {
	tbl := New(nil)
	tbl.Fail("boom")
	tbl.Load(sample)
	assert.Empty(t, tbl.Notice())
}

func TestTable_LoadCopiesInput(t *testing.T) {
	data := map[string]string{"PatientID": "A"}
	tbl := New([]string{"PatientID"})
	tbl.Load(data)
	data["PatientID"] = "B"
	assert.Equal(t, "A", tbl.Rows()[0].Value)
}

func TestTable_Render(t *testing.T) {
	t.Run("before any load", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(nil).Render(&buf))
		assert.Equal(t, "No metadata to display.\n", buf.String())
	})

	t.Run("aligned rows with notice", func(t *testing.T) {
		tbl := New([]string{"PatientID", "Modality"})
		tbl.Load(sample)
		tbl.Fail("storage unavailable")

		var buf bytes.Buffer
		require.NoError(t, tbl.Render(&buf))
		assert.Equal(t,
			"! storage unavailable  (dismiss to hide)\n"+
				"Tag Name   Value\n"+
				"--------   -----\n"+
				"Modality   CT\n"+
				"PatientID  TEST-PATIENT-ID\n",
			buf.String())
	})

	t.Run("nothing visible", func(t *testing.T) {
		tbl := New([]string{"PatientID"})
		tbl.Load(sample)
		tbl.SetSearch("zzz")

		var buf bytes.Buffer
		require.NoError(t, tbl.Render(&buf))
		assert.Equal(t, "No fields visible or matching search.\n", buf.String())
	})

	t.Run("long values are truncated", func(t *testing.T) {
		tbl := New([]string{"InstitutionName"})
		tbl.Load(sample)
		tbl.SetMaxValueWidth(10)

		var buf bytes.Buffer
		require.NoError(t, tbl.Render(&buf))
		assert.Contains(t, buf.String(), "General...\n")
	})
}
