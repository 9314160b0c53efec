package bcf

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blopez6567/Clashsense/internal/model"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files[f.Name] = string(body)
	}
	return files
}

func sequentialGUIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("guid-%d", n)
	}
}

func TestWrite(t *testing.T) {
	records := []model.ClashRecord{
		{
			ID:          "clash-1",
			Description: "Duct <main> & beam",
			Status:      model.StatusActive,
			Severity:    model.SeverityHigh,
			Discipline:  model.DisciplineMechanical,
			Location:    "Corridor",
			AssignedTo:  "Dana",
			Coordinates: "10.5,20.1,3.0",
		},
		{
			ID:          "clash-2",
			Description: "Pipe vs wall",
			Status:      model.StatusResolved,
			Severity:    model.SeverityLow,
			Discipline:  model.DisciplinePlumbing,
			Location:    "Riser 2",
			AssignedTo:  "Unassigned",
		},
	}
	fixed := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	w := NewWriter(WithGUIDs(sequentialGUIDs()), WithClock(func() time.Time { return fixed }))

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, "Harbor Tower", records))

	files := readArchive(t, buf.Bytes())
	assert.Len(t, files, 5)

	project := files[ProjectFile]
	assert.Contains(t, project, "<Project>Harbor Tower</Project>")
	assert.Contains(t, project, "<Name>Harbor Tower</Name>")

	markup := files["guid-1/"+MarkupFile]
	assert.Contains(t, markup, `Guid="guid-1"`)
	assert.Contains(t, markup, `TopicType="Issue"`)
	assert.Contains(t, markup, `TopicStatus="active"`)
	assert.Contains(t, markup, "<Title>Duct &lt;main&gt; &amp; beam</Title>")
	assert.Contains(t, markup, "<Priority>high</Priority>")
	assert.Contains(t, markup, "<Index>clash-1</Index>")
	assert.Contains(t, markup, "<Labels>MECH</Labels>")
	assert.Contains(t, markup, "<CreationDate>2024-03-15T09:30:00Z</CreationDate>")
	assert.Contains(t, markup, "<CreationAuthor>Dana</CreationAuthor>")
	assert.Contains(t, markup, "<Reference>Corridor</Reference>")

	viewpoint := files["guid-1/"+ViewpointFile]
	assert.Contains(t, viewpoint, "<CameraViewPoint>10.5,20.1,3.0</CameraViewPoint>")
	assert.Contains(t, viewpoint, "<SpacesVisible>true</SpacesVisible>")

	assert.Contains(t, files["guid-2/"+MarkupFile], "<Labels>PL</Labels>")
	assert.Contains(t, files["guid-2/"+ViewpointFile], "<CameraViewPoint></CameraViewPoint>")
}

func TestWriteNoRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "Empty", nil))

	files := readArchive(t, buf.Bytes())
	assert.Len(t, files, 1)
	assert.Contains(t, files, ProjectFile)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		project string
		want    string
	}{
		{"Harbor Tower", "Harbor_Tower_bcf_export.bcf"},
		{"Main  St\tGarage", "Main_St_Garage_bcf_export.bcf"},
		{"Solo", "Solo_bcf_export.bcf"},
	}
	for _, tt := range tests {
		t.Run(tt.project, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.project))
		})
	}
}
