package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() Table {
	return Table{
		Title:   "Timesheet Ana",
		Headers: []string{"Date", "Hour", "Task"},
		Rows: [][]string{
			{"2025-01-06", "9:00", "Standup"},
			{"2025-01-06", "10:00", "Wiring"},
		},
	}
}

func TestXLSXRoundTripsCells(t *testing.T) {
	data, err := Render(FormatXLSX, sample())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Timesheet Ana", "C3")
	require.NoError(t, err)
	assert.Equal(t, "Wiring", v)
	v, err = f.GetCellValue("Timesheet Ana", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", v)
}

func TestPDFHasHeader(t *testing.T) {
	data, err := Render(FormatPDF, sample())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestContentType(t *testing.T) {
	ct, ext, err := ContentType("PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.Equal(t, "pdf", ext)

	_, _, err = ContentType("csv")
	assert.Error(t, err)
	_, err = Render("csv", sample())
	assert.Error(t, err)
}
