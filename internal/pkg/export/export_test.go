package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() Table {
	overtime := 2.5
	return Table{
		Title:   "Attendance 2024-05-01",
		Sheet:   "Attendance",
		Headers: []string{"Employee ID", "Name", "Status", "Overtime"},
		Rows: [][]any{
			{"e1", "Ali Hassan", "Present", &overtime},
			{"e2", "Omar Saeed", "Absent", (*float64)(nil)},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("Excel")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("csv")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestRender_XLSX(t *testing.T) {
	file, err := Render(sampleTable(), FormatXLSX, "attendance-2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "attendance-2024-05-01.xlsx", file.Name)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Employee ID", "Name", "Status", "Overtime"}, rows[0])
	assert.Equal(t, "Ali Hassan", rows[1][1])
	assert.Equal(t, "2.5", rows[1][3])
	assert.Equal(t, "Absent", rows[2][2])
}

func TestRender_PDF(t *testing.T) {
	file, err := Render(sampleTable(), FormatPDF, "attendance")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestCellText(t *testing.T) {
	s := "07:00 am"
	assert.Equal(t, "", cellText(nil))
	assert.Equal(t, "07:00 am", cellText(&s))
	assert.Equal(t, "", cellText((*string)(nil)))
	assert.Equal(t, "Yes", cellText(true))
	assert.Equal(t, "3", cellText(3))
}
