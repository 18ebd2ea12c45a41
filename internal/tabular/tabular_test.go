package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadRows_CSV(t *testing.T) {
	input := "Title,Description,Priority,Status,Due Date,Assigned To\n" +
		"Write report,,high,pending,2025-03-01,\"alice, bob\"\n" +
		"Short row\n"

	rows, err := ReadRows("tasks.CSV", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "alice, bob", rows[1][5])
	require.Equal(t, "", Cell(rows[2], 5))
}

func TestReadRows_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Title", "Description", "Priority", "Status", "Due Date", "Assigned To"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Audit", "yearly", "urgent", "due", "2025-04-01", "carol"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ReadRows("import.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Audit", rows[1][0])
	require.Equal(t, "carol", rows[1][5])
}

func TestReadRows_Unsupported(t *testing.T) {
	_, err := ReadRows("tasks.xls", strings.NewReader(""))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestIsBlank(t *testing.T) {
	for _, v := range []string{"", "  ", "nan", "NaN", "None"} {
		require.True(t, IsBlank(v), v)
	}
	require.False(t, IsBlank("task"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []string{"A", "B"}, [][]string{{"1", "x, y"}}))
	require.Equal(t, "A,B\n1,\"x, y\"\n", buf.String())
}

func TestParseDate(t *testing.T) {
	for _, v := range []string{"2025-03-01", "2025-03-01 10:30:00", "03/01/2025", "3/1/2025", "03-01-25"} {
		d, err := ParseDate(v)
		require.NoError(t, err, v)
		require.Equal(t, "2025-03-01", d.Format("2006-01-02"), v)
	}

	_, err := ParseDate("next tuesday")
	require.Error(t, err)
}
