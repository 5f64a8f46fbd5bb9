package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/traffic-engine/attendance"
	"github.com/xuri/excelize/v2"
)

const swipesCSV = "CodePersonel,Description,Timestamp2,Datestamp\n" +
	"7,Valid credential Ali (card),08:00:00,45371\n" +
	"7,Valid credential Ali (card),08:03:00,45371\n" +
	"7,Valid credential Ali (card),12:00:00,45371\n" +
	"7,Valid credential Ali (card),17:00:00,45371\n" +
	"12,Valid credential Sara (card),09:00:00,45371\n"

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swipes.csv")
	require.NoError(t, os.WriteFile(path, []byte(swipesCSV), 0o644))
	return path
}

func TestRun_RankingTable(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run([]string{"-file", writeInput(t)}, &out, &errOut)
	require.NoError(t, err, errOut.String())

	assert.Contains(t, out.String(), "HIGH-TRAFFIC DAYS")
	assert.Contains(t, out.String(), "Ali")
	assert.NotContains(t, out.String(), "Sara")
}

func TestRun_JSONWithTypedBounds(t *testing.T) {
	// GIVEN: a 1-minute window typed as text and a limit of 3
	var out, errOut bytes.Buffer
	err := run([]string{"-file", writeInput(t), "-interval", "1min", "-limit", "3", "-json"}, &out, &errOut)
	require.NoError(t, err, errOut.String())

	// THEN: 08:00 and 08:03 stay separate, four visits > 3
	var rows []attendance.ReportRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, attendance.ReportRow{Name: "Ali", ID: "7", HighTrafficDays: 1, ActiveDays: 1}, rows[0])
}

func TestRun_PersonSummary(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run([]string{"-file", writeInput(t), "-person", "7"}, &out, &errOut)
	require.NoError(t, err, errOut.String())

	assert.Contains(t, out.String(), "Ali (7) - فروردین 1403")
	assert.Contains(t, out.String(), "days: 31  none: 30  normal: 0  high: 1")
	assert.Contains(t, out.String(), "01/01/1403")
}

func TestRun_UnknownPerson(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run([]string{"-file", writeInput(t), "-person", "99"}, &out, &errOut)
	assert.ErrorIs(t, err, attendance.ErrPersonNotFound)
}

func TestRun_WritesReport(t *testing.T) {
	dest := filepath.Join(t.TempDir(), attendance.ReportFileName)
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"-file", writeInput(t), "-out", dest}, &out, &errOut))

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(attendance.ReportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Ali", "7", "1", "1"}, rows[1])
}

func TestRun_UsageErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.ErrorIs(t, run(nil, &out, &errOut), errUsage)
	assert.ErrorIs(t, run([]string{"-bogus"}, &out, &errOut), errUsage)
	assert.Error(t, run([]string{"-file", "does-not-exist.xlsx"}, &out, &errOut))
}
