package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/elonfeng/hnpulse/pkg/analyze"
	"github.com/elonfeng/hnpulse/pkg/story"
)

func testSummary(t *testing.T) *analyze.Summary {
	t.Helper()
	a := analyze.New(story.DefaultThresholds())
	derived := a.Derive([]story.Story{
		{Title: "A", URL: "https://x.com/a", Votes: 100, Comments: 10},
		{Title: "B", URL: "https://y.com/b", Votes: 50, Comments: 40},
		{Title: "C", URL: "https://x.com/c", Votes: 10, Comments: 25},
	})
	return a.Summarize(derived, analyze.DefaultSummaryOptions())
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.xlsx")
	require.NoError(t, WriteWorkbook(path, testSummary(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Data")
	assert.Contains(t, sheets, "Charts")

	// Vote share block: title, then labels and values.
	title, err := f.GetCellValue("Data", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Vote Share (Top Stories)", title)

	label, err := f.GetCellValue("Data", "A2")
	require.NoError(t, err)
	assert.Equal(t, "A", label)

	value, err := f.GetCellValue("Data", "B2")
	require.NoError(t, err)
	assert.Equal(t, "100", value)

	// Domain block starts at column G.
	domainTitle, err := f.GetCellValue("Data", "G1")
	require.NoError(t, err)
	assert.Equal(t, "Vote Share by Domain", domainTitle)

	domain, err := f.GetCellValue("Data", "G2")
	require.NoError(t, err)
	assert.Equal(t, "x.com", domain)

	// Engagement block at column J carries the threshold labels.
	quiet, err := f.GetCellValue("Data", "J2")
	require.NoError(t, err)
	assert.Equal(t, "Quiet (<0.5)", quiet)
}

func TestWriteWorkbookNoEngagementData(t *testing.T) {
	// All rows have zero votes: the engagement pie is skipped, the file
	// still writes.
	a := analyze.New(story.DefaultThresholds())
	derived := a.Derive([]story.Story{
		{Title: "Dead", URL: "https://x.com", Votes: 0, Comments: 3},
	})
	sum := a.Summarize(derived, analyze.DefaultSummaryOptions())

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteWorkbook(path, sum))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// The data block is present even without a chart.
	label, err := f.GetCellValue("Data", "J2")
	require.NoError(t, err)
	assert.Equal(t, "Quiet (<0.5)", label)
}
