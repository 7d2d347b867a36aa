package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/elonfeng/hnpulse/pkg/story"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stories.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCSV = `Title,URL,Votes,Comments
Show HN: hnpulse,https://github.com/elonfeng/hnpulse,120,45
A database story,https://db.example.com/post,80,90
Ask HN: anything,https://news.ycombinator.com/item?id=2,30,5
`

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, validCSV)

	stories, stats, err := LoadCSV(path, Options{})
	require.NoError(t, err)
	require.Len(t, stories, 3)
	assert.Equal(t, LoadStats{Rows: 3, Skipped: 0}, stats)

	assert.Equal(t, story.Story{
		Title:    "Show HN: hnpulse",
		URL:      "https://github.com/elonfeng/hnpulse",
		Votes:    120,
		Comments: 45,
	}, stories[0])
}

func TestLoadCSVHeaderCaseInsensitive(t *testing.T) {
	path := writeTempCSV(t, "title,url,votes,comments\nA,https://x.com,1,2\n")

	stories, _, err := LoadCSV(path, Options{})
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "A", stories[0].Title)
}

func TestLoadCSVExtraColumnsIgnored(t *testing.T) {
	path := writeTempCSV(t, "Rank,Title,URL,Votes,Comments,Author\n1,A,https://x.com,10,2,pg\n")

	stories, _, err := LoadCSV(path, Options{})
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, 10, stories[0].Votes)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeTempCSV(t, "Title,URL,Votes\nA,https://x.com,10\n")

	_, _, err := LoadCSV(path, Options{})
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Comments")
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestLoadCSVSkipsMalformedRows(t *testing.T) {
	path := writeTempCSV(t, `Title,URL,Votes,Comments
Good,https://x.com,10,2
Bad votes,https://x.com,ten,2
Negative,https://x.com,-1,2
,https://x.com,5,2
Also good,https://y.com,7,0
`)

	stories, stats, err := LoadCSV(path, Options{})
	require.NoError(t, err)
	assert.Len(t, stories, 2)
	assert.Equal(t, 3, stats.Skipped)
}

func TestLoadCSVStrict(t *testing.T) {
	path := writeTempCSV(t, "Title,URL,Votes,Comments\nBad,https://x.com,ten,2\n")

	_, _, err := LoadCSV(path, Options{Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "votes")
}

func TestLoadCSVNoRows(t *testing.T) {
	path := writeTempCSV(t, "Title,URL,Votes,Comments\n")

	_, _, err := LoadCSV(path, Options{})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestLoadCSVBlankRowsIgnored(t *testing.T) {
	path := writeTempCSV(t, "Title,URL,Votes,Comments\nA,https://x.com,1,1\n,,,\n")

	stories, stats, err := LoadCSV(path, Options{})
	require.NoError(t, err)
	assert.Len(t, stories, 1)
	assert.Zero(t, stats.Skipped)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	in := []story.Story{
		{Title: "One, with comma", URL: "https://a.com", Votes: 3, Comments: 1},
		{Title: "Two", URL: "https://b.com", Votes: 0, Comments: 0},
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, in))

	out, stats, err := LoadCSV(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 2, stats.Rows)
}

func writeTempXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	path := filepath.Join(t.TempDir(), "stories.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeTempXLSX(t, [][]any{
		{"Title", "URL", "Votes", "Comments"},
		{"A", "https://x.com/a", 100, 10},
		{"B", "https://y.com/b", 50, 40},
	})

	stories, stats, err := LoadXLSX(path, Options{})
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, "B", stories[1].Title)
	assert.Equal(t, 40, stories[1].Comments)
}

func TestLoadXLSXMissingColumn(t *testing.T) {
	path := writeTempXLSX(t, [][]any{
		{"Title", "Votes", "Comments"},
		{"A", 100, 10},
	})

	_, _, err := LoadXLSX(path, Options{})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	csvPath := writeTempCSV(t, validCSV)
	stories, _, err := Load(csvPath, Options{})
	require.NoError(t, err)
	assert.Len(t, stories, 3)

	xlsxPath := writeTempXLSX(t, [][]any{
		{"Title", "URL", "Votes", "Comments"},
		{"A", "https://x.com", 1, 1},
	})
	stories, _, err = Load(xlsxPath, Options{})
	require.NoError(t, err)
	assert.Len(t, stories, 1)
}
