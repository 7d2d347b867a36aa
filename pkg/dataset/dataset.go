// Package dataset loads front-page snapshots from delimited files. CSV is
// the conventional format; XLSX workbooks with the same header row are
// accepted as well.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/elonfeng/hnpulse/pkg/story"
)

// Required header columns. Matching is case-insensitive; extra columns are
// ignored.
const (
	ColTitle    = "Title"
	ColURL      = "URL"
	ColVotes    = "Votes"
	ColComments = "Comments"
)

var (
	// ErrMissingInput marks a dataset file that does not exist.
	ErrMissingInput = errors.New("dataset file not found")
	// ErrMissingColumn marks a header that lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrNoRows marks a dataset with no valid story rows.
	ErrNoRows = errors.New("dataset contains no valid rows")
)

// Options control row-level error handling.
type Options struct {
	// Strict fails the whole load on the first malformed row instead of
	// skipping it.
	Strict bool
}

// LoadStats reports what the loader saw.
type LoadStats struct {
	Rows    int // valid stories returned
	Skipped int // malformed rows dropped (always 0 under Strict)
}

// columnIndex maps the required columns to their positions in a header row.
type columnIndex struct {
	title, url, votes, comments int
}

func indexHeader(header []string) (columnIndex, error) {
	idx := columnIndex{title: -1, url: -1, votes: -1, comments: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case strings.ToLower(ColTitle):
			idx.title = i
		case strings.ToLower(ColURL):
			idx.url = i
		case strings.ToLower(ColVotes):
			idx.votes = i
		case strings.ToLower(ColComments):
			idx.comments = i
		}
	}
	for _, c := range []struct {
		name string
		pos  int
	}{
		{ColTitle, idx.title},
		{ColURL, idx.url},
		{ColVotes, idx.votes},
		{ColComments, idx.comments},
	} {
		if c.pos < 0 {
			return idx, fmt.Errorf("%w: %s", ErrMissingColumn, c.name)
		}
	}
	return idx, nil
}

// parseRow converts one record into a Story. Row numbers are 1-based and
// include the header, so errors point at the spreadsheet line.
func (idx columnIndex) parseRow(record []string, rowNum int) (story.Story, error) {
	last := idx.title
	for _, p := range []int{idx.url, idx.votes, idx.comments} {
		if p > last {
			last = p
		}
	}
	if len(record) <= last {
		return story.Story{}, fmt.Errorf("row %d: %d columns, need %d", rowNum, len(record), last+1)
	}

	votes, err := parseCount(record[idx.votes])
	if err != nil {
		return story.Story{}, fmt.Errorf("row %d: votes: %w", rowNum, err)
	}
	comments, err := parseCount(record[idx.comments])
	if err != nil {
		return story.Story{}, fmt.Errorf("row %d: comments: %w", rowNum, err)
	}

	title := strings.TrimSpace(record[idx.title])
	if title == "" {
		return story.Story{}, fmt.Errorf("row %d: empty title", rowNum)
	}

	return story.Story{
		Title:    title,
		URL:      strings.TrimSpace(record[idx.url]),
		Votes:    votes,
		Comments: comments,
	}, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count: %d", n)
	}
	return n, nil
}

// Load reads a dataset, dispatching on the file extension (.csv or .xlsx).
func Load(path string, opts Options) ([]story.Story, LoadStats, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path, opts)
	default:
		return LoadCSV(path, opts)
	}
}

func statInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}

// collectRows applies the shared header/row pipeline to pre-split records.
func collectRows(records [][]string, opts Options) ([]story.Story, LoadStats, error) {
	if len(records) == 0 {
		return nil, LoadStats{}, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}

	idx, err := indexHeader(records[0])
	if err != nil {
		return nil, LoadStats{}, err
	}

	var (
		stories []story.Story
		stats   LoadStats
	)
	for i, record := range records[1:] {
		rowNum := i + 2
		if isBlank(record) {
			continue
		}
		s, err := idx.parseRow(record, rowNum)
		if err != nil {
			if opts.Strict {
				return nil, LoadStats{}, err
			}
			stats.Skipped++
			continue
		}
		stories = append(stories, s)
	}
	stats.Rows = len(stories)

	if len(stories) == 0 {
		return nil, stats, ErrNoRows
	}
	return stories, stats, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
