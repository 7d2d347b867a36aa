package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/elonfeng/hnpulse/pkg/story"
)

// LoadCSV reads a comma-delimited dataset with a header row.
func LoadCSV(path string, opts Options) ([]story.Story, LoadStats, error) {
	if err := statInput(path); err != nil {
		return nil, LoadStats{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are handled per-row
	records, err := r.ReadAll()
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read csv %s: %w", path, err)
	}

	stories, stats, err := collectRows(records, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return stories, stats, nil
}

// WriteCSV writes stories as a dataset file with the standard header, so a
// fetched front page round-trips through the loaders.
func WriteCSV(path string, stories []story.Story) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{ColTitle, ColURL, ColVotes, ColComments}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range stories {
		record := []string{
			s.Title,
			s.URL,
			fmt.Sprintf("%d", s.Votes),
			fmt.Sprintf("%d", s.Comments),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
