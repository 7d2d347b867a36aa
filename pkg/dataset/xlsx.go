package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/elonfeng/hnpulse/pkg/story"
)

// LoadXLSX reads a dataset from the first sheet of a workbook. Row 1 must be
// the header row with the same columns as the CSV format.
func LoadXLSX(path string, opts Options) ([]story.Story, LoadStats, error) {
	if err := statInput(path); err != nil {
		return nil, LoadStats{}, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, LoadStats{}, fmt.Errorf("workbook %s has no sheets", path)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	stories, stats, err := collectRows(records, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return stories, stats, nil
}
