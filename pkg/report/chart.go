// Package report renders analysis summaries: an .xlsx pie-chart dashboard
// and terminal tables.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/elonfeng/hnpulse/pkg/analyze"
)

const (
	dataSheet  = "Data"
	chartSheet = "Charts"

	chartWidth  = 480
	chartHeight = 320
)

// WriteWorkbook writes the four-pie engagement dashboard to path: vote share
// and comment share of the top stories, vote share by domain, and the
// engagement-level split. Empty aggregates produce no chart, matching a
// dataset with no engagement data.
func WriteWorkbook(path string, sum *analyze.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("rename data sheet: %w", err)
	}
	if _, err := f.NewSheet(chartSheet); err != nil {
		return fmt.Errorf("create chart sheet: %w", err)
	}

	charts := []struct {
		title  string
		slices []analyze.Slice
		col    int    // leftmost data column (1-based)
		anchor string // top-left cell on the chart sheet
	}{
		{"Vote Share (Top Stories)", sum.VoteShare, 1, "A1"},
		{"Comment Share (Top Stories)", sum.CommentShare, 4, "J1"},
		{"Vote Share by Domain", sum.DomainShare, 7, "A18"},
		{"Engagement Levels", sum.LevelSlices(), 10, "J18"},
	}

	for _, c := range charts {
		catRef, valRef, err := writeSlices(f, c.col, c.title, c.slices)
		if err != nil {
			return err
		}
		if !hasValues(c.slices) {
			continue
		}
		if err := addPie(f, c.anchor, c.title, catRef, valRef, len(c.slices)); err != nil {
			return err
		}
	}

	// Open on the dashboard, not the raw numbers.
	idx, err := f.GetSheetIndex(chartSheet)
	if err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// writeSlices writes one label/value block to the data sheet and returns the
// category and value range references for the chart series.
func writeSlices(f *excelize.File, col int, title string, slices []analyze.Slice) (string, string, error) {
	labelCol, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "", "", fmt.Errorf("column %d: %w", col, err)
	}
	valueCol, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return "", "", fmt.Errorf("column %d: %w", col+1, err)
	}

	if err := f.SetCellValue(dataSheet, labelCol+"1", title); err != nil {
		return "", "", fmt.Errorf("write block title: %w", err)
	}
	for i, s := range slices {
		row := i + 2
		if err := f.SetCellValue(dataSheet, fmt.Sprintf("%s%d", labelCol, row), s.Label); err != nil {
			return "", "", fmt.Errorf("write label %q: %w", s.Label, err)
		}
		if err := f.SetCellValue(dataSheet, fmt.Sprintf("%s%d", valueCol, row), s.Value); err != nil {
			return "", "", fmt.Errorf("write value for %q: %w", s.Label, err)
		}
	}

	last := len(slices) + 1
	catRef := fmt.Sprintf("%s!$%s$2:$%s$%d", dataSheet, labelCol, labelCol, last)
	valRef := fmt.Sprintf("%s!$%s$2:$%s$%d", dataSheet, valueCol, valueCol, last)
	return catRef, valRef, nil
}

func addPie(f *excelize.File, anchor, title, catRef, valRef string, sliceCount int) error {
	if sliceCount == 0 {
		return nil
	}
	err := f.AddChart(chartSheet, anchor, &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       title,
			Categories: catRef,
			Values:     valRef,
		}},
		Title: []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{
			Position: "right",
		},
		PlotArea: excelize.ChartPlotArea{
			ShowPercent: true,
		},
		Dimension: excelize.ChartDimension{
			Width:  chartWidth,
			Height: chartHeight,
		},
	})
	if err != nil {
		return fmt.Errorf("add chart %q: %w", title, err)
	}
	return nil
}

func hasValues(slices []analyze.Slice) bool {
	for _, s := range slices {
		if s.Value > 0 {
			return true
		}
	}
	return false
}
