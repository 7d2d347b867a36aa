package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/elonfeng/hnpulse/pkg/analyze"
	"github.com/elonfeng/hnpulse/pkg/story"
)

// RenderTables prints the three aggregate views as terminal tables, followed
// by the run totals.
func RenderTables(w io.Writer, sum *analyze.Summary) {
	renderShare(w, "Vote Share (Top Stories)", sum.VoteShare)
	renderShare(w, "Comment Share (Top Stories)", sum.CommentShare)
	renderShare(w, "Vote Share by Domain", sum.DomainShare)
	renderLevels(w, sum)

	fmt.Fprintf(w, "\n%d stories, %d votes, %d comments\n",
		sum.StoryCount, sum.TotalVotes, sum.TotalComments)
}

func renderShare(w io.Writer, title string, slices []analyze.Slice) {
	var total float64
	for _, s := range slices {
		total += s.Value
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Label", "Value", "Share"})
	for _, s := range slices {
		t.AppendRow(table.Row{s.Label, formatValue(s.Value), formatShare(s.Value, total)})
	}
	t.Render()
}

func renderLevels(w io.Writer, sum *analyze.Summary) {
	total := float64(sum.Levels.Quiet + sum.Levels.Balanced + sum.Levels.Buzzing)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Engagement Levels")
	t.AppendHeader(table.Row{"Level", "Stories", "Share"})
	for _, s := range sum.LevelSlices() {
		t.AppendRow(table.Row{s.Label, int(s.Value), formatShare(s.Value, total)})
	}
	if sum.Levels.Excluded > 0 {
		t.AppendFooter(table.Row{"Excluded (0 votes)", sum.Levels.Excluded, ""})
	}
	t.Render()
}

// RenderStories prints the full derived dataset, one row per story in input
// order.
func RenderStories(w io.Writer, stories []story.Story) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Title", "Domain", "Votes", "Comments", "Ratio", "Level"})
	for i, s := range stories {
		ratio, level := "-", "-"
		if s.EngagementValid {
			ratio = fmt.Sprintf("%.2f", s.EngagementRatio)
			level = s.EngagementLevel.String()
		}
		t.AppendRow(table.Row{
			i + 1,
			story.ShortTitle(s.Title, 60),
			s.Domain,
			s.Votes,
			s.Comments,
			ratio,
			level,
		})
	}
	t.Render()
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func formatShare(v, total float64) string {
	if total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v/total*100)
}
