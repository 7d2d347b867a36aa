package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/hnpulse/pkg/story"
)

func TestTopShare(t *testing.T) {
	entries := []Entry{
		{"a", 10}, {"b", 50}, {"c", 30}, {"d", 5}, {"e", 5},
	}

	slices := TopShare(entries, 2, "Other")
	require.Len(t, slices, 3)
	assert.Equal(t, Slice{Label: "b", Value: 50}, slices[0])
	assert.Equal(t, Slice{Label: "c", Value: 30}, slices[1])
	assert.Equal(t, Slice{Label: "Other", Value: 20}, slices[2])

	// Slice values always sum to the grand total.
	var total float64
	for _, s := range slices {
		total += s.Value
	}
	assert.Equal(t, 100.0, total)
}

func TestTopShareNoRemainder(t *testing.T) {
	entries := []Entry{{"a", 10}, {"b", 20}}

	// n covers everything: no Other slice.
	slices := TopShare(entries, 5, "Other")
	require.Len(t, slices, 2)
	assert.Equal(t, "b", slices[0].Label)
	assert.Equal(t, "a", slices[1].Label)
}

func TestTopShareStableTies(t *testing.T) {
	entries := []Entry{{"first", 5}, {"second", 5}}
	slices := TopShare(entries, 2, "Other")
	assert.Equal(t, "first", slices[0].Label)
	assert.Equal(t, "second", slices[1].Label)
}

func TestTopShareEmpty(t *testing.T) {
	assert.Empty(t, TopShare(nil, 5, "Other"))
}

func TestSummarize(t *testing.T) {
	a := New(story.DefaultThresholds())
	derived := a.Derive(sampleStories())

	sum := a.Summarize(derived, SummaryOptions{TopStories: 2, TopDomains: 6, TitleWidth: 40})

	assert.Equal(t, 3, sum.StoryCount)
	assert.Equal(t, 160, sum.TotalVotes)
	assert.Equal(t, 51, sum.TotalComments)

	// Top 2 by votes plus the remainder.
	require.Len(t, sum.VoteShare, 3)
	assert.Equal(t, "A", sum.VoteShare[0].Label)
	assert.Equal(t, 100.0, sum.VoteShare[0].Value)
	assert.Equal(t, "Other stories", sum.VoteShare[2].Label)
	assert.Equal(t, 10.0, sum.VoteShare[2].Value)

	// Comments: B leads with 40.
	assert.Equal(t, "B", sum.CommentShare[0].Label)

	// Both domains fit under the top-6 cap: no remainder slice.
	require.Len(t, sum.DomainShare, 2)
	assert.Equal(t, "x.com", sum.DomainShare[0].Label)
	assert.Equal(t, 110.0, sum.DomainShare[0].Value)

	assert.Equal(t, 2, sum.Levels.Quiet)
	assert.Equal(t, 1, sum.Levels.Balanced)
}

func TestSummarizeShortensTitles(t *testing.T) {
	a := New(story.DefaultThresholds())
	long := story.Story{
		Title: "An exceedingly verbose headline that keeps going well past any reasonable width",
		URL:   "https://x.com", Votes: 10, Comments: 1,
	}
	sum := a.Summarize(a.Derive([]story.Story{long}), DefaultSummaryOptions())

	require.NotEmpty(t, sum.VoteShare)
	assert.LessOrEqual(t, len([]rune(sum.VoteShare[0].Label)), 40)
}

func TestLevelSlices(t *testing.T) {
	a := New(story.DefaultThresholds())
	sum := a.Summarize(a.Derive(sampleStories()), DefaultSummaryOptions())

	slices := sum.LevelSlices()
	require.Len(t, slices, 3)
	assert.Equal(t, "Quiet (<0.5)", slices[0].Label)
	assert.Equal(t, 2.0, slices[0].Value)
	assert.Equal(t, "Balanced (0.5-1)", slices[1].Label)
	assert.Equal(t, 1.0, slices[1].Value)
	assert.Equal(t, "Buzzing (>1)", slices[2].Label)
	assert.Equal(t, 0.0, slices[2].Value)
}
