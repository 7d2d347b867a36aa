package analyze

import (
	"fmt"
	"sort"

	"github.com/elonfeng/hnpulse/pkg/story"
)

// Slice is one pie-chart wedge: a label and its value.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Entry is a labelled value fed into TopShare.
type Entry struct {
	Label string
	Value float64
}

// TopShare keeps the n largest entries and folds the rest into a single
// remainder slice labelled otherLabel. The remainder is appended only when
// it is positive, so small datasets produce no empty "Other" wedge.
func TopShare(entries []Entry, n int, otherLabel string) []Slice {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	// Stable so equal values keep input order, like TopN.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Value > ordered[j].Value
	})

	if n < 0 {
		n = 0
	}
	if n > len(ordered) {
		n = len(ordered)
	}

	out := make([]Slice, 0, n+1)
	var topTotal, grandTotal float64
	for i, e := range ordered {
		grandTotal += e.Value
		if i < n {
			topTotal += e.Value
			out = append(out, Slice{Label: e.Label, Value: e.Value})
		}
	}
	if remainder := grandTotal - topTotal; remainder > 0 {
		out = append(out, Slice{Label: otherLabel, Value: remainder})
	}
	return out
}

// Summary bundles the aggregate views of one analysis run: the inputs for
// the four pie charts plus the run totals.
type Summary struct {
	StoryCount    int `json:"story_count"`
	TotalVotes    int `json:"total_votes"`
	TotalComments int `json:"total_comments"`

	VoteShare    []Slice     `json:"vote_share"`
	CommentShare []Slice     `json:"comment_share"`
	DomainShare  []Slice     `json:"domain_share"`
	Levels       LevelCounts `json:"levels"`

	Thresholds story.Thresholds `json:"-"`
}

// SummaryOptions control how many top entries each share keeps and how wide
// story labels may be.
type SummaryOptions struct {
	TopStories int
	TopDomains int
	TitleWidth int
}

// DefaultSummaryOptions mirror the standard dashboard: five stories, six
// domains, titles shortened to 40 runes.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{TopStories: 5, TopDomains: 6, TitleWidth: 40}
}

// Summarize computes the aggregate views over derived stories.
func (a *Analyzer) Summarize(stories []story.Story, opts SummaryOptions) *Summary {
	if opts.TopStories <= 0 {
		opts.TopStories = 5
	}
	if opts.TopDomains <= 0 {
		opts.TopDomains = 6
	}
	if opts.TitleWidth <= 0 {
		opts.TitleWidth = 40
	}

	sum := &Summary{
		StoryCount: len(stories),
		Thresholds: a.thresholds,
	}

	voteEntries := make([]Entry, len(stories))
	commentEntries := make([]Entry, len(stories))
	for i, s := range stories {
		label := story.ShortTitle(s.Title, opts.TitleWidth)
		voteEntries[i] = Entry{Label: label, Value: float64(s.Votes)}
		commentEntries[i] = Entry{Label: label, Value: float64(s.Comments)}
		sum.TotalVotes += s.Votes
		sum.TotalComments += s.Comments
	}
	sum.VoteShare = TopShare(voteEntries, opts.TopStories, "Other stories")
	sum.CommentShare = TopShare(commentEntries, opts.TopStories, "Other stories")

	domains := AggregateByDomain(stories)
	domainEntries := make([]Entry, len(domains))
	for i, d := range domains {
		domainEntries[i] = Entry{Label: d.Domain, Value: float64(d.Votes)}
	}
	sum.DomainShare = TopShare(domainEntries, opts.TopDomains, "Other domains")

	sum.Levels = AggregateByLevel(stories)
	return sum
}

// LevelSlices renders the level counts as labelled pie wedges, with the
// threshold ranges in the labels. All three levels are present even at zero
// count so consumers can show an empty bucket.
func (s *Summary) LevelSlices() []Slice {
	t := s.Thresholds
	if t == (story.Thresholds{}) {
		t = story.DefaultThresholds()
	}
	return []Slice{
		{Label: fmt.Sprintf("Quiet (<%g)", t.QuietMax), Value: float64(s.Levels.Quiet)},
		{Label: fmt.Sprintf("Balanced (%g-%g)", t.QuietMax, t.BalancedMax), Value: float64(s.Levels.Balanced)},
		{Label: fmt.Sprintf("Buzzing (>%g)", t.BalancedMax), Value: float64(s.Levels.Buzzing)},
	}
}
