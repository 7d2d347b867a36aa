// Package analyze derives engagement attributes for front-page stories and
// computes the aggregate views the renderers consume.
package analyze

import (
	"sort"

	"github.com/elonfeng/hnpulse/pkg/story"
)

// Analyzer classifies and aggregates stories against a fixed set of
// engagement thresholds. All methods are pure.
type Analyzer struct {
	thresholds story.Thresholds
}

// New creates an Analyzer. Zero-valued thresholds fall back to the defaults.
func New(t story.Thresholds) *Analyzer {
	if t == (story.Thresholds{}) {
		t = story.DefaultThresholds()
	}
	return &Analyzer{thresholds: t}
}

// Thresholds returns the cut points this analyzer classifies with.
func (a *Analyzer) Thresholds() story.Thresholds { return a.thresholds }

// Derive returns a copy of stories with Domain, EngagementRatio and
// EngagementLevel filled in. Zero-vote stories get EngagementValid=false and
// keep a zero ratio; they are excluded from level aggregation but still
// participate in vote and domain aggregates. Idempotent.
func (a *Analyzer) Derive(stories []story.Story) []story.Story {
	out := make([]story.Story, len(stories))
	for i, s := range stories {
		s.Domain = story.DomainOf(s.URL)
		if s.Votes > 0 {
			s.EngagementRatio = float64(s.Comments) / float64(s.Votes)
			s.EngagementLevel = a.thresholds.Level(s.EngagementRatio)
			s.EngagementValid = true
		} else {
			s.EngagementRatio = 0
			s.EngagementLevel = story.LevelQuiet
			s.EngagementValid = false
		}
		out[i] = s
	}
	return out
}

// TopN returns the min(n, len) stories with the most votes, descending.
// Ties keep input order.
func TopN(stories []story.Story, n int) []story.Story {
	if n < 0 {
		n = 0
	}
	ordered := make([]story.Story, len(stories))
	copy(ordered, stories)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Votes > ordered[j].Votes
	})
	if n > len(ordered) {
		n = len(ordered)
	}
	return ordered[:n]
}

// DomainVotes is one domain's vote total.
type DomainVotes struct {
	Domain string `json:"domain"`
	Votes  int    `json:"votes"`
}

// AggregateByDomain sums votes per derived domain. Output order is the first
// occurrence of each domain in the input, so legends stay deterministic.
func AggregateByDomain(stories []story.Story) []DomainVotes {
	index := make(map[string]int)
	var out []DomainVotes
	for _, s := range stories {
		domain := s.Domain
		if domain == "" {
			domain = story.DomainOf(s.URL)
		}
		if i, ok := index[domain]; ok {
			out[i].Votes += s.Votes
			continue
		}
		index[domain] = len(out)
		out = append(out, DomainVotes{Domain: domain, Votes: s.Votes})
	}
	return out
}

// LevelCounts holds the story count per engagement level. Every level is
// present even at zero. Excluded counts zero-vote stories, which have no
// defined ratio.
type LevelCounts struct {
	Quiet    int `json:"quiet"`
	Balanced int `json:"balanced"`
	Buzzing  int `json:"buzzing"`
	Excluded int `json:"excluded"`
}

// Count returns the count for a single level.
func (c LevelCounts) Count(l story.Level) int {
	switch l {
	case story.LevelQuiet:
		return c.Quiet
	case story.LevelBalanced:
		return c.Balanced
	case story.LevelBuzzing:
		return c.Buzzing
	}
	return 0
}

// Total is the number of stories the aggregation saw, counted or excluded.
func (c LevelCounts) Total() int {
	return c.Quiet + c.Balanced + c.Buzzing + c.Excluded
}

// AggregateByLevel counts derived stories per engagement level.
// Stories must already be derived; zero-vote rows land in Excluded.
func AggregateByLevel(stories []story.Story) LevelCounts {
	var c LevelCounts
	for _, s := range stories {
		if !s.EngagementValid {
			c.Excluded++
			continue
		}
		switch s.EngagementLevel {
		case story.LevelQuiet:
			c.Quiet++
		case story.LevelBalanced:
			c.Balanced++
		case story.LevelBuzzing:
			c.Buzzing++
		}
	}
	return c
}
