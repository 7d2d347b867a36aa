package story

import (
	"net/url"
	"strings"
)

// UnknownDomain is the grouping key for stories whose URL has no usable hostname.
const UnknownDomain = "Unknown"

// Story is one front-page entry plus its derived engagement attributes.
// Votes and Comments are the raw counts; the derived fields are filled by
// analyze.Derive and are zero-valued until then.
type Story struct {
	Title    string `json:"title" db:"title"`
	URL      string `json:"url" db:"url"`
	Votes    int    `json:"votes" db:"votes"`
	Comments int    `json:"comments" db:"comments"`

	Domain          string  `json:"domain" db:"domain"`
	EngagementRatio float64 `json:"engagement_ratio" db:"ratio"`
	EngagementLevel Level   `json:"engagement_level" db:"level"`
	// EngagementValid is false for zero-vote stories, whose ratio is
	// undefined. Such stories still count for vote and domain aggregates.
	EngagementValid bool `json:"engagement_valid" db:"level_valid"`
}

// DomainOf extracts the hostname of a story URL for domain grouping.
// Anything without a usable hostname maps to UnknownDomain.
func DomainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return UnknownDomain
	}
	return u.Hostname()
}

// ShortTitle abbreviates a title to at most width runes, cutting at word
// boundaries and appending an ellipsis. Whitespace runs are collapsed first.
func ShortTitle(title string, width int) string {
	const placeholder = "…"

	words := strings.Fields(title)
	collapsed := strings.Join(words, " ")
	if len([]rune(collapsed)) <= width || width <= 0 {
		return collapsed
	}

	budget := width - len([]rune(placeholder))
	out := ""
	for _, w := range words {
		candidate := w
		if out != "" {
			candidate = out + " " + w
		}
		if len([]rune(candidate)) > budget {
			break
		}
		out = candidate
	}
	if out == "" {
		// Single word longer than the budget: hard cut.
		r := []rune(collapsed)
		if budget < 0 {
			budget = 0
		}
		out = string(r[:budget])
	}
	return out + placeholder
}
