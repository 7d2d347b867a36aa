package fetch

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/elonfeng/hnpulse/pkg/story"
)

const defaultFeedURL = "https://hnrss.org/frontpage"

// hnrss.org embeds the counters in each item description as
// "Points: 123" and "# Comments: 45".
var (
	pointsRe   = regexp.MustCompile(`Points:\s*(\d+)`)
	commentsRe = regexp.MustCompile(`#\s*Comments:\s*(\d+)`)
)

// Feed fetches the front page from an hnrss.org-compatible feed.
type Feed struct {
	client  *http.Client
	parser  *gofeed.Parser
	feedURL string
	limit   int
}

// NewFeed creates a Feed fetcher. An empty feedURL uses hnrss.org.
func NewFeed(feedURL string, limit int) *Feed {
	if feedURL == "" {
		feedURL = defaultFeedURL
	}
	if limit <= 0 {
		limit = 30
	}
	return &Feed{
		client:  &http.Client{Timeout: 30 * time.Second},
		parser:  gofeed.NewParser(),
		feedURL: feedURL,
		limit:   limit,
	}
}

func (f *Feed) Name() string { return "feed" }

func (f *Feed) Fetch(ctx context.Context) ([]story.Story, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("User-Agent", "hnpulse/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", f.feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", f.feedURL, resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.feedURL, err)
	}

	var stories []story.Story
	for _, entry := range parsed.Items {
		if len(stories) >= f.limit {
			break
		}

		votes, okVotes := extractCount(pointsRe, entry.Description)
		comments, okComments := extractCount(commentsRe, entry.Description)
		if !okVotes || !okComments {
			// Jobs and some ask posts carry no counters; skip them.
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		stories = append(stories, story.Story{
			Title:    entry.Title,
			URL:      link,
			Votes:    votes,
			Comments: comments,
		})
	}

	return stories, nil
}

func extractCount(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
