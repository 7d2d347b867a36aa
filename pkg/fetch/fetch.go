// Package fetch pulls the current Hacker News front page, either from the
// Firebase API or from the hnrss.org feed, and returns it in the dataset's
// Story shape.
package fetch

import (
	"context"

	"github.com/elonfeng/hnpulse/pkg/story"
)

// Fetcher retrieves a front-page snapshot.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]story.Story, error)
}
