package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/elonfeng/hnpulse/pkg/story"
)

const defaultAPIBaseURL = "https://hacker-news.firebaseio.com/v0"

// API fetches top stories from the official Firebase API.
type API struct {
	client  *http.Client
	baseURL string
	limit   int
}

// NewAPI creates an API fetcher returning at most limit stories.
func NewAPI(limit int) *API {
	if limit <= 0 {
		limit = 30
	}
	return &API{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultAPIBaseURL,
		limit:   limit,
	}
}

func (a *API) Name() string { return "api" }

func (a *API) Fetch(ctx context.Context) ([]story.Story, error) {
	ids, err := a.fetchTopStories(ctx)
	if err != nil {
		return nil, err
	}

	if len(ids) > a.limit {
		ids = ids[:a.limit]
	}

	type ranked struct {
		rank  int
		story story.Story
	}

	var (
		mu      sync.Mutex
		fetched []ranked
		wg      sync.WaitGroup
		sem     = make(chan struct{}, 10) // concurrency limit
	)

	for rank, id := range ids {
		wg.Add(1)
		go func(rank, id int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item, err := a.fetchItem(ctx, id)
			if err != nil || item == nil {
				return
			}

			s := story.Story{
				Title:    item.Title,
				URL:      item.URL,
				Votes:    item.Score,
				Comments: item.Descendants,
			}
			if s.URL == "" {
				s.URL = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
			}

			mu.Lock()
			fetched = append(fetched, ranked{rank: rank, story: s})
			mu.Unlock()
		}(rank, id)
	}

	wg.Wait()

	// Restore front-page order lost to concurrent fetching.
	sort.Slice(fetched, func(i, j int) bool { return fetched[i].rank < fetched[j].rank })
	stories := make([]story.Story, len(fetched))
	for i, r := range fetched {
		stories[i] = r.story
	}
	return stories, nil
}

type apiItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Type        string `json:"type"`
}

func (a *API) fetchTopStories(ctx context.Context) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/topstories.json", nil)
	if err != nil {
		return nil, fmt.Errorf("create top stories request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}
	defer resp.Body.Close()

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode top stories: %w", err)
	}
	return ids, nil
}

func (a *API) fetchItem(ctx context.Context, id int) (*apiItem, error) {
	url := fmt.Sprintf("%s/item/%d.json", a.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create item request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch item %d: %w", id, err)
	}
	defer resp.Body.Close()

	var item apiItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode item %d: %w", id, err)
	}

	if item.Type != "story" {
		return nil, nil
	}
	return &item, nil
}
