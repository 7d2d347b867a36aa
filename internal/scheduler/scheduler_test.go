package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/hnpulse/internal/logger"
	"github.com/elonfeng/hnpulse/internal/store"
	"github.com/elonfeng/hnpulse/pkg/alert"
	"github.com/elonfeng/hnpulse/pkg/analyze"
	"github.com/elonfeng/hnpulse/pkg/story"
)

type stubFetcher struct {
	stories []story.Story
	err     error
	calls   atomic.Int32
}

func (f *stubFetcher) Name() string { return "stub" }
func (f *stubFetcher) Fetch(ctx context.Context) ([]story.Story, error) {
	f.calls.Add(1)
	return f.stories, f.err
}

type captureNotifier struct {
	notifications []*alert.Notification
}

func (c *captureNotifier) Name() string { return "capture" }
func (c *captureNotifier) Send(ctx context.Context, n *alert.Notification) error {
	c.notifications = append(c.notifications, n)
	return nil
}

func newTestScheduler(t *testing.T, fetcher *stubFetcher, notifier alert.Notifier) (*Scheduler, *store.SQLiteStore) {
	t.Helper()
	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mgr *alert.Manager
	if notifier != nil {
		mgr = alert.NewManager([]alert.Notifier{notifier})
	} else {
		mgr = alert.NewManager(nil)
	}

	sched := New(db, fetcher, analyze.New(story.DefaultThresholds()),
		analyze.DefaultSummaryOptions(), mgr, time.Minute, logger.NewNop())
	return sched, db
}

func TestRunOncePersistsRun(t *testing.T) {
	fetcher := &stubFetcher{stories: []story.Story{
		{Title: "A", URL: "https://x.com/a", Votes: 100, Comments: 10},
		{Title: "B", URL: "https://y.com/b", Votes: 10, Comments: 25},
	}}
	sched, db := newTestScheduler(t, fetcher, nil)

	require.NoError(t, sched.runOnce(context.Background()))

	run, err := db.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stub", run.Source)
	assert.Equal(t, 2, run.StoryCount)
	assert.Equal(t, 1, run.Buzzing)

	stories, err := db.RunStories(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "x.com", stories[0].Domain)
}

func TestRunOnceAlertsBuzzingOnce(t *testing.T) {
	fetcher := &stubFetcher{stories: []story.Story{
		{Title: "Quiet", URL: "https://q.com", Votes: 100, Comments: 5},
		{Title: "Hot", URL: "https://h.com", Votes: 10, Comments: 40},
	}}
	capture := &captureNotifier{}
	sched, _ := newTestScheduler(t, fetcher, capture)

	ctx := context.Background()
	require.NoError(t, sched.runOnce(ctx))

	// Only the buzzing story is alerted.
	require.Len(t, capture.notifications, 1)
	n := capture.notifications[0]
	require.Len(t, n.Stories, 1)
	assert.Equal(t, "Hot", n.Stories[0].Title)
	assert.Positive(t, n.RunID)

	// Second pass with the same front page: already alerted, no repeat.
	require.NoError(t, sched.runOnce(ctx))
	assert.Len(t, capture.notifications, 1)
}

func TestRunOnceFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("network down")}
	sched, db := newTestScheduler(t, fetcher, nil)

	err := sched.runOnce(context.Background())
	require.Error(t, err)

	_, err = db.LatestRun(context.Background())
	assert.ErrorIs(t, err, store.ErrNoRuns)
}

func TestRunOnceEmptyFetch(t *testing.T) {
	fetcher := &stubFetcher{}
	sched, db := newTestScheduler(t, fetcher, nil)

	// No stories is not an error, but nothing is persisted.
	require.NoError(t, sched.runOnce(context.Background()))
	_, err := db.LatestRun(context.Background())
	assert.ErrorIs(t, err, store.ErrNoRuns)
}

func TestRunStopsOnCancel(t *testing.T) {
	fetcher := &stubFetcher{stories: []story.Story{
		{Title: "A", URL: "https://x.com", Votes: 1, Comments: 0},
	}}
	sched, _ := newTestScheduler(t, fetcher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	// The initial run happens before the first tick; give it a moment.
	require.Eventually(t, func() bool { return fetcher.calls.Load() > 0 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
