// Package scheduler runs watch mode: periodic front-page fetches, analysis,
// persistence, and buzzing-story alerts.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/elonfeng/hnpulse/internal/logger"
	"github.com/elonfeng/hnpulse/internal/store"
	"github.com/elonfeng/hnpulse/pkg/alert"
	"github.com/elonfeng/hnpulse/pkg/analyze"
	"github.com/elonfeng/hnpulse/pkg/fetch"
	"github.com/elonfeng/hnpulse/pkg/story"
)

// Scheduler periodically fetches and analyzes the front page.
type Scheduler struct {
	store    store.Store
	fetcher  fetch.Fetcher
	analyzer *analyze.Analyzer
	sumOpts  analyze.SummaryOptions
	alertMgr *alert.Manager
	interval time.Duration
	log      logger.Logger
}

// New creates a scheduler.
func New(
	s store.Store,
	fetcher fetch.Fetcher,
	analyzer *analyze.Analyzer,
	sumOpts analyze.SummaryOptions,
	alertMgr *alert.Manager,
	interval time.Duration,
	log logger.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		store:    s,
		fetcher:  fetcher,
		analyzer: analyzer,
		sumOpts:  sumOpts,
		alertMgr: alertMgr,
		interval: interval,
		log:      log,
	}
}

// Run starts the loop. An analysis runs immediately, then on every tick.
// Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler started",
		logger.String("source", s.fetcher.Name()),
		logger.Duration("interval", s.interval))

	if err := s.runOnce(ctx); err != nil {
		s.log.Error("initial analysis failed", logger.Err(err))
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runOnce(ctx); err != nil {
				s.log.Error("analysis failed", logger.Err(err))
			}
		}
	}
}

// runOnce fetches, derives, persists and alerts for one snapshot.
func (s *Scheduler) runOnce(ctx context.Context) error {
	start := time.Now()

	stories, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch front page: %w", err)
	}
	if len(stories) == 0 {
		s.log.Warn("fetch returned no stories")
		return nil
	}

	derived := s.analyzer.Derive(stories)
	sum := s.analyzer.Summarize(derived, s.sumOpts)

	run := store.NewRun(s.fetcher.Name(), sum, 0)
	if err := s.store.SaveRun(ctx, run, derived); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	s.log.Info("run saved",
		logger.Int64("run_id", run.ID),
		logger.Int("stories", sum.StoryCount),
		logger.Int("buzzing", sum.Levels.Buzzing),
		logger.Since("took", start))

	s.alertBuzzing(ctx, run.ID, derived)
	return nil
}

// alertBuzzing notifies about buzzing stories not alerted before.
func (s *Scheduler) alertBuzzing(ctx context.Context, runID int64, stories []story.Story) {
	if s.alertMgr == nil || !s.alertMgr.HasNotifiers() {
		return
	}

	var fresh []story.Story
	for _, st := range stories {
		if !st.EngagementValid || st.EngagementLevel != story.LevelBuzzing {
			continue
		}
		alerted, err := s.store.IsAlerted(ctx, st.URL)
		if err != nil {
			s.log.Warn("alert dedup check failed", logger.String("url", st.URL), logger.Err(err))
			continue
		}
		if !alerted {
			fresh = append(fresh, st)
		}
	}
	if len(fresh) == 0 {
		return
	}

	n := &alert.Notification{
		Title:   fmt.Sprintf("%d buzzing stories on Hacker News", len(fresh)),
		Body:    "Stories with more comments than votes are generating unusual discussion.",
		RunID:   runID,
		Stories: fresh,
	}
	if err := s.alertMgr.Broadcast(ctx, n); err != nil {
		s.log.Error("alert broadcast failed", logger.Err(err))
		return
	}

	for _, st := range fresh {
		if err := s.store.MarkAlerted(ctx, st.URL, st.Title); err != nil {
			s.log.Warn("mark alerted failed", logger.String("url", st.URL), logger.Err(err))
		}
	}
	s.log.Info("alerts sent", logger.Int("stories", len(fresh)))
}
