// Package store persists analysis runs to SQLite so history, reports and the
// API can read back past front-page snapshots.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/hnpulse/pkg/analyze"
	"github.com/elonfeng/hnpulse/pkg/story"
)

// ErrNoRuns marks an empty run history.
var ErrNoRuns = errors.New("no runs stored")

// Run is one persisted analysis of a front-page snapshot.
type Run struct {
	ID            int64     `db:"id" json:"id"`
	Source        string    `db:"source" json:"source"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	StoryCount    int       `db:"story_count" json:"story_count"`
	SkippedRows   int       `db:"skipped_rows" json:"skipped_rows"`
	TotalVotes    int       `db:"total_votes" json:"total_votes"`
	TotalComments int       `db:"total_comments" json:"total_comments"`
	Quiet         int       `db:"quiet" json:"quiet"`
	Balanced      int       `db:"balanced" json:"balanced"`
	Buzzing       int       `db:"buzzing" json:"buzzing"`
	Excluded      int       `db:"excluded" json:"excluded"`
}

// NewRun builds a Run record from a computed summary.
func NewRun(source string, sum *analyze.Summary, skipped int) *Run {
	return &Run{
		Source:        source,
		CreatedAt:     time.Now().UTC(),
		StoryCount:    sum.StoryCount,
		SkippedRows:   skipped,
		TotalVotes:    sum.TotalVotes,
		TotalComments: sum.TotalComments,
		Quiet:         sum.Levels.Quiet,
		Balanced:      sum.Levels.Balanced,
		Buzzing:       sum.Levels.Buzzing,
		Excluded:      sum.Levels.Excluded,
	}
}

// Store is the persistence interface.
type Store interface {
	SaveRun(ctx context.Context, run *Run, stories []story.Story) error
	GetRun(ctx context.Context, id int64) (*Run, error)
	LatestRun(ctx context.Context) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	RunStories(ctx context.Context, runID int64) ([]story.Story, error)

	MarkAlerted(ctx context.Context, url, title string) error
	IsAlerted(ctx context.Context, url string) (bool, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run and its stories in one transaction. Rank is the
// input order, so reads reproduce the dataset exactly.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run, stories []story.Story) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (source, created_at, story_count, skipped_rows, total_votes, total_comments, quiet, balanced, buzzing, excluded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Source, run.CreatedAt, run.StoryCount, run.SkippedRows,
		run.TotalVotes, run.TotalComments,
		run.Quiet, run.Balanced, run.Buzzing, run.Excluded)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	run.ID, _ = res.LastInsertId()

	for i, st := range stories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_stories (run_id, rank, title, url, domain, votes, comments, ratio, level, level_valid)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i+1, st.Title, st.URL, st.Domain,
			st.Votes, st.Comments, st.EngagementRatio,
			int(st.EngagementLevel), st.EngagementValid)
		if err != nil {
			return fmt.Errorf("insert run story %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %d: %w", run.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrNoRuns)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return &run, nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, "SELECT * FROM runs ORDER BY id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		"SELECT * FROM runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type storyRow struct {
	Rank       int     `db:"rank"`
	Title      string  `db:"title"`
	URL        string  `db:"url"`
	Domain     string  `db:"domain"`
	Votes      int     `db:"votes"`
	Comments   int     `db:"comments"`
	Ratio      float64 `db:"ratio"`
	Level      int     `db:"level"`
	LevelValid bool    `db:"level_valid"`
}

func (s *SQLiteStore) RunStories(ctx context.Context, runID int64) ([]story.Story, error) {
	var rows []storyRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT rank, title, url, domain, votes, comments, ratio, level, level_valid
		FROM run_stories WHERE run_id = ? ORDER BY rank
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("run %d stories: %w", runID, err)
	}

	stories := make([]story.Story, len(rows))
	for i, r := range rows {
		stories[i] = story.Story{
			Title:           r.Title,
			URL:             r.URL,
			Votes:           r.Votes,
			Comments:        r.Comments,
			Domain:          r.Domain,
			EngagementRatio: r.Ratio,
			EngagementLevel: story.Level(r.Level),
			EngagementValid: r.LevelValid,
		}
	}
	return stories, nil
}

func (s *SQLiteStore) MarkAlerted(ctx context.Context, url, title string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerted_stories (url, title, alerted_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET alerted_at = excluded.alerted_at
	`, url, title, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark alerted %s: %w", url, err)
	}
	return nil
}

func (s *SQLiteStore) IsAlerted(ctx context.Context, url string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM alerted_stories WHERE url = ?", url)
	if err != nil {
		return false, fmt.Errorf("check alerted %s: %w", url, err)
	}
	return count > 0, nil
}
