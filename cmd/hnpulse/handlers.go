package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/elonfeng/hnpulse/internal/config"
	"github.com/elonfeng/hnpulse/internal/logger"
	"github.com/elonfeng/hnpulse/internal/scheduler"
	"github.com/elonfeng/hnpulse/internal/store"
	"github.com/elonfeng/hnpulse/pkg/alert"
	"github.com/elonfeng/hnpulse/pkg/analyze"
	"github.com/elonfeng/hnpulse/pkg/dataset"
	"github.com/elonfeng/hnpulse/pkg/fetch"
	"github.com/elonfeng/hnpulse/pkg/report"
	"github.com/elonfeng/hnpulse/pkg/server"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("hnpulse.yaml"); err == nil {
			path = "hnpulse.yaml"
		}
	}
	return config.Load(path)
}

func buildAnalyzer(cfg *config.Config) *analyze.Analyzer {
	return analyze.New(cfg.Analysis.Thresholds())
}

func summaryOptions(cfg *config.Config) analyze.SummaryOptions {
	return analyze.SummaryOptions{
		TopStories: cfg.Analysis.TopStories,
		TopDomains: cfg.Analysis.TopDomains,
		TitleWidth: cfg.Analysis.TitleWidth,
	}
}

func buildFetcher(cfg *config.Config, src string, limit int) (fetch.Fetcher, error) {
	if src == "" {
		src = cfg.Fetch.Source
	}
	if limit <= 0 {
		limit = cfg.Fetch.Limit
	}
	switch src {
	case "api":
		return fetch.NewAPI(limit), nil
	case "feed":
		return fetch.NewFeed(cfg.Fetch.FeedURL, limit), nil
	}
	return nil, fmt.Errorf("unknown fetch source %q (want api or feed)", src)
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runAnalyze(input string, jsonOutput bool, chartsOut string, save bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if input == "" {
		input = cfg.Input.Path
	}

	stories, stats, err := dataset.Load(input, dataset.Options{Strict: cfg.Input.Strict})
	if err != nil {
		return err
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "warning: skipped %d malformed rows\n", stats.Skipped)
	}

	analyzer := buildAnalyzer(cfg)
	derived := analyzer.Derive(stories)
	sum := analyzer.Summarize(derived, summaryOptions(cfg))

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			return err
		}
	} else {
		report.RenderStories(os.Stdout, derived)
		report.RenderTables(os.Stdout, sum)
	}

	if chartsOut != "" {
		if err := report.WriteWorkbook(chartsOut, sum); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", chartsOut)
	}

	if save {
		db, err := store.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer db.Close()

		run := store.NewRun("file:"+input, sum, stats.Skipped)
		if err := db.SaveRun(context.Background(), run, derived); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "saved run %d\n", run.ID)
	}

	return nil
}

func runFetch(src string, limit int, out string, analyzeNow bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fetcher, err := buildFetcher(cfg, src, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "fetching front page via %s...\n", fetcher.Name())
	stories, err := fetcher.Fetch(context.Background())
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if len(stories) == 0 {
		return fmt.Errorf("fetch returned no stories")
	}
	fmt.Fprintf(os.Stderr, "fetched %d stories\n", len(stories))

	if analyzeNow {
		analyzer := buildAnalyzer(cfg)
		derived := analyzer.Derive(stories)
		sum := analyzer.Summarize(derived, summaryOptions(cfg))
		report.RenderStories(os.Stdout, derived)
		report.RenderTables(os.Stdout, sum)
		return nil
	}

	if out == "" {
		out = cfg.Input.Path
	}
	if err := dataset.WriteCSV(out, stories); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	return nil
}

func runReport(runID int64, out string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if out == "" {
		out = cfg.Report.Output
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	var run *store.Run
	if runID > 0 {
		run, err = db.GetRun(ctx, runID)
	} else {
		run, err = db.LatestRun(ctx)
	}
	if err != nil {
		return err
	}

	stories, err := db.RunStories(ctx, run.ID)
	if err != nil {
		return err
	}

	analyzer := buildAnalyzer(cfg)
	sum := analyzer.Summarize(stories, summaryOptions(cfg))
	if err := report.WriteWorkbook(out, sum); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s from run %d (%s)\n", out, run.ID, run.CreatedAt.Format(time.RFC3339))
	return nil
}

func runHistory(limit int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("no runs stored (try: hnpulse analyze --save, or hnpulse watch)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tSTORIES\tVOTES\tCOMMENTS\tBUZZING\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.Source, r.StoryCount, r.TotalVotes, r.TotalComments,
			r.Buzzing, r.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	log, err := logger.New(cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	fetcher, err := buildFetcher(cfg, "", 0)
	if err != nil {
		return err
	}

	srv := server.New(db, buildAnalyzer(cfg), summaryOptions(cfg), fetcher, port, log)
	return srv.ListenAndServe()
}

func runWatch(interval string, port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if interval != "" {
		cfg.Watch.Interval = interval
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	log, err := logger.New(cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	fetcher, err := buildFetcher(cfg, "", 0)
	if err != nil {
		return err
	}
	analyzer := buildAnalyzer(cfg)
	alertMgr := buildAlertManager(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, fetcher, analyzer, summaryOptions(cfg), alertMgr,
		cfg.Watch.ParseInterval(), log)

	// Run scheduler in background alongside the HTTP server.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("scheduler exited", logger.Err(err))
		}
	}()

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	srv := server.New(db, analyzer, summaryOptions(cfg), fetcher, port, log)
	return srv.ListenAndServe()
}
