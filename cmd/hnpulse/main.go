package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hnpulse",
		Short: "Analyze Hacker News front-page engagement",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./hnpulse.yaml)")

	root.AddCommand(analyzeCmd())
	root.AddCommand(fetchCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(watchCmd())

	return root
}

func analyzeCmd() *cobra.Command {
	var (
		input      string
		jsonOutput bool
		chartsOut  string
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a front-page dataset file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(input, jsonOutput, chartsOut, save)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "dataset file (.csv or .xlsx, default: from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output summary as JSON")
	cmd.Flags().StringVar(&chartsOut, "charts", "", "also write the pie-chart workbook to this path")
	cmd.Flags().BoolVar(&save, "save", false, "persist the run to the history database")
	return cmd
}

func fetchCmd() *cobra.Command {
	var (
		src     string
		limit   int
		out     string
		analyze bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the current front page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(src, limit, out, analyze)
		},
	}

	cmd.Flags().StringVar(&src, "source", "", "fetch source: api or feed (default: from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max stories to fetch (default: from config)")
	cmd.Flags().StringVar(&out, "out", "", "write the snapshot as a dataset CSV (default: input path from config)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "analyze the snapshot instead of writing a file")
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		runID int64
		out   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the pie-chart workbook from a stored run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(runID, out)
		},
	}

	cmd.Flags().Int64Var(&runID, "run", 0, "run id (default: latest)")
	cmd.Flags().StringVar(&out, "out", "", "output workbook path (default: from config)")
	return cmd
}

func historyCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(limit, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func watchCmd() *cobra.Command {
	var (
		interval string
		port     int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Start daemon: periodic fetch, analysis, alerts and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(interval, port)
		},
	}

	cmd.Flags().StringVar(&interval, "interval", "", "fetch interval, e.g. 30m (default: from config)")
	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
