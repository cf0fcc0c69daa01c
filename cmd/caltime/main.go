package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/friedrich-daniel/calendar-time-analysis/internal/analysis"
	"github.com/friedrich-daniel/calendar-time-analysis/internal/classify"
	"github.com/friedrich-daniel/calendar-time-analysis/internal/config"
	"github.com/friedrich-daniel/calendar-time-analysis/internal/ics"
	appLog "github.com/friedrich-daniel/calendar-time-analysis/internal/log"
	"github.com/friedrich-daniel/calendar-time-analysis/internal/render"
	"github.com/friedrich-daniel/calendar-time-analysis/internal/web"
)

type flagConfig struct {
	file       string
	week       string
	dstart     string
	dend       string
	cregex     string
	configPath string
	timezone   string
	listen     string
	serve      bool
	logFile    string
	verbose    bool
}

func main() {
	flags := parseFlags()
	appLog.SetVerbose(flags.verbose)

	if flags.logFile != "" {
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			appLog.Error("failed to open log file", err, "path", flags.logFile)
			os.Exit(1)
		}
		defer f.Close()
		appLog.SetOutput(f)
	}

	if !validateWindowFlags(flags) {
		fmt.Fprintln(os.Stderr, "either both --dstart and --dend, or only --week, or neither must be provided")
		os.Exit(2)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.cregex != "" {
		conf.CategoryRegex = flags.cregex
	}
	if flags.timezone != "" {
		conf.Timezone = flags.timezone
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		appLog.Error("invalid display timezone", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	classifier, err := classify.New(conf.CategoryRegex)
	if err != nil {
		appLog.Error("invalid category pattern", err, "pattern", conf.CategoryRegex)
		os.Exit(1)
	}

	sources, err := resolveSources(flags, conf)
	if err != nil {
		appLog.Error("no usable calendar source", err)
		os.Exit(1)
	}

	windowStart, windowEnd, weekTag, err := resolveWindow(flags)
	if err != nil {
		appLog.Error("invalid date window", err)
		os.Exit(2)
	}
	fixedWindow := flags.week != "" || flags.dstart != ""
	window := func() (time.Time, time.Time, string) {
		if fixedWindow {
			return windowStart, windowEnd, weekTag
		}
		// No explicit window: serve mode tracks the current ISO week
		// across refreshes.
		year, week := time.Now().ISOWeek()
		start, end := isoWeekRange(year, week)
		return start, end, fmt.Sprintf("in %04d-W%02d", year, week)
	}

	run := buildRun(conf, sources, classifier, window)

	if flags.serve {
		runServe(conf, run, loc)
		return
	}

	runOnce(run, loc)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.file, "file", "", "iCalendar file or URL, e.g. *.ics")
	flag.StringVar(&cfg.week, "week", "", "ISO 8601 calendar week, e.g. 2024-W01")
	flag.StringVar(&cfg.dstart, "dstart", "", "Start date, e.g. 2024-01-31")
	flag.StringVar(&cfg.dend, "dend", "", "End date, e.g. 2024-01-31")
	flag.StringVar(&cfg.cregex, "cregex", "", "Regular expression to extract categories (overrides config)")
	flag.StringVar(&cfg.configPath, "config", "caltime.yaml", "Path to config file")
	flag.StringVar(&cfg.timezone, "timezone", "", "Display timezone (overrides config)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address for serve mode (overrides config)")
	flag.BoolVar(&cfg.serve, "serve", false, "Serve the report over HTTP, refreshing on the configured schedule")
	flag.StringVar(&cfg.logFile, "log-file", "", "Write logs to this file instead of stderr")
	flag.BoolVar(&cfg.verbose, "verbose", false, "Enable debug logging")

	flag.Parse()
	return cfg
}

// validateWindowFlags enforces the window contract: current week by default,
// or an explicit week, or an explicit start+end pair.
func validateWindowFlags(f flagConfig) bool {
	switch {
	case f.week == "" && f.dstart == "" && f.dend == "":
		return true
	case f.week != "" && f.dstart == "" && f.dend == "":
		return true
	case f.week == "" && f.dstart != "" && f.dend != "":
		return true
	default:
		return false
	}
}

// resolveWindow computes the inclusive report window and an optional ISO
// week tag for the header.
func resolveWindow(f flagConfig) (start, end time.Time, weekTag string, err error) {
	if f.dstart != "" {
		start, err = time.Parse("2006-01-02", f.dstart)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		end, err = time.Parse("2006-01-02", f.dend)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		return start, end, "", nil
	}

	if f.week != "" {
		year, week, werr := parseISOWeek(f.week)
		if werr != nil {
			return time.Time{}, time.Time{}, "", werr
		}
		start, end = isoWeekRange(year, week)
		return start, end, fmt.Sprintf("in %04d-W%02d", year, week), nil
	}

	year, week := time.Now().ISOWeek()
	start, end = isoWeekRange(year, week)
	return start, end, fmt.Sprintf("in %04d-W%02d", year, week), nil
}

func resolveSources(f flagConfig, conf *config.Config) ([]ics.Source, error) {
	if f.file != "" {
		return []ics.Source{{ID: "cli", URL: f.file}}, nil
	}
	if len(conf.Sources) > 0 {
		sources := make([]ics.Source, 0, len(conf.Sources))
		for _, s := range conf.Sources {
			sources = append(sources, ics.Source{ID: s.ID, URL: s.URL})
		}
		return sources, nil
	}
	// Last resort: pick the first .ics file next to the invocation.
	path, err := ics.Discover(".")
	if err != nil {
		return nil, err
	}
	appLog.Info("discovered calendar file", "path", path)
	return []ics.Source{{ID: "discovered", URL: path}}, nil
}

// runReport bundles the report with the ISO week tag the renderer needs.
type runReport struct {
	report  analysis.Report
	diags   *analysis.Diagnostics
	weekTag string
}

func buildRun(conf *config.Config, sources []ics.Source, classifier func(string) string, window func() (time.Time, time.Time, string)) func(ctx context.Context) (runReport, error) {
	fetcher := ics.NewFetcher(conf.CacheDir)

	return func(ctx context.Context) (runReport, error) {
		results, errs := fetcher.FetchAll(ctx, sources)
		if len(results) == 0 {
			if len(errs) > 0 {
				return runReport{}, errs[0]
			}
			return runReport{}, errors.New("no calendar sources produced data")
		}

		var in analysis.Input
		skipped := 0
		for _, res := range results {
			parsed, stats, perr := ics.Parse(res.Body)
			if perr != nil {
				appLog.Error("ics parse failed", perr, "id", res.Source.ID)
				continue
			}
			in.Plain = append(in.Plain, parsed.Plain...)
			in.Series = append(in.Series, parsed.Series...)
			in.Override = append(in.Override, parsed.Override...)
			skipped += stats.DateOnlySkipped
		}

		windowStart, windowEnd, weekTag := window()
		report, diags := analysis.Analyze(in, analysis.Options{
			WindowStart:     windowStart,
			WindowEnd:       windowEnd,
			Classify:        classifier,
			IgnoredCategory: classify.Uncategorized,
		})
		diags.DateOnlySkipped += skipped
		return runReport{report: report, diags: diags, weekTag: weekTag}, nil
	}
}

func runOnce(run func(ctx context.Context) (runReport, error), loc *time.Location) {
	res, err := run(context.Background())
	if err != nil {
		appLog.Error("analysis run failed", err)
		os.Exit(1)
	}

	if !res.diags.Empty() {
		appLog.Info("run finished with diagnostics",
			"rule_errors", len(res.diags.RuleErrors),
			"relaxed_matches", len(res.diags.RelaxedMatches),
			"ambiguous_matches", len(res.diags.AmbiguousMatches),
			"orphan_overrides", len(res.diags.OrphanOverrides),
			"date_only_skipped", res.diags.DateOnlySkipped,
		)
	}

	if err := render.New(loc).Render(os.Stdout, res.report, res.weekTag); err != nil {
		appLog.Error("report render failed", err)
		os.Exit(1)
	}
}

func runServe(conf *config.Config, run func(ctx context.Context) (runReport, error), loc *time.Location) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	server := web.NewServer(func(ctx context.Context) (analysis.Report, *analysis.Diagnostics, error) {
		res, err := run(ctx)
		return res.report, res.diags, err
	}, render.New(loc))

	if err := server.Refresh(ctx); err != nil {
		appLog.Error("initial refresh failed", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		if err := server.Refresh(context.Background()); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	appLog.Info("caltime exiting")
}
