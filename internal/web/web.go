// Package web provides the optional serve mode: the latest analysis result
// is held in memory and exposed as JSON and as the rendered text report.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/friedrich-daniel/calendar-time-analysis/internal/analysis"
	appLog "github.com/friedrich-daniel/calendar-time-analysis/internal/log"
	"github.com/friedrich-daniel/calendar-time-analysis/internal/render"
)

// RunFunc executes one full analysis over the configured sources.
type RunFunc func(ctx context.Context) (analysis.Report, *analysis.Diagnostics, error)

// Server serves the cached report. Refresh is driven externally (startup and
// a cron schedule), never by incoming requests.
type Server struct {
	run      RunFunc
	renderer *render.Renderer
	mux      *http.ServeMux

	mu     sync.RWMutex
	latest *snapshot
}

type snapshot struct {
	report    analysis.Report
	diags     *analysis.Diagnostics
	updatedAt time.Time
}

func NewServer(run RunFunc, renderer *render.Renderer) *Server {
	s := &Server{
		run:      run,
		renderer: renderer,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/report", s.handleReportJSON)
	s.mux.HandleFunc("/report", s.handleReportText)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// Refresh runs the analysis and replaces the cached snapshot.
func (s *Server) Refresh(ctx context.Context) error {
	report, diags, err := s.run(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.latest = &snapshot{report: report, diags: diags, updatedAt: time.Now()}
	s.mu.Unlock()
	appLog.Info("report refreshed",
		"buckets", len(report.Buckets),
		"counted_hours", report.CountedTotal.Hours(),
	)
	return nil
}

func (s *Server) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleReportText(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		http.Error(w, "report not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.renderer.Render(w, snap.report, ""); err != nil {
		appLog.Error("report render failed", err)
	}
}

type reportResponse struct {
	WindowStart  string         `json:"window_start"`
	WindowEnd    string         `json:"window_end"`
	CountedHours float64        `json:"counted_hours"`
	Buckets      []bucketDTO    `json:"buckets"`
	Diagnostics  diagnosticsDTO `json:"diagnostics"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type bucketDTO struct {
	Name   string     `json:"name"`
	Hours  float64    `json:"hours"`
	Events []eventDTO `json:"events"`
}

type eventDTO struct {
	Start    time.Time `json:"start"`
	Duration string    `json:"duration"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
}

type diagnosticsDTO struct {
	RuleErrors       []string `json:"rule_errors,omitempty"`
	RelaxedMatches   int      `json:"relaxed_matches"`
	AmbiguousMatches int      `json:"ambiguous_matches"`
	OrphanOverrides  int      `json:"orphan_overrides"`
	DateOnlySkipped  int      `json:"date_only_skipped"`
}

func (s *Server) handleReportJSON(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		http.Error(w, `{"error":"report not ready"}`, http.StatusServiceUnavailable)
		return
	}

	resp := reportResponse{
		WindowStart:  snap.report.WindowStart.Format("2006-01-02"),
		WindowEnd:    snap.report.WindowEnd.Format("2006-01-02"),
		CountedHours: snap.report.CountedTotal.Hours(),
		UpdatedAt:    snap.updatedAt,
	}
	for _, bucket := range snap.report.Buckets {
		dto := bucketDTO{Name: bucket.Name, Hours: bucket.Total.Hours()}
		for _, ev := range bucket.Events {
			dto.Events = append(dto.Events, eventDTO{
				Start:    ev.Start,
				Duration: ev.Duration.String(),
				Title:    ev.Title,
				Category: ev.Category,
			})
		}
		resp.Buckets = append(resp.Buckets, dto)
	}
	for _, re := range snap.diags.RuleErrors {
		resp.Diagnostics.RuleErrors = append(resp.Diagnostics.RuleErrors, re.Error())
	}
	resp.Diagnostics.RelaxedMatches = len(snap.diags.RelaxedMatches)
	resp.Diagnostics.AmbiguousMatches = len(snap.diags.AmbiguousMatches)
	resp.Diagnostics.OrphanOverrides = len(snap.diags.OrphanOverrides)
	resp.Diagnostics.DateOnlySkipped = snap.diags.DateOnlySkipped

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		appLog.Error("report encode failed", err)
	}
}
