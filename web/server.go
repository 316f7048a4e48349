package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"oss-activity/commits"
	"oss-activity/config"
	"oss-activity/looker"
	"oss-activity/metrics"
	"oss-activity/report"
	"oss-activity/snapshot"
)

const (
	serviceName = "oss-activity-api"
	defaultDays = 30
)

// Server serves the snapshots under the configured output root. Nothing is
// cached: every request rescans the directory tree.
type Server struct {
	Router *chi.Mux
	Now    func() time.Time
	config config.Config
	log    *zap.Logger
}

// NewServer creates a new web server
func NewServer(cfg config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{config: cfg, log: log, Now: time.Now}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(Logging(s.log))
	r.Use(Metrics)
	r.Use(Recovery(s.log))
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/health", s.healthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshots", s.getSnapshots)
		r.Get("/commits/{window}", s.getCommits)
		r.Get("/export", s.getExport)
		r.Get("/export/flat", s.getFlatExport)
	})

	s.Router = r
}

// healthCheck returns server health status
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": s.Now().UTC(),
		"service":   serviceName,
	})
}

// getSnapshots lists the raw snapshots, optionally of one window and source.
func (s *Server) getSnapshots(w http.ResponseWriter, r *http.Request) {
	reg, err := snapshot.Scan(s.config.OutputDir)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "scanning snapshots", err)
		return
	}

	entries := reg.Entries
	if label := r.URL.Query().Get("window"); label != "" {
		source := r.URL.Query().Get("source")
		if source == "" {
			source = snapshot.SourceGitHub
		}
		entries = reg.InWindow(source, label)
	}
	if entries == nil {
		entries = []snapshot.Entry{}
	}
	labels := reg.Labels()
	if labels == nil {
		labels = []string{}
	}

	s.success(w, entries, map[string]interface{}{
		"windows":   labels,
		"snapshots": len(entries),
	})
}

// getCommits returns the aggregated commits of one window with their metrics.
func (s *Server) getCommits(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "window")
	window, err := snapshot.ParseLabel(label)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid window", err)
		return
	}

	layout := snapshot.NewLayout(s.config.OutputDir, window)
	path := filepath.Join(layout.RawDir(snapshot.SourceCommits), snapshot.AggregatedCommitsFile)
	aggs, err := commits.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.fail(w, http.StatusNotFound, "no commit snapshot for window", fmt.Errorf("%s", label))
			return
		}
		s.fail(w, http.StatusInternalServerError, "reading commit snapshot", err)
		return
	}
	if aggs == nil {
		aggs = []commits.Aggregate{}
	}

	s.success(w, aggs, metrics.CalculateCommitMetrics(aggs))
}

// getExport returns the unified cross-source export.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	u, ok := s.unify(w, r)
	if !ok {
		return
	}
	s.success(w, u, u.Summary)
}

// getFlatExport returns the flat projection as JSON or CSV.
func (s *Server) getFlatExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		s.fail(w, http.StatusBadRequest, "invalid format", fmt.Errorf("%q is not json or csv", format))
		return
	}

	u, ok := s.unify(w, r)
	if !ok {
		return
	}
	rows := looker.Flatten(u)

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=looker_studio_data_flat.csv")
		if err := report.WriteFlatCSV(w, rows); err != nil {
			s.log.Error("writing csv", zap.Error(err))
		}
		return
	}

	s.success(w, rows, map[string]interface{}{"rows": len(rows)})
}

func (s *Server) unify(w http.ResponseWriter, r *http.Request) (looker.UnifiedExport, bool) {
	days, err := parseDays(r.URL.Query().Get("days"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid days", err)
		return looker.UnifiedExport{}, false
	}

	reg, err := snapshot.Scan(s.config.OutputDir)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "scanning snapshots", err)
		return looker.UnifiedExport{}, false
	}

	exporter := looker.NewExporter(reg, s.config.UsageFile, s.config.PRDataDir, s.log)
	exporter.Now = s.Now
	u, err := exporter.Unify(r.Context(), days)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "building export", err)
		return looker.UnifiedExport{}, false
	}
	return u, true
}

func parseDays(v string) (int, error) {
	if v == "" {
		return defaultDays, nil
	}
	days, err := strconv.Atoi(v)
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("days must be a positive integer, got %q", v)
	}
	return days, nil
}

func (s *Server) success(w http.ResponseWriter, data, stats interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"data":      data,
		"stats":     stats,
		"timestamp": s.Now().UTC(),
	})
}

func (s *Server) fail(w http.ResponseWriter, code int, msg string, err error) {
	if code >= http.StatusInternalServerError {
		s.log.Error(msg, zap.Error(err))
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    "error",
		"error":     msg + ": " + err.Error(),
		"timestamp": s.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Start starts the web server
func (s *Server) Start(port string) error {
	s.log.Info("starting server", zap.String("port", port), zap.String("root", s.config.OutputDir))
	fmt.Printf("Available endpoints:\n")
	fmt.Printf("   GET /health - Health check\n")
	fmt.Printf("   GET /api/snapshots - Stored snapshots and windows\n")
	fmt.Printf("   GET /api/commits/{window} - Commit aggregates and metrics\n")
	fmt.Printf("   GET /api/export?days=N - Unified export\n")
	fmt.Printf("   GET /api/export/flat?days=N&format=json|csv - Flat export\n")
	fmt.Printf("   GET /metrics - Prometheus metrics\n")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
