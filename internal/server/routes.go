package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/stocktrack/internal/common"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// History
	mux.HandleFunc("/api/records/import", s.handleRecordsImport)
	mux.HandleFunc("/api/records/restore", s.handleRecordsRestore)
	mux.HandleFunc("/api/records/", s.routeRecords)
	mux.HandleFunc("/api/records", s.handleRecords)

	// Dashboard and analytics
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/streak", s.handleStreak)
	mux.HandleFunc("/api/stats/monthly", s.handleMonthlyStats)
	mux.HandleFunc("/api/stats/wind", s.handleWindDays)

	// Live market data
	mux.HandleFunc("/api/ranking", s.handleRanking)
	mux.HandleFunc("/api/turnover", s.handleTurnover)
	mux.HandleFunc("/api/indices/", s.routeIndices)
	mux.HandleFunc("/api/indices", s.handleIndexQuotes)

	// Directory
	mux.HandleFunc("/api/stocks/search", s.handleStockSearch)
	mux.HandleFunc("/api/stocks/resolve", s.handleStockResolve)
}

// routeRecords dispatches /api/records/{date} and /api/records/{date}/turnover.
func (s *Server) routeRecords(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/records/"), "/")
	if rest == "" {
		s.handleRecords(w, r)
		return
	}

	date, sub, _ := strings.Cut(rest, "/")
	switch sub {
	case "":
		s.handleRecordByDate(w, r, date)
	case "turnover":
		s.handleRecordTurnover(w, r, date)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeIndices dispatches /api/indices/{symbol}/history.
func (s *Server) routeIndices(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/history") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	symbol := PathParam(r, "/api/indices/", "/history")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}
	s.handleIndexHistory(w, r, symbol)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.VersionInfo())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       cfg.Environment,
		"storage_backend":   cfg.Storage.Backend,
		"storage_path":      cfg.Storage.Path,
		"storage_table":     cfg.Storage.MainTable,
		"archive_enabled":   cfg.Storage.ArchivePath != "",
		"surrealdb_address": cfg.Storage.SurrealDB.Address,
		"surrealdb_pass":    maskSecret(cfg.Storage.SurrealDB.Password),
		"scrape_enabled":    cfg.Sources.Scrape.Enabled,
		"scrape_renderer":   cfg.Sources.Scrape.Renderer,
		"directory_entries": s.app.Directory.Len(),
		"indices":           cfg.Indices,
		"logging_level":     cfg.Logging.Level,
		"uptime":            time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
