package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/bobmcallan/stocktrack/internal/app"
	"github.com/bobmcallan/stocktrack/internal/models"
	"github.com/bobmcallan/stocktrack/internal/services/dashboard"
	"github.com/bobmcallan/stocktrack/internal/services/history"
	"github.com/bobmcallan/stocktrack/internal/services/ranking"
)

// maxImportBytes bounds an OCR payload upload.
const maxImportBytes = 8 << 20

// --- History ---

// handleRecords serves GET (list), PUT (replace all) and DELETE (clear).
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		records := s.app.History.LoadAll(ctx)
		if limit := QueryInt(r, "limit", 0); limit > 0 && len(records) > limit {
			records = records[:limit]
		}
		WriteJSON(w, http.StatusOK, records)

	case http.MethodPut:
		var records []models.DailyRecord
		if !DecodeJSON(w, r, &records) {
			return
		}
		if err := s.app.History.SaveFull(ctx, records); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]int{"total": len(s.app.History.LoadAll(ctx))})

	case http.MethodDelete:
		if err := s.app.History.Clear(ctx); err != nil {
			WriteServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleRecordsImport accepts an OCR payload as the request body, or a JSON
// array of DailyRecords when ?format=records.
func (s *Server) handleRecordsImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.URL.Query().Get("format") == "records" {
		var records []models.DailyRecord
		if !DecodeJSON(w, r, &records) {
			return
		}
		table, err := s.app.History.UpsertBatch(ctx, records)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, app.ImportResult{Imported: len(records), Dates: datesOf(records), Total: len(table)})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read body: "+err.Error())
		return
	}
	res, err := s.app.ImportOCR(ctx, body)
	if err != nil {
		var ocrErr *history.OCRError
		if errors.As(err, &ocrErr) {
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, ocrErr.Error(), "ocr_error")
			return
		}
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecordsRestore(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.app.History.Restore(r.Context()); err != nil {
		if errors.Is(err, models.ErrPersistenceRead) {
			WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "no_backup")
			return
		}
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"total": len(s.app.History.LoadAll(r.Context()))})
}

func (s *Server) handleRecordByDate(w http.ResponseWriter, r *http.Request, date string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodDelete {
		if err := s.app.History.Delete(ctx, date); err != nil {
			WriteServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	rec, ok := s.app.History.Get(ctx, date)
	if !ok {
		WriteError(w, http.StatusNotFound, "No record for "+history.NormaliseDate(date))
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

type turnoverOverrideRequest struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// handleRecordTurnover sets (PUT) or removes (DELETE ?name=) a manual
// turnover override on one record.
func (s *Server) handleRecordTurnover(w http.ResponseWriter, r *http.Request, date string) {
	if !RequireMethod(w, r, http.MethodPut, http.MethodDelete) {
		return
	}

	req := turnoverOverrideRequest{Name: r.URL.Query().Get("name"), Value: -1}
	if r.Method == http.MethodPut && !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if r.Method == http.MethodPut && req.Value < 0 {
		WriteError(w, http.StatusBadRequest, "value must not be negative")
		return
	}

	if _, ok := s.app.History.Get(r.Context(), date); !ok {
		WriteError(w, http.StatusNotFound, "No record for "+history.NormaliseDate(date))
		return
	}
	rec, err := s.app.SetManualTurnover(r.Context(), date, req.Name, req.Value)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

// --- Dashboard and analytics ---

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	opts := dashboard.Options{
		Ranking:      QueryBool(r, "ranking", false),
		RankingLimit: app.ClampRankingLimit(QueryInt(r, "limit", ranking.DefaultLimit)),
		Indices:      QueryBool(r, "indices", false),
	}
	d, err := s.app.Dashboard.Build(r.Context(), r.URL.Query().Get("date"), opts)
	if err != nil {
		switch {
		case errors.Is(err, dashboard.ErrNoHistory):
			WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "no_history")
		case errors.Is(err, dashboard.ErrDateNotFound):
			WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "date_not_found")
		default:
			WriteServiceError(w, err)
		}
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	res, err := s.app.Streak(r.Context(), q.Get("date"), q.Get("field"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	stats, err := s.app.MonthlyStats(r.Context(), q.Get("month"), q.Get("field"), QueryInt(r, "limit", dashboard.LeaderboardSize))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (s *Server) handleWindDays(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.WindDays(r.Context()))
}

// --- Live market data ---

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	limit := app.ClampRankingLimit(QueryInt(r, "limit", ranking.DefaultLimit))
	WriteJSON(w, http.StatusOK, s.app.Ranking.GetRanking(r.Context(), limit))
}

type turnoverRequest struct {
	Names []string `json:"names"`
	Date  string   `json:"date"`
}

func (s *Server) handleTurnover(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req turnoverRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Names) == 0 {
		WriteError(w, http.StatusBadRequest, "names is required")
		return
	}
	WriteJSON(w, http.StatusOK, s.app.TurnoverFor(r.Context(), req.Names, req.Date))
}

func (s *Server) handleIndexQuotes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Market.GetIndexQuotes(r.Context()))
}

func (s *Server) handleIndexHistory(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Market.GetIndexHistory(r.Context(), symbol, r.URL.Query().Get("period")))
}

// --- Directory ---

func (s *Server) handleStockSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		WriteError(w, http.StatusBadRequest, "q is required")
		return
	}
	matches, err := s.app.SearchStocks(q, QueryInt(r, "limit", 10))
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, matches)
}

func (s *Server) handleStockResolve(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Directory.Resolve(name))
}

func datesOf(records []models.DailyRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, history.NormaliseDate(r.Date))
	}
	return out
}
