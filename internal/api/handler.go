package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getvalue/getvalue/internal/fmp"
	"github.com/getvalue/getvalue/internal/insights"
	"github.com/getvalue/getvalue/internal/normalize"
	"github.com/getvalue/getvalue/internal/store"
	"github.com/getvalue/getvalue/internal/valuation"
)

// Handler provides HTTP endpoints for the analysis API.
type Handler struct {
	companies *store.Service
}

// NewHandler creates a new API handler.
func NewHandler(companies *store.Service) *Handler {
	return &Handler{companies: companies}
}

// GetStatements handles GET /api/v1/statements/{ticker}. The view query
// parameter selects annual (default) or quarterly granularity.
func (h *Handler) GetStatements(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}

	view := normalize.Annual
	switch v := r.URL.Query().Get("view"); v {
	case "", string(normalize.Annual):
	case string(normalize.Quarterly):
		view = normalize.Quarterly
	default:
		writeError(w, http.StatusBadRequest, "invalid view, expected annual or quarterly")
		return
	}

	data, ok := h.loadCompany(w, r, ticker)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, normalize.New(data).TableFor(view))
}

// GetInsights handles GET /api/v1/insights/{ticker}.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	data, ok := h.loadCompany(w, r, ticker)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, insights.New(data).All())
}

// PostValuation handles POST /api/v1/valuation/{ticker}. The optional
// body carries assumption overrides applied on top of the defaults
// seeded from company history.
func (h *Handler) PostValuation(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}

	var overrides valuation.Overrides
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &overrides); err != nil {
			writeError(w, http.StatusBadRequest, "invalid overrides payload")
			return
		}
	}

	data, ok := h.loadCompany(w, r, ticker)
	if !ok {
		return
	}

	assumptions := valuation.Defaults(data).Merge(overrides)
	writeJSON(w, http.StatusOK, valuation.Evaluate(data, assumptions))
}

// PostRefresh handles POST /api/v1/refresh/{ticker}.
func (h *Handler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}

	if _, err := h.companies.Refresh(r.Context(), ticker); err != nil {
		slog.Error("failed to refresh company data", "ticker", ticker, "error", err)
		writeError(w, http.StatusBadGateway, "failed to refresh company data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ticker": ticker, "status": "refreshed"})
}

// ListTickers handles GET /api/v1/tickers.
func (h *Handler) ListTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.companies.Tickers(r.Context())
	if err != nil {
		slog.Error("failed to list tickers", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if tickers == nil {
		tickers = []string{}
	}
	writeJSON(w, http.StatusOK, tickers)
}

func (h *Handler) loadCompany(w http.ResponseWriter, r *http.Request, ticker string) (*fmp.CompanyData, bool) {
	d, err := h.companies.GetOrFetch(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown ticker")
			return nil, false
		}
		slog.Error("failed to load company data", "ticker", ticker, "error", err)
		writeError(w, http.StatusBadGateway, "failed to load company data")
		return nil, false
	}
	return d, true
}

func tickerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	ticker := strings.ToUpper(strings.TrimSpace(r.PathValue("ticker")))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "missing ticker")
		return "", false
	}
	return ticker, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
