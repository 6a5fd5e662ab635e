// Package api exposes the analysis engine over HTTP.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/getvalue/getvalue/internal/store"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, companies *store.Service, adminAPIKey string) *http.Server {
	handler := NewHandler(companies)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/tickers", handler.ListTickers)
	mux.HandleFunc("GET /api/v1/statements/{ticker}", handler.GetStatements)
	mux.HandleFunc("GET /api/v1/insights/{ticker}", handler.GetInsights)
	mux.HandleFunc("POST /api/v1/valuation/{ticker}", handler.PostValuation)

	refreshHandler := http.HandlerFunc(handler.PostRefresh)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/refresh/{ticker}", requireAuth(adminAPIKey, refreshHandler))
	} else {
		mux.Handle("POST /api/v1/refresh/{ticker}", refreshHandler)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
