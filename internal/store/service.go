package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getvalue/getvalue/internal/fmp"
)

// Fetcher pulls raw company data from the upstream provider.
type Fetcher interface {
	FetchCompany(ctx context.Context, ticker string) (*fmp.CompanyData, error)
}

// Service serves company data through the cache: fresh cache hits are
// returned as-is, misses and stale entries go upstream. Without a
// repository every read goes upstream, which keeps one-shot CLI runs
// independent of the database.
type Service struct {
	fetcher Fetcher
	repo    Repository
	maxAge  time.Duration
}

// NewService creates a company-data service. repo may be nil to bypass
// caching entirely.
func NewService(fetcher Fetcher, repo Repository, maxAge time.Duration) *Service {
	return &Service{fetcher: fetcher, repo: repo, maxAge: maxAge}
}

// GetOrFetch returns company data for the ticker, preferring a cache
// entry younger than the configured max age. When upstream fails but a
// stale entry exists, the stale entry is served.
func (s *Service) GetOrFetch(ctx context.Context, ticker string) (*fmp.CompanyData, error) {
	if s.repo == nil {
		return s.fetcher.FetchCompany(ctx, ticker)
	}

	cached, err := s.repo.Get(ctx, ticker)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("reading cache for %s: %w", ticker, err)
	}
	if cached != nil && time.Since(cached.FetchedAt) < s.maxAge {
		return decodeCompany(cached)
	}

	data, err := s.Refresh(ctx, ticker)
	if err != nil {
		if cached != nil {
			slog.Warn("serving stale company data after fetch failure",
				"ticker", ticker, "fetched_at", cached.FetchedAt, "error", err)
			return decodeCompany(cached)
		}
		return nil, err
	}
	return data, nil
}

// Refresh fetches the ticker upstream and overwrites the cache entry.
func (s *Service) Refresh(ctx context.Context, ticker string) (*fmp.CompanyData, error) {
	data, err := s.fetcher.FetchCompany(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ticker, err)
	}

	if s.repo != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshaling company data: %w", err)
		}
		if err := s.repo.Save(ctx, ticker, raw, time.Now().UTC()); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// RefreshStale refreshes every cache entry older than the max age and
// returns how many were refreshed. Individual failures are logged and
// skipped so one bad ticker cannot stall the sweep.
func (s *Service) RefreshStale(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}

	tickers, err := s.repo.ListStale(ctx, time.Now().UTC().Add(-s.maxAge))
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := s.Refresh(ctx, ticker); err != nil {
			slog.Error("failed to refresh company data", "ticker", ticker, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// Tickers lists every cached ticker.
func (s *Service) Tickers(ctx context.Context) ([]string, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListTickers(ctx)
}

func decodeCompany(c *CachedCompany) (*fmp.CompanyData, error) {
	var data fmp.CompanyData
	if err := json.Unmarshal(c.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding cached data for %s: %w", c.Ticker, err)
	}
	data.Ticker = c.Ticker
	return &data, nil
}
