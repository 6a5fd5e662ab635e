// Package fmp talks to the Financial Modeling Prep API, the upstream
// source for statements, ratio datasets and company profiles.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/getvalue/getvalue/internal/schema"
)

const (
	annualLimit    = 10
	quarterlyLimit = 12
)

// Client fetches company data from the FMP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryDelay time.Duration
	maxRetries int
}

// NewClient creates a new FMP API client.
func NewClient(baseURL, apiKey string, retryDelay time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryDelay: retryDelay,
		maxRetries: maxRetries,
	}
}

// FetchCompany fetches all datasets for a ticker: the three statements in
// annual and quarterly views, annual ratios, annual key metrics and the
// company profile.
func (c *Client) FetchCompany(ctx context.Context, ticker string) (*CompanyData, error) {
	data := &CompanyData{Ticker: ticker}

	for _, stmt := range schema.Statements {
		annual, err := c.FetchStatement(ctx, ticker, stmt, "annual", annualLimit)
		if err != nil {
			return nil, fmt.Errorf("fetching annual %s: %w", stmt, err)
		}
		quarterly, err := c.FetchStatement(ctx, ticker, stmt, "quarter", quarterlyLimit)
		if err != nil {
			return nil, fmt.Errorf("fetching quarterly %s: %w", stmt, err)
		}

		switch stmt {
		case schema.Income:
			data.AnnualIncome, data.QuarterlyIncome = annual, quarterly
		case schema.Balance:
			data.AnnualBalance, data.QuarterlyBalance = annual, quarterly
		case schema.CashFlow:
			data.AnnualCashFlow, data.QuarterlyCashFlow = annual, quarterly
		}
	}

	ratios, err := c.fetchList(ctx, "ratios", ticker, "", annualLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching ratios: %w", err)
	}
	data.AnnualRatios = ratios

	keyMetrics, err := c.fetchList(ctx, "key-metrics", ticker, "", annualLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching key metrics: %w", err)
	}
	data.AnnualKeyMetrics = keyMetrics

	profile, err := c.fetchList(ctx, "profile", ticker, "", 0)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	if len(profile) > 0 {
		data.Overview = profile[0]
	} else {
		data.Overview = Record{}
	}

	return data, nil
}

// FetchStatement fetches one statement. period is "annual" or "quarter".
func (c *Client) FetchStatement(ctx context.Context, ticker string, stmt schema.Statement, period string, limit int) ([]Record, error) {
	p := period
	if p == "annual" {
		// Annual is the API default; the parameter is only sent for quarters.
		p = ""
	}
	return c.fetchList(ctx, stmt.String(), ticker, p, limit)
}

func (c *Client) fetchList(ctx context.Context, endpoint, ticker, period string, limit int) ([]Record, error) {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("apikey", c.apiKey)
	if period != "" {
		params.Set("period", period)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}

	body, err := c.fetchWithRetry(ctx, fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode()))
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}

	// Errors come back as an object instead of a list.
	var errResp map[string]any
	if err := json.Unmarshal(body, &errResp); err == nil {
		if msg, ok := errResp["Error Message"].(string); ok {
			return nil, fmt.Errorf("FMP API error: %s", msg)
		}
	}
	return nil, fmt.Errorf("unexpected FMP response for %s", endpoint)
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.retryDelay
			if baseDelay == 0 {
				baseDelay = 2 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating FMP request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("FMP request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading FMP response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("FMP rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("FMP HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
