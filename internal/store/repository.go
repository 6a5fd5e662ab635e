package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that no cached data exists for the ticker.
var ErrNotFound = errors.New("company data not found")

// CachedCompany is one stored raw-data payload for a ticker.
type CachedCompany struct {
	Ticker    string          `json:"ticker"`
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Repository defines persistent storage for raw company data.
type Repository interface {
	Save(ctx context.Context, ticker string, data json.RawMessage, fetchedAt time.Time) error
	Get(ctx context.Context, ticker string) (*CachedCompany, error)
	ListTickers(ctx context.Context) ([]string, error)
	ListStale(ctx context.Context, olderThan time.Time) ([]string, error)
	Delete(ctx context.Context, ticker string) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL company-data repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, ticker string, data json.RawMessage, fetchedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO company_data (ticker, data, fetched_at)
		 VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (ticker)
		 DO UPDATE SET data = $2::jsonb, fetched_at = $3`,
		normalizeTicker(ticker), data, fetchedAt)
	if err != nil {
		return fmt.Errorf("saving company data: %w", err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, ticker string) (*CachedCompany, error) {
	var c CachedCompany
	err := r.pool.QueryRow(ctx,
		`SELECT ticker, data, fetched_at
		 FROM company_data
		 WHERE ticker = $1`, normalizeTicker(ticker)).Scan(&c.Ticker, &c.Data, &c.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting company data: %w", err)
	}
	return &c, nil
}

func (r *PgRepository) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ticker FROM company_data ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("listing tickers: %w", err)
	}
	defer rows.Close()

	return scanTickers(rows)
}

func (r *PgRepository) ListStale(ctx context.Context, olderThan time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ticker FROM company_data
		 WHERE fetched_at < $1
		 ORDER BY fetched_at`, olderThan)
	if err != nil {
		return nil, fmt.Errorf("listing stale tickers: %w", err)
	}
	defer rows.Close()

	return scanTickers(rows)
}

func (r *PgRepository) Delete(ctx context.Context, ticker string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM company_data WHERE ticker = $1`, normalizeTicker(ticker))
	if err != nil {
		return fmt.Errorf("deleting company data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTickers(rows pgx.Rows) ([]string, error) {
	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tickers: %w", err)
	}
	return tickers, nil
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
