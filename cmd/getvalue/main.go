package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/getvalue/getvalue/internal/api"
	"github.com/getvalue/getvalue/internal/config"
	"github.com/getvalue/getvalue/internal/database"
	"github.com/getvalue/getvalue/internal/export"
	"github.com/getvalue/getvalue/internal/fmp"
	"github.com/getvalue/getvalue/internal/normalize"
	"github.com/getvalue/getvalue/internal/report"
	"github.com/getvalue/getvalue/internal/store"
	"github.com/getvalue/getvalue/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "getvalue",
		Usage: "fundamental analysis and valuation of listed companies",
		Commands: []*cli.Command{
			{
				Name:      "report",
				Usage:     "print the full analysis report for a ticker",
				ArgsUsage: "TICKER",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "view", Value: "annual", Usage: "statement view: annual or quarterly"},
					&cli.BoolFlag{Name: "json", Usage: "emit raw JSON instead of tables"},
				},
				Action: runReport,
			},
			{
				Name:   "serve",
				Usage:  "run the HTTP API with the cache-refresh worker",
				Action: runServe,
			},
			{
				Name:      "export",
				Usage:     "export the analysis workbook for a ticker",
				ArgsUsage: "TICKER",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "sheets", Usage: "write to Google Sheets instead of an .xlsx file"},
				},
				Action: runExport,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// companyService wires the FMP client to the optional database cache.
// Without DATABASE_URL the CLI runs straight against the API.
func companyService(ctx context.Context, cfg config.Config) (*store.Service, func(), error) {
	client := fmp.NewClient(cfg.FMPBaseURL, cfg.FMPAPIKey, cfg.FMPRetryBaseDelay, cfg.FMPRetryMax)

	if cfg.DatabaseURL == "" {
		return store.NewService(client, nil, cfg.CacheMaxAge), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	repo := store.NewPgRepository(pool)
	return store.NewService(client, repo, cfg.CacheMaxAge), pool.Close, nil
}

func tickerArg(c *cli.Context) (string, error) {
	ticker := c.Args().First()
	if ticker == "" {
		return "", cli.Exit("a ticker argument is required", 1)
	}
	return ticker, nil
}

func runReport(c *cli.Context) error {
	ticker, err := tickerArg(c)
	if err != nil {
		return err
	}

	view := normalize.Annual
	switch c.String("view") {
	case string(normalize.Annual):
	case string(normalize.Quarterly):
		view = normalize.Quarterly
	default:
		return cli.Exit("invalid view, expected annual or quarterly", 1)
	}

	cfg := config.Load()
	companies, cleanup, err := companyService(c.Context, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := companies.GetOrFetch(c.Context, ticker)
	if err != nil {
		return fmt.Errorf("loading %s: %w", ticker, err)
	}

	if c.Bool("json") {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling company data: %w", err)
		}
		fmt.Fprintln(c.App.Writer, string(out))
		return nil
	}

	fmt.Fprint(c.App.Writer, report.Company(data, view))
	return nil
}

func runServe(c *cli.Context) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return cli.Exit("DATABASE_URL is required for serve", 1)
	}

	companies, cleanup, err := companyService(c.Context, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	refreshWorker := worker.NewRefreshWorker(companies, cfg.RefreshWorkerInterval)
	go refreshWorker.Run(c.Context)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, refresh endpoint is unprotected")
	}

	srv := api.NewServer(cfg.HTTPPort, companies, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	<-c.Context.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runExport(c *cli.Context) error {
	ticker, err := tickerArg(c)
	if err != nil {
		return err
	}

	cfg := config.Load()
	companies, cleanup, err := companyService(c.Context, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := companies.GetOrFetch(c.Context, ticker)
	if err != nil {
		return fmt.Errorf("loading %s: %w", ticker, err)
	}

	var writer export.Writer
	if c.Bool("sheets") {
		if cfg.SheetsSpreadsheetID == "" || cfg.SheetsCredentialsJSON == "" {
			return cli.Exit("SHEETS_SPREADSHEET_ID and SHEETS_CREDENTIALS_JSON are required for --sheets", 1)
		}
		writer, err = export.NewSheetsWriter(c.Context, cfg.SheetsSpreadsheetID, cfg.SheetsCredentialsJSON)
		if err != nil {
			return err
		}
	} else {
		writer = export.NewExcelWriter(cfg.ExportDir)
	}

	if err := writer.Write(c.Context, data.Ticker, export.BuildWorkbook(data)); err != nil {
		return fmt.Errorf("exporting %s: %w", ticker, err)
	}
	log.Printf("Exported %s", data.Ticker)
	return nil
}
