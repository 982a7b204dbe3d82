// cmd/ingest/main.go
// ATS candidate export loader
// Usage: go run ./cmd/ingest --csv /path/to/candidates.csv
//        go run ./cmd/ingest --html /path/to/report.html
//
// Reads a candidate export (CSV, or the first table of an HTML report page),
// resolves clients and staffing plans by name and upserts every row into the
// planner database keyed by candidate ID.

package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/tadeyemo32/vanguard-staffing/internal/config"
	"github.com/tadeyemo32/vanguard-staffing/internal/logging"
	"github.com/tadeyemo32/vanguard-staffing/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	csvPath := flag.String("csv", "", "Path to an ATS candidate CSV export")
	htmlPath := flag.String("html", "", "Path to an ATS candidate HTML report")
	dbPath := flag.String("db", cfg.DatabasePath, "Path to SQLite database file")
	flag.Parse()

	if (*csvPath == "") == (*htmlPath == "") {
		log.Fatal("exactly one of --csv or --html is required")
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	db, err := services.OpenDB(*dbPath, false)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	store := services.NewStore(db, cfg.ClientCacheTTL)

	path := *csvPath
	if path == "" {
		path = *htmlPath
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Cannot open export: %v", err)
	}
	defer f.Close()

	rows, malformed, err := parse(f, *csvPath != "")
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", path, err)
	}
	if malformed > 0 {
		log.Printf("Warning: skipped %d malformed rows", malformed)
	}

	stats, err := store.ImportCandidates(context.Background(), rows)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import complete. Read %d rows. Inserted/Updated %d candidates. Skipped %d.", stats.Total, stats.Upserted, stats.Skipped+malformed)
}

func parse(r io.Reader, isCSV bool) ([]services.CandidateRow, int, error) {
	if isCSV {
		return services.ParseCandidateCSV(r)
	}
	rows, err := services.ParseCandidateHTML(r)
	return rows, 0, err
}
