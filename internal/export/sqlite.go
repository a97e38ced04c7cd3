package export

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/alvmarrod/domain-finder/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteWriter writes records into a standalone SQLite database file
type SQLiteWriter struct{}

// Extension implements Writer
func (SQLiteWriter) Extension() string { return "db" }

const resultsSchema = `
	CREATE TABLE IF NOT EXISTS results (
		rank INTEGER PRIMARY KEY,
		domain TEXT UNIQUE NOT NULL,
		domain_rating REAL,
		url_rating REAL,
		organic_traffic REAL,
		backlinks INTEGER,
		referring_domains INTEGER,
		snapshot_count INTEGER,
		first_archive TEXT,
		age_years TEXT,
		price TEXT,
		purchase_url TEXT,
		status_type TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_status ON results(status_type);
	`

// Write implements Writer
func (SQLiteWriter) Write(path string, records []domain.EvaluationRecord) error {
	// Artifacts are rewritten from scratch
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old database: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(resultsSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO results (rank, domain, domain_rating, url_rating, organic_traffic, backlinks,
			referring_domains, snapshot_count, first_archive, age_years, price, purchase_url, status_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		row := Row(i+1, r)
		age := fmt.Sprint(row[9])
		if _, err := stmt.Exec(row[0], row[1], row[2], row[3], row[4], row[5], row[6], row[7], row[8],
			age, row[10], row[11], string(r.Classification)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert %s: %w", r.Domain, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	return nil
}
