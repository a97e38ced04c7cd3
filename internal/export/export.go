// Package export writes the final ranked record set to a per-run artifact file.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/sirupsen/logrus"
)

// Supported artifact formats
const (
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// ErrNotFound is returned for an artifact name that does not resolve to a file
var ErrNotFound = errors.New("export file not found")

// Headers is the column schema shared by every writer
var Headers = []string{
	"#", "Domain", "DR", "UR", "Traffic", "Backlinks", "Ref Domains",
	"Snapshots", "First Archive", "Age (Years)", "Price", "Purchase URL",
}

// Writer serializes records into one file
type Writer interface {
	Extension() string
	Write(path string, records []domain.EvaluationRecord) error
}

// Row renders one record as cell values in Headers order; idx is 1-based
func Row(idx int, r domain.EvaluationRecord) []any {
	var age any = r.Age.String()
	if r.Age.Valid {
		age = r.Age.Years
	}
	firstArchive := r.FirstArchive
	if firstArchive == "" {
		firstArchive = "N/A"
	}
	return []any{
		idx,
		r.Domain,
		r.AuthorityScore,
		r.PageAuthorityScore,
		r.Traffic,
		r.Backlinks,
		r.ReferringDomains,
		r.SnapshotCount,
		firstArchive,
		age,
		r.PriceEstimate,
		r.PurchaseURL,
	}
}

// Exporter writes artifacts into a directory and resolves them for download
type Exporter struct {
	dir    string
	writer Writer
}

// NewExporter creates an exporter for the given format
func NewExporter(dir, format string) (*Exporter, error) {
	var w Writer
	switch strings.ToLower(format) {
	case "", FormatXLSX:
		w = XLSXWriter{}
	case FormatSQLite:
		w = SQLiteWriter{}
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	return &Exporter{dir: dir, writer: w}, nil
}

// FileName returns the deterministic artifact name for a run
func (e *Exporter) FileName(runID string) string {
	return "results_" + runID + "." + e.writer.Extension()
}

// Export writes records for a run and returns the artifact file name
func (e *Exporter) Export(runID string, records []domain.EvaluationRecord) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	name := e.FileName(runID)
	path := filepath.Join(e.dir, name)
	if err := e.writer.Write(path, records); err != nil {
		return "", fmt.Errorf("failed to export %s: %w", name, err)
	}

	logrus.Infof("Exported %d records to %s", len(records), path)
	return name, nil
}

// Resolve maps an artifact name to its path; names with path elements are rejected
func (e *Exporter) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrNotFound
	}

	path := filepath.Join(e.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}
