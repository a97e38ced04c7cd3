package export_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/export"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []domain.EvaluationRecord {
	return []domain.EvaluationRecord{
		{
			Domain: "foo.com", AuthorityScore: 20, PageAuthorityScore: 7, Traffic: 0.3,
			Backlinks: 11, ReferringDomains: 4, SnapshotCount: 42, FirstArchive: "20100101",
			Age: domain.AgeOf(12.5), Classification: domain.Available,
			PriceEstimate: "$10-15/year", PurchaseURL: domain.Available.ActionURL("foo.com"),
		},
		{
			Domain: "baz.com", AuthorityScore: 10, Classification: domain.Registered,
			FirstArchive: "N/A", Age: domain.NoAge, PriceEstimate: "Contact Owner",
		},
	}
}

func TestExporter_XLSX(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "static")
	e, err := export.NewExporter(dir, "xlsx")
	require.NoError(t, err)

	name, err := e.Export("20250101_120000", sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, "results_20250101_120000.xlsx", name)

	f, err := excelize.OpenFile(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, export.Headers, rows[0])
	assert.Equal(t, []string{"1", "foo.com", "20", "7", "0.3", "11", "4", "42", "20100101", "12.5", "$10-15/year",
		"https://www.namecheap.com/domains/registration/results/?domain=foo.com"}, rows[1])
	assert.Equal(t, "baz.com", rows[2][1])
	assert.Equal(t, "N/A", rows[2][8])
	assert.Equal(t, "N/A", rows[2][9])

	width, err := f.GetColWidth(export.SheetName, "C")
	require.NoError(t, err)
	assert.Equal(t, 15.0, width)
}

func TestExporter_SQLite(t *testing.T) {
	dir := t.TempDir()
	e, err := export.NewExporter(dir, "sqlite")
	require.NoError(t, err)

	name, err := e.Export("run1", sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, "results_run1.db", name)

	// Exporting again replaces the file
	_, err = e.Export("run1", sampleRecords())
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", filepath.Join(dir, name))
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count))
	assert.Equal(t, 2, count)

	var (
		domainName string
		traffic    float64
		age        string
		status     string
	)
	require.NoError(t, db.QueryRow("SELECT domain, organic_traffic, age_years, status_type FROM results WHERE rank = 1").
		Scan(&domainName, &traffic, &age, &status))
	assert.Equal(t, "foo.com", domainName)
	assert.Equal(t, 0.3, traffic)
	assert.Equal(t, "12.5", age)
	assert.Equal(t, "available", status)

	require.NoError(t, db.QueryRow("SELECT age_years FROM results WHERE rank = 2").Scan(&age))
	assert.Equal(t, "N/A", age)
}

func TestNewExporter_UnknownFormat(t *testing.T) {
	_, err := export.NewExporter(t.TempDir(), "csv")
	assert.Error(t, err)
}

func TestExporter_Resolve(t *testing.T) {
	dir := t.TempDir()
	e, err := export.NewExporter(dir, "xlsx")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "results_x.xlsx"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	path, err := e.Resolve("results_x.xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results_x.xlsx"), path)

	for _, name := range []string{"", "missing.xlsx", "../results_x.xlsx", "sub/results_x.xlsx", "sub", "..", ".hidden"} {
		_, err := e.Resolve(name)
		assert.ErrorIs(t, err, export.ErrNotFound, name)
	}
}

func TestRow_NotApplicableValues(t *testing.T) {
	row := export.Row(3, domain.EvaluationRecord{Domain: "x.com"})
	require.Len(t, row, len(export.Headers))
	assert.Equal(t, 3, row[0])
	assert.Equal(t, "N/A", row[8])
	assert.Equal(t, "N/A", row[9])
}
