package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/alvmarrod/domain-finder/internal/domain"
)

// DefaultArchiveURL is the Wayback Machine CDX endpoint
const DefaultArchiveURL = "http://web.archive.org/cdx/search/cdx"

// Archive queries the Wayback Machine CDX index
type Archive struct {
	baseURL string
	client  *JSONClient
	now     func() time.Time
}

// NewArchive creates an archive-history adapter
func NewArchive(opts Options) *Archive {
	return &Archive{
		baseURL: opts.baseURL(DefaultArchiveURL),
		client:  NewJSONClient(opts),
		now:     time.Now,
	}
}

// History returns snapshot count and first/last capture dates for a domain
func (a *Archive) History(ctx context.Context, domainName string) (domain.ArchiveHistory, error) {
	var result domain.ArchiveHistory

	q := url.Values{}
	q.Set("url", domainName)
	q.Set("output", "json")
	q.Set("limit", "10000")

	var rows [][]string
	if err := a.client.GetJSON(ctx, a.baseURL+"?"+q.Encode(), nil, &rows); err != nil {
		return result, fmt.Errorf("archive lookup %s: %w", domainName, err)
	}

	// Row 0 is the CDX field header
	if len(rows) <= 1 {
		return result, nil
	}

	first := captureTimestamp(rows[1])
	last := captureTimestamp(rows[len(rows)-1])
	if len(first) < 8 || len(last) < 8 {
		return result, fmt.Errorf("archive lookup %s: malformed capture timestamp", domainName)
	}

	result.SnapshotCount = len(rows) - 1
	result.HasHistory = true
	result.FirstArchive = first[:8]
	result.LastArchive = last[:8]

	if year, err := strconv.Atoi(first[:4]); err == nil {
		result.AgeYears = a.now().Year() - year
	}
	return result, nil
}

func captureTimestamp(row []string) string {
	if len(row) < 2 {
		return ""
	}
	return row[1]
}
