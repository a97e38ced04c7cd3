package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alvmarrod/domain-finder/internal/domain"
)

// DefaultTrafficURL is the RapidAPI SEO metrics endpoint
const DefaultTrafficURL = "https://seo-api-dr-rd-rank-keywords-backlinks.p.rapidapi.com/url-metrics"

type trafficResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Domain struct {
			DomainRating flexNumber `json:"domainRating"`
			TrafficVol   flexNumber `json:"trafficVol"`
			Backlinks    flexNumber `json:"backlinks"`
			RefDomains   flexNumber `json:"refDomains"`
		} `json:"domain"`
		Page struct {
			URLRating flexNumber `json:"urlRating"`
		} `json:"page"`
	} `json:"data"`
}

// Traffic queries the RapidAPI SEO metrics service
type Traffic struct {
	apiKey  string
	baseURL string
	host    string
	client  *JSONClient
}

// NewTraffic creates a traffic adapter; an empty key makes every lookup a no-op default
func NewTraffic(apiKey string, opts Options) *Traffic {
	base := opts.baseURL(DefaultTrafficURL)
	host := ""
	if u, err := url.Parse(base); err == nil {
		host = u.Host
	}
	return &Traffic{
		apiKey:  apiKey,
		baseURL: base,
		host:    host,
		client:  NewJSONClient(opts),
	}
}

// Metrics returns authority, traffic and backlink metrics for a domain
func (t *Traffic) Metrics(ctx context.Context, domainName string) (domain.TrafficMetrics, error) {
	var result domain.TrafficMetrics

	if t.apiKey == "" {
		return result, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("url", "https://"+domainName)
	target := t.baseURL + "?" + q.Encode()

	header := http.Header{}
	header.Set("x-rapidapi-host", t.host)
	header.Set("x-rapidapi-key", t.apiKey)

	var resp trafficResponse
	if err := t.client.GetJSON(ctx, target, header, &resp); err != nil {
		return result, fmt.Errorf("traffic lookup %s: %w", domainName, err)
	}

	if !resp.Success || resp.Data == nil {
		return result, fmt.Errorf("traffic lookup %s: %w", domainName, errors.New("provider reported no data"))
	}

	d := resp.Data.Domain
	result.AuthorityScore = float64(d.DomainRating)
	result.PageAuthorityScore = float64(resp.Data.Page.URLRating)
	// Fractional traffic is kept as-is; values below 1 still count as traffic
	result.Traffic = float64(d.TrafficVol)
	result.Backlinks = int64(d.Backlinks)
	result.ReferringDomains = int64(d.RefDomains)
	result.HasValue = result.AuthorityScore > 0 || result.Traffic > 0

	return result, nil
}
