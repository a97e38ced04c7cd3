// Package lookup wraps the external data sources a candidate domain is checked against.
//
// Every adapter returns a fully-populated result together with an error. When the error
// is non-nil the result is the adapter's default (negative) value, so callers can log
// the failure and carry on with the value.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"golang.org/x/time/rate"
)

// Adapter names used in logs and metrics
const (
	NameTraffic      = "traffic"
	NameRegistration = "registration"
	NameArchive      = "archive"
	NameQuote        = "quote"
)

// DefaultTimeout bounds a single adapter call when no timeout is configured
const DefaultTimeout = 15 * time.Second

// ErrNotConfigured is returned when an adapter lacks the credentials it needs
var ErrNotConfigured = errors.New("adapter not configured")

// TrafficSource returns SEO/traffic metrics for a domain
type TrafficSource interface {
	Metrics(ctx context.Context, domainName string) (domain.TrafficMetrics, error)
}

// RegistrationSource returns the registration classification for a domain
type RegistrationSource interface {
	Status(ctx context.Context, domainName string) (domain.RegistrationStatus, error)
}

// ArchiveSource returns web-archive history for a domain
type ArchiveSource interface {
	History(ctx context.Context, domainName string) (domain.ArchiveHistory, error)
}

// QuoteSource returns a registrar purchase quote for a domain
type QuoteSource interface {
	Quote(ctx context.Context, domainName string) (domain.RegistrarQuote, error)
}

// Options configures an adapter's network behaviour
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	HTTPClient    *http.Client
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) baseURL(def string) string {
	if o.BaseURL == "" {
		return def
	}
	return o.BaseURL
}

func (o Options) limiter() *rate.Limiter {
	if o.RatePerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(o.RatePerSecond), 1)
}

// JSONClient issues bounded, optionally rate-limited GET requests that decode JSON
type JSONClient struct {
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewJSONClient creates a client from adapter options
func NewJSONClient(opts Options) *JSONClient {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.timeout()}
	}
	return &JSONClient{
		http:    client,
		limiter: opts.limiter(),
		timeout: opts.timeout(),
	}
}

// GetJSON fetches target and decodes a 200 response body into out
func (c *JSONClient) GetJSON(ctx context.Context, target string, header http.Header, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// flexNumber decodes a JSON number, a numeric string, or null
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(v)
	return nil
}
