package candidates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/alvmarrod/domain-finder/internal/lookup"
	"github.com/sirupsen/logrus"
)

// MaxBulkNameLength is the longest enumerated name kept as a candidate
const MaxBulkNameLength = 50

// DefaultBulkURL is the C99 subdomain finder endpoint
const DefaultBulkURL = "https://api.c99.nl/subdomainfinder"

var (
	// ErrNoAPIKey is returned when the enumeration provider has no key configured
	ErrNoAPIKey = errors.New("bulk provider api key not configured")
	// ErrProvider is returned when the provider answers with a failure
	ErrProvider = errors.New("bulk provider error")
)

// Provider enumerates names under a scope token (for example a parent domain)
type Provider interface {
	Enumerate(ctx context.Context, scope string) ([]json.RawMessage, error)
}

// FetchBulk enumerates scope with the provider and normalizes the answer
func FetchBulk(ctx context.Context, p Provider, scope string) ([]string, error) {
	items, err := p.Enumerate(ctx, scope)
	if err != nil {
		return nil, err
	}
	names := Normalize(items)
	logrus.Infof("Bulk fetch for %s: %d raw items, %d valid candidates", scope, len(items), len(names))
	return names, nil
}

// Normalize converts provider items to candidate names. Items may be strings,
// objects with a "domain" or "subdomain" key, or arrays whose first element is
// the name; URLs are reduced to their host. Output is lower-cased, deduplicated in first-seen order and limited
// to names of at most MaxBulkNameLength characters that contain a dot.
func Normalize(items []json.RawMessage) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))

	for _, item := range items {
		name, ok := itemName(item)
		if !ok {
			continue
		}
		name = Hostname(name)
		if name == "" || len(name) > MaxBulkNameLength || !strings.Contains(name, ".") {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func itemName(item json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 {
		return "", false
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", false
		}
		for _, key := range []string{"domain", "subdomain"} {
			if raw, ok := obj[key]; ok {
				var s string
				if err := json.Unmarshal(raw, &s); err != nil {
					return "", false
				}
				return s, true
			}
		}
		return "", false
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil || len(arr) == 0 {
			return "", false
		}
		return scalarString(arr[0])
	}
	return "", false
}

// scalarString renders the first element of an array item as text
func scalarString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return "", false
	}
	switch v.(type) {
	case map[string]any, []any:
		return "", false
	}
	return fmt.Sprint(v), true
}

// Clean reduces a caller-supplied candidate list to deduplicated host names
func Clean(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = Hostname(n); n != "" {
			out = append(out, n)
		}
	}
	return dedupe(out)
}

type c99Response struct {
	Success    json.RawMessage   `json:"success"`
	Error      string            `json:"error"`
	Subdomains []json.RawMessage `json:"subdomains"`
	Result     json.RawMessage   `json:"result"`
}

func (r c99Response) ok() bool {
	s := string(bytes.TrimSpace(r.Success))
	return s == "true" || s == "1"
}

func (r c99Response) items() []json.RawMessage {
	if r.Subdomains != nil {
		return r.Subdomains
	}
	result := bytes.TrimSpace(r.Result)
	if len(result) == 0 {
		return nil
	}
	switch result[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(result, &list); err == nil {
			return list
		}
	case '{':
		var nested struct {
			Subdomains []json.RawMessage `json:"subdomains"`
		}
		if err := json.Unmarshal(result, &nested); err == nil {
			return nested.Subdomains
		}
	}
	return nil
}

// C99Provider enumerates subdomains through the C99 subdomain finder API
type C99Provider struct {
	apiKey  string
	baseURL string
	client  *lookup.JSONClient
}

// NewC99Provider creates a provider; opts.Timeout bounds each enumeration
func NewC99Provider(apiKey string, opts lookup.Options) *C99Provider {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBulkURL
	}
	return &C99Provider{
		apiKey:  apiKey,
		baseURL: base,
		client:  lookup.NewJSONClient(opts),
	}
}

// Enumerate implements Provider
func (p *C99Provider) Enumerate(ctx context.Context, scope string) ([]json.RawMessage, error) {
	if p.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("domain", scope)
	q.Set("json", "true")

	var resp c99Response
	if err := p.client.GetJSON(ctx, p.baseURL+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if !resp.ok() {
		msg := resp.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("%w: %s", ErrProvider, msg)
	}

	return resp.items(), nil
}
