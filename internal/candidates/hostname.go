package candidates

import (
	"net/url"
	"strings"
)

// Hostname reduces a candidate to a lower-cased host name. URLs and
// protocol-relative URLs keep only their host; bare names are trimmed.
func Hostname(raw string) string {
	raw = strings.TrimSpace(raw)

	// Handle protocol-relative URLs
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	if !strings.Contains(raw, "://") {
		return strings.ToLower(raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
