package candidates

import (
	"strings"
)

const (
	// MaxVariationsPerKeyword caps the names generated from a single keyword
	MaxVariationsPerKeyword = 15
	// MaxVariations caps the distinct names across all keywords
	MaxVariations = 100
)

var (
	suffixes = []string{"hub", "app", "pro", "web", "net", "zone", "spot", "land", "world"}
	prefixes = []string{"my", "get", "the", "top", "best", "new", "hot"}
)

// DefaultTLDs are the suffixes used when a keyword request names none
var DefaultTLDs = []string{"sa.com", "ru.com", "in.com", "za.com", "br.com"}

// Variations returns the keyword followed by its suffixed and prefixed forms
func Variations(keyword string, max int) []string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}

	out := []string{keyword}
	for _, s := range suffixes {
		out = append(out, keyword+s)
	}
	for _, p := range prefixes {
		out = append(out, p+keyword)
	}

	out = dedupe(out)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// Expand crosses keyword variations with the TLD set, capping the result at maxCheck
// candidates when maxCheck > 0
func Expand(keywords, tlds []string, maxCheck int) []string {
	var names []string
	for _, kw := range keywords {
		names = append(names, Variations(kw, MaxVariationsPerKeyword)...)
	}
	names = dedupe(names)
	if len(names) > MaxVariations {
		names = names[:MaxVariations]
	}

	var cleanTLDs []string
	for _, tld := range tlds {
		tld = strings.Trim(strings.ToLower(strings.TrimSpace(tld)), ".")
		if tld != "" {
			cleanTLDs = append(cleanTLDs, tld)
		}
	}
	cleanTLDs = dedupe(cleanTLDs)

	var domains []string
	for _, name := range names {
		for _, tld := range cleanTLDs {
			domains = append(domains, name+"."+tld)
		}
	}

	if maxCheck > 0 && len(domains) > maxCheck {
		domains = domains[:maxCheck]
	}
	return domains
}

// SplitKeywords splits a comma-separated keyword string, dropping blanks
func SplitKeywords(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// dedupe keeps the first occurrence of each string
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
