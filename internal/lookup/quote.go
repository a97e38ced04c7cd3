package lookup

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// DefaultRegistrarURL is the registrar search page scraped for quotes
const DefaultRegistrarURL = "https://www.namecheap.com/domains/registration/results/"

const quoteUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

var pricePattern = regexp.MustCompile(`\$(\d+\.\d+)`)

// RegistrarQuotes scrapes the registrar search page for price and premium markers
type RegistrarQuotes struct {
	baseURL   string
	collector *colly.Collector
	limiter   *rate.Limiter
}

// NewRegistrarQuotes creates a quote adapter
func NewRegistrarQuotes(opts Options) *RegistrarQuotes {
	c := colly.NewCollector(
		colly.UserAgent(quoteUserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(opts.timeout())

	return &RegistrarQuotes{
		baseURL:   opts.baseURL(DefaultRegistrarURL),
		collector: c,
		limiter:   opts.limiter(),
	}
}

// Quote fetches the registrar page for a domain and extracts purchase details
func (q *RegistrarQuotes) Quote(ctx context.Context, domainName string) (domain.RegistrarQuote, error) {
	target := q.baseURL + "?domain=" + url.QueryEscape(domainName)
	result := domain.RegistrarQuote{URL: target}

	if q.limiter != nil {
		if err := q.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("quote lookup %s: rate limiter: %w", domainName, err)
		}
	}

	// Each call gets its own clone so callbacks do not leak between workers
	c := q.collector.Clone()

	var page string
	c.OnResponse(func(r *colly.Response) {
		page = string(r.Body)
	})

	if err := c.Visit(target); err != nil {
		return result, fmt.Errorf("quote lookup %s: %w", domainName, err)
	}

	return parseQuote(result, page), nil
}

func parseQuote(result domain.RegistrarQuote, page string) domain.RegistrarQuote {
	content := strings.ToLower(page)

	if strings.Contains(content, "available") && strings.Contains(content, "add to cart") {
		result.Purchasable = true
		if m := pricePattern.FindStringSubmatch(page); m != nil {
			result.Price = "$" + m[1]
		}
	}

	if strings.Contains(content, "premium") {
		result.Premium = true
	}
	return result
}
