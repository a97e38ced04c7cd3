package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Many registries answer a lookup for an unregistered name with an error rather
// than an empty record. Errors containing one of these phrases mean "available".
var notFoundPhrases = []string{"no match", "not found", "no data"}

var creationLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
}

// WhoisRecord is the parsed subset of a WHOIS response used for classification
type WhoisRecord struct {
	Registered bool
	Registrar  string
	Status     []string
	Created    *time.Time
	CreatedRaw string
}

// Resolver fetches and parses WHOIS data
type Resolver interface {
	Resolve(ctx context.Context, domainName string) (WhoisRecord, error)
}

// WhoisResolver queries WHOIS servers over port 43
type WhoisResolver struct {
	client  *whois.Client
	limiter *rate.Limiter
}

// NewWhoisResolver creates a resolver bounded by the adapter timeout
func NewWhoisResolver(opts Options) *WhoisResolver {
	return &WhoisResolver{
		client:  whois.NewClient().SetTimeout(opts.timeout()),
		limiter: opts.limiter(),
	}
}

// Resolve queries the registrable part of the domain and parses the response
func (w *WhoisResolver) Resolve(ctx context.Context, domainName string) (WhoisRecord, error) {
	registrable, err := publicsuffix.EffectiveTLDPlusOne(domainName)
	if err != nil {
		registrable = domainName
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return WhoisRecord{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	type answer struct {
		raw string
		err error
	}
	done := make(chan answer, 1)
	go func() {
		raw, err := w.client.Whois(registrable)
		done <- answer{raw: raw, err: err}
	}()

	var raw string
	select {
	case <-ctx.Done():
		return WhoisRecord{}, ctx.Err()
	case a := <-done:
		if a.err != nil {
			return WhoisRecord{}, a.err
		}
		raw = a.raw
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		return WhoisRecord{}, err
	}

	if info.Domain == nil || info.Domain.Domain == "" {
		return WhoisRecord{Registered: false}, nil
	}

	rec := WhoisRecord{
		Registered: true,
		Status:     info.Domain.Status,
		CreatedRaw: info.Domain.CreatedDate,
	}
	if info.Registrar != nil {
		rec.Registrar = info.Registrar.Name
	}
	if t, ok := ParseCreationDate(info.Domain.CreatedDate); ok {
		rec.Created = &t
	}
	return rec, nil
}

// ParseCreationDate tries the date layouts registries commonly use
func ParseCreationDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range creationLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Registration classifies domains from WHOIS data
type Registration struct {
	resolver Resolver
	timeout  time.Duration
	now      func() time.Time
}

// NewRegistration creates a registration adapter around a resolver
func NewRegistration(resolver Resolver, opts Options) *Registration {
	return &Registration{
		resolver: resolver,
		timeout:  opts.timeout(),
		now:      time.Now,
	}
}

// Status returns the five-way classification of a domain
func (r *Registration) Status(ctx context.Context, domainName string) (domain.RegistrationStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec, err := r.resolver.Resolve(ctx, domainName)
	if err != nil {
		if IsNotFound(err) {
			return domain.NewRegistrationStatus(domainName, domain.Available), nil
		}
		return domain.NewRegistrationStatus(domainName, domain.Unknown),
			fmt.Errorf("registration lookup %s: %w", domainName, err)
	}

	return Classify(domainName, rec, r.now()), nil
}

// IsNotFound reports whether a lookup error carries a not-found phrase
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range notFoundPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// Classify maps a WHOIS record to a registration status; first match wins
func Classify(domainName string, rec WhoisRecord, now time.Time) domain.RegistrationStatus {
	if !rec.Registered {
		return domain.NewRegistrationStatus(domainName, domain.Available)
	}

	lowered := make([]string, 0, len(rec.Status))
	for _, s := range rec.Status {
		lowered = append(lowered, strings.ToLower(s))
	}
	statuses := strings.Join(lowered, " ")

	class := domain.Registered
	switch {
	case strings.Contains(statuses, "pendingdelete") || strings.Contains(statuses, "pending delete"):
		class = domain.PendingDelete
	case strings.Contains(statuses, "redemption"):
		class = domain.Redemption
	case strings.Contains(statuses, "auction"):
		class = domain.Auction
	}

	status := domain.NewRegistrationStatus(domainName, class)
	status.Registrar = rec.Registrar
	switch {
	case rec.Created != nil:
		status.CreationDate = rec.Created.Format("2006-01-02")
		status.Age = domain.YearsSince(*rec.Created, now)
	case rec.CreatedRaw != "":
		status.CreationDate = rec.CreatedRaw
	}
	return status
}
