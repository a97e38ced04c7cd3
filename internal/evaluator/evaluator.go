package evaluator

import (
	"context"
	"time"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/lookup"
	"github.com/alvmarrod/domain-finder/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Evaluator turns one candidate domain into an evaluation record, or nothing
type Evaluator struct {
	traffic      lookup.TrafficSource
	registration lookup.RegistrationSource
	archive      lookup.ArchiveSource
	quotes       lookup.QuoteSource
}

// Option configures optional lookups on an Evaluator
type Option func(*Evaluator)

// WithArchive enables the archive-history lookup for admitted candidates
func WithArchive(a lookup.ArchiveSource) Option {
	return func(e *Evaluator) { e.archive = a }
}

// WithQuotes enables registrar quotes for admitted, available candidates
func WithQuotes(q lookup.QuoteSource) Option {
	return func(e *Evaluator) { e.quotes = q }
}

// NewEvaluator creates an evaluator over the mandatory traffic and registration sources
func NewEvaluator(traffic lookup.TrafficSource, registration lookup.RegistrationSource, opts ...Option) *Evaluator {
	e := &Evaluator{traffic: traffic, registration: registration}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate checks a candidate. Traffic metrics are fetched first; candidates with
// no traffic, authority or backlinks are dropped before any other lookup runs.
// Evaluate never fails: lookup errors degrade to defaults and panics drop the candidate.
func (e *Evaluator) Evaluate(ctx context.Context, domainName string, tracker *metrics.Tracker) (rec domain.EvaluationRecord, ok bool) {
	if tracker == nil {
		tracker = metrics.NewTracker()
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Evaluation of %q panicked: %v", domainName, r)
			tracker.IncrementPanics()
			rec, ok = domain.EvaluationRecord{}, false
		}
	}()

	if domainName == "" {
		return domain.EvaluationRecord{}, false
	}

	start := time.Now()
	seo, err := e.traffic.Metrics(ctx, domainName)
	observe(tracker, lookup.NameTraffic, domainName, start, err)

	if !seo.Admitted() {
		return domain.EvaluationRecord{}, false
	}

	start = time.Now()
	status, err := e.registration.Status(ctx, domainName)
	observe(tracker, lookup.NameRegistration, domainName, start, err)

	rec = domain.EvaluationRecord{
		Domain:             domainName,
		AuthorityScore:     seo.AuthorityScore,
		PageAuthorityScore: seo.PageAuthorityScore,
		Traffic:            seo.Traffic,
		Backlinks:          seo.Backlinks,
		ReferringDomains:   seo.ReferringDomains,
		FirstArchive:       "N/A",
		Age:                status.Age,
		Available:          status.Available(),
		Badge:              status.Classification.Badge(),
		Classification:     status.Classification,
		StatusNote:         status.Note,
		Action:             status.Action,
		Registrar:          status.Registrar,
		PriceEstimate:      status.Classification.PriceEstimate(),
		PurchaseURL:        status.ActionURL,
	}

	if e.archive != nil {
		start = time.Now()
		history, err := e.archive.History(ctx, domainName)
		observe(tracker, lookup.NameArchive, domainName, start, err)
		if history.HasHistory {
			rec.SnapshotCount = history.SnapshotCount
			rec.FirstArchive = history.FirstArchive
		}
	}

	if e.quotes != nil && status.Available() {
		start = time.Now()
		quote, err := e.quotes.Quote(ctx, domainName)
		observe(tracker, lookup.NameQuote, domainName, start, err)
		rec.RegistrarPrice = quote.Price
		rec.Premium = quote.Premium
	}

	return rec, true
}

func observe(tracker *metrics.Tracker, adapter, domainName string, start time.Time, err error) {
	if err != nil {
		logrus.Debugf("%s lookup failed for %s: %v", adapter, domainName, err)
	}
	tracker.RecordLookup(adapter, time.Since(start), err != nil)
}
