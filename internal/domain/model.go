package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Core models shared by the lookup adapters, the evaluator and the export stage.

// Classification is the registration-status category of a domain
type Classification string

const (
	Available     Classification = "available"
	PendingDelete Classification = "pending_delete"
	Redemption    Classification = "redemption"
	Auction       Classification = "auction"
	Registered    Classification = "registered"
	// Unknown is used when the registration lookup failed without a not-found signal
	Unknown Classification = "unknown"
)

// Action is the recommended next step for a classification
type Action string

const (
	ActionBuy       Action = "buy"
	ActionBackorder Action = "backorder"
	ActionAuction   Action = "auction"
	ActionContact   Action = "contact"
)

type classInfo struct {
	label    string
	badge    string
	note     string
	action   Action
	urlFmt   string
	price    string
	priority int
}

const (
	registrarURL = "https://www.namecheap.com/domains/registration/results/?domain=%s"
	backorderURL = "https://www.dropcatch.com/domain/%s"
	auctionURL   = "https://auctions.godaddy.com/trp/search?q=%s"
)

var classes = map[Classification]classInfo{
	Available: {
		label: "Available", badge: "Available", note: "Can be registered right now",
		action: ActionBuy, urlFmt: registrarURL, price: "$10-15/year", priority: 0,
	},
	PendingDelete: {
		label: "Pending Delete", badge: "Pending Delete", note: "Will be deleted within 5 days, backorder possible",
		action: ActionBackorder, urlFmt: backorderURL, price: "Backorder $69+", priority: 1,
	},
	Redemption: {
		label: "Redemption Period", badge: "Redemption", note: "Previous owner has 30 days to redeem, backorder possible",
		action: ActionBackorder, urlFmt: backorderURL, price: "Backorder $69+", priority: 1,
	},
	Auction: {
		label: "Auction", badge: "Auction", note: "Currently at auction, bidding is open",
		action: ActionAuction, urlFmt: auctionURL, price: "Auction - Varies", priority: 2,
	},
	Registered: {
		label: "Registered", badge: "Registered", note: "Already owned, contact the owner to buy",
		action: ActionContact, urlFmt: registrarURL, price: "Contact Owner", priority: 3,
	},
	Unknown: {
		label: "Unknown", badge: "Unknown", note: "Registration status could not be determined",
		action: ActionContact, urlFmt: registrarURL, price: "Contact Owner", priority: 3,
	},
}

// Classifications lists every classification in priority order
var Classifications = []Classification{Available, PendingDelete, Redemption, Auction, Registered, Unknown}

func (c Classification) info() classInfo {
	if ci, ok := classes[c]; ok {
		return ci
	}
	return classes[Unknown]
}

// Label returns the human status name
func (c Classification) Label() string { return c.info().label }

// Badge returns the short status badge shown next to a record
func (c Classification) Badge() string { return c.info().badge }

// Note returns the fixed human-readable note for the classification
func (c Classification) Note() string { return c.info().note }

// Action returns the recommended action
func (c Classification) Action() Action { return c.info().action }

// Priority returns the sort priority; lower sorts first
func (c Classification) Priority() int { return c.info().priority }

// PriceEstimate returns the fixed price-estimate string
func (c Classification) PriceEstimate() string { return c.info().price }

// ActionURL returns the deterministic action URL for a domain
func (c Classification) ActionURL(domainName string) string {
	return fmt.Sprintf(c.info().urlFmt, url.QueryEscape(domainName))
}

// IsAvailable reports whether the domain can be registered immediately
func (c Classification) IsAvailable() bool { return c == Available }

// Age is a number of years that may be not applicable
type Age struct {
	Years float64
	Valid bool
}

// AgeOf builds an applicable age
func AgeOf(years float64) Age { return Age{Years: years, Valid: true} }

// NoAge is the not-applicable sentinel
var NoAge = Age{}

// String renders the age, or N/A when not applicable
func (a Age) String() string {
	if !a.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(a.Years, 'f', -1, 64)
}

// MarshalJSON encodes a number, or the string "N/A"
func (a Age) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte(`"N/A"`), nil
	}
	return json.Marshal(a.Years)
}

// UnmarshalJSON accepts a number or "N/A"
func (a *Age) UnmarshalJSON(b []byte) error {
	var years float64
	if err := json.Unmarshal(b, &years); err != nil {
		*a = NoAge
		return nil
	}
	*a = AgeOf(years)
	return nil
}

// YearsSince computes (now - t) in days / 365.25, rounded to 1 decimal
func YearsSince(t, now time.Time) Age {
	days := int(now.Sub(t).Hours() / 24)
	years := float64(days) / 365.25
	return AgeOf(float64(int(years*10+0.5)) / 10)
}

// RegistrationStatus is the result of a registration (WHOIS) lookup
type RegistrationStatus struct {
	Domain         string         `json:"domain"`
	Classification Classification `json:"status_type"`
	Registrar      string         `json:"registrar"`
	CreationDate   string         `json:"creation_date"`
	Age            Age            `json:"age_years"`
	Note           string         `json:"status_note"`
	Action         Action         `json:"action_type"`
	ActionURL      string         `json:"action_url"`
}

// NewRegistrationStatus fills the classification-derived fields
func NewRegistrationStatus(domainName string, c Classification) RegistrationStatus {
	return RegistrationStatus{
		Domain:         domainName,
		Classification: c,
		Age:            NoAge,
		Note:           c.Note(),
		Action:         c.Action(),
		ActionURL:      c.ActionURL(domainName),
	}
}

// Available reports whether the status is immediately registrable
func (r RegistrationStatus) Available() bool { return r.Classification.IsAvailable() }

// TrafficMetrics is the result of an SEO metrics lookup
type TrafficMetrics struct {
	AuthorityScore     float64 `json:"domain_rating"`
	PageAuthorityScore float64 `json:"url_rating"`
	Traffic            float64 `json:"organic_traffic"`
	Backlinks          int64   `json:"backlinks"`
	ReferringDomains   int64   `json:"referring_domains"`
	HasValue           bool    `json:"has_seo_value"`
}

// Admitted reports whether the metrics carry at least one positive value signal
func (m TrafficMetrics) Admitted() bool {
	return m.Traffic > 0 || m.AuthorityScore > 0 || m.Backlinks > 0
}

// ArchiveHistory is the result of a web-archive lookup
type ArchiveHistory struct {
	SnapshotCount int    `json:"snapshot_count"`
	FirstArchive  string `json:"first_archive"`
	LastArchive   string `json:"last_archive"`
	AgeYears      int    `json:"archive_age_years"`
	HasHistory    bool   `json:"has_history"`
}

// RegistrarQuote is the result of a registrar search-page scrape
type RegistrarQuote struct {
	Purchasable bool   `json:"purchasable"`
	Price       string `json:"price"`
	URL         string `json:"url"`
	Premium     bool   `json:"is_premium"`
}

// EvaluationRecord is one accepted candidate in a ranked result set
type EvaluationRecord struct {
	Domain             string         `json:"domain"`
	AuthorityScore     float64        `json:"domain_rating"`
	PageAuthorityScore float64        `json:"url_rating"`
	Traffic            float64        `json:"organic_traffic"`
	Backlinks          int64          `json:"backlinks"`
	ReferringDomains   int64          `json:"referring_domains"`
	SnapshotCount      int            `json:"snapshot_count"`
	FirstArchive       string         `json:"first_archive"`
	Age                Age            `json:"age_years"`
	Available          bool           `json:"available"`
	Badge              string         `json:"whois_status"`
	Classification     Classification `json:"status_type"`
	StatusNote         string         `json:"status_note"`
	Action             Action         `json:"action_type"`
	Registrar          string         `json:"registrar,omitempty"`
	PriceEstimate      string         `json:"price"`
	PurchaseURL        string         `json:"purchase_url"`
	RegistrarPrice     string         `json:"registrar_price,omitempty"`
	Premium            bool           `json:"premium,omitempty"`
}

// HasTraffic reports whether the record has a positive traffic estimate
func (r EvaluationRecord) HasTraffic() bool { return r.Traffic > 0 }
