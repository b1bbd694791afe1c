// Package county defines the capability surface shared by the county portal
// scrapers. Callers program against Provider and the record/ledger types
// here; the portal-specific field names and table heuristics stay inside the
// per-county packages.
package county

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseError means an expected structural element was absent from a page.
// It signals either a portal markup change or a genuinely malformed
// response, so it is surfaced rather than swallowed.
type ParseError struct {
	URL     string
	Element string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not find %s on %s", e.Element, e.URL)
}

// PropertyRecord is one row of a results grid: the column labels in document
// order, the label to cell-text mapping, and the absolute detail page url
// extracted from the row's click handler (empty when the row has none).
// Records are not mutated after parsing.
type PropertyRecord struct {
	Columns   []string
	Fields    map[string]string
	DetailURL string
}

// Get returns the cell under a column label, or "" if the column is absent.
func (r PropertyRecord) Get(label string) string {
	return r.Fields[label]
}

// TaxPeriod is one tax year's entry on a ledger, or the ledger's aggregate
// total (same shape, Year starts with "Total").
type TaxPeriod struct {
	Year              string
	Label             string
	AmountPaid        decimal.Decimal
	BalanceDue        decimal.Decimal
	AmountPaidDisplay string
	BalanceDueDisplay string
	Raw               map[string]string
}

// TaxLedger is the multi-year payment/balance record for one property.
// Total is always present: when the source table has no total row a
// zero-valued one is synthesized.
type TaxLedger struct {
	Title       string
	StubNumber  string
	Periods     []TaxPeriod
	Total       TaxPeriod
	TaxYearCode string
}

// AddressQuery carries the caller-facing address search fields. How they map
// onto portal form fields is the adapter's business.
type AddressQuery struct {
	Number   string
	Street   string
	Suffix   string
	Unit     string
	PageSize int
}

// Provider is implemented by each county adapter. The two implementations
// are structurally identical but differ in reliability: the Fairfax scraper
// is anchored on stable element ids while the Travis one is heuristic and
// may return partial or empty records even when a match exists.
type Provider interface {
	Name() string
	SearchAddress(ctx context.Context, query AddressQuery) ([]PropertyRecord, error)
	SearchParcel(ctx context.Context, id string) ([]PropertyRecord, error)
	FetchLedger(ctx context.Context, detailURL string) (TaxLedger, error)
}
