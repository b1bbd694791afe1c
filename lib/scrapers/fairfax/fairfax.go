// Package fairfax scrapes the Fairfax County iCare portal, an ASP.NET
// postback application. The results grid and tax summary carry stable
// element ids, which makes this the high-confidence adapter.
package fairfax

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"countytax-backend/lib/postback"
	"countytax-backend/lib/scrapers/county"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultAddressSearchUrl = "https://icare.fairfaxcounty.gov/ffxcare/search/CommonSearch.aspx?mode=ADDRESS"
	defaultParcelSearchUrl  = "https://icare.fairfaxcounty.gov/ffxcare/search/CommonSearch.aspx?mode=PARID"
	defaultPageSize         = 15
	defaultTimeout          = time.Second * 30
)

type Options struct {
	// overridable so tests can point the client at a fixture portal
	AddressSearchUrl string
	ParcelSearchUrl  string
	Timeout          time.Duration
}

type Client struct {
	opts Options
}

var _ county.Provider = (*Client)(nil)

func NewClient(opts Options) *Client {
	if opts.AddressSearchUrl == "" {
		opts.AddressSearchUrl = defaultAddressSearchUrl
	}
	if opts.ParcelSearchUrl == "" {
		opts.ParcelSearchUrl = defaultParcelSearchUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{opts: opts}
}

func (c *Client) Name() string {
	return "fairfax"
}

func (c *Client) SearchAddress(ctx context.Context, query county.AddressQuery) ([]county.PropertyRecord, error) {
	ctx, span := tracer.Start(ctx, "client:SearchAddress")
	defer span.End()

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return c.search(ctx, c.opts.AddressSearchUrl, map[string]string{
		"inpNumber":   query.Number,
		"inpStreet":   strings.ToUpper(query.Street),
		"inpSuffix1":  strings.ToUpper(query.Suffix),
		"inpUnit":     query.Unit,
		"hdAction":    "Search",
		"PageNum":     "1",
		"PageSize":    strconv.Itoa(pageSize),
		"selPageSize": strconv.Itoa(pageSize),
	})
}

// SearchParcel searches by map number. When the normalized grouping comes
// back empty it retries once with the alternate grouping the portal renders
// in its own result cells; this is best effort and never repeats.
func (c *Client) SearchParcel(ctx context.Context, id string) ([]county.PropertyRecord, error) {
	ctx, span := tracer.Start(ctx, "client:SearchParcel")
	defer span.End()

	candidates := NormalizeParcel(id)

	var records []county.PropertyRecord
	for i, candidate := range candidates {
		var err error
		records, err = c.search(ctx, c.opts.ParcelSearchUrl, map[string]string{
			"inpParid":    candidate,
			"hdAction":    "Search",
			"PageNum":     "1",
			"PageSize":    strconv.Itoa(defaultPageSize),
			"selPageSize": strconv.Itoa(defaultPageSize),
		})
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			return records, nil
		}
		if i+1 < len(candidates) {
			slog.DebugContext(
				ctx, "empty parcel result, retrying with alternate grouping",
				"tried", candidate,
				"next", candidates[i+1],
			)
		}
	}
	return records, nil
}

// search runs one full postback interaction on a fresh session: harvest the
// form page, then submit it back with the search fields filled in.
func (c *Client) search(ctx context.Context, link string, overrides map[string]string) ([]county.PropertyRecord, error) {
	session, err := postback.NewSession(c.opts.Timeout)
	if err != nil {
		return nil, err
	}

	state, err := session.FetchState(ctx, link)
	if err != nil {
		return nil, err
	}

	body, err := session.Submit(ctx, link, state, overrides)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(link)
	if err != nil {
		return nil, err
	}

	return parseResultsGrid(doc, base), nil
}

// FetchLedger loads a property detail page, follows (or derives) its tax
// detail link on the same session, and extracts the ledger.
func (c *Client) FetchLedger(ctx context.Context, detailURL string) (county.TaxLedger, error) {
	ctx, span := tracer.Start(ctx, "client:FetchLedger")
	defer span.End()

	session, err := postback.NewSession(c.opts.Timeout)
	if err != nil {
		return county.TaxLedger{}, err
	}

	detailBody, err := session.Fetch(ctx, detailURL)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return county.TaxLedger{}, err
	}
	detailDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(detailBody))
	if err != nil {
		return county.TaxLedger{}, err
	}

	ledgerURL := locateLedgerUrl(detailDoc, detailURL)

	ledgerBody, err := session.Fetch(ctx, ledgerURL)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch ledger page")
		return county.TaxLedger{}, err
	}
	ledgerDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(ledgerBody))
	if err != nil {
		return county.TaxLedger{}, err
	}

	return extractLedger(ledgerDoc, ledgerURL)
}
