// Package travis scrapes the Travis County tax office portal. Unlike
// Fairfax, this portal exposes no stable structural markers, so result and
// detail parsing is regex/heuristic driven and may return partial or empty
// records even when a match exists. Callers who need the stronger guarantee
// should prefer the fairfax adapter where it applies.
package travis

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"countytax-backend/lib/postback"
	"countytax-backend/lib/scrapers/county"
	"countytax-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultSearchUrl = "https://travis.go2gov.net/cart/responsive/quickSearch.do"
	defaultBaseUrl   = "https://travis.go2gov.net/cart/responsive/"
	defaultPageSize  = 10
	defaultTimeout   = time.Second * 30
)

type Options struct {
	SearchUrl string
	BaseUrl   string
	Timeout   time.Duration
}

type Client struct {
	opts Options
	base *url.URL
	http *resty.Client
}

var _ county.Provider = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	if opts.SearchUrl == "" {
		opts.SearchUrl = defaultSearchUrl
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = defaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	base, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	// the portal sits behind bot protection that rejects default Go clients
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	telemetry.InstrumentResty(client, "countytax.lib.scrapers.travis.http")

	return &Client{opts: opts, base: base, http: client}, nil
}

func (c *Client) Name() string {
	return "travis"
}

// SearchParcel searches by property id (e.g. "01507011040000"), cleaned of
// spaces and dashes.
func (c *Client) SearchParcel(ctx context.Context, id string) ([]county.PropertyRecord, error) {
	ctx, span := tracer.Start(ctx, "client:SearchParcel")
	defer span.End()

	cleaned := strings.TrimSpace(id)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")

	return c.quickSearch(ctx, cleaned, defaultPageSize)
}

// SearchAddress feeds the address through the portal's single free-text
// criteria field. The portal's own matching is fuzzy, so results carry the
// same weak guarantee as everything else here.
func (c *Client) SearchAddress(ctx context.Context, query county.AddressQuery) ([]county.PropertyRecord, error) {
	ctx, span := tracer.Start(ctx, "client:SearchAddress")
	defer span.End()

	var parts []string
	for _, part := range []string{query.Number, query.Street, query.Suffix, query.Unit} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return c.quickSearch(ctx, strings.Join(parts, " "), pageSize)
}

func (c *Client) quickSearch(ctx context.Context, criteria string, pageSize int) ([]county.PropertyRecord, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"formViewMode":             "responsive",
			"criteria.searchStatus":    "1",
			"pager.pageSize":           strconv.Itoa(pageSize),
			"pager.pageNumber":         "1",
			"criteria.heuristicSearch": criteria,
		}).
		SetHeader("Referer", c.opts.SearchUrl).
		Post(c.opts.SearchUrl)
	if err != nil {
		return nil, &postback.TransportError{URL: c.opts.SearchUrl, Err: err}
	}
	if res.IsError() {
		return nil, &postback.TransportError{URL: c.opts.SearchUrl, Status: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, err
	}
	return parseResults(doc, c.base), nil
}

// FetchLedger loads the detail page and derives a ledger from whatever
// label/value structure the page happens to expose.
func (c *Client) FetchLedger(ctx context.Context, detailURL string) (county.TaxLedger, error) {
	ctx, span := tracer.Start(ctx, "client:FetchLedger")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(detailURL)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return county.TaxLedger{}, &postback.TransportError{URL: detailURL, Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "detail page returned error status")
		return county.TaxLedger{}, &postback.TransportError{URL: detailURL, Status: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return county.TaxLedger{}, err
	}

	details := harvestDetails(doc)
	if len(details) == 0 {
		return county.TaxLedger{}, &county.ParseError{URL: detailURL, Element: "property detail sections"}
	}
	return deriveLedger(details), nil
}
