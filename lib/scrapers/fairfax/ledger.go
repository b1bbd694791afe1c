package fairfax

import (
	"net/url"
	"strings"

	"countytax-backend/lib/currency"
	"countytax-backend/lib/htmlutil"
	"countytax-backend/lib/scrapers/county"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// locateLedgerUrl finds the tax-details link in the detail page's side menu.
// Older datalet pages omit the menu, in which case the url is derived by
// switching the detail page into tax_details mode.
func locateLedgerUrl(doc *goquery.Document, detailURL string) string {
	href := doc.Find("div#sidemenu a[href*='mode=tax_details']").First().AttrOr("href", "")
	if href != "" {
		base, err := url.Parse(detailURL)
		if err == nil {
			ref, err := url.Parse(href)
			if err == nil {
				return base.ResolveReference(ref).String()
			}
		}
	}

	separator := "?"
	if strings.Contains(detailURL, "?") {
		separator = "&"
	}
	return detailURL + separator + "mode=tax_details"
}

// extractLedger parses the tax detail page into a structured ledger. The
// summary section and its data table are structural preconditions; rows that
// don't line up with the header are portal rendering noise and are skipped.
func extractLedger(doc *goquery.Document, pageURL string) (county.TaxLedger, error) {
	ledger := county.TaxLedger{}

	stub := doc.Find("div[name='TAX_STUB']").First()
	if stub.Length() > 0 {
		ledger.StubNumber = htmlutil.Text(
			stub.Find("table:nth-of-type(2) td.DataletData").First(),
		)
	}

	summary := doc.Find("div[name='TAX_SUM']").First()
	if summary.Length() == 0 {
		return ledger, &county.ParseError{URL: pageURL, Element: "tax summary section"}
	}

	ledger.Title = htmlutil.Text(summary.Find("table").First())
	if ledger.Title == "" {
		ledger.Title = "Tax Summary"
	}

	dataTable := summary.Find("table[id^='Summary']").First()
	if dataTable.Length() == 0 {
		return ledger, &county.ParseError{URL: pageURL, Element: "summary data table"}
	}

	var headers []string
	rows := dataTable.Find("tr")
	rows.First().Find("td").Each(func(_ int, td *goquery.Selection) {
		headers = append(headers, htmlutil.Text(td))
	})

	var total *county.TaxPeriod
	var parseErr error
	rows.Each(func(i int, tr *goquery.Selection) {
		if i == 0 || parseErr != nil {
			return
		}
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, htmlutil.Text(td))
		})
		if len(cells) != len(headers) {
			return
		}

		raw := map[string]string{}
		for j, header := range headers {
			raw[header] = cells[j]
		}

		period, err := buildPeriod(raw)
		if err != nil {
			parseErr = err
			return
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(period.Year)), "total") {
			total = &period
			return
		}
		ledger.Periods = append(ledger.Periods, period)
	})
	if parseErr != nil {
		return ledger, parseErr
	}

	if total == nil {
		// the portal omits the total row on zero-liability parcels
		total = &county.TaxPeriod{
			Year:       "Total",
			BalanceDue: decimal.Zero,
			AmountPaid: decimal.Zero,
			Raw:        map[string]string{},
		}
	}
	total.AmountPaidDisplay = currency.Format(total.AmountPaid)
	total.BalanceDueDisplay = currency.Format(total.BalanceDue)
	ledger.Total = *total

	ledger.TaxYearCode = doc.Find("#hdTaxYear").AttrOr("value", "")

	return ledger, nil
}

func buildPeriod(raw map[string]string) (county.TaxPeriod, error) {
	amountPaid, err := currency.Parse(rawAmount(raw, "Amount Paid"))
	if err != nil {
		return county.TaxPeriod{}, err
	}
	balanceDue, err := currency.Parse(rawAmount(raw, "Balance Due"))
	if err != nil {
		return county.TaxPeriod{}, err
	}

	return county.TaxPeriod{
		Year:              raw["Year"],
		Label:             raw[""],
		AmountPaid:        amountPaid,
		BalanceDue:        balanceDue,
		AmountPaidDisplay: currency.Format(amountPaid),
		BalanceDueDisplay: currency.Format(balanceDue),
		Raw:               raw,
	}, nil
}

func rawAmount(raw map[string]string, key string) string {
	if value, ok := raw[key]; ok {
		return value
	}
	return "$0"
}
