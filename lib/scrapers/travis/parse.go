package travis

import (
	"net/url"
	"regexp"
	"strings"

	"countytax-backend/lib/currency"
	"countytax-backend/lib/htmlutil"
	"countytax-backend/lib/scrapers/county"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// candidate result containers, tried in order. the portal has shuffled its
// class names between releases so none of these are load-bearing alone.
var containerSelectors = []string{
	"div.property-result",
	"tr.result-row",
	"div.search-result",
	"div[class*='result']",
}

var (
	propertyIdPattern = regexp.MustCompile(`\b\d{14}\b`)
	addressPattern    = regexp.MustCompile(`(?i)\b\d+ .*(?:st|rd|ave|dr|ln|way|ct)\b`)
	yearPattern       = regexp.MustCompile(`^(19|20)\d{2}\b`)
)

// parseResults pulls property records out of a quickSearch response. Every
// extraction here is best effort: a container that yields nothing is
// dropped, and no container at all means no results.
func parseResults(doc *goquery.Document, base *url.URL) []county.PropertyRecord {
	if strings.Contains(strings.ToLower(doc.Text()), "no properties found") {
		return nil
	}

	containers := findContainers(doc)

	var records []county.PropertyRecord
	for _, container := range containers {
		record := extractRecord(container, base)
		if len(record.Fields) > 0 {
			records = append(records, record)
		}
	}
	if len(records) > 0 {
		return records
	}

	// last resort: an unstructured property info blob
	section := doc.Find("div#propertyInfo").First()
	if section.Length() == 0 {
		section = doc.Find("div.property-info").First()
	}
	if section.Length() == 0 {
		return nil
	}
	record := recordFromLines(textLines(section))
	if len(record.Fields) == 0 {
		return nil
	}
	return []county.PropertyRecord{record}
}

func findContainers(doc *goquery.Document) []*goquery.Selection {
	for _, selector := range containerSelectors {
		matched := doc.Find(selector)
		if matched.Length() > 0 {
			var containers []*goquery.Selection
			matched.Each(func(_ int, sel *goquery.Selection) {
				containers = append(containers, sel)
			})
			return containers
		}
	}

	table := doc.Find("table[class*='result']").First()
	if table.Length() == 0 {
		table = doc.Find("table[id*='result']").First()
	}
	if table.Length() == 0 {
		return nil
	}

	var containers []*goquery.Selection
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			// header row
			return
		}
		containers = append(containers, tr)
	})
	return containers
}

func extractRecord(container *goquery.Selection, base *url.URL) county.PropertyRecord {
	record := recordFromLines(textLines(container))

	href := container.Find("a[href]").First().AttrOr("href", "")
	if href != "" {
		ref, err := url.Parse(href)
		if err == nil {
			record.DetailURL = base.ResolveReference(ref).String()
		}
	}
	return record
}

// recordFromLines classifies loose text lines into the few fields the portal
// reliably renders: a 14-digit property id, an "Owner:" line, and a line
// that looks like a street address.
func recordFromLines(lines []string) county.PropertyRecord {
	record := county.PropertyRecord{Fields: map[string]string{}}

	set := func(label, value string) {
		if value == "" {
			return
		}
		if _, exists := record.Fields[label]; exists {
			return
		}
		record.Columns = append(record.Columns, label)
		record.Fields[label] = value
	}

	for _, line := range lines {
		if id := propertyIdPattern.FindString(line); id != "" {
			set("Property ID", id)
			continue
		}
		if strings.Contains(strings.ToLower(line), "owner") {
			_, value, found := strings.Cut(line, ":")
			if !found {
				value = line
			}
			set("Owner", strings.TrimSpace(value))
			continue
		}
		if addressPattern.MatchString(line) {
			set("Address", line)
		}
	}
	return record
}

func textLines(sel *goquery.Selection) []string {
	var lines []string
	for _, raw := range strings.Split(sel.Text(), "\n") {
		line := htmlutil.CleanText(raw)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

type labelValue struct {
	Label string
	Value string
}

var detailSectionPattern = regexp.MustCompile(`(?i)detail|property|info`)

// harvestDetails walks anything on the detail page that looks like a
// label/value layout and collects the pairs in document order.
func harvestDetails(doc *goquery.Document) []labelValue {
	var pairs []labelValue
	seen := map[string]bool{}

	doc.Find("div, section, table").Each(func(_ int, section *goquery.Selection) {
		if !detailSectionPattern.MatchString(section.AttrOr("class", "")) {
			return
		}
		section.Find("tr, dl, div").Each(func(_ int, row *goquery.Selection) {
			label := htmlutil.Text(row.Find("th, dt, label").First())
			value := htmlutil.Text(row.Find("td, dd").First())
			if label == "" || value == "" {
				spans := row.ChildrenFiltered("span")
				if spans.Length() >= 2 {
					label = htmlutil.Text(spans.First())
					value = htmlutil.Text(spans.Eq(1))
				}
			}

			label = strings.TrimSuffix(label, ":")
			if label == "" || value == "" || seen[label] {
				return
			}
			seen[label] = true
			pairs = append(pairs, labelValue{Label: label, Value: value})
		})
	})
	return pairs
}

// deriveLedger assembles a ledger out of harvested detail pairs: year
// labeled currency values become periods (balance only, the portal doesn't
// break out payments), a "total" labeled value becomes the total, and a
// zero total is synthesized when the page shows none.
func deriveLedger(details []labelValue) county.TaxLedger {
	ledger := county.TaxLedger{Title: "Tax Summary"}

	var total *county.TaxPeriod
	for _, pair := range details {
		amount, err := currency.Parse(pair.Value)
		if err != nil {
			continue
		}

		if yearPattern.MatchString(pair.Label) {
			ledger.Periods = append(ledger.Periods, county.TaxPeriod{
				Year:              pair.Label,
				BalanceDue:        amount,
				AmountPaid:        decimal.Zero,
				BalanceDueDisplay: currency.Format(amount),
				AmountPaidDisplay: currency.Format(decimal.Zero),
				Raw:               map[string]string{pair.Label: pair.Value},
			})
			continue
		}
		if strings.HasPrefix(strings.ToLower(pair.Label), "total") && total == nil {
			total = &county.TaxPeriod{
				Year:       "Total",
				Label:      pair.Label,
				BalanceDue: amount,
				AmountPaid: decimal.Zero,
				Raw:        map[string]string{pair.Label: pair.Value},
			}
		}
	}

	if total == nil {
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

	return ledger
}
