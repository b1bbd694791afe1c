package fairfax

import (
	"net/url"
	"strings"

	"countytax-backend/lib/htmlutil"
	"countytax-backend/lib/scrapers/county"

	"github.com/PuerkitoBio/goquery"
)

// tried in order, first match wins. the portal usually renders the canonical
// grid id but falls back to a bare Telerik grid class on some result pages.
var gridSelectors = []string{
	"table#searchResults",
	"table.rgMasterTable",
}

// marker inside each row's onclick handler carrying the detail navigation url
const detailMarker = "selectSearchRow('"

// parseResultsGrid extracts property records from a search response. A
// missing grid means no results, not a parse failure, so it degrades to an
// empty slice.
func parseResultsGrid(doc *goquery.Document, base *url.URL) []county.PropertyRecord {
	var table *goquery.Selection
	for _, selector := range gridSelectors {
		matched := doc.Find(selector).First()
		if matched.Length() > 0 {
			table = matched
			break
		}
	}
	if table == nil {
		return nil
	}

	var headers []string
	table.Find("thead tr th").Each(func(_ int, th *goquery.Selection) {
		text := htmlutil.Text(th)
		text = strings.ReplaceAll(text, "▲", "")
		text = strings.ReplaceAll(text, "▼", "")
		// empty header = unlabeled column, kept for cell alignment but
		// dropped from the row mapping
		headers = append(headers, strings.TrimSpace(text))
	})

	var records []county.PropertyRecord
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, htmlutil.Text(td))
		})
		if len(cells) == 0 {
			return
		}
		// selection checkboxes render as extra leading columns
		if len(cells) > len(headers) {
			cells = cells[len(cells)-len(headers):]
		}
		if len(cells) != len(headers) {
			// stray decorator row, skip it rather than fail the parse
			return
		}

		record := county.PropertyRecord{
			Fields:    map[string]string{},
			DetailURL: extractDetailURL(tr, base),
		}
		for i, header := range headers {
			if header == "" {
				continue
			}
			record.Columns = append(record.Columns, header)
			record.Fields[header] = cells[i]
		}
		records = append(records, record)
	})

	return records
}

// extractDetailURL reads the navigation target out of the row's inline click
// handler: the text between the call marker and the closing quote-paren,
// resolved against the search page url. No marker, no detail url.
func extractDetailURL(tr *goquery.Selection, base *url.URL) string {
	onclick := tr.AttrOr("onclick", "")
	start := strings.Index(onclick, detailMarker)
	if start < 0 {
		return ""
	}
	rest := onclick[start+len(detailMarker):]
	end := strings.Index(rest, "')")
	if end < 0 {
		return ""
	}

	ref, err := url.Parse(rest[:end])
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
