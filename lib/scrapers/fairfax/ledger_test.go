package fairfax

import (
	"strings"
	"testing"

	"countytax-backend/lib/scrapers/county"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const ledgerPage = `
<html><body>
<input type="hidden" id="hdTaxYear" value="2024"/>
<div name="TAX_STUB">
  <table><tr><td>Stub Number</td></tr></table>
  <table><tr><td class="DataletData">123456789</td></tr></table>
</div>
<div name="TAX_SUM">
  <table><tr><td>Real Estate Tax Summary</td></tr></table>
  <table id="SummaryList">
    <tr><td>Year</td><td></td><td>Amount Paid</td><td>Balance Due</td></tr>
    <tr><td>2024</td><td>1st Half</td><td>$3,201.12</td><td>$.00</td></tr>
    <tr><td>2023</td><td></td><td>$6,288.50</td><td>-.50</td></tr>
    <tr><td>Total</td><td></td><td>$9,489.62</td><td>-$0.50</td></tr>
  </table>
</div>
</body></html>`

func TestExtractLedger(t *testing.T) {
	ledger, err := extractLedger(parseDoc(t, ledgerPage), "https://icare.example.gov/tax")
	require.NoError(t, err)

	require.Equal(t, "Real Estate Tax Summary", ledger.Title)
	require.Equal(t, "123456789", ledger.StubNumber)
	require.Equal(t, "2024", ledger.TaxYearCode)
	require.Len(t, ledger.Periods, 2)

	first := ledger.Periods[0]
	require.Equal(t, "2024", first.Year)
	require.Equal(t, "1st Half", first.Label)
	require.True(t, first.AmountPaid.Equal(decimal.RequireFromString("3201.12")))
	require.True(t, first.BalanceDue.IsZero())
	require.Equal(t, "$3,201.12", first.AmountPaidDisplay)
	require.Equal(t, "$0.00", first.BalanceDueDisplay)

	second := ledger.Periods[1]
	require.Equal(t, "2023", second.Year)
	require.True(t, second.BalanceDue.Equal(decimal.RequireFromString("-0.5")))
	require.Equal(t, "-$0.50", second.BalanceDueDisplay)

	require.Equal(t, "Total", ledger.Total.Year)
	require.True(t, ledger.Total.AmountPaid.Equal(decimal.RequireFromString("9489.62")))
	require.Equal(t, "-$0.50", ledger.Total.BalanceDueDisplay)
}

func TestExtractLedgerMissingSummary(t *testing.T) {
	_, err := extractLedger(
		parseDoc(t, "<html><body><div name='TAX_STUB'></div></body></html>"),
		"https://icare.example.gov/tax",
	)
	require.Error(t, err)

	var parseErr *county.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "https://icare.example.gov/tax", parseErr.URL)
}

func TestExtractLedgerMissingDataTable(t *testing.T) {
	page := `<html><body><div name="TAX_SUM"><table><tr><td>Tax Summary</td></tr></table></div></body></html>`
	_, err := extractLedger(parseDoc(t, page), "https://icare.example.gov/tax")

	var parseErr *county.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestExtractLedgerSynthesizesTotal(t *testing.T) {
	page := `
<html><body>
<div name="TAX_SUM">
  <table><tr><td></td></tr></table>
  <table id="SummaryList">
    <tr><td>Year</td><td></td><td>Amount Paid</td><td>Balance Due</td></tr>
  </table>
</div>
</body></html>`

	ledger, err := extractLedger(parseDoc(t, page), "https://icare.example.gov/tax")
	require.NoError(t, err)

	require.Equal(t, "Tax Summary", ledger.Title)
	require.Empty(t, ledger.Periods)
	require.Equal(t, "Total", ledger.Total.Year)
	require.Equal(t, "", ledger.Total.Label)
	require.True(t, ledger.Total.AmountPaid.IsZero())
	require.True(t, ledger.Total.BalanceDue.IsZero())
	require.Equal(t, "$0.00", ledger.Total.BalanceDueDisplay)
	require.Equal(t, "", ledger.TaxYearCode)
}

func TestLocateLedgerUrlFromSideMenu(t *testing.T) {
	page := `
<html><body>
<div id="sidemenu">
  <a href="Datalet.aspx?sIndex=0&mode=tax_details">Tax Details</a>
</div>
</body></html>`

	link := locateLedgerUrl(
		parseDoc(t, page),
		"https://icare.example.gov/Datalets/Datalet.aspx?sIndex=0",
	)
	require.Equal(t, "https://icare.example.gov/Datalets/Datalet.aspx?sIndex=0&mode=tax_details", link)
}

func TestLocateLedgerUrlDerived(t *testing.T) {
	doc := parseDoc(t, "<html><body></body></html>")

	link := locateLedgerUrl(doc, "https://icare.example.gov/Datalet.aspx?sIndex=0")
	require.Equal(t, "https://icare.example.gov/Datalet.aspx?sIndex=0&mode=tax_details", link)

	link = locateLedgerUrl(doc, "https://icare.example.gov/Datalet.aspx")
	require.Equal(t, "https://icare.example.gov/Datalet.aspx?mode=tax_details", link)
}

func TestExtractLedgerBadCurrency(t *testing.T) {
	page := strings.Replace(ledgerPage, "$3,201.12", "N/A", 1)
	_, err := extractLedger(parseDoc(t, page), "https://icare.example.gov/tax")
	require.Error(t, err)
}
