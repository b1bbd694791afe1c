package travis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"countytax-backend/lib/postback"
	"countytax-backend/lib/scrapers/county"
	"countytax-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func fixtureClient(t *testing.T, server *httptest.Server) *Client {
	client, err := NewClient(Options{
		SearchUrl: server.URL + "/cart/responsive/quickSearch.do",
		BaseUrl:   server.URL + "/cart/responsive/",
		Timeout:   time.Second * 5,
	})
	require.NoError(t, err)
	return client
}

func TestSearchParcelEndToEnd(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travis")
	defer cleanup()

	var submitted map[string][]string
	mux := http.NewServeMux()
	mux.HandleFunc("/cart/responsive/quickSearch.do", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		submitted = r.PostForm
		fmt.Fprint(w, quickSearchPage)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := fixtureClient(t, server)

	records, err := client.SearchParcel(context.Background(), "0150701-104 0000")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(
		t,
		server.URL+"/cart/responsive/propertyDetail.do?id=150701",
		records[0].DetailURL,
	)

	// the identifier goes out cleaned of separators
	require.Equal(t, []string{"01507011040000"}, submitted["criteria.heuristicSearch"])
	require.Equal(t, []string{"responsive"}, submitted["formViewMode"])
	require.Equal(t, []string{"1"}, submitted["criteria.searchStatus"])
	require.Equal(t, []string{"10"}, submitted["pager.pageSize"])
}

func TestSearchAddressComposesCriteria(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travis")
	defer cleanup()

	var criteria string
	mux := http.NewServeMux()
	mux.HandleFunc("/cart/responsive/quickSearch.do", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		criteria = r.PostForm.Get("criteria.heuristicSearch")
		fmt.Fprint(w, "<html><body>No properties found</body></html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := fixtureClient(t, server)

	records, err := client.SearchAddress(context.Background(), county.AddressQuery{
		Number: "1200",
		Street: "CONGRESS",
		Suffix: "AVE",
	})
	require.NoError(t, err)
	require.Empty(t, records)
	require.Equal(t, "1200 CONGRESS AVE", criteria)
}

func TestSearchParcelTransportError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travis")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := fixtureClient(t, server)

	_, err := client.SearchParcel(context.Background(), "01507011040000")
	require.Error(t, err)

	var transportErr *postback.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusBadGateway, transportErr.Status)
}

func TestFetchLedgerEndToEnd(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travis")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/cart/responsive/propertyDetail.do", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := fixtureClient(t, server)

	ledger, err := client.FetchLedger(
		context.Background(),
		server.URL+"/cart/responsive/propertyDetail.do?id=150701",
	)
	require.NoError(t, err)
	require.Len(t, ledger.Periods, 2)
	require.Equal(t, "$1,733.28", ledger.Total.BalanceDueDisplay)
}

func TestFetchLedgerNoDetailStructure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:travis")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>nothing here</p></body></html>")
	}))
	defer server.Close()

	client := fixtureClient(t, server)

	_, err := client.FetchLedger(context.Background(), server.URL+"/detail")
	require.Error(t, err)

	var parseErr *county.ParseError
	require.ErrorAs(t, err, &parseErr)
}
