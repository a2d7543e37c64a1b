package emsc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/seismoutils/quakecsv/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPClient(t *testing.T) *network.Client {
	t.Helper()
	client, err := network.NewClient(5 * time.Second)
	require.NoError(t, err)
	return client
}

func testEMSCClient(t *testing.T, baseURL string, pageSize int) *Client {
	t.Helper()
	return NewClient(testHTTPClient(t), Options{
		BaseURL:  baseURL,
		PageSize: pageSize,
		MaxPages: 5,
		Logger:   zerolog.Nop(),
	})
}

func featureJSON(id string) string {
	return fmt.Sprintf(`{"id":%q,"properties":{"source_id":%q,"source_catalog":"EMSC-RTS","time":"2023-01-06T10:02:11Z","mag":4.0,"magtype":"ml","flynn_region":"WESTERN TURKEY"},"geometry":{"coordinates":[27.0,38.0,-10]}}`, id, id)
}

func collectionJSON(ids ...string) string {
	body := `{"type":"FeatureCollection","features":[`
	for i, id := range ids {
		if i > 0 {
			body += ","
		}
		body += featureJSON(id)
	}
	return body + `]}`
}

func TestFetchSinglePage(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "36", r.URL.Query().Get("minlat"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, collectionJSON("e1", "e2"))
	}))
	defer srv.Close()

	result, err := testEMSCClient(t, srv.URL, 100).Fetch(context.Background(), queryParams())
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
	assert.Equal(t, 1, result.Pages)
	require.Len(t, result.Events, 2)
	assert.Equal(t, "e1", result.Events[0].ID)
}

func TestFetchPagesUntilShortPage(t *testing.T) {
	pages := []string{
		collectionJSON("e1", "e2"),
		collectionJSON("e2", "e3"), // e2 duplicated across the page boundary
		collectionJSON("e4"),
	}
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("offset"))
		w.Header().Set("Content-Type", "application/json")
		page := len(offsets) - 1
		require.Less(t, page, len(pages))
		fmt.Fprint(w, pages[page])
	}))
	defer srv.Close()

	result, err := testEMSCClient(t, srv.URL, 2).Fetch(context.Background(), queryParams())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, []string{"", "3", "5"}, offsets)

	ids := make([]string, 0, len(result.Events))
	for _, event := range result.Events {
		ids = append(ids, event.ID)
	}
	assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, ids)
}

func TestFetchNoContentMeansEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	result, err := testEMSCClient(t, srv.URL, 100).Fetch(context.Background(), queryParams())
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Zero(t, result.Skipped)
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testEMSCClient(t, srv.URL, 100).Fetch(context.Background(), queryParams())
	require.Error(t, err)

	var retrieval *RetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.Equal(t, http.StatusInternalServerError, retrieval.Status)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := testEMSCClient(t, srv.URL, 100).Fetch(context.Background(), queryParams())
	require.Error(t, err)

	var retrieval *RetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.Zero(t, retrieval.Status)
}

func TestFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "<html>gateway error</html>")
	}))
	defer srv.Close()

	_, err := testEMSCClient(t, srv.URL, 100).Fetch(context.Background(), queryParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testEMSCClient(t, srv.URL, 100).Fetch(ctx, queryParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
