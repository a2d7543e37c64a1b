package emsc

import (
	"net/url"
	"testing"
	"time"

	"github.com/seismoutils/quakecsv/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryParams() models.SearchParams {
	return models.SearchParams{
		MinLat: 36.0, MaxLat: 42.0,
		MinLon: 26.0, MaxLon: 45.0,
		Start:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
		MinMag: 0.0, MaxMag: 10.0,
		Output: "out.csv",
	}
}

func TestBuildQuery(t *testing.T) {
	raw := BuildQuery(DefaultBaseURL, queryParams(), 0, 0)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.seismicportal.eu", parsed.Host)
	assert.Equal(t, "/fdsnws/event/1/query", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "36", query.Get("minlat"))
	assert.Equal(t, "42", query.Get("maxlat"))
	assert.Equal(t, "26", query.Get("minlon"))
	assert.Equal(t, "45", query.Get("maxlon"))
	assert.Equal(t, "2023-01-01T00:00:00Z", query.Get("start"))
	assert.Equal(t, "2023-01-31T00:00:00Z", query.Get("end"))
	assert.Equal(t, "0", query.Get("minmag"))
	assert.Equal(t, "10", query.Get("maxmag"))
	assert.Equal(t, "json", query.Get("format"))
	assert.Empty(t, query.Get("limit"))
	assert.Empty(t, query.Get("offset"))
}

func TestBuildQueryPaging(t *testing.T) {
	raw := BuildQuery(DefaultBaseURL, queryParams(), 500, 501)

	query, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "500", query.Query().Get("limit"))
	assert.Equal(t, "501", query.Query().Get("offset"))
}

func TestBuildQueryConvertsToUTC(t *testing.T) {
	params := queryParams()
	ist := time.FixedZone("TRT", 3*60*60)
	params.Start = time.Date(2023, 1, 1, 3, 0, 0, 0, ist)

	raw := BuildQuery(DefaultBaseURL, params, 0, 0)
	query, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01T00:00:00Z", query.Query().Get("start"))
}
