package emsc

import (
	"net/url"
	"strconv"

	"github.com/seismoutils/quakecsv/internal/models"
)

// DefaultBaseURL is the EMSC FDSN event service endpoint.
const DefaultBaseURL = "https://www.seismicportal.eu/fdsnws/event/1/query"

// timeLayout is the ISO 8601 UTC form the service expects.
const timeLayout = "2006-01-02T15:04:05Z"

// BuildQuery renders the query URL for one page. The service's offset is
// 1-based; offset <= 1 and limit <= 0 are omitted.
func BuildQuery(baseURL string, params models.SearchParams, limit, offset int) string {
	values := url.Values{}
	values.Set("minlat", formatFloat(params.MinLat))
	values.Set("maxlat", formatFloat(params.MaxLat))
	values.Set("minlon", formatFloat(params.MinLon))
	values.Set("maxlon", formatFloat(params.MaxLon))
	values.Set("start", params.Start.UTC().Format(timeLayout))
	values.Set("end", params.End.UTC().Format(timeLayout))
	values.Set("minmag", formatFloat(params.MinMag))
	values.Set("maxmag", formatFloat(params.MaxMag))
	values.Set("format", "json")
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if offset > 1 {
		values.Set("offset", strconv.Itoa(offset))
	}
	return baseURL + "?" + values.Encode()
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
