package emsc

import (
	"context"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"
	"github.com/seismoutils/quakecsv/internal/models"
	"github.com/seismoutils/quakecsv/internal/network"
)

const (
	defaultPageSize = 2000
	defaultMaxPages = 10
)

// Client fetches events from the EMSC FDSN event service. It is the only
// place that knows the remote endpoint and its field names.
type Client struct {
	http     *network.Client
	baseURL  string
	pageSize int
	maxPages int
	logger   zerolog.Logger
}

type Options struct {
	BaseURL  string
	PageSize int
	MaxPages int
	Logger   zerolog.Logger
}

func NewClient(httpClient *network.Client, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	return &Client{
		http:     httpClient,
		baseURL:  opts.BaseURL,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
		logger:   opts.Logger,
	}
}

// FetchResult is the outcome of one complete (possibly paged) fetch.
type FetchResult struct {
	Events  []models.Event
	Skipped int
	Pages   int
}

// Fetch retrieves every page matching params. Pages are requested until one
// comes back short, up to the configured page cap. Events are unique by ID
// in the result; the first occurrence wins so source order is preserved.
func (c *Client) Fetch(ctx context.Context, params models.SearchParams) (*FetchResult, error) {
	result := &FetchResult{Events: []models.Event{}}
	seen := make(map[string]struct{})

	offset := 1
	for page := 0; page < c.maxPages; page++ {
		events, skipped, last, err := c.fetchPage(ctx, params, offset)
		if err != nil {
			return nil, err
		}

		result.Pages++
		result.Skipped += skipped
		for _, event := range events {
			if _, dup := seen[event.ID]; dup {
				continue
			}
			seen[event.ID] = struct{}{}
			result.Events = append(result.Events, event)
		}

		if last {
			break
		}
		offset += len(events) + skipped
	}

	c.logger.Debug().
		Int("events", len(result.Events)).
		Int("skipped", result.Skipped).
		Int("pages", result.Pages).
		Msg("fetch complete")
	return result, nil
}

// fetchPage requests one page. last reports whether paging should stop.
func (c *Client) fetchPage(ctx context.Context, params models.SearchParams, offset int) (events []models.Event, skipped int, last bool, err error) {
	target := BuildQuery(c.baseURL, params, c.pageSize, offset)
	c.logger.Debug().Str("url", target).Msg("requesting page")

	resp, err := c.http.Get(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, true, ctx.Err()
		}
		return nil, 0, true, &RetrievalError{Err: err}
	}
	defer resp.Body.Close()

	// FDSN services answer an empty result set with 204.
	if resp.StatusCode == fhttp.StatusNoContent {
		return nil, 0, true, nil
	}
	if resp.StatusCode >= 400 {
		return nil, 0, true, &RetrievalError{Status: resp.StatusCode}
	}

	events, skipped, err = Parse(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, 0, true, err
	}
	return events, skipped, len(events)+skipped < c.pageSize, nil
}
