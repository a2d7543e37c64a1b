package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/seismoutils/quakecsv/internal/emsc"
	"github.com/seismoutils/quakecsv/internal/export"
	"github.com/seismoutils/quakecsv/internal/models"
)

// DefaultLargeRangeDays is the span above which a fetch carries a
// large-range advisory. The catalog may truncate very large queries.
const DefaultLargeRangeDays = 365

// Source retrieves the raw event set for one query. *emsc.Client is the
// shipped implementation.
type Source interface {
	Fetch(ctx context.Context, params models.SearchParams) (*emsc.FetchResult, error)
}

type Config struct {
	LargeRangeDays int
	Format         export.Format
	Clock          clockwork.Clock
	Logger         zerolog.Logger
}

// Result reports the outcome of one completed fetch for display.
type Result struct {
	Count      int
	Skipped    int
	Pages      int
	Advisories []string
	Elapsed    time.Duration
}

// Pipeline drives validate -> fetch -> export as one linear sequence. It
// holds no mutable state, so concurrent runs with distinct output paths are
// independent.
type Pipeline struct {
	source Source
	cfg    Config
}

func New(source Source, cfg Config) *Pipeline {
	if cfg.LargeRangeDays <= 0 {
		cfg.LargeRangeDays = DefaultLargeRangeDays
	}
	if cfg.Format == "" {
		cfg.Format = export.FormatCSV
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{source: source, cfg: cfg}
}

// Run executes one fetch. Validation failures surface before any network
// call; a zero-record result is a success. No output file is written unless
// the fetch succeeded, and the write itself is atomic.
func (p *Pipeline) Run(ctx context.Context, params models.SearchParams) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}
	start := p.cfg.Clock.Now()

	if days := params.RangeDays(); days > p.cfg.LargeRangeDays {
		result.Advisories = append(result.Advisories,
			fmt.Sprintf("date range spans %d days; the catalog may limit or truncate very large queries", days))
	}

	p.cfg.Logger.Debug().
		Float64("min_lat", params.MinLat).Float64("max_lat", params.MaxLat).
		Float64("min_lon", params.MinLon).Float64("max_lon", params.MaxLon).
		Time("start", params.Start).Time("end", params.End).
		Msg("fetching events")

	fetched, err := p.source.Fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := export.WriteFile(params.Output, fetched.Events, p.cfg.Format, export.WriteOptions{}); err != nil {
		return nil, err
	}

	result.Count = len(fetched.Events)
	result.Skipped = fetched.Skipped
	result.Pages = fetched.Pages
	result.Elapsed = p.cfg.Clock.Since(start)

	p.cfg.Logger.Debug().
		Int("records", result.Count).
		Int("skipped", result.Skipped).
		Dur("elapsed", result.Elapsed).
		Str("output", params.Output).
		Msg("fetch finished")
	return result, nil
}
