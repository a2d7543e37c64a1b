package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/seismoutils/quakecsv/internal/config"
	"github.com/seismoutils/quakecsv/internal/emsc"
	"github.com/seismoutils/quakecsv/internal/export"
	"github.com/seismoutils/quakecsv/internal/models"
	"github.com/seismoutils/quakecsv/internal/network"
	"github.com/seismoutils/quakecsv/internal/pipeline"
)

type FetchCmd struct {
	MinLat *float64 `name:"min-lat" help:"Minimum latitude of the bounding box."`
	MaxLat *float64 `name:"max-lat" help:"Maximum latitude of the bounding box."`
	MinLon *float64 `name:"min-lon" help:"Minimum longitude of the bounding box."`
	MaxLon *float64 `name:"max-lon" help:"Maximum longitude of the bounding box."`
	Region string   `help:"Named region preset; explicit coordinates override its edges."`

	StartDate string `name:"start-date" help:"Start date, YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS' (UTC)."`
	EndDate   string `name:"end-date" help:"End date, YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS' (UTC)."`
	Days      int    `help:"Fetch the last N days instead of an explicit date range."`

	MinMagnitude *float64      `name:"min-magnitude" help:"Minimum magnitude (default 0.0)."`
	MaxMagnitude *float64      `name:"max-magnitude" help:"Maximum magnitude (default 10.0)."`
	Output       string        `short:"o" help:"Output file (default emsc_earthquakes.csv)."`
	Format       string        `help:"Output format: csv, json, tsv, table." enum:",csv,json,tsv,table" default:""`
	Timeout      time.Duration `help:"HTTP timeout (default 30s)."`
}

func (f *FetchCmd) Run(ctx *Context) error {
	params, err := f.resolveParams(ctx)
	if err != nil {
		return err
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = time.Duration(ctx.Config.TimeoutSeconds) * time.Second
	}

	httpClient, err := network.NewClient(timeout)
	if err != nil {
		return err
	}
	source := emsc.NewClient(httpClient, emsc.Options{
		PageSize: ctx.Config.PageSize,
		MaxPages: ctx.Config.MaxPages,
		Logger:   ctx.Logger,
	})

	format, err := f.resolveFormat(ctx, params.Output)
	if err != nil {
		return err
	}

	pipe := pipeline.New(source, pipeline.Config{
		LargeRangeDays: ctx.Config.LargeRangeDays,
		Format:         format,
		Clock:          clock(ctx),
		Logger:         ctx.Logger,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := pipe.Run(runCtx, params)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("fetch cancelled; no output written")
		}
		return err
	}

	for _, advisory := range result.Advisories {
		ctx.UI.Warnf("warning: %s", advisory)
	}
	if result.Skipped > 0 {
		ctx.UI.Warnf("skipped %d malformed rows", result.Skipped)
	}
	ctx.UI.Successf("Saved %d earthquake records to %s", result.Count, params.Output)
	return nil
}

func (f *FetchCmd) resolveParams(ctx *Context) (models.SearchParams, error) {
	box, err := f.resolveBoundingBox(ctx.Config.Regions)
	if err != nil {
		return models.SearchParams{}, err
	}

	start, end, err := resolveDates(clock(ctx), f.StartDate, f.EndDate, f.Days)
	if err != nil {
		return models.SearchParams{}, err
	}

	params := models.SearchParams{
		MinLat: box.MinLat,
		MaxLat: box.MaxLat,
		MinLon: box.MinLon,
		MaxLon: box.MaxLon,
		Start:  start,
		End:    end,
		MinMag: defaultFloat(f.MinMagnitude, ctx.Config.DefaultMinMagnitude),
		MaxMag: defaultFloat(f.MaxMagnitude, ctx.Config.DefaultMaxMagnitude),
		Output: firstNonEmpty(f.Output, ctx.Config.DefaultOutput),
	}
	return params, params.Validate()
}

func (f *FetchCmd) resolveBoundingBox(presets map[string]config.Region) (config.Region, error) {
	var box config.Region
	havePreset := false
	if name := strings.ToLower(strings.TrimSpace(f.Region)); name != "" {
		preset, ok := presets[name]
		if !ok {
			return box, fmt.Errorf("%w: unknown region %q (run 'quakecsv regions')", models.ErrInvalidParameters, f.Region)
		}
		box = preset
		havePreset = true
	}

	if !havePreset && (f.MinLat == nil || f.MaxLat == nil || f.MinLon == nil || f.MaxLon == nil) {
		return box, fmt.Errorf("%w: --min-lat, --max-lat, --min-lon and --max-lon are required unless --region is given", models.ErrInvalidParameters)
	}

	if f.MinLat != nil {
		box.MinLat = *f.MinLat
	}
	if f.MaxLat != nil {
		box.MaxLat = *f.MaxLat
	}
	if f.MinLon != nil {
		box.MinLon = *f.MinLon
	}
	if f.MaxLon != nil {
		box.MaxLon = *f.MaxLon
	}
	return box, nil
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// resolveDates turns the date flags into a concrete UTC interval. With no
// flags at all the last seven days are fetched.
func resolveDates(clock clockwork.Clock, startArg, endArg string, days int) (time.Time, time.Time, error) {
	startArg = strings.TrimSpace(startArg)
	endArg = strings.TrimSpace(endArg)

	if days > 0 {
		if startArg != "" || endArg != "" {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: --days conflicts with --start-date/--end-date", models.ErrInvalidParameters)
		}
		end := clock.Now().UTC()
		return end.AddDate(0, 0, -days), end, nil
	}

	if startArg == "" && endArg == "" {
		end := clock.Now().UTC()
		return end.AddDate(0, 0, -7), end, nil
	}
	if startArg == "" || endArg == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: --start-date and --end-date must be given together", models.ErrInvalidParameters)
	}

	start, err := parseDate(startArg)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(endArg)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse date %q", models.ErrInvalidParameters, value)
}

// resolveFormat mirrors the precedence of the global output flags: explicit
// --format, then --json/--plain, then the output file extension.
func (f *FetchCmd) resolveFormat(ctx *Context, outputPath string) (export.Format, error) {
	if f.Format != "" {
		return export.Format(f.Format), nil
	}
	if ctx.JSONOutput && ctx.PlainText {
		return "", fmt.Errorf("--json and --plain are mutually exclusive")
	}
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".json":
		return export.FormatJSON, nil
	case ".tsv":
		return export.FormatTSV, nil
	default:
		return export.FormatCSV, nil
	}
}

func clock(ctx *Context) clockwork.Clock {
	if ctx.Clock != nil {
		return ctx.Clock
	}
	return clockwork.NewRealClock()
}

func defaultFloat(value *float64, fallback float64) float64 {
	if value != nil {
		return *value
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
