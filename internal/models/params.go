package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidParameters marks caller errors caught by local validation,
// before any network call is made.
var ErrInvalidParameters = errors.New("invalid parameters")

// SearchParams captures one validated catalog query. Built once per fetch
// and never mutated afterwards.
type SearchParams struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64

	Start time.Time
	End   time.Time

	MinMag float64
	MaxMag float64

	Output string
}

// Validate checks ranges locally. Every violation wraps ErrInvalidParameters
// so callers can detect the class with errors.Is.
func (p SearchParams) Validate() error {
	if p.MinLat >= p.MaxLat {
		return fmt.Errorf("%w: min latitude %.4f must be less than max latitude %.4f", ErrInvalidParameters, p.MinLat, p.MaxLat)
	}
	if p.MinLat < -90 || p.MaxLat > 90 {
		return fmt.Errorf("%w: latitude must be within [-90, 90]", ErrInvalidParameters)
	}
	if p.MinLon >= p.MaxLon {
		return fmt.Errorf("%w: min longitude %.4f must be less than max longitude %.4f", ErrInvalidParameters, p.MinLon, p.MaxLon)
	}
	if p.MinLon < -180 || p.MaxLon > 180 {
		return fmt.Errorf("%w: longitude must be within [-180, 180]", ErrInvalidParameters)
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidParameters)
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidParameters,
			p.End.Format("2006-01-02"), p.Start.Format("2006-01-02"))
	}
	if p.MinMag > p.MaxMag {
		return fmt.Errorf("%w: min magnitude %.1f must not exceed max magnitude %.1f", ErrInvalidParameters, p.MinMag, p.MaxMag)
	}
	if strings.TrimSpace(p.Output) == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidParameters)
	}
	return nil
}

// RangeDays returns the span of the date range in whole days.
func (p SearchParams) RangeDays() int {
	return int(p.End.Sub(p.Start).Hours() / 24)
}
