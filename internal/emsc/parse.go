package emsc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/seismoutils/quakecsv/internal/models"
)

// Parse reads the response body once and returns the normalized events plus
// the number of rows that had to be skipped. An empty body is an empty
// result, not an error.
func Parse(r io.Reader, contentType string) ([]models.Event, int, error) {
	buffered := bufio.NewReader(r)
	if empty, err := bodyIsEmpty(buffered); err != nil {
		return nil, 0, err
	} else if empty {
		return []models.Event{}, 0, nil
	}

	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	switch {
	case strings.Contains(mediaType, "json"):
		return parseJSON(buffered)
	case strings.Contains(mediaType, "text/plain"), strings.Contains(mediaType, "csv"):
		return parseText(buffered)
	default:
		return nil, 0, fmt.Errorf("%w: unsupported content type %q", ErrMalformedResponse, contentType)
	}
}

func bodyIsEmpty(r *bufio.Reader) (bool, error) {
	for {
		b, err := r.Peek(1)
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r' {
			if _, err := r.ReadByte(); err != nil {
				return false, err
			}
			continue
		}
		return false, nil
	}
}

// GeoJSON feature collection as served with format=json.

type featureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

type feature struct {
	ID         string `json:"id"`
	Properties struct {
		SourceID      string  `json:"source_id"`
		SourceCatalog string  `json:"source_catalog"`
		Time          string  `json:"time"`
		Mag           float64 `json:"mag"`
		MagType       string  `json:"magtype"`
		FlynnRegion   string  `json:"flynn_region"`
		Lat           float64 `json:"lat"`
		Lon           float64 `json:"lon"`
		Depth         float64 `json:"depth"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
	} `json:"geometry"`
}

func parseJSON(r io.Reader) ([]models.Event, int, error) {
	var collection featureCollection
	dec := json.NewDecoder(r)
	if err := dec.Decode(&collection); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if collection.Features == nil {
		return nil, 0, fmt.Errorf("%w: missing features", ErrMalformedResponse)
	}

	events := make([]models.Event, 0, len(collection.Features))
	skipped := 0
	for _, raw := range collection.Features {
		event, ok := parseFeature(raw)
		if !ok {
			skipped++
			continue
		}
		events = append(events, event)
	}
	return events, skipped, nil
}

func parseFeature(raw json.RawMessage) (models.Event, bool) {
	var f feature
	if err := json.Unmarshal(raw, &f); err != nil {
		return models.Event{}, false
	}

	id := f.Properties.SourceID
	if id == "" {
		id = f.ID
	}
	if id == "" {
		return models.Event{}, false
	}

	ts, err := parseEventTime(f.Properties.Time)
	if err != nil {
		return models.Event{}, false
	}

	lat, lon := f.Properties.Lat, f.Properties.Lon
	depth := f.Properties.Depth
	if coords := f.Geometry.Coordinates; len(coords) >= 2 {
		lon, lat = coords[0], coords[1]
		if len(coords) >= 3 && depth == 0 {
			depth = coords[2]
		}
	}
	// The GeoJSON third coordinate is negative altitude; depth is km down.
	if depth < 0 {
		depth = -depth
	}

	return models.Event{
		ID:            id,
		Time:          ts,
		Latitude:      lat,
		Longitude:     lon,
		Depth:         depth,
		Magnitude:     f.Properties.Mag,
		MagnitudeType: f.Properties.MagType,
		Region:        f.Properties.FlynnRegion,
		Source:        sourceLabel(f.Properties.SourceCatalog, id),
	}, true
}

func sourceLabel(catalog, id string) string {
	if catalog != "" {
		return catalog
	}
	if idx := strings.Index(id, ":"); idx > 0 {
		return id[:idx]
	}
	return models.DefaultSource
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.9",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseEventTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", value)
}

// FDSN text format:
// #EventID|Time|Latitude|Longitude|Depth/km|Author|Catalog|Contributor|ContributorID|MagType|Magnitude|MagAuthor|EventLocationName
const textFieldCount = 13

func parseText(r io.Reader) ([]models.Event, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var events []models.Event
	skipped := 0
	sawHeader := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			sawHeader = true
			continue
		}
		if !sawHeader && !strings.Contains(line, "|") {
			return nil, 0, fmt.Errorf("%w: not FDSN text", ErrMalformedResponse)
		}

		event, ok := parseTextRow(line)
		if !ok {
			skipped++
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, skipped, nil
}

func parseTextRow(line string) (models.Event, bool) {
	fields := strings.Split(line, "|")
	if len(fields) < textFieldCount {
		return models.Event{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if fields[0] == "" {
		return models.Event{}, false
	}
	ts, err := parseEventTime(fields[1])
	if err != nil {
		return models.Event{}, false
	}
	lat, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return models.Event{}, false
	}
	lon, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return models.Event{}, false
	}
	depth, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return models.Event{}, false
	}
	if depth < 0 {
		depth = -depth
	}
	mag, err := strconv.ParseFloat(fields[10], 64)
	if err != nil {
		return models.Event{}, false
	}

	source := fields[6]
	if source == "" {
		source = models.DefaultSource
	}

	return models.Event{
		ID:            fields[0],
		Time:          ts,
		Latitude:      lat,
		Longitude:     lon,
		Depth:         depth,
		Magnitude:     mag,
		MagnitudeType: fields[9],
		Region:        fields[12],
		Source:        source,
	}, true
}
