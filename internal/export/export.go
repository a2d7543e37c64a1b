package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/muesli/termenv"
	"github.com/seismoutils/quakecsv/internal/models"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTSV   Format = "tsv"
	FormatTable Format = "table"
)

type WriteOptions struct {
	ColorEnabled bool
}

// WriteEvents serializes events in the given format.
func WriteEvents(w io.Writer, events []models.Event, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, events)
	case FormatTSV:
		return writeCSV(w, events, '\t')
	case FormatTable:
		return writeTable(w, events, opts)
	default:
		return writeCSV(w, events, ',')
	}
}

// WriteFile writes events to path atomically: the data goes to a temp file
// in the destination directory which replaces path only after a clean flush.
// A failed write leaves no partial file behind.
func WriteFile(path string, events []models.Event, format Format, opts WriteOptions) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	tmpName := tmp.Name()

	if err := WriteEvents(tmp, events, format, opts); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, events []models.Event) error {
	if events == nil {
		events = []models.Event{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

func writeCSV(w io.Writer, events []models.Event, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, event := range events {
		if err := writer.Write(csvRow(event)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, events []models.Event, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, event := range events {
		fmt.Fprintln(tw, strings.Join(tableRow(event, output, opts), "\t"))
	}
	return tw.Flush()
}

func csvHeader() []string {
	return []string{
		"id",
		"time",
		"latitude",
		"longitude",
		"depth",
		"magnitude",
		"magnitude_type",
		"region",
		"source",
	}
}

func csvRow(event models.Event) []string {
	return []string{
		event.ID,
		event.Time.UTC().Format(time.RFC3339),
		floatString(event.Latitude),
		floatString(event.Longitude),
		floatString(event.Depth),
		floatString(event.Magnitude),
		event.MagnitudeType,
		event.Region,
		event.Source,
	}
}

func floatString(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func tableHeader() []string {
	return []string{
		"time",
		"mag",
		"depth",
		"region",
		"source",
	}
}

func tableRow(event models.Event, output *termenv.Output, opts WriteOptions) []string {
	mag := fmt.Sprintf("%.1f %s", event.Magnitude, event.MagnitudeType)
	if opts.ColorEnabled {
		mag = output.String(mag).Foreground(output.Color(magnitudeColor(event.Magnitude))).String()
	}
	return []string{
		event.Time.UTC().Format("2006-01-02 15:04:05"),
		strings.TrimSpace(mag),
		fmt.Sprintf("%.0f km", event.Depth),
		event.Region,
		event.Source,
	}
}

func magnitudeColor(mag float64) string {
	switch {
	case mag >= 6.0:
		return "1" // red
	case mag >= 4.5:
		return "3" // yellow
	default:
		return "2" // green
	}
}
