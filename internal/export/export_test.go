package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seismoutils/quakecsv/internal/models"
)

func sampleEvents() []models.Event {
	return []models.Event{
		{
			ID:            "20230106_0000123",
			Time:          time.Date(2023, 1, 6, 10, 2, 11, 0, time.UTC),
			Latitude:      38.12,
			Longitude:     27.45,
			Depth:         7,
			Magnitude:     4.2,
			MagnitudeType: "ML",
			Region:        "WESTERN TURKEY",
			Source:        "EMSC-RTS",
		},
		{
			ID:        "20230107_0000077",
			Time:      time.Date(2023, 1, 7, 3, 44, 59, 0, time.UTC),
			Latitude:  40.7,
			Longitude: 29.1,
			Depth:     11.5,
			Magnitude: 2.9,
			Region:    `NEAR "MARMARA", TURKEY`,
			Source:    "EMSC",
		},
	}
}

func TestWriteEventsCSVRoundTrip(t *testing.T) {
	events := sampleEvents()

	var buf bytes.Buffer
	if err := WriteEvents(&buf, events, FormatCSV, WriteOptions{}); err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse CSV: %v", err)
	}
	if len(rows) != len(events)+1 {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(events)+1)
	}

	wantHeader := "id,time,latitude,longitude,depth,magnitude,magnitude_type,region,source"
	if got := strings.Join(rows[0], ","); got != wantHeader {
		t.Fatalf("header = %q, want %q", got, wantHeader)
	}

	for i, event := range events {
		row := rows[i+1]
		if row[0] != event.ID {
			t.Fatalf("row %d id = %q, want %q", i, row[0], event.ID)
		}
		if row[1] != event.Time.UTC().Format(time.RFC3339) {
			t.Fatalf("row %d time = %q, want %q", i, row[1], event.Time.UTC().Format(time.RFC3339))
		}
		if row[7] != event.Region {
			t.Fatalf("row %d region = %q, want %q", i, row[7], event.Region)
		}
	}
}

func TestWriteEventsCSVEmptyWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, nil, FormatCSV, WriteOptions{}); err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want header only", len(lines))
	}
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := WriteFile(path, sampleEvents(), FormatCSV, WriteOptions{}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if strings.Contains(string(data), "stale") {
		t.Fatalf("old content survived the write")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover temp files: %d entries", len(entries))
	}
}

func TestWriteFileFailsOnBadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.csv"), sampleEvents(), FormatCSV, WriteOptions{})
	if err == nil {
		t.Fatalf("WriteFile() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "write output") {
		t.Fatalf("WriteFile() error = %v, want write output wrap", err)
	}
}

func TestWriteEventsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, sampleEvents(), FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"20230106_0000123"`) {
		t.Fatalf("json output missing event id: %s", buf.String())
	}
}
