package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName        = "quakecsv"
	ConfigFileName = "config.json"
)

// Region is a named bounding-box preset selectable with --region.
type Region struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Config contains default fetch settings. File values override the built-in
// defaults; explicit flags override both.
type Config struct {
	DefaultMinMagnitude float64           `json:"default_min_magnitude"`
	DefaultMaxMagnitude float64           `json:"default_max_magnitude"`
	DefaultOutput       string            `json:"default_output"`
	TimeoutSeconds      int               `json:"timeout_seconds"`
	LargeRangeDays      int               `json:"large_range_days"`
	PageSize            int               `json:"page_size"`
	MaxPages            int               `json:"max_pages"`
	Regions             map[string]Region `json:"regions"`
}

func DefaultConfig() Config {
	return Config{
		DefaultMinMagnitude: envFloat("QUAKECSV_MIN_MAGNITUDE", 0.0),
		DefaultMaxMagnitude: envFloat("QUAKECSV_MAX_MAGNITUDE", 10.0),
		DefaultOutput:       envString("QUAKECSV_OUTPUT", "emsc_earthquakes.csv"),
		TimeoutSeconds:      envInt("QUAKECSV_TIMEOUT_SECONDS", 30),
		LargeRangeDays:      envInt("QUAKECSV_LARGE_RANGE_DAYS", 365),
		PageSize:            envInt("QUAKECSV_PAGE_SIZE", 2000),
		MaxPages:            envInt("QUAKECSV_MAX_PAGES", 10),
		Regions:             builtinRegions(),
	}
}

func builtinRegions() map[string]Region {
	return map[string]Region{
		"turkey":   {MinLat: 36.0, MaxLat: 42.0, MinLon: 26.0, MaxLon: 45.0},
		"istanbul": {MinLat: 40.8, MaxLat: 41.3, MinLon: 28.5, MaxLon: 29.5},
		"izmir":    {MinLat: 38.0, MaxLat: 38.7, MinLon: 26.5, MaxLon: 27.5},
		"ankara":   {MinLat: 39.5, MaxLat: 40.2, MinLon: 32.5, MaxLon: 33.5},
		"world":    {MinLat: -90.0, MaxLat: 90.0, MinLon: -180.0, MaxLon: 180.0},
	}
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func Load() (Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	return loadFrom(path)
}

func loadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	// User region lists extend the built-ins rather than replacing them.
	regions := builtinRegions()
	for name, region := range cfg.Regions {
		regions[strings.ToLower(strings.TrimSpace(name))] = region
	}
	cfg.Regions = regions

	return cfg, nil
}

// Init writes a default config.json if one doesn't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
