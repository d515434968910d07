package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cmegrid/internal/errors"

	"github.com/joho/godotenv"
)

// Default file names of the classification run
const (
	DefaultInputFile     = "Datos_soho-lasco.xlsx"
	DefaultDetailedFile  = "resumen_cme_detallado.xlsx"
	DefaultPivotFile     = "resumen_cme_pivot.xlsx"
	DefaultHeatmapFile   = "heatmap_cme.png"
	DefaultBarsFile      = "barras_cme.png"
	DefaultArchiveDriver = "sqlite3"
)

// Config represents the complete application configuration
type Config struct {
	Input   InputConfig
	Output  OutputConfig
	Archive ArchiveConfig
	Logging LoggingConfig
}

// InputConfig describes where records are read from
type InputConfig struct {
	File  string
	Sheet string // empty selects the first sheet
	// StrictColumns makes an absent required column fatal; otherwise the
	// column is read as all-missing and a warning is logged
	StrictColumns bool
}

// OutputConfig holds the output directory and artifact names
type OutputConfig struct {
	Dir          string
	DetailedFile string
	PivotFile    string
	HeatmapFile  string
	BarsFile     string
	SkipCharts   bool
}

// DetailedPath is the flat bucket table file
func (o OutputConfig) DetailedPath() string { return filepath.Join(o.Dir, o.DetailedFile) }

// PivotPath is the pivot table file
func (o OutputConfig) PivotPath() string { return filepath.Join(o.Dir, o.PivotFile) }

// HeatmapPath is the heatmap image
func (o OutputConfig) HeatmapPath() string { return filepath.Join(o.Dir, o.HeatmapFile) }

// BarsPath is the grouped bar chart image
func (o OutputConfig) BarsPath() string { return filepath.Join(o.Dir, o.BarsFile) }

// ArchiveConfig holds the optional SQL run archive settings
type ArchiveConfig struct {
	Driver string
	DSN    string
}

// Enabled reports whether runs should be archived
func (a ArchiveConfig) Enabled() bool {
	return a.DSN != ""
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Input: InputConfig{
			File:          DefaultInputFile,
			StrictColumns: true,
		},
		Output: OutputConfig{
			Dir:          ".",
			DetailedFile: DefaultDetailedFile,
			PivotFile:    DefaultPivotFile,
			HeatmapFile:  DefaultHeatmapFile,
			BarsFile:     DefaultBarsFile,
		},
		Archive: ArchiveConfig{Driver: DefaultArchiveDriver},
		Logging: LoggingConfig{Level: "INFO"},
	}
}

// LoadDotEnv loads .env files into the environment. A missing file is
// logged and the process environment is used as is.
func LoadDotEnv(logger *log.Logger, filenames ...string) bool {
	if err := godotenv.Load(filenames...); err != nil {
		logger.Println("No .env file found, using system environment variables")
		return false
	}
	return true
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()

	config.Input = loadInputConfig(config.Input)
	config.Output = loadOutputConfig(config.Output)
	config.Archive = loadArchiveConfig(config.Archive)
	config.Logging = LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", config.Logging.Level)}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadInputConfig(def InputConfig) InputConfig {
	return InputConfig{
		File:          getEnvOrDefault("CME_INPUT_FILE", def.File),
		Sheet:         getEnvOrDefault("CME_SHEET", def.Sheet),
		StrictColumns: getEnvBoolOrDefault("CME_STRICT_COLUMNS", def.StrictColumns),
	}
}

func loadOutputConfig(def OutputConfig) OutputConfig {
	return OutputConfig{
		Dir:          getEnvOrDefault("CME_OUTPUT_DIR", def.Dir),
		DetailedFile: getEnvOrDefault("CME_DETAILED_FILE", def.DetailedFile),
		PivotFile:    getEnvOrDefault("CME_PIVOT_FILE", def.PivotFile),
		HeatmapFile:  getEnvOrDefault("CME_HEATMAP_FILE", def.HeatmapFile),
		BarsFile:     getEnvOrDefault("CME_BARS_FILE", def.BarsFile),
		SkipCharts:   getEnvBoolOrDefault("CME_SKIP_CHARTS", def.SkipCharts),
	}
}

func loadArchiveConfig(def ArchiveConfig) ArchiveConfig {
	return ArchiveConfig{
		Driver: getEnvOrDefault("ARCHIVE_DRIVER", def.Driver),
		DSN:    getEnvOrDefault("ARCHIVE_DSN", def.DSN),
	}
}

// Validate checks required fields and file extensions
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input.File) == "" {
		return errors.ConfigInvalid("input file is required")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.ConfigInvalid("output directory is required")
	}

	outputs := []struct{ name, ext string }{
		{c.Output.DetailedFile, ".xlsx"},
		{c.Output.PivotFile, ".xlsx"},
		{c.Output.HeatmapFile, ".png"},
		{c.Output.BarsFile, ".png"},
	}
	for _, out := range outputs {
		if !strings.EqualFold(filepath.Ext(out.name), out.ext) {
			return errors.ConfigInvalid("output file " + strconv.Quote(out.name) + " must have extension " + out.ext)
		}
	}
	if c.Output.DetailedFile == c.Output.PivotFile {
		return errors.ConfigInvalid("detailed and pivot outputs must be different files")
	}

	if c.Archive.Enabled() {
		switch c.Archive.Driver {
		case "sqlite3", "postgres":
		default:
			return errors.ConfigInvalid("unsupported archive driver " + strconv.Quote(c.Archive.Driver) + " (expected sqlite3|postgres)")
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
