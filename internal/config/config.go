// =============================================================================
// XLSX to JSON Aggregator - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. A single YAML file carries both the runtime settings
// (file locations, archival, output naming, logging) and the dataset
// bindings (which spreadsheet columns identify a row, the property-type
// code table, and the year range to scan).
//
// CONFIGURATION FILE:
//   config.yaml in the working directory by default; override with --config.
//
// ARCHITECTURE:
//   The configuration system is designed to be:
//   - Self-defaulting: every option has a sensible default, so an empty
//     (or absent) file still produces a runnable configuration
//   - Validated: the configuration is checked on load, and required
//     directories are created
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// FILE SETTINGS
	// =========================================================================

	// InputFile is the spreadsheet to aggregate.
	// Default: "WebsiteDataTable.xlsx"
	InputFile string `yaml:"input_file"`

	// OutputFile is the JSON document to produce. When OutputNameFormat is
	// set, this is ignored and the output name is generated instead.
	// Default: "london_data.json"
	OutputFile string `yaml:"output_file"`

	// OutputDir is the directory where generated JSON files are placed.
	// Default: "." (current directory)
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is the directory where processed spreadsheets are
	// moved. Files are only moved here after successful processing.
	// Leave empty to disable archival.
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputNameFormat optionally generates output file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {dataset}   - The sheet name (or "sheet1" if unset)
	// Example: "prices_{timestamp}_{uuid}.json"
	OutputNameFormat string `yaml:"output_name_format"`

	// SummaryLog is an optional path for a per-run summary log file.
	// Leave empty to skip writing one.
	SummaryLog string `yaml:"summary_log"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// Indent is the indentation unit for the JSON output.
	// Default: two spaces.
	Indent string `yaml:"indent"`

	// =========================================================================
	// DATASET SETTINGS
	// =========================================================================

	// Dataset describes the spreadsheet columns and the aggregation table.
	Dataset DatasetConfig `yaml:"dataset"`
}

// =============================================================================
// DATASET CONFIGURATION STRUCTURE
// =============================================================================

// DatasetConfig binds the aggregator to the source spreadsheet layout.
type DatasetConfig struct {
	// SheetName is the worksheet to read. Empty means the first sheet.
	SheetName string `yaml:"sheet_name"`

	// PostcodeColumn is the header of the column holding the outward
	// postcode, the primary grouping key.
	// Default: "outward"
	PostcodeColumn string `yaml:"postcode_column"`

	// BoroughColumn is the header of the column holding the borough name.
	// Default: "borough"
	BoroughColumn string `yaml:"borough_column"`

	// PropertyTypeColumn is the header of the column holding the
	// single-letter property type code.
	// Default: "propertytype"
	PropertyTypeColumn string `yaml:"property_type_column"`

	// TypeMap maps property type codes to canonical labels. Codes absent
	// from the map resolve to "other".
	// Default: {D: detached, F: flat, S: semi, T: terraced}
	TypeMap map[string]string `yaml:"type_map"`

	// YearStart and YearEnd bound the inclusive range of years to scan.
	// Defaults: 2015 and 2026.
	YearStart int `yaml:"year_start"`
	YearEnd   int `yaml:"year_end"`

	// PriceColumnFormat is the fmt pattern naming each year's price
	// column, with the year as its only argument.
	// Default: "%d_price" (so 2015 reads from "2015_price")
	PriceColumnFormat string `yaml:"price_column_format"`
}

// PriceColumn returns the column header carrying the price for a year.
func (d DatasetConfig) PriceColumn(year int) string {
	return fmt.Sprintf(d.PriceColumnFormat, year)
}

// Years returns the configured year range in ascending order.
func (d DatasetConfig) Years() []int {
	if d.YearEnd < d.YearStart {
		return nil
	}
	years := make([]int, 0, d.YearEnd-d.YearStart+1)
	for y := d.YearStart; y <= d.YearEnd; y++ {
		years = append(years, y)
	}
	return years
}

// RequiredColumns returns the headers every usable row must expose.
func (d DatasetConfig) RequiredColumns() []string {
	return []string{d.PostcodeColumn, d.BoroughColumn, d.PropertyTypeColumn}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct with defaults applied.
//   - An error if the file cannot be read or parsed.
//
// A missing file is not an error: the defaults describe a complete run,
// so the tool stays usable without any configuration on disk.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Fall through with the zero value; defaults fill everything in.
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputFile == "" {
		config.InputFile = "WebsiteDataTable.xlsx"
	}
	if config.OutputFile == "" {
		config.OutputFile = "london_data.json"
	}
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if config.Indent == "" {
		config.Indent = "  "
	}

	applyDatasetDefaults(&config.Dataset)
}

// applyDatasetDefaults sets default values for the dataset bindings.
func applyDatasetDefaults(dataset *DatasetConfig) {
	if dataset.PostcodeColumn == "" {
		dataset.PostcodeColumn = "outward"
	}
	if dataset.BoroughColumn == "" {
		dataset.BoroughColumn = "borough"
	}
	if dataset.PropertyTypeColumn == "" {
		dataset.PropertyTypeColumn = "propertytype"
	}
	if len(dataset.TypeMap) == 0 {
		dataset.TypeMap = map[string]string{
			"D": "detached",
			"F": "flat",
			"S": "semi",
			"T": "terraced",
		}
	}
	if dataset.YearStart == 0 {
		dataset.YearStart = 2015
	}
	if dataset.YearEnd == 0 {
		dataset.YearEnd = 2026
	}
	if dataset.PriceColumnFormat == "" {
		dataset.PriceColumnFormat = "%d_price"
	}
}

// validateMainConfig validates the configuration and creates the
// directories the run will write into.
func validateMainConfig(config *MainConfig) error {
	if config.Dataset.YearEnd < config.Dataset.YearStart {
		return fmt.Errorf("year_end (%d) is before year_start (%d)",
			config.Dataset.YearEnd, config.Dataset.YearStart)
	}

	dirs := []string{config.OutputDir}
	if config.InputArchiveDir != "" {
		dirs = append(dirs, config.InputArchiveDir)
	}
	if config.SummaryLog != "" {
		dirs = append(dirs, filepath.Dir(config.SummaryLog))
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}
