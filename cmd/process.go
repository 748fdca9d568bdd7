// =============================================================================
// XLSX to JSON Aggregator - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the full aggregation
// pipeline for one workbook.
//
// COMMAND USAGE:
//   aggregator process [flags]
//
// FLAGS:
//   --input    : Override the configured input workbook
//   --output   : Override the configured output file
//   --dry-run  : Aggregate without writing output or archiving input
//
// PROCESSING PIPELINE:
//   1. Load the configuration
//   2. Open the workbook and stream its rows
//   3. Fold the rows into the postcode document
//   4. Serialize the document as ordered JSON
//   5. Write the output file
//   6. Archive the input workbook (if configured)
//   7. Print the run summary
//
// Only a failed workbook read aborts the run; in that case no output is
// written. Per-row and per-cell anomalies never stop processing.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/aggregator"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/config"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/jsonwriter"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/validation"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/xlsxparser"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// inputFile overrides the configured input workbook.
var inputFile string

// outputFile overrides the configured output file.
var outputFile string

// dryRun aggregates without writing output files.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Aggregate the workbook into the postcode price JSON document",
	Long: `The process command reads the configured spreadsheet, merges its rows by
postcode, derives the synthetic "all" average for each postcode-year, and
writes the nested JSON document.

Rows with a blank or "nan" postcode are skipped and counted. Price cells
that are missing, non-numeric, zero, or negative are ignored cell by cell.
Neither stops the run.

On success the input workbook is moved to the input archive when one is
configured. On a failed workbook read, no output is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command and its flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(
		&inputFile,
		"input",
		"",
		"Path to the input workbook (overrides the configuration)",
	)

	processCmd.Flags().StringVar(
		&outputFile,
		"output",
		"",
		"Path to the output JSON file (overrides the configuration)",
	)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Aggregate without writing output or archiving input",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess executes the aggregation pipeline.
func runProcess() error {
	startTime := time.Now()
	logger := aggregator.NewStderrLogger(verbose)

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== XLSX to JSON Aggregator ===")

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if inputFile != "" {
		mainConfig.InputFile = inputFile
	}
	if outputFile != "" {
		mainConfig.OutputFile = outputFile
		mainConfig.OutputNameFormat = ""
	}

	fmt.Printf("Reading %s...\n", mainConfig.InputFile)

	// =========================================================================
	// STEP 2: OPEN THE WORKBOOK
	// =========================================================================
	// A workbook that cannot be opened is the one fatal error of a run.

	rows, err := xlsxparser.NewStreamingParser(mainConfig.InputFile, mainConfig.Dataset.SheetName)
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}
	defer rows.Close()

	// Column presence is checked up front, but missing columns are not
	// fatal: the corresponding writes simply never occur.
	for _, finding := range validation.CheckColumns(rows.Headers(), mainConfig.Dataset) {
		logger.Warn("%s", finding.Error())
	}

	// =========================================================================
	// STEP 3: AGGREGATE
	// =========================================================================

	fmt.Println("Processing rows...")

	agg := aggregator.New(mainConfig.Dataset)
	agg.SetLogger(logger)

	doc, stats, err := agg.Aggregate(rows)
	if err != nil {
		return fmt.Errorf("aggregation aborted: %w", err)
	}

	// =========================================================================
	// STEP 4: SERIALIZE
	// =========================================================================

	options := jsonwriter.DefaultGenerateOptions()
	options.Indent = mainConfig.Indent

	jsonBytes, err := jsonwriter.GenerateWithOptions(doc, options)
	if err != nil {
		return fmt.Errorf("failed to generate JSON: %w", err)
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT
	// =========================================================================

	outputPath := resolveOutputPath(mainConfig, rows.SheetName())

	if dryRun {
		fmt.Printf("Dry run: would write %d bytes to %s\n", len(jsonBytes), outputPath)
	} else {
		fm := utils.NewFileManager(mainConfig.OutputDir, mainConfig.InputArchiveDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}

		if err := os.WriteFile(outputPath, jsonBytes, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		// =====================================================================
		// STEP 6: ARCHIVE INPUT
		// =====================================================================

		if mainConfig.InputArchiveDir != "" {
			archived, err := fm.ArchiveInputFile(mainConfig.InputFile)
			if err != nil {
				// Archival is housekeeping; the run already succeeded.
				logger.Warn("failed to archive input: %v", err)
			} else {
				logger.Debug("archived input to %s", archived)
			}
		}

		if mainConfig.SummaryLog != "" {
			summary := utils.ProcessingSummary{
				InputFile:     mainConfig.InputFile,
				OutputFile:    outputPath,
				RowsProcessed: stats.RowsProcessed,
				RowsSkipped:   stats.RowsSkipped,
				Postcodes:     stats.Postcodes,
				Elapsed:       time.Since(startTime),
			}
			if err := utils.WriteSummaryLog(summary, mainConfig.SummaryLog); err != nil {
				logger.Warn("failed to write summary log: %v", err)
			}
		}
	}

	// =========================================================================
	// STEP 7: PRINT SUMMARY
	// =========================================================================

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Rows processed:  %d\n", stats.RowsProcessed)
	fmt.Printf("Rows skipped:    %d\n", stats.RowsSkipped)
	fmt.Printf("Postcodes:       %d\n", stats.Postcodes)
	if !dryRun {
		fmt.Printf("Output:          %s\n", outputPath)
	}
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime))

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveOutputPath picks the output file path: a generated name when an
// output name format is configured, the configured file otherwise.
func resolveOutputPath(mainConfig *config.MainConfig, sheetName string) string {
	if mainConfig.OutputNameFormat != "" {
		name := utils.GenerateOutputFileName(mainConfig.OutputNameFormat, sheetName)
		return filepath.Join(mainConfig.OutputDir, name)
	}
	if filepath.IsAbs(mainConfig.OutputFile) {
		return mainConfig.OutputFile
	}
	return filepath.Join(mainConfig.OutputDir, mainConfig.OutputFile)
}
