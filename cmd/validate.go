// =============================================================================
// XLSX to JSON Aggregator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the workbook's columns without writing any output. Missing required
// columns fail the command; missing year columns are reported as warnings
// only, since a year with no column is simply absent from the output.
//
// COMMAND USAGE:
//   aggregator validate [flags]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/config"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/validation"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/xlsxparser"
)

// validateInput overrides the configured input workbook.
var validateInput string

// validateLog is an optional file to write findings to.
var validateLog string

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and workbook columns without processing",
	Long: `The validate command loads the configuration, opens the workbook, and
checks that the configured identity columns (postcode, borough, property
type) and year price columns are present in the header row.

The command fails if a required identity column is missing. Missing year
columns are warnings: those years will just be absent from the output.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

// init registers the validate command and its flags.
func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(
		&validateInput,
		"input",
		"",
		"Path to the input workbook (overrides the configuration)",
	)

	validateCmd.Flags().StringVar(
		&validateLog,
		"log",
		"",
		"Write the findings to this file as well",
	)
}

// runValidate checks the workbook against the dataset bindings.
func runValidate() error {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if validateInput != "" {
		mainConfig.InputFile = validateInput
	}

	data, err := xlsxparser.Parse(mainConfig.InputFile, mainConfig.Dataset.SheetName)
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}

	findings := validation.CheckColumns(data.Headers, mainConfig.Dataset)
	fmt.Print(validation.FormatErrors(findings))

	if validateLog != "" {
		if err := validation.WriteErrorLog(findings, validateLog); err != nil {
			return err
		}
	}

	if validation.HasErrors(findings) {
		return fmt.Errorf("validation failed for %s", mainConfig.InputFile)
	}

	fmt.Printf("Workbook %s is processable.\n", mainConfig.InputFile)
	return nil
}
