// =============================================================================
// XLSX to JSON Aggregator - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command, a read-only report of the source
// workbook: its sheets, the header row of the selected sheet, and the
// distinct property type codes with how often each occurs. Operators use
// it to verify the type map and column bindings before processing.
//
// COMMAND USAGE:
//   aggregator inspect [flags]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/config"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/xlsxparser"
)

// inspectInput overrides the configured input workbook.
var inspectInput string

// inspectCmd represents the 'inspect' command.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Report sheets, headers, and unique property type codes",
	Long: `The inspect command opens the workbook without processing it and reports:
  - the worksheet names
  - the header row of the selected sheet
  - the unique property type codes and their row counts

Codes not covered by the configured type map will aggregate under "other".`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect()
	},
}

// init registers the inspect command and its flags.
func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(
		&inspectInput,
		"input",
		"",
		"Path to the input workbook (overrides the configuration)",
	)
}

// runInspect produces the workbook report.
func runInspect() error {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if inspectInput != "" {
		mainConfig.InputFile = inspectInput
	}

	sheets, err := xlsxparser.SheetNames(mainConfig.InputFile)
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}

	fmt.Printf("Workbook: %s\n", mainConfig.InputFile)
	fmt.Println("Sheets:")
	for _, s := range sheets {
		fmt.Printf("  - %s\n", s)
	}

	data, err := xlsxparser.Parse(mainConfig.InputFile, mainConfig.Dataset.SheetName)
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}

	fmt.Printf("\nSheet %q: %d data row(s)\n", data.SheetName, len(data.Rows))
	fmt.Println("Headers:")
	for _, h := range data.Headers {
		fmt.Printf("  - %s\n", h)
	}

	values, counts := xlsxparser.UniqueValues(data, mainConfig.Dataset.PropertyTypeColumn)
	fmt.Printf("\nUnique property types (%s):\n", mainConfig.Dataset.PropertyTypeColumn)
	if len(values) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	for _, v := range values {
		label, mapped := mainConfig.Dataset.TypeMap[v]
		if !mapped {
			label = "other"
		}
		fmt.Printf("  %-4s -> %-10s (%d row(s))\n", v, label, counts[v])
	}

	return nil
}
