// =============================================================================
// XLSX to JSON Aggregator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (aggregator)
//   ├── processCmd (aggregator process)
//   ├── inspectCmd (aggregator inspect)
//   ├── validateCmd (aggregator validate)
//   └── versionCmd (aggregator version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Delegating configuration loading to the individual commands
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "aggregator",

	Short: "XLSX to JSON Aggregator - Build a postcode price lookup from a spreadsheet",

	Long: `XLSX to JSON Aggregator reads a spreadsheet of property-price records keyed
by postal area and produces a nested JSON document for a front-end lookup:
postcode -> borough + year -> property type -> price.

Key Features:
  - Merges multiple rows sharing a postcode (first borough wins)
  - Derives a synthetic "all" average per postcode-year where absent
    (an unweighted mean across the property types that reported a price;
    per-type transaction counts are not available, so it is approximate)
  - Deterministic, insertion-ordered JSON output for reproducible diffs
  - Silent, counted skipping of rows with blank or "nan" postcodes

Example Usage:
  aggregator process                     # Aggregate the configured workbook
  aggregator process --input data.xlsx   # Aggregate a specific workbook
  aggregator inspect                     # Report sheets and type codes
  aggregator validate                    # Check columns without processing`,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// Persistent flags are available to this command and all subcommands.

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
