// =============================================================================
// XLSX to JSON Aggregator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the XLSX to JSON Aggregator CLI. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   aggregator process       - Aggregate the workbook into the JSON document
//   aggregator inspect       - Report sheets, headers, and type codes
//   aggregator validate      - Validate columns without processing
//   aggregator version       - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
