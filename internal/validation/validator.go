// =============================================================================
// XLSX to JSON Aggregator - Validation Module
// =============================================================================
//
// This module checks the source spreadsheet against the dataset bindings
// before (or instead of) processing. Validation here is deliberately
// shallow: the contract is column presence only. Cell-level anomalies are
// the aggregator's business and are absorbed row by row, never reported
// as validation errors.
//
// SEVERITIES:
//   - "error"   : a required identity column (postcode/borough/type) is
//                 missing; the aggregation would produce nothing useful
//   - "warning" : a year price column is missing; those writes simply
//                 never occur, which may be intentional for future years
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/config"
)

// =============================================================================
// VALIDATION ERROR STRUCTURE
// =============================================================================

// Severity levels for validation findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError describes one finding against the source sheet.
type ValidationError struct {
	// Column is the column header the finding concerns.
	Column string

	// Message is the human-readable description.
	Message string

	// Severity is SeverityError or SeverityWarning.
	Severity string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] column %q: %s", e.Severity, e.Column, e.Message)
}

// =============================================================================
// COLUMN CHECKS
// =============================================================================

// CheckColumns validates the sheet headers against the dataset bindings.
//
// PARAMETERS:
//   - headers: The trimmed header names from the sheet.
//   - dataset: The dataset bindings.
//
// RETURNS:
//   - All findings, errors first then warnings, each group in the order
//     the columns are configured.
func CheckColumns(headers []string, dataset config.DatasetConfig) []*ValidationError {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var findings []*ValidationError

	for _, column := range dataset.RequiredColumns() {
		if !present[column] {
			findings = append(findings, &ValidationError{
				Column:   column,
				Message:  "required column is missing from the header row",
				Severity: SeverityError,
			})
		}
	}

	for _, year := range dataset.Years() {
		column := dataset.PriceColumn(year)
		if !present[column] {
			findings = append(findings, &ValidationError{
				Column:   column,
				Message:  fmt.Sprintf("no price column for %d; that year will be absent from the output", year),
				Severity: SeverityWarning,
			})
		}
	}

	return findings
}

// HasErrors reports whether any finding carries error severity.
func HasErrors(findings []*ValidationError) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors renders findings as a multi-line report.
func FormatErrors(findings []*ValidationError) string {
	if len(findings) == 0 {
		return "No validation findings."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation finding(s):\n", len(findings)))
	for _, f := range findings {
		sb.WriteString("  - ")
		sb.WriteString(f.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteErrorLog writes findings to a log file, one per line, with a
// timestamped header.
func WriteErrorLog(findings []*ValidationError, filePath string) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# validation run %s\n", time.Now().Format(time.RFC3339)))
	for _, f := range findings {
		sb.WriteString(f.Error())
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(filePath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
