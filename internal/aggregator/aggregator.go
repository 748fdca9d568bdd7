// =============================================================================
// XLSX to JSON Aggregator - Aggregation Module
// =============================================================================
//
// This module contains the core aggregation logic: a single fold over an
// ordered sequence of row records into a Document keyed by postcode.
//
// AGGREGATION PIPELINE (per row, in input order):
//   1. Extract and trim postcode, borough, and property type code
//   2. Skip rows with a blank or "nan" postcode (counted, never an error)
//   3. Resolve the property type label ("other" for unmapped codes)
//   4. Create the postcode record on first sight (its borough is fixed
//      from that row and never changed by later rows)
//   5. For each configured year, write the truncated price if strictly
//      positive (last write for the same year+type wins)
//
// FINALIZE PASS (once, after all rows):
//   For every (postcode, year) entry that is non-empty and lacks "all",
//   derive all = round(mean of the present type values). This is an
//   unweighted mean across whatever types reported a price that year --
//   an approximation, since per-type transaction counts are not available
//   at this layer. It is preserved as-is rather than weighted.
//
// ERROR POLICY:
//   Only a failure of the row source itself aborts a run. Malformed
//   cells (zero, negative, non-numeric, missing) are absorbed locally
//   and never stop aggregation of the remaining input.
//
// =============================================================================

package aggregator

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/config"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/types"
)

// OtherTypeLabel is the label for property type codes absent from the
// configured type map.
const OtherTypeLabel = "other"

// AllTypeLabel is the synthetic key carrying the cross-type average.
const AllTypeLabel = "all"

// =============================================================================
// ROW SOURCE
// =============================================================================

// RowSource supplies row records one at a time, in input order.
// xlsxparser.StreamingParser satisfies this interface.
type RowSource interface {
	// Next advances to the next row, returning false at the end of the
	// sequence or on error.
	Next() bool

	// Row returns the current row record.
	Row() types.RowRecord

	// Err returns the error that stopped iteration, or nil at a clean end.
	Err() error
}

// SliceSource adapts an in-memory slice of rows to the RowSource
// interface. Used by tests and by callers that already hold the rows.
type SliceSource struct {
	rows []types.RowRecord
	pos  int
}

// NewSliceSource returns a source over the given rows.
func NewSliceSource(rows []types.RowRecord) *SliceSource {
	return &SliceSource{rows: rows}
}

// Next advances to the next row.
func (s *SliceSource) Next() bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

// Row returns the current row.
func (s *SliceSource) Row() types.RowRecord {
	return s.rows[s.pos-1]
}

// Err always returns nil; a slice cannot fail to iterate.
func (s *SliceSource) Err() error {
	return nil
}

// =============================================================================
// STATS STRUCTURE
// =============================================================================

// Stats describes one aggregation run. Informational only; nothing
// downstream depends on these counts.
type Stats struct {
	// RowsProcessed is the number of rows folded into the document
	// (rows remaining after skips).
	RowsProcessed int

	// RowsSkipped is the number of rows dropped for a blank or "nan"
	// postcode.
	RowsSkipped int

	// Postcodes is the number of distinct postcodes produced.
	Postcodes int

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// LOGGER
// =============================================================================

// Logger is the minimal logging interface the aggregator needs.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stderrLogger writes leveled lines to stderr. Debug lines are dropped
// unless verbose is set.
type stderrLogger struct {
	verbose bool
}

// NewStderrLogger returns the default logger implementation.
func NewStderrLogger(verbose bool) Logger {
	return &stderrLogger{verbose: verbose}
}

func (l *stderrLogger) Debug(msg string, args ...interface{}) {
	if l.verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+msg+"\n", args...)
	}
}

func (l *stderrLogger) Info(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[INFO]  "+msg+"\n", args...)
}

func (l *stderrLogger) Warn(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[WARN]  "+msg+"\n", args...)
}

func (l *stderrLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
}

// =============================================================================
// AGGREGATOR STRUCTURE
// =============================================================================

// Aggregator folds row records into a Document according to the dataset
// bindings. It holds no state between runs; one Aggregate call owns its
// in-progress document exclusively.
type Aggregator struct {
	dataset config.DatasetConfig
	logger  Logger
}

// New creates an Aggregator for the given dataset bindings.
func New(dataset config.DatasetConfig) *Aggregator {
	return &Aggregator{
		dataset: dataset,
		logger:  NewStderrLogger(false),
	}
}

// SetLogger replaces the default logger.
func (a *Aggregator) SetLogger(logger Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// =============================================================================
// MAIN AGGREGATION FUNCTION
// =============================================================================

// Aggregate consumes the row source exactly once, start to finish, and
// returns the finished document with run statistics.
//
// The only error it returns is a failure of the source itself; in that
// case the partial document is discarded and no output should be written.
func (a *Aggregator) Aggregate(rows RowSource) (*types.Document, Stats, error) {
	startTime := time.Now()

	doc := types.NewDocument()
	var stats Stats

	for rows.Next() {
		if a.consumeRow(doc, rows.Row()) {
			stats.RowsProcessed++
		} else {
			stats.RowsSkipped++
		}
	}

	if err := rows.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("row source failed: %w", err)
	}

	a.finalize(doc)

	stats.Postcodes = doc.Len()
	stats.ProcessingTime = time.Since(startTime)

	a.logger.Debug("aggregated %d rows (%d skipped) into %d postcodes",
		stats.RowsProcessed, stats.RowsSkipped, stats.Postcodes)

	return doc, stats, nil
}

// AggregateRows aggregates an in-memory slice of rows.
func (a *Aggregator) AggregateRows(rows []types.RowRecord) (*types.Document, Stats) {
	doc, stats, _ := a.Aggregate(NewSliceSource(rows))
	return doc, stats
}

// =============================================================================
// PER-ROW PROCESSING
// =============================================================================

// consumeRow folds one row into the document. It reports whether the row
// was processed (false means it was skipped for an invalid postcode).
func (a *Aggregator) consumeRow(doc *types.Document, row types.RowRecord) bool {
	postcode := strings.TrimSpace(row.Cell(a.dataset.PostcodeColumn).String())
	borough := strings.TrimSpace(row.Cell(a.dataset.BoroughColumn).String())
	typeCode := strings.TrimSpace(row.Cell(a.dataset.PropertyTypeColumn).String())

	// A blank postcode, or the literal "nan" a lossy export leaves
	// behind, identifies nothing. Drop the row without error.
	if postcode == "" || strings.EqualFold(postcode, "nan") {
		a.logger.Debug("row %d skipped: invalid postcode %q", row.SourceRow, postcode)
		return false
	}

	label := a.typeLabel(typeCode)

	record, exists := doc.Get(postcode)
	if !exists {
		// First row for this postcode fixes the borough. Later rows may
		// carry a different borough value; they are intentionally ignored.
		record = types.NewPostcodeRecord(borough)
		doc.Put(postcode, record)
	}

	for _, year := range a.dataset.Years() {
		value := row.Cell(a.dataset.PriceColumn(year))
		if value.IsMissing() {
			continue
		}

		f, ok := value.Float()
		if !ok {
			// Present but not numeric ("N/A" and friends). Ignored.
			a.logger.Debug("row %d: non-numeric price %q for %d, ignored",
				row.SourceRow, value.String(), year)
			continue
		}

		price := int(f) // truncate toward zero, whole units
		if price <= 0 {
			continue
		}

		record.Prices.Entry(strconv.Itoa(year)).Set(label, price)
	}

	return true
}

// typeLabel resolves a property type code to its canonical label.
// Unmapped codes resolve to "other"; this is never an error.
func (a *Aggregator) typeLabel(code string) string {
	if label, ok := a.dataset.TypeMap[code]; ok {
		return label
	}
	return OtherTypeLabel
}

// =============================================================================
// FINALIZE PASS
// =============================================================================

// finalize derives the synthetic "all" entry for every (postcode, year)
// that has at least one type price and no "all" yet.
//
// The mean is unweighted across the present type values and rounded with
// math.Round (half away from zero, the Go runtime default).
func (a *Aggregator) finalize(doc *types.Document) {
	for _, postcode := range doc.Postcodes() {
		record, _ := doc.Get(postcode)
		for _, year := range record.Prices.Years() {
			entry, _ := record.Prices.Get(year)
			if entry.Len() == 0 || entry.Has(AllTypeLabel) {
				continue
			}

			sum := 0
			for _, v := range entry.Values() {
				sum += v
			}
			mean := float64(sum) / float64(entry.Len())
			entry.Set(AllTypeLabel, int(math.Round(mean)))
		}
	}
}
