// =============================================================================
// XLSX to JSON Aggregator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xlsxparser
//   - aggregator
//   - jsonwriter
//   - validation
//
// The central design decision captured here is that spreadsheet cells are
// loosely typed at the source (a cell may hold text, a number, or nothing),
// so every cell is lifted into an explicit tagged variant (CellValue) before
// any business logic sees it. Conversion rules (trim, parse, truncate) are
// explicit functions rather than implicit coercions.
//
// The nested output structures (Document, PriceTable, PriceEntry) all
// preserve key insertion order so that serialization is byte-reproducible
// across runs of the same input.
//
// =============================================================================

package types

import (
	"strconv"
	"strings"
)

// =============================================================================
// CELL VALUES
// =============================================================================

// CellKind discriminates the variants of a CellValue.
type CellKind int

const (
	// CellMissing means the cell is absent or empty.
	CellMissing CellKind = iota

	// CellNumber means the cell holds a numeric value.
	CellNumber

	// CellText means the cell holds a non-numeric text value.
	CellText
)

// CellValue is the tagged variant for one spreadsheet cell.
// Exactly one of Num/Text is meaningful, selected by Kind.
type CellValue struct {
	// Kind selects the variant.
	Kind CellKind

	// Num is the numeric value when Kind is CellNumber.
	Num float64

	// Text is the raw text when Kind is CellText.
	Text string
}

// Missing returns the missing cell value.
func Missing() CellValue {
	return CellValue{Kind: CellMissing}
}

// Number returns a numeric cell value.
func Number(v float64) CellValue {
	return CellValue{Kind: CellNumber, Num: v}
}

// Text returns a text cell value.
func Text(s string) CellValue {
	return CellValue{Kind: CellText, Text: s}
}

// ParseCell lifts a raw cell string into a CellValue.
//
// RULES:
//   - A value that is empty after trimming is Missing.
//   - A value that parses as a float is Number.
//   - Anything else is Text (trimmed).
func ParseCell(raw string) CellValue {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Missing()
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(f)
	}
	return Text(trimmed)
}

// IsMissing reports whether the cell holds no value.
func (c CellValue) IsMissing() bool {
	return c.Kind == CellMissing
}

// String returns the cell rendered as text.
// Numbers are formatted with minimal digits; missing cells render as "".
func (c CellValue) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// Float returns the cell as a float64 and whether the conversion succeeded.
// Number cells convert directly; Text cells are parsed; Missing cells and
// unparseable text fail the conversion.
func (c CellValue) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Num, true
	case CellText:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// =============================================================================
// ROW RECORDS
// =============================================================================

// RowRecord is one observation unit from the source spreadsheet.
// It exists only during iteration; the aggregator folds it into the
// Document and discards it.
type RowRecord struct {
	// Fields maps trimmed column header names to typed cell values.
	Fields map[string]CellValue

	// SourceRow is the 1-based row number in the source sheet.
	// Useful for error reporting.
	SourceRow int
}

// Cell returns the value for the named column, or Missing if the column
// is absent from this row.
func (r RowRecord) Cell(column string) CellValue {
	if v, ok := r.Fields[column]; ok {
		return v
	}
	return Missing()
}

// =============================================================================
// PRICE ENTRY
// =============================================================================

// PriceEntry holds the price-by-type mapping for one (postcode, year) pair.
// Keys are property-type labels plus the synthetic key "all"; values are
// strictly positive whole-unit prices. Key order is insertion order.
type PriceEntry struct {
	labels []string
	values map[string]int
}

// NewPriceEntry returns an empty price entry.
func NewPriceEntry() *PriceEntry {
	return &PriceEntry{values: make(map[string]int)}
}

// Set writes a price for a label, overwriting any prior value.
// The label keeps its original insertion position on overwrite.
func (e *PriceEntry) Set(label string, price int) {
	if _, exists := e.values[label]; !exists {
		e.labels = append(e.labels, label)
	}
	e.values[label] = price
}

// Get returns the price for a label and whether it is present.
func (e *PriceEntry) Get(label string) (int, bool) {
	v, ok := e.values[label]
	return v, ok
}

// Has reports whether the label is present.
func (e *PriceEntry) Has(label string) bool {
	_, ok := e.values[label]
	return ok
}

// Labels returns the labels in insertion order.
func (e *PriceEntry) Labels() []string {
	return e.labels
}

// Len returns the number of labels present.
func (e *PriceEntry) Len() int {
	return len(e.labels)
}

// Values returns the prices in label insertion order.
func (e *PriceEntry) Values() []int {
	out := make([]int, 0, len(e.labels))
	for _, label := range e.labels {
		out = append(out, e.values[label])
	}
	return out
}

// =============================================================================
// PRICE TABLE
// =============================================================================

// PriceTable maps year strings (e.g. "2015") to price entries for one
// postcode. Key order is insertion order.
type PriceTable struct {
	years   []string
	entries map[string]*PriceEntry
}

// NewPriceTable returns an empty price table.
func NewPriceTable() *PriceTable {
	return &PriceTable{entries: make(map[string]*PriceEntry)}
}

// Entry returns the price entry for a year, creating it if absent.
func (t *PriceTable) Entry(year string) *PriceEntry {
	if e, ok := t.entries[year]; ok {
		return e
	}
	e := NewPriceEntry()
	t.years = append(t.years, year)
	t.entries[year] = e
	return e
}

// Get returns the price entry for a year without creating it.
func (t *PriceTable) Get(year string) (*PriceEntry, bool) {
	e, ok := t.entries[year]
	return e, ok
}

// Years returns the year keys in insertion order.
func (t *PriceTable) Years() []string {
	return t.years
}

// Len returns the number of years present.
func (t *PriceTable) Len() int {
	return len(t.years)
}

// =============================================================================
// POSTCODE RECORD
// =============================================================================

// PostcodeRecord holds the aggregated data for one postcode.
// Borough is set when the record is created (from the first row seen for
// the postcode) and is never modified afterwards.
type PostcodeRecord struct {
	// Borough is the administrative district for this postcode.
	Borough string

	// Prices maps year strings to per-type prices.
	Prices *PriceTable
}

// NewPostcodeRecord returns a record with the given borough and an empty
// price table.
func NewPostcodeRecord(borough string) *PostcodeRecord {
	return &PostcodeRecord{
		Borough: borough,
		Prices:  NewPriceTable(),
	}
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is the output of one aggregation run: a mapping from postcode
// to PostcodeRecord, in first-seen order. Every key is a non-empty,
// non-"nan" trimmed string; records are never removed during a run.
type Document struct {
	postcodes []string
	records   map[string]*PostcodeRecord
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{records: make(map[string]*PostcodeRecord)}
}

// Get returns the record for a postcode and whether it exists.
func (d *Document) Get(postcode string) (*PostcodeRecord, bool) {
	r, ok := d.records[postcode]
	return r, ok
}

// Put adds a record for a postcode. Adding an existing postcode replaces
// the record but keeps its original position.
func (d *Document) Put(postcode string, record *PostcodeRecord) {
	if _, exists := d.records[postcode]; !exists {
		d.postcodes = append(d.postcodes, postcode)
	}
	d.records[postcode] = record
}

// Postcodes returns the postcode keys in first-seen order.
func (d *Document) Postcodes() []string {
	return d.postcodes
}

// Len returns the number of postcodes in the document.
func (d *Document) Len() int {
	return len(d.postcodes)
}
