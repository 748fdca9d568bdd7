// =============================================================================
// XLSX to JSON Aggregator - Workbook Parser
// =============================================================================
//
// This module is responsible for reading the source spreadsheet and turning
// it into a sequence of typed row records for the aggregator. The first
// row of the selected sheet is the header row; every subsequent row maps
// header name -> CellValue.
//
// The parser offers two modes:
//   - Parse: load the full sheet eagerly (convenient for small inputs and
//     for the inspect/validate commands)
//   - NewStreamingParser: iterate rows one at a time without holding the
//     sheet in memory (what the process pipeline uses)
//
// Failures here are the only fatal errors of a run: a workbook that cannot
// be opened or iterated aborts processing. Everything downstream absorbs
// bad data row by row.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/types"
)

// =============================================================================
// SHEET DATA STRUCTURE
// =============================================================================

// SheetData holds an eagerly parsed sheet.
type SheetData struct {
	// FilePath is the path to the source workbook.
	FilePath string

	// SheetName is the worksheet the data came from.
	SheetName string

	// Headers are the trimmed column names from the header row, in
	// spreadsheet order. Blank header cells are dropped.
	Headers []string

	// Rows are the data rows in sheet order.
	Rows []types.RowRecord
}

// =============================================================================
// EAGER PARSING
// =============================================================================

// Parse reads an entire sheet into memory.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//   - sheetName: The worksheet to read; empty selects the first sheet.
//
// RETURNS:
//   - A pointer to the SheetData struct.
//   - An error if the workbook cannot be opened or read.
func Parse(filePath, sheetName string) (*SheetData, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	headers := cleanHeaders(rows[0])

	data := &SheetData{
		FilePath:  filePath,
		SheetName: sheet,
		Headers:   headers,
	}

	for i := 1; i < len(rows); i++ {
		if isRowEmpty(rows[i]) {
			continue
		}
		data.Rows = append(data.Rows, makeRecord(headers, rows[i], i+1))
	}

	return data, nil
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser iterates the data rows of a sheet one at a time.
//
// USAGE:
//   p, err := xlsxparser.NewStreamingParser(path, sheet)
//   if err != nil { ... }
//   defer p.Close()
//   for p.Next() {
//       row := p.Row()
//       ...
//   }
//   if err := p.Err(); err != nil { ... }
type StreamingParser struct {
	file      *excelize.File
	rows      *excelize.Rows
	sheetName string
	headers   []string
	current   types.RowRecord
	rowNumber int
	err       error
}

// NewStreamingParser opens a workbook and positions the parser after the
// header row of the selected sheet.
func NewStreamingParser(filePath, sheetName string) (*StreamingParser, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet, err := resolveSheet(f, sheetName)
	if err != nil {
		f.Close()
		return nil, err
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	p := &StreamingParser{
		file:      f,
		rows:      rows,
		sheetName: sheet,
	}

	if err := p.readHeaders(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// readHeaders consumes the header row.
func (p *StreamingParser) readHeaders() error {
	if !p.rows.Next() {
		if err := p.rows.Error(); err != nil {
			return fmt.Errorf("failed to read header row: %w", err)
		}
		return fmt.Errorf("sheet %q has no header row", p.sheetName)
	}

	cols, err := p.rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}

	p.headers = cleanHeaders(cols)
	p.rowNumber = 1
	return nil
}

// Next advances to the next non-empty data row.
// It returns false when the sheet is exhausted or an error occurred;
// check Err afterwards to distinguish the two.
func (p *StreamingParser) Next() bool {
	for p.rows.Next() {
		p.rowNumber++

		cols, err := p.rows.Columns()
		if err != nil {
			p.err = fmt.Errorf("failed to read row %d: %w", p.rowNumber, err)
			return false
		}

		if isRowEmpty(cols) {
			continue
		}

		p.current = makeRecord(p.headers, cols, p.rowNumber)
		return true
	}

	if err := p.rows.Error(); err != nil {
		p.err = fmt.Errorf("row iteration failed: %w", err)
	}
	return false
}

// Row returns the current row record.
func (p *StreamingParser) Row() types.RowRecord {
	return p.current
}

// Headers returns the trimmed header names.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// SheetName returns the worksheet being read.
func (p *StreamingParser) SheetName() string {
	return p.sheetName
}

// Err returns the first error encountered during iteration, if any.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close releases the underlying workbook resources.
func (p *StreamingParser) Close() error {
	if p.rows != nil {
		p.rows.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveSheet picks the worksheet to read: the configured name if given,
// otherwise the first sheet in the workbook.
func resolveSheet(f *excelize.File, sheetName string) (string, error) {
	if sheetName != "" {
		if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
			return "", fmt.Errorf("sheet %q not found in workbook", sheetName)
		}
		return sheetName, nil
	}

	first := f.GetSheetName(0)
	if first == "" {
		return "", fmt.Errorf("workbook has no sheets")
	}
	return first, nil
}

// cleanHeaders trims header cells and drops trailing blanks.
func cleanHeaders(raw []string) []string {
	headers := make([]string, 0, len(raw))
	for _, h := range raw {
		headers = append(headers, strings.TrimSpace(h))
	}
	// Drop trailing empty headers so ragged sheets don't produce
	// phantom "" columns.
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}
	return headers
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// makeRecord builds a typed row record from raw cells.
// Cells beyond the header width are ignored; short rows leave the missing
// trailing columns absent (Cell reports them as Missing).
func makeRecord(headers, cells []string, sourceRow int) types.RowRecord {
	fields := make(map[string]types.CellValue, len(headers))
	for i, header := range headers {
		if header == "" {
			continue
		}
		if i < len(cells) {
			fields[header] = types.ParseCell(cells[i])
		}
	}
	return types.RowRecord{Fields: fields, SourceRow: sourceRow}
}

// =============================================================================
// INSPECTION HELPERS
// =============================================================================

// SheetNames lists the worksheets of a workbook.
func SheetNames(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// UniqueValues returns the distinct rendered values of one column with
// their occurrence counts, sorted by value.
func UniqueValues(data *SheetData, column string) ([]string, map[string]int) {
	counts := make(map[string]int)
	for _, row := range data.Rows {
		v := row.Cell(column)
		if v.IsMissing() {
			continue
		}
		counts[v.String()]++
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	return values, counts
}
