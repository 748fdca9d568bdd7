// =============================================================================
// XLSX to JSON Aggregator - JSON Writer Module
// =============================================================================
//
// This module serializes the aggregated Document as a UTF-8 JSON text with
// deterministic key ordering. Ordering matters: the document sink promises
// reproducible diffs across runs of the same input, so keys are written in
// insertion order rather than the sorted order encoding/json imposes on
// maps. Scalar strings are still escaped through encoding/json so the
// output is always valid JSON.
//
// OUTPUT STRUCTURE:
//
//   {
//     "SW1A 1AA": {                    <- postcode, first-seen order
//       "borough": "Westminster",
//       "prices": {
//         "2015": {                    <- year, first-seen order
//           "detached": 500000,        <- type label, first-seen order
//           "flat": 300000,
//           "all": 400000              <- synthetic average, appended last
//         }
//       }
//     }
//   }
//
// Two-space indentation is the default presentation; it is configurable
// and not part of the contract.
//
// =============================================================================

package jsonwriter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/types"
)

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for JSON generation.
type GenerateOptions struct {
	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string

	// TrailingNewline appends a final newline to the output.
	// Default: true
	TrailingNewline bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:          "  ",
		TrailingNewline: true,
	}
}

// =============================================================================
// GENERATION FUNCTIONS
// =============================================================================

// Generate serializes a document with the default options.
func Generate(doc *types.Document) ([]byte, error) {
	return GenerateWithOptions(doc, DefaultGenerateOptions())
}

// GenerateWithOptions serializes a document with custom options.
//
// PARAMETERS:
//   - doc: The aggregated document.
//   - options: The generation options.
//
// RETURNS:
//   - The JSON document as a byte slice.
//   - An error if a key or value cannot be encoded.
func GenerateWithOptions(doc *types.Document, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	if err := writeDocument(&buffer, doc, options); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}

	if options.TrailingNewline {
		buffer.WriteByte('\n')
	}

	return buffer.Bytes(), nil
}

// =============================================================================
// DOCUMENT WALKING
// =============================================================================

// writeDocument writes the top-level postcode object.
func writeDocument(buffer *bytes.Buffer, doc *types.Document, options GenerateOptions) error {
	postcodes := doc.Postcodes()
	if len(postcodes) == 0 {
		buffer.WriteString("{}")
		return nil
	}

	buffer.WriteByte('{')
	for i, postcode := range postcodes {
		if i > 0 {
			buffer.WriteByte(',')
		}
		buffer.WriteByte('\n')

		writeIndent(buffer, options.Indent, 1)
		if err := writeKey(buffer, postcode); err != nil {
			return err
		}

		record, _ := doc.Get(postcode)
		if err := writeRecord(buffer, record, options); err != nil {
			return err
		}
	}
	buffer.WriteByte('\n')
	buffer.WriteByte('}')

	return nil
}

// writeRecord writes one postcode record: borough plus the price table.
func writeRecord(buffer *bytes.Buffer, record *types.PostcodeRecord, options GenerateOptions) error {
	buffer.WriteByte('{')

	buffer.WriteByte('\n')
	writeIndent(buffer, options.Indent, 2)
	if err := writeKey(buffer, "borough"); err != nil {
		return err
	}
	if err := writeString(buffer, record.Borough); err != nil {
		return err
	}
	buffer.WriteByte(',')

	buffer.WriteByte('\n')
	writeIndent(buffer, options.Indent, 2)
	if err := writeKey(buffer, "prices"); err != nil {
		return err
	}
	if err := writePriceTable(buffer, record.Prices, options); err != nil {
		return err
	}

	buffer.WriteByte('\n')
	writeIndent(buffer, options.Indent, 1)
	buffer.WriteByte('}')

	return nil
}

// writePriceTable writes the year -> entry object.
func writePriceTable(buffer *bytes.Buffer, table *types.PriceTable, options GenerateOptions) error {
	years := table.Years()
	if len(years) == 0 {
		buffer.WriteString("{}")
		return nil
	}

	buffer.WriteByte('{')
	for i, year := range years {
		if i > 0 {
			buffer.WriteByte(',')
		}
		buffer.WriteByte('\n')

		writeIndent(buffer, options.Indent, 3)
		if err := writeKey(buffer, year); err != nil {
			return err
		}

		entry, _ := table.Get(year)
		if err := writePriceEntry(buffer, entry, options); err != nil {
			return err
		}
	}
	buffer.WriteByte('\n')
	writeIndent(buffer, options.Indent, 2)
	buffer.WriteByte('}')

	return nil
}

// writePriceEntry writes the label -> price object.
func writePriceEntry(buffer *bytes.Buffer, entry *types.PriceEntry, options GenerateOptions) error {
	labels := entry.Labels()
	if len(labels) == 0 {
		buffer.WriteString("{}")
		return nil
	}

	buffer.WriteByte('{')
	for i, label := range labels {
		if i > 0 {
			buffer.WriteByte(',')
		}
		buffer.WriteByte('\n')

		writeIndent(buffer, options.Indent, 4)
		if err := writeKey(buffer, label); err != nil {
			return err
		}

		price, _ := entry.Get(label)
		buffer.WriteString(strconv.Itoa(price))
	}
	buffer.WriteByte('\n')
	writeIndent(buffer, options.Indent, 3)
	buffer.WriteByte('}')

	return nil
}

// =============================================================================
// LOW-LEVEL HELPERS
// =============================================================================

// writeIndent writes level repetitions of the indent unit.
func writeIndent(buffer *bytes.Buffer, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}
}

// writeKey writes an escaped object key followed by ": ".
func writeKey(buffer *bytes.Buffer, key string) error {
	if err := writeString(buffer, key); err != nil {
		return err
	}
	buffer.WriteString(": ")
	return nil
}

// writeString writes a JSON-escaped string value.
// encoding/json handles escaping; ordering is the only thing it cannot
// do for us, and ordering is handled by the walkers above.
func writeString(buffer *bytes.Buffer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode string %q: %w", s, err)
	}
	buffer.Write(encoded)
	return nil
}
