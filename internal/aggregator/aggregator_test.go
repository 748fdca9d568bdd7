package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/config"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/jsonwriter"
	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/types"
)

// testDataset returns the default London dataset bindings.
func testDataset() config.DatasetConfig {
	return config.DatasetConfig{
		PostcodeColumn:     "outward",
		BoroughColumn:      "borough",
		PropertyTypeColumn: "propertytype",
		TypeMap: map[string]string{
			"D": "detached",
			"F": "flat",
			"S": "semi",
			"T": "terraced",
		},
		YearStart:         2015,
		YearEnd:           2026,
		PriceColumnFormat: "%d_price",
	}
}

// row builds a RowRecord from string columns plus year prices.
func row(postcode, borough, typeCode string, prices map[string]types.CellValue) types.RowRecord {
	fields := map[string]types.CellValue{
		"outward":      types.Text(postcode),
		"borough":      types.Text(borough),
		"propertytype": types.Text(typeCode),
	}
	for col, v := range prices {
		fields[col] = v
	}
	return types.RowRecord{Fields: fields}
}

func TestAggregate_EndToEnd(t *testing.T) {
	rows := []types.RowRecord{
		row("SW1A 1AA", "Westminster", "D", map[string]types.CellValue{
			"2015_price": types.Number(500000),
		}),
		row("SW1A 1AA", "Westminster", "F", map[string]types.CellValue{
			"2015_price": types.Number(300000),
		}),
	}

	doc, stats := New(testDataset()).AggregateRows(rows)

	require.Equal(t, 1, doc.Len())
	assert.Equal(t, 2, stats.RowsProcessed)
	assert.Equal(t, 0, stats.RowsSkipped)
	assert.Equal(t, 1, stats.Postcodes)

	record, ok := doc.Get("SW1A 1AA")
	require.True(t, ok)
	assert.Equal(t, "Westminster", record.Borough)

	entry, ok := record.Prices.Get("2015")
	require.True(t, ok)
	assert.Equal(t, []string{"detached", "flat", "all"}, entry.Labels())

	detached, _ := entry.Get("detached")
	flat, _ := entry.Get("flat")
	all, _ := entry.Get("all")
	assert.Equal(t, 500000, detached)
	assert.Equal(t, 300000, flat)
	assert.Equal(t, 400000, all)
}

func TestAggregate_SkipsInvalidPostcodes(t *testing.T) {
	tests := []struct {
		name     string
		postcode string
	}{
		{"blank", ""},
		{"whitespace only", "   "},
		{"lowercase nan", "nan"},
		{"uppercase nan", "NAN"},
		{"mixed case nan", "NaN"},
		{"padded nan", "  nan  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []types.RowRecord{
				row(tt.postcode, "Camden", "F", map[string]types.CellValue{
					"2015_price": types.Number(250000),
				}),
			}

			doc, stats := New(testDataset()).AggregateRows(rows)

			assert.Equal(t, 0, doc.Len())
			assert.Equal(t, 0, stats.RowsProcessed)
			assert.Equal(t, 1, stats.RowsSkipped)
		})
	}
}

func TestAggregate_UnmappedTypeCodeIsOther(t *testing.T) {
	rows := []types.RowRecord{
		row("E1", "Tower Hamlets", "X", map[string]types.CellValue{
			"2016_price": types.Number(410000),
		}),
	}

	doc, _ := New(testDataset()).AggregateRows(rows)

	record, ok := doc.Get("E1")
	require.True(t, ok)
	entry, ok := record.Prices.Get("2016")
	require.True(t, ok)

	assert.True(t, entry.Has("other"))
	price, _ := entry.Get("other")
	assert.Equal(t, 410000, price)
	// The unknown code must never land under a canonical label.
	for _, label := range []string{"detached", "flat", "semi", "terraced"} {
		assert.False(t, entry.Has(label))
	}
}

// The source data occasionally lists the same postcode under different
// borough spellings. The first row seen wins; whether that is the right
// reading (versus last-wins or most-common-wins) is an open product
// question, so this test pins the current behavior deliberately.
func TestAggregate_FirstBoroughWins(t *testing.T) {
	rows := []types.RowRecord{
		row("N1", "Islington", "F", map[string]types.CellValue{
			"2015_price": types.Number(450000),
		}),
		row("N1", "Hackney", "T", map[string]types.CellValue{
			"2015_price": types.Number(520000),
		}),
		row("N1", "ISLINGTON", "D", nil),
	}

	doc, _ := New(testDataset()).AggregateRows(rows)

	record, ok := doc.Get("N1")
	require.True(t, ok)
	assert.Equal(t, "Islington", record.Borough)
}

func TestAggregate_IgnoresUnusableCells(t *testing.T) {
	rows := []types.RowRecord{
		row("SE1", "Southwark", "F", map[string]types.CellValue{
			"2015_price": types.Number(0),
			"2016_price": types.Number(-5),
			"2017_price": types.Text("N/A"),
			"2018_price": types.Missing(),
			// 2019_price absent entirely
			"2020_price": types.Number(0.75), // truncates to zero
		}),
	}

	doc, stats := New(testDataset()).AggregateRows(rows)

	// The row itself is processed; only its cells are unusable.
	assert.Equal(t, 1, stats.RowsProcessed)

	record, ok := doc.Get("SE1")
	require.True(t, ok)
	assert.Equal(t, 0, record.Prices.Len())
}

func TestAggregate_TruncatesPricesToWholeUnits(t *testing.T) {
	rows := []types.RowRecord{
		row("W1", "Westminster", "F", map[string]types.CellValue{
			"2015_price": types.Number(1999.99),
		}),
	}

	doc, _ := New(testDataset()).AggregateRows(rows)

	record, _ := doc.Get("W1")
	entry, _ := record.Prices.Get("2015")
	price, _ := entry.Get("flat")
	assert.Equal(t, 1999, price)
}

func TestAggregate_NumericTextCellsParse(t *testing.T) {
	rows := []types.RowRecord{
		row("W2", "Westminster", "S", map[string]types.CellValue{
			"2015_price": types.Text("365000.4"),
		}),
	}

	doc, _ := New(testDataset()).AggregateRows(rows)

	record, _ := doc.Get("W2")
	entry, _ := record.Prices.Get("2015")
	price, ok := entry.Get("semi")
	require.True(t, ok)
	assert.Equal(t, 365000, price)
}

func TestAggregate_LastWriteWinsPerYearAndType(t *testing.T) {
	rows := []types.RowRecord{
		row("EC1", "Islington", "F", map[string]types.CellValue{
			"2015_price": types.Number(300000),
		}),
		row("EC1", "Islington", "F", map[string]types.CellValue{
			"2015_price": types.Number(310000),
		}),
	}

	doc, _ := New(testDataset()).AggregateRows(rows)

	record, _ := doc.Get("EC1")
	entry, _ := record.Prices.Get("2015")
	price, _ := entry.Get("flat")
	// No averaging across duplicate rows of the same type.
	assert.Equal(t, 310000, price)
}

func TestFinalize_AllIsUnweightedMean(t *testing.T) {
	rows := []types.RowRecord{
		row("NW1", "Camden", "F", map[string]types.CellValue{
			"2015_price": types.Number(300000),
		}),
		row("NW1", "Camden", "T", map[string]types.CellValue{
			"2015_price": types.Number(250000),
		}),
	}

	doc, _ := New(testDataset()).AggregateRows(rows)

	record, _ := doc.Get("NW1")
	entry, _ := record.Prices.Get("2015")
	all, ok := entry.Get("all")
	require.True(t, ok)
	assert.Equal(t, 275000, all)
}

// The mean is rounded with math.Round, Go's default rounding: halves
// round away from zero, so a mean of x.5 rounds up.
func TestFinalize_RoundingConvention(t *testing.T) {
	rows := []types.RowRecord{
		row("SW2", "Lambeth", "F", map[string]types.CellValue{
			"2015_price": types.Number(100001),
		}),
		row("SW2", "Lambeth", "T", map[string]types.CellValue{
			"2015_price": types.Number(100002),
		}),
	}

	doc, _ := New(testDataset()).AggregateRows(rows)

	record, _ := doc.Get("SW2")
	entry, _ := record.Prices.Get("2015")
	all, _ := entry.Get("all")
	// mean 100001.5 -> 100002
	assert.Equal(t, 100002, all)
}

func TestFinalize_PreservesExistingAll(t *testing.T) {
	dataset := testDataset()
	dataset.TypeMap["A"] = "all"

	rows := []types.RowRecord{
		row("SW3", "Kensington and Chelsea", "A", map[string]types.CellValue{
			"2015_price": types.Number(900000),
		}),
		row("SW3", "Kensington and Chelsea", "F", map[string]types.CellValue{
			"2015_price": types.Number(600000),
		}),
	}

	doc, _ := New(dataset).AggregateRows(rows)

	record, _ := doc.Get("SW3")
	entry, _ := record.Prices.Get("2015")
	all, _ := entry.Get("all")
	// The source-provided "all" is kept; no mean is derived over it.
	assert.Equal(t, 900000, all)
}

func TestAggregate_EmptyInput(t *testing.T) {
	doc, stats := New(testDataset()).AggregateRows(nil)

	assert.Equal(t, 0, doc.Len())
	assert.Equal(t, 0, stats.RowsProcessed)
	assert.Equal(t, 0, stats.RowsSkipped)
}

func TestAggregate_MissingColumnsYieldEmptyResult(t *testing.T) {
	// Rows exposing none of the configured columns: every postcode reads
	// as missing, so every row is skipped. Not an error.
	rows := []types.RowRecord{
		{Fields: map[string]types.CellValue{"unrelated": types.Text("x")}},
		{Fields: map[string]types.CellValue{"unrelated": types.Text("y")}},
	}

	doc, stats := New(testDataset()).AggregateRows(rows)

	assert.Equal(t, 0, doc.Len())
	assert.Equal(t, 2, stats.RowsSkipped)
}

func TestAggregate_Idempotent(t *testing.T) {
	rows := []types.RowRecord{
		row("SW1A 1AA", "Westminster", "D", map[string]types.CellValue{
			"2015_price": types.Number(500000),
			"2016_price": types.Number(510000),
		}),
		row("SW1A 1AA", "Westminster", "F", map[string]types.CellValue{
			"2015_price": types.Number(300000),
		}),
		row("N1", "Islington", "T", map[string]types.CellValue{
			"2016_price": types.Number(475000),
		}),
		row("nan", "Nowhere", "F", map[string]types.CellValue{
			"2015_price": types.Number(1),
		}),
	}

	agg := New(testDataset())

	first, _, err := agg.Aggregate(NewSliceSource(rows))
	require.NoError(t, err)
	second, _, err := agg.Aggregate(NewSliceSource(rows))
	require.NoError(t, err)

	firstJSON, err := jsonwriter.Generate(first)
	require.NoError(t, err)
	secondJSON, err := jsonwriter.Generate(second)
	require.NoError(t, err)

	assert.Equal(t, firstJSON, secondJSON)
}
