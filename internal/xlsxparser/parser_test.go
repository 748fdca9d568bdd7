package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/XLSX-to-JSON-aggregation/internal/types"
)

// writeWorkbook creates a workbook with one sheet of the given rows and
// returns its path.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{" outward ", "borough", "propertytype", "2015_price"},
		{"SW1A 1AA", "Westminster", "D", 500000},
		{"", "", "", ""}, // blank row, skipped
		{"N1", "Islington", "F", "N/A"},
	})

	data, err := Parse(path, "")
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", data.SheetName)
	assert.Equal(t, []string{"outward", "borough", "propertytype", "2015_price"}, data.Headers)
	require.Len(t, data.Rows, 2)

	first := data.Rows[0]
	assert.Equal(t, types.Text("SW1A 1AA"), first.Cell("outward"))
	assert.Equal(t, 2, first.SourceRow)

	price, ok := first.Cell("2015_price").Float()
	require.True(t, ok)
	assert.Equal(t, float64(500000), price)

	second := data.Rows[1]
	assert.Equal(t, types.Text("N/A"), second.Cell("2015_price"))
	assert.Equal(t, 4, second.SourceRow)
}

func TestParse_NamedSheet(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Prices")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Prices", "A1", &[]interface{}{"outward"}))
	require.NoError(t, f.SetSheetRow("Prices", "A2", &[]interface{}{"E1"}))

	path := filepath.Join(t.TempDir(), "named.xlsx")
	require.NoError(t, f.SaveAs(path))
	f.Close()

	data, err := Parse(path, "Prices")
	require.NoError(t, err)
	assert.Equal(t, "Prices", data.SheetName)
	require.Len(t, data.Rows, 1)

	_, err = Parse(path, "NoSuchSheet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	require.Error(t, err)
}

func TestStreamingParser_MatchesEagerParse(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"outward", "borough", "propertytype", "2015_price", "2016_price"},
		{"SW1A 1AA", "Westminster", "D", 500000, 510000},
		{"N1", "Islington", "F", nil, 475000},
		{"nan", "Nowhere", "T", 1, 2},
	})

	eager, err := Parse(path, "")
	require.NoError(t, err)

	p, err := NewStreamingParser(path, "")
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, eager.Headers, p.Headers())
	assert.Equal(t, "Sheet1", p.SheetName())

	var streamed []types.RowRecord
	for p.Next() {
		streamed = append(streamed, p.Row())
	}
	require.NoError(t, p.Err())

	assert.Equal(t, eager.Rows, streamed)
}

func TestStreamingParser_ShortRowsReadAsMissing(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"outward", "borough", "propertytype", "2015_price"},
		{"SE1", "Southwark"},
	})

	p, err := NewStreamingParser(path, "")
	require.NoError(t, err)
	defer p.Close()

	require.True(t, p.Next())
	row := p.Row()
	assert.Equal(t, types.Text("SE1"), row.Cell("outward"))
	assert.True(t, row.Cell("propertytype").IsMissing())
	assert.True(t, row.Cell("2015_price").IsMissing())

	assert.False(t, p.Next())
	require.NoError(t, p.Err())
}

func TestSheetNames(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{{"outward"}})

	sheets, err := SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1"}, sheets)
}

func TestUniqueValues(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"outward", "propertytype"},
		{"N1", "F"},
		{"N2", "F"},
		{"N3", "D"},
		{"N4", ""},
	})

	data, err := Parse(path, "")
	require.NoError(t, err)

	values, counts := UniqueValues(data, "propertytype")
	assert.Equal(t, []string{"D", "F"}, values)
	assert.Equal(t, 2, counts["F"])
	assert.Equal(t, 1, counts["D"])
}
