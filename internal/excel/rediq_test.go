package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rediqRow lays out values at the subject sheet's fixed column positions.
func rediqRow(plan, bed, bath, sqft, units, marketRent, inPlace, leases string) []interface{} {
	row := make([]interface{}, 19)
	row[rediqColFloorPlan] = plan
	row[rediqColBedCount] = bed
	row[rediqColBathCount] = bath
	row[rediqColNetSqFt] = sqft
	row[rediqColUnits] = units
	row[rediqColMarketRent] = marketRent
	row[rediqColInPlace] = inPlace
	row[rediqColLeases] = leases
	return row
}

func rediqHeader() []interface{} {
	return rediqRow("Floor Plan", "Bed", "Bath", "Net SF", "Units", "Market Rent", "In-Place Rent", "Recent Leases")
}

func TestRedIQParse(t *testing.T) {
	data := buildWorkbook(t, "Floor Plan Summary", [][]interface{}{
		{"Subject Property Report"},
		rediqHeader(),
		rediqRow("A1 - 1x1", "1", "1", "720", "48", "$1,350", "$1,290", "1290, 1310, 1285"),
		rediqRow("B2 - 2x2", "2", "2", "1050", "36", "$1,895", "$1,840", ""),
	})

	result, err := (&RedIQParser{}).Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "Floor Plan Summary", result.SheetName)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	assert.Equal(t, "A1 - 1x1", first.FloorPlanName)
	assert.Empty(t, first.PropertyName, "subject sheets carry no property column")
	require.NotNil(t, first.MarketRent)
	assert.Equal(t, 1350.0, *first.MarketRent)
	require.NotNil(t, first.InPlaceRent)
	assert.Equal(t, 1290.0, *first.InPlaceRent)
	assert.Equal(t, "1290, 1310, 1285", first.RecentLeases)
}

func TestRedIQParseSkipsAggregateRows(t *testing.T) {
	data := buildWorkbook(t, "Floor Plan Summary", [][]interface{}{
		rediqHeader(),
		rediqRow("A1", "1", "1", "720", "48", "1350", "1290", ""),
		rediqRow("Total / Avg", "", "", "", "84", "", "", ""),
		rediqRow("Average", "", "", "", "", "1622", "", ""),
		rediqRow("B2", "2", "2", "1050", "36", "1895", "1840", ""),
	})

	result, err := (&RedIQParser{}).Parse(data)
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "A1", result.Rows[0].FloorPlanName)
	assert.Equal(t, "B2", result.Rows[1].FloorPlanName)
}

func TestRedIQHeaderMatchIsExactButCaseInsensitive(t *testing.T) {
	data := buildWorkbook(t, "Floor Plan Summary", [][]interface{}{
		rediqRow("FLOOR PLAN", "", "", "", "", "", "", ""),
		rediqRow("A1", "1", "1", "720", "48", "1350", "1290", ""),
	})

	result, err := (&RedIQParser{}).Parse(data)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "A1", result.Rows[0].FloorPlanName)
}

func TestRedIQParseMissingSheet(t *testing.T) {
	data := buildWorkbook(t, "Floor Plan Data", [][]interface{}{
		aiqHeader(),
	})

	_, err := (&RedIQParser{}).Parse(data)
	assert.Error(t, err, "a competitor workbook is not a subject summary")
}
