package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"plain integer", "150", f(150)},
		{"decimal", "2.5", f(2.5)},
		{"currency with separators", "$1,234.50", f(1234.5)},
		{"currency no cents", "$950", f(950)},
		{"internal spaces", "1 234", f(1234)},
		{"leading and trailing whitespace", "  850.25  ", f(850.25)},
		{"negative", "-45.5", f(-45.5)},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"placeholder text", "N/A", nil},
		{"vendor placeholder", "not disclosed", nil},
		{"dash placeholder", "-", nil},
		{"nan literal", "NaN", nil},
		{"infinity literal", "Inf", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestCoercionStatsCountsOnlyNonEmptyFailures(t *testing.T) {
	var stats CoercionStats

	assert.Nil(t, stats.coerce(""))
	assert.Nil(t, stats.coerce("   "))
	assert.Equal(t, 0, stats.NullFromNonEmpty, "empty cells are not coercion failures")

	assert.Nil(t, stats.coerce("call for pricing"))
	assert.Equal(t, 1, stats.NullFromNonEmpty)

	require.NotNil(t, stats.coerce("$1,200"))
	assert.Equal(t, 1, stats.NullFromNonEmpty, "successful parses leave the counter alone")

	assert.Nil(t, stats.coerce("TBD"))
	assert.Equal(t, 2, stats.NullFromNonEmpty)
}

func f(v float64) *float64 { return &v }
