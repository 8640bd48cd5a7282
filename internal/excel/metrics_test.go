package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRentPerSquareFoot(t *testing.T) {
	got := RentPerSquareFoot(f(1000), f(500))
	require.NotNil(t, got)
	assert.Equal(t, 2.0, *got)
}

func TestRentPerSquareFootKeepsFullPrecision(t *testing.T) {
	got := RentPerSquareFoot(f(1000), f(3))
	require.NotNil(t, got)
	assert.InDelta(t, 333.3333333, *got, 1e-6)
}

func TestRentPerSquareFootMissingInputs(t *testing.T) {
	assert.Nil(t, RentPerSquareFoot(nil, f(500)))
	assert.Nil(t, RentPerSquareFoot(f(1000), nil))
	assert.Nil(t, RentPerSquareFoot(nil, nil))
}

func TestRentPerSquareFootZeroArea(t *testing.T) {
	assert.Nil(t, RentPerSquareFoot(f(1000), f(0)))
	assert.Nil(t, RentPerSquareFoot(f(1000), f(-10)))
}
