package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPathToDirect(t *testing.T) {
	sheet := CreateSheet()
	a := sheet.ensureCell(Position{Row: 0, Col: 0})
	b := sheet.ensureCell(Position{Row: 1, Col: 0})
	a.addOutgoing(b)

	assert.True(t, hasPathTo(a, b))
	assert.False(t, hasPathTo(b, a))
}

func TestHasPathToTransitive(t *testing.T) {
	sheet := CreateSheet()
	a := sheet.ensureCell(Position{Row: 0, Col: 0})
	b := sheet.ensureCell(Position{Row: 1, Col: 0})
	c := sheet.ensureCell(Position{Row: 2, Col: 0})
	a.addOutgoing(b)
	b.addOutgoing(c)

	assert.True(t, hasPathTo(a, c))
	assert.False(t, hasPathTo(c, a))
}

func TestHasPathToSelf(t *testing.T) {
	sheet := CreateSheet()
	a := sheet.ensureCell(Position{Row: 0, Col: 0})
	assert.True(t, hasPathTo(a, a))
}

func TestInvalidateDropsTransitiveDependentCaches(t *testing.T) {
	tc := NewSheetTestCase(t).
		Set("A1", "1").
		Set("B1", "=A1").
		Set("C1", "=B1").
		RequireNoError()

	// Force both formula cells to compute and cache.
	assert.Equal(t, NumberValue(1), tc.Value("B1"))
	assert.Equal(t, NumberValue(1), tc.Value("C1"))

	posB, _ := ParseAddress("B1")
	posC, _ := ParseAddress("C1")
	bCell, err := tc.sheet.GetCell(posB)
	require.NoError(t, err)
	cCell, err := tc.sheet.GetCell(posC)
	require.NoError(t, err)
	require.True(t, bCell.hasCache)
	require.True(t, cCell.hasCache)

	tc.Set("A1", "2").RequireNoError()
	assert.False(t, bCell.hasCache, "direct dependent cache must be invalidated")
	assert.False(t, cCell.hasCache, "transitive dependent cache must be invalidated")
	assert.Equal(t, NumberValue(2), tc.Value("B1"))
	assert.Equal(t, NumberValue(2), tc.Value("C1"))
}

func TestInvalidateVisitsSharedDependentOnce(t *testing.T) {
	// D depends on both B and C, which both depend on A: a diamond. A plain
	// visited set must keep invalidate from revisiting D twice or looping.
	tc := NewSheetTestCase(t).
		Set("A1", "1").
		Set("B1", "=A1").
		Set("C1", "=A1").
		Set("D1", "=B1+C1").
		RequireNoError()

	assert.Equal(t, NumberValue(2), tc.Value("D1"))
	tc.Set("A1", "5").RequireNoError()
	assert.Equal(t, NumberValue(10), tc.Value("D1"))
}
