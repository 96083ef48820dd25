package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearSystemReuseAfterFactor(t *testing.T) {
	ls, err := newLinearSystem(2)
	require.NoError(t, err)
	defer ls.destroy()

	// First cycle: identity system.
	ls.clear()
	ls.addElement(1, 1, 1)
	ls.addElement(2, 2, 1)
	ls.addRHS(1, 3)
	ls.addRHS(2, 4)
	x, err := ls.solve()
	require.NoError(t, err)
	assert.InDelta(t, 3, x[1], 1e-12)
	assert.InDelta(t, 4, x[2], 1e-12)

	// Second cycle restamps after Factor has reordered the matrix. The
	// stamp must keep working or every multi-iteration Newton solve dies.
	ls.clear()
	ls.addElement(1, 1, 2)
	ls.addElement(1, 2, 1)
	ls.addElement(2, 1, 1)
	ls.addElement(2, 2, 3)
	ls.addRHS(1, 5)
	ls.addRHS(2, 10)
	x, err = ls.solve()
	require.NoError(t, err)
	assert.InDelta(t, 1, x[1], 1e-9)
	assert.InDelta(t, 3, x[2], 1e-9)
}
