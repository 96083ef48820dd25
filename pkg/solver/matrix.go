package solver

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// linearSystem wraps a sparse LU matrix for the Newton step solve. Vectors
// are 1-based, following the sparse package convention.
type linearSystem struct {
	size   int
	matrix *sparse.Matrix
	rhs    []float64
	config *sparse.Configuration
}

func newLinearSystem(size int) (*linearSystem, error) {
	config := &sparse.Configuration{
		Real:          true,
		Expandable:    true,
		ModifiedNodal: true,
		// Translate lets GetElement address the matrix after Factor has
		// reordered it; the Newton loop restamps on every iteration.
		Translate:      true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}

	ls := &linearSystem{
		size:   size,
		matrix: mat,
		rhs:    make([]float64, size+1),
		config: config,
	}
	// The Jacobian is dense; allocate every element up front.
	for i := 1; i <= size; i++ {
		for j := 1; j <= size; j++ {
			mat.GetElement(int64(i), int64(j))
		}
	}
	return ls, nil
}

func (ls *linearSystem) clear() {
	ls.matrix.Clear()
	for i := range ls.rhs {
		ls.rhs[i] = 0
	}
}

func (ls *linearSystem) addElement(i, j int, value float64) {
	ls.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (ls *linearSystem) addRHS(i int, value float64) {
	ls.rhs[i] += value
}

// solve factors the matrix and solves for the current RHS. The returned
// slice is 1-based with length size+1.
func (ls *linearSystem) solve() ([]float64, error) {
	if err := ls.matrix.Factor(); err != nil {
		return nil, fmt.Errorf("matrix factorization failed: %v", err)
	}
	solution, err := ls.matrix.Solve(ls.rhs)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %v", err)
	}
	return solution, nil
}

func (ls *linearSystem) destroy() {
	if ls.matrix != nil {
		ls.matrix.Destroy()
	}
}
