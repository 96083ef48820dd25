// Package solver provides a damped Newton-Raphson root finder for small
// square nonlinear systems. The Jacobian is approximated by finite
// differences and the step is obtained from a sparse LU factorization.
package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Func evaluates the system residuals at x, storing them in dst.
// len(dst) == len(x).
type Func func(dst, x []float64)

// Options control the Newton iteration.
type Options struct {
	MaxIter int
	AbsTol  float64
	RelTol  float64
}

func defaultOptions() *Options {
	return &Options{
		MaxIter: 100,
		AbsTol:  1e-12,
		RelTol:  1e-6,
	}
}

const maxBacktracks = 8

// Solve searches for a root of f starting from x0. Convergence is declared
// when every component of the Newton step falls below the relative/absolute
// tolerance. The last iterate is returned even on error, so callers can
// still evaluate how good (or bad) the final residuals are.
func Solve(f Func, x0 []float64, opt *Options) ([]float64, error) {
	if opt == nil {
		opt = defaultOptions()
	}

	n := len(x0)
	x := append([]float64(nil), x0...)
	res := make([]float64, n)
	trial := make([]float64, n)
	trialRes := make([]float64, n)
	jac := mat.NewDense(n, n, nil)

	ls, err := newLinearSystem(n)
	if err != nil {
		return x, err
	}
	defer ls.destroy()

	for iter := range opt.MaxIter {
		f(res, x)
		if !allFinite(res) {
			return x, fmt.Errorf("non-finite residual at iteration %d", iter)
		}

		fd.Jacobian(jac, f, x, nil)

		ls.clear()
		for i := range n {
			for j := range n {
				if v := jac.At(i, j); v != 0 {
					ls.addElement(i+1, j+1, v)
				}
			}
		}
		for i, r := range res {
			ls.addRHS(i+1, -r) // Newton step: J*dx = -F
		}

		dx, err := ls.solve()
		if err != nil {
			return x, err
		}
		if !allFinite(dx[1 : n+1]) {
			return x, fmt.Errorf("non-finite Newton step at iteration %d", iter)
		}

		// Backtrack when the full step makes the residual norm worse.
		norm := norm2(res)
		alpha := 1.0
		improved := false
		for k := 0; k < maxBacktracks; k++ {
			for i := range n {
				trial[i] = x[i] + alpha*dx[i+1]
			}
			f(trialRes, trial)
			if allFinite(trialRes) && norm2(trialRes) <= norm {
				improved = true
				break
			}
			alpha /= 2
		}

		converged := true
		for i := range n {
			diff := math.Abs(trial[i] - x[i])
			tol := opt.RelTol*math.Max(math.Abs(trial[i]), math.Abs(x[i])) + opt.AbsTol
			if diff > tol {
				converged = false
			}
		}
		if converged {
			// At a root the residual norm is noise-level and a tiny step
			// may not register as an improvement; convergence wins.
			copy(x, trial)
			return x, nil
		}
		if !improved {
			return x, fmt.Errorf("line search failed to reduce the residual at iteration %d", iter)
		}
		copy(x, trial)
	}

	return x, fmt.Errorf("failed to converge in %d iterations", opt.MaxIter)
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func norm2(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
