package model

import (
	"math"

	"github.com/solartrace/pvmodel/internal/log"
	"github.com/solartrace/pvmodel/pkg/diode"
	"github.com/solartrace/pvmodel/pkg/solver"
)

// Default guess lists for the parameter search. The root solver's success
// depends heavily on its starting point, and guesses closest to the final
// solution are not always the best. Order matters for speed: most likely to
// converge first.
var (
	DefaultI0Guesses  = []float64{1e-8, 1e-9, 1e-10, 3e-8}
	DefaultRsGuesses  = []float64{0.1, 0.2, 0.0, 0.6, 0.7, 0.9, 0.5}
	DefaultRshGuesses = []float64{1e15, 100}
)

// DefaultErrThresh is the maximum absolute equation residual considered a
// good-enough fit.
const DefaultErrThresh = 0.001

// SearchConfig bundles the guesses and termination settings for FindParams.
type SearchConfig struct {
	ILGuess     float64
	AGuess      float64
	I0Guesses   []float64
	RsGuesses   []float64
	RshGuesses  []float64
	ErrThresh   float64
	MaxAttempts int // attempt budget, 0 = exhaust the full search space
}

// Residuals holds the five equation results of a fit.
type Residuals struct {
	Eq1 float64 // Voc point
	Eq2 float64 // Isc point
	Eq3 float64 // MPP on curve
	Eq4 float64 // dP/dV = 0 at MPP
	Eq5 float64 // dI/dV = -1/Rsh at Isc
}

// FitResult is the outcome of a FindParams search.
type FitResult struct {
	Params    diode.Params
	Residuals Residuals

	// WorstAbsErr is the worst absolute residual over the equations that
	// were part of the accepted fit (four when the fixed-Rsh tier won).
	WorstAbsErr float64

	UsedEq5    bool // Rsh was solved for rather than held fixed
	Eq4Ignored bool // the max-power equation was forced to zero
	Attempts   int
}

// attempt is one entry of the flattened nested search:
// ignore_eq4 (outer) > use_eq5 > rsh > i0 > rs (inner).
type attempt struct {
	ignoreEq4 bool
	useEq5    bool
	rsh       float64
	i0        float64
	rs        float64
}

func buildAttempts(cfg *SearchConfig) []attempt {
	attempts := make([]attempt, 0,
		4*len(cfg.RshGuesses)*len(cfg.I0Guesses)*len(cfg.RsGuesses))
	for _, ignoreEq4 := range []bool{false, true} {
		for _, useEq5 := range []bool{true, false} {
			for _, rsh := range cfg.RshGuesses {
				for _, i0 := range cfg.I0Guesses {
					for _, rs := range cfg.RsGuesses {
						attempts = append(attempts, attempt{ignoreEq4, useEq5, rsh, i0, rs})
					}
				}
			}
		}
	}
	return attempts
}

func paramsFromVec(x []float64, rsh float64) diode.Params {
	p := diode.Params{IL: x[0], I0: x[1], A: x[2], Rs: x[3], Rsh: rsh}
	if len(x) == 5 {
		p.Rsh = x[4]
	}
	return p
}

// FindParams searches for the five single-diode parameters that reproduce
// the target points. Attempts are ordered into three fallback tiers: the
// full five-equation fit, a four-equation fit with Rsh held at each guess,
// and finally the same two with the max-power equation ignored. The search
// stops at the first solution whose worst residual is below ErrThresh;
// otherwise the best solution seen across the entire search is returned and
// the caller decides whether it is usable.
func FindParams(t diode.Targets, cfg *SearchConfig) FitResult {
	best := FitResult{WorstAbsErr: math.MaxFloat64}
	attempts := buildAttempts(cfg)

	for n, at := range attempts {
		if cfg.MaxAttempts > 0 && n >= cfg.MaxAttempts {
			break
		}

		var p diode.Params
		var fitted []float64
		if at.useEq5 {
			x0 := []float64{cfg.ILGuess, at.i0, cfg.AGuess, at.rs, at.rsh}
			x, err := solver.Solve(func(dst, x []float64) {
				r := diode.System(paramsFromVec(x, 0), t, at.ignoreEq4)
				copy(dst, r[:])
			}, x0, nil)
			if err != nil {
				log.Debugf("parameter fit attempt %d: %v", n, err)
			}
			p = paramsFromVec(x, 0)
			r := diode.System(p, t, at.ignoreEq4)
			fitted = r[:]
		} else {
			x0 := []float64{cfg.ILGuess, at.i0, cfg.AGuess, at.rs}
			x, err := solver.Solve(func(dst, x []float64) {
				r := diode.FirstFour(paramsFromVec(x, at.rsh), t, at.ignoreEq4)
				copy(dst, r[:])
			}, x0, nil)
			if err != nil {
				log.Debugf("parameter fit attempt %d: %v", n, err)
			}
			p = paramsFromVec(x, at.rsh)
			r := diode.FirstFour(p, t, at.ignoreEq4)
			fitted = r[:]
		}

		worst := 0.0
		for _, r := range fitted {
			if math.IsNaN(r) {
				// NaN compares false against everything; without this a
				// diverged attempt would masquerade as a perfect fit.
				worst = math.Inf(1)
				break
			}
			if math.Abs(r) > worst {
				worst = math.Abs(r)
			}
		}

		if worst < best.WorstAbsErr {
			best = FitResult{
				Params:      p,
				WorstAbsErr: worst,
				UsedEq5:     at.useEq5,
				Eq4Ignored:  at.ignoreEq4,
				Attempts:    n + 1,
			}
			best.Residuals = Residuals{
				Eq1: fitted[0],
				Eq2: fitted[1],
				Eq3: fitted[2],
				Eq4: fitted[3],
				// Equation #5 is recomputed for diagnostics when the
				// fixed-Rsh tier produced the fit.
				Eq5: diode.ShuntSlopeResidual(t.Isc, p),
			}
			if at.useEq5 {
				best.Residuals.Eq5 = fitted[4]
			}
		}

		if worst < cfg.ErrThresh {
			break
		}
	}

	return best
}
