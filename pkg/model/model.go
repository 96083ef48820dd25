// Package model derives the single-diode circuit parameters of a PV module
// or cell from its datasheet specification at a given irradiance and cell
// temperature, and generates the resulting IV curve. It also supports the
// reverse computation: estimating irradiance and cell temperature from a
// measured Voc/Isc pair.
package model

import (
	"fmt"
	"time"

	"github.com/solartrace/pvmodel/internal/consts"
	"github.com/solartrace/pvmodel/internal/log"
	"github.com/solartrace/pvmodel/pkg/diode"
	"github.com/solartrace/pvmodel/pkg/pvspec"
	"github.com/solartrace/pvmodel/pkg/solver"
	"github.com/solartrace/pvmodel/pkg/util"
)

// Model runs the single-diode fit for one PV specification. A Model is not
// safe for concurrent use; independent instances may run in parallel since
// the equation and solver code underneath is pure.
type Model struct {
	Spec *pvspec.Spec
	Cond pvspec.Condition

	I0Guesses       []float64
	RsGuesses       []float64
	RshGuesses      []float64
	ErrThresh       float64
	MaxAttempts     int // parameter search budget, 0 = full search
	EstimateMaxIter int // reverse estimation iteration cap

	// Results of the last successful Run.
	Params     diode.Params
	Residuals  Residuals
	Eq4Ignored bool
	Vmp        float64
	Imp        float64
	RunTime    time.Duration

	solved bool
}

// New validates the specification and returns a Model with the default
// guess lists, error threshold and iteration caps, at STC.
func New(spec *pvspec.Spec) (*Model, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		Spec:            spec,
		Cond:            pvspec.STC(),
		I0Guesses:       DefaultI0Guesses,
		RsGuesses:       DefaultRsGuesses,
		RshGuesses:      DefaultRshGuesses,
		ErrThresh:       DefaultErrThresh,
		EstimateMaxIter: DefaultEstimateMaxIter,
	}, nil
}

// Run derives the five single-diode parameters at the configured condition
// and refines the modeled MPP. The fit happens in two steps: the
// temperature-adjusted datasheet points are fitted at STC irradiance, then
// the photocurrent alone is scaled by the irradiance ratio.
//
// The returned flag reports whether the max-power equation had to be
// ignored to converge: a degraded but usable fit, not an error. A
// *ModelingError is returned when even the full fallback search cannot meet
// the error threshold; no parameters are published in that case.
func (m *Model) Run() (eq4Ignored bool, err error) {
	start := time.Now()
	m.solved = false
	m.Vmp, m.Imp = 0, 0

	// Step 1: fit at the adjusted temperature, still at STC irradiance.
	t := diode.Targets{
		Voc: m.Spec.VocAtTemp(m.Cond),
		Isc: m.Spec.IscAtTemp(m.Cond),
		Vmp: m.Spec.VmpAtTemp(m.Cond),
		Imp: m.Spec.ImpAtTemp(m.Cond),
	}
	cfg := &SearchConfig{
		ILGuess:     t.Isc,
		AGuess:      m.Spec.AGuess(m.Cond),
		I0Guesses:   m.I0Guesses,
		RsGuesses:   m.RsGuesses,
		RshGuesses:  m.RshGuesses,
		ErrThresh:   m.ErrThresh,
		MaxAttempts: m.MaxAttempts,
	}
	fit := FindParams(t, cfg)

	res := fit.Residuals
	if res.Eq4 == 0 {
		// A zero here normally means the ignore flag forced it; recompute
		// the genuine residual for diagnostics.
		res.Eq4 = diode.MaxPowerResidual(t.Vmp, t.Imp, fit.Params)
		eq4Ignored = res.Eq4 != 0
	}
	m.Residuals = res
	m.Eq4Ignored = eq4Ignored
	log.Debugf("best fit for %s: IL=%g I0=%g A=%g Rs=%g Rsh=%g worst=%g attempts=%d",
		m.Spec.Name, fit.Params.IL, fit.Params.I0, fit.Params.A,
		fit.Params.Rs, fit.Params.Rsh, fit.WorstAbsErr, fit.Attempts)

	if fit.WorstAbsErr > m.ErrThresh {
		return eq4Ignored, &ModelingError{Name: m.Spec.Name, WorstAbsErr: fit.WorstAbsErr}
	}

	// Step 2: irradiance only scales the photocurrent; I0, A, Rs and Rsh
	// are unaffected.
	p := fit.Params
	p.IL *= m.Cond.Irradiance / pvspec.STCIrradiance
	m.Params = p
	m.solved = true

	m.updateMPP()
	m.RunTime = time.Since(start)
	return eq4Ignored, nil
}

// updateMPP re-solves the two-equation MPP system (point on curve, dP/dV=0)
// at the final parameters, seeded with the temperature/irradiance-adjusted
// datasheet MPP.
func (m *Model) updateMPP() {
	vmpGuess := m.Spec.VmpAtTemp(m.Cond)
	impGuess := m.Spec.ImpAtTemp(m.Cond) * (m.Cond.Irradiance / pvspec.STCIrradiance)

	x, err := solver.Solve(func(dst, x []float64) {
		dst[0] = diode.OnCurveResidual(x[0], x[1], m.Params)
		dst[1] = diode.MaxPowerResidual(x[0], x[1], m.Params)
	}, []float64{vmpGuess, impGuess}, nil)
	if err != nil {
		log.Warnf("MPP refinement for %s did not converge: %v", m.Spec.Name, err)
	}
	m.Vmp, m.Imp = x[0], x[1]
}

// Voc solves the open-circuit voltage of the modeled curve.
func (m *Model) Voc() (float64, error) {
	if !m.solved {
		return 0, fmt.Errorf("model for %s has not been run", m.Spec.Name)
	}
	x, err := solver.Solve(func(dst, x []float64) {
		dst[0] = diode.VocResidual(x[0], m.Params)
	}, []float64{m.Spec.VocAtTemp(m.Cond)}, nil)
	if err != nil {
		return 0, fmt.Errorf("solving Voc: %v", err)
	}
	return x[0], nil
}

// Isc solves the short-circuit current of the modeled curve.
func (m *Model) Isc() (float64, error) {
	if !m.solved {
		return 0, fmt.Errorf("model for %s has not been run", m.Spec.Name)
	}
	x, err := solver.Solve(func(dst, x []float64) {
		dst[0] = diode.IscResidual(x[0], m.Params)
	}, []float64{m.Spec.IscAtTemp(m.Cond)}, nil)
	if err != nil {
		return 0, fmt.Errorf("solving Isc: %v", err)
	}
	return x[0], nil
}

// MaxPower is the modeled MPP power.
func (m *Model) MaxPower() float64 {
	return m.Vmp * m.Imp
}

// IdealityFactor derives the diode ideality factor n from the fitted A
// parameter. Approximate when the cell count is estimated.
func (m *Model) IdealityFactor() float64 {
	ktOverQ := consts.BOLTZMANN * m.Cond.CellTempK() / consts.CHARGE
	return m.Params.A / (m.Spec.EffectiveCells() * ktOverQ)
}

// ParamsString formats the five fitted parameters.
func (m *Model) ParamsString() string {
	return fmt.Sprintf("IL: %s  I0: %s  A: %s  Rs: %s  Rsh: %s",
		util.FormatValueFactor(m.Params.IL, "A"),
		util.FormatValueFactor(m.Params.I0, "A"),
		util.FormatValueFactor(m.Params.A, "V"),
		util.FormatValueFactor(m.Params.Rs, "ohm"),
		util.FormatValueFactor(m.Params.Rsh, "ohm"))
}

// TitleString names the PV and the modeled condition.
func (m *Model) TitleString() string {
	return fmt.Sprintf("%s modeled @ %g W/m2, %g degC cell temp",
		m.Spec.Name, m.Cond.Irradiance, m.Cond.CellTempC)
}

// SummaryString reports the modeled Voc, Isc and MPP.
func (m *Model) SummaryString() string {
	voc, _ := m.Voc()
	isc, _ := m.Isc()
	return fmt.Sprintf("%s\nVoc: %.4g V  Isc: %.4g A\nMPP: %.4g V  %.4g A  %.4g W",
		m.TitleString(), voc, isc, m.Vmp, m.Imp, m.MaxPower())
}
