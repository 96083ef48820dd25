// Package diode evaluates the residuals of the single-diode PV cell model:
//
//	I = IL - I0*(e^((V+I*Rs)/A) - 1) - (V+I*Rs)/Rsh
//
// Each function returns the signed deviation from satisfying the equation
// (or one of its derived forms) at an electrically significant point; a
// perfect set of values returns zero. The functions are pure and are meant
// to be driven by a root solver.
package diode

import "math"

// Params are the five unknowns of the single-diode model.
type Params struct {
	IL  float64 // photocurrent (A)
	I0  float64 // diode reverse saturation current (A)
	A   float64 // n * Ns * Vth (V)
	Rs  float64 // series resistance (ohm)
	Rsh float64 // shunt resistance (ohm)
}

// Targets are the curve points a parameter set must reproduce.
type Targets struct {
	Voc float64
	Isc float64
	Vmp float64
	Imp float64
}

// Exponent arguments are clamped to prevent overflow. The clamp biases the
// residual but keeps the search away from numerical blow-up.
const expCeiling = 100.0

// rejectResidual steers the root solver away from physically invalid
// parameter regions (negative currents/resistances, non-positive Rsh).
const rejectResidual = 999.0

func clampExp(arg float64) float64 {
	if arg < expCeiling {
		return arg
	}
	return expCeiling
}

// CurrentResidual tests a candidate current against the single-diode
// equation at the given voltage. Used to identify curve points once the
// parameters are known.
func CurrentResidual(amps, volts float64, p Params) float64 {
	expTerm := clampExp((volts + amps*p.Rs) / p.A)
	return p.IL - p.I0*math.Expm1(expTerm) - (volts+amps*p.Rs)/p.Rsh - amps
}

// VocResidual is equation #1: the single-diode equation at V=Voc, I=0.
// Rs drops out because it is multiplied by the current.
func VocResidual(voc float64, p Params) float64 {
	return p.IL - p.I0*math.Expm1(clampExp(voc/p.A)) - voc/p.Rsh
}

// IscResidual is equation #2: the single-diode equation at V=0, I=Isc.
func IscResidual(isc float64, p Params) float64 {
	expTerm := clampExp(isc * p.Rs / p.A)
	return p.IL - p.I0*math.Expm1(expTerm) - isc*p.Rs/p.Rsh - isc
}

// OnCurveResidual is equation #3: the single-diode equation at the MPP. A
// zero result proves the point is on the curve, not that it is the point of
// maximum power; that is what MaxPowerResidual is for.
func OnCurveResidual(vmp, imp float64, p Params) float64 {
	return CurrentResidual(imp, vmp, p)
}

// MaxPowerResidual is equation #4: dP/dV = 0 at the MPP, in the closed form
// obtained by implicit differentiation of the single-diode equation.
func MaxPowerResidual(vmp, imp float64, p Params) float64 {
	e := math.Exp(clampExp((vmp + imp*p.Rs) / p.A))
	return imp - vmp*(p.I0*p.Rsh*e+p.A)/(p.Rsh*(p.I0*p.Rs*e+p.A)+p.Rs*p.A)
}

// ShuntSlopeResidual is equation #5: dI/dV = -1/Rsh at the Isc point.
func ShuntSlopeResidual(isc float64, p Params) float64 {
	e := math.Exp(clampExp(isc * p.Rs / p.A))
	return 1.0/p.Rsh - (p.I0*p.Rsh*e+p.A)/(p.Rsh*(p.I0*p.Rs*e+p.A)+p.Rs*p.A)
}

// FirstFour evaluates equations #1-#4 with the Rsh in p held fixed. With
// ignoreEq4 set, the max-power residual is forced to exactly zero, which
// fools the solver into treating equation #4 as always satisfied; the fitted
// curve then hits all three datasheet points but the stated MPP is not
// necessarily the point of maximum power.
func FirstFour(p Params, t Targets, ignoreEq4 bool) [4]float64 {
	if p.I0 < 0 || p.A < 0 || p.Rs < 0 {
		return [4]float64{rejectResidual, rejectResidual, rejectResidual, rejectResidual}
	}

	r := [4]float64{
		VocResidual(t.Voc, p),
		IscResidual(t.Isc, p),
		OnCurveResidual(t.Vmp, t.Imp, p),
		0.0,
	}
	if !ignoreEq4 {
		r[3] = MaxPowerResidual(t.Vmp, t.Imp, p)
	}
	return r
}

// System evaluates all five equations for a full candidate parameter set.
func System(p Params, t Targets, ignoreEq4 bool) [5]float64 {
	if p.I0 < 0 || p.A < 0 || p.Rs < 0 || p.Rsh <= 0 {
		return [5]float64{rejectResidual, rejectResidual, rejectResidual, rejectResidual, rejectResidual}
	}

	f := FirstFour(p, t, ignoreEq4)
	return [5]float64{f[0], f[1], f[2], f[3], ShuntSlopeResidual(t.Isc, p)}
}
