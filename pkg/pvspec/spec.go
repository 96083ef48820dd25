// Package pvspec holds the datasheet specification of a PV module or cell
// and the operating condition to model, plus the temperature adjustment of
// the datasheet values.
package pvspec

import (
	"fmt"
	"math"

	"github.com/solartrace/pvmodel/internal/consts"
)

// Standard and nominal operating conditions.
const (
	STCIrradiance = 1000.0 // W/m^2
	NOCIrradiance = 800.0  // W/m^2
	STCCellTempC  = 25.0   // degC
)

const (
	idealityFactorGuess = 1.0
	cellVocGuess        = 0.67 // typical single-cell Voc (V)
)

// Spec is a datasheet record for a PV module or cell. Temperature
// coefficients are stored in %/degC; use SetVocTempCoeffMV and
// SetIscTempCoeffMA for datasheets that give them in mV/degC or mA/degC.
// A Spec is treated as read-only once validated.
type Spec struct {
	Name string

	VocSTC float64 // open-circuit voltage at STC (V)
	IscSTC float64 // short-circuit current at STC (A)
	VmpSTC float64 // MPP voltage at STC (V)
	ImpSTC float64 // MPP current at STC (A)

	NumCells int     // series-connected cells, 0 when unknown
	NOCT     float64 // nominal operating cell temperature (degC), 0 when unknown

	VocTempCoeff float64 // %/degC, negative
	IscTempCoeff float64 // %/degC, positive
	MPPTempCoeff float64 // %/degC, negative
}

// SpecError reports a datasheet field that violates its sign or range
// invariant.
type SpecError struct {
	Field  string
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid PV spec field %s: %s", e.Field, e.Reason)
}

// SetVocTempCoeffMV stores a Voc temperature coefficient given in mV/degC,
// normalized to %/degC against the STC Voc. VocSTC must be set first.
func (s *Spec) SetVocTempCoeffMV(mvPerDeg float64) {
	s.VocTempCoeff = (mvPerDeg / 10.0) / s.VocSTC
}

// SetIscTempCoeffMA stores an Isc temperature coefficient given in mA/degC,
// normalized to %/degC against the STC Isc. IscSTC must be set first.
func (s *Spec) SetIscTempCoeffMA(maPerDeg float64) {
	s.IscTempCoeff = (maPerDeg / 10.0) / s.IscSTC
}

// Validate checks the sign invariants of the datasheet values.
func (s *Spec) Validate() error {
	positives := []struct {
		name  string
		value float64
	}{
		{"Voc", s.VocSTC},
		{"Isc", s.IscSTC},
		{"Vmp", s.VmpSTC},
		{"Imp", s.ImpSTC},
		{"Isc temp coeff", s.IscTempCoeff},
	}
	for _, f := range positives {
		if !(f.value > 0) {
			return &SpecError{Field: f.name, Reason: "must be positive"}
		}
	}

	negatives := []struct {
		name  string
		value float64
	}{
		{"Voc temp coeff", s.VocTempCoeff},
		{"MPP temp coeff", s.MPPTempCoeff},
	}
	for _, f := range negatives {
		if !(f.value < 0) {
			return &SpecError{Field: f.name, Reason: "must be negative"}
		}
	}

	if s.NumCells < 0 {
		return &SpecError{Field: "Cells", Reason: "must be positive or zero (unknown)"}
	}
	if s.NOCT < 0 {
		return &SpecError{Field: "NOCT", Reason: "must be positive or zero (unknown)"}
	}
	return nil
}

// EffectiveCells returns the cell count, estimated from the STC Voc when the
// datasheet does not state it.
func (s *Spec) EffectiveCells() float64 {
	if s.NumCells > 0 {
		return float64(s.NumCells)
	}
	return math.Round(s.VocSTC / cellVocGuess)
}

// IscAtTemp is the Isc at the condition's cell temperature, at STC
// irradiance.
func (s *Spec) IscAtTemp(c Condition) float64 {
	return s.IscSTC * (1.0 + c.TempDiffFromSTC()*s.IscTempCoeff/100.0)
}

// VocAtTemp is the Voc at the condition's cell temperature, at STC
// irradiance.
func (s *Spec) VocAtTemp(c Condition) float64 {
	return s.VocSTC * (1.0 + c.TempDiffFromSTC()*s.VocTempCoeff/100.0)
}

// ImpAtTemp is the MPP current at the condition's cell temperature, at STC
// irradiance. Imp is assumed to scale with the Isc temperature coefficient.
func (s *Spec) ImpAtTemp(c Condition) float64 {
	return s.ImpSTC * (1.0 + c.TempDiffFromSTC()*s.IscTempCoeff/100.0)
}

// VmpAtTemp is the MPP voltage at the condition's cell temperature, at STC
// irradiance. The MPP power is scaled by the power temperature coefficient
// first, then divided by the adjusted Imp.
func (s *Spec) VmpAtTemp(c Condition) float64 {
	pwrAtTemp := s.ImpSTC * s.VmpSTC * (1.0 + c.TempDiffFromSTC()*s.MPPTempCoeff/100.0)
	return pwrAtTemp / s.ImpAtTemp(c)
}

// AGuess is the initial guess for the lumped A = n*Ns*Vth parameter: unity
// ideality factor times cell count times the thermal voltage at the
// condition's cell temperature.
func (s *Spec) AGuess(c Condition) float64 {
	ktOverQ := consts.BOLTZMANN * c.CellTempK() / consts.CHARGE
	return idealityFactorGuess * s.EffectiveCells() * ktOverQ
}
