package model

import (
	"math"

	"github.com/solartrace/pvmodel/internal/log"
	"github.com/solartrace/pvmodel/pkg/pvspec"
)

// DefaultEstimateMaxIter bounds the reverse-estimation loop. The alternating
// estimate settles in a handful of iterations for physically plausible
// inputs, but nothing guarantees convergence in general.
const DefaultEstimateMaxIter = 50

// EstimateIrradiance updates Cond.Irradiance from a measured Isc, in closed
// form, assuming the current cell temperature estimate is valid.
func (m *Model) EstimateIrradiance(measuredIsc float64) {
	dT := m.Cond.TempDiffFromSTC()
	m.Cond.Irradiance = pvspec.STCIrradiance * measuredIsc /
		(m.Spec.IscSTC * (1.0 + dT*m.Spec.IscTempCoeff/100.0))
}

// estimateTempFromIrrad inverts the Isc-vs-temperature relation to get a
// cell temperature from the current irradiance estimate and a measured Isc.
func (m *Model) estimateTempFromIrrad(measuredIsc float64) {
	irrad := m.Cond.Irradiance
	if irrad <= 0 {
		irrad = 0.001
	}
	m.Cond.CellTempC = (1.0/((irrad*m.Spec.IscSTC)/(pvspec.STCIrradiance*measuredIsc))-1.0)/
		(m.Spec.IscTempCoeff/100.0) + pvspec.STCCellTempC
}

// estimateTemp refines the cell temperature: a closed-form estimate from the
// irradiance, then a forward model run whose Voc is compared against the
// measured Voc, with the mismatch converted to degrees through the Voc
// temperature coefficient.
func (m *Model) estimateTemp(measuredVoc, measuredIsc float64) error {
	m.estimateTempFromIrrad(measuredIsc)
	if _, err := m.Run(); err != nil {
		return err
	}
	voc, err := m.Voc()
	if err != nil {
		return err
	}
	tempErr := (measuredVoc/voc - 1.0) / (m.Spec.VocTempCoeff / 100.0)
	m.Cond.CellTempC += tempErr
	return nil
}

// EstimateConditions infers the irradiance and cell temperature that
// produced a measured (Voc, Isc) pair, alternating a closed-form irradiance
// estimate with a model-based temperature correction until the temperature
// estimate changes by less than tempThresh between iterations. Cond holds
// the result. The loop is capped at EstimateMaxIter iterations; exceeding
// the cap returns an *EstimateError.
func (m *Model) EstimateConditions(measuredVoc, measuredIsc, tempThresh float64) error {
	m.Cond.CellTempC = 45.0 // typical NOCT starting point

	maxIter := m.EstimateMaxIter
	if maxIter <= 0 {
		maxIter = DefaultEstimateMaxIter
	}

	lastDelta := math.Inf(1)
	for iter := range maxIter {
		m.EstimateIrradiance(measuredIsc)
		prev := m.Cond.CellTempC
		if err := m.estimateTemp(measuredVoc, measuredIsc); err != nil {
			return err
		}
		lastDelta = m.Cond.CellTempC - prev
		log.Debugf("estimate iteration %d: temp %.3f degC (delta %.4f), irradiance %.1f W/m2",
			iter, m.Cond.CellTempC, lastDelta, m.Cond.Irradiance)
		if math.Abs(lastDelta) <= tempThresh {
			// Final refinement with the converged temperature.
			m.EstimateIrradiance(measuredIsc)
			return nil
		}
	}

	return &EstimateError{Iterations: maxIter, LastDelta: lastDelta, Thresh: tempThresh}
}
