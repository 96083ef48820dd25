package model

import "fmt"

// ModelingError reports that the parameter search exhausted all fallback
// tiers without finding a solution within the error threshold. Retrying with
// the same inputs will not help; the caller may supply different guess lists.
type ModelingError struct {
	Name        string
	WorstAbsErr float64
}

func (e *ModelingError) Error() string {
	return fmt.Sprintf("PV modeling for %s failed to find a solution (worst residual %g)",
		e.Name, e.WorstAbsErr)
}

// EstimateError reports that the irradiance/temperature estimation loop hit
// its iteration cap before the temperature estimate settled.
type EstimateError struct {
	Iterations int
	LastDelta  float64 // last change of the temperature estimate (degC)
	Thresh     float64
}

func (e *EstimateError) Error() string {
	return fmt.Sprintf("irradiance/temperature estimate did not converge after %d iterations (last temp delta %g degC, threshold %g)",
		e.Iterations, e.LastDelta, e.Thresh)
}
