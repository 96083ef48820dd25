package pvspec

import "github.com/solartrace/pvmodel/internal/consts"

// Condition is the irradiance and cell temperature to model.
type Condition struct {
	Irradiance float64 // W/m^2
	CellTempC  float64 // degC
}

// STC returns the standard test conditions (1000 W/m^2, 25 degC).
func STC() Condition {
	return Condition{Irradiance: STCIrradiance, CellTempC: STCCellTempC}
}

// CellTempK is the cell temperature in Kelvin.
func (c Condition) CellTempK() float64 {
	return c.CellTempC + consts.KELVIN
}

// TempDiffFromSTC is the cell temperature delta from the STC 25 degC.
func (c Condition) TempDiffFromSTC() float64 {
	return c.CellTempC - STCCellTempC
}
