package model

import (
	"fmt"
	"iter"
	"math"

	"github.com/solartrace/pvmodel/internal/log"
	"github.com/solartrace/pvmodel/pkg/diode"
	"github.com/solartrace/pvmodel/pkg/solver"
)

// CurvePoint is one (voltage, current) sample of the modeled IV curve.
type CurvePoint struct {
	V float64
	I float64
}

// CurvePoints returns a lazy, restartable sequence of up to n curve samples,
// ordered from the short-circuit end toward open circuit. Interior voltages
// grow with the square root of the sample index, which concentrates points
// around the MPP knee and the steep tail where small voltage increments map
// to large current increments. The MPP is emitted just before the first
// interior sample whose voltage exceeds Vmp, and the final point is always
// (Voc, 0).
//
// The current at each interior voltage comes from a per-point root solve
// seeded with IL. A point whose solve fails, or whose solved current is not
// positive, is skipped; the curve continues.
func (m *Model) CurvePoints(n int) (iter.Seq[CurvePoint], error) {
	voc, err := m.Voc()
	if err != nil {
		return nil, fmt.Errorf("no Voc available: %v", err)
	}

	return func(yield func(CurvePoint) bool) {
		mppAdded := false
		interior := n - 2 // the MPP and Voc points are added on top
		for i := 0; i < interior; i++ {
			volts := voc * math.Sqrt(float64(i)) / math.Sqrt(float64(interior))
			if volts > m.Vmp && !mppAdded {
				if !yield(CurvePoint{V: m.Vmp, I: m.Imp}) {
					return
				}
				mppAdded = true
			}

			x, err := solver.Solve(func(dst, x []float64) {
				dst[0] = diode.CurrentResidual(x[0], volts, m.Params)
			}, []float64{m.Params.IL}, nil)
			if err != nil {
				log.Warnf("curve point solve failed at v=%g: %v", volts, err)
				continue
			}
			if amps := x[0]; amps > 0 {
				if !yield(CurvePoint{V: volts, I: amps}) {
					return
				}
			}
		}
		yield(CurvePoint{V: voc, I: 0})
	}, nil
}
