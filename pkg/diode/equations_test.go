package diode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testParams() Params {
	return Params{IL: 6.39, I0: 1e-9, A: 2.47, Rs: 0.3, Rsh: 500}
}

func TestCurrentResidualAtShortCircuit(t *testing.T) {
	// With Rs=0 and V=0 the equation collapses to IL - I.
	p := testParams()
	p.Rs = 0

	assert.InDelta(t, 0, CurrentResidual(p.IL, 0, p), 1e-15)
	assert.InDelta(t, 1.0, CurrentResidual(p.IL-1.0, 0, p), 1e-12)
}

func TestVocResidualIgnoresRs(t *testing.T) {
	p := testParams()
	withRs := VocResidual(68.2, p)
	p.Rs = 0.9
	assert.Equal(t, withRs, VocResidual(68.2, p))
}

func TestShuntSlopeResidualZeroRs(t *testing.T) {
	// With Rs=0 the slope condition reduces to -I0/A.
	p := testParams()
	p.Rs = 0
	assert.InDelta(t, -p.I0/p.A, ShuntSlopeResidual(6.39, p), 1e-15)
}

func TestExponentClamp(t *testing.T) {
	// A tiny A parameter drives the exponent argument far beyond the
	// ceiling; the residual must use exactly 100, not overflow.
	p := testParams()
	p.A = 0.1

	voc := 68.2
	assert.Greater(t, voc/p.A, 100.0)
	want := p.IL - p.I0*math.Expm1(100) - voc/p.Rsh
	assert.Equal(t, want, VocResidual(voc, p))

	amps, volts := 6.0, 50.0
	want = p.IL - p.I0*math.Expm1(100) - (volts+amps*p.Rs)/p.Rsh - amps
	assert.Equal(t, want, CurrentResidual(amps, volts, p))

	// The closed-form slope equations clamp the same way.
	p.A = 1e-6
	assert.False(t, math.IsNaN(MaxPowerResidual(57.3, 6.02, p)))
	assert.False(t, math.IsInf(MaxPowerResidual(57.3, 6.02, p), 0))
	assert.False(t, math.IsInf(ShuntSlopeResidual(6.39, p), 0))
}

func TestNegativeParamsRejected(t *testing.T) {
	tgt := Targets{Voc: 68.2, Isc: 6.39, Vmp: 57.3, Imp: 6.02}

	cases := []Params{
		{IL: 6.39, I0: -1e-9, A: 2.47, Rs: 0.3, Rsh: 500},
		{IL: 6.39, I0: 1e-9, A: -2.47, Rs: 0.3, Rsh: 500},
		{IL: 6.39, I0: 1e-9, A: 2.47, Rs: -0.3, Rsh: 500},
		{IL: 6.39, I0: 1e-9, A: 2.47, Rs: 0.3, Rsh: 0},
		{IL: 6.39, I0: 1e-9, A: 2.47, Rs: 0.3, Rsh: -500},
	}
	for _, p := range cases {
		for _, r := range System(p, tgt, false) {
			assert.Equal(t, 999.0, r)
		}
	}

	p := Params{IL: 6.39, I0: 1e-9, A: 2.47, Rs: -0.1, Rsh: 500}
	for _, r := range FirstFour(p, tgt, false) {
		assert.Equal(t, 999.0, r)
	}
}

func TestIgnoreEq4ForcesZero(t *testing.T) {
	p := testParams()
	tgt := Targets{Voc: 68.2, Isc: 6.39, Vmp: 57.3, Imp: 6.02}

	withEq4 := System(p, tgt, false)
	assert.NotZero(t, withEq4[3])

	ignored := System(p, tgt, true)
	assert.Zero(t, ignored[3])
	// The other residuals are untouched.
	assert.Equal(t, withEq4[0], ignored[0])
	assert.Equal(t, withEq4[1], ignored[1])
	assert.Equal(t, withEq4[2], ignored[2])
	assert.Equal(t, withEq4[4], ignored[4])
}

func TestSystemMatchesFirstFour(t *testing.T) {
	p := testParams()
	tgt := Targets{Voc: 68.2, Isc: 6.39, Vmp: 57.3, Imp: 6.02}

	five := System(p, tgt, false)
	four := FirstFour(p, tgt, false)
	for i := range four {
		assert.Equal(t, four[i], five[i])
	}
	assert.Equal(t, ShuntSlopeResidual(tgt.Isc, p), five[4])
}
