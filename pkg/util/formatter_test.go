package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValueFactor(t *testing.T) {
	cases := []struct {
		value float64
		unit  string
		want  string
	}{
		{6.39, "A", "6.390 A"},
		{0.3, "ohm", "300.000 mohm"},
		{3.2e-9, "A", "3.200 nA"},
		{1.5e-6, "V", "1.500 uV"},
		{2e-12, "A", "2.000 pA"},
		{1e-15, "A", "1.000e-15 A"},
		{-0.25, "V", "-250.000 mV"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatValueFactor(tc.value, tc.unit))
	}
}
