package consts

const (
	CHARGE    = 1.60218e-19 // Electron charge (C)
	BOLTZMANN = 1.38066e-23 // Boltzmann constant (J/K)
	KELVIN    = 273.15      // Kelvins at 0 degrees C
)
