package eg

// PWM is the duty cycle register of the output stage. SetOutputDuty is
// called from the periodic callback and must not block.
type PWM interface {
	SetOutputDuty(value uint16)
}

// ADC is a single, non-blocking analog to digital converter behind a
// four way multiplexer.
type ADC interface {
	StartConversion(channel int)
	ConversionReady() bool
	ReadConversion() uint16
}

// GatePin is the digital gate input. It is active low: ReadGatePin
// returns false while the gate is asserted.
type GatePin interface {
	ReadGatePin() bool
}

// Timer installs fn to be called at freqHz, preempting the foreground loop.
type Timer interface {
	RegisterPeriodicCallback(freqHz int, fn func()) error
}

// Board is everything the controller needs from the hardware.
type Board interface {
	PWM
	ADC
	GatePin
	Timer
}
