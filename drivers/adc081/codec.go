package adc081

// Code word layout: the sample occupies bits 15..4, so one code step is 16
// word-LSBs. Full scale 0xFF0 corresponds to 6600 mV, giving 25.9 mV per
// step; the sensor itself tops out at MaxVoltage (0xD50), which keeps all
// intermediates comfortably inside 32 bits once the word is shifted down.

// CodeToMillivolts converts a raw conversion/limit register word to
// millivolts, rounding to the nearest millivolt.
func CodeToMillivolts(word uint16) uint16 {
	field := uint32(word>>4) & 0xFFF
	return uint16((field*259 + 5) / 10)
}

// MillivoltsToCode quantises a millivolt value onto the nearest code step and
// packs it into register layout. The mapping is lossy; a round trip stays
// within half a step (±13 mV).
func MillivoltsToCode(mv uint16) uint16 {
	code := (uint32(mv)*10 + 259/2) / 259
	if code > 0xFF {
		code = 0xFF
	}
	return uint16(code) << 4
}
