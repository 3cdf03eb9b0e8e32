// Register addresses and bitfields of the ADC081C021, per its datasheet
// register map.

package adc081

const (
	// 7-bit I2C addresses of the two buffer monitors (ADR pin strapping).
	AddressBufA = 0x54
	AddressBufB = 0x55

	// --- Register sub-addresses ---

	regConvResult  = 0x0 // R, 16-bit, sample in bits 15..4
	regAlertStatus = 0x1 // R/W1C, 8-bit
	regConfig      = 0x2 // R/W, 8-bit
	regLowLimit    = 0x3 // R/W, 16-bit
	regHighLimit   = 0x4 // R/W, 16-bit
	regHysteresis  = 0x5 // R/W, 16-bit
	regLowestConv  = 0x6 // R/W, 16-bit, tracks minimum sample
	regHighestConv = 0x7 // R/W, 16-bit, tracks maximum sample

	// --- Conversion Result register bits ---

	bitAlertFlag = 1 << 15

	// --- Alert Status register bits ---

	bitUnderRange = 1 << 0
	bitOverRange  = 1 << 1

	// --- Configuration register bits ---

	bitPolarity    = 1 << 0
	bitAlertPinEn  = 1 << 2
	bitAlertFlagEn = 1 << 3
	bitAlertHold   = 1 << 4

	// Automatic conversion cycle time field (bits 7..5); 0b110 = 1 ksps.
	cycle1ksps = 0b110 << 5

	// Power-on reset values of the running extremes (bits 15..4 all ones /
	// all zeroes).
	lowestConvReset  = 0x0FF0
	highestConvReset = 0x0000
)
