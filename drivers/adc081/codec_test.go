package adc081

import (
	"testing"

	"bufmon-go/x/mathx"
)

func TestCodeToMillivolts_KnownPoints(t *testing.T) {
	cases := []struct {
		word uint16
		mv   uint16
	}{
		{0x0000, 0},
		{0x0010, 26},   // one word step below the code step is still code 1
		{0x0D50, 5517}, // highest code the sensor reaches
		{0x0FF0, 6605}, // full scale
	}
	for _, c := range cases {
		if got := CodeToMillivolts(c.word); got != c.mv {
			t.Errorf("CodeToMillivolts(%#04x) = %d, want %d", c.word, got, c.mv)
		}
	}
}

func TestMillivoltsToCode_KnownPoints(t *testing.T) {
	cases := []struct {
		mv   uint16
		word uint16
	}{
		{0, 0x0000},
		{1000, 0x0270}, // round(1000/25.9) = 39
		{5500, 0x0D40},
	}
	for _, c := range cases {
		if got := MillivoltsToCode(c.mv); got != c.word {
			t.Errorf("MillivoltsToCode(%d) = %#04x, want %#04x", c.mv, got, c.word)
		}
	}
}

func TestRoundTrip_WithinHalfStep(t *testing.T) {
	for v := 0; v <= MaxVoltage; v++ {
		got := int(CodeToMillivolts(MillivoltsToCode(uint16(v))))
		if diff := mathx.AbsDiff(got, v); diff > 13 {
			t.Fatalf("round trip of %d mV gives %d mV (off by %d, limit 13)", v, got, diff)
		}
	}
}

func TestCodeToMillivolts_IgnoresBitsBelowSample(t *testing.T) {
	if CodeToMillivolts(0x0271) != CodeToMillivolts(0x0270) {
		t.Error("bits 3..0 must not affect the conversion")
	}
}
