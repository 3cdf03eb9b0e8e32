package adc081_test

import (
	"errors"
	"testing"

	"bufmon-go/drivers/adc081"
	"bufmon-go/drivers/adcsim"
)

const (
	regAlertStatus = 1
	regConfig      = 2
	regHighLimit   = 4
	regHysteresis  = 5
	regLowestConv  = 6
	regHighestConv = 7

	bitPinEn = 1 << 2
)

func newMonitor(t *testing.T) (*adcsim.Pair, *adc081.Monitor) {
	t.Helper()
	sim := adcsim.New()
	mon := adc081.New(adc081.Config{Bus: sim, AlertPin: sim.Pin()})
	if err := mon.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	return sim, mon
}

func within(t *testing.T, got, want, tol uint16) {
	t.Helper()
	lo, hi := int(want)-int(tol), int(want)+int(tol)
	if int(got) < lo || int(got) > hi {
		t.Fatalf("got %d mV, want %d±%d", got, want, tol)
	}
}

func TestMeasureVoltage(t *testing.T) {
	sim, mon := newMonitor(t)
	sim.SetMillivolts(adc081.AddressBufA, 3300)
	sim.SetMillivolts(adc081.AddressBufB, 1200)

	mv, err := mon.MeasureVoltage(adc081.BufA)
	if err != nil {
		t.Fatalf("measure A: %v", err)
	}
	within(t, mv, 3300, 13)

	mv, err = mon.MeasureVoltage(adc081.BufB)
	if err != nil {
		t.Fatalf("measure B: %v", err)
	}
	within(t, mv, 1200, 13)
}

func TestMeasureVoltage_UnknownSelector_NoBusActivity(t *testing.T) {
	sim, mon := newMonitor(t)
	before := sim.Transactions()

	_, err := mon.MeasureVoltage(adc081.Selector(1 << 6))
	if !errors.Is(err, adc081.ErrUnknownBuffer) {
		t.Fatalf("err = %v, want ErrUnknownBuffer", err)
	}
	if n := sim.Transactions() - before; n != 0 {
		t.Fatalf("unresolved selector caused %d bus transactions", n)
	}
}

func TestSetAlert_ValidationFailsBeforeBusIO(t *testing.T) {
	sim, mon := newMonitor(t)
	before := sim.Transactions()

	err := mon.SetAlert(adc081.BufA|adc081.BufB, 0, adc081.MaxVoltage+1)
	if !errors.Is(err, adc081.ErrRangeExceeded) {
		t.Fatalf("err = %v, want ErrRangeExceeded", err)
	}
	if err := mon.SetAlert(adc081.BufA, adc081.MaxVoltage+500, 2000); !errors.Is(err, adc081.ErrRangeExceeded) {
		t.Fatalf("err = %v, want ErrRangeExceeded", err)
	}
	if n := sim.Transactions() - before; n != 0 {
		t.Fatalf("rejected thresholds caused %d bus transactions", n)
	}
}

func TestSetAlert_DisabledPair(t *testing.T) {
	sim, mon := newMonitor(t)

	// Arm first so disabling is observable.
	if err := mon.SetAlert(adc081.BufA, 1000, 2000); err != nil {
		t.Fatalf("arm: %v", err)
	}
	if err := mon.SetAlert(adc081.BufA, 0, adc081.MaxVoltage); err != nil {
		t.Fatalf("disable: %v", err)
	}

	low, high, err := mon.GetAlert(adc081.BufA)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if low != 0 || high != adc081.MaxVoltage {
		t.Fatalf("disabled window reported as (%d, %d)", low, high)
	}
	if v := sim.Reg(adc081.AddressBufA, regConfig); v != 0 {
		t.Fatalf("configuration register = %#x, want 0", v)
	}
	if v := sim.Reg(adc081.AddressBufA, regHighLimit); v != 0x0FF0 {
		t.Fatalf("disabled high limit = %#04x, want full scale", v)
	}
}

func TestSetAlert_WindowRoundTrip(t *testing.T) {
	_, mon := newMonitor(t)

	if err := mon.SetAlert(adc081.BufA, 1000, 2000); err != nil {
		t.Fatalf("set: %v", err)
	}
	low, high, err := mon.GetAlert(adc081.BufA)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	within(t, low, 1000, 13)
	within(t, high, 2000, 13)
}

func TestSetAlert_MaskTargetsBothDevices(t *testing.T) {
	sim, mon := newMonitor(t)

	if err := mon.SetAlert(adc081.BufA|adc081.BufB, 1000, 2000); err != nil {
		t.Fatalf("set: %v", err)
	}
	for _, addr := range []uint8{adc081.AddressBufA, adc081.AddressBufB} {
		if sim.Reg(addr, regConfig)&bitPinEn == 0 {
			t.Fatalf("device %#x not armed", addr)
		}
	}
	// Unmatched mask bits are skipped silently.
	if err := mon.SetAlert(adc081.Selector(1<<5), 1000, 2000); err != nil {
		t.Fatalf("unmatched mask: %v", err)
	}
}

func TestPollAlert_DisarmThenRearm(t *testing.T) {
	sim, mon := newMonitor(t)

	if err := mon.SetAlert(adc081.BufA, 1000, 2000); err != nil {
		t.Fatalf("set: %v", err)
	}
	sim.SetMillivolts(adc081.AddressBufA, 2500)

	if !mon.Alerted() {
		t.Fatal("alert line not asserted for out-of-range input")
	}

	// clear=false: identify and release the pin, status preserved.
	mask, err := mon.PollAlert(false)
	if err != nil {
		t.Fatalf("poll(false): %v", err)
	}
	if mask != adc081.BufA {
		t.Fatalf("mask = %02b, want BufA only", mask)
	}
	if sim.Reg(adc081.AddressBufA, regAlertStatus) == 0 {
		t.Fatal("status register cleared by poll(false)")
	}
	if sim.Reg(adc081.AddressBufA, regConfig)&bitPinEn != 0 {
		t.Fatal("pin-enable still set after poll(false)")
	}
	if mon.Alerted() {
		t.Fatal("alert line still asserted after disarm")
	}

	// Back in range, clear=true: acknowledge and re-arm.
	sim.SetMillivolts(adc081.AddressBufA, 1500)
	mask, err = mon.PollAlert(true)
	if err != nil {
		t.Fatalf("poll(true): %v", err)
	}
	if mask != adc081.BufA {
		t.Fatalf("mask = %02b, want BufA only", mask)
	}
	if v := sim.Reg(adc081.AddressBufA, regAlertStatus); v != 0 {
		t.Fatalf("status register = %#x after poll(true), want 0", v)
	}
	if sim.Reg(adc081.AddressBufA, regConfig)&bitPinEn == 0 {
		t.Fatal("pin-enable not restored by poll(true)")
	}
}

func TestPollAlert_BothDevicesInOnePass(t *testing.T) {
	sim, mon := newMonitor(t)

	if err := mon.SetAlert(adc081.BufA|adc081.BufB, 1000, 2000); err != nil {
		t.Fatalf("set: %v", err)
	}
	sim.SetMillivolts(adc081.AddressBufA, 2500)
	sim.SetMillivolts(adc081.AddressBufB, 500)

	mask, err := mon.PollAlert(false)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if mask != adc081.BufA|adc081.BufB {
		t.Fatalf("mask = %02b, want both buffers", mask)
	}
	for _, addr := range []uint8{adc081.AddressBufA, adc081.AddressBufB} {
		if sim.Reg(addr, regConfig)&bitPinEn != 0 {
			t.Fatalf("device %#x pin not disarmed", addr)
		}
	}
	if mon.Alerted() {
		t.Fatal("alert line still asserted with both pins disarmed")
	}
}

func TestSetAlertWindow_ClampsToRail(t *testing.T) {
	_, mon := newMonitor(t)

	if err := mon.SetAlertWindow(adc081.BufA, 100, 500); err != nil {
		t.Fatalf("window: %v", err)
	}
	low, high, err := mon.GetAlert(adc081.BufA)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if low != 0 {
		t.Fatalf("low = %d, want clamp to 0", low)
	}
	within(t, high, 600, 13)
}

func TestHysteresisAndExtremes(t *testing.T) {
	sim, mon := newMonitor(t)

	if err := mon.SetHysteresis(adc081.BufA, 100); err != nil {
		t.Fatalf("hysteresis: %v", err)
	}
	if v := sim.Reg(adc081.AddressBufA, regHysteresis); v != adc081.MillivoltsToCode(100) {
		t.Fatalf("hysteresis register = %#04x", v)
	}
	if err := mon.SetHysteresis(adc081.BufA, adc081.MaxVoltage+1); !errors.Is(err, adc081.ErrRangeExceeded) {
		t.Fatalf("err = %v, want ErrRangeExceeded", err)
	}

	sim.SetMillivolts(adc081.AddressBufA, 1000)
	if _, err := mon.MeasureVoltage(adc081.BufA); err != nil {
		t.Fatalf("measure: %v", err)
	}
	sim.SetMillivolts(adc081.AddressBufA, 3000)
	if _, err := mon.MeasureVoltage(adc081.BufA); err != nil {
		t.Fatalf("measure: %v", err)
	}

	low, high, err := mon.ConversionExtremes(adc081.BufA)
	if err != nil {
		t.Fatalf("extremes: %v", err)
	}
	within(t, low, 1000, 13)
	within(t, high, 3000, 13)

	if err := mon.ClearExtremes(adc081.BufA); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if v := sim.Reg(adc081.AddressBufA, regLowestConv); v != 0x0FF0 {
		t.Fatalf("lowest conversion = %#04x after clear", v)
	}
	if v := sim.Reg(adc081.AddressBufA, regHighestConv); v != 0x0000 {
		t.Fatalf("highest conversion = %#04x after clear", v)
	}
}

func TestConfigure_PropagatesBusFault(t *testing.T) {
	sim, mon := newMonitor(t)
	boom := errors.New("boom")
	sim.Fail(boom)
	if err := mon.Configure(); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected fault", err)
	}
}
