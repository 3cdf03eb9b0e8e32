// Package adc081 drives the pair of ADC081C021 converters that monitor the
// board's two I/O buffer rails. Each converter compares its sample against a
// programmable low/high window and asserts a shared, active-low alert line
// when outside it, so the controlling system does not have to poll raw
// voltages.
//
// Per-device alert life cycle:
//
//	Disabled ⇄ Armed            via SetAlert / ResetAlert
//	Armed    → Triggered        hardware detects out-of-range, asserts pin
//	Triggered → Disarmed-pending via PollAlert(false): pin released, status kept
//	Disarmed-pending → Armed     via PollAlert(true): status acked, pin re-enabled
//
// All operations are synchronous and unlocked; the bus and both devices are a
// shared resource the caller must serialise access to.
package adc081

import "errors"

// MaxVoltage is the supply-rail ceiling in millivolts. Alert thresholds above
// it are rejected; the pair (0, MaxVoltage) encodes "alert disabled".
const MaxVoltage = 5500

// Sentinel errors (TinyGo-safe; no fmt). Bus failures propagate unchanged
// from the Bus implementation.
var (
	ErrUnknownBuffer = errors.New("adc081: no buffer matches selector")
	ErrRangeExceeded = errors.New("adc081: threshold above MaxVoltage")
)

// Selector identifies one logical signal buffer. Values are single bits so
// mask-based operations can address several devices in one call.
type Selector uint8

const (
	BufA Selector = 1 << 0
	BufB Selector = 1 << 1
)

// BufferDesc binds a selector bit to the 7-bit bus address of the converter
// watching that buffer.
type BufferDesc struct {
	Selector Selector
	Address  uint8
}

// Config for a Monitor. Buffers defaults to the stock A/B pair.
type Config struct {
	Bus      Bus
	AlertPin PinInput // shared alert line, active-low; may be nil if unused
	Buffers  []BufferDesc
}

// Monitor drives the converter pair behind one raw bus.
type Monitor struct {
	bus    Bus
	alertN PinInput
	table  []BufferDesc

	// Fixed buffers to avoid per-call heap allocations.
	w [3]byte
	r [2]byte
}

var defaultBuffers = []BufferDesc{
	{BufA, AddressBufA},
	{BufB, AddressBufB},
}

// New constructs a Monitor. It does not touch the hardware.
func New(cfg Config) *Monitor {
	table := cfg.Buffers
	if len(table) == 0 {
		table = defaultBuffers
	}
	return &Monitor{
		bus:    cfg.Bus,
		alertN: cfg.AlertPin,
		table:  table,
	}
}

// Configure probes every converter in the table by reading its configuration
// register, failing fast if one does not respond. Pin and interrupt setup is
// the platform's job and happens outside this driver.
func (m *Monitor) Configure() error {
	for _, buf := range m.table {
		if _, err := m.readByte(buf.Address, regConfig); err != nil {
			return err
		}
	}
	return nil
}

// resolve returns the descriptor matching sel, or ErrUnknownBuffer. Exact
// single-buffer operations go through here; mask operations scan the table
// directly and skip unmatched bits silently.
func (m *Monitor) resolve(sel Selector) (BufferDesc, error) {
	for _, buf := range m.table {
		if buf.Selector == sel {
			return buf, nil
		}
	}
	return BufferDesc{}, ErrUnknownBuffer
}

// MeasureVoltage reads the current conversion result of the selected buffer's
// converter and returns it in millivolts.
func (m *Monitor) MeasureVoltage(sel Selector) (uint16, error) {
	buf, err := m.resolve(sel)
	if err != nil {
		return 0, err
	}
	word, err := m.readWord(buf.Address, regConvResult)
	if err != nil {
		return 0, err
	}
	// Bit 15 doubles as the alert flag; keep it out of the sample.
	return CodeToMillivolts(word &^ bitAlertFlag), nil
}

// SetAlert programs the out-of-range window of every converter matched by
// mask. The pair (0, MaxVoltage) disables alerting; any other valid pair
// arms it at 1 ksps with the alert pin enabled and held until acknowledged.
//
// Register order per device is low limit, high limit, status ack, config.
// Writing config last means the pin-enable bit is never set while stale
// thresholds or a stale pending-alert flag remain. A write failure aborts the
// whole operation; registers already written stay as written.
func (m *Monitor) SetAlert(mask Selector, lowMV, highMV uint16) error {
	if lowMV > MaxVoltage || highMV > MaxVoltage {
		return ErrRangeExceeded
	}

	lowCode := uint16(0x0000)
	highCode := uint16(0x0FF0) // full scale
	control := byte(0)
	if !(lowMV == 0 && highMV == MaxVoltage) {
		lowCode = MillivoltsToCode(lowMV)
		highCode = MillivoltsToCode(highMV)
		control = bitAlertPinEn | bitAlertHold | cycle1ksps
	}

	for _, buf := range m.table {
		if mask&buf.Selector == 0 {
			continue
		}
		if err := m.writeWord(buf.Address, regLowLimit, lowCode); err != nil {
			return err
		}
		if err := m.writeWord(buf.Address, regHighLimit, highCode); err != nil {
			return err
		}
		if err := m.writeByte(buf.Address, regAlertStatus, bitUnderRange|bitOverRange); err != nil {
			return err
		}
		if err := m.writeByte(buf.Address, regConfig, control); err != nil {
			return err
		}
	}
	return nil
}

// ResetAlert disables alerting on every converter matched by mask.
func (m *Monitor) ResetAlert(mask Selector) error {
	return m.SetAlert(mask, 0, MaxVoltage)
}

// GetAlert reports the programmed window of the selected buffer's converter.
// A zero configuration register means alerting is disabled and is reported as
// (0, MaxVoltage) without further bus I/O.
func (m *Monitor) GetAlert(sel Selector) (lowMV, highMV uint16, err error) {
	buf, err := m.resolve(sel)
	if err != nil {
		return 0, 0, err
	}
	control, err := m.readByte(buf.Address, regConfig)
	if err != nil {
		return 0, 0, err
	}
	if control == 0 {
		return 0, MaxVoltage, nil
	}
	lowCode, err := m.readWord(buf.Address, regLowLimit)
	if err != nil {
		return 0, 0, err
	}
	highCode, err := m.readWord(buf.Address, regHighLimit)
	if err != nil {
		return 0, 0, err
	}
	return CodeToMillivolts(lowCode), CodeToMillivolts(highCode), nil
}

// Alerted reports whether any converter is currently asserting the shared
// alert line (active-low). It reads only the pin, never the bus, so it is a
// cheap pre-check before PollAlert. Returns false when no pin is wired.
func (m *Monitor) Alerted() bool {
	if m.alertN == nil {
		return false
	}
	return !m.alertN()
}

// PollAlert scans every converter for a latched under/over-range condition
// and returns the selector mask of those found. The alert line is
// level-triggered and wire-shared, so one pass must visit all devices to
// disambiguate origin.
//
// With clear=true the latched status is written back (acknowledged) and the
// pin-enable bit is restored, re-arming the device. With clear=false only the
// pin-enable bit is cleared: the device releases the shared line without
// losing its status, so assertions from the other converter stay visible.
//
// Devices are visited in fixed table order. On a mid-scan bus error the mask
// accumulated so far is returned alongside the error.
func (m *Monitor) PollAlert(clear bool) (Selector, error) {
	var mask Selector
	for _, buf := range m.table {
		status, err := m.readByte(buf.Address, regAlertStatus)
		if err != nil {
			return mask, err
		}
		if status == 0 {
			continue
		}
		mask |= buf.Selector

		control, err := m.readByte(buf.Address, regConfig)
		if err != nil {
			return mask, err
		}
		if clear {
			if err := m.writeByte(buf.Address, regAlertStatus, status); err != nil {
				return mask, err
			}
			control |= bitAlertPinEn
		} else {
			control &^= bitAlertPinEn
		}
		if err := m.writeByte(buf.Address, regConfig, control); err != nil {
			return mask, err
		}
	}
	return mask, nil
}
