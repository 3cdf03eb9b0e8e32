package adc081

// Bus is the raw I2C transaction surface the driver is built on. It matches
// controllers that expose discrete start/write/read/stop phases (FX2-style or
// bit-banged masters) rather than a whole-transaction API.
//
// Start takes the 8-bit address byte, i.e. the 7-bit device address shifted
// left with the R/W bit in bit 0. A second Start without an intervening Stop
// is a repeated start. Read fetches len(p) bytes, NAKs the final byte and
// releases the bus. Implementations must not retry internally.
type Bus interface {
	Start(addrRW byte) error
	Write(p []byte) error
	Read(p []byte) error
	Stop() error
}

// PinInput returns logical level of an input pin.
type PinInput func() bool

// regRead selects a register with an address-phase write, then fetches
// len(dst) bytes under a repeated start. On any step failure the bus is
// stopped before the error is returned, so a partial transaction is never
// left open.
func (m *Monitor) regRead(addr, reg uint8, dst []byte) error {
	if err := m.regReadSteps(addr, reg, dst); err != nil {
		_ = m.bus.Stop()
		return err
	}
	return nil
}

func (m *Monitor) regReadSteps(addr, reg uint8, dst []byte) error {
	if err := m.bus.Start(addr << 1); err != nil {
		return err
	}
	m.w[0] = reg
	if err := m.bus.Write(m.w[:1]); err != nil {
		return err
	}
	if err := m.bus.Start(addr<<1 | 1); err != nil {
		return err
	}
	return m.bus.Read(dst)
}

// regWrite writes the register index followed by the data bytes and stops.
// The failure path mirrors regRead: stop, then report.
func (m *Monitor) regWrite(addr, reg uint8, data []byte) error {
	if err := m.regWriteSteps(addr, reg, data); err != nil {
		_ = m.bus.Stop()
		return err
	}
	return m.bus.Stop()
}

func (m *Monitor) regWriteSteps(addr, reg uint8, data []byte) error {
	if err := m.bus.Start(addr << 1); err != nil {
		return err
	}
	m.w[0] = reg
	if err := m.bus.Write(m.w[:1]); err != nil {
		return err
	}
	return m.bus.Write(data)
}

// 16-bit register helpers. Data is big-endian on the wire: HIGH then LOW.

func (m *Monitor) readWord(addr, reg uint8) (uint16, error) {
	if err := m.regRead(addr, reg, m.r[:2]); err != nil {
		return 0, err
	}
	return uint16(m.r[0])<<8 | uint16(m.r[1]), nil
}

func (m *Monitor) writeWord(addr, reg uint8, val uint16) error {
	m.w[1] = byte(val >> 8)
	m.w[2] = byte(val)
	return m.regWrite(addr, reg, m.w[1:3])
}

// 8-bit register helpers (alert status, configuration).

func (m *Monitor) readByte(addr, reg uint8) (byte, error) {
	if err := m.regRead(addr, reg, m.r[:1]); err != nil {
		return 0, err
	}
	return m.r[0], nil
}

func (m *Monitor) writeByte(addr, reg uint8, val byte) error {
	m.w[1] = val
	return m.regWrite(addr, reg, m.w[1:2])
}
