package adc081

import "tinygo.org/x/drivers"

// TxBus exposes the raw transaction primitives through the tinygo driver Tx
// shape, so other drivers can share the same physical bus as the converters.
// A write followed by a read is performed under a repeated start without
// releasing the bus in between.
type TxBus struct {
	bus Bus
}

var _ drivers.I2C = (*TxBus)(nil)

// NewTxBus wraps bus in a drivers.I2C adapter.
func NewTxBus(bus Bus) *TxBus {
	return &TxBus{bus: bus}
}

// Tx writes w (if any), reads into r (if any) under a repeated start, and
// leaves the bus stopped whether the transaction succeeds or fails.
func (t *TxBus) Tx(addr uint16, w, r []byte) error {
	if err := t.steps(addr, w, r); err != nil {
		_ = t.bus.Stop()
		return err
	}
	if len(r) == 0 {
		// Read implementations release the bus themselves.
		return t.bus.Stop()
	}
	return nil
}

func (t *TxBus) steps(addr uint16, w, r []byte) error {
	addrRW := byte(addr) << 1
	if len(w) > 0 {
		if err := t.bus.Start(addrRW); err != nil {
			return err
		}
		if err := t.bus.Write(w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if err := t.bus.Start(addrRW | 1); err != nil {
			return err
		}
		return t.bus.Read(r)
	}
	return nil
}
