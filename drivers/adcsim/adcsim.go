// Package adcsim simulates the board's pair of ADC081C021 converters behind
// a raw start/write/read/stop bus, for host builds and tests. Input voltages
// are set directly; the simulated devices run the same window comparison and
// shared active-low alert line as the hardware.
package adcsim

import (
	"errors"
	"sync"

	"bufmon-go/drivers/adc081"
)

var (
	// ErrNoAck is returned when a start addresses a device that is not on
	// the simulated bus.
	ErrNoAck = errors.New("adcsim: address not acknowledged")
	// ErrBusState is returned when a primitive is used out of sequence.
	ErrBusState = errors.New("adcsim: primitive out of sequence")
)

const (
	bitUnder    = 1 << 0
	bitOver     = 1 << 1
	bitPinEn    = 1 << 2
	cycleField  = 0b111 << 5
	sampleShift = 4
)

type device struct {
	regs       [8]uint16
	millivolts uint16
}

// Pair is a simulated bus with two converters at the stock A/B addresses.
// It implements adc081.Bus. All methods are safe for concurrent use.
type Pair struct {
	mu     sync.Mutex
	order  []uint8
	devs   map[uint8]*device
	fail   error

	// transaction state
	started bool
	reading bool
	cur     *device
	ptr     uint8
	ptrSet  bool
	wbuf    []byte

	starts int
	stops  int
}

var _ adc081.Bus = (*Pair)(nil)

// New returns a Pair with devices at adc081.AddressBufA and AddressBufB,
// idle inputs at 0 mV and all registers at power-on values.
func New() *Pair {
	p := &Pair{devs: make(map[uint8]*device)}
	for _, addr := range []uint8{adc081.AddressBufA, adc081.AddressBufB} {
		d := &device{}
		d.regs[0x6] = 0x0FF0 // lowest conversion reset
		p.devs[addr] = d
		p.order = append(p.order, addr)
	}
	return p
}

// SetMillivolts drives the simulated input of the device at addr and re-runs
// the window comparison on both devices.
func (p *Pair) SetMillivolts(addr uint8, mv uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.devs[addr]; ok {
		d.millivolts = mv
	}
	p.evaluate()
}

// Pin returns the shared alert line as seen by the driver: high when idle,
// low while any armed device holds a pending status.
func (p *Pair) Pin() adc081.PinInput {
	return func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return !p.asserting()
	}
}

// Fail makes every following primitive return err until cleared with nil.
func (p *Pair) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

// Transactions counts start conditions, Stops stop conditions.
func (p *Pair) Transactions() int { p.mu.Lock(); defer p.mu.Unlock(); return p.starts }
func (p *Pair) Stops() int        { p.mu.Lock(); defer p.mu.Unlock(); return p.stops }

// Reg exposes a raw register for assertions.
func (p *Pair) Reg(addr, reg uint8) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.devs[addr]; ok {
		return d.regs[reg&0x7]
	}
	return 0
}

// --- adc081.Bus ---

func (p *Pair) Start(addrRW byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.starts++
	p.commit()
	d, ok := p.devs[addrRW>>1]
	if !ok {
		p.started = false
		return ErrNoAck
	}
	p.started = true
	p.cur = d
	p.reading = addrRW&1 != 0
	if !p.reading {
		// The next byte written selects the register; the pointer otherwise
		// persists across transactions, as on the real part.
		p.ptrSet = false
	}
	return nil
}

func (p *Pair) Write(buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	if !p.started || p.reading || p.cur == nil {
		return ErrBusState
	}
	for _, b := range buf {
		if !p.ptrSet {
			p.ptr = b & 0x7
			p.ptrSet = true
			continue
		}
		p.wbuf = append(p.wbuf, b)
	}
	return nil
}

func (p *Pair) Read(buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	if !p.started || !p.reading || p.cur == nil || !p.ptrSet {
		return ErrBusState
	}
	p.refreshConversion(p.cur)
	val := p.cur.regs[p.ptr]
	switch len(buf) {
	case 0:
	case 1:
		buf[0] = byte(val)
	default:
		buf[0] = byte(val >> 8)
		buf[1] = byte(val)
	}
	// A completed read NAKs the last byte and releases the bus.
	p.started = false
	p.reading = false
	return nil
}

func (p *Pair) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.stops++
	p.commit()
	p.started = false
	p.reading = false
	return nil
}

// --- internals (mu held) ---

// commit latches bytes written since the register pointer was set.
func (p *Pair) commit() {
	if p.cur == nil || len(p.wbuf) == 0 {
		p.wbuf = p.wbuf[:0]
		return
	}
	d := p.cur
	switch p.ptr {
	case 0x1: // alert status: write-one-to-clear
		d.regs[0x1] &^= uint16(p.wbuf[0])
	case 0x2: // configuration: 8-bit
		d.regs[0x2] = uint16(p.wbuf[0])
	default:
		if len(p.wbuf) >= 2 {
			d.regs[p.ptr] = uint16(p.wbuf[0])<<8 | uint16(p.wbuf[1])
		} else {
			d.regs[p.ptr] = uint16(p.wbuf[0])
		}
	}
	p.wbuf = p.wbuf[:0]
	p.evaluate()
}

func code(mv uint16) uint16 {
	c := (uint32(mv)*10 + 129) / 259
	if c > 0xFF {
		c = 0xFF
	}
	return uint16(c) << sampleShift
}

func (p *Pair) refreshConversion(d *device) {
	d.regs[0x0] = code(d.millivolts)
	if d.regs[0x6] > d.regs[0x0] {
		d.regs[0x6] = d.regs[0x0]
	}
	if d.regs[0x7] < d.regs[0x0] {
		d.regs[0x7] = d.regs[0x0]
	}
}

// evaluate runs the window comparison on every device whose automatic
// conversion cycle is enabled. Status bits latch until acknowledged.
func (p *Pair) evaluate() {
	for _, addr := range p.order {
		d := p.devs[addr]
		if d.regs[0x2]&cycleField == 0 {
			continue
		}
		p.refreshConversion(d)
		sample := d.regs[0x0]
		if sample < d.regs[0x3] {
			d.regs[0x1] |= bitUnder
		}
		if sample > d.regs[0x4] {
			d.regs[0x1] |= bitOver
		}
	}
}

func (p *Pair) asserting() bool {
	for _, addr := range p.order {
		d := p.devs[addr]
		if d.regs[0x1] != 0 && d.regs[0x2]&bitPinEn != 0 {
			return true
		}
	}
	return false
}
