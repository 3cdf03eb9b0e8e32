// Package monitor runs the periodic supervision loop over the buffer-voltage
// converters: it samples each configured buffer, pre-checks the shared alert
// line once per pass, and services latched alerts, delivering results on
// typed channels. The driver itself stays synchronous and unlocked; this
// service is the single goroutine that owns it.
package monitor

import (
	"context"
	"errors"
	"time"

	"bufmon-go/drivers/adc081"
	"bufmon-go/errcode"
)

// Reading is one voltage sample of one buffer.
type Reading struct {
	Buffer     adc081.Selector
	Millivolts uint16
}

// AlertEvent reports which buffers had latched out-of-range conditions in
// one poll pass. The devices are re-armed before the event is delivered.
type AlertEvent struct {
	Mask adc081.Selector
}

// Fault reports a failed driver operation with a stable code.
type Fault struct {
	Op   string
	Code errcode.Code
	Err  error
}

// Service owns a Monitor and runs the sampling loop.
type Service struct {
	mon *adc081.Monitor
	cfg Config

	readings chan Reading
	alerts   chan AlertEvent
	faults   chan Fault
}

// New builds a Service around mon. cfg should have been validated.
func New(mon *adc081.Monitor, cfg Config) *Service {
	cfg.normalize()
	return &Service{
		mon:      mon,
		cfg:      cfg,
		readings: make(chan Reading, 16),
		alerts:   make(chan AlertEvent, 4),
		faults:   make(chan Fault, 4),
	}
}

func (s *Service) Readings() <-chan Reading  { return s.readings }
func (s *Service) Alerts() <-chan AlertEvent { return s.alerts }
func (s *Service) Faults() <-chan Fault      { return s.faults }

// Run applies the configured alert windows and loops until ctx is cancelled.
// Channel sends never block; when a consumer lags, the oldest pending item is
// dropped in favour of the new one.
func (s *Service) Run(ctx context.Context) error {
	for _, b := range s.cfg.Buffers {
		sel, err := b.selector()
		if err != nil {
			return err
		}
		if err := s.mon.SetAlert(sel, b.LowMV, b.HighMV); err != nil {
			s.fault("set_alert", err)
			return err
		}
	}

	tick := time.NewTicker(s.cfg.interval())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			s.pass()
		}
	}
}

// pass performs one sampling sweep plus alert servicing.
func (s *Service) pass() {
	for _, b := range s.cfg.Buffers {
		sel, err := b.selector()
		if err != nil {
			continue
		}
		mv, err := s.mon.MeasureVoltage(sel)
		if err != nil {
			s.fault("measure_voltage", err)
			continue
		}
		push(s.readings, Reading{Buffer: sel, Millivolts: mv})
	}

	if !s.mon.Alerted() {
		return
	}
	mask, err := s.mon.PollAlert(true)
	if err != nil {
		s.fault("poll_alert", err)
	}
	if mask != 0 {
		push(s.alerts, AlertEvent{Mask: mask})
	}
}

func (s *Service) fault(op string, err error) {
	push(s.faults, Fault{Op: op, Code: codeOf(err), Err: err})
}

// codeOf maps driver errors onto stable codes: the driver has exactly two
// failure kinds (validation and bus transaction), plus selector resolution.
func codeOf(err error) errcode.Code {
	switch {
	case err == nil:
		return errcode.OK
	case errors.Is(err, adc081.ErrRangeExceeded):
		return errcode.OutOfRange
	case errors.Is(err, adc081.ErrUnknownBuffer):
		return errcode.UnknownBuffer
	default:
		return errcode.BusFault
	}
}

// push delivers without blocking, dropping the oldest item if the queue is
// full.
func push[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}
