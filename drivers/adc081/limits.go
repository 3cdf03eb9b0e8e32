package adc081

import "bufmon-go/x/mathx"

// SetAlertWindow arms alerting on every converter matched by mask with a
// window of tolMV either side of centerMV, clamped to [0, MaxVoltage].
func (m *Monitor) SetAlertWindow(mask Selector, centerMV, tolMV uint16) error {
	lo := mathx.Clamp(int32(centerMV)-int32(tolMV), 0, MaxVoltage)
	hi := mathx.Clamp(int32(centerMV)+int32(tolMV), 0, MaxVoltage)
	return m.SetAlert(mask, uint16(lo), uint16(hi))
}

// SetHysteresis programs the alert hysteresis of every converter matched by
// mask. A triggered device then stays out-of-range until the sample re-enters
// the window by at least this margin.
func (m *Monitor) SetHysteresis(mask Selector, mv uint16) error {
	if mv > MaxVoltage {
		return ErrRangeExceeded
	}
	code := MillivoltsToCode(mv)
	for _, buf := range m.table {
		if mask&buf.Selector == 0 {
			continue
		}
		if err := m.writeWord(buf.Address, regHysteresis, code); err != nil {
			return err
		}
	}
	return nil
}

// ConversionExtremes reports the lowest and highest samples the selected
// buffer's converter has seen since the extremes were last cleared.
func (m *Monitor) ConversionExtremes(sel Selector) (lowMV, highMV uint16, err error) {
	buf, err := m.resolve(sel)
	if err != nil {
		return 0, 0, err
	}
	lowCode, err := m.readWord(buf.Address, regLowestConv)
	if err != nil {
		return 0, 0, err
	}
	highCode, err := m.readWord(buf.Address, regHighestConv)
	if err != nil {
		return 0, 0, err
	}
	return CodeToMillivolts(lowCode), CodeToMillivolts(highCode), nil
}

// ClearExtremes resets the running extremes of every converter matched by
// mask to their power-on values, restarting min/max tracking.
func (m *Monitor) ClearExtremes(mask Selector) error {
	for _, buf := range m.table {
		if mask&buf.Selector == 0 {
			continue
		}
		if err := m.writeWord(buf.Address, regLowestConv, lowestConvReset); err != nil {
			return err
		}
		if err := m.writeWord(buf.Address, regHighestConv, highestConvReset); err != nil {
			return err
		}
	}
	return nil
}
