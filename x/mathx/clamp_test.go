package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("Clamp(-5, 0, 10) = %d", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("Clamp(15, 0, 10) = %d", got)
	}
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5, 0, 10) = %d", got)
	}
	if got := Clamp(5, 10, 0); got != 5 {
		t.Errorf("Clamp with swapped bounds = %d", got)
	}
}

func TestBetween(t *testing.T) {
	if !Between(5, 0, 10) || !Between(0, 0, 10) || !Between(10, 0, 10) {
		t.Error("bounds are inclusive")
	}
	if Between(11, 0, 10) {
		t.Error("11 is not in [0, 10]")
	}
	if !Between(5, 10, 0) {
		t.Error("swapped bounds not handled")
	}
}

func TestAbsDiff(t *testing.T) {
	if got := AbsDiff(uint16(3), uint16(8)); got != 5 {
		t.Errorf("AbsDiff(3, 8) = %d", got)
	}
	if got := AbsDiff(uint16(8), uint16(3)); got != 5 {
		t.Errorf("AbsDiff(8, 3) = %d", got)
	}
}
