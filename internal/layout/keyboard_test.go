package layout

import "testing"

func TestKeyboardHiddenAtMount(t *testing.T) {
	m := NewKeyboardMonitor(800, TouchKeyboardThreshold)
	if m.Visible() {
		t.Error("keyboard should start hidden")
	}
	if m.Delta() != 0 {
		t.Errorf("Delta = %d, want 0 at mount", m.Delta())
	}
}

func TestKeyboardShowsOnLargeShrink(t *testing.T) {
	m := NewKeyboardMonitor(800, TouchKeyboardThreshold)

	m.Observe(500)
	if !m.Visible() {
		t.Error("300px shrink should classify as visible on touch")
	}
	if m.Delta() != 300 {
		t.Errorf("Delta = %d, want 300", m.Delta())
	}

	m.Observe(800)
	if m.Visible() {
		t.Error("restored height should classify as hidden")
	}
}

func TestKeyboardIgnoresBrowserChrome(t *testing.T) {
	// Mobile browser chrome shrinks the viewport by up to ~100px on its
	// own; the touch threshold must not misread that as a keyboard.
	m := NewKeyboardMonitor(800, TouchKeyboardThreshold)
	m.Observe(700)
	if m.Visible() {
		t.Error("100px shrink is browser chrome, not a keyboard")
	}
}

func TestKeyboardDesktopThreshold(t *testing.T) {
	m := NewKeyboardMonitor(800, DesktopKeyboardThreshold)
	m.Observe(690)
	if !m.Visible() {
		t.Error("110px shrink should trip the desktop threshold")
	}
}

func TestKeyboardThresholdIsExclusive(t *testing.T) {
	m := NewKeyboardMonitor(800, TouchKeyboardThreshold)
	m.Observe(650) // shrink of exactly 150
	if m.Visible() {
		t.Error("a shrink equal to the threshold should stay hidden")
	}
	m.Observe(649)
	if !m.Visible() {
		t.Error("one pixel past the threshold should show")
	}
}

func TestKeyboardOnChangeFiresOnFlipsOnly(t *testing.T) {
	m := NewKeyboardMonitor(800, TouchKeyboardThreshold)

	var calls []bool
	m.OnChange(func(visible bool) { calls = append(calls, visible) })

	m.Observe(500) // show
	m.Observe(480) // still shown, no flip
	m.Observe(800) // hide
	m.Observe(790) // still hidden

	want := []bool{true, false}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestKeyboardFocusChangedReevaluates(t *testing.T) {
	m := NewKeyboardMonitor(800, TouchKeyboardThreshold)

	var calls int
	m.OnChange(func(bool) { calls++ })

	// Height already observed shrunk before the callback registered on a
	// focus event; FocusChanged re-runs classification on the last height.
	m.Observe(500)
	m.FocusChanged()
	if calls != 1 {
		t.Errorf("calls = %d, FocusChanged must not re-fire without a flip", calls)
	}
	if !m.Visible() {
		t.Error("classification should hold after FocusChanged")
	}
}
