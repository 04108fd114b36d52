// internal/layout/keyboard.go
package layout

import (
	"sync"
)

// Keyboard visibility thresholds in logical pixels. Touch handhelds get a
// larger threshold because mobile browser chrome resizes the viewport by
// up to ~100px on its own.
const (
	TouchKeyboardThreshold   = 150
	DesktopKeyboardThreshold = 100
)

// KeyboardMonitor infers on-screen keyboard presence from viewport
// geometry. It records the viewport height at mount and classifies the
// keyboard as visible when the shrink from that baseline exceeds the
// threshold. This is a heuristic, not an authoritative signal; the raw
// delta stays exposed so callers near the threshold can decide for
// themselves.
type KeyboardMonitor struct {
	mu            sync.Mutex
	initialHeight int
	currentHeight int
	threshold     int
	visible       bool
	onChange      func(visible bool)
}

// NewKeyboardMonitor seeds the monitor with the mount-time viewport height
// and a threshold, typically TouchKeyboardThreshold or
// DesktopKeyboardThreshold.
func NewKeyboardMonitor(initialHeight, threshold int) *KeyboardMonitor {
	return &KeyboardMonitor{
		initialHeight: initialHeight,
		currentHeight: initialHeight,
		threshold:     threshold,
	}
}

// OnChange registers a callback fired whenever the visibility
// classification flips. The callback runs on the observing goroutine,
// like an event handler.
func (m *KeyboardMonitor) OnChange(fn func(visible bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Observe feeds a resize, orientation-change, or visual-viewport event's
// height into the heuristic.
func (m *KeyboardMonitor) Observe(height int) {
	m.mu.Lock()
	m.currentHeight = height
	fn, visible, flipped := m.reclassifyLocked()
	m.mu.Unlock()

	if flipped && fn != nil {
		fn(visible)
	}
}

// FocusChanged is the backup signal: focus and blur events on text inputs
// fire before the keyboard animates, so either one forces re-evaluation
// against the last observed height.
func (m *KeyboardMonitor) FocusChanged() {
	m.mu.Lock()
	fn, visible, flipped := m.reclassifyLocked()
	m.mu.Unlock()

	if flipped && fn != nil {
		fn(visible)
	}
}

// Visible reports the current classification.
func (m *KeyboardMonitor) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Delta returns the raw shrink from the mount-time baseline.
func (m *KeyboardMonitor) Delta() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialHeight - m.currentHeight
}

func (m *KeyboardMonitor) reclassifyLocked() (fn func(bool), visible, flipped bool) {
	visible = m.initialHeight-m.currentHeight > m.threshold
	flipped = visible != m.visible
	m.visible = visible
	return m.onChange, visible, flipped
}
