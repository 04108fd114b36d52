// internal/layout/footer.go
package layout

import (
	"sync"
)

// Default geometry in logical pixels, matching the composing UI: the input
// region grows between its minimum and maximum as content wraps, the
// floating action control overlaps the footer by a fixed allowance, and
// the bottom navigation bar has a fixed height.
const (
	DefaultInputMinHeight = 56
	DefaultInputMaxHeight = 180
	DefaultFABOverlap     = 24
	DefaultNavHeight      = 64
)

// FooterBroadcaster publishes the combined reserved footer height: the
// measured input-region height plus the floating-action-control overlap
// allowance plus the bottom-navigation height. Single writer (the input
// region reporting its rendered height), many readers (each floating
// control offsets itself additively by the published value).
type FooterBroadcaster struct {
	mu          sync.Mutex
	inputMin    int
	inputMax    int
	fabOverlap  int
	navHeight   int
	inputHeight int
	subscribers map[int]func(reserved int)
	nextSub     int
}

// FooterConfig carries the fixed geometry for a broadcaster. Zero values
// fall back to the defaults above.
type FooterConfig struct {
	InputMinHeight int
	InputMaxHeight int
	FABOverlap     int
	NavHeight      int
}

// NewFooterBroadcaster creates a broadcaster with the given geometry. The
// initial input height is the configured minimum.
func NewFooterBroadcaster(cfg FooterConfig) *FooterBroadcaster {
	if cfg.InputMinHeight <= 0 {
		cfg.InputMinHeight = DefaultInputMinHeight
	}
	if cfg.InputMaxHeight <= 0 {
		cfg.InputMaxHeight = DefaultInputMaxHeight
	}
	if cfg.FABOverlap <= 0 {
		cfg.FABOverlap = DefaultFABOverlap
	}
	if cfg.NavHeight <= 0 {
		cfg.NavHeight = DefaultNavHeight
	}
	return &FooterBroadcaster{
		inputMin:    cfg.InputMinHeight,
		inputMax:    cfg.InputMaxHeight,
		fabOverlap:  cfg.FABOverlap,
		navHeight:   cfg.NavHeight,
		inputHeight: cfg.InputMinHeight,
		subscribers: make(map[int]func(int)),
	}
}

// SetInputHeight records the input region's rendered height, clamped to
// [min, max], and publishes the recomputed reserved height to every
// subscriber when it changed.
func (b *FooterBroadcaster) SetInputHeight(h int) {
	b.mu.Lock()
	if h < b.inputMin {
		h = b.inputMin
	}
	if h > b.inputMax {
		h = b.inputMax
	}
	if h == b.inputHeight {
		b.mu.Unlock()
		return
	}
	b.inputHeight = h
	reserved := b.reservedLocked()
	subs := make([]func(int), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(reserved)
	}
}

// Reserved returns the current combined reserved height.
func (b *FooterBroadcaster) Reserved() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reservedLocked()
}

// Subscribe registers a consumer and immediately delivers the current
// value so late subscribers position correctly. Returns an unsubscribe
// function.
func (b *FooterBroadcaster) Subscribe(fn func(reserved int)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subscribers[id] = fn
	reserved := b.reservedLocked()
	b.mu.Unlock()

	fn(reserved)

	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
}

func (b *FooterBroadcaster) reservedLocked() int {
	return b.inputHeight + b.fabOverlap + b.navHeight
}
