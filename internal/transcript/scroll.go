// internal/transcript/scroll.go
package transcript

// Pinner decides when a transcript view should snap its scroll position to
// the bottom: on any change to the message count or the streaming flag.
// It is a side-effect trigger on transcript mutation, deliberately separate
// from the pure grouping.
type Pinner struct {
	count     int
	streaming bool
	primed    bool
}

// Observe records the latest (count, streaming) pair and reports whether
// the view should pin to the bottom. The first observation always pins so
// a freshly loaded transcript opens at its newest message.
func (p *Pinner) Observe(count int, streaming bool) bool {
	changed := !p.primed || count != p.count || streaming != p.streaming
	p.count = count
	p.streaming = streaming
	p.primed = true
	return changed
}
