package layout

import "testing"

func TestFooterDefaultsAndReserved(t *testing.T) {
	b := NewFooterBroadcaster(FooterConfig{})
	want := DefaultInputMinHeight + DefaultFABOverlap + DefaultNavHeight
	if got := b.Reserved(); got != want {
		t.Errorf("Reserved = %d, want %d", got, want)
	}
}

func TestFooterReservedTracksInputHeight(t *testing.T) {
	b := NewFooterBroadcaster(FooterConfig{})
	b.SetInputHeight(120)
	want := 120 + DefaultFABOverlap + DefaultNavHeight
	if got := b.Reserved(); got != want {
		t.Errorf("Reserved = %d, want %d", got, want)
	}
}

func TestFooterClampsInputHeight(t *testing.T) {
	b := NewFooterBroadcaster(FooterConfig{})

	b.SetInputHeight(10)
	if got := b.Reserved(); got != DefaultInputMinHeight+DefaultFABOverlap+DefaultNavHeight {
		t.Errorf("Reserved = %d after under-min set, want clamp to min", got)
	}

	b.SetInputHeight(5000)
	if got := b.Reserved(); got != DefaultInputMaxHeight+DefaultFABOverlap+DefaultNavHeight {
		t.Errorf("Reserved = %d after over-max set, want clamp to max", got)
	}
}

func TestFooterSubscribeDeliversCurrentValue(t *testing.T) {
	b := NewFooterBroadcaster(FooterConfig{})
	b.SetInputHeight(100)

	var got int
	unsub := b.Subscribe(func(reserved int) { got = reserved })
	defer unsub()

	if want := 100 + DefaultFABOverlap + DefaultNavHeight; got != want {
		t.Errorf("late subscriber got %d, want current value %d", got, want)
	}
}

func TestFooterBroadcastsToAllSubscribers(t *testing.T) {
	b := NewFooterBroadcaster(FooterConfig{})

	var a, c []int
	b.Subscribe(func(r int) { a = append(a, r) })
	b.Subscribe(func(r int) { c = append(c, r) })

	b.SetInputHeight(90)
	b.SetInputHeight(90) // unchanged, no publish
	b.SetInputHeight(140)

	want := []int{
		DefaultInputMinHeight + DefaultFABOverlap + DefaultNavHeight, // on subscribe
		90 + DefaultFABOverlap + DefaultNavHeight,
		140 + DefaultFABOverlap + DefaultNavHeight,
	}
	for name, got := range map[string][]int{"a": a, "c": c} {
		if len(got) != len(want) {
			t.Fatalf("subscriber %s saw %v, want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("subscriber %s value %d = %d, want %d", name, i, got[i], want[i])
			}
		}
	}
}

func TestFooterUnsubscribeStopsDelivery(t *testing.T) {
	b := NewFooterBroadcaster(FooterConfig{})

	var calls int
	unsub := b.Subscribe(func(int) { calls++ })
	unsub()

	b.SetInputHeight(150)
	if calls != 1 {
		t.Errorf("calls = %d, want only the subscribe-time delivery", calls)
	}
}

func TestFooterCustomGeometry(t *testing.T) {
	b := NewFooterBroadcaster(FooterConfig{
		InputMinHeight: 40,
		InputMaxHeight: 100,
		FABOverlap:     16,
		NavHeight:      48,
	})
	if got := b.Reserved(); got != 40+16+48 {
		t.Errorf("Reserved = %d, want %d", got, 40+16+48)
	}
}
