package ingest

import "github.com/jonboulle/clockwork"

// clock stamps processed_at on output records. Tests swap it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
