package output

import (
	"cmp"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

// TimeWindow bounds a set of forecasts by valid time and lead duration.
// Times are held as Unix nanoseconds so the type is comparable and can be
// used in map keys. The zero time.Time means unbounded.
type TimeWindow struct {
	earliest     bound
	latest       bound
	earliestLead time.Duration
	latestLead   time.Duration
}

// bound is a valid time in Unix nanoseconds, or no bound when unset.
type bound struct {
	set   bool
	nanos int64
}

var (
	minTime = time.Unix(0, math.MinInt64)
	maxTime = time.Unix(0, math.MaxInt64)
)

func boundOf(t time.Time) (bound, error) {
	if t.IsZero() {
		return bound{}, nil
	}
	if t.Before(minTime) || t.After(maxTime) {
		return bound{}, domain.Invalidf("window time %s is outside %s to %s",
			t.UTC().Format(time.RFC3339), minTime.UTC().Format(time.RFC3339), maxTime.UTC().Format(time.RFC3339))
	}
	return bound{set: true, nanos: t.UnixNano()}, nil
}

func (b bound) time() time.Time {
	if !b.set {
		return time.Time{}
	}
	return time.Unix(0, b.nanos).UTC()
}

// compare orders bounds by time. unset is the result when only b is
// unbounded.
func (b bound) compare(o bound, unset int) int {
	switch {
	case b.set && o.set:
		return cmp.Compare(b.nanos, o.nanos)
	case b.set == o.set:
		return 0
	case !b.set:
		return unset
	default:
		return -unset
	}
}

// NewTimeWindow returns a window over [earliest, latest] valid times and
// [earliestLead, latestLead] lead durations. Times must fit in Unix
// nanoseconds, roughly the years 1678 to 2262.
func NewTimeWindow(earliest, latest time.Time, earliestLead, latestLead time.Duration) (TimeWindow, error) {
	e, err := boundOf(earliest)
	if err != nil {
		return TimeWindow{}, err
	}
	l, err := boundOf(latest)
	if err != nil {
		return TimeWindow{}, err
	}
	if e.set && l.set && l.nanos < e.nanos {
		return TimeWindow{}, domain.Invalidf("window ends at %s before it starts at %s",
			latest.UTC().Format(time.RFC3339), earliest.UTC().Format(time.RFC3339))
	}
	if latestLead < earliestLead {
		return TimeWindow{}, domain.Invalidf("latest lead %s is before earliest lead %s", latestLead, earliestLead)
	}
	return TimeWindow{earliest: e, latest: l, earliestLead: earliestLead, latestLead: latestLead}, nil
}

// LeadWindow returns the window of a single lead duration with unbounded
// valid times.
func LeadWindow(lead time.Duration) TimeWindow {
	return TimeWindow{earliestLead: lead, latestLead: lead}
}

func (w TimeWindow) Earliest() time.Time { return w.earliest.time() }

func (w TimeWindow) Latest() time.Time { return w.latest.time() }

func (w TimeWindow) EarliestLead() time.Duration { return w.earliestLead }

func (w TimeWindow) LatestLead() time.Duration { return w.latestLead }

// Lead returns the lead a window is sliced by: its latest lead.
func (w TimeWindow) Lead() time.Duration { return w.latestLead }

// IsLead reports whether the window holds one lead and no valid-time bounds.
func (w TimeWindow) IsLead() bool {
	return !w.earliest.set && !w.latest.set && w.earliestLead == w.latestLead
}

// Compare orders windows by earliest time, latest time, then leads. A
// missing earliest time sorts first and a missing latest time sorts last.
func (w TimeWindow) Compare(o TimeWindow) int {
	return cmp.Or(
		w.earliest.compare(o.earliest, -1),
		w.latest.compare(o.latest, 1),
		cmp.Compare(w.earliestLead, o.earliestLead),
		cmp.Compare(w.latestLead, o.latestLead),
	)
}

func (w TimeWindow) String() string {
	if w.IsLead() {
		return "lead " + w.latestLead.String()
	}
	return fmt.Sprintf("[%s, %s] lead [%s, %s]",
		formatTime(w.Earliest()), formatTime(w.Latest()), w.earliestLead, w.latestLead)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}

// Key locates one output in a Map.
type Key struct {
	Window    TimeWindow
	Threshold domain.Threshold
}

// LeadKey is shorthand for a key at a single lead.
func LeadKey(lead time.Duration, t domain.Threshold) Key {
	return Key{Window: LeadWindow(lead), Threshold: t}
}

// Compare orders keys by window, then threshold.
func (k Key) Compare(o Key) int {
	return cmp.Or(k.Window.Compare(o.Window), k.Threshold.Compare(o.Threshold))
}

func (k Key) String() string {
	return k.Window.String() + " " + k.Threshold.String()
}
