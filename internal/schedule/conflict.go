package schedule

import (
	"iter"
	"time"
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open windows share at least one
// instant: start < other.End && other.Start < end. Back-to-back windows
// (one starting exactly where the other ends) never overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Busy is an occupied window together with the appointment that owns it.
// End is resolved at conflict-check time from the appointment's service
// duration; it is not stored on the appointment.
type Busy struct {
	AppointmentID string
	CustomerName  string
	Window        Window
}

// FindConflict returns the first busy entry overlapping the candidate
// window, or false when the candidate is free.
func FindConflict(candidate Window, busy []Busy) (Busy, bool) {
	for _, b := range busy {
		if candidate.Overlaps(b.Window) {
			return b, true
		}
	}
	return Busy{}, false
}

// FreeSlots yields candidate start times within business hours on the
// given day, stepping by granularity from opening to closing. Each probe
// window is granularity wide regardless of any target service's duration;
// callers wanting a service-width probe pass that width as granularity.
// The sequence is lazy, finite and restartable.
func FreeSlots(day time.Time, openHour, closeHour int, granularity time.Duration, busy []Busy) iter.Seq[time.Time] {
	opening := time.Date(day.Year(), day.Month(), day.Day(), openHour, 0, 0, 0, day.Location())
	closing := time.Date(day.Year(), day.Month(), day.Day(), closeHour, 0, 0, 0, day.Location())

	return func(yield func(time.Time) bool) {
		for t := opening; t.Before(closing); t = t.Add(granularity) {
			probe := Window{Start: t, End: t.Add(granularity)}
			if _, occupied := FindConflict(probe, busy); occupied {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}
