package engine

import (
	"fmt"

	"github.com/edutrack/attreg/internal/models"
)

// Span is one closed session interval produced by the builder.
type Span struct {
	Login  int64
	Logout int64
}

// BuildSessions groups one user's events, sorted by timestamp, into
// session spans using the register timeout.
//
// Walking the events, a gap longer than timeoutSecs closes the open
// window as a span ending half a timeout after the window's last event
// (the logout is an estimate: the user went away at some unknown point
// inside the timeout). Events consumed into a span are discarded;
// events of the still-open window are the tail. The tail itself is
// closed the same way if its last event is older than timeoutSecs
// relative to boundary, the latest instant the caller knows about
// (newest fetched event for the batch, wall clock for a forced
// recalculation). Otherwise it is returned so the caller can carry it
// into the next run: the user may still be in session.
//
// The result is a pure function of the inputs; rerunning over the same
// window with the same boundary yields identical spans. Unsorted input
// is a caller bug and returns an error.
func BuildSessions(events []models.Event, timeoutSecs, boundary int64) ([]Span, []models.Event, error) {
	if timeoutSecs <= 0 {
		return nil, nil, fmt.Errorf("invalid session timeout %ds", timeoutSecs)
	}
	if len(events) == 0 {
		return nil, nil, nil
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp < events[i-1].Timestamp {
			return nil, nil, fmt.Errorf("events not sorted by timestamp at index %d", i)
		}
	}

	var spans []Span
	window := []models.Event{events[0]}
	start := events[0].Timestamp
	prev := events[0]

	for _, ev := range events[1:] {
		if ev.Timestamp-prev.Timestamp > timeoutSecs {
			spans = append(spans, Span{Login: start, Logout: prev.Timestamp + timeoutSecs/2})
			start = ev.Timestamp
			window = window[:0]
		}
		window = append(window, ev)
		prev = ev
	}

	// Close the tail only once the user has been silent for a full
	// timeout; a fresher tail may still grow in the next batch.
	if boundary-prev.Timestamp > timeoutSecs {
		spans = append(spans, Span{Login: start, Logout: prev.Timestamp + timeoutSecs/2})
		return spans, nil, nil
	}

	tail := make([]models.Event, len(window))
	copy(tail, window)
	return spans, tail, nil
}
