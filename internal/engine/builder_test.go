package engine

import (
	"reflect"
	"testing"

	"github.com/edutrack/attreg/internal/models"
)

func evts(timestamps ...int64) []models.Event {
	events := make([]models.Event, len(timestamps))
	for i, ts := range timestamps {
		events[i] = models.Event{ID: int64(i + 1), UserID: 1, CourseID: 100, Timestamp: ts}
	}
	return events
}

func TestBuildSessionsClosesOnGap(t *testing.T) {
	// Events at 0,10,20 then a long gap to 1000, timeout 60s. The gap
	// closes [0, 20+30]; with a far boundary the trailing event closes
	// too.
	spans, tail, err := BuildSessions(evts(0, 10, 20, 1000), 60, 5000)
	if err != nil {
		t.Fatalf("build sessions: %v", err)
	}
	want := []Span{{Login: 0, Logout: 50}, {Login: 1000, Logout: 1030}}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("spans = %v, want %v", spans, want)
	}
	if len(tail) != 0 {
		t.Fatalf("tail = %v, want empty", tail)
	}
}

func TestBuildSessionsKeepsFreshTail(t *testing.T) {
	// Same events but the boundary is within the timeout of the last
	// event: the user may still be in session, so the tail survives.
	spans, tail, err := BuildSessions(evts(0, 10, 20, 1000), 60, 1030)
	if err != nil {
		t.Fatalf("build sessions: %v", err)
	}
	want := []Span{{Login: 0, Logout: 50}}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("spans = %v, want %v", spans, want)
	}
	if len(tail) != 1 || tail[0].Timestamp != 1000 {
		t.Fatalf("tail = %v, want the event at t=1000", tail)
	}
}

func TestBuildSessionsEmptyInput(t *testing.T) {
	spans, tail, err := BuildSessions(nil, 60, 1000)
	if err != nil {
		t.Fatalf("build sessions: %v", err)
	}
	if spans != nil || tail != nil {
		t.Fatalf("spans=%v tail=%v, want both nil", spans, tail)
	}
}

func TestBuildSessionsSingleEvent(t *testing.T) {
	// A single event never sees a gap; only the boundary rule can
	// close it.
	spans, tail, err := BuildSessions(evts(500), 60, 500)
	if err != nil {
		t.Fatalf("build sessions: %v", err)
	}
	if len(spans) != 0 || len(tail) != 1 {
		t.Fatalf("fresh single event: spans=%v tail=%v", spans, tail)
	}

	spans, tail, err = BuildSessions(evts(500), 60, 600)
	if err != nil {
		t.Fatalf("build sessions: %v", err)
	}
	want := []Span{{Login: 500, Logout: 530}}
	if !reflect.DeepEqual(spans, want) || len(tail) != 0 {
		t.Fatalf("stale single event: spans=%v tail=%v, want %v and empty tail", spans, tail, want)
	}
}

func TestBuildSessionsUnsortedInput(t *testing.T) {
	if _, _, err := BuildSessions(evts(100, 50), 60, 1000); err == nil {
		t.Fatal("expected error on unsorted events")
	}
}

func TestBuildSessionsInvalidTimeout(t *testing.T) {
	if _, _, err := BuildSessions(evts(0, 10), 0, 1000); err == nil {
		t.Fatal("expected error on zero timeout")
	}
}

func TestBuildSessionsDeterministic(t *testing.T) {
	events := evts(0, 30, 200, 210, 1000, 1020, 5000)
	spans1, tail1, err := BuildSessions(events, 100, 5020)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	spans2, tail2, err := BuildSessions(events, 100, 5020)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if !reflect.DeepEqual(spans1, spans2) || !reflect.DeepEqual(tail1, tail2) {
		t.Fatalf("builder not deterministic: %v/%v vs %v/%v", spans1, tail1, spans2, tail2)
	}
}

func TestBuildSessionsCoverageAndNonOverlap(t *testing.T) {
	events := evts(0, 10, 20, 500, 520, 540, 2000, 2100, 2150, 9000)
	timeout := int64(300)
	spans, tail, err := BuildSessions(events, timeout, 9100)
	if err != nil {
		t.Fatalf("build sessions: %v", err)
	}

	for i := 1; i < len(spans); i++ {
		if spans[i].Login <= spans[i-1].Logout {
			t.Fatalf("spans overlap: %v and %v", spans[i-1], spans[i])
		}
	}

	inTail := make(map[int64]bool)
	for _, ev := range tail {
		inTail[ev.ID] = true
	}
	for _, ev := range events {
		if inTail[ev.ID] {
			continue
		}
		covered := false
		for _, span := range spans {
			if span.Login <= ev.Timestamp && ev.Timestamp <= span.Logout {
				covered = true
				break
			}
		}
		if !covered {
			t.Fatalf("event at t=%d consumed but not covered by any span %v", ev.Timestamp, spans)
		}
	}
}
