// Package engine reconstructs attendance sessions from the raw activity
// log and keeps the derived aggregates consistent with them.
package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/edutrack/attreg/internal/models"
	"github.com/edutrack/attreg/internal/store"
)

// Sentinel outcomes. A locked register is a normal skip condition for
// the incremental batch, not a failure.
var (
	ErrRegisterLocked = errors.New("register is locked by a running recalculation")
)

// EventSource abstracts the chronological activity log. The engine only
// ever reads events.
type EventSource interface {
	// FetchEvents scans up to limit events with id > afterID and
	// returns the ones belonging to the given courses, plus the new
	// cursor (highest id scanned; afterID if nothing was scanned).
	FetchEvents(afterID int64, courseIDs []int64, limit int) ([]models.Event, int64, error)
	// FetchAllEventsForUser returns one user's events in the given
	// courses after a timestamp, oldest first.
	FetchAllEventsForUser(userID, afterTS int64, courseIDs []int64) ([]models.Event, error)
	// OldestEventTimestamp returns the user's oldest event timestamp
	// site-wide; false if the user has no events.
	OldestEventTimestamp(userID int64) (int64, bool, error)
}

// Options tune an Engine. Zero values select defaults.
type Options struct {
	// EventFetchLimit caps events scanned per batch run.
	EventFetchLimit int
	// OrphanLockDelaySecs is the age past which locks are purged.
	OrphanLockDelaySecs int64
	// Logger receives batch progress; defaults to slog.Default().
	Logger *slog.Logger
	// Now overrides the clock, unix seconds. Tests use it.
	Now func() int64
}

// Engine drives session reconstruction: the incremental batch, forced
// recalculations, aggregates and completion tracking.
type Engine struct {
	store           *store.Store
	events          EventSource
	log             *slog.Logger
	now             func() int64
	fetchLimit      int
	orphanLockDelay int64
}

// New builds an Engine around an opened store and an event source.
func New(st *store.Store, events EventSource, opts Options) *Engine {
	e := &Engine{
		store:           st,
		events:          events,
		log:             opts.Logger,
		now:             opts.Now,
		fetchLimit:      opts.EventFetchLimit,
		orphanLockDelay: opts.OrphanLockDelaySecs,
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.now == nil {
		e.now = func() int64 { return time.Now().Unix() }
	}
	if e.fetchLimit <= 0 {
		e.fetchLimit = 500000
	}
	if e.orphanLockDelay <= 0 {
		e.orphanLockDelay = 30 * 60
	}
	return e
}

// Store exposes the underlying store for read-only collaborators.
func (e *Engine) Store() *store.Store {
	return e.store
}
