package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/edutrack/attreg/internal/models"
)

// pairKey identifies one (register,user) processing unit.
type pairKey struct {
	registerID uint
	userID     int64
}

// registerScope is a register with its resolved tracked courses and
// roster, prepared once per run.
type registerScope struct {
	register     *models.Register
	trackedUsers map[int64]bool
}

// updateSessionsFromID is one incremental pass over all registers: it
// fetches events after the cursor, merges the dump buffer, builds and
// persists sessions per (register,user), then commits the new dump and
// cursor in one transaction. Returns ErrRegisterLocked without touching
// anything if any register in the set is mid-recalculation.
func (e *Engine) updateSessionsFromID(registers []models.Register, fromID int64, log *slog.Logger) error {
	scopes := make(map[uint]*registerScope)
	courseToRegisters := make(map[int64][]uint)
	var courseUnion []int64
	seenCourse := make(map[int64]bool)

	for i := range registers {
		register := &registers[i]

		// A single lock on any register skips the whole pass:
		// continuing would push every unprocessed event into the dump
		// table, which could grow very large.
		locked, err := e.store.RegisterLockExists(register.ID)
		if err != nil {
			return fmt.Errorf("check register lock: %w", err)
		}
		if locked {
			log.Info("lock found, skipping batch", "register", register.ID)
			return ErrRegisterLocked
		}

		// A misconfigured register is fatal for that register only.
		if register.SessionTimeoutMins <= 0 {
			log.Error("register has no session timeout, skipping", "register", register.ID)
			continue
		}

		courses, err := e.store.TrackedCourseIDs(register)
		if err != nil {
			log.Error("cannot resolve tracked courses, skipping register",
				"register", register.ID, "error", err)
			continue
		}
		userIDs, err := e.store.TrackedUserIDs(courses)
		if err != nil {
			return fmt.Errorf("load tracked users: %w", err)
		}

		scope := &registerScope{
			register:     register,
			trackedUsers: make(map[int64]bool, len(userIDs)),
		}
		for _, id := range userIDs {
			scope.trackedUsers[id] = true
		}
		scopes[register.ID] = scope

		for _, courseID := range courses {
			courseToRegisters[courseID] = append(courseToRegisters[courseID], register.ID)
			if !seenCourse[courseID] {
				seenCourse[courseID] = true
				courseUnion = append(courseUnion, courseID)
			}
		}
	}
	if len(scopes) == 0 {
		log.Info("no processable registers")
		return nil
	}

	dumpEntries, err := e.store.DumpEntries()
	if err != nil {
		return fmt.Errorf("read dump buffer: %w", err)
	}

	log.Info("starting event query", "from_id", fromID)
	events, newCursor, err := e.events.FetchEvents(fromID, courseUnion, e.fetchLimit)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	if newCursor == fromID {
		// No rows at all: nothing to do, cursor untouched.
		log.Info("no entries at all, exiting")
		return nil
	}
	log.Info("events fetched", "count", len(events), "new_cursor", newCursor)

	maxLogouts, err := e.store.MaxSessionLogouts()
	if err != nil {
		return fmt.Errorf("load recorded logouts: %w", err)
	}

	// The batch boundary: the newest event fetched this run, or now if
	// the scanned rows were all filtered out.
	boundary := e.now()
	if len(events) > 0 {
		boundary = events[0].Timestamp
		for _, ev := range events[1:] {
			if ev.Timestamp > boundary {
				boundary = ev.Timestamp
			}
		}
	}

	groups := make(map[pairKey][]models.Event)
	assign := func(ev models.Event) {
		for _, registerID := range courseToRegisters[ev.CourseID] {
			scope, ok := scopes[registerID]
			if !ok {
				continue
			}
			// Untracked users are expected noise from the shared log.
			if !scope.trackedUsers[ev.UserID] {
				continue
			}
			// Skip history already covered by a recorded session, so
			// reprocessing the same events is idempotent.
			if ml, ok := maxLogouts[registerID][ev.UserID]; ok && ev.Timestamp <= ml {
				continue
			}
			key := pairKey{registerID: registerID, userID: ev.UserID}
			groups[key] = append(groups[key], ev)
		}
	}
	for _, entry := range dumpEntries {
		assign(entry.Event())
	}
	for _, ev := range events {
		assign(ev)
	}

	// Deterministic processing order.
	keys := make([]pairKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].registerID != keys[j].registerID {
			return keys[i].registerID < keys[j].registerID
		}
		return keys[i].userID < keys[j].userID
	})

	newDump := make(map[int64]models.DumpEntry)
	newSessions := 0
	for _, key := range keys {
		scope := scopes[key.registerID]
		group := dedupeByID(groups[key])
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Timestamp != group[j].Timestamp {
				return group[i].Timestamp < group[j].Timestamp
			}
			return group[i].ID < group[j].ID
		})

		spans, tail, err := BuildSessions(group, scope.register.TimeoutSeconds(), boundary)
		if err != nil {
			return fmt.Errorf("build sessions for register %d user %d: %w",
				key.registerID, key.userID, err)
		}
		for _, span := range spans {
			session, err := models.NewOnlineSession(key.registerID, key.userID, span.Login, span.Logout)
			if err != nil {
				return err
			}
			if err := e.store.SaveSession(session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			newSessions++
		}
		for _, ev := range tail {
			newDump[ev.ID] = models.DumpEntryFromEvent(ev)
		}
		if len(spans) > 0 {
			if err := e.UpdateUserAggregates(scope.register, key.userID); err != nil {
				return fmt.Errorf("update aggregates for register %d user %d: %w",
					key.registerID, key.userID, err)
			}
		}
	}

	dump := make([]models.DumpEntry, 0, len(newDump))
	for _, entry := range newDump {
		dump = append(dump, entry)
	}
	sort.Slice(dump, func(i, j int) bool { return dump[i].EventID < dump[j].EventID })

	log.Info("run complete", "sessions_added", newSessions,
		"dumped_events", len(dump), "last_parsed_id", newCursor)

	// Single bookkeeping commit: any failure above leaves the cursor
	// and the dump untouched, and the scheduler retries the whole run.
	if err := e.store.CommitRunState(dump, newCursor); err != nil {
		return fmt.Errorf("commit run state: %w", err)
	}
	return nil
}

func dedupeByID(events []models.Event) []models.Event {
	seen := make(map[int64]bool, len(events))
	out := events[:0]
	for _, ev := range events {
		if seen[ev.ID] {
			continue
		}
		seen[ev.ID] = true
		out = append(out, ev)
	}
	return out
}
