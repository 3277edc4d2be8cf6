package engine

import (
	"errors"
	"testing"

	"github.com/edutrack/attreg/internal/models"
)

// failingEventSource errors on every call. Used to verify locks are
// released when a recalculation dies mid-way.
type failingEventSource struct{}

func (failingEventSource) FetchEvents(afterID int64, courseIDs []int64, limit int) ([]models.Event, int64, error) {
	return nil, 0, errors.New("event source unavailable")
}

func (failingEventSource) FetchAllEventsForUser(userID, afterTS int64, courseIDs []int64) ([]models.Event, error) {
	return nil, errors.New("event source unavailable")
}

func (failingEventSource) OldestEventTimestamp(userID int64) (int64, bool, error) {
	return 0, false, errors.New("event source unavailable")
}

func TestRecalcUserRebuildsFromFullHistory(t *testing.T) {
	eng, st := newTestEngine(t, 100000, 0)
	register := seedRegister(t, st, 100, 30, 1)
	seedEvents(t, st, 100, 1, 5000, 5100, 9000)

	// A stale session the rebuild must replace.
	saveOnline(t, st, register.ID, 1, 5000, 5050)

	if err := eng.RecalcUser(register, 1, true); err != nil {
		t.Fatalf("recalc user: %v", err)
	}

	// Gap 9000-5100 > 1800 closes [5000,6000]; the trailing event is
	// stale against the wall clock and closes [9000,9900].
	sessions := mustSessions(t, st, register.ID, 1)
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	if sessions[0].Login != 9000 || sessions[0].Logout != 9900 {
		t.Fatalf("newest session = [%d,%d], want [9000,9900]", sessions[0].Login, sessions[0].Logout)
	}
	if sessions[1].Login != 5000 || sessions[1].Logout != 6000 {
		t.Fatalf("older session = [%d,%d], want [5000,6000]", sessions[1].Login, sessions[1].Logout)
	}

	count, err := st.LockCount(register.ID, 1)
	if err != nil {
		t.Fatalf("lock count: %v", err)
	}
	if count != 0 {
		t.Fatalf("lock rows = %d after recalc, want 0", count)
	}

	grand := findAggregate(t, st, register.ID, 1, models.AggregateGrandTotal)
	if grand == nil || grand.Duration != 1900 {
		t.Fatalf("grand total = %v, want duration 1900", grand)
	}
}

func TestRecalcUserIsIdempotent(t *testing.T) {
	eng, st := newTestEngine(t, 100000, 0)
	register := seedRegister(t, st, 100, 30, 1)
	seedEvents(t, st, 100, 1, 5000, 5100, 9000)

	if err := eng.RecalcUser(register, 1, true); err != nil {
		t.Fatalf("first recalc: %v", err)
	}
	first := mustSessions(t, st, register.ID, 1)
	if err := eng.RecalcUser(register, 1, true); err != nil {
		t.Fatalf("second recalc: %v", err)
	}
	second := mustSessions(t, st, register.ID, 1)
	if len(first) != len(second) {
		t.Fatalf("recalc not idempotent: %d then %d sessions", len(first), len(second))
	}
}

func TestRecalcPreservesSessionsOlderThanLog(t *testing.T) {
	eng, st := newTestEngine(t, 100000, 0)
	register := seedRegister(t, st, 100, 30, 1)
	seedEvents(t, st, 100, 1, 5000, 5100, 9000)

	// Calculated from logs since rotated away; its login predates the
	// user's oldest surviving event.
	saveOnline(t, st, register.ID, 1, 100, 200)

	if err := eng.RecalcUser(register, 1, true); err != nil {
		t.Fatalf("recalc user: %v", err)
	}
	sessions := mustSessions(t, st, register.ID, 1)
	if len(sessions) != 3 {
		t.Fatalf("sessions = %d, want 2 rebuilt + 1 preserved", len(sessions))
	}
	preserved := false
	for _, session := range sessions {
		if session.Login == 100 && session.Logout == 200 {
			preserved = true
		}
	}
	if !preserved {
		t.Fatal("pre-log session was deleted")
	}
	// Aggregates include the preserved duration.
	grand := findAggregate(t, st, register.ID, 1, models.AggregateGrandTotal)
	if grand == nil || grand.Duration != 2000 {
		t.Fatalf("grand total = %v, want duration 2000", grand)
	}
}

func TestRecalcUserWithoutEventsWipes(t *testing.T) {
	eng, st := newTestEngine(t, 100000, 0)
	register := seedRegister(t, st, 100, 30, 1)
	saveOnline(t, st, register.ID, 1, 1000, 2000)

	// No events anywhere for the user: nothing can be preserved.
	if err := eng.RecalcUser(register, 1, true); err != nil {
		t.Fatalf("recalc user: %v", err)
	}
	if sessions := mustSessions(t, st, register.ID, 1); len(sessions) != 0 {
		t.Fatalf("sessions = %d, want 0", len(sessions))
	}
	grand := findAggregate(t, st, register.ID, 1, models.AggregateGrandTotal)
	if grand == nil || grand.Duration != 0 {
		t.Fatalf("grand total = %v, want zero row", grand)
	}
}

func TestRecalcKeepOldDataAppendsOnly(t *testing.T) {
	eng, st := newTestEngine(t, 100000, 0)
	register := seedRegister(t, st, 100, 30, 1)
	saveOnline(t, st, register.ID, 1, 1000, 2000)

	if err := eng.RecalcUser(register, 1, false); err != nil {
		t.Fatalf("recalc user: %v", err)
	}
	sessions := mustSessions(t, st, register.ID, 1)
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want the kept one", len(sessions))
	}
}

func TestRecalcReleasesLockOnFailure(t *testing.T) {
	_, st := newTestEngine(t, 100000, 0)
	register := seedRegister(t, st, 100, 30, 1)

	broken := New(st, failingEventSource{}, Options{
		Now: func() int64 { return 100000 },
	})
	if err := broken.RecalcUser(register, 1, true); err == nil {
		t.Fatal("expected recalc to fail")
	}
	count, err := st.LockCount(register.ID, 1)
	if err != nil {
		t.Fatalf("lock count: %v", err)
	}
	if count != 0 {
		t.Fatalf("lock rows = %d after failed recalc, want 0", count)
	}
}

func TestRecalcAllInRegisterCoversRoster(t *testing.T) {
	eng, st := newTestEngine(t, 100000, 0)
	register := seedRegister(t, st, 100, 30, 1, 2)
	seedEvents(t, st, 100, 1, 5000, 9000)
	seedEvents(t, st, 100, 2, 6000, 9500)
	if err := st.SetPendingRecalc(register.ID, true); err != nil {
		t.Fatalf("set pending recalc: %v", err)
	}
	register.PendingRecalc = true

	if err := eng.RecalcAllInRegister(register); err != nil {
		t.Fatalf("recalc register: %v", err)
	}
	if register.PendingRecalc {
		t.Fatal("in-memory pending flag not cleared")
	}
	reloaded, err := st.GetRegister(register.ID)
	if err != nil {
		t.Fatalf("reload register: %v", err)
	}
	if reloaded.PendingRecalc {
		t.Fatal("durable pending flag not cleared")
	}
	for _, userID := range []int64{1, 2} {
		if sessions := mustSessions(t, st, register.ID, userID); len(sessions) == 0 {
			t.Fatalf("no sessions rebuilt for user %d", userID)
		}
	}
}

func TestOrphanLockPurgedByRun(t *testing.T) {
	eng, st := newTestEngine(t, 100000, 0)
	register := seedRegister(t, st, 100, 30, 1)
	seedEvents(t, st, 100, 1, 1000, 1100, 9000)

	// A lock from a crashed recalculation, older than the orphan delay.
	if err := st.AcquireLock(register.ID, 1, 100000-7200); err != nil {
		t.Fatalf("acquire lock: %v", err)
	}

	if err := eng.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	count, err := st.LockCount(register.ID, 1)
	if err != nil {
		t.Fatalf("lock count: %v", err)
	}
	if count != 0 {
		t.Fatalf("orphan lock survived: %d rows", count)
	}
	// With the lock purged up front, the same tick processes the batch.
	if sessions := mustSessions(t, st, register.ID, 1); len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
}
