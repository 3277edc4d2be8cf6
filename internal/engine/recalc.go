package engine

import (
	"fmt"

	"github.com/edutrack/attreg/internal/models"
)

// RecalcUser wipes and rebuilds one user's calculated sessions from the
// full event history, bypassing the incremental cursor. The pair is
// locked for the duration; the lock is released on every exit path, so
// a failed recalculation never blocks the pair past the orphan delay.
//
// With deleteOldData, only sessions whose login falls inside the
// visible log history are deleted: sessions older than the user's
// oldest event were calculated from logs since rotated away and cannot
// be rebuilt.
func (e *Engine) RecalcUser(register *models.Register, userID int64, deleteOldData bool) (err error) {
	if err := e.store.AcquireLock(register.ID, userID, e.now()); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() {
		if rerr := e.store.ReleaseLock(register.ID, userID); rerr != nil && err == nil {
			err = fmt.Errorf("release lock: %w", rerr)
		}
	}()

	if register.SessionTimeoutMins <= 0 {
		return fmt.Errorf("register #%d has no session timeout", register.ID)
	}

	courses, err := e.store.TrackedCourseIDs(register)
	if err != nil {
		return fmt.Errorf("resolve tracked courses: %w", err)
	}

	if deleteOldData {
		oldest, ok, err := e.events.OldestEventTimestamp(userID)
		if err != nil {
			return fmt.Errorf("find oldest event: %w", err)
		}
		var loginFrom *int64
		if ok {
			loginFrom = &oldest
		}
		if err := e.store.DeleteUserOnlineSessions(register.ID, userID, loginFrom); err != nil {
			return fmt.Errorf("delete online sessions: %w", err)
		}
		if err := e.store.DeleteUserAggregates(register.ID, userID); err != nil {
			return fmt.Errorf("delete aggregates: %w", err)
		}
	}

	entries, err := e.events.FetchAllEventsForUser(userID, 0, courses)
	if err != nil {
		return fmt.Errorf("fetch user events: %w", err)
	}

	// Full rebuild uses the wall clock as boundary; a trailing tail
	// inside the timeout window is neither closed nor dumped, the next
	// pass will see those events again.
	spans, _, err := BuildSessions(entries, register.TimeoutSeconds(), e.now())
	if err != nil {
		return fmt.Errorf("build sessions: %w", err)
	}
	for _, span := range spans {
		session, err := models.NewOnlineSession(register.ID, userID, span.Login, span.Logout)
		if err != nil {
			return err
		}
		if err := e.store.SaveSession(session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	if err := e.UpdateUserAggregates(register, userID); err != nil {
		return err
	}
	return nil
}

// RecalcAllInRegister recalculates every tracked user of the register,
// sequentially. The PendingRecalc flag is cleared only once the whole
// batch of users completes; a mid-way failure leaves it set so the next
// cron tick retries.
func (e *Engine) RecalcAllInRegister(register *models.Register) error {
	courses, err := e.store.TrackedCourseIDs(register)
	if err != nil {
		return fmt.Errorf("resolve tracked courses: %w", err)
	}
	userIDs, err := e.store.TrackedUserIDs(courses)
	if err != nil {
		return fmt.Errorf("load tracked users: %w", err)
	}

	for _, userID := range userIDs {
		if err := e.RecalcUser(register, userID, true); err != nil {
			return fmt.Errorf("recalc user %d: %w", userID, err)
		}
	}

	if err := e.store.SetPendingRecalc(register.ID, false); err != nil {
		return fmt.Errorf("clear pending recalc: %w", err)
	}
	register.PendingRecalc = false
	return nil
}
