package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Run executes one scheduler tick: purge orphaned locks, run the
// incremental batch from the persisted cursor, then serve any register
// with a deferred full recalculation. Safe to call repeatedly; a tick
// that finds a locked register simply skips the batch until the next
// invocation.
func (e *Engine) Run() error {
	log := e.log.With("run", uuid.NewString())

	purged, err := e.store.PurgeOrphanLocks(e.now() - e.orphanLockDelay)
	if err != nil {
		return fmt.Errorf("purge orphan locks: %w", err)
	}
	if purged > 0 {
		log.Warn("purged orphaned locks", "count", purged)
	}

	registers, err := e.store.Registers()
	if err != nil {
		return fmt.Errorf("load registers: %w", err)
	}
	if len(registers) == 0 {
		log.Info("no registers, exiting")
		return nil
	}

	fromID, err := e.store.LastParsedEventID()
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}

	if err := e.updateSessionsFromID(registers, fromID, log); err != nil {
		if !errors.Is(err, ErrRegisterLocked) {
			return err
		}
		// A lock skips the batch, not the tick: deferred
		// recalculations of other registers still run.
	}

	for i := range registers {
		register := &registers[i]
		if !register.PendingRecalc {
			continue
		}
		log.Info("force-recalculating register", "register", register.ID)
		if err := e.RecalcAllInRegister(register); err != nil {
			return fmt.Errorf("recalc register %d: %w", register.ID, err)
		}
	}
	return nil
}
