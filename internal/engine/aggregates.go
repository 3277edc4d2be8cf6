package engine

import (
	"fmt"
	"sort"

	"github.com/edutrack/attreg/internal/models"
)

// UpdateUserAggregates recomputes every aggregate row of the pair from
// the current session set and replaces the old rows wholesale. It is a
// total function: a user with zero sessions still gets an online-total
// and a grand-total row, so the grand total's existence can be relied
// on once a user has been touched by the calculator.
func (e *Engine) UpdateUserAggregates(register *models.Register, userID int64) error {
	sessions, err := e.store.UserSessions(register.ID, userID)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	var onlineTotal, offlineTotal, lastLogout int64
	offlineByCourse := make(map[int64]int64) // key 0 collects sessions without a ref course
	for _, session := range sessions {
		if session.Online {
			onlineTotal += session.Duration
			if session.Logout > lastLogout {
				lastLogout = session.Logout
			}
			continue
		}
		offlineTotal += session.Duration
		var courseKey int64
		if session.RefCourseID != nil {
			courseKey = *session.RefCourseID
		}
		offlineByCourse[courseKey] += session.Duration
	}

	var aggregates []models.Aggregate

	if register.OfflineSessions && len(offlineByCourse) > 0 {
		courseKeys := make([]int64, 0, len(offlineByCourse))
		for key := range offlineByCourse {
			courseKeys = append(courseKeys, key)
		}
		sort.Slice(courseKeys, func(i, j int) bool { return courseKeys[i] < courseKeys[j] })
		for _, key := range courseKeys {
			row := models.Aggregate{
				RegisterID: register.ID,
				UserID:     userID,
				Kind:       models.AggregatePerCourseOffline,
				Duration:   offlineByCourse[key],
			}
			if key != 0 {
				courseID := key
				row.RefCourseID = &courseID
			}
			aggregates = append(aggregates, row)
		}
		aggregates = append(aggregates, models.Aggregate{
			RegisterID: register.ID,
			UserID:     userID,
			Kind:       models.AggregateOfflineTotal,
			Duration:   offlineTotal,
		})
	}

	aggregates = append(aggregates, models.Aggregate{
		RegisterID: register.ID,
		UserID:     userID,
		Kind:       models.AggregateOnlineTotal,
		Duration:   onlineTotal,
	})

	grandTotal := models.Aggregate{
		RegisterID:        register.ID,
		UserID:            userID,
		Kind:              models.AggregateGrandTotal,
		Duration:          onlineTotal + offlineTotal,
		LastSessionLogout: lastLogout,
	}
	aggregates = append(aggregates, grandTotal)

	if err := e.store.ReplaceUserAggregates(register.ID, userID, aggregates); err != nil {
		return fmt.Errorf("replace aggregates: %w", err)
	}

	condition := CompletionConditionFor(register)
	if condition.Kind != CompletionNone {
		met := condition.Met(grandTotal.Duration)
		if err := e.store.SetCompletionState(register.ID, userID, met, e.now()); err != nil {
			return fmt.Errorf("persist completion state: %w", err)
		}
	}
	return nil
}
