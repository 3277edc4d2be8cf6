package store

import (
	"github.com/edutrack/attreg/internal/models"
)

// FetchEvents scans up to limit log rows with id > afterID, in id
// order, and returns those belonging to the given courses. The second
// return value is the new cursor: the highest id scanned, which may be
// past the last returned event because rows outside the course set are
// dropped after the scan. If nothing was scanned the cursor equals
// afterID.
func (s *Store) FetchEvents(afterID int64, courseIDs []int64, limit int) ([]models.Event, int64, error) {
	var scanned []models.Event
	err := s.db.Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&scanned).Error
	if err != nil {
		return nil, 0, err
	}
	if len(scanned) == 0 {
		return nil, afterID, nil
	}
	newCursor := scanned[len(scanned)-1].ID

	wanted := make(map[int64]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}

	events := scanned[:0]
	for _, e := range scanned {
		// Rows without a course context are noise from the shared log.
		if e.CourseID <= 0 {
			continue
		}
		if !wanted[e.CourseID] {
			continue
		}
		events = append(events, e)
	}
	return events, newCursor, nil
}

// FetchAllEventsForUser returns every event of one user in the given
// courses with timestamp > afterTS, oldest first.
func (s *Store) FetchAllEventsForUser(userID, afterTS int64, courseIDs []int64) ([]models.Event, error) {
	var events []models.Event
	err := s.db.Where("user_id = ? AND timestamp > ? AND course_id IN ?", userID, afterTS, courseIDs).
		Order("timestamp ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// OldestEventTimestamp returns the timestamp of the user's oldest event
// anywhere in the log (not restricted to tracked courses). The second
// return value is false if the user has no events at all.
func (s *Store) OldestEventTimestamp(userID int64) (int64, bool, error) {
	var oldest *int64
	err := s.db.Model(&models.Event{}).
		Where("user_id = ?", userID).
		Select("MIN(timestamp)").
		Scan(&oldest).Error
	if err != nil {
		return 0, false, err
	}
	if oldest == nil {
		return 0, false, nil
	}
	return *oldest, true, nil
}

// AppendEvents inserts externally produced log rows. Used by import
// tooling and tests; the engine itself never writes events.
func (s *Store) AppendEvents(events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	return s.db.Create(&events).Error
}
