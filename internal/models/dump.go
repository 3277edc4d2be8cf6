package models

// DumpEntry is a persisted copy of an event that was read during a
// batch run but could not be closed into a session (the trailing tail
// of an open window). The whole set is replaced at the end of every
// run; entries survive exactly until the run that consumes them.
type DumpEntry struct {
	EventID   int64 `gorm:"primarykey;autoIncrement:false" json:"event_id"`
	UserID    int64 `gorm:"not null" json:"user_id"`
	CourseID  int64 `gorm:"not null" json:"course_id"`
	Timestamp int64 `gorm:"not null;index" json:"timestamp"`
}

// Event converts the entry back into the event it copied.
func (d *DumpEntry) Event() Event {
	return Event{
		ID:        d.EventID,
		UserID:    d.UserID,
		CourseID:  d.CourseID,
		Timestamp: d.Timestamp,
	}
}

// DumpEntryFromEvent copies an unresolved event into the dump table.
func DumpEntryFromEvent(e Event) DumpEntry {
	return DumpEntry{
		EventID:   e.ID,
		UserID:    e.UserID,
		CourseID:  e.CourseID,
		Timestamp: e.Timestamp,
	}
}
