package models

// AggregateKind discriminates the role of an aggregate row.
type AggregateKind string

const (
	// AggregatePerCourseOffline is an offline subtotal for one reference
	// course (RefCourseID may be nil for uncategorized offline sessions).
	AggregatePerCourseOffline AggregateKind = "percourseoffline"
	// AggregateOfflineTotal sums all offline sessions.
	AggregateOfflineTotal AggregateKind = "offlinetotal"
	// AggregateOnlineTotal sums all online sessions.
	AggregateOnlineTotal AggregateKind = "onlinetotal"
	// AggregateGrandTotal sums every session and carries
	// LastSessionLogout, the last known online session end.
	AggregateGrandTotal AggregateKind = "grandtotal"
)

// Aggregate is a derived summary duration row per (register,user).
// Aggregates are never patched in place: the whole set for a pair is
// deleted and rebuilt from the current sessions.
type Aggregate struct {
	ID         uint  `gorm:"primarykey" json:"id"`
	RegisterID uint  `gorm:"not null;index:idx_aggregate_register_user" json:"register_id"`
	UserID     int64 `gorm:"not null;index:idx_aggregate_register_user" json:"user_id"`

	Kind        AggregateKind `gorm:"not null" json:"kind"`
	RefCourseID *int64        `json:"ref_course_id"`
	Duration    int64         `gorm:"not null" json:"duration"`

	// Set on the grandtotal row only; 0 means no online session yet.
	LastSessionLogout int64 `json:"last_session_logout"`
}

// IsTotal reports whether the row is one of the summary rows shown in
// register-wide reports.
func (a *Aggregate) IsTotal() bool {
	switch a.Kind {
	case AggregateOfflineTotal, AggregateOnlineTotal, AggregateGrandTotal:
		return true
	case AggregatePerCourseOffline:
		return false
	}
	return false
}
