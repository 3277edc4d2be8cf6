package models

// Event is one row of the external activity log: a user touched a course
// at a point in time. Events are append-only and never mutated by the
// engine; ids are monotonic and timestamps are unix seconds.
type Event struct {
	ID        int64 `gorm:"primarykey" json:"id"`
	UserID    int64 `gorm:"not null;index" json:"user_id"`
	CourseID  int64 `gorm:"not null;index" json:"course_id"`
	Timestamp int64 `gorm:"not null;index" json:"timestamp"`
}

// TableName maps events onto the externally populated log table.
func (Event) TableName() string {
	return "activity_log"
}
