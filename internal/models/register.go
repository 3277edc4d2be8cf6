package models

import (
	"time"

	"gorm.io/gorm"
)

// Register types: which courses a register tracks besides its own.
const (
	RegisterTypeCourse   = "course"   // only the register's course
	RegisterTypeMeta     = "meta"     // course + meta-linked courses
	RegisterTypeCategory = "category" // all courses in the same category
)

// Default register settings.
const (
	DefaultSessionTimeoutMins          = 30
	DefaultDaysCertifiable             = 10
	DefaultCompletionTotalDurationMins = 60
)

// Register is an attendance register instance: it owns sessions and
// aggregates for every tracked user of its tracked courses.
type Register struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `gorm:"not null" json:"name"`
	CourseID int64  `gorm:"not null" json:"course_id"`
	Type     string `gorm:"default:course" json:"type"` // course, meta, category

	SessionTimeoutMins int `gorm:"default:30" json:"session_timeout_mins"`

	// Offline self-certification settings.
	OfflineSessions bool `gorm:"default:false" json:"offline_sessions"`
	DaysCertifiable int  `gorm:"default:10" json:"days_certifiable"`

	// Completion condition: 0 disables completion tracking.
	CompletionTotalDurationMins int `gorm:"default:0" json:"completion_total_duration_mins"`

	// PendingRecalc signals a deferred full recalculation is owed.
	PendingRecalc bool `gorm:"default:false" json:"pending_recalc"`
}

// TimeoutSeconds returns the session timeout in seconds.
func (r *Register) TimeoutSeconds() int64 {
	return int64(r.SessionTimeoutMins) * 60
}

// HasCompletionCondition reports whether any completion condition is
// enabled on the register.
func (r *Register) HasCompletionCondition() bool {
	return r.CompletionTotalDurationMins > 0
}
