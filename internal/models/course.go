package models

// Course is the minimal course record needed to resolve a register's
// tracked-course set.
type Course struct {
	ID         int64  `gorm:"primarykey" json:"id"`
	CategoryID int64  `gorm:"index" json:"category_id"`
	FullName   string `json:"full_name"`
}

// MetaLink records that CourseID pulls enrolments from LinkedCourseID
// (a meta-enrolment). A meta-type register tracks its own course plus
// every linked course.
type MetaLink struct {
	ID             uint  `gorm:"primarykey" json:"id"`
	CourseID       int64 `gorm:"not null;index" json:"course_id"`
	LinkedCourseID int64 `gorm:"not null" json:"linked_course_id"`
}

// TrackedUser is one roster entry: the user holds a tracked role in the
// course. A user tracked in any of a register's tracked courses is
// tracked by the register.
type TrackedUser struct {
	ID       uint  `gorm:"primarykey" json:"id"`
	CourseID int64 `gorm:"not null;index:idx_tracked_course_user" json:"course_id"`
	UserID   int64 `gorm:"not null;index:idx_tracked_course_user" json:"user_id"`
}
