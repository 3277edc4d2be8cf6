package models

import "fmt"

// Session is one contiguous interval of user attendance in a register.
// Online sessions are inferred from the activity log by the engine;
// offline sessions are self-certified by users and only participate in
// overlap checks and aggregation.
type Session struct {
	ID         uint  `gorm:"primarykey" json:"id"`
	RegisterID uint  `gorm:"not null;index:idx_session_register_user" json:"register_id"`
	UserID     int64 `gorm:"not null;index:idx_session_register_user" json:"user_id"`

	Login    int64 `gorm:"not null" json:"login"`
	Logout   int64 `gorm:"not null" json:"logout"`
	Duration int64 `gorm:"not null" json:"duration"`

	Online        bool   `gorm:"not null;default:true" json:"online"`
	RefCourseID   *int64 `json:"ref_course_id"`
	Comments      string `json:"comments"`
	AddedByUserID *int64 `json:"added_by_user_id"`
}

// NewOnlineSession builds an engine-calculated session. Login must not
// be after logout; that is a caller bug, not a data condition.
func NewOnlineSession(registerID uint, userID, login, logout int64) (*Session, error) {
	if login > logout {
		return nil, fmt.Errorf("session login %d after logout %d", login, logout)
	}
	return &Session{
		RegisterID: registerID,
		UserID:     userID,
		Login:      login,
		Logout:     logout,
		Duration:   logout - login,
		Online:     true,
	}, nil
}

// NewOfflineSession builds a self-certified session.
func NewOfflineSession(registerID uint, userID, login, logout int64, refCourseID *int64, comments string) (*Session, error) {
	if login > logout {
		return nil, fmt.Errorf("session login %d after logout %d", login, logout)
	}
	return &Session{
		RegisterID:  registerID,
		UserID:      userID,
		Login:       login,
		Logout:      logout,
		Duration:    logout - login,
		Online:      false,
		RefCourseID: refCourseID,
		Comments:    comments,
	}, nil
}

// Overlaps reports whether the interval [login,logout] intersects the
// session's own interval.
func (s *Session) Overlaps(login, logout int64) bool {
	return login <= s.Logout && logout >= s.Login
}
