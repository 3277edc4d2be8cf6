package engine

import (
	"errors"
	"fmt"

	"github.com/edutrack/attreg/internal/models"
)

// Offline self-certification limits.
const (
	// maxReasonableOfflineSessionSecs caps a single self-certified
	// session; nobody attends offline for longer in one sitting.
	maxReasonableOfflineSessionSecs = 12 * 3600
)

// Offline session validation failures.
var (
	ErrOfflineDisabled      = errors.New("register does not accept offline sessions")
	ErrLoginNotBeforeLogout = errors.New("login must be before logout")
	ErrSessionTooLong       = errors.New("session is unreasonably long")
	ErrLogoutInFuture       = errors.New("logout is in the future")
	ErrLoginTooOld          = errors.New("login is older than the certifiable window")
	ErrSessionOverlap       = errors.New("session overlaps a recorded session")
)

// OfflineSessionRequest carries a user's self-certified attendance.
type OfflineSessionRequest struct {
	UserID        int64
	Login         int64
	Logout        int64
	RefCourseID   *int64
	Comments      string
	AddedByUserID *int64 // set when certified on behalf of another user
}

// AddOfflineSession validates and records a self-certified session,
// then rebuilds the user's aggregates. Offline sessions participate in
// overlap checks and aggregation but are never produced by the builder.
func (e *Engine) AddOfflineSession(register *models.Register, req OfflineSessionRequest) (*models.Session, error) {
	if !register.OfflineSessions {
		return nil, ErrOfflineDisabled
	}
	now := e.now()
	if req.Logout-req.Login <= 0 {
		return nil, ErrLoginNotBeforeLogout
	}
	if req.Logout-req.Login > maxReasonableOfflineSessionSecs {
		return nil, ErrSessionTooLong
	}
	if register.DaysCertifiable > 0 && now-req.Login > int64(register.DaysCertifiable)*24*3600 {
		return nil, ErrLoginTooOld
	}
	if req.Logout > now {
		return nil, ErrLogoutInFuture
	}
	overlaps, err := e.store.HasOverlappingSession(register.ID, req.UserID, req.Login, req.Logout)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if overlaps {
		return nil, ErrSessionOverlap
	}

	session, err := models.NewOfflineSession(register.ID, req.UserID, req.Login, req.Logout, req.RefCourseID, req.Comments)
	if err != nil {
		return nil, err
	}
	session.AddedByUserID = req.AddedByUserID

	if err := e.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("save offline session: %w", err)
	}
	if err := e.UpdateUserAggregates(register, req.UserID); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteOfflineSession removes one self-certified session and rebuilds
// the user's aggregates.
func (e *Engine) DeleteOfflineSession(register *models.Register, userID int64, sessionID uint) error {
	if err := e.store.DeleteOfflineSession(register.ID, userID, sessionID); err != nil {
		return fmt.Errorf("delete offline session: %w", err)
	}
	return e.UpdateUserAggregates(register, userID)
}
