package store

import (
	"fmt"

	"github.com/edutrack/attreg/internal/models"
)

// SaveSession persists a new session row.
func (s *Store) SaveSession(session *models.Session) error {
	return s.db.Create(session).Error
}

// UserSessions returns all sessions of a user in a register, newest
// login first.
func (s *Store) UserSessions(registerID uint, userID int64) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.Where("register_id = ? AND user_id = ?", registerID, userID).
		Order("login DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(sessionID uint) (*models.Session, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		return nil, fmt.Errorf("session #%d not found", sessionID)
	}
	return &session, nil
}

// MaxSessionLogouts returns, for every (register,user) pair that has
// sessions, the latest recorded logout. The batch uses it to discard
// already-processed history.
func (s *Store) MaxSessionLogouts() (map[uint]map[int64]int64, error) {
	var rows []struct {
		RegisterID uint
		UserID     int64
		Logout     int64
	}
	err := s.db.Model(&models.Session{}).
		Select("register_id, user_id, MAX(logout) AS logout").
		Group("register_id, user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]map[int64]int64, len(rows))
	for _, r := range rows {
		if out[r.RegisterID] == nil {
			out[r.RegisterID] = make(map[int64]int64)
		}
		out[r.RegisterID][r.UserID] = r.Logout
	}
	return out, nil
}

// LastOnlineSessionLogout returns the end of the user's last calculated
// online session, or 0 if none exists.
func (s *Store) LastOnlineSessionLogout(registerID uint, userID int64) (int64, error) {
	var max *int64
	err := s.db.Model(&models.Session{}).
		Where("register_id = ? AND user_id = ? AND online = ?", registerID, userID, true).
		Select("MAX(logout)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// DeleteUserOnlineSessions deletes a user's calculated sessions in a
// register. If loginFrom is non-nil only sessions with login at or
// after it are deleted, preserving sessions older than the visible log
// history.
func (s *Store) DeleteUserOnlineSessions(registerID uint, userID int64, loginFrom *int64) error {
	q := s.db.Where("register_id = ? AND user_id = ? AND online = ?", registerID, userID, true)
	if loginFrom != nil {
		q = q.Where("login >= ?", *loginFrom)
	}
	return q.Delete(&models.Session{}).Error
}

// HasOverlappingSession reports whether [login,logout] intersects any
// recorded session of the pair.
func (s *Store) HasOverlappingSession(registerID uint, userID, login, logout int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Session{}).
		Where("register_id = ? AND user_id = ? AND login <= ? AND logout >= ?",
			registerID, userID, logout, login).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteOfflineSession deletes one self-certified session. Online
// sessions are never deleted this way.
func (s *Store) DeleteOfflineSession(registerID uint, userID int64, sessionID uint) error {
	return s.db.Where("id = ? AND register_id = ? AND user_id = ? AND online = ?",
		sessionID, registerID, userID, false).
		Delete(&models.Session{}).Error
}

// DeleteRegisterOnlineSessions removes every calculated session of a
// register, together with all its aggregates.
func (s *Store) DeleteRegisterOnlineSessions(registerID uint) error {
	if err := s.db.Where("register_id = ?", registerID).Delete(&models.Aggregate{}).Error; err != nil {
		return err
	}
	return s.db.Where("register_id = ? AND online = ?", registerID, true).
		Delete(&models.Session{}).Error
}
