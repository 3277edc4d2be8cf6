package store

import (
	"github.com/edutrack/attreg/internal/models"
)

// AcquireLock unconditionally inserts a lock row for the pair. A false
// "busy" is safe; a false "free" is not, so there is no get-or-create.
func (s *Store) AcquireLock(registerID uint, userID, now int64) error {
	lock := models.Lock{
		RegisterID: registerID,
		UserID:     userID,
		TakenOn:    now,
	}
	return s.db.Create(&lock).Error
}

// ReleaseLock deletes all lock rows for the pair.
func (s *Store) ReleaseLock(registerID uint, userID int64) error {
	return s.db.Where("register_id = ? AND user_id = ?", registerID, userID).
		Delete(&models.Lock{}).Error
}

// LockExists reports whether any lock is held on the pair.
func (s *Store) LockExists(registerID uint, userID int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Lock{}).
		Where("register_id = ? AND user_id = ?", registerID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RegisterLockExists reports whether any user of the register is
// locked. The incremental batch skips its whole pass on any hit,
// otherwise the dump table could grow without bound.
func (s *Store) RegisterLockExists(registerID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Lock{}).
		Where("register_id = ?", registerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeOrphanLocks deletes locks taken before the given instant,
// recovering from recalculations that crashed without releasing.
func (s *Store) PurgeOrphanLocks(takenBefore int64) (int64, error) {
	res := s.db.Where("taken_on < ?", takenBefore).Delete(&models.Lock{})
	return res.RowsAffected, res.Error
}

// LockCount returns the number of lock rows held on the pair.
func (s *Store) LockCount(registerID uint, userID int64) (int64, error) {
	var count int64
	err := s.db.Model(&models.Lock{}).
		Where("register_id = ? AND user_id = ?", registerID, userID).
		Count(&count).Error
	return count, err
}
