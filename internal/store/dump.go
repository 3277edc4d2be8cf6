package store

import (
	"gorm.io/gorm"

	"github.com/edutrack/attreg/internal/models"
)

// DumpEntries returns the whole dump buffer, oldest first. The buffer
// is read non-destructively; it is only replaced by CommitRunState once
// the run that consumed it has fully succeeded.
func (s *Store) DumpEntries() ([]models.DumpEntry, error) {
	var entries []models.DumpEntry
	err := s.db.Order("timestamp ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CommitRunState atomically replaces the dump buffer and advances the
// cursor. This is the batch run's single bookkeeping commit: a failure
// anywhere before it leaves both untouched.
func (s *Store) CommitRunState(entries []models.DumpEntry, cursor int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.DumpEntry{}).Error; err != nil {
			return err
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}
		return setSetting(tx, models.SettingLastParsedEventID, formatInt(cursor))
	})
}
