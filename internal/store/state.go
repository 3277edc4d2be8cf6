package store

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/edutrack/attreg/internal/models"
)

// LastParsedEventID returns the cursor: the highest event id consumed
// by the last successful batch run, 0 if no run ever completed.
func (s *Store) LastParsedEventID() (int64, error) {
	v, err := getSetting(s.db, models.SettingLastParsedEventID)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SetLastParsedEventID stores the cursor outside a batch commit. The
// batch itself advances it through CommitRunState.
func (s *Store) SetLastParsedEventID(id int64) error {
	return setSetting(s.db, models.SettingLastParsedEventID, formatInt(id))
}

func getSetting(db *gorm.DB, key string) (string, error) {
	var setting models.Setting
	err := db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

func setSetting(db *gorm.DB, key, value string) error {
	var setting models.Setting
	err := db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return db.Create(&models.Setting{Key: key, Value: value}).Error
	}
	setting.Value = value
	return db.Save(&setting).Error
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
