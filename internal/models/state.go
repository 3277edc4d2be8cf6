package models

// Setting is a scalar config value persisted with the data, such as the
// batch cursor.
type Setting struct {
	Key   string `gorm:"primarykey" json:"key"`
	Value string `gorm:"not null" json:"value"`
}

// SettingLastParsedEventID is the cursor: the highest event id consumed
// by the last successful batch run.
const SettingLastParsedEventID = "lastparsedeventid"

// CompletionState records the last evaluated completion outcome for a
// (register,user) pair.
type CompletionState struct {
	ID         uint  `gorm:"primarykey" json:"id"`
	RegisterID uint  `gorm:"not null;index:idx_completion_register_user" json:"register_id"`
	UserID     int64 `gorm:"not null;index:idx_completion_register_user" json:"user_id"`
	Complete   bool  `gorm:"not null" json:"complete"`
	UpdatedAt  int64 `gorm:"not null" json:"updated_at"`
}
