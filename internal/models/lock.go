package models

// Lock guards a (register,user) pair during a forced recalculation.
// Any lock on a register also makes the incremental batch skip its
// whole pass. Locks older than the orphan delay are purged by the cron
// tick, recovering from a crashed recalculation.
type Lock struct {
	ID         uint  `gorm:"primarykey" json:"id"`
	RegisterID uint  `gorm:"not null;index:idx_lock_register_user" json:"register_id"`
	UserID     int64 `gorm:"not null;index:idx_lock_register_user" json:"user_id"`
	TakenOn    int64 `gorm:"not null" json:"taken_on"`
}
