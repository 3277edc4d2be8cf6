package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/edutrack/attreg/internal/models"
)

// ReplaceUserAggregates deletes every aggregate row of the pair and
// inserts the freshly computed set in one transaction. Aggregates are
// never patched in place.
func (s *Store) ReplaceUserAggregates(registerID uint, userID int64, aggregates []models.Aggregate) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("register_id = ? AND user_id = ?", registerID, userID).
			Delete(&models.Aggregate{}).Error; err != nil {
			return err
		}
		if len(aggregates) == 0 {
			return nil
		}
		return tx.Create(&aggregates).Error
	})
}

// UserAggregates returns all aggregate rows of a user in a register.
func (s *Store) UserAggregates(registerID uint, userID int64) ([]models.Aggregate, error) {
	var aggregates []models.Aggregate
	err := s.db.Where("register_id = ? AND user_id = ?", registerID, userID).
		Order("kind ASC").
		Find(&aggregates).Error
	if err != nil {
		return nil, err
	}
	return aggregates, nil
}

// RegisterAggregateSummaries returns the summary rows (totals and grand
// totals) for every user of a register.
func (s *Store) RegisterAggregateSummaries(registerID uint) ([]models.Aggregate, error) {
	var aggregates []models.Aggregate
	err := s.db.Where("register_id = ? AND kind IN ?", registerID, []models.AggregateKind{
		models.AggregateOfflineTotal,
		models.AggregateOnlineTotal,
		models.AggregateGrandTotal,
	}).
		Order("user_id ASC, kind ASC").
		Find(&aggregates).Error
	if err != nil {
		return nil, err
	}
	return aggregates, nil
}

// UserGrandTotal returns the cached grandtotal row for the pair, or nil
// if the user was never aggregated.
func (s *Store) UserGrandTotal(registerID uint, userID int64) (*models.Aggregate, error) {
	var aggregate models.Aggregate
	err := s.db.Where("register_id = ? AND user_id = ? AND kind = ?",
		registerID, userID, models.AggregateGrandTotal).
		First(&aggregate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &aggregate, nil
}

// DeleteUserAggregates removes every aggregate row of the pair.
func (s *Store) DeleteUserAggregates(registerID uint, userID int64) error {
	return s.db.Where("register_id = ? AND user_id = ?", registerID, userID).
		Delete(&models.Aggregate{}).Error
}

// SetCompletionState upserts the completion outcome for the pair.
func (s *Store) SetCompletionState(registerID uint, userID int64, complete bool, now int64) error {
	var state models.CompletionState
	err := s.db.Where("register_id = ? AND user_id = ?", registerID, userID).
		First(&state).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		state = models.CompletionState{
			RegisterID: registerID,
			UserID:     userID,
			Complete:   complete,
			UpdatedAt:  now,
		}
		return s.db.Create(&state).Error
	}
	state.Complete = complete
	state.UpdatedAt = now
	return s.db.Save(&state).Error
}

// CompletionStateFor returns the recorded completion outcome, or nil if
// the pair was never evaluated.
func (s *Store) CompletionStateFor(registerID uint, userID int64) (*models.CompletionState, error) {
	var state models.CompletionState
	err := s.db.Where("register_id = ? AND user_id = ?", registerID, userID).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}
