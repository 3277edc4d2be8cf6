package store

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/edutrack/attreg/internal/models"
)

// CreateRegister persists a new register instance.
func (s *Store) CreateRegister(register *models.Register) error {
	return s.db.Create(register).Error
}

// GetRegister retrieves a register by id.
func (s *Store) GetRegister(id uint) (*models.Register, error) {
	var register models.Register
	if err := s.db.First(&register, id).Error; err != nil {
		return nil, fmt.Errorf("register #%d not found", id)
	}
	return &register, nil
}

// Registers returns every register instance.
func (s *Store) Registers() ([]models.Register, error) {
	var registers []models.Register
	if err := s.db.Order("id ASC").Find(&registers).Error; err != nil {
		return nil, err
	}
	return registers, nil
}

// SetPendingRecalc updates the durable deferred-recalculation flag.
func (s *Store) SetPendingRecalc(registerID uint, pending bool) error {
	return s.db.Model(&models.Register{}).
		Where("id = ?", registerID).
		Update("pending_recalc", pending).Error
}

// DeleteRegister removes a register and everything derived from it:
// sessions, aggregates, locks and completion states. Log events are
// external and untouched.
func (s *Store) DeleteRegister(registerID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Session{},
			&models.Aggregate{},
			&models.Lock{},
			&models.CompletionState{},
		} {
			if err := tx.Where("register_id = ?", registerID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Register{}, registerID).Error
	})
}

// TrackedCourseIDs resolves the set of courses a register tracks,
// depending on its type. The register's own course is always included.
func (s *Store) TrackedCourseIDs(register *models.Register) ([]int64, error) {
	ids := []int64{register.CourseID}

	switch register.Type {
	case models.RegisterTypeMeta:
		var linked []int64
		err := s.db.Model(&models.MetaLink{}).
			Where("course_id = ?", register.CourseID).
			Pluck("linked_course_id", &linked).Error
		if err != nil {
			return nil, err
		}
		ids = append(ids, linked...)
	case models.RegisterTypeCategory:
		var course models.Course
		if err := s.db.First(&course, register.CourseID).Error; err != nil {
			return nil, fmt.Errorf("course #%d of register #%d not found", register.CourseID, register.ID)
		}
		var inCategory []int64
		err := s.db.Model(&models.Course{}).
			Where("category_id = ?", course.CategoryID).
			Pluck("id", &inCategory).Error
		if err != nil {
			return nil, err
		}
		for _, id := range inCategory {
			if id != register.CourseID {
				ids = append(ids, id)
			}
		}
	}

	return ids, nil
}

// TrackedUserIDs returns the ids of every user tracked in any of the
// given courses, ascending and unique.
func (s *Store) TrackedUserIDs(courseIDs []int64) ([]int64, error) {
	var rows []models.TrackedUser
	err := s.db.Where("course_id IN ?", courseIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(rows))
	var ids []int64
	for _, r := range rows {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// AddCourse persists a course record.
func (s *Store) AddCourse(course *models.Course) error {
	return s.db.Create(course).Error
}

// AddMetaLink records a meta-enrolment link between two courses.
func (s *Store) AddMetaLink(courseID, linkedCourseID int64) error {
	return s.db.Create(&models.MetaLink{CourseID: courseID, LinkedCourseID: linkedCourseID}).Error
}

// AddTrackedUser adds a roster entry for a course.
func (s *Store) AddTrackedUser(courseID, userID int64) error {
	return s.db.Create(&models.TrackedUser{CourseID: courseID, UserID: userID}).Error
}
