package service

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"timetrack-service/internal/model"
)

// Store is the read surface the stats engine and the TCS services consume.
// Lookup methods return (nil, nil) when the row does not exist so callers can
// branch on absence without inspecting driver errors.
type Store interface {
	ProjectByID(id uint) (*model.Project, error)
	AccountGroupByID(id uint) (*model.AccountGroup, error)
	WorkCategoryByID(id uint) (*model.WorkCategory, error)

	// EntriesForDate returns the entries for one calendar date ordered by
	// display_order ascending.
	EntriesForDate(date time.Time) ([]model.TimeEntry, error)

	// SumProjectHours sums entry hours for a project over the work
	// categories whose deduct_approved_hours flag matches deduct.
	SumProjectHours(projectID uint, deduct bool) (decimal.Decimal, error)

	// ActiveProjectsWithEntries returns distinct non-deleted projects that
	// have at least one time entry.
	ActiveProjectsWithEntries() ([]model.Project, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection in the Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ProjectByID(id uint) (*model.Project, error) {
	var project model.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (s *gormStore) AccountGroupByID(id uint) (*model.AccountGroup, error) {
	var group model.AccountGroup
	if err := s.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (s *gormStore) WorkCategoryByID(id uint) (*model.WorkCategory, error) {
	var category model.WorkCategory
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (s *gormStore) EntriesForDate(date time.Time) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := s.db.
		Where("date = ?", date.Format("2006-01-02")).
		Order("display_order ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *gormStore) SumProjectHours(projectID uint, deduct bool) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := s.db.Model(&model.TimeEntry{}).
		Select("SUM(time_entries.hours)").
		Joins("JOIN work_categories ON work_categories.id = time_entries.work_category_id").
		Where("time_entries.project_id = ? AND work_categories.deduct_approved_hours = ?", projectID, deduct).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (s *gormStore) ActiveProjectsWithEntries() ([]model.Project, error) {
	var projects []model.Project
	err := s.db.Model(&model.Project{}).
		Distinct("projects.*").
		Joins("JOIN time_entries ON time_entries.project_id = projects.id").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}
