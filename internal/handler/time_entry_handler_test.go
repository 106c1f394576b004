package handler

import (
	"testing"
	"time"

	"timetrack-service/internal/model"

	"github.com/shopspring/decimal"
)

// refStore is a reference-lookup fake for the entry FK checks.
type refStore struct {
	projects   map[uint]*model.Project
	groups     map[uint]*model.AccountGroup
	categories map[uint]*model.WorkCategory
}

func newRefStore() *refStore {
	return &refStore{
		projects:   map[uint]*model.Project{},
		groups:     map[uint]*model.AccountGroup{},
		categories: map[uint]*model.WorkCategory{},
	}
}

func (s *refStore) ProjectByID(id uint) (*model.Project, error) {
	return s.projects[id], nil
}

func (s *refStore) AccountGroupByID(id uint) (*model.AccountGroup, error) {
	return s.groups[id], nil
}

func (s *refStore) WorkCategoryByID(id uint) (*model.WorkCategory, error) {
	return s.categories[id], nil
}

func (s *refStore) EntriesForDate(time.Time) ([]model.TimeEntry, error) {
	return nil, nil
}

func (s *refStore) SumProjectHours(uint, bool) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *refStore) ActiveProjectsWithEntries() ([]model.Project, error) {
	return nil, nil
}

func groupID(v uint) *uint {
	return &v
}

// A create or patch must stop on the first dangling reference; an empty
// result is what lets the handler proceed to persist.
func TestMissingEntryReference(t *testing.T) {
	s := newRefStore()
	s.projects[1] = &model.Project{ID: 1, Code: "需2025單001"}
	s.groups[2] = &model.AccountGroup{ID: 2, Code: "A00"}
	s.categories[3] = &model.WorkCategory{ID: 3, Code: "A07"}

	tests := []struct {
		name           string
		projectID      uint
		accountGroupID *uint
		workCategoryID uint
		want           string
	}{
		{"all resolve", 1, groupID(2), 3, ""},
		{"nil account group skipped", 1, nil, 3, ""},
		{"dangling project", 7, groupID(2), 3, "Project with id 7 not found"},
		{"dangling account group", 1, groupID(55), 3, "Account group with id 55 not found"},
		{"dangling work category", 1, groupID(2), 99, "Work category with id 99 not found"},
		{"project checked before category", 7, nil, 99, "Project with id 7 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := missingEntryReference(s, tt.projectID, tt.accountGroupID, tt.workCategoryID)
			if err != nil {
				t.Fatalf("missingEntryReference: %v", err)
			}
			if got != tt.want {
				t.Errorf("missingEntryReference = %q, want %q", got, tt.want)
			}
		})
	}
}
