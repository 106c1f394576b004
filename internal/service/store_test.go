package service

import (
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"timetrack-service/internal/model"
)

// memStore is an in-memory Store used by the service tests.
type memStore struct {
	projects   map[uint]*model.Project
	groups     map[uint]*model.AccountGroup
	categories map[uint]*model.WorkCategory
	entries    []model.TimeEntry
}

func newMemStore() *memStore {
	return &memStore{
		projects:   map[uint]*model.Project{},
		groups:     map[uint]*model.AccountGroup{},
		categories: map[uint]*model.WorkCategory{},
	}
}

func (m *memStore) ProjectByID(id uint) (*model.Project, error) {
	return m.projects[id], nil
}

func (m *memStore) AccountGroupByID(id uint) (*model.AccountGroup, error) {
	return m.groups[id], nil
}

func (m *memStore) WorkCategoryByID(id uint) (*model.WorkCategory, error) {
	return m.categories[id], nil
}

func (m *memStore) EntriesForDate(date time.Time) ([]model.TimeEntry, error) {
	var out []model.TimeEntry
	for _, e := range m.entries {
		if e.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out, nil
}

func (m *memStore) SumProjectHours(projectID uint, deduct bool) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.ProjectID != projectID {
			continue
		}
		category := m.categories[e.WorkCategoryID]
		if category == nil || category.DeductApprovedHours != deduct {
			continue
		}
		sum = sum.Add(e.Hours)
	}
	return sum, nil
}

func (m *memStore) ActiveProjectsWithEntries() ([]model.Project, error) {
	seen := map[uint]bool{}
	for _, e := range m.entries {
		seen[e.ProjectID] = true
	}
	var ids []uint
	for id, p := range m.projects {
		if seen[id] && !p.DeletedAt.Valid {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []model.Project
	for _, id := range ids {
		out = append(out, *m.projects[id])
	}
	return out, nil
}

func (m *memStore) addProject(id uint, code, name string, manDays string) *model.Project {
	p := &model.Project{ID: id, Code: code, RequirementCode: "R" + code, Name: name, Status: "active"}
	if manDays != "" {
		d := dec(manDays)
		p.ApprovedManDays = &d
	}
	m.projects[id] = p
	return p
}

func (m *memStore) addGroup(id uint, code, name string) *model.AccountGroup {
	g := &model.AccountGroup{ID: id, Code: code, Name: name}
	m.groups[id] = g
	return g
}

func (m *memStore) addCategory(id uint, code, name string, deduct bool) *model.WorkCategory {
	c := &model.WorkCategory{ID: id, Code: code, Name: name, DeductApprovedHours: deduct}
	m.categories[id] = c
	return c
}

func (m *memStore) addEntry(e model.TimeEntry) {
	e.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, e)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func uintPtr(v uint) *uint {
	return &v
}
