package service

import (
	"testing"
	"time"

	"timetrack-service/internal/model"
)

func seedStatsStore(hours []string, deduct bool) *memStore {
	s := newMemStore()
	s.addProject(1, "需2025單001", "系統功能開發", "100")
	s.addCategory(1, "A07", "其它", true)
	s.addCategory(2, "A08", "商模", false)
	categoryID := uint(1)
	if !deduct {
		categoryID = 2
	}
	for _, h := range hours {
		s.addEntry(model.TimeEntry{
			Date:           time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC),
			ProjectID:      1,
			WorkCategoryID: categoryID,
			Hours:          dec(h),
			Description:    "開發",
		})
	}
	return s
}

func TestCalculateProjectStatsMissingProject(t *testing.T) {
	s := newMemStore()
	stats, err := CalculateProjectStats(s, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats != nil {
		t.Fatalf("expected nil stats for missing project, got %+v", stats)
	}
}

func TestCalculateProjectStatsEmptyEntrySet(t *testing.T) {
	s := seedStatsStore(nil, true)
	stats, err := CalculateProjectStats(s, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.UsedHours.IsZero() || !stats.NonDeductHours.IsZero() || !stats.TotalHours.IsZero() {
		t.Errorf("expected all-zero hours, got used=%s non_deduct=%s total=%s",
			stats.UsedHours, stats.NonDeductHours, stats.TotalHours)
	}
	if stats.WarningLevel != WarningNone {
		t.Errorf("expected warning level none, got %s", stats.WarningLevel)
	}
	if stats.IsOverBudget {
		t.Error("empty project must not be over budget")
	}
}

// Partition completeness: used + non-deduct must equal total exactly.
func TestCalculateProjectStatsPartition(t *testing.T) {
	s := newMemStore()
	s.addProject(1, "需2025單001", "系統功能開發", "20")
	s.addCategory(1, "A07", "其它", true)
	s.addCategory(2, "I07", "休假（休假、病假、事假等）", false)
	date := time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC)
	for _, h := range []string{"0.5", "7.5", "4.25"} {
		s.addEntry(model.TimeEntry{Date: date, ProjectID: 1, WorkCategoryID: 1, Hours: dec(h), Description: "x"})
	}
	for _, h := range []string{"1.5", "0.5"} {
		s.addEntry(model.TimeEntry{Date: date, ProjectID: 1, WorkCategoryID: 2, Hours: dec(h), Description: "x"})
	}

	stats, err := CalculateProjectStats(s, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stats.UsedHours; !got.Equal(dec("12.25")) {
		t.Errorf("used_hours = %s, want 12.25", got)
	}
	if got := stats.NonDeductHours; !got.Equal(dec("2")) {
		t.Errorf("non_deduct_hours = %s, want 2", got)
	}
	if !stats.UsedHours.Add(stats.NonDeductHours).Equal(stats.TotalHours) {
		t.Errorf("used+non_deduct = %s, total = %s",
			stats.UsedHours.Add(stats.NonDeductHours), stats.TotalHours)
	}
}

// No approved budget: approved/remaining/rate absent, warning stays none.
func TestCalculateProjectStatsNoBudget(t *testing.T) {
	s := newMemStore()
	s.addProject(1, "需2025單002", "無預算專案", "")
	s.addCategory(1, "A07", "其它", true)
	s.addEntry(model.TimeEntry{
		Date: time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), ProjectID: 1,
		WorkCategoryID: 1, Hours: dec("7.5"), Description: "x",
	})

	stats, err := CalculateProjectStats(s, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ApprovedHours != nil || stats.RemainingHours != nil || stats.UsageRate != nil {
		t.Errorf("budget fields must be absent without approved_man_days: %+v", stats)
	}
	if stats.WarningLevel != WarningNone || stats.WarningMessage != nil {
		t.Errorf("expected no warning, got level=%s message=%v", stats.WarningLevel, stats.WarningMessage)
	}
	if stats.IsOverBudget {
		t.Error("is_over_budget requires a defined budget")
	}
}

// Man-day conversion: 20 man-days is exactly 150 hours.
func TestCalculateProjectStatsManDayConversion(t *testing.T) {
	s := newMemStore()
	s.addProject(1, "需2025單001", "系統功能開發", "20")
	s.addCategory(1, "A07", "其它", true)
	s.addEntry(model.TimeEntry{
		Date: time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), ProjectID: 1,
		WorkCategoryID: 1, Hours: dec("1"), Description: "x",
	})

	stats, err := CalculateProjectStats(s, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ApprovedHours == nil || !stats.ApprovedHours.Equal(dec("150")) {
		t.Fatalf("approved_hours = %v, want 150", stats.ApprovedHours)
	}
}

// Boundary-exact warning thresholds against a 750-hour budget (100 man-days).
func TestCalculateProjectStatsWarningThresholds(t *testing.T) {
	cases := []struct {
		name        string
		hours       []string
		rate        string
		level       WarningLevel
		wantMessage bool
		overBudget  bool
	}{
		{"just below warning", []string{"74.25", "75", "75", "75", "75", "75", "75", "75"}, "79.9", WarningNone, false, false},
		{"warning boundary", []string{"75", "75", "75", "75", "75", "75", "75", "75"}, "80", WarningNotice, true, false},
		{"just below danger", []string{"74.25", "75", "75", "75", "75", "75", "75", "75", "75", "75"}, "99.9", WarningNotice, true, false},
		{"danger boundary", []string{"75", "75", "75", "75", "75", "75", "75", "75", "75", "75"}, "100", WarningDanger, true, false},
		{"over budget", []string{"75", "75", "75", "75", "75", "75", "75", "75", "75", "75", "0.5"}, "100.1", WarningDanger, true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := seedStatsStore(tc.hours, true)
			stats, err := CalculateProjectStats(s, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stats.UsageRate == nil {
				t.Fatal("usage_rate must be present")
			}
			if !stats.UsageRate.Equal(dec(tc.rate)) {
				t.Errorf("usage_rate = %s, want %s", stats.UsageRate, tc.rate)
			}
			if stats.WarningLevel != tc.level {
				t.Errorf("warning_level = %s, want %s", stats.WarningLevel, tc.level)
			}
			if tc.wantMessage && stats.WarningMessage == nil {
				t.Error("expected a warning message")
			}
			if !tc.wantMessage && stats.WarningMessage != nil {
				t.Errorf("unexpected warning message %q", *stats.WarningMessage)
			}
			if stats.IsOverBudget != tc.overBudget {
				t.Errorf("is_over_budget = %v, want %v", stats.IsOverBudget, tc.overBudget)
			}
		})
	}
}

// Usage rate rounds half-up, not banker's: 48.03/60 = 80.05% → 80.1.
func TestCalculateProjectStatsRoundsHalfUp(t *testing.T) {
	s := newMemStore()
	s.addProject(1, "需2025單001", "系統功能開發", "8")
	s.addCategory(1, "A07", "其它", true)
	s.addEntry(model.TimeEntry{
		Date: time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), ProjectID: 1,
		WorkCategoryID: 1, Hours: dec("48.03"), Description: "x",
	})
	stats, err := CalculateProjectStats(s, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.UsageRate == nil || !stats.UsageRate.Equal(dec("80.1")) {
		t.Fatalf("usage_rate = %v, want 80.1", stats.UsageRate)
	}
}

// A mixed project: 20 man-days approved, 120h deductible + 10h non-deductible.
func TestCalculateProjectStatsScenario(t *testing.T) {
	s := newMemStore()
	s.addProject(1, "需2025單001", "系統功能開發", "20")
	s.addCategory(1, "A07", "其它", true)
	s.addCategory(2, "A08", "商模", false)
	date := time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 16; i++ {
		s.addEntry(model.TimeEntry{Date: date, ProjectID: 1, WorkCategoryID: 1, Hours: dec("7.5"), Description: "x"})
	}
	for i := 0; i < 2; i++ {
		s.addEntry(model.TimeEntry{Date: date, ProjectID: 1, WorkCategoryID: 2, Hours: dec("5"), Description: "x"})
	}

	stats, err := CalculateProjectStats(s, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.UsedHours.Equal(dec("120")) {
		t.Errorf("used_hours = %s, want 120", stats.UsedHours)
	}
	if !stats.NonDeductHours.Equal(dec("10")) {
		t.Errorf("non_deduct_hours = %s, want 10", stats.NonDeductHours)
	}
	if !stats.TotalHours.Equal(dec("130")) {
		t.Errorf("total_hours = %s, want 130", stats.TotalHours)
	}
	if stats.ApprovedHours == nil || !stats.ApprovedHours.Equal(dec("150")) {
		t.Errorf("approved_hours = %v, want 150", stats.ApprovedHours)
	}
	if stats.UsageRate == nil || !stats.UsageRate.Equal(dec("80")) {
		t.Errorf("usage_rate = %v, want 80.0", stats.UsageRate)
	}
	if stats.WarningLevel != WarningNotice {
		t.Errorf("warning_level = %s, want warning", stats.WarningLevel)
	}
	if stats.RemainingHours == nil || !stats.RemainingHours.Equal(dec("30")) {
		t.Errorf("remaining_hours = %v, want 30", stats.RemainingHours)
	}
}

// Zero budget is still a defined budget: no rate, but overrun detection works.
func TestCalculateProjectStatsZeroBudget(t *testing.T) {
	s := newMemStore()
	s.addProject(1, "需2025單003", "零預算", "0")
	s.addCategory(1, "A07", "其它", true)
	s.addEntry(model.TimeEntry{
		Date: time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), ProjectID: 1,
		WorkCategoryID: 1, Hours: dec("2"), Description: "x",
	})

	stats, err := CalculateProjectStats(s, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ApprovedHours == nil || !stats.ApprovedHours.IsZero() {
		t.Fatalf("approved_hours = %v, want 0", stats.ApprovedHours)
	}
	if stats.UsageRate != nil || stats.RemainingHours != nil {
		t.Error("rate and remaining must be absent for a zero budget")
	}
	if !stats.IsOverBudget {
		t.Error("deductible hours against a zero budget are an overrun")
	}
}

func TestCalculateAllProjectStatsSkipsProjectsWithoutEntries(t *testing.T) {
	s := newMemStore()
	s.addProject(1, "需2025單001", "有記錄", "20")
	s.addProject(2, "需2025單002", "無記錄", "10")
	s.addCategory(1, "A07", "其它", true)
	s.addEntry(model.TimeEntry{
		Date: time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), ProjectID: 1,
		WorkCategoryID: 1, Hours: dec("4"), Description: "x",
	})

	statsList, err := CalculateAllProjectStats(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statsList) != 1 {
		t.Fatalf("expected 1 project in stats, got %d", len(statsList))
	}
	if statsList[0].ProjectID != 1 {
		t.Errorf("unexpected project %d in stats", statsList[0].ProjectID)
	}
}
