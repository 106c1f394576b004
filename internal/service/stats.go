package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// hoursPerManDay is the fixed budget conversion: 1 man-day = 7.5 hours.
var hoursPerManDay = decimal.RequireFromString("7.5")

// WarningLevel classifies budget usage for a project.
type WarningLevel string

const (
	WarningNone   WarningLevel = "none"
	WarningNotice WarningLevel = "warning"
	WarningDanger WarningLevel = "danger"
)

// Usage-rate thresholds, in percent.
var (
	warningThreshold = decimal.NewFromInt(80)
	dangerThreshold  = decimal.NewFromInt(100)
)

// ProjectStats is the budget-usage aggregate for one project.
//
// ApprovedHours, RemainingHours and UsageRate are nil when the project has no
// approved budget; nil means "no budget defined", which is not the same as a
// zero budget.
type ProjectStats struct {
	ProjectID       uint             `json:"project_id"`
	ProjectCode     string           `json:"project_code"`
	ProjectName     string           `json:"project_name"`
	ApprovedManDays *decimal.Decimal `json:"approved_man_days"`
	ApprovedHours   *decimal.Decimal `json:"approved_hours"`
	UsedHours       decimal.Decimal  `json:"used_hours"`
	NonDeductHours  decimal.Decimal  `json:"non_deduct_hours"`
	TotalHours      decimal.Decimal  `json:"total_hours"`
	RemainingHours  *decimal.Decimal `json:"remaining_hours"`
	UsageRate       *decimal.Decimal `json:"usage_rate"`
	WarningLevel    WarningLevel     `json:"warning_level"`
	WarningMessage  *string          `json:"warning_message"`
	IsOverBudget    bool             `json:"is_over_budget"`
}

// CalculateProjectStats aggregates the time entries of one project into a
// ProjectStats. Returns (nil, nil) when the project does not exist.
//
// used_hours sums entries whose work category deducts approved hours,
// non_deduct_hours sums the rest; usage_rate is used/approved as a percentage
// rounded half-up to one decimal place. IsOverBudget compares the unrounded
// values so the raw overrun test cannot disagree with the displayed rate.
func CalculateProjectStats(s Store, projectID uint) (*ProjectStats, error) {
	project, err := s.ProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}

	usedHours, err := s.SumProjectHours(projectID, true)
	if err != nil {
		return nil, err
	}
	nonDeductHours, err := s.SumProjectHours(projectID, false)
	if err != nil {
		return nil, err
	}
	totalHours := usedHours.Add(nonDeductHours)

	stats := &ProjectStats{
		ProjectID:       project.ID,
		ProjectCode:     project.Code,
		ProjectName:     project.Name,
		ApprovedManDays: project.ApprovedManDays,
		UsedHours:       usedHours,
		NonDeductHours:  nonDeductHours,
		TotalHours:      totalHours,
		WarningLevel:    WarningNone,
	}

	if project.ApprovedManDays == nil {
		return stats, nil
	}

	approvedHours := project.ApprovedManDays.Mul(hoursPerManDay)
	stats.ApprovedHours = &approvedHours
	stats.IsOverBudget = usedHours.GreaterThan(approvedHours)

	// A zero budget yields no rate (nothing to divide by) and, because the
	// guard returns here, no remaining figure either: the two fields are
	// only ever reported together. It still counts as a defined budget for
	// the over-budget test above.
	if approvedHours.IsZero() {
		return stats, nil
	}

	remaining := approvedHours.Sub(usedHours)
	usageRate := usedHours.Div(approvedHours).Mul(decimal.NewFromInt(100)).Round(1)
	stats.RemainingHours = &remaining
	stats.UsageRate = &usageRate

	switch {
	case usageRate.GreaterThanOrEqual(dangerThreshold):
		stats.WarningLevel = WarningDanger
		msg := "專案核定工時已用完，此記錄將超出預算"
		stats.WarningMessage = &msg
	case usageRate.GreaterThanOrEqual(warningThreshold):
		stats.WarningLevel = WarningNotice
		msg := fmt.Sprintf("專案工時使用率已達 %s%%，請注意控制", usageRate.StringFixed(1))
		stats.WarningMessage = &msg
	}

	return stats, nil
}

// CalculateAllProjectStats computes stats for every non-deleted project that
// has at least one time entry. Projects without entries are skipped, not
// reported as errors.
func CalculateAllProjectStats(s Store) ([]ProjectStats, error) {
	projects, err := s.ActiveProjectsWithEntries()
	if err != nil {
		return nil, err
	}

	statsList := make([]ProjectStats, 0, len(projects))
	for _, project := range projects {
		stats, err := CalculateProjectStats(s, project.ID)
		if err != nil {
			return nil, err
		}
		if stats != nil {
			statsList = append(statsList, *stats)
		}
	}
	return statsList, nil
}
