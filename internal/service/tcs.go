package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"timetrack-service/internal/model"
)

// Separator inserted between date blocks when formatting a range.
const tcsDateSeparator = "\n\n==========\n\n"

// Label rendered in formatted text when an entry has no account group.
const missingAccountGroupLabel = "未指定"

// TCSEntryFormat is one entry of a formatted day, carrying the display
// labels used in the copy-paste text.
type TCSEntryFormat struct {
	ProjectName  string          `json:"project_name"`
	AccountGroup string          `json:"account_group"`
	WorkCategory string          `json:"work_category"`
	Hours        decimal.Decimal `json:"hours"`
	Description  string          `json:"description"`
}

// TCSFormatResult is a single date rendered into the TCS text layout.
type TCSFormatResult struct {
	Date          string           `json:"date"`
	Entries       []TCSEntryFormat `json:"entries"`
	FormattedText string           `json:"formatted_text"`
	TotalHours    decimal.Decimal  `json:"total_hours"`
}

// TCSRangeResult combines the formatted days of an inclusive date range.
type TCSRangeResult struct {
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	DailyFormats  []TCSFormatResult `json:"daily_formats"`
	TotalHours    decimal.Decimal   `json:"total_hours"`
	FormattedText string            `json:"formatted_text"`
}

// FormatDateForTCS renders one date's entries into the exact text layout the
// TCS system expects:
//
//	日期: YYYY/MM/DD
//	專案名稱: {project_code}
//	帳組: {code} {name}
//	工作類別: {code} {name}
//	實際工時: {hours}
//	工作說明:
//	{description}
//
//	---
//
// Entries whose project or work category cannot be resolved are skipped and
// do not contribute to the total; an absent account group renders a stand-in
// label instead. The caller supplies entries already restricted to the target
// date and ordered by display_order.
func FormatDateForTCS(s Store, entries []model.TimeEntry, target time.Time) (*TCSFormatResult, error) {
	formattedEntries := []TCSEntryFormat{}
	lines := []string{"日期: " + target.Format("2006/01/02")}
	totalHours := decimal.Zero

	for _, entry := range entries {
		project, err := s.ProjectByID(entry.ProjectID)
		if err != nil {
			return nil, err
		}
		category, err := s.WorkCategoryByID(entry.WorkCategoryID)
		if err != nil {
			return nil, err
		}
		if project == nil || category == nil {
			// Orphaned rows are omitted rather than aborting the whole
			// format operation.
			continue
		}

		groupLabel := missingAccountGroupLabel
		if entry.AccountGroupID != nil {
			group, err := s.AccountGroupByID(*entry.AccountGroupID)
			if err != nil {
				return nil, err
			}
			if group != nil {
				groupLabel = group.FullName()
			}
		}

		formattedEntries = append(formattedEntries, TCSEntryFormat{
			ProjectName:  project.Code,
			AccountGroup: groupLabel,
			WorkCategory: category.FullName(),
			Hours:        entry.Hours,
			Description:  entry.Description,
		})

		lines = append(lines,
			"專案名稱: "+project.Code,
			"帳組: "+groupLabel,
			"工作類別: "+category.FullName(),
			"實際工時: "+formatHours(entry.Hours),
			"工作說明:",
			entry.Description,
			"",
			"---",
			"",
		)

		totalHours = totalHours.Add(entry.Hours)
	}

	// Drop the separator after the last entry.
	if n := len(lines); n >= 2 && lines[n-1] == "" && lines[n-2] == "---" {
		lines = lines[:n-2]
	}

	return &TCSFormatResult{
		Date:          target.Format("2006/01/02"),
		Entries:       formattedEntries,
		FormattedText: strings.Join(lines, "\n"),
		TotalHours:    totalHours,
	}, nil
}

// FormatDateRangeForTCS formats every date from start to end inclusive,
// skipping dates without entries. Returns (nil, nil) when no date in the
// range has any entries.
func FormatDateRangeForTCS(s Store, start, end time.Time) (*TCSRangeResult, error) {
	dailyFormats := []TCSFormatResult{}
	totalHours := decimal.Zero

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		entries, err := s.EntriesForDate(d)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			continue
		}

		daily, err := FormatDateForTCS(s, entries, d)
		if err != nil {
			return nil, err
		}
		dailyFormats = append(dailyFormats, *daily)
		totalHours = totalHours.Add(daily.TotalHours)
	}

	if len(dailyFormats) == 0 {
		return nil, nil
	}

	texts := make([]string, len(dailyFormats))
	for i, daily := range dailyFormats {
		texts[i] = daily.FormattedText
	}

	return &TCSRangeResult{
		StartDate:     start.Format("2006/01/02"),
		EndDate:       end.Format("2006/01/02"),
		DailyFormats:  dailyFormats,
		TotalHours:    totalHours,
		FormattedText: strings.Join(texts, tcsDateSeparator),
	}, nil
}

// formatHours renders hours as TCS expects: whole and half values keep one
// decimal place (4 → "4.0", 0.5 → "0.5"), quarter values keep two ("4.25").
func formatHours(d decimal.Decimal) string {
	return strings.TrimSuffix(d.StringFixed(2), "0")
}
