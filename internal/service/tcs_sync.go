package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"timetrack-service/internal/model"
)

// Account group code substituted when an entry has no account group at all.
const defaultAccountGroupCode = "A00"

// TCS rejects days and single rows above this many hours.
const maxTCSHours = 18

// TCSEntry is the flat record the validator and the form-filling actor
// consume. RequirementNo and ProgressRate are always present but empty/zero;
// the domain model does not capture them yet.
type TCSEntry struct {
	ProjectCode   string  `json:"project_code"`
	AccountGroup  string  `json:"account_group"`
	WorkCategory  string  `json:"work_category"`
	Hours         float64 `json:"hours"`
	Description   string  `json:"description"`
	RequirementNo string  `json:"requirement_no"`
	ProgressRate  int     `json:"progress_rate"`
}

// ErrNoEntries signals that a date (or range) has no time entries to act on.
var ErrNoEntries = errors.New("找不到工時記錄")

// ReferenceError is a dangling required foreign key discovered during
// normalization. It aborts the whole batch.
type ReferenceError struct {
	Entity string
	ID     uint
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("找不到%s ID: %d", e.Entity, e.ID)
}

// ValidationError carries the complete list of business-rule violations
// found by ValidateTCSData.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "資料驗證失敗: " + strings.Join(e.Errors, "; ")
}

// ActorError wraps a failure raised by the form-filling actor, kept distinct
// from validation and reference failures so callers can report "automation
// failed" separately from "your data was invalid".
type ActorError struct {
	Err error
}

func (e *ActorError) Error() string {
	return fmt.Sprintf("自動化執行失敗: %v", e.Err)
}

func (e *ActorError) Unwrap() error {
	return e.Err
}

// Automator is the external form-filling actor. Browser orchestration is out
// of the core's hands; the contract is this call sequence and a
// success/failure result per call.
type Automator interface {
	Start(headless, dryRun bool) error
	FillEntries(dateYYYYMMDD string, entries []TCSEntry) error
	Screenshot() (string, error)
	PreviewBeforeSave(autoConfirm bool) error
	Save() error
	Close() error
}

// ConvertEntriesToTCSFormat resolves each entry's foreign keys and produces
// the flat records the actor expects. The first dangling required reference
// aborts the batch with a *ReferenceError; nothing is partially returned.
//
// An entry without an account group gets the default code "A00". An account
// group id that was supplied but does not resolve is an error: a dangling
// reference is not the same as an intentionally absent one.
func ConvertEntriesToTCSFormat(s Store, entries []model.TimeEntry) ([]TCSEntry, error) {
	tcsEntries := make([]TCSEntry, 0, len(entries))

	for _, entry := range entries {
		project, err := s.ProjectByID(entry.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, &ReferenceError{Entity: "專案", ID: entry.ProjectID}
		}

		category, err := s.WorkCategoryByID(entry.WorkCategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, &ReferenceError{Entity: "工作類別", ID: entry.WorkCategoryID}
		}

		groupCode := defaultAccountGroupCode
		if entry.AccountGroupID != nil {
			group, err := s.AccountGroupByID(*entry.AccountGroupID)
			if err != nil {
				return nil, err
			}
			if group == nil {
				return nil, &ReferenceError{Entity: "模組", ID: *entry.AccountGroupID}
			}
			groupCode = group.Code
		}

		hours, _ := entry.Hours.Float64()
		tcsEntries = append(tcsEntries, TCSEntry{
			ProjectCode:   project.Code,
			AccountGroup:  groupCode,
			WorkCategory:  category.Code,
			Hours:         hours,
			Description:   entry.Description,
			RequirementNo: "",
			ProgressRate:  0,
		})
	}

	return tcsEntries, nil
}

// ValidateTCSData checks normalized records against the TCS hard limits.
// All checks run regardless of earlier failures so the caller gets the
// complete error list in one pass; the row cap and the whole-day cap are
// independent and may both fire.
func ValidateTCSData(entries []TCSEntry) (bool, []string) {
	errs := []string{}

	if len(entries) == 0 {
		errs = append(errs, "沒有工時記錄")
		return false, errs
	}

	var totalHours float64
	for _, entry := range entries {
		totalHours += entry.Hours
	}

	if totalHours > maxTCSHours {
		errs = append(errs, fmt.Sprintf("總工時 %s 小時超過 TCS 限制（%d 小時）", formatFloat(totalHours), maxTCSHours))
	}
	if totalHours <= 0 {
		errs = append(errs, "總工時必須大於 0")
	}

	for i, entry := range entries {
		idx := i + 1
		if entry.ProjectCode == "" {
			errs = append(errs, fmt.Sprintf("第 %d 筆記錄：專案代碼為必填", idx))
		}
		// Account group always has a value by construction; not checked.
		if entry.WorkCategory == "" {
			errs = append(errs, fmt.Sprintf("第 %d 筆記錄：工作類別為必填", idx))
		}
		if entry.Hours <= 0 {
			errs = append(errs, fmt.Sprintf("第 %d 筆記錄：工時必須大於 0", idx))
		}
		if entry.Hours > maxTCSHours {
			errs = append(errs, fmt.Sprintf("第 %d 筆記錄：單筆工時不能超過 %d 小時", idx, maxTCSHours))
		}
		if entry.Description == "" {
			errs = append(errs, fmt.Sprintf("第 %d 筆記錄：工作說明為必填", idx))
		}
	}

	return len(errs) == 0, errs
}

// AutoFillResult reports the outcome of one auto-fill run.
type AutoFillResult struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	FilledCount    int             `json:"filled_count"`
	DryRun         bool            `json:"dry_run"`
	TotalHours     decimal.Decimal `json:"total_hours"`
	ScreenshotPath *string         `json:"screenshot_path"`
}

// AutoFillTCS runs the full sync flow for one date: load entries, normalize,
// validate, then drive the actor through start → fill → screenshot →
// preview → save → close. Validation failures stop the flow before the actor
// is touched. A screenshot failure is logged and ignored; any other actor
// failure aborts with an *ActorError.
func AutoFillTCS(s Store, actor Automator, headless bool, target time.Time, dryRun bool, log *zap.Logger) (*AutoFillResult, error) {
	entries, err := s.EntriesForDate(target)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	tcsEntries, err := ConvertEntriesToTCSFormat(s, entries)
	if err != nil {
		return nil, err
	}

	if ok, validationErrs := ValidateTCSData(tcsEntries); !ok {
		return nil, &ValidationError{Errors: validationErrs}
	}

	var totalHours float64
	for _, entry := range tcsEntries {
		totalHours += entry.Hours
	}

	if err := actor.Start(headless, dryRun); err != nil {
		return nil, &ActorError{Err: err}
	}
	if err := actor.FillEntries(target.Format("20060102"), tcsEntries); err != nil {
		return nil, &ActorError{Err: err}
	}

	var screenshotPath *string
	if path, err := actor.Screenshot(); err != nil {
		log.Warn("TCS screenshot failed, continuing", zap.Error(err))
	} else if path != "" {
		screenshotPath = &path
	}

	if err := actor.PreviewBeforeSave(true); err != nil {
		return nil, &ActorError{Err: err}
	}
	if err := actor.Save(); err != nil {
		return nil, &ActorError{Err: err}
	}
	if err := actor.Close(); err != nil {
		return nil, &ActorError{Err: err}
	}

	message := fmt.Sprintf("成功自動填寫 %d 筆工時記錄到 TCS 系統", len(tcsEntries))
	if dryRun {
		message = fmt.Sprintf("[DRY RUN] 已模擬填寫 %d 筆工時記錄（未真正儲存）", len(tcsEntries))
	}

	return &AutoFillResult{
		Success:        true,
		Message:        message,
		FilledCount:    len(tcsEntries),
		DryRun:         dryRun,
		TotalHours:     decimal.NewFromFloat(totalHours),
		ScreenshotPath: screenshotPath,
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
