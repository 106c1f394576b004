package handler

import (
	"net/http"
	"strconv"
	"time"

	"timetrack-service/internal/model"
	"timetrack-service/internal/service"
	"timetrack-service/pkg/database"
	"timetrack-service/pkg/logger"
	"timetrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TimeEntryRequest defines the structure for time entry creation requests
type TimeEntryRequest struct {
	Date           string          `json:"date"`
	ProjectID      uint            `json:"project_id"`
	AccountGroupID *uint           `json:"account_group_id"`
	WorkCategoryID uint            `json:"work_category_id"`
	Hours          decimal.Decimal `json:"hours"`
	Description    string          `json:"description"`
	AccountItem    string          `json:"account_item"`
	DisplayOrder   int             `json:"display_order"`
}

// TimeEntryPatch carries the optional fields of a partial update.
type TimeEntryPatch struct {
	Date           *string          `json:"date"`
	ProjectID      *uint            `json:"project_id"`
	AccountGroupID *uint            `json:"account_group_id"`
	WorkCategoryID *uint            `json:"work_category_id"`
	Hours          *decimal.Decimal `json:"hours"`
	Description    *string          `json:"description"`
	AccountItem    *string          `json:"account_item"`
	DisplayOrder   *int             `json:"display_order"`
}

var maxEntryHours = decimal.RequireFromString("99.99")

func validEntryHours(h decimal.Decimal) bool {
	return h.IsPositive() && h.LessThanOrEqual(maxEntryHours)
}

// missingEntryReference resolves a time entry's foreign keys and names the
// first one that does not exist. An empty result means every reference
// resolves; a nil account group is not looked up at all.
func missingEntryReference(s service.Store, projectID uint, accountGroupID *uint, workCategoryID uint) (string, error) {
	project, err := s.ProjectByID(projectID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return "Project with id " + strconv.FormatUint(uint64(projectID), 10) + " not found", nil
	}

	if accountGroupID != nil {
		group, err := s.AccountGroupByID(*accountGroupID)
		if err != nil {
			return "", err
		}
		if group == nil {
			return "Account group with id " + strconv.FormatUint(uint64(*accountGroupID), 10) + " not found", nil
		}
	}

	category, err := s.WorkCategoryByID(workCategoryID)
	if err != nil {
		return "", err
	}
	if category == nil {
		return "Work category with id " + strconv.FormatUint(uint64(workCategoryID), 10) + " not found", nil
	}

	return "", nil
}

// CreateTimeEntry handles creating a new time entry
func CreateTimeEntry(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new time entry")

	var req TimeEntryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid date format, expected YYYY-MM-DD",
		})
	}
	if req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "description is required",
		})
	}
	if !validEntryHours(req.Hours) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "hours must be greater than 0 and at most 99.99",
		})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	missing, err := missingEntryReference(service.NewStore(database.GetDB()),
		req.ProjectID, req.AccountGroupID, req.WorkCategoryID)
	if err != nil {
		log.Error("Failed to resolve time entry references", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create time entry",
		})
	}
	if missing != "" {
		log.Warn("Time entry references a missing entity", zap.String("reference", missing))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": missing,
		})
	}

	entry := model.TimeEntry{
		Date:           date,
		ProjectID:      req.ProjectID,
		AccountGroupID: req.AccountGroupID,
		WorkCategoryID: req.WorkCategoryID,
		Hours:          req.Hours,
		Description:    req.Description,
		AccountItem:    req.AccountItem,
		DisplayOrder:   req.DisplayOrder,
	}

	result := database.GetDB().Create(&entry)
	if result.Error != nil {
		log.Error("Failed to create time entry",
			zap.Uint("project_id", req.ProjectID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create time entry",
		})
	}

	prometheus.RecordTimeEntryOperation("create")
	log.Info("Time entry created successfully",
		zap.Uint("time_entry_id", entry.ID),
		zap.Uint("project_id", entry.ProjectID),
		zap.String("date", entry.Date.Format(dateLayout)))
	return c.JSON(http.StatusCreated, entry)
}

// ListTimeEntries handles retrieving time entries with optional filtering
func ListTimeEntries(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().Model(&model.TimeEntry{})

	if d := c.QueryParam("date"); d != "" {
		date, err := parseDate(d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Invalid date format, expected YYYY-MM-DD",
			})
		}
		query = query.Where("date = ?", date)
	}
	if d := c.QueryParam("start_date"); d != "" {
		date, err := parseDate(d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Invalid start_date format, expected YYYY-MM-DD",
			})
		}
		query = query.Where("date >= ?", date)
	}
	if d := c.QueryParam("end_date"); d != "" {
		date, err := parseDate(d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Invalid end_date format, expected YYYY-MM-DD",
			})
		}
		query = query.Where("date <= ?", date)
	}
	if v := c.QueryParam("project_id"); v != "" {
		query = query.Where("project_id = ?", v)
	}
	if v := c.QueryParam("account_group_id"); v != "" {
		query = query.Where("account_group_id = ?", v)
	}
	if v := c.QueryParam("work_category_id"); v != "" {
		query = query.Where("work_category_id = ?", v)
	}

	var total int64
	query.Count(&total)

	skip, limit := pagination(c)
	var entries []model.TimeEntry
	result := query.Order("date DESC").Order("display_order ASC").
		Offset(skip).Limit(limit).Find(&entries)
	if result.Error != nil {
		log.Error("Failed to list time entries", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve time entries",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": entries,
		"total": total,
	})
}

// GetTimeEntry handles retrieving a single time entry by ID
func GetTimeEntry(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var entry model.TimeEntry
	result := database.GetDB().First(&entry, id)
	if result.Error != nil {
		log.Error("Time entry not found",
			zap.String("time_entry_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Time entry with id " + id + " not found",
		})
	}

	return c.JSON(http.StatusOK, entry)
}

// UpdateTimeEntry handles partial updates of a time entry
func UpdateTimeEntry(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating time entry", zap.String("time_entry_id", id))

	var patch TimeEntryPatch
	if err := c.Bind(&patch); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var entry model.TimeEntry
	result := database.GetDB().First(&entry, id)
	if result.Error != nil {
		log.Error("Time entry not found for update",
			zap.String("time_entry_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Time entry with id " + id + " not found",
		})
	}

	var date *time.Time
	if patch.Date != nil {
		d, err := parseDate(*patch.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Invalid date format, expected YYYY-MM-DD",
			})
		}
		date = &d
	}
	if patch.Hours != nil && !validEntryHours(*patch.Hours) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "hours must be greater than 0 and at most 99.99",
		})
	}
	if patch.Description != nil && *patch.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "description is required",
		})
	}

	// Re-validate whichever references the patch touches
	projectID := entry.ProjectID
	if patch.ProjectID != nil {
		projectID = *patch.ProjectID
	}
	accountGroupID := entry.AccountGroupID
	if patch.AccountGroupID != nil {
		accountGroupID = patch.AccountGroupID
	}
	workCategoryID := entry.WorkCategoryID
	if patch.WorkCategoryID != nil {
		workCategoryID = *patch.WorkCategoryID
	}
	missing, err := missingEntryReference(service.NewStore(database.GetDB()),
		projectID, accountGroupID, workCategoryID)
	if err != nil {
		log.Error("Failed to resolve time entry references", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update time entry",
		})
	}
	if missing != "" {
		log.Warn("Time entry references a missing entity", zap.String("reference", missing))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": missing,
		})
	}

	if date != nil {
		entry.Date = *date
	}
	entry.ProjectID = projectID
	entry.AccountGroupID = accountGroupID
	entry.WorkCategoryID = workCategoryID
	if patch.Hours != nil {
		entry.Hours = *patch.Hours
	}
	if patch.Description != nil {
		entry.Description = *patch.Description
	}
	if patch.AccountItem != nil {
		entry.AccountItem = *patch.AccountItem
	}
	if patch.DisplayOrder != nil {
		entry.DisplayOrder = *patch.DisplayOrder
	}

	result = database.GetDB().Save(&entry)
	if result.Error != nil {
		log.Error("Failed to update time entry",
			zap.String("time_entry_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update time entry",
		})
	}

	prometheus.RecordTimeEntryOperation("update")
	log.Info("Time entry updated successfully", zap.String("time_entry_id", id))
	return c.JSON(http.StatusOK, entry)
}

// DeleteTimeEntry handles deleting a time entry
func DeleteTimeEntry(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting time entry", zap.String("time_entry_id", id))

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().Delete(&model.TimeEntry{}, id)
	if result.Error != nil {
		log.Error("Failed to delete time entry",
			zap.String("time_entry_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete time entry",
		})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Time entry with id " + id + " not found",
		})
	}

	prometheus.RecordTimeEntryOperation("delete")
	log.Info("Time entry deleted successfully", zap.String("time_entry_id", id))
	return c.NoContent(http.StatusNoContent)
}
