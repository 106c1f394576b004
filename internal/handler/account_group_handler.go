package handler

import (
	"net/http"
	"time"

	"timetrack-service/internal/model"
	"timetrack-service/pkg/database"
	"timetrack-service/pkg/logger"
	"timetrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AccountGroupRequest defines the structure for account group creation requests
type AccountGroupRequest struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// AccountGroupPatch carries the optional fields of a partial update.
type AccountGroupPatch struct {
	Code      *string `json:"code"`
	Name      *string `json:"name"`
	IsDefault *bool   `json:"is_default"`
}

// CreateAccountGroup handles creating a new account group
func CreateAccountGroup(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new account group")

	var req AccountGroupRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.Code == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "code and name are required",
		})
	}

	// The code+name pair must be unique
	defer prometheus.TrackDBOperation("insert")(time.Now())

	var count int64
	database.GetDB().Model(&model.AccountGroup{}).
		Where("code = ? AND name = ?", req.Code, req.Name).Count(&count)
	if count > 0 {
		log.Warn("Account group already exists",
			zap.String("code", req.Code),
			zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Account group '" + req.Code + " " + req.Name + "' already exists",
		})
	}

	group := model.AccountGroup{
		Code:      req.Code,
		Name:      req.Name,
		IsDefault: req.IsDefault,
	}

	result := database.GetDB().Create(&group)
	if result.Error != nil {
		log.Error("Failed to create account group",
			zap.String("code", req.Code),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create account group",
		})
	}

	log.Info("Account group created successfully",
		zap.Uint("account_group_id", group.ID),
		zap.String("code", group.Code))
	return c.JSON(http.StatusCreated, group)
}

// ListAccountGroups handles retrieving all account groups
func ListAccountGroups(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	database.GetDB().Model(&model.AccountGroup{}).Count(&total)

	skip, limit := pagination(c)
	var groups []model.AccountGroup
	result := database.GetDB().Order("code ASC").Offset(skip).Limit(limit).Find(&groups)
	if result.Error != nil {
		log.Error("Failed to list account groups", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve account groups",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": groups,
		"total": total,
	})
}

// GetAccountGroup handles retrieving a single account group by ID
func GetAccountGroup(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var group model.AccountGroup
	result := database.GetDB().First(&group, id)
	if result.Error != nil {
		log.Error("Account group not found",
			zap.String("account_group_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Account group with id " + id + " not found",
		})
	}

	return c.JSON(http.StatusOK, group)
}

// UpdateAccountGroup handles partial updates of an account group
func UpdateAccountGroup(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating account group", zap.String("account_group_id", id))

	var patch AccountGroupPatch
	if err := c.Bind(&patch); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var group model.AccountGroup
	result := database.GetDB().First(&group, id)
	if result.Error != nil {
		log.Error("Account group not found for update",
			zap.String("account_group_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Account group with id " + id + " not found",
		})
	}

	if patch.Code != nil {
		group.Code = *patch.Code
	}
	if patch.Name != nil {
		group.Name = *patch.Name
	}
	if patch.IsDefault != nil {
		group.IsDefault = *patch.IsDefault
	}

	result = database.GetDB().Save(&group)
	if result.Error != nil {
		log.Error("Failed to update account group",
			zap.String("account_group_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update account group",
		})
	}

	log.Info("Account group updated successfully", zap.String("account_group_id", id))
	return c.JSON(http.StatusOK, group)
}

// DeleteAccountGroup handles deleting an account group
func DeleteAccountGroup(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting account group", zap.String("account_group_id", id))

	defer prometheus.TrackDBOperation("delete")(time.Now())

	// Refuse to delete a group that is still referenced by time entries
	var refs int64
	database.GetDB().Model(&model.TimeEntry{}).Where("account_group_id = ?", id).Count(&refs)
	if refs > 0 {
		log.Warn("Account group still referenced by time entries",
			zap.String("account_group_id", id),
			zap.Int64("references", refs))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Account group is still referenced by time entries",
		})
	}

	result := database.GetDB().Delete(&model.AccountGroup{}, id)
	if result.Error != nil {
		log.Error("Failed to delete account group",
			zap.String("account_group_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete account group",
		})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Account group with id " + id + " not found",
		})
	}

	log.Info("Account group deleted successfully", zap.String("account_group_id", id))
	return c.NoContent(http.StatusNoContent)
}
