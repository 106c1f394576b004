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

// WorkCategoryRequest defines the structure for work category creation requests
type WorkCategoryRequest struct {
	Code                string `json:"code"`
	Name                string `json:"name"`
	DeductApprovedHours *bool  `json:"deduct_approved_hours"`
	IsDefault           bool   `json:"is_default"`
}

// WorkCategoryPatch carries the optional fields of a partial update.
type WorkCategoryPatch struct {
	Code                *string `json:"code"`
	Name                *string `json:"name"`
	DeductApprovedHours *bool   `json:"deduct_approved_hours"`
	IsDefault           *bool   `json:"is_default"`
}

// CreateWorkCategory handles creating a new work category
func CreateWorkCategory(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new work category")

	var req WorkCategoryRequest
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

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var count int64
	database.GetDB().Model(&model.WorkCategory{}).
		Where("code = ? AND name = ?", req.Code, req.Name).Count(&count)
	if count > 0 {
		log.Warn("Work category already exists",
			zap.String("code", req.Code),
			zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Work category '" + req.Code + " " + req.Name + "' already exists",
		})
	}

	category := model.WorkCategory{
		Code:                req.Code,
		Name:                req.Name,
		DeductApprovedHours: true,
		IsDefault:           req.IsDefault,
	}
	if req.DeductApprovedHours != nil {
		category.DeductApprovedHours = *req.DeductApprovedHours
	}

	result := database.GetDB().Create(&category)
	if result.Error != nil {
		log.Error("Failed to create work category",
			zap.String("code", req.Code),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create work category",
		})
	}

	log.Info("Work category created successfully",
		zap.Uint("work_category_id", category.ID),
		zap.String("code", category.Code))
	return c.JSON(http.StatusCreated, category)
}

// ListWorkCategories handles retrieving all work categories
func ListWorkCategories(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	database.GetDB().Model(&model.WorkCategory{}).Count(&total)

	skip, limit := pagination(c)
	var categories []model.WorkCategory
	result := database.GetDB().Order("code ASC").Offset(skip).Limit(limit).Find(&categories)
	if result.Error != nil {
		log.Error("Failed to list work categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve work categories",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": categories,
		"total": total,
	})
}

// GetWorkCategory handles retrieving a single work category by ID
func GetWorkCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var category model.WorkCategory
	result := database.GetDB().First(&category, id)
	if result.Error != nil {
		log.Error("Work category not found",
			zap.String("work_category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Work category with id " + id + " not found",
		})
	}

	return c.JSON(http.StatusOK, category)
}

// UpdateWorkCategory handles partial updates of a work category
func UpdateWorkCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating work category", zap.String("work_category_id", id))

	var patch WorkCategoryPatch
	if err := c.Bind(&patch); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var category model.WorkCategory
	result := database.GetDB().First(&category, id)
	if result.Error != nil {
		log.Error("Work category not found for update",
			zap.String("work_category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Work category with id " + id + " not found",
		})
	}

	if patch.Code != nil {
		category.Code = *patch.Code
	}
	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.DeductApprovedHours != nil {
		category.DeductApprovedHours = *patch.DeductApprovedHours
	}
	if patch.IsDefault != nil {
		category.IsDefault = *patch.IsDefault
	}

	result = database.GetDB().Save(&category)
	if result.Error != nil {
		log.Error("Failed to update work category",
			zap.String("work_category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update work category",
		})
	}

	log.Info("Work category updated successfully", zap.String("work_category_id", id))
	return c.JSON(http.StatusOK, category)
}

// DeleteWorkCategory handles deleting a work category
func DeleteWorkCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting work category", zap.String("work_category_id", id))

	defer prometheus.TrackDBOperation("delete")(time.Now())

	var refs int64
	database.GetDB().Model(&model.TimeEntry{}).Where("work_category_id = ?", id).Count(&refs)
	if refs > 0 {
		log.Warn("Work category still referenced by time entries",
			zap.String("work_category_id", id),
			zap.Int64("references", refs))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Work category is still referenced by time entries",
		})
	}

	result := database.GetDB().Delete(&model.WorkCategory{}, id)
	if result.Error != nil {
		log.Error("Failed to delete work category",
			zap.String("work_category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete work category",
		})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Work category with id " + id + " not found",
		})
	}

	log.Info("Work category deleted successfully", zap.String("work_category_id", id))
	return c.NoContent(http.StatusNoContent)
}
